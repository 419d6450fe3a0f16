package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindline-labs/mindline-cli/internal/core/domain"
)

func validSubmission() domain.RawSubmission {
	return domain.RawSubmission{
		Designation:        "3",
		ResourceAllocation: "7",
		MentalFatigueScore: "6",
		CompanyType:        "Service",
		WFH:                "Yes",
		Gender:             "Male",
		SurveyAnswers:      []string{"3", "3", "3", "3", "3"},
	}
}

// TestNormalise_Valid tests the happy path with the canonical submission
func TestNormalise_Valid(t *testing.T) {
	req, err := Normalise(validSubmission())
	require.NoError(t, err)

	assert.NotEmpty(t, req.ID)
	assert.Equal(t, 3, req.Factors.Designation)
	assert.Equal(t, 7, req.Factors.ResourceAllocation)
	assert.InDelta(t, 6.0, req.Factors.MentalFatigueScore, 0.001)
	assert.Equal(t, domain.CompanyTypeService, req.Factors.CompanyType)
	assert.Equal(t, "Yes", req.Factors.WFH)
	assert.Equal(t, "Male", req.Factors.Gender)
	assert.Equal(t, []int{3, 3, 3, 3, 3}, req.SurveyAnswers)
	assert.False(t, req.SubmittedAt.IsZero())
}

// TestNormalise_CanonicalisesChoices tests case-insensitive choice fields
func TestNormalise_CanonicalisesChoices(t *testing.T) {
	raw := validSubmission()
	raw.CompanyType = "service"
	raw.WFH = "YES"
	raw.Gender = "male"

	req, err := Normalise(raw)
	require.NoError(t, err)

	assert.Equal(t, domain.CompanyTypeService, req.Factors.CompanyType)
	assert.Equal(t, "Yes", req.Factors.WFH)
	assert.Equal(t, "Male", req.Factors.Gender)
}

// TestNormalise_InvalidFields tests that each malformed field is rejected
func TestNormalise_InvalidFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.RawSubmission)
	}{
		{"designation not a number", func(r *domain.RawSubmission) { r.Designation = "senior" }},
		{"designation out of range", func(r *domain.RawSubmission) { r.Designation = "6" }},
		{"allocation out of range", func(r *domain.RawSubmission) { r.ResourceAllocation = "0" }},
		{"fatigue not a number", func(r *domain.RawSubmission) { r.MentalFatigueScore = "tired" }},
		{"fatigue out of range", func(r *domain.RawSubmission) { r.MentalFatigueScore = "11" }},
		{"unknown company type", func(r *domain.RawSubmission) { r.CompanyType = "Startup" }},
		{"unknown wfh", func(r *domain.RawSubmission) { r.WFH = "Sometimes" }},
		{"unknown gender", func(r *domain.RawSubmission) { r.Gender = "" }},
		{"no answers", func(r *domain.RawSubmission) { r.SurveyAnswers = nil }},
		{"answer out of range", func(r *domain.RawSubmission) { r.SurveyAnswers = []string{"3", "6"} }},
		{"answer not a number", func(r *domain.RawSubmission) { r.SurveyAnswers = []string{"often"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validSubmission()
			tt.mutate(&raw)

			_, err := Normalise(raw)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

// TestNormalise_TrimsWhitespace tests tolerance of padded form values
func TestNormalise_TrimsWhitespace(t *testing.T) {
	raw := validSubmission()
	raw.Designation = " 3 "
	raw.ExternalID = " emp-42 "

	req, err := Normalise(raw)
	require.NoError(t, err)

	assert.Equal(t, 3, req.Factors.Designation)
	assert.Equal(t, "emp-42", req.ExternalID)
}
