package domain

import "time"

// Company types accepted by the factor-model scorer.
const (
	CompanyTypeService = "Service"
	CompanyTypeProduct = "Product"
)

// Likert answer bounds for survey questions.
const (
	LikertMin = 1
	LikertMax = 5
)

// EmployeeFactors holds the normalised factor-model inputs for one
// submission. All fields are validated by the normaliser before an
// AnalysisRequest is created.
type EmployeeFactors struct {
	// Designation is the seniority band (0-5).
	Designation int

	// ResourceAllocation is the workload band (1-10).
	ResourceAllocation int

	// MentalFatigueScore is the self-reported fatigue (0-10).
	MentalFatigueScore float64

	// CompanyType is "Service" or "Product".
	CompanyType string

	// WFH is "Yes" or "No".
	WFH string

	// Gender is "Male" or "Female".
	Gender string
}

// AnalysisRequest is an immutable, normalised analysis submission.
// It is created once per user submission and never mutated.
type AnalysisRequest struct {
	// ID uniquely identifies this submission.
	ID string

	// ExternalID is an optional caller-supplied correlation identifier.
	ExternalID string

	// Factors are the normalised employee-factor fields.
	Factors EmployeeFactors

	// SurveyAnswers are the Likert answers (1-5), one per question,
	// in questionnaire order.
	SurveyAnswers []int

	// SubmittedAt is when the submission was normalised.
	SubmittedAt time.Time
}

// CloneAnswers returns a copy of the survey answers so callers can hold
// them without aliasing the request's slice.
func (r AnalysisRequest) CloneAnswers() []int {
	if r.SurveyAnswers == nil {
		return nil
	}
	out := make([]int, len(r.SurveyAnswers))
	copy(out, r.SurveyAnswers)
	return out
}
