package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mindline-labs/mindline-cli/internal/core/domain"
)

// Factor-model input bounds.
const (
	minDesignation        = 0
	maxDesignation        = 5
	minResourceAllocation = 1
	maxResourceAllocation = 10
	minFatigue            = 0.0
	maxFatigue            = 10.0
)

// Normalise maps a raw, loosely-typed submission into an immutable
// AnalysisRequest. It validates every field so downstream components can
// assume shape; any violation is reported as domain.ErrInvalidInput.
func Normalise(raw domain.RawSubmission) (domain.AnalysisRequest, error) {
	var req domain.AnalysisRequest

	designation, err := parseIntField("designation", raw.Designation, minDesignation, maxDesignation)
	if err != nil {
		return req, err
	}

	allocation, err := parseIntField("resource allocation", raw.ResourceAllocation, minResourceAllocation, maxResourceAllocation)
	if err != nil {
		return req, err
	}

	fatigue, err := parseFatigue(raw.MentalFatigueScore)
	if err != nil {
		return req, err
	}

	companyType, err := normaliseChoice("company type", raw.CompanyType, domain.CompanyTypeService, domain.CompanyTypeProduct)
	if err != nil {
		return req, err
	}

	wfh, err := normaliseChoice("wfh", raw.WFH, "Yes", "No")
	if err != nil {
		return req, err
	}

	gender, err := normaliseChoice("gender", raw.Gender, "Male", "Female")
	if err != nil {
		return req, err
	}

	answers, err := normaliseAnswers(raw.SurveyAnswers)
	if err != nil {
		return req, err
	}

	return domain.AnalysisRequest{
		ID:         uuid.NewString(),
		ExternalID: strings.TrimSpace(raw.ExternalID),
		Factors: domain.EmployeeFactors{
			Designation:        designation,
			ResourceAllocation: allocation,
			MentalFatigueScore: fatigue,
			CompanyType:        companyType,
			WFH:                wfh,
			Gender:             gender,
		},
		SurveyAnswers: answers,
		SubmittedAt:   time.Now(),
	}, nil
}

// parseIntField parses and range-checks an integer form field.
func parseIntField(name, value string, minVal, maxVal int) (int, error) {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not a number", domain.ErrInvalidInput, name, value)
	}
	if parsed < minVal || parsed > maxVal {
		return 0, fmt.Errorf("%w: %s %d out of range [%d, %d]", domain.ErrInvalidInput, name, parsed, minVal, maxVal)
	}
	return parsed, nil
}

// parseFatigue parses and range-checks the mental fatigue score.
func parseFatigue(value string) (float64, error) {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: mental fatigue score %q is not a number", domain.ErrInvalidInput, value)
	}
	if parsed < minFatigue || parsed > maxFatigue {
		return 0, fmt.Errorf("%w: mental fatigue score %.1f out of range [%.0f, %.0f]", domain.ErrInvalidInput, parsed, minFatigue, maxFatigue)
	}
	return parsed, nil
}

// normaliseChoice matches a field against its allowed values,
// case-insensitively, and returns the canonical spelling.
func normaliseChoice(name, value string, allowed ...string) (string, error) {
	trimmed := strings.TrimSpace(value)
	for _, choice := range allowed {
		if strings.EqualFold(trimmed, choice) {
			return choice, nil
		}
	}
	return "", fmt.Errorf("%w: %s %q must be one of %s", domain.ErrInvalidInput, name, value, strings.Join(allowed, ", "))
}

// normaliseAnswers parses and range-checks the Likert answers.
func normaliseAnswers(raw []string) ([]int, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: at least one survey answer is required", domain.ErrInvalidInput)
	}
	answers := make([]int, len(raw))
	for i, value := range raw {
		parsed, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("%w: answer %d %q is not a number", domain.ErrInvalidInput, i+1, value)
		}
		if parsed < domain.LikertMin || parsed > domain.LikertMax {
			return nil, fmt.Errorf("%w: answer %d must be between %d and %d", domain.ErrInvalidInput, i+1, domain.LikertMin, domain.LikertMax)
		}
		answers[i] = parsed
	}
	return answers, nil
}
