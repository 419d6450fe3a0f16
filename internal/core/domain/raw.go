package domain

// RawSubmission is loosely-typed form state as collected from the user,
// before normalisation. All values are strings; the normaliser parses
// and validates them into an AnalysisRequest.
type RawSubmission struct {
	// ExternalID is an optional correlation identifier.
	ExternalID string

	// Factor-model fields.
	Designation        string
	ResourceAllocation string
	MentalFatigueScore string
	CompanyType        string
	WFH                string
	Gender             string

	// SurveyAnswers are the raw Likert answers, one per question.
	SurveyAnswers []string
}
