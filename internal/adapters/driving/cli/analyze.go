package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mindline-labs/mindline-cli/internal/core/domain"
	"github.com/mindline-labs/mindline-cli/internal/core/services"
	"github.com/mindline-labs/mindline-cli/internal/logger"
)

var (
	analyzeDesignation string
	analyzeAllocation  string
	analyzeFatigue     string
	analyzeCompanyType string
	analyzeWFH         string
	analyzeGender      string
	analyzeExternalID  string
	analyzeAnswers     []string
	analyzeJSON        bool
	analyzeFailFast    bool
	analyzeNoSave      bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run a burnout analysis",
	Long: `Submits employee factors and survey answers to the analysis backend.
The factor-model score, the survey score, and the combined AI insight
are requested in turn, and each result is printed as it arrives.`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeDesignation, "designation", "", "seniority band (0-5)")
	analyzeCmd.Flags().StringVar(&analyzeAllocation, "allocation", "", "resource allocation (1-10)")
	analyzeCmd.Flags().StringVar(&analyzeFatigue, "fatigue", "", "mental fatigue score (0-10)")
	analyzeCmd.Flags().StringVar(&analyzeCompanyType, "company-type", "", "company type (Service or Product)")
	analyzeCmd.Flags().StringVar(&analyzeWFH, "wfh", "", "WFH setup available (Yes or No)")
	analyzeCmd.Flags().StringVar(&analyzeGender, "gender", "", "gender (Male or Female)")
	analyzeCmd.Flags().StringVar(&analyzeExternalID, "external-id", "", "optional correlation identifier")
	analyzeCmd.Flags().StringArrayVar(&analyzeAnswers, "answer", nil, "survey answer (1-5), repeat per question")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "output results as JSON")
	analyzeCmd.Flags().BoolVar(&analyzeFailFast, "fail-fast", false, "abort on the first source failure")
	analyzeCmd.Flags().BoolVar(&analyzeNoSave, "no-save", false, "do not record this analysis in history")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	if newOrchestrator == nil {
		return errors.New("backend not configured, run 'mindline settings set api.base_url <url>' first")
	}

	raw := domain.RawSubmission{
		ExternalID:         analyzeExternalID,
		Designation:        analyzeDesignation,
		ResourceAllocation: analyzeAllocation,
		MentalFatigueScore: analyzeFatigue,
		CompanyType:        analyzeCompanyType,
		WFH:                analyzeWFH,
		Gender:             analyzeGender,
		SurveyAnswers:      analyzeAnswers,
	}

	req, err := services.Normalise(raw)
	if err != nil {
		return fmt.Errorf("invalid submission: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	orchestrator := newOrchestrator(analyzeFailFast)

	reported := map[string]bool{}
	onProgress := func(agg domain.AnalysisAggregate) {
		if analyzeJSON {
			return
		}
		for name, result := range agg.Results {
			if reported[name] || !result.Succeeded() {
				continue
			}
			reported[name] = true
			cmd.Printf("[%s] %s\n", name, compactPayload(result.Payload))
		}
	}

	agg, err := orchestrator.Submit(ctx, req, onProgress)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	for name, result := range agg.Results {
		if result.Status == domain.SourceFailure && !analyzeJSON && !reported[name] {
			cmd.Printf("[%s] failed: %v\n", name, result.Err)
			reported[name] = true
		}
	}

	if !analyzeNoSave {
		saveAnalysis(ctx, req, agg)
	}

	if analyzeJSON {
		return outputAnalysisJSON(cmd, req, agg)
	}
	return outputAnalysisSummary(cmd, req, agg)
}

// saveAnalysis records the run in history. Failures are logged, not
// fatal; the analysis already succeeded from the user's point of view.
func saveAnalysis(ctx context.Context, req domain.AnalysisRequest, agg domain.AnalysisAggregate) {
	if historyStore == nil {
		return
	}
	record := domain.AnalysisRecord{
		ID:         req.ID,
		ExternalID: req.ExternalID,
		Request:    req,
		Aggregate:  agg,
		CreatedAt:  time.Now().UTC(),
	}
	if err := historyStore.Save(ctx, record); err != nil {
		logger.Warn("saving analysis to history: %v", err)
	}
}

// analysisOutput is the --json shape of a completed analysis.
type analysisOutput struct {
	RequestID  string                  `json:"request_id"`
	ExternalID string                  `json:"external_id,omitempty"`
	Results    map[string]sourceOutput `json:"results"`
}

type sourceOutput struct {
	Status  string          `json:"status"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   string          `json:"error,omitempty"`
}

func outputAnalysisJSON(cmd *cobra.Command, req domain.AnalysisRequest, agg domain.AnalysisAggregate) error {
	out := analysisOutput{
		RequestID:  req.ID,
		ExternalID: req.ExternalID,
		Results:    make(map[string]sourceOutput, len(agg.Results)),
	}
	for name, result := range agg.Results {
		entry := sourceOutput{Status: string(result.Status), Payload: result.Payload}
		if result.Err != nil {
			entry.Error = result.Err.Error()
		}
		out.Results[name] = entry
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputAnalysisSummary(cmd *cobra.Command, req domain.AnalysisRequest, agg domain.AnalysisAggregate) error {
	cmd.Println()
	cmd.Printf("Analysis %s\n", req.ID)
	if req.ExternalID != "" {
		cmd.Printf("  External ID: %s\n", req.ExternalID)
	}
	cmd.Printf("  Succeeded: %d/%d sources\n", len(agg.Succeeded()), len(agg.Results))
	if failed := agg.Failed(); len(failed) > 0 {
		cmd.Printf("  Failed: %v\n", failed)
	}
	return nil
}

// compactPayload renders a JSON payload on one line for progress output.
func compactPayload(payload json.RawMessage) string {
	var buf map[string]any
	if err := json.Unmarshal(payload, &buf); err != nil {
		return string(payload)
	}
	data, err := json.Marshal(buf)
	if err != nil {
		return string(payload)
	}
	return string(data)
}
