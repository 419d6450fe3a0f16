package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mindline-labs/mindline-cli/internal/core/domain"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse past analyses",
	RunE:  runHistoryList,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List past analyses, newest first",
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show one analysis in full",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

func init() {
	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of entries")
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistoryList(cmd *cobra.Command, _ []string) error {
	if historyStore == nil {
		return errors.New("history is disabled")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	records, err := historyStore.List(ctx, historyLimit)
	if err != nil {
		return fmt.Errorf("listing history: %w", err)
	}

	if len(records) == 0 {
		cmd.Println("No analyses recorded yet.")
		return nil
	}

	for i := range records {
		r := &records[i]
		line := fmt.Sprintf("%s  %s  %d/%d sources",
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			r.ID,
			len(r.Aggregate.Succeeded()), len(r.Aggregate.Results))
		if r.ExternalID != "" {
			line += "  (" + r.ExternalID + ")"
		}
		cmd.Println(line)
	}

	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	if historyStore == nil {
		return errors.New("history is disabled")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	record, err := historyStore.Get(ctx, args[0])
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("no analysis %q in history", args[0])
		}
		return fmt.Errorf("loading analysis: %w", err)
	}

	cmd.Printf("Analysis %s\n", record.ID)
	if record.ExternalID != "" {
		cmd.Printf("  External ID: %s\n", record.ExternalID)
	}
	cmd.Printf("  Created: %s\n", record.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	cmd.Println()

	cmd.Println("Submission:")
	f := record.Request.Factors
	cmd.Printf("  Designation: %d  Allocation: %d  Fatigue: %.1f\n",
		f.Designation, f.ResourceAllocation, f.MentalFatigueScore)
	cmd.Printf("  Company: %s  WFH: %s  Gender: %s\n", f.CompanyType, f.WFH, f.Gender)
	cmd.Printf("  Survey answers: %v\n", record.Request.SurveyAnswers)
	cmd.Println()

	cmd.Println("Results:")
	for name, result := range record.Aggregate.Results {
		if result.Succeeded() {
			cmd.Printf("  [%s] %s\n", name, compactPayload(result.Payload))
		} else {
			cmd.Printf("  [%s] failed: %v\n", name, result.Err)
		}
	}

	return nil
}
