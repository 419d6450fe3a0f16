package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mindline-labs/mindline-cli/internal/core/domain"
	"github.com/mindline-labs/mindline-cli/internal/core/ports/driving"
)

var chatRecordID string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Open a companion chat session",
	Long: `Opens a companion chat session seeded by a completed analysis.
By default the most recent analysis from history is used; pass --id to
seed from a specific one.

Type messages at the prompt. Use /end to wind the session down and
/quit to leave without ending it on the server.`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVar(&chatRecordID, "id", "", "analysis ID to seed the session from (default: latest)")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	if newSessionController == nil {
		return errors.New("backend not configured, run 'mindline settings set api.base_url <url>' first")
	}
	if historyStore == nil {
		return errors.New("history is disabled, run an analysis first or enable history.enabled")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	record, err := loadSeedRecord(ctx)
	if err != nil {
		return err
	}

	controller, err := newSessionController(record.Aggregate)
	if err != nil {
		return fmt.Errorf("building session controller: %w", err)
	}

	cmd.Printf("Starting session from analysis %s...\n", record.ID)
	if err := controller.Start(ctx); err != nil {
		return fmt.Errorf("starting session: %w", err)
	}

	printLastReply(cmd, controller)

	return runChatLoop(ctx, cmd, controller, cmd.InOrStdin())
}

// loadSeedRecord picks the analysis the session is seeded from.
func loadSeedRecord(ctx context.Context) (*domain.AnalysisRecord, error) {
	if chatRecordID != "" {
		record, err := historyStore.Get(ctx, chatRecordID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("no analysis %q in history", chatRecordID)
			}
			return nil, fmt.Errorf("loading analysis: %w", err)
		}
		return record, nil
	}

	record, err := historyStore.Latest(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, errors.New("no analyses in history, run 'mindline analyze' first")
		}
		return nil, fmt.Errorf("loading latest analysis: %w", err)
	}
	return record, nil
}

// runChatLoop reads user input line by line and drives the session
// controller until the session ends or input is exhausted.
func runChatLoop(ctx context.Context, cmd *cobra.Command, controller driving.SessionController, in io.Reader) error {
	scanner := bufio.NewScanner(in)

	for {
		if controller.Status() == domain.SessionEndingConfirmation {
			if done, err := handleEndPrompt(ctx, cmd, controller, scanner); err != nil {
				return err
			} else if done {
				return nil
			}
			continue
		}
		if controller.Status() == domain.SessionEnded {
			cmd.Println("Session ended.")
			return nil
		}

		cmd.Print("you> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "":
			continue
		case line == "/quit":
			return nil
		case line == "/end":
			if err := controller.RequestEnd(); err != nil {
				cmd.Printf("Cannot end right now: %v\n", err)
			}
			continue
		}

		if err := controller.Send(ctx, line); err != nil {
			switch {
			case errors.Is(err, domain.ErrRateLimited):
				cmd.Println("(one moment, sending too fast)")
			default:
				cmd.Printf("Send failed: %v\n", err)
			}
			continue
		}

		printLastReply(cmd, controller)

		// A wind-down reply surfaces the end prompt shortly after; give
		// the delayed prompt a chance before asking for more input.
		waitForEndPrompt(controller)
	}
}

// handleEndPrompt asks the user to confirm ending the session. Returns
// done=true when the session is over.
func handleEndPrompt(ctx context.Context, cmd *cobra.Command, controller driving.SessionController, scanner *bufio.Scanner) (bool, error) {
	cmd.Print("End the session? [y/N]: ")
	if !scanner.Scan() {
		return true, scanner.Err()
	}
	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))

	if answer != "y" && answer != "yes" {
		if err := controller.DeclineEnd(); err != nil {
			cmd.Printf("Cannot resume: %v\n", err)
		}
		return false, nil
	}

	if err := controller.ConfirmEnd(ctx); err != nil {
		if errors.Is(err, domain.ErrRateLimited) {
			cmd.Println("(one moment, confirming too fast)")
			return false, nil
		}
		cmd.Printf("Ending session failed: %v\n", err)
		return false, nil
	}

	cmd.Println("Session ended. Take care.")
	return true, nil
}

// waitForEndPrompt blocks briefly while the controller's delayed end
// prompt may fire, so the confirmation is shown before the next input
// prompt rather than after it.
func waitForEndPrompt(controller driving.SessionController) {
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		status := controller.Status()
		if status == domain.SessionEndingConfirmation || status == domain.SessionEnded {
			return
		}
		if !controller.Session().WindDown {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
}

// printLastReply prints the most recent assistant message, if any.
func printLastReply(cmd *cobra.Command, controller driving.SessionController) {
	messages := controller.Session().Messages
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Sender == domain.SenderAssistant {
			cmd.Printf("buddy> %s\n", messages[i].Content)
			return
		}
	}
}
