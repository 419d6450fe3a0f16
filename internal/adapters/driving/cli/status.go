package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mindline-labs/mindline-cli/internal/core/ports/driven"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show backend configuration and availability",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("configuration not loaded")
	}

	baseURL := configStore.GetString(driven.ConfigKeyBaseURL)
	if baseURL == "" {
		cmd.Println("Backend: not configured")
		cmd.Println("Run 'mindline settings set api.base_url <url>' to get started.")
		return nil
	}
	cmd.Printf("Backend: %s\n", baseURL)

	if key := configStore.GetString(driven.ConfigKeyAPIKey); key != "" {
		cmd.Printf("API key: %s\n", maskAPIKey(key))
	} else {
		cmd.Println("API key: (not set)")
	}

	if historyStore != nil {
		cmd.Println("History: enabled")
	} else {
		cmd.Println("History: disabled")
	}

	if sessionService == nil {
		return nil
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	available, err := sessionService.Availability(ctx)
	switch {
	case err != nil:
		cmd.Printf("Companion chat: probe failed (%v)\n", err)
		return fmt.Errorf("availability probe: %w", err)
	case available:
		cmd.Println("Companion chat: available")
	default:
		cmd.Println("Companion chat: unavailable")
	}

	return nil
}
