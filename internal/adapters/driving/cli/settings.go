package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mindline-labs/mindline-cli/internal/core/ports/driven"
)

// knownKeys are the config keys settings list reports, with a short
// description each.
var knownKeys = []struct {
	key  string
	desc string
}{
	{driven.ConfigKeyBaseURL, "backend API base URL"},
	{driven.ConfigKeyAPIKey, "backend API key (use 'settings set-key')"},
	{driven.ConfigKeyScoreTimeout, "factor-model and survey timeout, seconds"},
	{driven.ConfigKeyInsightTimeout, "AI insight timeout, seconds"},
	{driven.ConfigKeyHistoryEnabled, "record analyses locally (true/false)"},
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	RunE:  runSettingsList,
}

var settingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show all settings",
	RunE:  runSettingsList,
}

var settingsGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Show one setting",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsGet,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a setting",
	Long: `Sets a configuration value and persists it immediately.
Boolean and integer values are detected from the value text.`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsSetKeyCmd = &cobra.Command{
	Use:   "set-key",
	Short: "Set the backend API key",
	Long:  `Prompts for the API key without echoing it to the terminal.`,
	RunE:  runSettingsSetKey,
}

func init() {
	settingsCmd.AddCommand(settingsListCmd)
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsSetKeyCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsList(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("configuration not loaded")
	}

	cmd.Printf("Configuration (%s)\n\n", configStore.Path())
	for _, entry := range knownKeys {
		value, ok := configStore.Get(entry.key)
		display := "(not set)"
		if ok {
			display = fmt.Sprintf("%v", value)
			if entry.key == driven.ConfigKeyAPIKey {
				display = maskAPIKey(configStore.GetString(entry.key))
			}
		}
		cmd.Printf("  %-28s %s\n", entry.key, display)
	}
	return nil
}

func runSettingsGet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("configuration not loaded")
	}

	value, ok := configStore.Get(args[0])
	if !ok {
		return fmt.Errorf("key %q is not set", args[0])
	}
	if args[0] == driven.ConfigKeyAPIKey {
		cmd.Println(maskAPIKey(configStore.GetString(args[0])))
		return nil
	}
	cmd.Printf("%v\n", value)
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("configuration not loaded")
	}

	key, raw := args[0], args[1]
	if err := configStore.Set(key, parseValue(raw)); err != nil {
		return fmt.Errorf("saving setting: %w", err)
	}

	cmd.Printf("Set %s\n", key)
	return nil
}

func runSettingsSetKey(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("configuration not loaded")
	}

	cmd.Print("Enter API key: ")
	key := readPassword()
	cmd.Println()
	if key == "" {
		return errors.New("API key must not be empty")
	}

	if err := configStore.Set(driven.ConfigKeyAPIKey, key); err != nil {
		return fmt.Errorf("saving API key: %w", err)
	}

	cmd.Printf("API key saved (%s)\n", maskAPIKey(key))
	return nil
}

// parseValue turns the value text into a bool or int when it reads as
// one, leaving everything else a string.
func parseValue(raw string) any {
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	return raw
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read the key without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
