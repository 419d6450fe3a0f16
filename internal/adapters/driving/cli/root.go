// Package cli implements the mindline command-line interface.
package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mindline-labs/mindline-cli/internal/adapters/driven/analysis/factormodel"
	"github.com/mindline-labs/mindline-cli/internal/adapters/driven/analysis/insight"
	"github.com/mindline-labs/mindline-cli/internal/adapters/driven/analysis/surveyscore"
	configfile "github.com/mindline-labs/mindline-cli/internal/adapters/driven/config/file"
	"github.com/mindline-labs/mindline-cli/internal/adapters/driven/session/emobuddy"
	"github.com/mindline-labs/mindline-cli/internal/adapters/driven/storage/sqlite"
	"github.com/mindline-labs/mindline-cli/internal/core/domain"
	"github.com/mindline-labs/mindline-cli/internal/core/ports/driven"
	"github.com/mindline-labs/mindline-cli/internal/core/ports/driving"
	"github.com/mindline-labs/mindline-cli/internal/core/services"
	"github.com/mindline-labs/mindline-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var verbose bool

// Services the commands depend on. Wired by initServices; commands
// check for nil and report "not configured" so settings and history
// keep working before the backend is set up.
var (
	configStore    driven.ConfigStore
	historyStore   driven.HistoryStore
	sessionService driven.SessionService

	// newOrchestrator builds an orchestrator over the configured
	// backend sources. Nil until the base URL is configured.
	newOrchestrator func(failFast bool) driving.AnalysisOrchestrator

	// newSessionController builds a chat controller seeded by a
	// completed analysis.
	newSessionController func(seed domain.AnalysisAggregate) (driving.SessionController, error)
)

var rootCmd = &cobra.Command{
	Use:   "mindline",
	Short: "Burnout analysis from the command line",
	Long: `Mindline submits employee wellbeing data to the burnout analysis
backend, reports per-source results as they arrive, and can open a
companion chat session seeded by a completed analysis.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output to stderr")
}

// Execute wires the services from configuration and runs the root
// command.
func Execute() error {
	if err := initServices(); err != nil {
		return err
	}
	return rootCmd.Execute()
}

// initServices builds the driven adapters from the config store. A
// missing base URL is not an error; backend-facing commands report it
// when run.
func initServices() error {
	store, err := configfile.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	configStore = store

	if historyEnabled(configStore) {
		hs, err := sqlite.NewStore("")
		if err != nil {
			return fmt.Errorf("opening history store: %w", err)
		}
		historyStore = hs
	}

	baseURL := configStore.GetString(driven.ConfigKeyBaseURL)
	if baseURL == "" {
		logger.Debug("no base URL configured, backend commands disabled")
		return nil
	}
	apiKey := configStore.GetString(driven.ConfigKeyAPIKey)

	scoreTimeout := time.Duration(configStore.GetInt(driven.ConfigKeyScoreTimeout)) * time.Second
	insightTimeout := time.Duration(configStore.GetInt(driven.ConfigKeyInsightTimeout)) * time.Second

	ml, err := factormodel.NewClient(factormodel.Config{BaseURL: baseURL, APIKey: apiKey, Timeout: scoreTimeout})
	if err != nil {
		return fmt.Errorf("building factor-model client: %w", err)
	}
	survey, err := surveyscore.NewClient(surveyscore.Config{BaseURL: baseURL, APIKey: apiKey, Timeout: scoreTimeout})
	if err != nil {
		return fmt.Errorf("building survey scorer client: %w", err)
	}
	combined, err := insight.NewClient(insight.Config{BaseURL: baseURL, APIKey: apiKey, Timeout: insightTimeout})
	if err != nil {
		return fmt.Errorf("building insight client: %w", err)
	}

	newOrchestrator = func(failFast bool) driving.AnalysisOrchestrator {
		return services.NewProgressiveOrchestrator(
			services.OrchestratorConfig{FailFast: failFast},
			ml, survey, combined,
		)
	}

	buddy, err := emobuddy.NewClient(emobuddy.Config{BaseURL: baseURL, APIKey: apiKey})
	if err != nil {
		return fmt.Errorf("building companion chat client: %w", err)
	}
	sessionService = buddy

	newSessionController = func(seed domain.AnalysisAggregate) (driving.SessionController, error) {
		return services.NewSessionClient(services.SessionClientConfig{
			Service: sessionService,
			Seed:    seed,
		})
	}

	return nil
}

// historyEnabled reports whether local history is on. Absent key means
// enabled; the user has to opt out.
func historyEnabled(store driven.ConfigStore) bool {
	v, ok := store.Get(driven.ConfigKeyHistoryEnabled)
	if !ok {
		return true
	}
	b, ok := v.(bool)
	return ok && b
}
