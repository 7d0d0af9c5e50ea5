package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"qaboard/internal/clickup"
	"qaboard/internal/config"
	"qaboard/internal/dashboard"
	"qaboard/internal/history"
	"qaboard/internal/logging"
	"qaboard/internal/qase"
	"qaboard/internal/quality"

	"github.com/pkg/browser"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose  bool
	openSite bool
	cfg      *config.AppConfig
)

var rootCmd = &cobra.Command{
	Use:   "qaboard",
	Short: "qaboard aggregates QA and sprint metrics for the team dashboard",
	Long: `A headless aggregator that pulls test runs and test cases from the QA
API and sprint/backlog metrics from the project-management API, keeps a small
local history (test runs, velocity, sprint cache), and exposes the combined
state as JSON for the dashboard frontend.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(verbose)

		var err error
		cfg, err = config.Load()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load configuration")
		}
		logging.AttachFile(cfg.LogDir)

		log.Info().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Msg("qaboard starting")
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRefresh(cmd)
	},
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Run one refresh cycle and print the aggregated state as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRefresh(cmd)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the aggregated state over HTTP for the dashboard frontend",
	RunE: func(cmd *cobra.Command, args []string) error {
		orch, err := buildOrchestrator()
		if err != nil {
			return err
		}
		srv := dashboard.NewServer(orch)
		if openSite {
			url := "http://" + cfg.ListenAddr + "/api/state"
			if err := browser.OpenURL(url); err != nil {
				log.Warn().Err(err).Str("url", url).Msg("Could not open browser")
			}
		}
		return srv.ListenAndServe(cfg.ListenAddr)
	},
}

var velocityCmd = &cobra.Command{
	Use:   "velocity",
	Short: "Print the stored sprint velocity history",
	RunE: func(cmd *cobra.Command, args []string) error {
		kv, err := storeKV()
		if err != nil {
			return err
		}
		store := history.NewVelocityStore(kv)
		out := struct {
			Entries          []history.VelocityEntry `json:"entries"`
			AverageCompleted int                     `json:"average_completed"`
		}{
			Entries:          store.All(),
			AverageCompleted: store.AverageCompleted(4),
		}
		return printJSON(out)
	},
}

func runRefresh(cmd *cobra.Command) error {
	orch, err := buildOrchestrator()
	if err != nil {
		return err
	}
	state, err := orch.Refresh(cmd.Context())
	if err != nil {
		return err
	}
	return printJSON(state)
}

func buildOrchestrator() (*dashboard.Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	kv, err := storeKV()
	if err != nil {
		return nil, err
	}

	refresher := quality.NewRefresher(qase.NewClient(cfg.Qase), history.NewTestRunStore(kv))
	return dashboard.NewOrchestrator(
		cfg,
		clickup.NewClient(cfg.ClickUp),
		refresher,
		history.NewVelocityStore(kv),
		history.NewSprintCacheStore(kv),
	), nil
}

func storeKV() (history.KV, error) {
	kv, err := history.NewFileKV(filepath.Join(cfg.DataPath, "store"))
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}
	return kv, nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	serveCmd.Flags().BoolVar(&openSite, "open", false, "open the state endpoint in the browser")
	rootCmd.AddCommand(refreshCmd, serveCmd, velocityCmd)
}
