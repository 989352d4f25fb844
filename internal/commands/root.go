package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pocketledger/pocketledger/internal/app"
	"github.com/pocketledger/pocketledger/internal/buildinfo"
	"github.com/pocketledger/pocketledger/internal/config"
	"github.com/pocketledger/pocketledger/internal/logger"
)

type globalFlags struct {
	configPath string
	dbPath     string
	logLevel   string

	cfg *config.Config // loaded before any subcommand runs
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	g := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:     "pocketledger",
		Short:   "Personal finance ledger",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			g.cfg = cfg
			attachLogger(cmd, cfg)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&g.configPath, "config", config.FileName, "config file")
	rootCmd.PersistentFlags().StringVar(&g.dbPath, "db", "", "ledger database (overrides config)")
	rootCmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "log level (overrides config)")

	rootCmd.AddCommand(
		newInitCommand(g),
		newTxCommand(g),
		newBalanceCommand(g),
		newStatsCommand(g),
		newBarsCommand(g),
		newChartCommand(g),
		newSummaryCommand(g),
		newCategoriesCommand(g),
		newProfileCommand(g),
		newAchievementsCommand(g),
		newChatAckCommand(g),
		newIngestCommand(g),
		newExportCommand(g),
	)

	return rootCmd
}

// loadConfig reads the config named by the flags, layering .env, the
// environment and flag overrides on top.
func (g *globalFlags) loadConfig() (*config.Config, error) {
	absConfig, err := filepath.Abs(g.configPath)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	base := filepath.Dir(absConfig)

	if err := config.LoadDotEnv(filepath.Join(base, ".env")); err != nil {
		return nil, err
	}
	cfg, err := config.LoadOrDefault(absConfig)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	if g.dbPath != "" {
		cfg.Database.Path = g.dbPath
	}
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}
	cfg.ResolvePaths(base)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// attachLogger builds the process logger from cfg and stores it in the
// command's context for the run.
func attachLogger(cmd *cobra.Command, cfg *config.Config) {
	log := logger.New(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, Out: cmd.ErrOrStderr()})
	cmd.SetContext(logger.WithContext(cmd.Context(), log))
}

// openApp opens the ledger named by the loaded config.
func (g *globalFlags) openApp(cmd *cobra.Command) (*app.App, *config.Config, error) {
	if g.cfg == nil {
		return nil, nil, fmt.Errorf("configuration not loaded")
	}
	a, err := app.Open(g.cfg, logger.FromContext(cmd.Context()))
	if err != nil {
		return nil, nil, fmt.Errorf("opening ledger: %w", err)
	}
	return a, g.cfg, nil
}
