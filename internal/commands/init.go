package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pocketledger/pocketledger/internal/app"
	"github.com/pocketledger/pocketledger/internal/config"
	"github.com/pocketledger/pocketledger/internal/logger"
)

func newInitCommand(g *globalFlags) *cobra.Command {
	var name string
	var currency string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new ledger",
		Args:  cobra.MaximumNArgs(1),
		// No config file exists yet; log settings come from the defaults,
		// the environment and --log-level.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			cfg.ApplyEnv()
			if g.logLevel != "" {
				cfg.Log.Level = g.logLevel
			}
			attachLogger(cmd, cfg)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd.Context(), cmd.OutOrStdout(), absDir, name, currency)
		},
	}

	cmd.Flags().StringVar(&name, "name", "User", "profile name")
	cmd.Flags().StringVar(&currency, "currency", "RUB", "ISO 4217 currency code")

	return cmd
}

func runInit(ctx context.Context, out io.Writer, dir, name, currency string) error {
	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists", cfgPath)
	}

	cfg := config.Default()
	cfg.Profile.Name = name
	cfg.Profile.Currency = currency
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	// Write pocketledger.yaml.
	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	cfg.ResolvePaths(dir)
	for _, d := range []string{filepath.Dir(cfg.Database.Path), cfg.Ingest.Inbox} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	// Create the schema, default categories, achievements and profile.
	a, err := app.Open(cfg, logger.FromContext(ctx))
	if err != nil {
		return fmt.Errorf("opening ledger: %w", err)
	}
	defer a.Close()

	if err := a.Init(ctx); err != nil {
		return err
	}
	if _, err := a.GetProfile(ctx); err != nil {
		return err
	}

	fmt.Fprintf(out, "Initialized ledger at %s\n", dir)
	return nil
}
