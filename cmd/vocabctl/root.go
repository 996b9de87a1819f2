package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"vocabclash/internal/config"
	"vocabclash/internal/database"
	"vocabclash/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "vocabctl",
	Short: "Maintenance tool for the vocabclash progress service",
	Long: `vocabctl runs database maintenance against the same configuration
as the server: migrations, backups, stale session sweeps and
development tokens.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		appConfig = cfg

		flush, err := logging.Setup(cfg.LogFormat, cfg.AppEnv)
		if err != nil {
			return err
		}
		cobra.OnFinalize(flush)
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// appConfig is loaded once before any subcommand runs
var appConfig *config.Config

// openDB connects to the configured database and brings the schema up to date
func openDB(ctx context.Context) (*database.DB, error) {
	db, err := database.InitializeWithConfig(appConfig)
	if err != nil {
		return nil, errors.Wrap(err, "initialize database")
	}
	if err := db.RunMigrations(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "run migrations")
	}
	return db, nil
}

func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
