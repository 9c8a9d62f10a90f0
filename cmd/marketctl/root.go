package main

import (
	"database/sql"
	"io"
	"os"

	"bookmarket.backend/internal/config"
	"bookmarket.backend/internal/infrastructure/datasources/postgres"
	"bookmarket.backend/internal/infrastructure/models"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// cliDeps are the seams the commands reach the outside world through
type cliDeps struct {
	loadEnv func() error
	loadCfg func() *config.Config
	openDB  func(cfg config.DatabaseConfig, debug bool) (*gorm.DB, error)
	pingDB  func(cfg config.DatabaseConfig) (*sql.DB, error)
	migrate func(db *gorm.DB) error
	out     io.Writer
}

func defaultDeps() cliDeps {
	return cliDeps{
		loadEnv: func() error { return godotenv.Load() },
		loadCfg: config.Load,
		openDB:  postgres.OpenGorm,
		pingDB:  postgres.NewConnection,
		migrate: func(db *gorm.DB) error { return db.AutoMigrate(models.All()...) },
		out:     os.Stdout,
	}
}

func newRootCmd(deps cliDeps) *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "marketctl",
		Short: "Operator tooling for the bookmarket backend",
		Long: `marketctl runs maintenance tasks against the bookmarket database.

Configuration is read from the environment (and .env when present), the
same way the API server reads it.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// a missing .env is normal outside development
			_ = deps.loadEnv()
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log SQL statements")
	root.SetOut(deps.out)

	openDB := func() (*gorm.DB, func(), error) {
		db, err := deps.openDB(deps.loadCfg().Database, verbose)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		return db, closeFn, nil
	}

	root.AddCommand(
		newMigrateCmd(deps, openDB),
		newCreateAdminCmd(openDB),
		newRecomputeRatingsCmd(openDB),
		newPingDBCmd(deps),
		newHashPasswordCmd(),
	)
	return root
}
