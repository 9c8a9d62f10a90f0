package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

type dbOpener func() (*gorm.DB, func(), error)

func newMigrateCmd(deps cliDeps, open dbOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Long: `Create or update every table the API server uses.

Existing rows are kept; columns and indexes are only added.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, closeDB, err := open()
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			defer closeDB()

			if err := deps.migrate(db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			cmd.Println("Schema is up to date")
			return nil
		},
	}
}

func newPingDBCmd(deps cliDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "ping-db",
		Short: "Check that the database accepts connections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := deps.loadCfg().Database
			db, err := deps.pingDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()
			cmd.Printf("Connected to %s:%d/%s\n", cfg.Host, cfg.Port, cfg.DBName)
			return nil
		},
	}
}
