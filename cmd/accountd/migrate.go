package main

import (
	"github.com/spf13/cobra"

	"github.com/accountd/account-service/internal/infrastructure/db/postgres"
	"github.com/accountd/account-service/internal/pkg/config"
)

// NewMigrateCmd creates the migrate command with up and down subcommands.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the PostgreSQL account schema",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrate(cmd, (*postgres.Migrator).Up)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Revert all migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrate(cmd, (*postgres.Migrator).Down)
		},
	})
	return cmd
}

func runMigrate(cmd *cobra.Command, step func(*postgres.Migrator) error) error {
	cfg, err := config.LoadPostgres(cmd.Context())
	if err != nil {
		return err
	}

	m, err := postgres.NewMigrator(cfg.DSN)
	if err != nil {
		return err
	}
	defer func() { _ = m.Close() }()

	if err := step(m); err != nil {
		return err
	}
	cmd.Printf("migrate %s: done\n", cmd.Name())
	return nil
}
