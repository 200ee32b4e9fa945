package cmd

import (
	"errors"
	"fmt"

	"github.com/brewvote/server/internal/config"
	"github.com/brewvote/server/internal/storage/postgres"
	"github.com/spf13/cobra"
)

func newMigrateCommand(global *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
		Long: `Apply or roll back the embedded PostgreSQL migrations.

Only DATABASE_URL is required.`,
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := databaseURL(global)
			if err != nil {
				return err
			}
			if err := postgres.MigrateDown(url, steps); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rolled back %d migration(s)\n", steps)
			return nil
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				url, err := databaseURL(global)
				if err != nil {
					return err
				}
				if err := postgres.MigrateUp(url); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
				return nil
			},
		},
		down,
		&cobra.Command{
			Use:   "version",
			Short: "Print the applied schema version",
			RunE: func(cmd *cobra.Command, args []string) error {
				url, err := databaseURL(global)
				if err != nil {
					return err
				}
				version, dirty, err := postgres.MigrationVersion(url)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version: %d dirty: %t\n", version, dirty)
				return nil
			},
		},
	)
	return cmd
}

func databaseURL(global *globalOptions) (string, error) {
	cfg, err := config.Read(global.configPath)
	if err != nil {
		return "", err
	}
	if cfg.Database.URL == "" {
		return "", errors.New("DATABASE_URL is required")
	}
	return cfg.Database.URL, nil
}
