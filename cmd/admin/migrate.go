package main

import (
	"github.com/spf13/cobra"

	"github.com/classroom-kit/student-records/internal/persistence"
)

func newMigrateCmd(env func() *adminEnv) *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	migrateCmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				e := env()
				if !e.pg.Enabled() {
					return errNoDatabase
				}
				return persistence.RunMigrations(cmd.Context(), e.pg.PoolHandle(), e.logger)
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show the applied state of every migration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				e := env()
				if !e.pg.Enabled() {
					return errNoDatabase
				}
				return persistence.MigrationStatus(cmd.Context(), e.pg.PoolHandle(), e.logger)
			},
		},
	)
	return migrateCmd
}
