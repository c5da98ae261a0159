package main

import (
	"github.com/IliaW/robots-api/internal/persistence"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate <up|down>",
		Short:     "Apply the database schema migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{persistence.MigrateUp, persistence.MigrateDown},
		RunE: func(cmd *cobra.Command, args []string) error {
			db = setupDatabase()
			defer closeDatabase()
			return persistence.Migrate(db, args[0])
		},
	}
}
