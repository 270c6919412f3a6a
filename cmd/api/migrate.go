package main

import (
	"github.com/spf13/cobra"

	dbinfra "civic-backoffice/internal/infrastructure/db"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := dbinfra.Open(a.cfg)
			if err != nil {
				return err
			}
			if err := dbinfra.Migrate(db); err != nil {
				return err
			}
			a.log.WithField("tables", len(dbinfra.Models())).Info("schema up to date")
			return nil
		},
	}
}
