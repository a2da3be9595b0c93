package main

import (
	"github.com/spf13/cobra"

	"backend/internal/server"
)

func newMigrateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database if needed and apply the schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			infra, err := server.Connect(cmd.Context(), a.cfg)
			if err != nil {
				return err
			}
			infra.Close()
			a.log.Info("database is up to date")
			return nil
		},
	}
}
