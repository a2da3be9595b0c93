package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"backend/internal/seed"
	"backend/internal/server"
)

func newSeedCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load default catalog data",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "amenities",
		Short: "Create the default amenities that do not exist yet",
		RunE: func(cmd *cobra.Command, args []string) error {
			infra, err := server.Connect(cmd.Context(), a.cfg)
			if err != nil {
				return err
			}
			defer infra.Close()

			created, err := seed.Amenities(cmd.Context(), infra.DB)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Successfully created %d new amenities\n", created)
			return nil
		},
	})
	return cmd
}
