package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"backend/internal/repositories"
	"backend/internal/server"
	"backend/internal/services"
	"backend/internal/utils"
)

func newUsersCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage accounts",
	}

	var email, password string
	createAdmin := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("ADMIN_PASSWORD")
			}
			if email == "" || password == "" {
				return errors.New("--email and --password (or ADMIN_PASSWORD) are required")
			}

			infra, err := server.Connect(cmd.Context(), a.cfg)
			if err != nil {
				return err
			}
			defer infra.Close()

			auth := services.NewAuthService(repositories.NewUserRepository(infra.Pool), nil, utils.NewTokenIssuer(a.cfg.JWT))
			user, err := auth.CreateAdmin(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created admin %s (%s)\n", user.Email, user.ID)
			return nil
		},
	}
	createAdmin.Flags().StringVar(&email, "email", "", "admin email address")
	createAdmin.Flags().StringVar(&password, "password", "", "admin password")

	cmd.AddCommand(createAdmin)
	return cmd
}
