package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const passwordEnv = "CATALOGCTL_ADMIN_PASSWORD"

func newAdminCmd(backend Backend) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage catalog administrators",
	}

	var password string
	create := &cobra.Command{
		Use:   "create <email>",
		Short: "Create an administrator account",
		Long:  "Create an administrator account. The password is taken from --password or " + passwordEnv + ".",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv(passwordEnv)
			}
			if password == "" {
				return fmt.Errorf("password is required (--password or %s)", passwordEnv)
			}

			admin, err := backend.CreateAdmin(cmd.Context(), args[0], password)
			if err != nil {
				return fmt.Errorf("create admin: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "admin %s created (id %s)\n", admin.Email, admin.ID)
			return nil
		},
	}
	create.Flags().StringVar(&password, "password", "", "Administrator password (at least 6 characters)")
	cmd.AddCommand(create)

	return cmd
}
