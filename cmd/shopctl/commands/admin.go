package commands

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/service"
	"github.com/spf13/cobra"
)

var (
	adminEmail     string
	adminPassword  string
	adminFirstName string
	adminLastName  string
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Register a new administrator account",
	Long: `Register a user with the given credentials and grant the ADMIN role.

Examples:
  shopctl create-admin --email ops@example.com --password 's3cret-pass'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := openEnv(ctx)
		if err != nil {
			return err
		}
		defer e.close()

		registered, err := e.services.Auth.Register(ctx, service.RegisterInput{
			Email:     adminEmail,
			Password:  adminPassword,
			FirstName: adminFirstName,
			LastName:  adminLastName,
		})
		if err != nil {
			return err
		}
		user, err := e.services.Users.SetRole(ctx, registered.UserID, model.RoleAdmin)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created admin %s (%s)\n", user.Email, user.ID)
		return nil
	},
}

var setRoleCmd = &cobra.Command{
	Use:   "set-role <user-id> <customer|admin>",
	Short: "Change the role of an existing user",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid user id %q: %w", args[0], err)
		}

		ctx := cmd.Context()
		e, err := openEnv(ctx)
		if err != nil {
			return err
		}
		defer e.close()

		user, err := e.services.Users.SetRole(ctx, id, model.ParseRole(args[1]))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", user.Email, user.EffectiveRole())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(createAdminCmd, setRoleCmd)
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "Email address (required)")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "Password, at least 8 characters (required)")
	createAdminCmd.Flags().StringVar(&adminFirstName, "first-name", "Store", "First name")
	createAdminCmd.Flags().StringVar(&adminLastName, "last-name", "Admin", "Last name")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")
}
