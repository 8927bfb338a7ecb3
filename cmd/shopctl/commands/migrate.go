package commands

import (
	"fmt"

	"github.com/ikkim/storefront-backend/internal/db"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	Long: `Apply every pending schema migration and print the resulting version.

Examples:
  shopctl migrate
  shopctl migrate --status   # only print current and latest versions`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := openEnv(ctx)
		if err != nil {
			return err
		}
		defer e.close()

		// A fresh database has no schema_migrations table yet.
		current, err := db.CurrentVersion(ctx, e.conn)
		if err != nil {
			current = 0
		}
		if migrateStatusOnly {
			fmt.Fprintf(cmd.OutOrStdout(), "current version: %d\nlatest version:  %d\n", current, db.LatestVersion())
			return nil
		}

		if err := db.Migrate(ctx, e.conn); err != nil {
			return err
		}
		after, err := db.CurrentVersion(ctx, e.conn)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d (was %d)\n", after, current)
		return nil
	},
}

var migrateStatusOnly bool

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().BoolVar(&migrateStatusOnly, "status", false, "Show versions without applying")
}
