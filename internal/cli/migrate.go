package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := openDatabase()
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Database migrated (%s)\n", cfg.DBDriver)
			return nil
		},
	}
}
