package cli

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/projectdesk/projectdesk/db"
	"github.com/projectdesk/projectdesk/internal/config"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	EnvFile string
}

// NewRootCommand creates the root command for the projectdesk CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "projectdesk",
		Short: "ProjectDesk - projects, tasks and comments for small teams",
		Long:  "Serve the ProjectDesk web interface and REST API, and manage its database.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.EnvFile == "" {
				return nil
			}
			if err := godotenv.Load(opts.EnvFile); err != nil {
				return fmt.Errorf("failed to load env file %s: %w", opts.EnvFile, err)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", "", "additional .env file to load before the environment")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewCreateUserCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))

	return cmd
}

// openDatabase loads the configuration and connects db.DB with a migrated schema.
func openDatabase() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if err := cfg.ValidateDatabase(); err != nil {
		return nil, err
	}

	if err := db.ConnectDatabase(cfg.DBDriver, cfg.DatabaseURL); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.MigrateDatabase(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return cfg, nil
}
