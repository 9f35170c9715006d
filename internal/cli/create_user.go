package cli

import (
	"fmt"

	"github.com/projectdesk/projectdesk/db"
	"github.com/projectdesk/projectdesk/internal/models"
	"github.com/projectdesk/projectdesk/internal/services"
	"github.com/spf13/cobra"
)

type CreateUserOptions struct {
	Username string
	Email    string
	Password string
	Role     string
}

// NewCreateUserCommand bootstraps accounts, typically the first administrator,
// without going through the role checks of the API.
func NewCreateUserCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CreateUserOptions{}

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a user with any role",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreateUser(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Username, "username", "u", "", "username (required)")
	cmd.Flags().StringVar(&opts.Email, "email", "", "email address")
	cmd.Flags().StringVarP(&opts.Password, "password", "p", "", "password, at least 8 characters (required)")
	cmd.Flags().StringVar(&opts.Role, "role", string(models.RoleAdministrator), "administrator, collaborator or viewer")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func runCreateUser(cmd *cobra.Command, opts *CreateUserOptions) error {
	if _, err := openDatabase(); err != nil {
		return err
	}

	user, err := services.CreateUser(db.DB, services.UserInput{
		Username: opts.Username,
		Email:    opts.Email,
		Password: opts.Password,
		Role:     opts.Role,
	})
	if err != nil {
		return fmt.Errorf("failed to create user %s: %w", opts.Username, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created %s %s (id %d)\n", user.Role, user.Username, user.ID)
	return nil
}
