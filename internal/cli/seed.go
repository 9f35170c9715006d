package cli

import (
	"errors"
	"fmt"

	"github.com/projectdesk/projectdesk/db"
	"github.com/projectdesk/projectdesk/internal/access"
	"github.com/projectdesk/projectdesk/internal/models"
	"github.com/projectdesk/projectdesk/internal/services"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

type SeedOptions struct {
	File string
}

// SeedResult counts what a seed run created.
type SeedResult struct {
	Users    int
	Projects int
	Tasks    int
	Comments int
}

func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SeedOptions{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load users, projects, tasks and comments from a YAML file",
		Long: `Load fixtures from a YAML file in a single transaction.

Projects, tasks and comments are created on behalf of the users named in the
file, so the usual permission rules apply. Users that already exist are reused.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "fixtures.yaml", "fixtures file")

	return cmd
}

func runSeed(cmd *cobra.Command, opts *SeedOptions) error {
	fixtures, err := LoadFixtures(opts.File)
	if err != nil {
		return err
	}

	if _, err := openDatabase(); err != nil {
		return err
	}

	result, err := Seed(db.DB, fixtures)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d users, %d projects, %d tasks, %d comments\n",
		result.Users, result.Projects, result.Tasks, result.Comments)
	return nil
}

// Seed writes fixtures through the services layer. Nothing is kept on error.
func Seed(conn *gorm.DB, fixtures *Fixtures) (SeedResult, error) {
	var result SeedResult

	err := conn.Transaction(func(tx *gorm.DB) error {
		s := &seeder{tx: tx, users: map[string]*models.User{}, result: &result}

		for _, user := range fixtures.Users {
			if err := s.user(user); err != nil {
				return fmt.Errorf("user %q: %w", user.Username, err)
			}
		}

		for _, project := range fixtures.Projects {
			if err := s.project(project); err != nil {
				return fmt.Errorf("project %q: %w", project.Name, err)
			}
		}

		return nil
	})

	if err != nil {
		return SeedResult{}, err
	}

	return result, nil
}

type seeder struct {
	tx     *gorm.DB
	users  map[string]*models.User
	result *SeedResult
}

func (s *seeder) user(fixture UserFixture) error {
	existing, err := services.GetUserByUsername(s.tx, fixture.Username)
	if err == nil {
		s.users[existing.Username] = existing
		return nil
	}
	if !errors.Is(err, services.ErrNotFound) {
		return err
	}

	user, err := services.CreateUser(s.tx, services.UserInput{
		Username: fixture.Username,
		Email:    fixture.Email,
		Password: fixture.Password,
		Role:     fixture.Role,
	})
	if err != nil {
		return err
	}

	s.users[user.Username] = user
	s.result.Users++
	return nil
}

// lookup resolves a username from the file or, failing that, the database.
func (s *seeder) lookup(username string) (*models.User, error) {
	if user, ok := s.users[username]; ok {
		return user, nil
	}

	user, err := services.GetUserByUsername(s.tx, username)
	if errors.Is(err, services.ErrNotFound) {
		return nil, fmt.Errorf("unknown user %q", username)
	}
	if err != nil {
		return nil, err
	}

	s.users[username] = user
	return user, nil
}

func actorOf(user *models.User) *access.Actor {
	return &access.Actor{ID: user.ID, Role: user.Role}
}

func (s *seeder) project(fixture ProjectFixture) error {
	creator, err := s.lookup(fixture.Creator)
	if err != nil {
		return err
	}

	project, err := services.CreateProject(s.tx, actorOf(creator), services.ProjectInput{
		Name:        fixture.Name,
		Description: fixture.Description,
		StartDate:   fixture.StartDate,
		EndDate:     fixture.EndDate,
		Status:      fixture.Status,
	})
	if err != nil {
		return err
	}
	s.result.Projects++

	if len(fixture.Collaborators) > 0 {
		ids := make([]uint, 0, len(fixture.Collaborators))
		for _, username := range fixture.Collaborators {
			user, err := s.lookup(username)
			if err != nil {
				return err
			}
			ids = append(ids, user.ID)
		}

		if _, err := services.SetCollaborators(s.tx, actorOf(creator), project.ID, ids); err != nil {
			return err
		}
	}

	for _, task := range fixture.Tasks {
		if err := s.task(project, creator, task); err != nil {
			return fmt.Errorf("task %q: %w", task.Name, err)
		}
	}

	return nil
}

func (s *seeder) task(project *models.Project, creator *models.User, fixture TaskFixture) error {
	author := creator
	if fixture.CreatedBy != "" {
		var err error
		if author, err = s.lookup(fixture.CreatedBy); err != nil {
			return err
		}
	}

	in := services.TaskInput{
		ProjectID:   project.ID,
		Name:        fixture.Name,
		Description: fixture.Description,
		Status:      fixture.Status,
		DueDate:     fixture.DueDate,
	}

	if fixture.AssignedTo != "" {
		assignee, err := s.lookup(fixture.AssignedTo)
		if err != nil {
			return err
		}
		in.AssignedToID = &assignee.ID
	}

	task, err := services.CreateTask(s.tx, actorOf(author), in)
	if err != nil {
		return err
	}
	s.result.Tasks++

	for i, comment := range fixture.Comments {
		user, err := s.lookup(comment.Author)
		if err != nil {
			return fmt.Errorf("comment %d: %w", i+1, err)
		}

		_, err = services.CreateComment(s.tx, actorOf(user), services.CommentInput{TaskID: task.ID, Content: comment.Content})
		if err != nil {
			return fmt.Errorf("comment %d: %w", i+1, err)
		}
		s.result.Comments++
	}

	return nil
}
