package cli

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Fixtures is the seed file format. People are referenced by username.
type Fixtures struct {
	Users    []UserFixture    `yaml:"users"`
	Projects []ProjectFixture `yaml:"projects"`
}

type UserFixture struct {
	Username string `yaml:"username"`
	Email    string `yaml:"email,omitempty"`
	Password string `yaml:"password"`
	Role     string `yaml:"role,omitempty"`
}

type ProjectFixture struct {
	Name          string        `yaml:"name"`
	Description   string        `yaml:"description,omitempty"`
	StartDate     string        `yaml:"start_date"`
	EndDate       string        `yaml:"end_date,omitempty"`
	Status        string        `yaml:"status,omitempty"`
	Creator       string        `yaml:"creator"`
	Collaborators []string      `yaml:"collaborators,omitempty"`
	Tasks         []TaskFixture `yaml:"tasks,omitempty"`
}

type TaskFixture struct {
	Name        string           `yaml:"name"`
	Description string           `yaml:"description,omitempty"`
	Status      string           `yaml:"status,omitempty"`
	DueDate     string           `yaml:"due_date,omitempty"`
	AssignedTo  string           `yaml:"assigned_to,omitempty"`
	CreatedBy   string           `yaml:"created_by,omitempty"` // defaults to the project creator
	Comments    []CommentFixture `yaml:"comments,omitempty"`
}

type CommentFixture struct {
	Author  string `yaml:"author"`
	Content string `yaml:"content"`
}

// LoadFixtures reads a seed file, rejecting unknown keys.
func LoadFixtures(path string) (*Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixtures: %w", err)
	}

	var fixtures Fixtures
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&fixtures); err != nil {
		return nil, fmt.Errorf("failed to parse fixtures %s: %w", path, err)
	}

	if err := fixtures.validate(); err != nil {
		return nil, fmt.Errorf("invalid fixtures %s: %w", path, err)
	}

	return &fixtures, nil
}

func (f *Fixtures) validate() error {
	for i, user := range f.Users {
		if user.Username == "" {
			return fmt.Errorf("users[%d]: username is required", i)
		}
	}

	for i, project := range f.Projects {
		if project.Creator == "" {
			return fmt.Errorf("projects[%d]: creator is required", i)
		}
		for j, task := range project.Tasks {
			for k, comment := range task.Comments {
				if comment.Author == "" {
					return fmt.Errorf("projects[%d].tasks[%d].comments[%d]: author is required", i, j, k)
				}
			}
		}
	}

	return nil
}
