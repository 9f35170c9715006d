package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/projectdesk/projectdesk/db"
	"github.com/projectdesk/projectdesk/internal/models"
	"github.com/projectdesk/projectdesk/internal/services"
	"github.com/projectdesk/projectdesk/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return buf.String(), err
}

// useTempDatabase points the commands at a fresh sqlite file.
func useTempDatabase(t *testing.T) {
	t.Helper()

	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", filepath.Join(t.TempDir(), "projectdesk.db"))

	t.Cleanup(func() {
		if db.DB == nil {
			return
		}
		if sqlDB, err := db.DB.DB(); err == nil {
			sqlDB.Close()
		}
		db.DB = nil
	})
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "projectdesk", cmd.Use)

	for _, name := range []string{"serve", "migrate", "create-user", "seed"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}

	envFlag := cmd.PersistentFlags().Lookup("env-file")
	require.NotNil(t, envFlag)
	assert.Equal(t, "", envFlag.DefValue)
}

func TestCommandFlags(t *testing.T) {
	cmd := NewRootCommand()

	serve, _, err := cmd.Find([]string{"serve"})
	require.NoError(t, err)
	interval := serve.Flags().Lookup("check-interval")
	require.NotNil(t, interval)
	assert.Equal(t, "30s", interval.DefValue)

	createUser, _, err := cmd.Find([]string{"create-user"})
	require.NoError(t, err)
	role := createUser.Flags().Lookup("role")
	require.NotNil(t, role)
	assert.Equal(t, "administrator", role.DefValue)

	seed, _, err := cmd.Find([]string{"seed"})
	require.NoError(t, err)
	file := seed.Flags().Lookup("file")
	require.NotNil(t, file)
	assert.Equal(t, "f", file.Shorthand)
}

func TestMigrateCreateUserAndSeed(t *testing.T) {
	useTempDatabase(t)

	out, err := execute(t, "migrate")
	require.NoError(t, err)
	assert.Equal(t, "Database migrated (sqlite)\n", out)

	out, err = execute(t, "create-user", "--username", "ada", "--password", "password123")
	require.NoError(t, err)
	assert.Equal(t, "Created administrator ada (id 1)\n", out)

	_, err = execute(t, "create-user", "--username", "ada", "--password", "password123")
	assert.ErrorContains(t, err, "already exists")

	_, err = execute(t, "create-user", "--username", "eve", "--password", "short")
	assert.ErrorContains(t, err, "password")

	out, err = execute(t, "seed", "--file", filepath.Join("testdata", "fixtures.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "Seeded 2 users, 1 projects, 2 tasks, 2 comments\n", out)

	projects, err := services.ListProjects(db.DB)
	require.NoError(t, err)
	require.Len(t, projects, 1)

	project, err := services.GetProjectTree(db.DB, projects[0].ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProjectInProgress, project.Status)
	require.NotNil(t, project.Creator)
	assert.Equal(t, "bob", project.Creator.Username)
	require.Len(t, project.Collaborators(), 1)
	assert.Equal(t, "carol", project.Collaborators()[0].Username)

	require.Len(t, project.Tasks, 2)
	tasks := map[string]models.Task{}
	for _, task := range project.Tasks {
		tasks[task.Name] = task
	}

	design := tasks["Design"]
	require.NotNil(t, design.AssignedTo)
	assert.Equal(t, "carol", design.AssignedTo.Username)
	require.Len(t, design.Comments, 2)
	assert.Equal(t, "carol", design.Comments[0].Author.Username)

	cutover := tasks["Cutover"]
	require.NotNil(t, cutover.CreatedBy)
	assert.Equal(t, "carol", cutover.CreatedBy.Username)
}

func TestSeed_RollsBackOnPermissionError(t *testing.T) {
	conn := testutil.NewDB(t)

	_, err := Seed(conn, &Fixtures{
		Users: []UserFixture{
			{Username: "bob", Password: "password123", Role: "collaborator"},
			{Username: "vera", Password: "password123"},
		},
		Projects: []ProjectFixture{
			{Name: "Allowed", StartDate: "2024-01-01", Creator: "bob"},
			{Name: "Refused", StartDate: "2024-01-01", Creator: "vera"},
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrPermission)
	assert.Contains(t, err.Error(), `project "Refused"`)

	counts, err := services.CountEntities(conn)
	require.NoError(t, err)
	assert.Zero(t, counts.Projects)

	users, err := services.ListUsers(conn)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestSeed_UnknownUser(t *testing.T) {
	conn := testutil.NewDB(t)

	_, err := Seed(conn, &Fixtures{
		Projects: []ProjectFixture{{Name: "Orphan", StartDate: "2024-01-01", Creator: "nobody"}},
	})
	assert.ErrorContains(t, err, `unknown user "nobody"`)
}

func TestLoadFixtures(t *testing.T) {
	fixtures, err := LoadFixtures(filepath.Join("testdata", "fixtures.yaml"))
	require.NoError(t, err)
	assert.Len(t, fixtures.Users, 3)
	require.Len(t, fixtures.Projects, 1)
	assert.Equal(t, []string{"carol"}, fixtures.Projects[0].Collaborators)

	dir := t.TempDir()

	unknown := filepath.Join(dir, "unknown.yaml")
	require.NoError(t, os.WriteFile(unknown, []byte("users:\n  - username: bob\n    rank: captain\n"), 0o644))
	_, err = LoadFixtures(unknown)
	assert.ErrorContains(t, err, "rank")

	creatorless := filepath.Join(dir, "creatorless.yaml")
	require.NoError(t, os.WriteFile(creatorless, []byte("projects:\n  - name: Loose\n    start_date: \"2024-01-01\"\n"), 0o644))
	_, err = LoadFixtures(creatorless)
	assert.ErrorContains(t, err, "creator is required")

	_, err = LoadFixtures(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestServe_RequiresJWTSecret(t *testing.T) {
	useTempDatabase(t)
	t.Setenv("JWT_SECRET", "")

	_, err := execute(t, "serve")
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestEnvFileIsLoaded(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("DATABASE_URL", "")
	os.Unsetenv("DB_DRIVER")
	os.Unsetenv("DATABASE_URL")

	envFile := filepath.Join(t.TempDir(), "test.env")
	dbPath := filepath.Join(t.TempDir(), "from-env-file.db")
	require.NoError(t, os.WriteFile(envFile, []byte("DB_DRIVER=sqlite\nDATABASE_URL="+dbPath+"\n"), 0o644))

	t.Cleanup(func() {
		if db.DB != nil {
			if sqlDB, err := db.DB.DB(); err == nil {
				sqlDB.Close()
			}
			db.DB = nil
		}
	})

	out, err := execute(t, "--env-file", envFile, "migrate")
	require.NoError(t, err)
	assert.Equal(t, "Database migrated (sqlite)\n", out)

	_, err = os.Stat(dbPath)
	assert.NoError(t, err)
}
