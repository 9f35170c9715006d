package services

import (
	"testing"

	"github.com/projectdesk/projectdesk/internal/models"
	"github.com/projectdesk/projectdesk/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProject_ViewerRefused(t *testing.T) {
	conn := testutil.NewDB(t)
	viewer := testutil.CreateUser(t, conn, "vera", models.RoleViewer)

	_, err := CreateProject(conn, testutil.Actor(viewer), ProjectInput{Name: "Migration", StartDate: "2024-01-01"})
	assert.ErrorIs(t, err, ErrPermission)

	var count int64
	conn.Model(&models.Project{}).Count(&count)
	assert.Zero(t, count)
}

func TestCreateProject_CollaboratorStampsCreator(t *testing.T) {
	conn := testutil.NewDB(t)
	collaborator := testutil.CreateUser(t, conn, "bob", models.RoleCollaborator)

	project, err := CreateProject(conn, testutil.Actor(collaborator), ProjectInput{
		Name:        "Migration",
		Description: "Move to the new cluster",
		StartDate:   "2024-01-01",
		EndDate:     "2024-06-30",
	})
	require.NoError(t, err)

	require.NotNil(t, project.CreatorID)
	assert.Equal(t, collaborator.ID, *project.CreatorID)
	assert.Equal(t, "bob", project.Creator.Username)
	assert.Equal(t, models.ProjectPending, project.Status)
	assert.Equal(t, "2024-06-30", FormatDate(project.EndDate))
	assert.False(t, project.CreatedAt.IsZero())
}

func TestCreateProject_Validation(t *testing.T) {
	conn := testutil.NewDB(t)
	admin := testutil.CreateUser(t, conn, "ada", models.RoleAdministrator)

	_, err := CreateProject(conn, testutil.Actor(admin), ProjectInput{
		StartDate: "01/02/2024",
		EndDate:   "2023-01-01",
		Status:    "archived",
	})

	validationErr, ok := IsValidation(err)
	require.True(t, ok, "expected a validation error, got %v", err)
	assert.Contains(t, validationErr.Fields, "name")
	assert.Contains(t, validationErr.Fields, "start_date")
	assert.Contains(t, validationErr.Fields, "status")

	_, err = CreateProject(conn, testutil.Actor(admin), ProjectInput{Name: "Late", StartDate: "2024-05-01", EndDate: "2024-04-01"})
	validationErr, ok = IsValidation(err)
	require.True(t, ok)
	assert.Contains(t, validationErr.Fields, "end_date")
}

func TestUpdateProject_CreatorOrAdministrator(t *testing.T) {
	conn := testutil.NewDB(t)
	admin := testutil.CreateUser(t, conn, "ada", models.RoleAdministrator)
	owner := testutil.CreateUser(t, conn, "bob", models.RoleCollaborator)
	other := testutil.CreateUser(t, conn, "carol", models.RoleCollaborator)
	project := testutil.CreateProject(t, conn, "Migration", owner)

	in := ProjectInput{Name: "Migration v2", StartDate: "2024-01-01", Status: "in_progress"}

	_, err := UpdateProject(conn, testutil.Actor(other), project.ID, in)
	assert.ErrorIs(t, err, ErrPermission)

	updated, err := UpdateProject(conn, testutil.Actor(owner), project.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Migration v2", updated.Name)
	assert.Equal(t, models.ProjectInProgress, updated.Status)
	require.NotNil(t, updated.CreatorID)
	assert.Equal(t, owner.ID, *updated.CreatorID, "creator is not editable")

	in.Name = "Migration v3"
	_, err = UpdateProject(conn, testutil.Actor(admin), project.ID, in)
	require.NoError(t, err)

	_, err = UpdateProject(conn, testutil.Actor(admin), 9999, in)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteProject_AdministratorOnly(t *testing.T) {
	conn := testutil.NewDB(t)
	owner := testutil.CreateUser(t, conn, "bob", models.RoleCollaborator)
	project := testutil.CreateProject(t, conn, "Migration", owner)

	err := DeleteProject(conn, testutil.Actor(owner), project.ID)
	assert.ErrorIs(t, err, ErrPermission)

	_, err = GetProject(conn, project.ID)
	assert.NoError(t, err)
}

func TestDeleteProject_Cascades(t *testing.T) {
	conn := testutil.NewDB(t)
	admin := testutil.CreateUser(t, conn, "ada", models.RoleAdministrator)
	member := testutil.CreateUser(t, conn, "bob", models.RoleCollaborator)

	doomed := testutil.CreateProject(t, conn, "Doomed", admin, member)
	kept := testutil.CreateProject(t, conn, "Kept", admin)

	doomedTask := testutil.CreateTask(t, conn, doomed, "Design", member)
	testutil.CreateComment(t, conn, doomedTask, member, "first")
	testutil.CreateComment(t, conn, doomedTask, admin, "second")

	keptTask := testutil.CreateTask(t, conn, kept, "Build", admin)
	testutil.CreateComment(t, conn, keptTask, admin, "stays")

	require.NoError(t, DeleteProject(conn, testutil.Actor(admin), doomed.ID))

	var tasks, comments, memberships int64
	conn.Model(&models.Task{}).Where("project_id = ?", doomed.ID).Count(&tasks)
	conn.Model(&models.Comment{}).Where("task_id = ?", doomedTask.ID).Count(&comments)
	conn.Model(&models.ProjectMembership{}).Where("project_id = ?", doomed.ID).Count(&memberships)
	assert.Zero(t, tasks)
	assert.Zero(t, comments)
	assert.Zero(t, memberships)

	counts, err := CountEntities(conn)
	require.NoError(t, err)
	assert.Equal(t, Counts{Projects: 1, Tasks: 1, Comments: 1}, counts)

	assert.ErrorIs(t, DeleteProject(conn, testutil.Actor(admin), doomed.ID), ErrNotFound)
}

func TestListProjects_OrderedByName(t *testing.T) {
	conn := testutil.NewDB(t)
	admin := testutil.CreateUser(t, conn, "ada", models.RoleAdministrator)
	for _, name := range []string{"Gamma", "Alpha", "Beta"} {
		testutil.CreateProject(t, conn, name, admin)
	}

	projects, err := ListProjects(conn)
	require.NoError(t, err)
	require.Len(t, projects, 3)
	assert.Equal(t, "Alpha", projects[0].Name)
	assert.Equal(t, "Beta", projects[1].Name)
	assert.Equal(t, "Gamma", projects[2].Name)

	rows, err := ListProjectRows(conn)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, ProjectRow{ID: projects[0].ID, Name: "Alpha", Status: models.ProjectPending}, rows[0])
}

func TestSetCollaborators_ReplacesSet(t *testing.T) {
	conn := testutil.NewDB(t)
	owner := testutil.CreateUser(t, conn, "bob", models.RoleCollaborator)
	carol := testutil.CreateUser(t, conn, "carol", models.RoleCollaborator)
	dave := testutil.CreateUser(t, conn, "dave", models.RoleViewer)
	outsider := testutil.CreateUser(t, conn, "eve", models.RoleCollaborator)
	project := testutil.CreateProject(t, conn, "Migration", owner, carol)

	updated, err := SetCollaborators(conn, testutil.Actor(owner), project.ID, []uint{dave.ID, dave.ID, outsider.ID})
	require.NoError(t, err)

	usernames := []string{}
	for _, user := range updated.Collaborators() {
		usernames = append(usernames, user.Username)
	}
	assert.ElementsMatch(t, []string{"dave", "eve"}, usernames)

	_, err = SetCollaborators(conn, testutil.Actor(outsider), project.ID, nil)
	assert.ErrorIs(t, err, ErrPermission, "membership does not grant collaborator management")

	_, err = SetCollaborators(conn, testutil.Actor(owner), project.ID, []uint{carol.ID, 4242})
	validationErr, ok := IsValidation(err)
	require.True(t, ok)
	assert.Contains(t, validationErr.Fields, "collaborators")

	reloaded, err := GetProject(conn, project.ID)
	require.NoError(t, err)
	assert.Len(t, reloaded.Collaborators(), 2, "a rejected update leaves the set untouched")

	cleared, err := SetCollaborators(conn, testutil.Actor(owner), project.ID, []uint{})
	require.NoError(t, err)
	assert.Empty(t, cleared.Collaborators())
}

func TestGetProjectTree_NestsTasksAndComments(t *testing.T) {
	conn := testutil.NewDB(t)
	admin := testutil.CreateUser(t, conn, "ada", models.RoleAdministrator)
	project := testutil.CreateProject(t, conn, "Migration", admin)
	task := testutil.CreateTask(t, conn, project, "Design", admin)
	testutil.CreateComment(t, conn, task, admin, "first")
	testutil.CreateComment(t, conn, task, nil, "second")

	tree, err := GetProjectTree(conn, project.ID)
	require.NoError(t, err)
	require.Len(t, tree.Tasks, 1)
	require.Len(t, tree.Tasks[0].Comments, 2)
	assert.Equal(t, "first", tree.Tasks[0].Comments[0].Content)
	assert.Equal(t, "ada", tree.Tasks[0].Comments[0].Author.Username)
	assert.Nil(t, tree.Tasks[0].Comments[1].Author)
}
