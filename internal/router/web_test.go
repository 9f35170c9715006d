package router

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/projectdesk/projectdesk/db"
	"github.com/projectdesk/projectdesk/internal/models"
	"github.com/projectdesk/projectdesk/internal/realtime"
	"github.com/projectdesk/projectdesk/internal/services"
	"github.com/projectdesk/projectdesk/internal/testutil"
	"github.com/projectdesk/projectdesk/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeb_AnonymousVisitorsAreSentToLogin(t *testing.T) {
	r := newServer(t)

	w := doForm(t, r, http.MethodGet, "/projects/3", "", nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login?next="+url.QueryEscape("/projects/3"), w.Header().Get("Location"))

	w = doForm(t, r, http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/home", w.Header().Get("Location"))

	w = doForm(t, r, http.MethodGet, "/login", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWeb_LoginAndLogout(t *testing.T) {
	r := newServer(t)
	testutil.CreateUser(t, db.DB, "bob", models.RoleCollaborator)

	w := doForm(t, r, http.MethodPost, "/login", "", url.Values{"username": {"bob"}, "password": {"wrong-password"}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "Please enter a correct username and password.")

	w = doForm(t, r, http.MethodPost, "/login", "", url.Values{
		"username": {"bob"}, "password": {testutil.Password}, "next": {"/projects"},
	})
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/projects", w.Header().Get("Location"))

	var session string
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == types.TokenCookie {
			session = cookie.Value
		}
	}
	require.NotEmpty(t, session)

	w = doForm(t, r, http.MethodGet, "/home", session, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "bob")

	w = doForm(t, r, http.MethodPost, "/login", "", url.Values{
		"username": {"bob"}, "password": {testutil.Password}, "next": {"//evil.example"},
	})
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/home", w.Header().Get("Location"))

	w = doForm(t, r, http.MethodGet, "/logout", session, nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	assert.Equal(t, "success:You have been logged out.", flashOf(w))
}

func TestWeb_RegisterCreatesViewer(t *testing.T) {
	r := newServer(t)

	w := doForm(t, r, http.MethodPost, "/register", "", url.Values{
		"username": {"newbie"}, "password": {"longenough"}, "password_confirm": {"different"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = doForm(t, r, http.MethodPost, "/register", "", url.Values{
		"username": {"newbie"}, "password": {"longenough"}, "password_confirm": {"longenough"},
	})
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/home", w.Header().Get("Location"))

	user, err := services.Authenticate(db.DB, "newbie", "longenough")
	require.NoError(t, err)
	assert.Equal(t, models.RoleViewer, user.Role)
}

func TestWeb_ViewerCannotOpenProjectForm(t *testing.T) {
	r := newServer(t)
	vera := testutil.CreateUser(t, db.DB, "vera", models.RoleViewer)

	w := doForm(t, r, http.MethodGet, "/projects/new", tokenFor(t, vera), nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/projects", w.Header().Get("Location"))
	assert.Equal(t, "error:You do not have permission to perform this action.", flashOf(w))

	w = doForm(t, r, http.MethodPost, "/projects/new", tokenFor(t, vera), url.Values{
		"name": {"Sneaky"}, "start_date": {"2024-01-01"},
	})
	require.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, flashOf(w), "error:")

	counts, err := services.CountEntities(db.DB)
	require.NoError(t, err)
	assert.Zero(t, counts.Projects)
}

func TestWeb_ConstraintViolationIsConflict(t *testing.T) {
	r := newServer(t)
	bob := testutil.CreateUser(t, db.DB, "bob", models.RoleCollaborator)
	testutil.CreateProject(t, db.DB, "Migration", bob)
	require.NoError(t, db.DB.Exec("CREATE UNIQUE INDEX idx_projects_name ON projects(name)").Error)

	w := doForm(t, r, http.MethodPost, "/projects/new", tokenFor(t, bob), url.Values{
		"name": {"Migration"}, "start_date": {"2024-01-01"}, "status": {"pending"},
	})
	require.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	assert.JSONEq(t, `{"msg":"project already exists"}`, w.Body.String())
}

func TestWeb_ProjectFormLifecycle(t *testing.T) {
	r := newServer(t)
	admin := testutil.CreateUser(t, db.DB, "ada", models.RoleAdministrator)
	bob := testutil.CreateUser(t, db.DB, "bob", models.RoleCollaborator)
	carol := testutil.CreateUser(t, db.DB, "carol", models.RoleCollaborator)

	w := doForm(t, r, http.MethodPost, "/projects/new", tokenFor(t, bob), url.Values{
		"name": {"Migration"}, "start_date": {"2024-03-01"}, "end_date": {"2024-01-01"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "Migration")

	w = doForm(t, r, http.MethodPost, "/projects/new", tokenFor(t, bob), url.Values{
		"name": {"Migration"}, "start_date": {"2024-01-01"}, "status": {"pending"},
	})
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "success:Project created.", flashOf(w))

	projects, err := services.ListProjects(db.DB)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	project := projects[0]
	require.NotNil(t, project.CreatorID)
	assert.Equal(t, bob.ID, *project.CreatorID)
	assert.Equal(t, fmt.Sprintf("/projects/%d", project.ID), w.Header().Get("Location"))

	path := fmt.Sprintf("/projects/%d", project.ID)

	w = doForm(t, r, http.MethodPost, path+"/collaborators", tokenFor(t, bob), url.Values{
		"collaborators": {fmt.Sprint(carol.ID)},
	})
	require.Equal(t, http.StatusFound, w.Code)

	w = doForm(t, r, http.MethodGet, path, tokenFor(t, carol), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "carol")

	// Collaborators who did not create the project may not edit it.
	w = doForm(t, r, http.MethodGet, path+"/edit", tokenFor(t, carol), nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, path, w.Header().Get("Location"))

	w = doForm(t, r, http.MethodGet, path+"/delete", tokenFor(t, bob), nil)
	require.Equal(t, http.StatusFound, w.Code)

	w = doForm(t, r, http.MethodGet, path+"/delete", tokenFor(t, admin), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Migration")

	_, err = services.GetProject(db.DB, project.ID)
	require.NoError(t, err, "the confirmation page must not delete")

	w = doForm(t, r, http.MethodPost, path+"/delete", tokenFor(t, admin), nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/projects", w.Header().Get("Location"))

	w = doForm(t, r, http.MethodGet, path, tokenFor(t, admin), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWeb_TaskAndCommentPages(t *testing.T) {
	r := newServer(t)
	bob := testutil.CreateUser(t, db.DB, "bob", models.RoleCollaborator)
	vera := testutil.CreateUser(t, db.DB, "vera", models.RoleViewer)
	project := testutil.CreateProject(t, db.DB, "Migration", bob)

	w := doForm(t, r, http.MethodPost, "/tasks/new", tokenFor(t, bob), url.Values{
		"project": {fmt.Sprint(project.ID)}, "name": {""},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = doForm(t, r, http.MethodPost, "/tasks/new", tokenFor(t, bob), url.Values{
		"project": {fmt.Sprint(project.ID)}, "name": {"Design"}, "due_date": {"2024-02-01"}, "assigned_to": {""},
	})
	require.Equal(t, http.StatusFound, w.Code)

	tasks, err := services.ListTasks(db.DB)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	taskPath := fmt.Sprintf("/tasks/%d", tasks[0].ID)
	assert.Equal(t, taskPath, w.Header().Get("Location"))

	w = doForm(t, r, http.MethodPost, "/comments/new", tokenFor(t, bob), url.Values{
		"task": {fmt.Sprint(tasks[0].ID)}, "content": {"   "},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = doForm(t, r, http.MethodPost, "/comments/new", tokenFor(t, bob), url.Values{
		"task": {fmt.Sprint(tasks[0].ID)}, "content": {"Kickoff done"},
	})
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, taskPath, w.Header().Get("Location"))

	w = doForm(t, r, http.MethodGet, taskPath, tokenFor(t, vera), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Kickoff done")

	w = doForm(t, r, http.MethodPost, "/comments/new", tokenFor(t, vera), url.Values{
		"task": {fmt.Sprint(tasks[0].ID)}, "content": {"me too"},
	})
	require.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, flashOf(w), "error:")

	w = doForm(t, r, http.MethodPost, "/comments", tokenFor(t, vera), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"id":1,"task":"Design","author":"bob"}]`, w.Body.String())

	w = doForm(t, r, http.MethodPost, taskPath+"/delete", tokenFor(t, bob), nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, fmt.Sprintf("/projects/%d", project.ID), w.Header().Get("Location"))

	counts, err := services.CountEntities(db.DB)
	require.NoError(t, err)
	assert.Equal(t, services.Counts{Projects: 1}, counts)
}

func TestWeb_RowsMatchAPI(t *testing.T) {
	r := newServer(t)
	admin := testutil.CreateUser(t, db.DB, "ada", models.RoleAdministrator)
	testutil.CreateProject(t, db.DB, "Beta", admin)
	testutil.CreateProject(t, db.DB, "Alpha", admin)

	ui := doForm(t, r, http.MethodPost, "/projects", tokenFor(t, admin), nil)
	api := doJSON(t, r, http.MethodGet, "/api/projects/rows", tokenFor(t, admin), nil)

	require.Equal(t, http.StatusOK, ui.Code)
	require.Equal(t, http.StatusOK, api.Code)
	assert.Equal(t, api.Body.String(), ui.Body.String())

	w := doForm(t, r, http.MethodGet, "/badgets", tokenFor(t, admin), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"projects":2,"tasks":0,"comments":0}`, w.Body.String())

	w = doForm(t, r, http.MethodGet, "/badgets", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"projects":2,"tasks":0,"comments":0}`, w.Body.String())
}

func TestWeb_RolesAreAdministratorOnly(t *testing.T) {
	r := newServer(t)
	admin := testutil.CreateUser(t, db.DB, "ada", models.RoleAdministrator)
	bob := testutil.CreateUser(t, db.DB, "bob", models.RoleCollaborator)

	w := doForm(t, r, http.MethodGet, "/roles", tokenFor(t, bob), nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/home", w.Header().Get("Location"))

	w = doForm(t, r, http.MethodGet, "/roles", tokenFor(t, admin), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "bob")

	path := fmt.Sprintf("/roles/%d", bob.ID)

	w = doForm(t, r, http.MethodPost, path+"/edit", tokenFor(t, admin), url.Values{"role": {"owner"}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = doForm(t, r, http.MethodPost, path+"/edit", tokenFor(t, admin), url.Values{"role": {"viewer"}})
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, path, w.Header().Get("Location"))
	assert.Equal(t, "success:bob is now viewer.", flashOf(w))

	user, err := services.GetUser(db.DB, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleViewer, user.Role)
}

func TestWebSocket_ReceivesRefreshOnProjectChange(t *testing.T) {
	r := newServer(t)
	bob := testutil.CreateUser(t, db.DB, "bob", models.RoleCollaborator)
	project := testutil.CreateProject(t, db.DB, "Migration", bob)

	server := httptest.NewServer(r)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	header := http.Header{"Authorization": {"Bearer " + tokenFor(t, bob)}}

	_, resp, err := websocket.DefaultDialer.Dial(wsURL+"/api/ws/999", header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(fmt.Sprintf("%s/api/ws/%d", wsURL, project.ID), header)
	require.NoError(t, err)
	defer conn.Close()

	var welcome realtime.Message
	require.NoError(t, conn.ReadJSON(&welcome))
	assert.Equal(t, "connected", welcome.Type)

	w := doJSON(t, r, http.MethodPatch, fmt.Sprintf("/api/projects/%d", project.ID), tokenFor(t, bob), map[string]interface{}{"status": "completed"})
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var refresh realtime.Message
	require.NoError(t, conn.ReadJSON(&refresh))
	assert.Equal(t, "refresh", refresh.Type)
	assert.Equal(t, project.ID, refresh.ProjectID)
	assert.Equal(t, "project", refresh.Entity)
}
