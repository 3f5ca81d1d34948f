package tui

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasktracker/internal/client"
	"tasktracker/internal/domain"
	"tasktracker/internal/viewstate"
)

var fixedNow = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

type fakeAPI struct {
	users     []domain.User
	tasks     []domain.Task
	nextID    int
	listCalls int
	created   []domain.NewTask
}

func (f *fakeAPI) id() string {
	f.nextID++
	return fmt.Sprintf("id-%d", f.nextID)
}

func (f *fakeAPI) Register(ctx context.Context, name, email string) (*domain.User, error) {
	email = domain.NormalizeEmail(email)
	for _, u := range f.users {
		if u.Email == email {
			return nil, &client.APIError{Status: 400, Message: "User already exists"}
		}
	}
	u := domain.User{ID: f.id(), Name: name, Email: email, Role: domain.RoleStudent}
	f.users = append(f.users, u)
	return &u, nil
}

func (f *fakeAPI) ListUsers(ctx context.Context) ([]domain.User, error) {
	return append([]domain.User(nil), f.users...), nil
}

func (f *fakeAPI) CreateTask(ctx context.Context, in domain.NewTask) (*domain.Task, error) {
	f.created = append(f.created, in)
	priority := in.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	if !priority.Valid() {
		return nil, &client.APIError{Status: 400, Message: "Invalid priority value"}
	}
	t := domain.Task{
		ID: f.id(), Title: in.Title, Description: in.Description, Priority: priority,
		Status: domain.TaskStatusPending, DueDate: in.DueDate, UserID: in.UserID,
	}
	f.tasks = append([]domain.Task{t}, f.tasks...)
	return &t, nil
}

func (f *fakeAPI) ListTasks(ctx context.Context, userID string) ([]domain.Task, error) {
	f.listCalls++
	var out []domain.Task
	for _, t := range f.tasks {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeAPI) UpdateTask(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error) {
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			patch.Apply(&f.tasks[i])
			t := f.tasks[i]
			return &t, nil
		}
	}
	return nil, &client.APIError{Status: 404, Message: "Task not found"}
}

func (f *fakeAPI) DeleteTask(ctx context.Context, id string) error {
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return &client.APIError{Status: 404, Message: "Task not found"}
}

type fakeIdentity struct {
	saved   *domain.User
	cleared bool
}

func (f *fakeIdentity) Save(user domain.User) error {
	f.saved = &user
	return nil
}

func (f *fakeIdentity) Clear() error {
	f.saved = nil
	f.cleared = true
	return nil
}

func newModel(api *fakeAPI, identity *fakeIdentity, user *domain.User) Model {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return New(Options{
		API:      api,
		Identity: identity,
		User:     user,
		Logger:   logger,
		Now:      func() time.Time { return fixedNow },
	})
}

// send feeds msg to the model and runs every resulting command to completion.
func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(Model)
	for cmd != nil {
		out := cmd()
		if _, ok := out.(tea.QuitMsg); ok {
			break
		}
		next, cmd = m.Update(out)
		m = next.(Model)
	}
	return m
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeLine(t *testing.T, m Model, text string) Model {
	t.Helper()
	for _, r := range text {
		m = send(t, m, key(string(r)))
	}
	return send(t, m, key("enter"))
}

func register(t *testing.T, m Model, name, email string) Model {
	t.Helper()
	m = send(t, m, key("enter"))
	m = typeLine(t, m, name)
	return typeLine(t, m, email)
}

func addTask(t *testing.T, m Model, title, desc, priority, due string) Model {
	t.Helper()
	m = send(t, m, key("a"))
	m = typeLine(t, m, title)
	m = typeLine(t, m, desc)
	m = typeLine(t, m, priority)
	return typeLine(t, m, due)
}

func TestRegister_LogsInAndPersists(t *testing.T) {
	api := &fakeAPI{}
	identity := &fakeIdentity{}
	m := register(t, newModel(api, identity, nil), "Alice", "alice@x.com")

	require.Equal(t, stepTasks, m.step)
	require.True(t, m.State().LoggedIn())
	assert.Equal(t, "Alice", m.State().User.Name)
	require.NotNil(t, identity.saved)
	assert.Equal(t, m.State().User.ID, identity.saved.ID)
	assert.Equal(t, 1, api.listCalls)
}

func TestRegister_ExistingEmailFallsBackToLogin(t *testing.T) {
	api := &fakeAPI{users: []domain.User{{ID: "u-alice", Name: "Alice", Email: "alice@x.com"}}}
	m := register(t, newModel(api, &fakeIdentity{}, nil), "Alice Again", "ALICE@x.com")

	require.True(t, m.State().LoggedIn())
	assert.Equal(t, "u-alice", m.State().User.ID)
	assert.Empty(t, m.err)
	assert.Len(t, api.users, 1)
}

func TestLogin_UnknownEmailShowsBanner(t *testing.T) {
	m := newModel(&fakeAPI{}, &fakeIdentity{}, nil)
	m = send(t, m, key("down"))
	m = send(t, m, key("enter"))
	require.Equal(t, stepEnteringEmail, m.step)

	m = typeLine(t, m, "ghost@x.com")
	assert.Equal(t, "User not found", m.err)
	assert.Equal(t, stepAuthMenu, m.step)
	assert.False(t, m.State().LoggedIn())
	assert.Contains(t, m.View(), "User not found")

	m = send(t, m, key("x"))
	assert.Empty(t, m.err)
	assert.Equal(t, stepAuthMenu, m.step)
}

func TestEndToEnd_DashboardCounts(t *testing.T) {
	api := &fakeAPI{}
	m := register(t, newModel(api, &fakeIdentity{}, nil), "Alice", "alice@x.com")

	m = addTask(t, m, "Write report", "", "high", "")
	require.Len(t, api.created, 1)
	assert.Equal(t, domain.PriorityHigh, api.created[0].Priority)
	assert.Equal(t, m.State().User.ID, api.created[0].UserID)

	require.Len(t, m.State().Tasks, 1)
	assert.Equal(t, domain.TaskStatusPending, m.State().Tasks[0].Status)

	m = send(t, m, key("enter"))
	assert.Equal(t, viewstate.Counts{Total: 1, Completed: 1}, m.State().Counts())
	assert.Contains(t, m.View(), "Completed 1")
}

func TestStatusTransitions(t *testing.T) {
	api := &fakeAPI{}
	m := register(t, newModel(api, &fakeIdentity{}, nil), "A", "a@x.com")
	m = addTask(t, m, "t", "", "", "")

	m = send(t, m, key("i"))
	assert.Equal(t, domain.TaskStatusInProgress, m.State().Tasks[0].Status)

	m = send(t, m, key("enter"))
	assert.Equal(t, domain.TaskStatusCompleted, m.State().Tasks[0].Status)

	m = send(t, m, key("enter"))
	assert.Equal(t, domain.TaskStatusPending, m.State().Tasks[0].Status)
}

func TestFilterDoesNotFetch(t *testing.T) {
	api := &fakeAPI{}
	m := register(t, newModel(api, &fakeIdentity{}, nil), "A", "a@x.com")
	m = addTask(t, m, "one", "", "", "")
	m = addTask(t, m, "two", "", "", "")
	m = send(t, m, key("enter"))

	calls := api.listCalls
	m = send(t, m, key("4"))
	assert.Equal(t, viewstate.FilterCompleted, m.State().Filter)
	require.Len(t, m.State().Visible(), 1)
	assert.Equal(t, "two", m.State().Visible()[0].Title)

	m = send(t, m, key("2"))
	require.Len(t, m.State().Visible(), 1)
	assert.Equal(t, "one", m.State().Visible()[0].Title)

	m = send(t, m, key("1"))
	assert.Len(t, m.State().Visible(), 2)
	assert.Equal(t, calls, api.listCalls)

	m = send(t, m, key("r"))
	assert.Equal(t, calls+1, api.listCalls)
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	api := &fakeAPI{}
	m := register(t, newModel(api, &fakeIdentity{}, nil), "A", "a@x.com")
	m = addTask(t, m, "t", "", "", "")

	m = send(t, m, key("d"))
	require.Equal(t, stepConfirmDelete, m.step)
	m = send(t, m, key("n"))
	assert.Equal(t, stepTasks, m.step)
	assert.Len(t, m.State().Tasks, 1)

	m = send(t, m, key("d"))
	m = send(t, m, key("y"))
	assert.Empty(t, m.State().Tasks)
	assert.Empty(t, api.tasks)
}

func TestAddTask_DueDate(t *testing.T) {
	api := &fakeAPI{}
	m := register(t, newModel(api, &fakeIdentity{}, nil), "A", "a@x.com")

	m = send(t, m, key("a"))
	m = typeLine(t, m, "t")
	m = typeLine(t, m, "d")
	m = typeLine(t, m, "")
	m = typeLine(t, m, "tomorrow")
	assert.Equal(t, "Invalid due date, use YYYY-MM-DD", m.err)
	assert.Empty(t, api.created)

	m = send(t, m, key("x"))
	require.Equal(t, stepEnteringDueDate, m.step)
	m = typeLine(t, m, "2026-10-01")

	require.Len(t, api.created, 1)
	require.NotNil(t, api.created[0].DueDate)
	assert.Equal(t, "2026-10-01", api.created[0].DueDate.Format(dueDateLayout))
	assert.True(t, m.State().IsOverdue(m.State().Tasks[0]))
	assert.Contains(t, m.View(), "OVERDUE")
}

func TestAddTask_ServerRejection(t *testing.T) {
	api := &fakeAPI{}
	m := register(t, newModel(api, &fakeIdentity{}, nil), "A", "a@x.com")
	m = addTask(t, m, "t", "", "urgent", "")

	assert.Equal(t, "Invalid priority value", m.err)
	assert.Empty(t, m.State().Tasks)
}

func TestEscCancelsAddTask(t *testing.T) {
	api := &fakeAPI{}
	m := register(t, newModel(api, &fakeIdentity{}, nil), "A", "a@x.com")

	m = send(t, m, key("a"))
	m = send(t, m, key("x"))
	m = send(t, m, key("esc"))
	assert.Equal(t, stepTasks, m.step)
	assert.Empty(t, api.created)
}

func TestLogout(t *testing.T) {
	api := &fakeAPI{}
	identity := &fakeIdentity{}
	m := register(t, newModel(api, identity, nil), "A", "a@x.com")
	m = addTask(t, m, "t", "", "", "")

	m = send(t, m, key("L"))
	assert.Equal(t, stepAuthMenu, m.step)
	assert.False(t, m.State().LoggedIn())
	assert.Empty(t, m.State().Tasks)
	assert.True(t, identity.cleared)
	assert.Nil(t, identity.saved)
}

func TestLogout_DropsTaskListFromPreviousUser(t *testing.T) {
	api := &fakeAPI{}
	m := register(t, newModel(api, &fakeIdentity{}, nil), "Alice", "alice@x.com")
	m = addTask(t, m, "alice's task", "", "", "")
	require.Len(t, m.State().Tasks, 1)

	// refresh is issued but its response has not arrived yet
	next, refresh := m.Update(key("r"))
	require.NotNil(t, refresh)
	m = next.(Model)

	m = send(t, m, key("L"))
	m = register(t, m, "Bob", "bob@x.com")
	require.Equal(t, "Bob", m.State().User.Name)
	require.Empty(t, m.State().Tasks)

	m = send(t, m, refresh())
	assert.Equal(t, "Bob", m.State().User.Name)
	assert.Empty(t, m.State().Tasks)
	assert.Equal(t, 0, m.State().Counts().Total)
	assert.False(t, m.loading)
	assert.NotContains(t, m.View(), "alice's task")
}

func TestLogout_IgnoresLateResponses(t *testing.T) {
	api := &fakeAPI{}
	m := register(t, newModel(api, &fakeIdentity{}, nil), "Alice", "alice@x.com")
	m = addTask(t, m, "t", "", "", "")

	next, mutate := m.Update(key("i"))
	require.NotNil(t, mutate)
	m = next.(Model)
	next, refresh := m.Update(key("r"))
	require.NotNil(t, refresh)
	m = next.(Model)

	m = send(t, m, key("L"))
	calls := api.listCalls

	next, cmd := m.Update(mutate())
	m = next.(Model)
	assert.Nil(t, cmd)
	assert.False(t, m.loading)

	next, cmd = m.Update(refresh())
	m = next.(Model)
	assert.Nil(t, cmd)
	assert.False(t, m.loading)
	assert.Empty(t, m.State().Tasks)
	assert.Equal(t, calls+1, api.listCalls)
	assert.Equal(t, stepAuthMenu, m.step)
}

func TestRestoredIdentityFetchesOnInit(t *testing.T) {
	user := domain.User{ID: "u1", Name: "A", Email: "a@x.com"}
	api := &fakeAPI{tasks: []domain.Task{{ID: "t1", Title: "kept", Status: domain.TaskStatusPending, UserID: "u1"}}}
	m := newModel(api, &fakeIdentity{}, &user)
	require.Equal(t, stepTasks, m.step)

	cmd := m.Init()
	require.NotNil(t, cmd)
	m = send(t, m, cmd())
	require.Len(t, m.State().Tasks, 1)
	assert.Contains(t, m.View(), "kept")
}

func TestQuit(t *testing.T) {
	m := newModel(&fakeAPI{}, &fakeIdentity{}, nil)
	next, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, "", next.(Model).View())
}
