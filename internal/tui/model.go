package tui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"tasktracker/internal/client"
	"tasktracker/internal/domain"
	"tasktracker/internal/viewstate"
)

type step int

const (
	stepAuthMenu step = iota
	stepEnteringName
	stepEnteringEmail
	stepAuthenticating
	stepTasks
	stepEnteringTitle
	stepEnteringDescription
	stepEnteringPriority
	stepEnteringDueDate
	stepConfirmDelete
)

type authMode int

const (
	authRegister authMode = iota
	authLogin
)

const dueDateLayout = "2006-01-02"

// IdentityStore persists the logged-in user across runs.
type IdentityStore interface {
	Save(user domain.User) error
	Clear() error
}

// Options configures a Model. User is the identity restored from disk, if any.
type Options struct {
	API      client.API
	Resolver client.IdentityResolver
	Identity IdentityStore
	User     *domain.User
	Logger   *logrus.Logger
	Now      func() time.Time
}

// Model is the bubbletea model of the task tracker client.
type Model struct {
	api      client.API
	resolver client.IdentityResolver
	identity IdentityStore
	logger   *logrus.Logger
	now      func() time.Time

	state viewstate.State

	step         step
	mode         authMode
	menuCursor   int
	cursor       int
	currentInput string
	name         string
	draft        domain.NewTask
	pendingID    string
	notice       string
	err          string
	loading      bool
	quitting     bool
}

func New(opts Options) Model {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logrus.New()
	}
	if opts.Resolver == nil {
		opts.Resolver = client.NewEmailResolver(opts.API)
	}

	m := Model{
		api:      opts.API,
		resolver: opts.Resolver,
		identity: opts.Identity,
		logger:   opts.Logger,
		now:      opts.Now,
		state:    viewstate.New(opts.Now()),
		step:     stepAuthMenu,
	}
	if opts.User != nil {
		m.state = m.state.WithUser(opts.User)
		m.step = stepTasks
		m.loading = true
	}
	return m
}

// State exposes the current view state.
func (m Model) State() viewstate.State {
	return m.state
}

func (m Model) Init() tea.Cmd {
	return m.fetchTasksCmd()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case loggedInMsg:
		user := msg.user
		if m.identity != nil {
			if err := m.identity.Save(user); err != nil {
				m.logger.WithError(err).Warn("persist identity")
			}
		}
		m.logger.WithField("user_id", user.ID).Info("logged in")
		m.state = m.state.WithUser(&user).WithFilter(viewstate.FilterAll)
		m.step = stepTasks
		m.cursor = 0
		m.loading = true
		m.notice = "Logged in as " + user.Name
		return m, m.fetchTasksCmd()

	case tasksLoadedMsg:
		if !m.ownedByCurrentUser(msg.userID) {
			m.logger.WithField("user_id", msg.userID).Debug("dropping stale task list")
			return m, nil
		}
		m.loading = false
		m.state = m.state.WithTasks(msg.tasks).WithNow(m.now())
		m.clampCursor()
		return m, nil

	case mutatedMsg:
		if !m.state.LoggedIn() {
			return m, nil
		}
		m.notice = msg.notice
		m.loading = true
		return m, m.fetchTasksCmd()

	case errMsg:
		m.logger.WithError(msg.err).Warn("request failed")
		m.loading = false
		m.err = msg.err.Error()
		if m.step == stepAuthenticating {
			m.step = stepAuthMenu
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}
	// the error banner swallows the next key
	if m.err != "" {
		m.err = ""
		return m, nil
	}

	switch m.step {
	case stepAuthMenu:
		return m.handleAuthMenu(key)
	case stepEnteringName, stepEnteringEmail,
		stepEnteringTitle, stepEnteringDescription, stepEnteringPriority, stepEnteringDueDate:
		return m.handleInput(msg)
	case stepTasks:
		return m.handleTasks(key)
	case stepConfirmDelete:
		id := m.pendingID
		m.pendingID = ""
		m.step = stepTasks
		if key == "y" || key == "Y" {
			m.loading = true
			return m, m.deleteTaskCmd(id)
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleAuthMenu(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q":
		m.quitting = true
		return m, tea.Quit
	case "up", "k":
		if m.menuCursor > 0 {
			m.menuCursor--
		}
	case "down", "j":
		if m.menuCursor < 1 {
			m.menuCursor++
		}
	case "enter":
		m.currentInput = ""
		if m.menuCursor == 0 {
			m.mode = authRegister
			m.step = stepEnteringName
		} else {
			m.mode = authLogin
			m.step = stepEnteringEmail
		}
	}
	return m, nil
}

func (m Model) handleInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.currentInput = ""
		if m.step == stepEnteringName || m.step == stepEnteringEmail {
			m.step = stepAuthMenu
		} else {
			m.step = stepTasks
		}
		return m, nil
	case tea.KeyBackspace:
		if r := []rune(m.currentInput); len(r) > 0 {
			m.currentInput = string(r[:len(r)-1])
		}
		return m, nil
	case tea.KeySpace:
		m.currentInput += " "
		return m, nil
	case tea.KeyRunes:
		m.currentInput += string(msg.Runes)
		return m, nil
	case tea.KeyEnter:
		return m.submitInput()
	}
	return m, nil
}

func (m Model) submitInput() (tea.Model, tea.Cmd) {
	value := strings.TrimSpace(m.currentInput)

	switch m.step {
	case stepEnteringName:
		if value == "" {
			return m, nil
		}
		m.name = value
		m.currentInput = ""
		m.step = stepEnteringEmail

	case stepEnteringEmail:
		if value == "" {
			return m, nil
		}
		m.currentInput = ""
		m.step = stepAuthenticating
		if m.mode == authRegister {
			return m, m.registerCmd(m.name, value)
		}
		return m, m.loginCmd(value)

	case stepEnteringTitle:
		if value == "" {
			return m, nil
		}
		m.draft = domain.NewTask{Title: value, UserID: m.state.User.ID}
		m.currentInput = ""
		m.step = stepEnteringDescription

	case stepEnteringDescription:
		m.draft.Description = value
		m.currentInput = ""
		m.step = stepEnteringPriority

	case stepEnteringPriority:
		m.draft.Priority = domain.Priority(strings.ToLower(value))
		m.currentInput = ""
		m.step = stepEnteringDueDate

	case stepEnteringDueDate:
		if value != "" {
			due, err := time.ParseInLocation(dueDateLayout, value, time.Local)
			if err != nil {
				m.err = "Invalid due date, use YYYY-MM-DD"
				m.currentInput = ""
				return m, nil
			}
			m.draft.DueDate = &due
		}
		m.currentInput = ""
		m.step = stepTasks
		m.loading = true
		return m, m.createTaskCmd(m.draft)
	}
	return m, nil
}

func (m Model) handleTasks(key string) (tea.Model, tea.Cmd) {
	visible := m.state.Visible()

	switch key {
	case "q":
		m.quitting = true
		return m, tea.Quit
	case "1", "2", "3", "4":
		m.state = m.state.WithFilter(viewstate.Filters[key[0]-'1'])
		m.cursor = 0
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(visible)-1 {
			m.cursor++
		}
	case "a":
		m.currentInput = ""
		m.step = stepEnteringTitle
	case "r":
		m.loading = true
		return m, m.fetchTasksCmd()
	case "L":
		return m.logout()
	case "enter", " ":
		if task, ok := m.selected(visible); ok {
			next := domain.TaskStatusCompleted
			if task.Status == domain.TaskStatusCompleted {
				next = domain.TaskStatusPending
			}
			m.loading = true
			return m, m.setStatusCmd(task.ID, next)
		}
	case "i":
		if task, ok := m.selected(visible); ok {
			m.loading = true
			return m, m.setStatusCmd(task.ID, domain.TaskStatusInProgress)
		}
	case "d":
		if task, ok := m.selected(visible); ok {
			m.pendingID = task.ID
			m.step = stepConfirmDelete
		}
	}
	return m, nil
}

func (m Model) logout() (tea.Model, tea.Cmd) {
	if m.identity != nil {
		if err := m.identity.Clear(); err != nil {
			m.logger.WithError(err).Warn("clear identity")
		}
	}
	m.logger.Info("logged out")
	m.state = viewstate.New(m.now())
	m.step = stepAuthMenu
	m.menuCursor = 0
	m.cursor = 0
	m.notice = ""
	m.loading = false
	return m, nil
}

func (m Model) ownedByCurrentUser(userID string) bool {
	return m.state.User != nil && m.state.User.ID == userID
}

func (m Model) selected(visible []domain.Task) (domain.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(visible) {
		return domain.Task{}, false
	}
	return visible[m.cursor], true
}

func (m *Model) clampCursor() {
	n := len(m.state.Visible())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}
