package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"tasktracker/internal/client"
	"tasktracker/internal/domain"
)

type loggedInMsg struct{ user domain.User }
// tasksLoadedMsg carries the owner the list was fetched for, so a response
// from an earlier session can be told apart.
type tasksLoadedMsg struct {
	userID string
	tasks  []domain.Task
}
type mutatedMsg struct{ notice string }
type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

func (m Model) registerCmd(name, email string) tea.Cmd {
	api, resolver := m.api, m.resolver
	return func() tea.Msg {
		ctx := context.Background()
		user, err := api.Register(ctx, name, email)
		if err == nil {
			return loggedInMsg{user: *user}
		}

		var apiErr *client.APIError
		if !errors.As(err, &apiErr) || apiErr.Message != "User already exists" {
			return errMsg{err}
		}
		// already registered: treat it as a login
		user, err = resolver.Resolve(ctx, email)
		if err != nil {
			return errMsg{err}
		}
		return loggedInMsg{user: *user}
	}
}

func (m Model) loginCmd(email string) tea.Cmd {
	resolver := m.resolver
	return func() tea.Msg {
		user, err := resolver.Resolve(context.Background(), email)
		if err != nil {
			return errMsg{err}
		}
		return loggedInMsg{user: *user}
	}
}

func (m Model) fetchTasksCmd() tea.Cmd {
	if m.state.User == nil {
		return nil
	}
	api, userID := m.api, m.state.User.ID
	return func() tea.Msg {
		tasks, err := api.ListTasks(context.Background(), userID)
		if err != nil {
			return errMsg{err}
		}
		return tasksLoadedMsg{userID: userID, tasks: tasks}
	}
}

func (m Model) createTaskCmd(task domain.NewTask) tea.Cmd {
	api := m.api
	return func() tea.Msg {
		if _, err := api.CreateTask(context.Background(), task); err != nil {
			return errMsg{err}
		}
		return mutatedMsg{notice: "Task added"}
	}
}

func (m Model) setStatusCmd(id string, status domain.TaskStatus) tea.Cmd {
	api := m.api
	return func() tea.Msg {
		if _, err := api.UpdateTask(context.Background(), id, domain.TaskPatch{Status: &status}); err != nil {
			return errMsg{err}
		}
		return mutatedMsg{notice: "Task updated"}
	}
}

func (m Model) deleteTaskCmd(id string) tea.Cmd {
	api := m.api
	return func() tea.Msg {
		if err := api.DeleteTask(context.Background(), id); err != nil {
			return errMsg{err}
		}
		return mutatedMsg{notice: "Task deleted"}
	}
}
