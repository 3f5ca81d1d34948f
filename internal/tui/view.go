package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"tasktracker/internal/domain"
	"tasktracker/internal/viewstate"
)

var filterLabels = map[viewstate.Filter]string{
	viewstate.FilterAll:        "All",
	viewstate.FilterPending:    "Pending",
	viewstate.FilterInProgress: "In progress",
	viewstate.FilterCompleted:  "Completed",
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var s strings.Builder
	s.WriteString(titleStyle.Render("Task Tracker"))
	s.WriteString("\n")

	if m.err != "" {
		s.WriteString(bannerStyle.Render(errorStyle.Render("✗ "+m.err) + "\n" + mutedStyle.Render("press any key to continue")))
		s.WriteString("\n")
		return s.String()
	}

	switch m.step {
	case stepAuthMenu:
		s.WriteString(m.viewAuthMenu())
	case stepEnteringName:
		s.WriteString(prompt("Your name:", m.currentInput))
	case stepEnteringEmail:
		s.WriteString(prompt("Your email:", m.currentInput))
	case stepAuthenticating:
		s.WriteString(mutedStyle.Render("Signing in...") + "\n")
	case stepEnteringTitle:
		s.WriteString(prompt("Task title:", m.currentInput))
	case stepEnteringDescription:
		s.WriteString(prompt("Description (optional):", m.currentInput))
	case stepEnteringPriority:
		s.WriteString(prompt("Priority low/medium/high (default medium):", m.currentInput))
	case stepEnteringDueDate:
		s.WriteString(prompt("Due date YYYY-MM-DD (optional):", m.currentInput))
	case stepConfirmDelete:
		s.WriteString(m.viewTasks())
		s.WriteString("\n" + errorStyle.Render("Delete this task? (y/N)") + "\n")
	default:
		s.WriteString(m.viewTasks())
	}
	return s.String()
}

func prompt(label, input string) string {
	return promptStyle.Render(label) + "\n" +
		inputStyle.Render("> "+input) + "\n\n" +
		mutedStyle.Render("enter to continue, esc to cancel") + "\n"
}

func (m Model) viewAuthMenu() string {
	var s strings.Builder
	for i, label := range []string{"Register", "Login"} {
		if i == m.menuCursor {
			s.WriteString(selectedStyle.Render("▸ "+label) + "\n")
		} else {
			s.WriteString("  " + label + "\n")
		}
	}
	s.WriteString("\n" + mutedStyle.Render("↑/↓ choose, enter select, q quit") + "\n")
	return s.String()
}

func (m Model) viewTasks() string {
	var s strings.Builder

	if m.state.User != nil {
		s.WriteString(fmt.Sprintf("Signed in as %s <%s>\n", m.state.User.Name, m.state.User.Email))
	}
	if m.notice != "" {
		s.WriteString(successStyle.Render("✓ "+m.notice) + "\n")
	}
	s.WriteString("\n")

	c := m.state.Counts()
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		counterStyle.Render(fmt.Sprintf("Total %d", c.Total)),
		counterStyle.Render(fmt.Sprintf("Pending %d", c.Pending)),
		counterStyle.Render(fmt.Sprintf("In progress %d", c.InProgress)),
		counterStyle.Render(fmt.Sprintf("Completed %d", c.Completed)),
	))
	s.WriteString("\n\n")

	var filters []string
	for i, f := range viewstate.Filters {
		label := fmt.Sprintf("%d %s", i+1, filterLabels[f])
		if f == m.state.Filter {
			filters = append(filters, selectedStyle.Render("["+label+"]"))
		} else {
			filters = append(filters, mutedStyle.Render(" "+label+" "))
		}
	}
	s.WriteString(strings.Join(filters, " ") + "\n\n")

	visible := m.state.Visible()
	switch {
	case m.loading && len(m.state.Tasks) == 0:
		s.WriteString(mutedStyle.Render("Loading tasks...") + "\n")
	case len(visible) == 0:
		s.WriteString(mutedStyle.Render("No tasks found.") + "\n")
	}
	for i, t := range visible {
		s.WriteString(m.viewTask(t, i == m.cursor) + "\n")
	}

	s.WriteString("\n" + mutedStyle.Render("1-4 filter · a add · enter toggle done · i in progress · d delete · r refresh · L logout · q quit") + "\n")
	return s.String()
}

func (m Model) viewTask(t domain.Task, selected bool) string {
	marker := "[ ]"
	switch t.Status {
	case domain.TaskStatusInProgress:
		marker = "[~]"
	case domain.TaskStatusCompleted:
		marker = "[x]"
	}

	line := fmt.Sprintf("%s %s", marker, t.Title)
	if style, ok := priorityStyles[string(t.Priority)]; ok {
		line += " " + style.Render(string(t.Priority))
	}
	if t.DueDate != nil {
		line += mutedStyle.Render(" due " + t.DueDate.Local().Format(dueDateLayout))
	}
	if m.state.IsOverdue(t) {
		line += " " + errorStyle.Render("OVERDUE")
	}
	if t.Description != "" {
		line += "\n      " + mutedStyle.Render(t.Description)
	}

	if selected {
		return selectedStyle.Render("▸ ") + line
	}
	return "  " + line
}
