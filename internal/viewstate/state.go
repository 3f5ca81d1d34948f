// Package viewstate holds what the client renders: the current user, the
// cached task list, the active filter and the clock used for overdue flags.
// A State is never mutated; the With* methods return modified copies.
package viewstate

import (
	"time"

	"tasktracker/internal/domain"
)

type Filter string

const (
	FilterAll        Filter = "all"
	FilterPending    Filter = Filter(domain.TaskStatusPending)
	FilterInProgress Filter = Filter(domain.TaskStatusInProgress)
	FilterCompleted  Filter = Filter(domain.TaskStatusCompleted)
)

// Filters lists the filters in display order.
var Filters = []Filter{FilterAll, FilterPending, FilterInProgress, FilterCompleted}

func (f Filter) Valid() bool {
	switch f {
	case FilterAll, FilterPending, FilterInProgress, FilterCompleted:
		return true
	default:
		return false
	}
}

// Counts is the dashboard tally of the cached task list.
type Counts struct {
	Total      int
	Pending    int
	InProgress int
	Completed  int
}

type State struct {
	User   *domain.User
	Tasks  []domain.Task
	Filter Filter
	Now    time.Time
}

// New returns a logged-out state showing all tasks.
func New(now time.Time) State {
	return State{Filter: FilterAll, Now: now}
}

func (s State) LoggedIn() bool {
	return s.User != nil
}

func (s State) WithUser(user *domain.User) State {
	if user != nil {
		u := *user
		user = &u
	}
	s.User = user
	s.Tasks = nil
	return s
}

func (s State) WithTasks(tasks []domain.Task) State {
	s.Tasks = append([]domain.Task(nil), tasks...)
	return s
}

// WithFilter ignores unknown filters.
func (s State) WithFilter(f Filter) State {
	if f.Valid() {
		s.Filter = f
	}
	return s
}

func (s State) WithNow(now time.Time) State {
	s.Now = now
	return s
}

// Visible returns the cached tasks matching the active filter, in list order.
func (s State) Visible() []domain.Task {
	out := make([]domain.Task, 0, len(s.Tasks))
	for _, t := range s.Tasks {
		if s.Filter == FilterAll || s.Filter == "" || Filter(t.Status) == s.Filter {
			out = append(out, t)
		}
	}
	return out
}

func (s State) Counts() Counts {
	c := Counts{Total: len(s.Tasks)}
	for _, t := range s.Tasks {
		switch t.Status {
		case domain.TaskStatusPending:
			c.Pending++
		case domain.TaskStatusInProgress:
			c.InProgress++
		case domain.TaskStatusCompleted:
			c.Completed++
		}
	}
	return c
}

// IsOverdue reports a due date in the past on a task that is not completed.
func (s State) IsOverdue(t domain.Task) bool {
	return t.DueDate != nil && t.DueDate.Before(s.Now) && t.Status != domain.TaskStatusCompleted
}
