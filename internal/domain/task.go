package domain

import "time"

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// Valid reports whether s is one of the known lifecycle stages.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task is a unit of trackable work owned by exactly one user.
type Task struct {
	ID          string
	Title       string
	Description string
	Status      TaskStatus
	Priority    Priority
	DueDate     *time.Time
	UserID      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewTask carries the caller supplied fields of a task creation request.
// Zero values mean "not supplied".
type NewTask struct {
	Title       string
	Description string
	Priority    Priority
	DueDate     *time.Time
	UserID      string
}

// OptionalTime distinguishes an absent value from an explicit null.
type OptionalTime struct {
	Set   bool
	Value *time.Time
}

// TaskPatch lists the mutable task fields; nil (or unset) fields are left unchanged.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *TaskStatus
	Priority    *Priority
	DueDate     OptionalTime
}

func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil &&
		p.Description == nil &&
		p.Status == nil &&
		p.Priority == nil &&
		!p.DueDate.Set
}

// Apply copies the present fields of the patch onto task.
func (p TaskPatch) Apply(task *Task) {
	if p.Title != nil {
		task.Title = *p.Title
	}
	if p.Description != nil {
		task.Description = *p.Description
	}
	if p.Status != nil {
		task.Status = *p.Status
	}
	if p.Priority != nil {
		task.Priority = *p.Priority
	}
	if p.DueDate.Set {
		task.DueDate = p.DueDate.Value
	}
}
