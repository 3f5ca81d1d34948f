package repository

import (
	"context"

	"tasktracker/internal/domain"
)

// TaskRepository exposes persistence operations for Task aggregates.
type TaskRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, task *domain.Task) (string, error)
	Get(ctx context.Context, id string) (*domain.Task, error)
	// ListByUser returns the owner's tasks, most recently created first.
	ListByUser(ctx context.Context, userID string) ([]domain.Task, error)
	// Update applies patch and returns the stored task after the change.
	Update(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error)
	Delete(ctx context.Context, id string) error
}
