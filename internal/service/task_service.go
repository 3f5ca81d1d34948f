package service

import (
	"context"
	"errors"
	"strings"

	"tasktracker/internal/domain"
	"tasktracker/internal/repository"
)

// TaskService coordinates task level operations backed by repositories.
type TaskService interface {
	CreateTask(ctx context.Context, input domain.NewTask) (*domain.Task, error)
	ListTasksForUser(ctx context.Context, userID string) ([]domain.Task, error)
	UpdateTask(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

type taskService struct {
	tasks repository.TaskRepository
	users repository.UserRepository
}

func NewTaskService(tasks repository.TaskRepository, users repository.UserRepository) TaskService {
	return &taskService{
		tasks: tasks,
		users: users,
	}
}

func (s *taskService) CreateTask(ctx context.Context, input domain.NewTask) (*domain.Task, error) {
	title := strings.TrimSpace(input.Title)
	userID := strings.TrimSpace(input.UserID)
	if title == "" || userID == "" {
		return nil, domain.Validation("Title and User ID are required")
	}

	priority := input.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	if !priority.Valid() {
		return nil, domain.Validation("Invalid priority value")
	}

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.Validation("User not found")
		}
		return nil, err
	}

	task := &domain.Task{
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Status:      domain.TaskStatusPending,
		Priority:    priority,
		DueDate:     input.DueDate,
		UserID:      userID,
	}
	if _, err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) ListTasksForUser(ctx context.Context, userID string) ([]domain.Task, error) {
	tasks, err := s.tasks.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return tasks, nil
}

// UpdateTask validates every supplied enum before touching the store.
func (s *taskService) UpdateTask(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error) {
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, domain.Validation("Invalid task status")
	}
	if patch.Priority != nil && !patch.Priority.Valid() {
		return nil, domain.Validation("Invalid priority value")
	}
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		patch.Title = &title
	}
	if patch.Description != nil {
		description := strings.TrimSpace(*patch.Description)
		patch.Description = &description
	}

	return s.tasks.Update(ctx, id, patch)
}

func (s *taskService) DeleteTask(ctx context.Context, id string) error {
	return s.tasks.Delete(ctx, id)
}
