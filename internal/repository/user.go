package repository

import (
	"context"

	"tasktracker/internal/domain"
)

// UserRepository defines persistence operations for User entities.
// Create must report a duplicate email as a domain conflict.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) (string, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
}
