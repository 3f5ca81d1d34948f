package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"tasktracker/internal/domain"
	"tasktracker/internal/repository"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// UserService describes user lifecycle operations.
type UserService interface {
	Register(ctx context.Context, name, email, role string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type userService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) UserService {
	return &userService{users: users}
}

func (s *userService) Register(ctx context.Context, name, email, role string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = domain.NormalizeEmail(email)

	if name == "" || email == "" {
		return nil, domain.Validation("Name and email are required")
	}
	if !emailPattern.MatchString(email) {
		return nil, domain.Validation("Please provide a valid email address")
	}

	existing, err := s.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, domain.Conflict("User already exists")
	}

	user := &domain.User{
		Name:  name,
		Email: email,
		Role:  domain.ParseRole(role),
	}
	// the unique index still decides when two registrations race past the lookup
	if _, err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}

// GetByEmail looks a user up by normalized email.
func (s *userService) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return nil, domain.Validation("Email is required")
	}
	return s.users.GetByEmail(ctx, email)
}
