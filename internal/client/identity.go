package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"tasktracker/internal/domain"
)

// IdentityFileName is the fixed name of the persisted identity file.
const IdentityFileName = "tasktracker_user.json"

// ErrUserNotFound is returned when no registered user matches a login.
var ErrUserNotFound = errors.New("User not found")

// IdentityResolver turns login input into a user record.
type IdentityResolver interface {
	Resolve(ctx context.Context, email string) (*domain.User, error)
}

// EmailResolver treats whoever knows a registered email as that user.
// There is no password; it looks the email up in the full user list.
type EmailResolver struct {
	api API
}

func NewEmailResolver(api API) *EmailResolver {
	return &EmailResolver{api: api}
}

func (r *EmailResolver) Resolve(ctx context.Context, email string) (*domain.User, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return nil, ErrUserNotFound
	}

	users, err := r.api.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if domain.NormalizeEmail(users[i].Email) == email {
			return &users[i], nil
		}
	}
	return nil, ErrUserNotFound
}

type storedIdentity struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// IdentityStore keeps the logged-in user on disk between runs.
type IdentityStore struct {
	path string
}

func NewIdentityStore(dir string) *IdentityStore {
	return &IdentityStore{path: filepath.Join(dir, IdentityFileName)}
}

func (s *IdentityStore) Path() string {
	return s.path
}

// Load returns nil without error when nobody is logged in.
func (s *IdentityStore) Load() (*domain.User, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read identity: %w", err)
	}

	var stored storedIdentity
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("decode identity: %w", err)
	}
	if stored.ID == "" {
		return nil, nil
	}
	return &domain.User{
		ID:        stored.ID,
		Name:      stored.Name,
		Email:     stored.Email,
		Role:      domain.Role(stored.Role),
		CreatedAt: stored.CreatedAt,
	}, nil
}

func (s *IdentityStore) Save(user domain.User) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create identity dir: %w", err)
	}
	raw, err := json.MarshalIndent(storedIdentity{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode identity: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return fmt.Errorf("write identity: %w", err)
	}
	return nil
}

func (s *IdentityStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove identity: %w", err)
	}
	return nil
}
