package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tasktracker/internal/domain"
)

const genericErrorMessage = "Something went wrong. Please try again."

// API is the subset of the backend the client application talks to.
type API interface {
	Register(ctx context.Context, name, email string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	CreateTask(ctx context.Context, task domain.NewTask) (*domain.Task, error)
	ListTasks(ctx context.Context, userID string) ([]domain.Task, error)
	UpdateTask(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// HTTPClient talks to the REST API over HTTP.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// NewHTTPClient returns a client for the API rooted at baseURL. A nil
// httpClient gets a 10s timeout client.
func NewHTTPClient(baseURL string, httpClient *http.Client) *HTTPClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

type userPayload struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (p userPayload) toDomain() domain.User {
	return domain.User{
		ID:        p.ID,
		Name:      p.Name,
		Email:     p.Email,
		Role:      domain.Role(p.Role),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

type taskPayload struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
	User        string     `json:"user"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (p taskPayload) toDomain() domain.Task {
	return domain.Task{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Status:      domain.TaskStatus(p.Status),
		Priority:    domain.Priority(p.Priority),
		DueDate:     p.DueDate,
		UserID:      p.User,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

type envelope struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	User    *userPayload  `json:"user"`
	Users   []userPayload `json:"users"`
	Task    *taskPayload  `json:"task"`
	Tasks   []taskPayload `json:"tasks"`
}

func (c *HTTPClient) Register(ctx context.Context, name, email string) (*domain.User, error) {
	var env envelope
	body := map[string]string{"name": name, "email": email}
	if err := c.do(ctx, http.MethodPost, "/api/users", body, &env); err != nil {
		return nil, err
	}
	if env.User == nil {
		return nil, errors.New("register: response has no user")
	}
	user := env.User.toDomain()
	return &user, nil
}

func (c *HTTPClient) ListUsers(ctx context.Context) ([]domain.User, error) {
	var env envelope
	if err := c.do(ctx, http.MethodGet, "/api/users", nil, &env); err != nil {
		return nil, err
	}
	users := make([]domain.User, len(env.Users))
	for i := range env.Users {
		users[i] = env.Users[i].toDomain()
	}
	return users, nil
}

func (c *HTTPClient) CreateTask(ctx context.Context, task domain.NewTask) (*domain.Task, error) {
	body := map[string]any{
		"title":       task.Title,
		"description": task.Description,
		"userId":      task.UserID,
	}
	if task.Priority != "" {
		body["priority"] = string(task.Priority)
	}
	if task.DueDate != nil {
		body["dueDate"] = task.DueDate.UTC().Format(time.RFC3339)
	}

	var env envelope
	if err := c.do(ctx, http.MethodPost, "/api/tasks", body, &env); err != nil {
		return nil, err
	}
	if env.Task == nil {
		return nil, errors.New("create task: response has no task")
	}
	created := env.Task.toDomain()
	return &created, nil
}

func (c *HTTPClient) ListTasks(ctx context.Context, userID string) ([]domain.Task, error) {
	var env envelope
	if err := c.do(ctx, http.MethodGet, "/api/tasks/"+url.PathEscape(userID), nil, &env); err != nil {
		return nil, err
	}
	tasks := make([]domain.Task, len(env.Tasks))
	for i := range env.Tasks {
		tasks[i] = env.Tasks[i].toDomain()
	}
	return tasks, nil
}

func (c *HTTPClient) UpdateTask(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error) {
	var env envelope
	if err := c.do(ctx, http.MethodPut, "/api/tasks/"+url.PathEscape(id), patchBody(patch), &env); err != nil {
		return nil, err
	}
	if env.Task == nil {
		return nil, errors.New("update task: response has no task")
	}
	updated := env.Task.toDomain()
	return &updated, nil
}

func (c *HTTPClient) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/tasks/"+url.PathEscape(id), nil, nil)
}

// patchBody sends only the fields the patch sets; a cleared due date goes out as null.
func patchBody(patch domain.TaskPatch) map[string]any {
	body := map[string]any{}
	if patch.Title != nil {
		body["title"] = *patch.Title
	}
	if patch.Description != nil {
		body["description"] = *patch.Description
	}
	if patch.Status != nil {
		body["status"] = string(*patch.Status)
	}
	if patch.Priority != nil {
		body["priority"] = string(*patch.Priority)
	}
	if patch.DueDate.Set {
		if patch.DueDate.Value == nil {
			body["dueDate"] = nil
		} else {
			body["dueDate"] = patch.DueDate.Value.UTC().Format(time.RFC3339)
		}
	}
	return body
}

func (c *HTTPClient) do(ctx context.Context, method, path string, in any, out *envelope) error {
	var reader io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: genericErrorMessage}
		var env envelope
		if json.Unmarshal(raw, &env) == nil && strings.TrimSpace(env.Message) != "" {
			apiErr.Message = env.Message
		}
		return apiErr
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
