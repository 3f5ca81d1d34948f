package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"tasktracker/internal/domain"
	"tasktracker/internal/repository"
	"tasktracker/internal/storage"
)

// ErrExportDisabled is returned when no export bucket is configured.
var ErrExportDisabled = errors.New("task export storage is not configured")

const exportURLTTL = 15 * time.Minute

// ExportService snapshots a user's tasks into object storage.
type ExportService interface {
	Export(ctx context.Context, userID string) (*domain.Export, error)
	ListExports(ctx context.Context, userID string) ([]domain.Export, error)
}

type exportService struct {
	tasks  TaskService
	users  repository.UserRepository
	store  storage.Service
	opts   storage.UploadOptions
	now    func() time.Time
	urlTTL time.Duration
}

// NewExportService returns a service whose operations fail with ErrExportDisabled
// when store is nil or no bucket is configured.
func NewExportService(tasks TaskService, users repository.UserRepository, store storage.Service, opts storage.UploadOptions) ExportService {
	return &exportService{
		tasks:  tasks,
		users:  users,
		store:  store,
		opts:   opts,
		now:    time.Now,
		urlTTL: exportURLTTL,
	}
}

type exportDocument struct {
	UserID     string       `json:"userId"`
	ExportedAt time.Time    `json:"exportedAt"`
	Tasks      []exportTask `json:"tasks"`
}

type exportTask struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (s *exportService) enabled() bool {
	return s.store != nil && s.opts.Bucket != ""
}

func (s *exportService) userPrefix(userID string) string {
	return path.Join(strings.Trim(s.opts.KeyPrefix, "/"), userID) + "/"
}

// owner resolves userID to a registered user. The id becomes a key segment,
// so anything that could leave the user's folder is rejected first.
func (s *exportService) owner(ctx context.Context, userID string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", domain.Validation("User ID is required")
	}
	if userID == "." || userID == ".." || strings.ContainsAny(userID, `/\`) {
		return "", domain.Validation("Invalid user ID")
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

func (s *exportService) Export(ctx context.Context, userID string) (*domain.Export, error) {
	if !s.enabled() {
		return nil, ErrExportDisabled
	}
	userID, err := s.owner(ctx, userID)
	if err != nil {
		return nil, err
	}

	tasks, err := s.tasks.ListTasksForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	doc := exportDocument{
		UserID:     userID,
		ExportedAt: now,
		Tasks:      make([]exportTask, len(tasks)),
	}
	for i, t := range tasks {
		doc.Tasks[i] = exportTask{
			ID:          t.ID,
			Title:       t.Title,
			Description: t.Description,
			Status:      string(t.Status),
			Priority:    string(t.Priority),
			DueDate:     t.DueDate,
			CreatedAt:   t.CreatedAt,
			UpdatedAt:   t.UpdatedAt,
		}
	}

	body, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}

	key := s.userPrefix(userID) + now.Format("20060102T150405.000000000Z") + ".json"
	location, err := s.store.PutObject(ctx, s.opts.Bucket, key, bytes.NewReader(body), "application/json")
	if err != nil {
		return nil, err
	}
	url, err := s.store.GetObjectURL(ctx, s.opts.Bucket, key, s.urlTTL)
	if err != nil {
		return nil, err
	}

	return &domain.Export{
		Key:       key,
		Location:  location,
		URL:       url,
		TaskCount: len(tasks),
		Size:      int64(len(body)),
		CreatedAt: now,
	}, nil
}

// ListExports returns previous exports for the user, newest first.
func (s *exportService) ListExports(ctx context.Context, userID string) ([]domain.Export, error) {
	if !s.enabled() {
		return nil, ErrExportDisabled
	}

	userID, err := s.owner(ctx, userID)
	if err != nil {
		return nil, err
	}

	objects, err := s.store.ListObjects(ctx, s.opts.Bucket, s.userPrefix(userID))
	if err != nil {
		return nil, err
	}

	exports := make([]domain.Export, 0, len(objects))
	for _, obj := range objects {
		exp := domain.Export{
			Key:      obj.Key,
			Location: fmt.Sprintf("s3://%s/%s", s.opts.Bucket, obj.Key),
			Size:     obj.Size,
		}
		if obj.LastModified != nil {
			exp.CreatedAt = obj.LastModified.UTC()
		}
		exports = append(exports, exp)
	}
	// keys embed the export timestamp
	sort.Slice(exports, func(i, j int) bool { return exports[i].Key > exports[j].Key })
	return exports, nil
}
