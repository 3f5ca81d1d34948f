package http

import (
	"time"

	"tasktracker/internal/domain"
)

// timestamps go out as ISO-8601 with millisecond precision
const timeLayout = "2006-01-02T15:04:05.000Z07:00"

type UserResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

type TaskResponse struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	DueDate     *string `json:"dueDate"`
	User        string  `json:"user"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

type ExportResponse struct {
	Key       string `json:"key"`
	Location  string `json:"location"`
	URL       string `json:"url,omitempty"`
	TaskCount int    `json:"taskCount"`
	Size      int64  `json:"size"`
	CreatedAt string `json:"createdAt,omitempty"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func userToResponse(user domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      string(user.Role),
		CreatedAt: formatTime(user.CreatedAt),
		UpdatedAt: formatTime(user.UpdatedAt),
	}
}

func taskToResponse(task domain.Task) TaskResponse {
	resp := TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		Priority:    string(task.Priority),
		User:        task.UserID,
		CreatedAt:   formatTime(task.CreatedAt),
		UpdatedAt:   formatTime(task.UpdatedAt),
	}
	if task.DueDate != nil {
		v := formatTime(*task.DueDate)
		resp.DueDate = &v
	}
	return resp
}

func exportToResponse(exp domain.Export) ExportResponse {
	resp := ExportResponse{
		Key:       exp.Key,
		Location:  exp.Location,
		URL:       exp.URL,
		TaskCount: exp.TaskCount,
		Size:      exp.Size,
	}
	if !exp.CreatedAt.IsZero() {
		resp.CreatedAt = formatTime(exp.CreatedAt)
	}
	return resp
}
