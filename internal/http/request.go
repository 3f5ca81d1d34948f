package http

import (
	"encoding/json"
	"strings"
	"time"

	"tasktracker/internal/domain"
)

// optionalDate records whether the field was present at all, so that an
// explicit null can clear the due date while an absent field leaves it alone.
type optionalDate struct {
	set   bool
	value *string
}

func (d *optionalDate) UnmarshalJSON(b []byte) error {
	d.set = true
	if string(b) == "null" {
		d.value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	d.value = &s
	return nil
}

type updateTaskRequest struct {
	Title       *string      `json:"title"`
	Description *string      `json:"description"`
	Status      *string      `json:"status"`
	Priority    *string      `json:"priority"`
	DueDate     optionalDate `json:"dueDate"`
}

func (r updateTaskRequest) toPatch() (domain.TaskPatch, error) {
	patch := domain.TaskPatch{
		Title:       r.Title,
		Description: r.Description,
	}
	if r.Status != nil {
		status := domain.TaskStatus(*r.Status)
		patch.Status = &status
	}
	if r.Priority != nil {
		priority := domain.Priority(*r.Priority)
		patch.Priority = &priority
	}
	if r.DueDate.set {
		patch.DueDate.Set = true
		if r.DueDate.value != nil {
			due, err := parseDueDate(*r.DueDate.value)
			if err != nil {
				return domain.TaskPatch{}, err
			}
			patch.DueDate.Value = due
		}
	}
	return patch, nil
}

// RFC3339Nano also parses plain RFC3339 since the fractional seconds are optional.
var dueDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseDueDate accepts full timestamps or plain calendar dates; an empty string means no due date.
func parseDueDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, domain.Validation("Invalid due date")
}
