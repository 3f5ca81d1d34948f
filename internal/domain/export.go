package domain

import "time"

// Export describes a JSON snapshot of a user's tasks kept in object storage.
type Export struct {
	Key       string
	Location  string
	URL       string
	TaskCount int
	Size      int64
	CreatedAt time.Time
}
