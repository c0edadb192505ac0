package task

import (
	"encoding/json"
	"time"
)

// Status is the closed set of lifecycle labels a task may carry.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCancel    Status = "CANCEL"
	StatusCompleted Status = "COMPLETED"
	StatusDelete    Status = "DELETE"
)

// IsValid reports whether s is a member of the status enumeration.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusCancel, StatusCompleted, StatusDelete:
		return true
	}
	return false
}

// DateLayout is the wire form of task dates: ISO-8601 UTC with millisecond
// precision. Storage keeps epoch milliseconds so the store can order by date.
const DateLayout = "2006-01-02T15:04:05.000Z07:00"

// Document field names for the stored task form.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldDate        = "date"
	FieldStatus      = "status"
	FieldUserID      = "userId"
)

// Task is a single to-do record owned by exactly one user.
// Date always carries the ISO-8601 wire form.
type Task struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Status      Status `json:"status"`
	UserID      string `json:"userId"`
}

// ParseDate parses an ISO-8601 date string into epoch milliseconds.
func ParseDate(s string) (int64, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return 0, err
	}
	return t.UnixMilli(), nil
}

// FormatDate renders epoch milliseconds in the wire form.
func FormatDate(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(DateLayout)
}

// ToDocument builds the stored form of a task. The id is the document key and
// is not part of the document body.
func ToDocument(userID, title, description string, dateMillis int64, status Status) map[string]any {
	return map[string]any{
		FieldTitle:       title,
		FieldDescription: description,
		FieldDate:        dateMillis,
		FieldStatus:      string(status),
		FieldUserID:      userID,
	}
}

// FromDocument maps a stored document back onto a Task, attaching the document
// key as the task id and converting the stored timestamp to the wire form.
func FromDocument(id string, fields map[string]any) Task {
	t := Task{ID: id}
	if v, ok := fields[FieldTitle].(string); ok {
		t.Title = v
	}
	if v, ok := fields[FieldDescription].(string); ok {
		t.Description = v
	}
	if v, ok := fields[FieldStatus].(string); ok {
		t.Status = Status(v)
	}
	if v, ok := fields[FieldUserID].(string); ok {
		t.UserID = v
	}
	if ms, ok := dateMillis(fields[FieldDate]); ok {
		t.Date = FormatDate(ms)
	}
	return t
}

// dateMillis normalizes the decoded forms a stored timestamp can take.
func dateMillis(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case float64:
		return int64(n), true
	case json.Number:
		ms, err := n.Int64()
		return ms, err == nil
	}
	return 0, false
}
