package types

import (
	"fmt"
	"strings"
	"time"
)

// Priority ranks a task. The zero value is not a valid priority;
// callers fall back to PriorityLow.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// ParsePriority validates a client supplied priority. Matching is exact,
// the stored values are the capitalized names.
func ParsePriority(raw string) (Priority, error) {
	switch p := Priority(strings.TrimSpace(raw)); p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p, nil
	default:
		return "", fmt.Errorf("invalid priority %q", raw)
	}
}

// Task is a single to-do item owned by exactly one user.
type Task struct {
	// ID is the unique identifier of the task.
	ID string `json:"_id" db:"id"`

	// Text is the task description. Never empty.
	Text string `json:"text" db:"text"`

	// Completed reports whether the task has been done.
	Completed bool `json:"completed" db:"completed"`

	// DueDate is optional; nil means the task has no due date.
	DueDate *time.Time `json:"dueDate" db:"due_date"`

	// Priority is one of Low, Medium or High.
	Priority Priority `json:"priority" db:"priority"`

	// CreatedAt is set once when the task is created.
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	// UserID references the owning user. Immutable.
	UserID string `json:"user" db:"user_id"`
}

// TaskPatch carries the fields of a partial task update. A nil pointer means
// the field was not supplied by the client.
type TaskPatch struct {
	Text      *string
	Completed *bool
	DueDate   *time.Time
	Priority  *Priority
}
