package model

import "time"

// DateOnly is the wire format for calendar dates. Due dates carry no time
// component.
const DateOnly = "2006-01-02"

// Priority of a task. The backend stores it as a plain string.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Rank maps priorities to their sort weight: high=3, medium=2, low=1.
// Unknown values rank below low.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Status of a task. Any of the three values is storable regardless of the
// prior value; Transitions only describes what the UI offers.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// Transitions lists the status changes the UI suggests from s:
// pending→in-progress, in-progress→{completed, pending}, completed→pending.
// Completing straight from pending is not offered.
func (s Status) Transitions() []Status {
	switch s {
	case StatusPending:
		return []Status{StatusInProgress}
	case StatusInProgress:
		return []Status{StatusCompleted, StatusPending}
	case StatusCompleted:
		return []Status{StatusPending}
	default:
		return nil
	}
}

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusInProgress || s == StatusCompleted
}

// Task represents a single item on the user's plate. The id and both
// timestamps are assigned by the writer of the record; the server stores
// them verbatim and never restamps.
type Task struct {
	ID          int       `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"` // joined against Category.Name, not enforced
	Priority    Priority  `json:"priority"`
	Status      Status    `json:"status"`
	DueDate     string    `json:"dueDate"` // YYYY-MM-DD
	CreatedAt   time.Time `json:"createdAt" gorm:"autoCreateTime:false"`
	UpdatedAt   time.Time `json:"updatedAt" gorm:"autoUpdateTime:false"`
	UserID      int       `json:"userId" gorm:"index"`
}
