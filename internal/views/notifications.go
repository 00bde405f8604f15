package views

import (
	"fmt"
	"time"

	"taskdeck/internal/model"
)

type NotificationType string

const (
	NotifyOverdue  NotificationType = "overdue"
	NotifyDueToday NotificationType = "due-today"
	NotifyDueSoon  NotificationType = "due-soon"
)

// Notification flags one non-completed task as overdue, due today or due
// tomorrow. The ID is the composite "type-taskID"; dismissal state lives
// with the caller and is keyed by that ID.
type Notification struct {
	ID      string
	Type    NotificationType
	Task    model.Task
	Message string
}

// Notifications classifies every non-completed task against "today". The
// checks are mutually exclusive since a due date is a single value, so each
// task yields at most one notification. Overdue items come first, then
// due-today, then due-soon.
func Notifications(tasks []model.Task, today time.Time) []Notification {
	todayStr := DateOf(today)
	tomorrowStr := DateOf(today.AddDate(0, 0, 1))

	var out []Notification
	for _, task := range tasks {
		if task.Status == model.StatusCompleted || task.DueDate >= todayStr {
			continue
		}
		out = append(out, newNotification(NotifyOverdue, task, "is overdue"))
	}
	for _, task := range tasks {
		if task.Status == model.StatusCompleted || task.DueDate != todayStr {
			continue
		}
		out = append(out, newNotification(NotifyDueToday, task, "is due today"))
	}
	for _, task := range tasks {
		if task.Status == model.StatusCompleted || task.DueDate != tomorrowStr {
			continue
		}
		out = append(out, newNotification(NotifyDueSoon, task, "is due tomorrow"))
	}
	return out
}

// WithoutDismissed drops notifications whose ID the user already dismissed.
func WithoutDismissed(notifications []Notification, dismissed map[string]bool) []Notification {
	if len(dismissed) == 0 {
		return notifications
	}
	kept := notifications[:0:0]
	for _, n := range notifications {
		if !dismissed[n.ID] {
			kept = append(kept, n)
		}
	}
	return kept
}

func newNotification(kind NotificationType, task model.Task, verb string) Notification {
	return Notification{
		ID:      fmt.Sprintf("%s-%d", kind, task.ID),
		Type:    kind,
		Task:    task,
		Message: fmt.Sprintf("Task %q %s", task.Title, verb),
	}
}
