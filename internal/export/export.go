// Package export renders the task collection into the three user-triggered
// download formats: CSV, a JSON backup and a plain-text report.
package export

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"taskdeck/internal/model"
	"taskdeck/internal/views"
)

// CSV renders one row per task under a fixed header. Title and description
// are surrounded by quotes, the remaining fields are bare, and embedded
// quote characters are not escaped. That mirrors the historical exporter;
// titles containing `"` produce a malformed row. Known limitation, kept on
// purpose rather than silently fixed.
func CSV(tasks []model.Task) string {
	lines := make([]string, 0, len(tasks)+1)
	lines = append(lines, "Title,Description,Category,Priority,Status,Due Date,Created At")
	for _, task := range tasks {
		lines = append(lines, strings.Join([]string{
			`"` + task.Title + `"`,
			`"` + task.Description + `"`,
			task.Category,
			string(task.Priority),
			string(task.Status),
			task.DueDate,
			localeDate(task.CreatedAt),
		}, ","))
	}
	return strings.Join(lines, "\n")
}

type backupTask struct {
	model.Task
	CategoryLabel string `json:"categoryLabel,omitempty"`
}

type backup struct {
	ExportDate time.Time        `json:"exportDate"`
	Tasks      []backupTask     `json:"tasks"`
	Categories []model.Category `json:"categories"`
}

// JSONBackup serializes every task (with its resolved category label) plus
// the full category collection and an export timestamp.
func JSONBackup(tasks []model.Task, categories []model.Category, exportedAt time.Time) ([]byte, error) {
	data := backup{
		ExportDate: exportedAt,
		Tasks:      make([]backupTask, 0, len(tasks)),
		Categories: categories,
	}
	for _, task := range tasks {
		data.Tasks = append(data.Tasks, backupTask{
			Task:          task,
			CategoryLabel: model.LabelFor(categories, task.Category),
		})
	}
	return json.MarshalIndent(data, "", "  ")
}

// Report renders the fixed-template plain-text summary.
func Report(tasks []model.Task, categories []model.Category, now time.Time) string {
	stats := views.Statistics(tasks)
	overdue := views.OverdueCount(tasks, now)

	var b strings.Builder
	b.WriteString("TASK MANAGEMENT REPORT\n")
	fmt.Fprintf(&b, "Generated on: %s\n\n", localeDate(now))

	b.WriteString("SUMMARY:\n")
	fmt.Fprintf(&b, "- Total Tasks: %d\n", stats.Total)
	fmt.Fprintf(&b, "- Completed: %d\n", stats.Completed)
	fmt.Fprintf(&b, "- In Progress: %d\n", stats.InProgress)
	fmt.Fprintf(&b, "- Pending: %d\n", stats.Pending)
	fmt.Fprintf(&b, "- Overdue: %d\n\n", overdue)

	b.WriteString("CATEGORY BREAKDOWN:\n")
	for _, perf := range views.CategoryStats(tasks, categories) {
		fmt.Fprintf(&b, "- %s: %d/%d completed\n", perf.Category.Label, perf.Completed, perf.Total)
	}
	b.WriteByte('\n')

	b.WriteString("PRIORITY BREAKDOWN:\n")
	fmt.Fprintf(&b, "- High Priority: %d\n", countByPriority(tasks, model.PriorityHigh))
	fmt.Fprintf(&b, "- Medium Priority: %d\n", countByPriority(tasks, model.PriorityMedium))
	fmt.Fprintf(&b, "- Low Priority: %d\n\n", countByPriority(tasks, model.PriorityLow))

	b.WriteString("RECENT COMPLETED TASKS:\n")
	for _, task := range recentCompleted(tasks, 5) {
		fmt.Fprintf(&b, "- %s (%s)\n", task.Title, localeDate(task.UpdatedAt))
	}

	return strings.TrimSpace(b.String())
}

// Download filenames carry the current date in ISO form.

func CSVFilename(now time.Time) string {
	return fmt.Sprintf("tasks-%s.csv", now.Format(model.DateOnly))
}

func BackupFilename(now time.Time) string {
	return fmt.Sprintf("tasks-backup-%s.json", now.Format(model.DateOnly))
}

func ReportFilename(now time.Time) string {
	return fmt.Sprintf("task-report-%s.txt", now.Format(model.DateOnly))
}

// recentCompleted returns the last n completed tasks in collection order.
func recentCompleted(tasks []model.Task, n int) []model.Task {
	var completed []model.Task
	for _, task := range tasks {
		if task.Status == model.StatusCompleted {
			completed = append(completed, task)
		}
	}
	if len(completed) > n {
		completed = completed[len(completed)-n:]
	}
	return completed
}

func countByPriority(tasks []model.Task, p model.Priority) int {
	count := 0
	for _, task := range tasks {
		if task.Priority == p {
			count++
		}
	}
	return count
}

// localeDate matches the M/D/YYYY form the original exporter produced.
func localeDate(t time.Time) string {
	return fmt.Sprintf("%d/%d/%d", int(t.Month()), t.Day(), t.Year())
}
