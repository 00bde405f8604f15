package views

import (
	"math"
	"time"

	"taskdeck/internal/model"
)

// ProductivityPoint counts completions on one calendar day.
type ProductivityPoint struct {
	Date      string // YYYY-MM-DD
	Weekday   string // short label, e.g. "Mon"
	Completed int
}

// Productivity builds the trailing 7-day completion series ending today,
// oldest first. A task counts on the calendar date of its last update when
// its status is completed.
func Productivity(tasks []model.Task, today time.Time) []ProductivityPoint {
	points := make([]ProductivityPoint, 0, 7)
	for offset := 6; offset >= 0; offset-- {
		day := today.AddDate(0, 0, -offset)
		date := DateOf(day)
		point := ProductivityPoint{Date: date, Weekday: day.Format("Mon")}
		for _, task := range tasks {
			if task.Status == model.StatusCompleted && DateOf(task.UpdatedAt) == date {
				point.Completed++
			}
		}
		points = append(points, point)
	}
	return points
}

// CategoryPerformance is completed/total per category.
type CategoryPerformance struct {
	Category   model.Category
	Completed  int
	Total      int
	Percentage float64 // 0 when the category has no tasks
}

// CategoryStats reports performance for every known category, in category
// collection order. Tasks referencing unknown categories are not counted
// anywhere.
func CategoryStats(tasks []model.Task, categories []model.Category) []CategoryPerformance {
	out := make([]CategoryPerformance, 0, len(categories))
	for _, category := range categories {
		perf := CategoryPerformance{Category: category}
		for _, task := range tasks {
			if task.Category != category.Name {
				continue
			}
			perf.Total++
			if task.Status == model.StatusCompleted {
				perf.Completed++
			}
		}
		if perf.Total > 0 {
			perf.Percentage = float64(perf.Completed) / float64(perf.Total) * 100
		}
		out = append(out, perf)
	}
	return out
}

// OverdueCount counts non-completed tasks due strictly before today.
func OverdueCount(tasks []model.Task, today time.Time) int {
	todayStr := DateOf(today)
	count := 0
	for _, task := range tasks {
		if task.Status != model.StatusCompleted && task.DueDate < todayStr {
			count++
		}
	}
	return count
}

// AverageCompletionDays is the mean of ceil(updated-created in days) over
// completed tasks, rounded to the nearest whole day for display. Zero when
// nothing is completed yet.
func AverageCompletionDays(tasks []model.Task) int {
	totalDays := 0
	completed := 0
	for _, task := range tasks {
		if task.Status != model.StatusCompleted {
			continue
		}
		days := int(math.Ceil(task.UpdatedAt.Sub(task.CreatedAt).Hours() / 24))
		totalDays += days
		completed++
	}
	if completed == 0 {
		return 0
	}
	return int(math.Round(float64(totalDays) / float64(completed)))
}
