package views

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskdeck/internal/model"
)

func TestProductivitySeries(t *testing.T) {
	today := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	tasks := []model.Task{
		{ID: 1, Status: model.StatusCompleted, UpdatedAt: today.AddDate(0, 0, -2)},
		{ID: 2, Status: model.StatusCompleted, UpdatedAt: today.AddDate(0, 0, -2)},
		{ID: 3, Status: model.StatusCompleted, UpdatedAt: today},
		{ID: 4, Status: model.StatusCompleted, UpdatedAt: today.AddDate(0, 0, -10)}, // outside the window
		{ID: 5, Status: model.StatusInProgress, UpdatedAt: today},                   // not completed
	}

	series := Productivity(tasks, today)

	require.Len(t, series, 7)
	assert.Equal(t, "2025-06-09", series[0].Date, "oldest day first")
	assert.Equal(t, "2025-06-15", series[6].Date)
	assert.Equal(t, "Sun", series[6].Weekday)
	assert.Equal(t, 2, series[4].Completed)
	assert.Equal(t, 1, series[6].Completed)
	assert.Zero(t, series[0].Completed)
}

func TestCategoryStats(t *testing.T) {
	categories := []model.Category{
		{Name: "work", Label: "Work"},
		{Name: "home", Label: "Home"},
	}
	tasks := []model.Task{
		{Category: "work", Status: model.StatusCompleted},
		{Category: "work", Status: model.StatusPending},
		{Category: "work", Status: model.StatusInProgress},
		{Category: "ghost", Status: model.StatusCompleted}, // unknown category, uncounted
	}

	perf := CategoryStats(tasks, categories)

	require.Len(t, perf, 2)
	assert.Equal(t, "Work", perf[0].Category.Label)
	assert.Equal(t, 1, perf[0].Completed)
	assert.Equal(t, 3, perf[0].Total)
	assert.InDelta(t, 33.333, perf[0].Percentage, 0.01)

	assert.Zero(t, perf[1].Total)
	assert.Zero(t, perf[1].Percentage, "empty category stays at zero percent")
}

func TestOverdueCount(t *testing.T) {
	today := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	tasks := []model.Task{
		{Status: model.StatusPending, DueDate: "2025-06-14"},
		{Status: model.StatusInProgress, DueDate: "2025-06-01"},
		{Status: model.StatusCompleted, DueDate: "2025-06-01"}, // done, not overdue
		{Status: model.StatusPending, DueDate: "2025-06-15"},   // due today is not overdue
	}
	assert.Equal(t, 2, OverdueCount(tasks, today))
}

func TestAverageCompletionDays(t *testing.T) {
	created := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		name  string
		tasks []model.Task
		want  int
	}{
		{
			"three full days",
			[]model.Task{{Status: model.StatusCompleted, CreatedAt: created, UpdatedAt: created.AddDate(0, 0, 3)}},
			3,
		},
		{
			"partial day rounds up",
			[]model.Task{{Status: model.StatusCompleted, CreatedAt: created, UpdatedAt: created.Add(30 * time.Hour)}},
			2,
		},
		{
			"mean of per-task ceilings",
			[]model.Task{
				{Status: model.StatusCompleted, CreatedAt: created, UpdatedAt: created.AddDate(0, 0, 1)},
				{Status: model.StatusCompleted, CreatedAt: created, UpdatedAt: created.AddDate(0, 0, 4)},
			},
			3, // round((1+4)/2)
		},
		{
			"non-completed excluded",
			[]model.Task{{Status: model.StatusPending, CreatedAt: created, UpdatedAt: created.AddDate(0, 0, 9)}},
			0,
		},
		{"empty", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AverageCompletionDays(tt.tasks))
		})
	}
}
