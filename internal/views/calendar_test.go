package views

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskdeck/internal/model"
)

func TestCalendarShape(t *testing.T) {
	view := Calendar(nil, 2025, time.June)

	// June 1st 2025 is a Sunday.
	assert.Equal(t, 0, view.LeadingBlanks)
	require.Len(t, view.Days, 30)
	assert.Equal(t, 1, view.Days[0].Day)
	assert.Equal(t, "2025-06-01", view.Days[0].Date)
	assert.Equal(t, "2025-06-30", view.Days[29].Date)
}

func TestCalendarLeadingBlanks(t *testing.T) {
	tests := []struct {
		year   int
		month  time.Month
		blanks int
		days   int
	}{
		{2025, time.July, 2, 31},     // July 1st 2025 is a Tuesday
		{2024, time.February, 4, 29}, // leap year, Thursday
		{2025, time.February, 6, 28}, // Saturday
	}
	for _, tt := range tests {
		view := Calendar(nil, tt.year, tt.month)
		assert.Equal(t, tt.blanks, view.LeadingBlanks)
		assert.Len(t, view.Days, tt.days)
	}
}

func TestCalendarBucketsTasksByDueDate(t *testing.T) {
	tasks := []model.Task{
		{ID: 1, DueDate: "2025-06-10"},
		{ID: 2, DueDate: "2025-06-10"},
		{ID: 3, DueDate: "2025-06-10"},
		{ID: 4, DueDate: "2025-07-01"}, // other month, absent
	}

	view := Calendar(tasks, 2025, time.June)
	day := view.Days[9]
	require.Equal(t, "2025-06-10", day.Date)
	require.Len(t, day.Tasks, 3)

	assert.Equal(t, []int{1, 2}, ids(day.Visible()), "collection order, capped at two")
	assert.Equal(t, 1, day.Overflow())

	for _, other := range view.Days {
		if other.Date != "2025-06-10" {
			assert.Empty(t, other.Tasks)
		}
	}
}

func TestCalendarDayNoOverflowUnderCap(t *testing.T) {
	day := CalendarDay{Tasks: []model.Task{{ID: 1}, {ID: 2}}}
	assert.Len(t, day.Visible(), 2)
	assert.Zero(t, day.Overflow())
}
