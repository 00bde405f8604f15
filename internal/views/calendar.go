package views

import (
	"time"

	"taskdeck/internal/model"
)

// visiblePerDay caps how many tasks a calendar cell lists before collapsing
// the rest into an overflow count.
const visiblePerDay = 2

// CalendarDay is one cell of the month grid.
type CalendarDay struct {
	Day   int
	Date  string // YYYY-MM-DD
	Tasks []model.Task
}

// Visible returns at most visiblePerDay tasks in collection order.
func (d CalendarDay) Visible() []model.Task {
	if len(d.Tasks) <= visiblePerDay {
		return d.Tasks
	}
	return d.Tasks[:visiblePerDay]
}

// Overflow is the count of tasks hidden behind the "+N more" marker.
func (d CalendarDay) Overflow() int {
	if len(d.Tasks) <= visiblePerDay {
		return 0
	}
	return len(d.Tasks) - visiblePerDay
}

// MonthView buckets tasks by due date over one displayed month. Tasks due
// in other months are simply absent.
type MonthView struct {
	Year          int
	Month         time.Month
	LeadingBlanks int // weekday index (Sunday=0) of day 1
	Days          []CalendarDay
}

// Calendar enumerates every day of the month and attaches the tasks due on
// it, preserving collection order within a day.
func Calendar(tasks []model.Task, year int, month time.Month) MonthView {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := first.AddDate(0, 1, -1).Day()

	view := MonthView{
		Year:          year,
		Month:         month,
		LeadingBlanks: int(first.Weekday()),
		Days:          make([]CalendarDay, 0, daysInMonth),
	}

	for day := 1; day <= daysInMonth; day++ {
		date := time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Format(model.DateOnly)
		cell := CalendarDay{Day: day, Date: date}
		for _, task := range tasks {
			if task.DueDate == date {
				cell.Tasks = append(cell.Tasks, task)
			}
		}
		view.Days = append(view.Days, cell)
	}
	return view
}
