// Package views computes every read-only projection the UI shows: the
// filtered task list, the stats bar, due-date notifications, calendar
// buckets and analytics aggregates. Everything here is a pure function of
// (tasks, categories, parameters); "now" is always an explicit argument so
// results are deterministic.
package views

import (
	"time"

	"taskdeck/internal/model"
)

// FilterAll is the wildcard value for the status, priority and category
// filters. The empty string means the same thing.
const FilterAll = "all"

// ListParams is the UI-selected state that shapes the task list view.
type ListParams struct {
	Query    string
	Status   string // a model.Status value or FilterAll
	Priority string // a model.Priority value or FilterAll
	Category string // a category name or FilterAll
}

// Active reports whether any filter narrows the list. The UI uses this to
// tell "no tasks yet" apart from "no tasks match your filters".
func (p ListParams) Active() bool {
	return p.Query != "" || !isWildcard(p.Status) || !isWildcard(p.Priority) || !isWildcard(p.Category)
}

func isWildcard(v string) bool {
	return v == "" || v == FilterAll
}

// DateOf truncates a moment to its calendar date in wire format. ISO dates
// compare lexicographically, so the derived views compare these strings
// directly.
func DateOf(t time.Time) string {
	return t.Format(model.DateOnly)
}
