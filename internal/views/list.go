package views

import (
	"sort"
	"strings"

	"taskdeck/internal/model"
)

// ListView is the filtered, sorted task list plus enough context to render
// an empty result meaningfully.
type ListView struct {
	Tasks    []model.Task
	Total    int  // size of the unfiltered collection
	Filtered bool // params excluded at least a wildcard
}

// List applies the filter predicate and the fixed sort order: priority rank
// descending, then due date ascending, stable for equal keys.
func List(tasks []model.Task, p ListParams) ListView {
	matched := make([]model.Task, 0, len(tasks))
	query := strings.ToLower(p.Query)
	for _, task := range tasks {
		if !matches(task, query, p) {
			continue
		}
		matched = append(matched, task)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if a.Priority.Rank() != b.Priority.Rank() {
			return a.Priority.Rank() > b.Priority.Rank()
		}
		return a.DueDate < b.DueDate
	})

	return ListView{Tasks: matched, Total: len(tasks), Filtered: p.Active()}
}

func matches(task model.Task, query string, p ListParams) bool {
	if query != "" &&
		!strings.Contains(strings.ToLower(task.Title), query) &&
		!strings.Contains(strings.ToLower(task.Description), query) {
		return false
	}
	if !isWildcard(p.Status) && string(task.Status) != p.Status {
		return false
	}
	if !isWildcard(p.Priority) && string(task.Priority) != p.Priority {
		return false
	}
	if !isWildcard(p.Category) && task.Category != p.Category {
		return false
	}
	return true
}
