package views

import "taskdeck/internal/model"

// Stats is the global stats bar: counts by status.
type Stats struct {
	Total      int
	Completed  int
	InProgress int
	Pending    int
}

// CompletionRate is completed/total as a percentage, 0 for an empty set.
func (s Stats) CompletionRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Completed) / float64(s.Total) * 100
}

func Statistics(tasks []model.Task) Stats {
	s := Stats{Total: len(tasks)}
	for _, task := range tasks {
		switch task.Status {
		case model.StatusCompleted:
			s.Completed++
		case model.StatusInProgress:
			s.InProgress++
		case model.StatusPending:
			s.Pending++
		}
	}
	return s
}
