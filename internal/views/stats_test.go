package views

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"taskdeck/internal/model"
)

func TestStatisticsCounts(t *testing.T) {
	tasks := []model.Task{
		{Status: model.StatusCompleted},
		{Status: model.StatusCompleted},
		{Status: model.StatusInProgress},
		{Status: model.StatusPending},
		{Status: model.StatusPending},
		{Status: model.StatusPending},
	}

	stats := Statistics(tasks)

	assert.Equal(t, 6, stats.Total)
	assert.Equal(t, 2, stats.Completed)
	assert.Equal(t, 1, stats.InProgress)
	assert.Equal(t, 3, stats.Pending)
	assert.Equal(t, stats.Total, stats.Completed+stats.InProgress+stats.Pending)
	assert.InDelta(t, 100.0/3, stats.CompletionRate(), 0.001)
}

func TestStatisticsEmpty(t *testing.T) {
	stats := Statistics(nil)
	assert.Zero(t, stats.Total)
	assert.Zero(t, stats.CompletionRate(), "no division by zero on an empty collection")
}
