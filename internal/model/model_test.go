package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPriorityRank(t *testing.T) {
	assert.Equal(t, 3, PriorityHigh.Rank())
	assert.Equal(t, 2, PriorityMedium.Rank())
	assert.Equal(t, 1, PriorityLow.Rank())
	assert.Equal(t, 0, Priority("urgent").Rank(), "unknown values sort below low")
}

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		from Status
		want []Status
	}{
		{StatusPending, []Status{StatusInProgress}},
		{StatusInProgress, []Status{StatusCompleted, StatusPending}},
		{StatusCompleted, []Status{StatusPending}},
		{Status("bogus"), nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.from.Transitions())
	}
}

func TestValidators(t *testing.T) {
	assert.True(t, PriorityMedium.Valid())
	assert.False(t, Priority("").Valid())
	assert.True(t, StatusInProgress.Valid())
	assert.False(t, Status("paused").Valid())
}

func TestLabelFor(t *testing.T) {
	categories := []Category{{Name: "work", Label: "Work"}}
	assert.Equal(t, "Work", LabelFor(categories, "work"))
	assert.Empty(t, LabelFor(categories, "ghost"))
	assert.Empty(t, LabelFor(nil, "work"))
}

func TestUserWithoutPassword(t *testing.T) {
	user := User{ID: 1, Username: "demo", Password: "secret"}
	stripped := user.WithoutPassword()
	assert.Empty(t, stripped.Password)
	assert.Equal(t, "demo", stripped.Username)
	assert.Equal(t, "secret", user.Password, "receiver untouched")
}
