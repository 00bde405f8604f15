package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigestSpec(t *testing.T) {
	tests := []struct {
		name     string
		dailyAt  string
		interval time.Duration
		want     string
		wantErr  bool
	}{
		{name: "morning", dailyAt: "09:30", want: "0 30 9 * * *"},
		{name: "midnight", dailyAt: "00:00", want: "0 0 0 * * *"},
		{name: "last minute", dailyAt: "23:59", want: "0 59 23 * * *"},
		{name: "hour out of range", dailyAt: "24:00", wantErr: true},
		{name: "minute out of range", dailyAt: "12:60", wantErr: true},
		{name: "not a time", dailyAt: "noon", wantErr: true},
		{name: "interval fallback", interval: 2 * time.Hour, want: "@every 7200s"},
		{name: "sub-second interval clamps", interval: 500 * time.Millisecond, want: "@every 1s"},
		{name: "zero interval", wantErr: true},
		{name: "daily wins over interval", dailyAt: "08:00", interval: time.Hour, want: "0 0 8 * * *"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := digestSpec(tt.dailyAt, tt.interval)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScheduleRejectsBadConfig(t *testing.T) {
	s := NewScheduler(time.UTC)
	_, err := s.Schedule("", 0, func() {})
	assert.Error(t, err)

	_, err = s.Schedule("", time.Minute, func() {})
	assert.NoError(t, err)
}
