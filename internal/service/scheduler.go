// Package service hosts the cron plumbing behind the periodic
// notification digest.
package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the digest job on a cron schedule.
type Scheduler struct {
	cron *cron.Cron
}

func NewScheduler(loc *time.Location) *Scheduler {
	return &Scheduler{cron: cron.New(cron.WithLocation(loc), cron.WithSeconds())}
}

// Schedule registers the job at a fixed daily time when dailyAt ("HH:MM")
// is set, otherwise on a rolling interval.
func (s *Scheduler) Schedule(dailyAt string, interval time.Duration, job func()) (cron.EntryID, error) {
	spec, err := digestSpec(dailyAt, interval)
	if err != nil {
		return 0, err
	}
	return s.cron.AddFunc(spec, job)
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop waits for a job in flight to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// digestSpec translates the configured pair into a six-field cron
// expression (the scheduler runs with a seconds field). The daily time
// wins over the interval when both are present.
func digestSpec(dailyAt string, interval time.Duration) (string, error) {
	if dailyAt == "" {
		if interval <= 0 {
			return "", fmt.Errorf("digest interval must be positive")
		}
		seconds := int(interval.Seconds())
		if seconds < 1 {
			seconds = 1
		}
		return fmt.Sprintf("@every %ds", seconds), nil
	}

	hh, mm, ok := strings.Cut(dailyAt, ":")
	if !ok {
		return "", fmt.Errorf("digest time %q: expected HH:MM", dailyAt)
	}
	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("digest time %q: bad hour", dailyAt)
	}
	minute, err := strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("digest time %q: bad minute", dailyAt)
	}
	return fmt.Sprintf("0 %d %d * * *", minute, hour), nil
}
