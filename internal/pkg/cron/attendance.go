package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// SessionCloser marks sessions left open on earlier days incomplete.
type SessionCloser interface {
	CloseStaleSessions(ctx context.Context) (int, error)
}

type AttendanceJobs struct {
	closer SessionCloser
	loc    *time.Location
}

func NewAttendanceJobs(closer SessionCloser, loc *time.Location) *AttendanceJobs {
	return &AttendanceJobs{closer: closer, loc: loc}
}

// RegisterJobs schedules the stale-session sweep a few minutes after midnight
// in the organisation zone, once the previous day is over.
func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddDailyJob("close_stale_sessions", DailyAt{Hour: 0, Minute: 5, Location: j.loc}, j.CloseStaleSessions)
}

func (j *AttendanceJobs) CloseStaleSessions(ctx context.Context) error {
	slog.Info("Cron: closing stale attendance sessions")

	closed, err := j.closer.CloseStaleSessions(ctx)
	if err != nil {
		return fmt.Errorf("failed to close stale sessions: %w", err)
	}

	slog.Info("Cron: stale attendance sessions closed", "count", closed)
	return nil
}
