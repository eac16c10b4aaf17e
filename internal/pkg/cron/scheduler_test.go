package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDailyAtNext(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	at := DailyAt{Hour: 0, Minute: 5, Location: loc}

	before := time.Date(2024, 5, 1, 23, 0, 0, 0, loc)
	assert.Equal(t, time.Date(2024, 5, 2, 0, 5, 0, 0, loc), at.next(before))

	exactly := time.Date(2024, 5, 2, 0, 5, 0, 0, loc)
	assert.Equal(t, time.Date(2024, 5, 3, 0, 5, 0, 0, loc), at.next(exactly))
}

func TestRunOnceRunsEveryJob(t *testing.T) {
	s := NewScheduler()
	var calls atomic.Int32
	s.AddJob("a", time.Hour, func(ctx context.Context) error { calls.Add(1); return nil })
	s.AddDailyJob("b", DailyAt{}, func(ctx context.Context) error { calls.Add(1); return errors.New("boom") })

	s.RunOnce(context.Background())
	assert.Equal(t, int32(2), calls.Load())
}

func TestStartRunsIntervalJobImmediatelyAndStops(t *testing.T) {
	s := NewScheduler()
	ran := make(chan struct{}, 1)
	s.AddJob("tick", time.Hour, func(ctx context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	})

	s.Start()
	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("interval job did not run on start")
	}
	s.Stop()
}

type closerFunc func(ctx context.Context) (int, error)

func (f closerFunc) CloseStaleSessions(ctx context.Context) (int, error) { return f(ctx) }

func TestAttendanceJobsRegistersDailySweep(t *testing.T) {
	var calls atomic.Int32
	jobs := NewAttendanceJobs(closerFunc(func(ctx context.Context) (int, error) {
		calls.Add(1)
		return 2, nil
	}), time.UTC)

	s := NewScheduler()
	jobs.RegisterJobs(s)
	require.Len(t, s.jobs, 1)
	assert.Equal(t, "close_stale_sessions", s.jobs[0].Name)
	require.NotNil(t, s.jobs[0].Daily)
	assert.False(t, s.jobs[0].RunOnStart)

	s.RunOnce(context.Background())
	assert.Equal(t, int32(1), calls.Load())
}

func TestCloseStaleSessionsWrapsError(t *testing.T) {
	jobs := NewAttendanceJobs(closerFunc(func(ctx context.Context) (int, error) {
		return 0, errors.New("db down")
	}), nil)

	err := jobs.CloseStaleSessions(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}
