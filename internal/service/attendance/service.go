package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/attendance"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/authz"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/notification"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/user"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/clock"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/events"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/pagination"
)

type AttendanceServiceImpl struct {
	sessionRepo   attendance.SessionRepository
	userRepo      user.UserRepository
	breakSettings attendance.BreakSettingsService
	authz         authz.Authorizer
	notifier      notification.Notifier
	publisher     events.Publisher
	clock         clock.Clock
	standardHours float64
}

func NewAttendanceService(
	sessionRepo attendance.SessionRepository,
	userRepo user.UserRepository,
	breakSettings attendance.BreakSettingsService,
	authorizer authz.Authorizer,
	notifier notification.Notifier,
	publisher events.Publisher,
	clk clock.Clock,
	standardHours float64,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		sessionRepo:   sessionRepo,
		userRepo:      userRepo,
		breakSettings: breakSettings,
		authz:         authorizer,
		notifier:      notifier,
		publisher:     publisher,
		clock:         clk,
		standardHours: standardHours,
	}
}

// openSession returns today's open session of the actor.
func (a *AttendanceServiceImpl) openSession(ctx context.Context, employeeID string) (attendance.TimeSession, error) {
	ts, err := a.sessionRepo.GetOpen(ctx, employeeID, clock.Today(a.clock))
	if errors.Is(err, attendance.ErrSessionNotFound) {
		return attendance.TimeSession{}, attendance.ErrNoActiveSession
	}
	if err != nil {
		return attendance.TimeSession{}, fmt.Errorf("failed to load open session: %w", err)
	}
	return ts, nil
}

// ClockIn implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ClockIn(ctx context.Context) (attendance.SessionResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return attendance.SessionResponse{}, err
	}

	now := a.clock.Now()
	if _, err := a.sessionRepo.GetOpen(ctx, actor.ID, now.Format(clock.DateLayout)); err == nil {
		return attendance.SessionResponse{}, attendance.ErrAlreadyClockedIn
	} else if !errors.Is(err, attendance.ErrSessionNotFound) {
		return attendance.SessionResponse{}, fmt.Errorf("failed to check open session: %w", err)
	}

	created, err := a.sessionRepo.Create(ctx, attendance.NewSession(actor.ID, now))
	if err != nil {
		return attendance.SessionResponse{}, err
	}

	slog.InfoContext(ctx, "clocked in", "employee_id", actor.ID, "session_id", created.ID, "date", created.Date)
	events.Emit(ctx, a.publisher, events.Event{
		Type:       events.AttendanceClockIn,
		Key:        created.ID,
		OccurredAt: now,
		Payload:    map[string]any{"employee_id": actor.ID, "date": created.Date, "login_time": created.LoginTime},
	})
	return attendance.NewSessionResponse(created), nil
}

// StartBreak implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) StartBreak(ctx context.Context, req attendance.StartBreakRequest) (attendance.SessionResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return attendance.SessionResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return attendance.SessionResponse{}, err
	}

	ts, err := a.openSession(ctx, actor.ID)
	if err != nil {
		return attendance.SessionResponse{}, err
	}

	var warnings []attendance.LimitWarning
	settings, err := a.breakSettings.ForEmployee(ctx, actor.ID)
	if err != nil {
		slog.WarnContext(ctx, "break settings lookup failed", "employee_id", actor.ID, "error", err)
	} else if settings != nil {
		warnings = settings.Evaluate(ts.Breaks)
	}

	next, err := ts.StartBreak(uuid.NewString(), req.BreakType, req.Comment, a.clock.Now())
	if err != nil {
		return attendance.SessionResponse{}, err
	}
	updated, err := a.sessionRepo.Transition(ctx, next, attendance.Guard{From: []attendance.SessionStatus{attendance.StatusActive}})
	if errors.Is(err, attendance.ErrConcurrentUpdate) {
		return attendance.SessionResponse{}, a.classify(ctx, ts.ID, attendance.ErrNoActiveSession, attendance.StatusActive)
	}
	if err != nil {
		return attendance.SessionResponse{}, err
	}

	for _, w := range warnings {
		a.notifier.Notify(ctx, notification.CreateNotificationRequest{
			RecipientID: actor.ID,
			Type:        notification.TypeBreakLimitWarning,
			Title:       w.Title,
			Message:     w.Message,
			RelatedID:   &updated.ID,
		})
	}
	return attendance.NewSessionResponse(updated), nil
}

// EndBreak implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) EndBreak(ctx context.Context) (attendance.SessionResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return attendance.SessionResponse{}, err
	}

	ts, err := a.openSession(ctx, actor.ID)
	if err != nil {
		return attendance.SessionResponse{}, err
	}
	next, err := ts.EndBreak(a.clock.Now())
	if err != nil {
		return attendance.SessionResponse{}, err
	}

	updated, err := a.sessionRepo.Transition(ctx, next, attendance.Guard{From: []attendance.SessionStatus{attendance.StatusOnBreak}})
	if errors.Is(err, attendance.ErrConcurrentUpdate) {
		return attendance.SessionResponse{}, a.classify(ctx, ts.ID, attendance.ErrNoActiveBreak, attendance.StatusOnBreak)
	}
	if err != nil {
		return attendance.SessionResponse{}, err
	}
	return attendance.NewSessionResponse(updated), nil
}

// classify re-reads a session after a failed conditional write. When the
// session left the expected states the transition is illegal; otherwise
// another field raced.
func (a *AttendanceServiceImpl) classify(ctx context.Context, id string, illegal error, expected ...attendance.SessionStatus) error {
	current, err := a.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	for _, st := range expected {
		if current.Status == st {
			return attendance.ErrConcurrentUpdate
		}
	}
	return illegal
}

// ClockOut implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ClockOut(ctx context.Context, req attendance.ClockOutRequest) (attendance.SessionResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return attendance.SessionResponse{}, err
	}
	if req.Force {
		if err := a.authz.Require(actor, user.PermissionAttendanceForceClose); err != nil {
			return attendance.SessionResponse{}, attendance.ErrForceNotAllowed
		}
	}

	ts, err := a.openSession(ctx, actor.ID)
	if err != nil {
		return attendance.SessionResponse{}, err
	}
	if !ts.WorksheetSubmitted && !req.Force {
		return attendance.SessionResponse{}, attendance.ErrWorksheetRequired
	}

	now := a.clock.Now()
	next, err := ts.ClockOut(now, a.standardHours)
	if err != nil {
		return attendance.SessionResponse{}, err
	}

	updated, err := a.sessionRepo.Transition(ctx, next, attendance.Guard{
		From:             attendance.OpenStatuses,
		RequireWorksheet: !req.Force,
	})
	if errors.Is(err, attendance.ErrConcurrentUpdate) {
		current, rerr := a.sessionRepo.GetByID(ctx, ts.ID)
		switch {
		case rerr != nil:
			return attendance.SessionResponse{}, rerr
		case !current.Status.IsOpen():
			return attendance.SessionResponse{}, attendance.ErrNoActiveSession
		case !current.WorksheetSubmitted && !req.Force:
			return attendance.SessionResponse{}, attendance.ErrWorksheetRequired
		}
		return attendance.SessionResponse{}, attendance.ErrConcurrentUpdate
	}
	if err != nil {
		return attendance.SessionResponse{}, err
	}

	slog.InfoContext(ctx, "clocked out",
		"employee_id", actor.ID,
		"session_id", updated.ID,
		"work_hours", updated.TotalWorkHours,
		"overtime_hours", updated.OvertimeHours,
		"forced", req.Force,
	)
	if updated.OvertimeHours > 0 && actor.ManagerID != nil {
		a.notifier.Notify(ctx, notification.CreateNotificationRequest{
			RecipientID: *actor.ManagerID,
			Type:        notification.TypeOvertimeAlert,
			Title:       "Overtime Alert",
			Message:     fmt.Sprintf("%s worked %.1f hours overtime today.", actor.FullName, updated.OvertimeHours),
			RelatedID:   &actor.ID,
		})
	}
	events.Emit(ctx, a.publisher, events.Event{
		Type:       events.AttendanceClockOut,
		Key:        updated.ID,
		OccurredAt: now,
		Payload: map[string]any{
			"employee_id":      actor.ID,
			"date":             updated.Date,
			"total_work_hours": updated.TotalWorkHours,
			"overtime_hours":   updated.OvertimeHours,
		},
	})
	return attendance.NewSessionResponse(updated), nil
}

// Current implements attendance.AttendanceService. It returns nil when the
// actor is not clocked in.
func (a *AttendanceServiceImpl) Current(ctx context.Context) (*attendance.SessionResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	ts, err := a.openSession(ctx, actor.ID)
	if errors.Is(err, attendance.ErrNoActiveSession) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	resp := attendance.NewSessionResponse(ts)
	return &resp, nil
}

// Today implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) Today(ctx context.Context) ([]attendance.SessionResponse, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := a.authz.Require(actor, user.PermissionAttendanceTeamView); err != nil {
		return nil, err
	}

	sessions, err := a.sessionRepo.ListByDate(ctx, clock.Today(a.clock), a.authz.Scope(actor))
	if err != nil {
		return nil, fmt.Errorf("failed to list today's sessions: %w", err)
	}
	out := make([]attendance.SessionResponse, len(sessions))
	for i, ts := range sessions {
		out[i] = attendance.NewSessionResponse(ts)
	}
	return out, nil
}

// History implements attendance.AttendanceService. An explicit employee_id
// narrows the actor's visibility; it never widens it.
func (a *AttendanceServiceImpl) History(ctx context.Context, filter attendance.HistoryFilter) (pagination.Page[attendance.SessionResponse], error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return pagination.Page[attendance.SessionResponse]{}, err
	}
	if err := filter.Validate(); err != nil {
		return pagination.Page[attendance.SessionResponse]{}, err
	}

	sessions, total, err := a.sessionRepo.List(ctx, filter, a.authz.Scope(actor))
	if err != nil {
		return pagination.Page[attendance.SessionResponse]{}, fmt.Errorf("failed to list sessions: %w", err)
	}
	return pagination.Map(pagination.NewPage(sessions, total, filter.Params), attendance.NewSessionResponse), nil
}

// CloseStaleSessions implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CloseStaleSessions(ctx context.Context) (int, error) {
	now := a.clock.Now()
	stale, err := a.sessionRepo.ListOpenBefore(ctx, now.Format(clock.DateLayout))
	if err != nil {
		return 0, fmt.Errorf("failed to list stale sessions: %w", err)
	}

	closed := 0
	for _, ts := range stale {
		next, err := ts.MarkIncomplete(now)
		if err != nil {
			continue
		}
		if _, err := a.sessionRepo.Transition(ctx, next, attendance.Guard{From: attendance.OpenStatuses}); err != nil {
			if !errors.Is(err, attendance.ErrConcurrentUpdate) {
				slog.WarnContext(ctx, "failed to close stale session", "session_id", ts.ID, "error", err)
			}
			continue
		}
		closed++
	}
	return closed, nil
}
