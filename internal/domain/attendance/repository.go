package attendance

import (
	"context"

	"github.com/pagemantra/worktrack-backend-go/internal/domain/user"
)

// Guard is the precondition of a conditional session write.
type Guard struct {
	From             []SessionStatus
	RequireWorksheet bool
}

type SessionRepository interface {
	// Create fails with ErrAlreadyClockedIn when the employee already has an
	// open session on the same date.
	Create(ctx context.Context, s TimeSession) (TimeSession, error)
	GetByID(ctx context.Context, id string) (TimeSession, error)
	// GetOpen returns the open session of employeeID on date, or ErrSessionNotFound.
	GetOpen(ctx context.Context, employeeID, date string) (TimeSession, error)
	// GetLatest returns the most recent session of employeeID on date, open or not.
	GetLatest(ctx context.Context, employeeID, date string) (TimeSession, error)
	// Transition writes the mutable state of s only if the stored row still
	// satisfies guard. Otherwise it returns ErrConcurrentUpdate.
	Transition(ctx context.Context, s TimeSession, guard Guard) (TimeSession, error)
	// SetWorksheetSubmitted flips the worksheet flag on every session of
	// employeeID on date and reports how many rows changed.
	SetWorksheetSubmitted(ctx context.Context, employeeID, date string, submitted bool) (int64, error)
	List(ctx context.Context, filter HistoryFilter, scope user.Scope) ([]TimeSession, int64, error)
	ListByDate(ctx context.Context, date string, scope user.Scope) ([]TimeSession, error)
	// ListOpenBefore returns open sessions whose date is before date.
	ListOpenBefore(ctx context.Context, date string) ([]TimeSession, error)
}

type BreakSettingsRepository interface {
	Create(ctx context.Context, bs BreakSettings) (BreakSettings, error)
	GetByTeamID(ctx context.Context, teamID string) (BreakSettings, error)
	Update(ctx context.Context, bs BreakSettings) (BreakSettings, error)
}
