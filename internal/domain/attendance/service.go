package attendance

import (
	"context"

	"github.com/pagemantra/worktrack-backend-go/internal/pkg/pagination"
)

type AttendanceService interface {
	ClockIn(ctx context.Context) (SessionResponse, error)
	StartBreak(ctx context.Context, req StartBreakRequest) (SessionResponse, error)
	EndBreak(ctx context.Context) (SessionResponse, error)
	ClockOut(ctx context.Context, req ClockOutRequest) (SessionResponse, error)

	Current(ctx context.Context) (*SessionResponse, error)
	Today(ctx context.Context) ([]SessionResponse, error)
	History(ctx context.Context, filter HistoryFilter) (pagination.Page[SessionResponse], error)

	// CloseStaleSessions marks sessions left open on earlier days INCOMPLETE.
	CloseStaleSessions(ctx context.Context) (int, error)
}

type BreakSettingsService interface {
	Create(ctx context.Context, req CreateBreakSettingsRequest) (BreakSettings, error)
	Get(ctx context.Context, teamID string) (BreakSettings, error)
	Update(ctx context.Context, teamID string, req UpdateBreakSettingsRequest) (BreakSettings, error)
	// ForEmployee returns the policy of the first team employeeID belongs to,
	// or nil when none applies.
	ForEmployee(ctx context.Context, employeeID string) (*BreakSettings, error)
}
