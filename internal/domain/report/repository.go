package report

import (
	"context"

	"github.com/pagemantra/worktrack-backend-go/internal/domain/user"
)

// TeamSelector narrows the team performance report. An empty selector means
// every team.
type TeamSelector struct {
	TeamID    string
	ManagerID string
}

type ReportRepository interface {
	// Productivity aggregates per associate visible under scope.
	Productivity(ctx context.Context, rng DateRange, scope user.Scope, employeeID *string) ([]ProductivityRow, error)
	Attendance(ctx context.Context, rng DateRange, scope user.Scope, employeeID *string) ([]AttendanceRow, error)
	// Overtime returns employees with overtime in rng, highest total first.
	Overtime(ctx context.Context, rng DateRange, scope user.Scope) ([]OvertimeRow, error)
	TeamPerformance(ctx context.Context, rng DateRange, sel TeamSelector) ([]TeamPerformanceRow, error)
	WorksheetStatusCounts(ctx context.Context, rng DateRange, scope user.Scope) (map[string]int64, error)
	WorksheetDailyTrend(ctx context.Context, rng DateRange, scope user.Scope) ([]DailyTrend, error)
}
