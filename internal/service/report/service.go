package report

import (
	"context"
	"fmt"

	"github.com/pagemantra/worktrack-backend-go/internal/domain/authz"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/report"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/team"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/user"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/clock"
	"golang.org/x/sync/errgroup"
)

type ReportServiceImpl struct {
	reportRepo report.ReportRepository
	teamRepo   team.TeamRepository
	authz      authz.Authorizer
	clock      clock.Clock
}

func NewReportService(reportRepo report.ReportRepository, teamRepo team.TeamRepository, authorizer authz.Authorizer, clk clock.Clock) report.ReportService {
	return &ReportServiceImpl{
		reportRepo: reportRepo,
		teamRepo:   teamRepo,
		authz:      authorizer,
		clock:      clk,
	}
}

// prepare authorizes the actor for perm, validates req and resolves the date
// range. A missing end defaults to today and a missing start to
// DefaultWindowDays before it.
func (s *ReportServiceImpl) prepare(ctx context.Context, req *report.ReportRequest, perm user.Permission) (user.Actor, report.DateRange, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return user.Actor{}, report.DateRange{}, err
	}
	if err := s.authz.Require(actor, perm); err != nil {
		return user.Actor{}, report.DateRange{}, err
	}
	if err := req.Validate(); err != nil {
		return user.Actor{}, report.DateRange{}, err
	}

	now := s.clock.Now()
	rng := report.DateRange{End: now.Format(clock.DateLayout)}
	if req.EndDate != nil {
		rng.End = *req.EndDate
	}
	if req.StartDate != nil {
		rng.Start = *req.StartDate
	} else {
		end, err := clock.Date(rng.End)
		if err != nil {
			return user.Actor{}, report.DateRange{}, fmt.Errorf("failed to parse end date: %w", err)
		}
		rng.Start = end.AddDate(0, 0, -report.DefaultWindowDays).Format(clock.DateLayout)
	}
	if rng.Start > rng.End {
		return user.Actor{}, report.DateRange{}, report.ErrInvalidDateRange
	}
	return actor, rng, nil
}

// reportScope covers the people reporting to the actor. Reports leave the
// actor's own records out.
func reportScope(actor user.Actor) user.Scope {
	switch actor.Role {
	case user.RoleAdmin:
		return user.Scope{All: true}
	case user.RoleManager:
		return user.Scope{ManagerID: actor.ID}
	case user.RoleTeamLead:
		return user.Scope{TeamLeadID: actor.ID}
	}
	return user.Scope{SelfID: actor.ID}
}

func (s *ReportServiceImpl) Productivity(ctx context.Context, req report.ReportRequest) (report.Report[report.ProductivityEntry], error) {
	actor, rng, err := s.prepare(ctx, &req, user.PermissionReportView)
	if err != nil {
		return report.Report[report.ProductivityEntry]{}, err
	}

	rows, err := s.reportRepo.Productivity(ctx, rng, reportScope(actor), req.EmployeeID)
	if err != nil {
		return report.Report[report.ProductivityEntry]{}, fmt.Errorf("failed to build productivity report: %w", err)
	}
	entries := make([]report.ProductivityEntry, len(rows))
	for i, r := range rows {
		entries[i] = report.NewProductivityEntry(r)
	}
	return report.NewReport("productivity", rng, s.clock.Now(), entries), nil
}

func (s *ReportServiceImpl) Attendance(ctx context.Context, req report.ReportRequest) (report.Report[report.AttendanceEntry], error) {
	actor, rng, err := s.prepare(ctx, &req, user.PermissionReportView)
	if err != nil {
		return report.Report[report.AttendanceEntry]{}, err
	}

	rows, err := s.reportRepo.Attendance(ctx, rng, reportScope(actor), req.EmployeeID)
	if err != nil {
		return report.Report[report.AttendanceEntry]{}, fmt.Errorf("failed to build attendance report: %w", err)
	}
	entries := make([]report.AttendanceEntry, len(rows))
	for i, r := range rows {
		entries[i] = report.NewAttendanceEntry(r)
	}
	return report.NewReport("attendance", rng, s.clock.Now(), entries), nil
}

func (s *ReportServiceImpl) Overtime(ctx context.Context, req report.ReportRequest) (report.Report[report.OvertimeEntry], error) {
	actor, rng, err := s.prepare(ctx, &req, user.PermissionReportOvertime)
	if err != nil {
		return report.Report[report.OvertimeEntry]{}, err
	}

	rows, err := s.reportRepo.Overtime(ctx, rng, reportScope(actor))
	if err != nil {
		return report.Report[report.OvertimeEntry]{}, fmt.Errorf("failed to build overtime report: %w", err)
	}
	entries := make([]report.OvertimeEntry, len(rows))
	for i, r := range rows {
		entries[i] = report.NewOvertimeEntry(r)
	}
	return report.NewReport("overtime", rng, s.clock.Now(), entries), nil
}

// TeamPerformance reports on every team for Admin and on the actor's own
// teams for a Manager. An explicit team_id must be one of those.
func (s *ReportServiceImpl) TeamPerformance(ctx context.Context, req report.ReportRequest) (report.Report[report.TeamPerformanceEntry], error) {
	actor, rng, err := s.prepare(ctx, &req, user.PermissionReportTeams)
	if err != nil {
		return report.Report[report.TeamPerformanceEntry]{}, err
	}

	var sel report.TeamSelector
	if !actor.IsAdmin() {
		sel.ManagerID = actor.ID
	}
	if req.TeamID != nil {
		t, err := s.teamRepo.GetByID(ctx, *req.TeamID)
		if err != nil {
			return report.Report[report.TeamPerformanceEntry]{}, err
		}
		if !actor.IsAdmin() && t.ManagerID != actor.ID {
			return report.Report[report.TeamPerformanceEntry]{}, report.ErrTeamNotVisible
		}
		sel.TeamID = t.ID
	}

	rows, err := s.reportRepo.TeamPerformance(ctx, rng, sel)
	if err != nil {
		return report.Report[report.TeamPerformanceEntry]{}, fmt.Errorf("failed to build team performance report: %w", err)
	}
	entries := make([]report.TeamPerformanceEntry, len(rows))
	for i, r := range rows {
		entries[i] = report.NewTeamPerformanceEntry(r)
	}
	return report.NewReport("team_performance", rng, s.clock.Now(), entries), nil
}

func (s *ReportServiceImpl) WorksheetAnalytics(ctx context.Context, req report.ReportRequest) (report.WorksheetAnalytics, error) {
	actor, rng, err := s.prepare(ctx, &req, user.PermissionReportView)
	if err != nil {
		return report.WorksheetAnalytics{}, err
	}
	scope := reportScope(actor)

	var (
		dist  map[string]int64
		trend []report.DailyTrend
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if dist, err = s.reportRepo.WorksheetStatusCounts(gCtx, rng, scope); err != nil {
			return fmt.Errorf("failed to count worksheets: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if trend, err = s.reportRepo.WorksheetDailyTrend(gCtx, rng, scope); err != nil {
			return fmt.Errorf("failed to build worksheet trend: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return report.WorksheetAnalytics{}, err
	}
	return report.NewWorksheetAnalytics(rng, s.clock.Now(), dist, trend), nil
}
