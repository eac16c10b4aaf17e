package report

import (
	"context"
	"testing"
	"time"

	"github.com/pagemantra/worktrack-backend-go/internal/domain/attendance"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/authz"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/report"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/task"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/user"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/worksheet"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/clock"
	"github.com/pagemantra/worktrack-backend-go/internal/repository/memory"
	authzservice "github.com/pagemantra/worktrack-backend-go/internal/service/authz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc      report.ReportService
	org      memory.Org
	sessions attendance.SessionRepository
}

func setup(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	clk := &clock.Fixed{T: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)}
	a, err := authzservice.NewAuthorizer(user.RolePermissions)
	require.NoError(t, err)
	f := &fixture{org: store.SeedOrg(clk.Now())}

	sessions := memory.NewSessionRepository(store)
	f.sessions = sessions
	for _, ts := range []attendance.TimeSession{
		{EmployeeID: memory.AssociateID, Date: "2025-03-08", TotalWorkHours: 9, OvertimeHours: 1},
		{EmployeeID: memory.AssociateID, Date: "2025-03-09", TotalWorkHours: 7},
		{EmployeeID: memory.AssociateID, Date: "2025-01-02", TotalWorkHours: 12, OvertimeHours: 4},
		{EmployeeID: memory.PeerID, Date: "2025-03-08", TotalWorkHours: 10, OvertimeHours: 2},
		{EmployeeID: memory.OutsiderID, Date: "2025-03-09", TotalWorkHours: 8.5, OvertimeHours: 0.5},
	} {
		ts.Status = attendance.StatusCompleted
		ts.LoginTime = time.Date(2025, 3, 8, 9, 0, 0, 0, time.UTC)
		_, err := sessions.Create(ctx, ts)
		require.NoError(t, err)
	}

	worksheets := memory.NewWorksheetRepository(store)
	for _, w := range []worksheet.Worksheet{
		{EmployeeID: memory.AssociateID, Date: "2025-03-08", Status: worksheet.StatusManagerApproved},
		{EmployeeID: memory.AssociateID, Date: "2025-03-09", Status: worksheet.StatusSubmitted},
		{EmployeeID: memory.PeerID, Date: "2025-03-08", Status: worksheet.StatusRejected},
	} {
		_, err := worksheets.Create(ctx, w)
		require.NoError(t, err)
	}

	created := time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC)
	completed := time.Date(2025, 3, 9, 16, 0, 0, 0, time.UTC)
	tasks := memory.NewTaskRepository(store)
	for _, tk := range []task.Task{
		{Title: "Ship", AssignedTo: memory.AssociateID, AssignedBy: memory.LeadID, Status: task.StatusCompleted, CompletedAt: &completed},
		{Title: "Review", AssignedTo: memory.AssociateID, AssignedBy: memory.LeadID, Status: task.StatusPending},
		{Title: "Test", AssignedTo: memory.PeerID, AssignedBy: memory.LeadID, Status: task.StatusPending},
	} {
		tk.Priority = task.PriorityMedium
		tk.CreatedAt = created
		_, err := tasks.Create(ctx, tk)
		require.NoError(t, err)
	}

	f.svc = NewReportService(memory.NewReportRepository(store), memory.NewTeamRepository(store), a, clk)
	return f
}

func as(u user.User) context.Context {
	return user.WithActor(context.Background(), u.Actor())
}

func ptr[T any](v T) *T { return &v }

func TestProductivity(t *testing.T) {
	f := setup(t)

	got, err := f.svc.Productivity(as(f.org.Manager), report.ReportRequest{})
	require.NoError(t, err)
	assert.Equal(t, "productivity", got.ReportType)
	assert.Equal(t, report.DateRange{Start: "2025-02-08", End: "2025-03-10"}, got.DateRange)
	require.Len(t, got.Data, 2)
	assert.Equal(t, 2, got.TotalRecords)

	arjun := got.Data[0]
	assert.Equal(t, "Arjun Associate", arjun.EmployeeName)
	assert.Equal(t, int64(1), arjun.TasksCompleted)
	assert.Equal(t, int64(2), arjun.TotalTasks)
	assert.Equal(t, 50.0, arjun.CompletionRate)
	assert.Equal(t, int64(2), arjun.DaysWorked)
	assert.Equal(t, 16.0, arjun.TotalWorkHours)
	assert.Equal(t, 8.0, arjun.AverageHoursPerDay)
	assert.Equal(t, 50.0, arjun.WorksheetApprovalRate)

	lead2, err := f.svc.Productivity(as(f.org.Lead2), report.ReportRequest{})
	require.NoError(t, err)
	require.Len(t, lead2.Data, 1)
	assert.Equal(t, memory.OutsiderID, lead2.Data[0].EmployeeID)

	one, err := f.svc.Productivity(as(f.org.Admin), report.ReportRequest{EmployeeID: ptr(memory.PeerID)})
	require.NoError(t, err)
	require.Len(t, one.Data, 1)
	assert.Equal(t, int64(1), one.Data[0].WorksheetsSubmitted)
	assert.Zero(t, one.Data[0].WorksheetsApproved)

	wide, err := f.svc.Productivity(as(f.org.Lead), report.ReportRequest{StartDate: ptr("2025-01-01"), EmployeeID: ptr(memory.AssociateID)})
	require.NoError(t, err)
	require.Len(t, wide.Data, 1)
	assert.Equal(t, int64(3), wide.Data[0].DaysWorked)

	_, err = f.svc.Productivity(as(f.org.Associate), report.ReportRequest{})
	assert.ErrorIs(t, err, authz.ErrForbidden)

	_, err = f.svc.Productivity(as(f.org.Admin), report.ReportRequest{StartDate: ptr("2025-03-11")})
	assert.ErrorIs(t, err, report.ErrInvalidDateRange)
}

func TestIncompleteSessionsExcludedFromHours(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	login := time.Date(2025, 3, 7, 9, 0, 0, 0, time.UTC)
	logout := time.Date(2025, 3, 7, 23, 59, 59, 0, time.UTC)
	_, err := f.sessions.Create(ctx, attendance.TimeSession{
		EmployeeID:     memory.AssociateID,
		Date:           "2025-03-07",
		LoginTime:      login,
		LogoutTime:     &logout,
		Status:         attendance.StatusIncomplete,
		TotalWorkHours: 15.08,
		OvertimeHours:  7.08,
	})
	require.NoError(t, err)

	prod, err := f.svc.Productivity(as(f.org.Manager), report.ReportRequest{})
	require.NoError(t, err)
	require.Len(t, prod.Data, 2)
	arjun := prod.Data[0]
	assert.Equal(t, memory.AssociateID, arjun.EmployeeID)
	assert.Equal(t, int64(3), arjun.DaysWorked)
	assert.Equal(t, 16.0, arjun.TotalWorkHours)
	assert.Equal(t, 1.0, arjun.TotalOvertimeHours)

	ot, err := f.svc.Overtime(as(f.org.Manager), report.ReportRequest{})
	require.NoError(t, err)
	require.Len(t, ot.Data, 2)
	assert.Equal(t, memory.AssociateID, ot.Data[1].EmployeeID)
	assert.Equal(t, 1.0, ot.Data[1].TotalOvertimeHours)
	assert.Equal(t, int64(1), ot.Data[1].OvertimeDays)
	for _, s := range ot.Data[1].OvertimeSessions {
		assert.NotEqual(t, "2025-03-07", s.Date)
	}
}

func TestAttendanceReport(t *testing.T) {
	f := setup(t)

	got, err := f.svc.Attendance(as(f.org.Lead), report.ReportRequest{})
	require.NoError(t, err)
	require.Len(t, got.Data, 3)
	assert.Equal(t, "2025-03-09", got.Data[0].Date)
	assert.Equal(t, "completed", got.Data[0].Status)
	require.NotNil(t, got.Data[0].LoginTime)

	peer, err := f.svc.Attendance(as(f.org.Admin), report.ReportRequest{EmployeeID: ptr(memory.PeerID)})
	require.NoError(t, err)
	require.Len(t, peer.Data, 1)
	assert.Equal(t, "Priya Peer", peer.Data[0].EmployeeName)
}

func TestOvertime(t *testing.T) {
	f := setup(t)

	got, err := f.svc.Overtime(as(f.org.Manager), report.ReportRequest{})
	require.NoError(t, err)
	require.Len(t, got.Data, 2)
	assert.Equal(t, memory.PeerID, got.Data[0].EmployeeID)
	assert.Equal(t, 2.0, got.Data[0].TotalOvertimeHours)
	assert.Equal(t, memory.AssociateID, got.Data[1].EmployeeID)
	assert.Equal(t, int64(1), got.Data[1].OvertimeDays)
	assert.Len(t, got.Data[1].OvertimeSessions, 1)

	_, err = f.svc.Overtime(as(f.org.Lead), report.ReportRequest{})
	assert.ErrorIs(t, err, authz.ErrForbidden)
}

func TestTeamPerformance(t *testing.T) {
	f := setup(t)

	admin, err := f.svc.TeamPerformance(as(f.org.Admin), report.ReportRequest{})
	require.NoError(t, err)
	require.Len(t, admin.Data, 2)
	assert.Equal(t, "Payments", admin.Data[0].TeamName)

	platform := admin.Data[1]
	assert.Equal(t, "Tarun Lead", *platform.TeamLead)
	assert.Equal(t, int64(2), platform.MemberCount)
	assert.Equal(t, int64(3), platform.TotalTasks)
	assert.Equal(t, int64(1), platform.TasksCompleted)
	assert.Equal(t, 33.33, platform.TaskCompletionRate)
	assert.Equal(t, int64(3), platform.WorksheetsSubmitted)
	assert.Equal(t, int64(3), platform.AttendanceSessions)
	assert.Equal(t, 26.0, platform.TotalWorkHours)

	mgr, err := f.svc.TeamPerformance(as(f.org.Manager), report.ReportRequest{})
	require.NoError(t, err)
	require.Len(t, mgr.Data, 1)
	assert.Equal(t, memory.TeamID, mgr.Data[0].TeamID)

	_, err = f.svc.TeamPerformance(as(f.org.Manager), report.ReportRequest{TeamID: ptr(memory.Team2ID)})
	assert.ErrorIs(t, err, report.ErrTeamNotVisible)

	one, err := f.svc.TeamPerformance(as(f.org.Admin), report.ReportRequest{TeamID: ptr(memory.Team2ID)})
	require.NoError(t, err)
	require.Len(t, one.Data, 1)
	assert.Equal(t, "Payments", one.Data[0].TeamName)
}

func TestWorksheetAnalytics(t *testing.T) {
	f := setup(t)

	got, err := f.svc.WorksheetAnalytics(as(f.org.Admin), report.ReportRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.Summary.TotalWorksheets)
	assert.Equal(t, int64(1), got.Summary.Approved)
	assert.Equal(t, 33.33, got.Summary.RejectionRate)
	assert.Equal(t, []report.DailyTrend{
		{Date: "2025-03-08", Submitted: 2, Approved: 1},
		{Date: "2025-03-09", Submitted: 1},
	}, got.DailyTrend)

	lead2, err := f.svc.WorksheetAnalytics(as(f.org.Lead2), report.ReportRequest{})
	require.NoError(t, err)
	assert.Zero(t, lead2.Summary.TotalWorksheets)
	assert.Empty(t, lead2.DailyTrend)
}
