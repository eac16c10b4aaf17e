package memory

import (
	"context"
	"sort"

	"github.com/pagemantra/worktrack-backend-go/internal/domain/attendance"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/report"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/task"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/user"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/worksheet"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/clock"
)

type reportRepository struct {
	s *Store
}

func NewReportRepository(s *Store) report.ReportRepository {
	return &reportRepository{s: s}
}

func inRange(date string, rng report.DateRange) bool {
	return date >= rng.Start && date <= rng.End
}

func completedIn(t task.Task, rng report.DateRange) bool {
	return t.Status == task.StatusCompleted && t.CompletedAt != nil &&
		inRange(t.CompletedAt.Format(clock.DateLayout), rng)
}

// associates returns the active associates visible under scope, by name.
func (r *reportRepository) associates(scope user.Scope, employeeID *string) []user.User {
	var out []user.User
	for _, u := range r.s.users {
		if u.Role != user.RoleAssociate || !u.IsActive || !scope.Allows(u.Owner()) {
			continue
		}
		if employeeID != nil && u.ID != *employeeID {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out
}

func (r *reportRepository) Productivity(_ context.Context, rng report.DateRange, scope user.Scope, employeeID *string) ([]report.ProductivityRow, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var rows []report.ProductivityRow
	for _, u := range r.associates(scope, employeeID) {
		row := report.ProductivityRow{
			EmployeeID:    u.ID,
			EmployeeName:  u.FullName,
			EmployeeEmail: u.Email,
			Department:    u.Department,
		}
		for _, t := range r.s.tasks {
			if t.AssignedTo != u.ID {
				continue
			}
			row.TotalTasks++
			if completedIn(t, rng) {
				row.TasksCompleted++
			}
		}
		for _, ts := range r.s.sessions {
			if ts.EmployeeID == u.ID && inRange(ts.Date, rng) {
				row.DaysWorked++
				if ts.Status == attendance.StatusCompleted {
					row.TotalWorkHours += ts.TotalWorkHours
					row.TotalOvertimeHours += ts.OvertimeHours
				}
			}
		}
		for _, w := range r.s.worksheets {
			if w.EmployeeID == u.ID && inRange(w.Date, rng) {
				row.WorksheetsSubmitted++
				if w.Status == worksheet.StatusManagerApproved {
					row.WorksheetsApproved++
				}
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (r *reportRepository) sessionsIn(rng report.DateRange, scope user.Scope, employeeID *string) []attendance.TimeSession {
	var out []attendance.TimeSession
	for _, ts := range r.s.sessions {
		if !inRange(ts.Date, rng) || !scope.Allows(r.s.ownerOf(ts.EmployeeID)) {
			continue
		}
		if employeeID != nil && ts.EmployeeID != *employeeID {
			continue
		}
		out = append(out, ts)
	}
	sortDesc(out, func(ts attendance.TimeSession) string {
		return ts.Date + ts.LoginTime.UTC().Format("150405.000000000")
	})
	return out
}

func (r *reportRepository) Attendance(_ context.Context, rng report.DateRange, scope user.Scope, employeeID *string) ([]report.AttendanceRow, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var rows []report.AttendanceRow
	for _, ts := range r.sessionsIn(rng, scope, employeeID) {
		row := report.AttendanceRow{
			Date:               ts.Date,
			EmployeeID:         ts.EmployeeID,
			TotalWorkHours:     ts.TotalWorkHours,
			TotalBreakMinutes:  ts.TotalBreakMinutes,
			OvertimeHours:      ts.OvertimeHours,
			Status:             string(ts.Status),
			WorksheetSubmitted: ts.WorksheetSubmitted,
		}
		if name := r.s.nameOf(ts.EmployeeID); name != nil {
			row.EmployeeName = *name
		}
		login := ts.LoginTime.Format("15:04:05")
		row.LoginTime = &login
		if ts.LogoutTime != nil {
			logout := ts.LogoutTime.Format("15:04:05")
			row.LogoutTime = &logout
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (r *reportRepository) Overtime(_ context.Context, rng report.DateRange, scope user.Scope) ([]report.OvertimeRow, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	byEmployee := make(map[string]*report.OvertimeRow)
	var order []string
	for _, ts := range r.sessionsIn(rng, scope, nil) {
		if ts.Status != attendance.StatusCompleted || ts.OvertimeHours <= 0 {
			continue
		}
		row, ok := byEmployee[ts.EmployeeID]
		if !ok {
			row = &report.OvertimeRow{EmployeeID: ts.EmployeeID}
			if u, ok := r.s.users[ts.EmployeeID]; ok {
				row.EmployeeName = u.FullName
				row.Department = u.Department
			}
			byEmployee[ts.EmployeeID] = row
			order = append(order, ts.EmployeeID)
		}
		row.TotalOvertimeHours += ts.OvertimeHours
		row.OvertimeDays++
		row.Sessions = append(row.Sessions, report.OvertimeSession{Date: ts.Date, OvertimeHours: ts.OvertimeHours})
	}

	rows := make([]report.OvertimeRow, 0, len(order))
	for _, id := range order {
		rows = append(rows, *byEmployee[id])
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].TotalOvertimeHours > rows[j].TotalOvertimeHours })
	return rows, nil
}

func (r *reportRepository) TeamPerformance(_ context.Context, rng report.DateRange, sel report.TeamSelector) ([]report.TeamPerformanceRow, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var rows []report.TeamPerformanceRow
	for _, t := range r.s.teams {
		if !t.IsActive || len(t.Members) == 0 {
			continue
		}
		if sel.TeamID != "" && t.ID != sel.TeamID {
			continue
		}
		if sel.ManagerID != "" && t.ManagerID != sel.ManagerID {
			continue
		}

		row := report.TeamPerformanceRow{
			TeamID:       t.ID,
			TeamName:     t.Name,
			TeamLeadName: r.s.nameOf(t.TeamLeadID),
			MemberCount:  int64(len(t.Members)),
		}
		for _, tk := range r.s.tasks {
			if !t.HasMember(tk.AssignedTo) {
				continue
			}
			if inRange(tk.CreatedAt.Format(clock.DateLayout), rng) {
				row.TotalTasks++
			}
			if completedIn(tk, rng) {
				row.TasksCompleted++
			}
		}
		for _, w := range r.s.worksheets {
			if t.HasMember(w.EmployeeID) && inRange(w.Date, rng) {
				row.WorksheetsSubmitted++
				if w.Status == worksheet.StatusManagerApproved {
					row.WorksheetsApproved++
				}
			}
		}
		for _, ts := range r.s.sessions {
			if t.HasMember(ts.EmployeeID) && inRange(ts.Date, rng) {
				row.AttendanceSessions++
				if ts.Status == attendance.StatusCompleted {
					row.TotalWorkHours += ts.TotalWorkHours
					row.TotalOvertimeHours += ts.OvertimeHours
				}
			}
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].TeamName < rows[j].TeamName })
	return rows, nil
}

func (r *reportRepository) WorksheetStatusCounts(_ context.Context, rng report.DateRange, scope user.Scope) (map[string]int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	counts := make(map[string]int64)
	for _, w := range r.s.worksheets {
		if inRange(w.Date, rng) && scope.Allows(r.s.ownerOf(w.EmployeeID)) {
			counts[string(w.Status)]++
		}
	}
	return counts, nil
}

func (r *reportRepository) WorksheetDailyTrend(_ context.Context, rng report.DateRange, scope user.Scope) ([]report.DailyTrend, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	byDate := make(map[string]*report.DailyTrend)
	for _, w := range r.s.worksheets {
		if !inRange(w.Date, rng) || !scope.Allows(r.s.ownerOf(w.EmployeeID)) {
			continue
		}
		d, ok := byDate[w.Date]
		if !ok {
			d = &report.DailyTrend{Date: w.Date}
			byDate[w.Date] = d
		}
		d.Submitted++
		if w.Status == worksheet.StatusManagerApproved {
			d.Approved++
		}
	}

	out := make([]report.DailyTrend, 0, len(byDate))
	for _, d := range byDate {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}
