package postgresql

import (
	"context"
	"fmt"
	"sort"

	"github.com/pagemantra/worktrack-backend-go/internal/domain/report"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/user"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/database"
)

type reportRepositoryImpl struct {
	db *database.DB
}

func NewReportRepository(db *database.DB) report.ReportRepository {
	return &reportRepositoryImpl{db: db}
}

// Productivity implements report.ReportRepository.
func (r *reportRepositoryImpl) Productivity(ctx context.Context, rng report.DateRange, scope user.Scope, employeeID *string) ([]report.ProductivityRow, error) {
	q := GetQuerier(ctx, r.db)

	args := queryArgs{rng.Start, rng.End}
	where := conditions{"u.role = 'employee'", "u.is_active"}
	where.and("%s", scopeCondition(scope, "u", &args))
	if employeeID != nil {
		where.and("u.id = %s", args.add(*employeeID))
	}

	query := `
		SELECT u.id, u.full_name, u.email, u.department,
			tk.completed, tk.total,
			ss.days, ss.hours, ss.overtime,
			ws.submitted, ws.approved
		FROM users u
		CROSS JOIN LATERAL (
			SELECT COUNT(*) FILTER (
					WHERE t.status = 'completed' AND t.completed_at::date BETWEEN $1 AND $2
				) AS completed,
				COUNT(*) AS total
			FROM tasks t WHERE t.assigned_to = u.id
		) tk
		CROSS JOIN LATERAL (
			SELECT COUNT(*) AS days,
				COALESCE(SUM(s.total_work_hours) FILTER (WHERE s.status = 'completed'), 0) AS hours,
				COALESCE(SUM(s.overtime_hours) FILTER (WHERE s.status = 'completed'), 0) AS overtime
			FROM time_sessions s WHERE s.employee_id = u.id AND s.date BETWEEN $1 AND $2
		) ss
		CROSS JOIN LATERAL (
			SELECT COUNT(*) AS submitted,
				COUNT(*) FILTER (WHERE w.status = 'manager_approved') AS approved
			FROM worksheets w WHERE w.employee_id = u.id AND w.date BETWEEN $1 AND $2
		) ws
		` + where.where() + `
		ORDER BY u.full_name`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query productivity report: %w", err)
	}
	defer rows.Close()

	var out []report.ProductivityRow
	for rows.Next() {
		var row report.ProductivityRow
		if err := rows.Scan(
			&row.EmployeeID,
			&row.EmployeeName,
			&row.EmployeeEmail,
			&row.Department,
			&row.TasksCompleted,
			&row.TotalTasks,
			&row.DaysWorked,
			&row.TotalWorkHours,
			&row.TotalOvertimeHours,
			&row.WorksheetsSubmitted,
			&row.WorksheetsApproved,
		); err != nil {
			return nil, fmt.Errorf("failed to scan productivity row: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate productivity rows: %w", err)
	}
	return out, nil
}

// Attendance implements report.ReportRepository. Clock times are rendered on
// the connection's time zone.
func (r *reportRepositoryImpl) Attendance(ctx context.Context, rng report.DateRange, scope user.Scope, employeeID *string) ([]report.AttendanceRow, error) {
	q := GetQuerier(ctx, r.db)

	args := queryArgs{rng.Start, rng.End}
	where := conditions{"s.date BETWEEN $1 AND $2"}
	where.and("%s", scopeCondition(scope, "u", &args))
	if employeeID != nil {
		where.and("s.employee_id = %s", args.add(*employeeID))
	}

	query := `
		SELECT s.date::text, s.employee_id, u.full_name,
			to_char(s.login_time, 'HH24:MI:SS'), to_char(s.logout_time, 'HH24:MI:SS'),
			s.total_work_hours, s.total_break_minutes, s.overtime_hours, s.status, s.worksheet_submitted
		FROM time_sessions s
		JOIN users u ON u.id = s.employee_id
		` + where.where() + `
		ORDER BY s.date DESC, s.login_time DESC`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance report: %w", err)
	}
	defer rows.Close()

	var out []report.AttendanceRow
	for rows.Next() {
		var row report.AttendanceRow
		if err := rows.Scan(
			&row.Date,
			&row.EmployeeID,
			&row.EmployeeName,
			&row.LoginTime,
			&row.LogoutTime,
			&row.TotalWorkHours,
			&row.TotalBreakMinutes,
			&row.OvertimeHours,
			&row.Status,
			&row.WorksheetSubmitted,
		); err != nil {
			return nil, fmt.Errorf("failed to scan attendance row: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendance rows: %w", err)
	}
	return out, nil
}

// Overtime implements report.ReportRepository.
func (r *reportRepositoryImpl) Overtime(ctx context.Context, rng report.DateRange, scope user.Scope) ([]report.OvertimeRow, error) {
	q := GetQuerier(ctx, r.db)

	args := queryArgs{rng.Start, rng.End}
	query := `
		SELECT s.employee_id, u.full_name, u.department, s.date::text, s.overtime_hours
		FROM time_sessions s
		JOIN users u ON u.id = s.employee_id
		WHERE s.date BETWEEN $1 AND $2 AND s.status = 'completed' AND s.overtime_hours > 0 AND ` + scopeCondition(scope, "u", &args) + `
		ORDER BY s.date DESC, s.login_time DESC`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query overtime report: %w", err)
	}
	defer rows.Close()

	byEmployee := make(map[string]*report.OvertimeRow)
	var order []string
	for rows.Next() {
		var employeeID, name string
		var department *string
		var session report.OvertimeSession
		if err := rows.Scan(&employeeID, &name, &department, &session.Date, &session.OvertimeHours); err != nil {
			return nil, fmt.Errorf("failed to scan overtime row: %w", err)
		}
		row, ok := byEmployee[employeeID]
		if !ok {
			row = &report.OvertimeRow{EmployeeID: employeeID, EmployeeName: name, Department: department}
			byEmployee[employeeID] = row
			order = append(order, employeeID)
		}
		row.TotalOvertimeHours += session.OvertimeHours
		row.OvertimeDays++
		row.Sessions = append(row.Sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate overtime rows: %w", err)
	}

	out := make([]report.OvertimeRow, 0, len(order))
	for _, id := range order {
		out = append(out, *byEmployee[id])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalOvertimeHours > out[j].TotalOvertimeHours })
	return out, nil
}

// TeamPerformance implements report.ReportRepository. Teams without members
// are left out.
func (r *reportRepositoryImpl) TeamPerformance(ctx context.Context, rng report.DateRange, sel report.TeamSelector) ([]report.TeamPerformanceRow, error) {
	q := GetQuerier(ctx, r.db)

	args := queryArgs{rng.Start, rng.End}
	where := conditions{"t.is_active", "mc.members > 0"}
	if sel.TeamID != "" {
		where.and("t.id = %s", args.add(sel.TeamID))
	}
	if sel.ManagerID != "" {
		where.and("t.manager_id = %s", args.add(sel.ManagerID))
	}

	query := `
		SELECT t.id, t.name, tl.full_name, mc.members,
			tk.completed, tk.total,
			ws.submitted, ws.approved,
			ss.hours, ss.overtime, ss.sessions
		FROM teams t
		LEFT JOIN users tl ON tl.id = t.team_lead_id
		CROSS JOIN LATERAL (
			SELECT COUNT(*) AS members FROM team_members m WHERE m.team_id = t.id
		) mc
		CROSS JOIN LATERAL (
			SELECT COUNT(*) FILTER (
					WHERE k.status = 'completed' AND k.completed_at::date BETWEEN $1 AND $2
				) AS completed,
				COUNT(*) FILTER (WHERE k.created_at::date BETWEEN $1 AND $2) AS total
			FROM tasks k
			JOIN team_members m ON m.user_id = k.assigned_to AND m.team_id = t.id
		) tk
		CROSS JOIN LATERAL (
			SELECT COUNT(*) AS submitted,
				COUNT(*) FILTER (WHERE w.status = 'manager_approved') AS approved
			FROM worksheets w
			JOIN team_members m ON m.user_id = w.employee_id AND m.team_id = t.id
			WHERE w.date BETWEEN $1 AND $2
		) ws
		CROSS JOIN LATERAL (
			SELECT COALESCE(SUM(s.total_work_hours) FILTER (WHERE s.status = 'completed'), 0) AS hours,
				COALESCE(SUM(s.overtime_hours) FILTER (WHERE s.status = 'completed'), 0) AS overtime,
				COUNT(*) AS sessions
			FROM time_sessions s
			JOIN team_members m ON m.user_id = s.employee_id AND m.team_id = t.id
			WHERE s.date BETWEEN $1 AND $2
		) ss
		` + where.where() + `
		ORDER BY t.name`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query team performance report: %w", err)
	}
	defer rows.Close()

	var out []report.TeamPerformanceRow
	for rows.Next() {
		var row report.TeamPerformanceRow
		if err := rows.Scan(
			&row.TeamID,
			&row.TeamName,
			&row.TeamLeadName,
			&row.MemberCount,
			&row.TasksCompleted,
			&row.TotalTasks,
			&row.WorksheetsSubmitted,
			&row.WorksheetsApproved,
			&row.TotalWorkHours,
			&row.TotalOvertimeHours,
			&row.AttendanceSessions,
		); err != nil {
			return nil, fmt.Errorf("failed to scan team performance row: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate team performance rows: %w", err)
	}
	return out, nil
}

// WorksheetStatusCounts implements report.ReportRepository.
func (r *reportRepositoryImpl) WorksheetStatusCounts(ctx context.Context, rng report.DateRange, scope user.Scope) (map[string]int64, error) {
	q := GetQuerier(ctx, r.db)

	args := queryArgs{rng.Start, rng.End}
	query := `
		SELECT w.status, COUNT(*)
		FROM worksheets w
		JOIN users u ON u.id = w.employee_id
		WHERE w.date BETWEEN $1 AND $2 AND ` + scopeCondition(scope, "u", &args) + `
		GROUP BY w.status`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count worksheets: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan worksheet count: %w", err)
		}
		counts[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate worksheet counts: %w", err)
	}
	return counts, nil
}

// WorksheetDailyTrend implements report.ReportRepository.
func (r *reportRepositoryImpl) WorksheetDailyTrend(ctx context.Context, rng report.DateRange, scope user.Scope) ([]report.DailyTrend, error) {
	q := GetQuerier(ctx, r.db)

	args := queryArgs{rng.Start, rng.End}
	query := `
		SELECT w.date::text, COUNT(*), COUNT(*) FILTER (WHERE w.status = 'manager_approved')
		FROM worksheets w
		JOIN users u ON u.id = w.employee_id
		WHERE w.date BETWEEN $1 AND $2 AND ` + scopeCondition(scope, "u", &args) + `
		GROUP BY w.date
		ORDER BY w.date`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query worksheet trend: %w", err)
	}
	defer rows.Close()

	var out []report.DailyTrend
	for rows.Next() {
		var d report.DailyTrend
		if err := rows.Scan(&d.Date, &d.Submitted, &d.Approved); err != nil {
			return nil, fmt.Errorf("failed to scan worksheet trend: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate worksheet trend: %w", err)
	}
	return out, nil
}
