package report

import (
	"time"

	"github.com/pagemantra/worktrack-backend-go/internal/pkg/validator"
)

type ReportRequest struct {
	StartDate  *string
	EndDate    *string
	EmployeeID *string
	TeamID     *string
}

func (r *ReportRequest) Validate() error {
	var errs validator.ValidationErrors
	var start, end time.Time
	var okStart, okEnd bool
	if r.StartDate != nil {
		if start, okStart = validator.IsValidDate(*r.StartDate); !okStart {
			errs = errs.Add("start_date", "start_date must be in YYYY-MM-DD format")
		}
	}
	if r.EndDate != nil {
		if end, okEnd = validator.IsValidDate(*r.EndDate); !okEnd {
			errs = errs.Add("end_date", "end_date must be in YYYY-MM-DD format")
		}
	}
	if okStart && okEnd && start.After(end) {
		errs = errs.Add("start_date", ErrInvalidDateRange.Error())
	}
	if r.EmployeeID != nil && !validator.IsValidID(*r.EmployeeID) {
		errs = errs.Add("employee_id", "employee_id must be a valid identifier")
	}
	if r.TeamID != nil && !validator.IsValidID(*r.TeamID) {
		errs = errs.Add("team_id", "team_id must be a valid identifier")
	}
	return errs.OrNil()
}

// Report is the envelope shared by every report.
type Report[T any] struct {
	ReportType   string    `json:"report_type"`
	DateRange    DateRange `json:"date_range"`
	GeneratedAt  time.Time `json:"generated_at"`
	TotalRecords int       `json:"total_records"`
	Data         []T       `json:"data"`
}

func NewReport[T any](kind string, rng DateRange, now time.Time, data []T) Report[T] {
	if data == nil {
		data = []T{}
	}
	return Report[T]{
		ReportType:   kind,
		DateRange:    rng,
		GeneratedAt:  now,
		TotalRecords: len(data),
		Data:         data,
	}
}

type ProductivityEntry struct {
	EmployeeID            string  `json:"employee_id"`
	EmployeeName          string  `json:"employee_name"`
	EmployeeEmail         *string `json:"employee_email"`
	Department            *string `json:"department"`
	TasksCompleted        int64   `json:"tasks_completed"`
	TotalTasks            int64   `json:"total_tasks"`
	CompletionRate        float64 `json:"completion_rate"`
	DaysWorked            int64   `json:"days_worked"`
	TotalWorkHours        float64 `json:"total_work_hours"`
	TotalOvertimeHours    float64 `json:"total_overtime_hours"`
	AverageHoursPerDay    float64 `json:"average_hours_per_day"`
	WorksheetsSubmitted   int64   `json:"worksheets_submitted"`
	WorksheetsApproved    int64   `json:"worksheets_approved"`
	WorksheetApprovalRate float64 `json:"worksheet_approval_rate"`
}

func NewProductivityEntry(r ProductivityRow) ProductivityEntry {
	avg := 0.0
	if r.DaysWorked > 0 {
		avg = Round2(r.TotalWorkHours / float64(r.DaysWorked))
	}
	return ProductivityEntry{
		EmployeeID:            r.EmployeeID,
		EmployeeName:          r.EmployeeName,
		EmployeeEmail:         r.EmployeeEmail,
		Department:            r.Department,
		TasksCompleted:        r.TasksCompleted,
		TotalTasks:            r.TotalTasks,
		CompletionRate:        Rate(r.TasksCompleted, r.TotalTasks),
		DaysWorked:            r.DaysWorked,
		TotalWorkHours:        Round2(r.TotalWorkHours),
		TotalOvertimeHours:    Round2(r.TotalOvertimeHours),
		AverageHoursPerDay:    avg,
		WorksheetsSubmitted:   r.WorksheetsSubmitted,
		WorksheetsApproved:    r.WorksheetsApproved,
		WorksheetApprovalRate: Rate(r.WorksheetsApproved, r.WorksheetsSubmitted),
	}
}

type AttendanceEntry struct {
	Date               string  `json:"date"`
	EmployeeID         string  `json:"employee_id"`
	EmployeeName       string  `json:"employee_name"`
	LoginTime          *string `json:"login_time"`
	LogoutTime         *string `json:"logout_time"`
	TotalWorkHours     float64 `json:"total_work_hours"`
	TotalBreakMinutes  int     `json:"total_break_minutes"`
	OvertimeHours      float64 `json:"overtime_hours"`
	Status             string  `json:"status"`
	WorksheetSubmitted bool    `json:"worksheet_submitted"`
}

func NewAttendanceEntry(r AttendanceRow) AttendanceEntry {
	return AttendanceEntry(r)
}

// MaxOvertimeSessions caps the per-employee session list in the overtime report.
const MaxOvertimeSessions = 10

type OvertimeEntry struct {
	EmployeeID            string            `json:"employee_id"`
	EmployeeName          string            `json:"employee_name"`
	Department            *string           `json:"department"`
	TotalOvertimeHours    float64           `json:"total_overtime_hours"`
	OvertimeDays          int64             `json:"overtime_days"`
	AverageOvertimePerDay float64           `json:"average_overtime_per_day"`
	OvertimeSessions      []OvertimeSession `json:"overtime_sessions"`
}

func NewOvertimeEntry(r OvertimeRow) OvertimeEntry {
	sessions := r.Sessions
	if len(sessions) > MaxOvertimeSessions {
		sessions = sessions[:MaxOvertimeSessions]
	}
	if sessions == nil {
		sessions = []OvertimeSession{}
	}
	avg := 0.0
	if r.OvertimeDays > 0 {
		avg = Round2(r.TotalOvertimeHours / float64(r.OvertimeDays))
	}
	return OvertimeEntry{
		EmployeeID:            r.EmployeeID,
		EmployeeName:          r.EmployeeName,
		Department:            r.Department,
		TotalOvertimeHours:    Round2(r.TotalOvertimeHours),
		OvertimeDays:          r.OvertimeDays,
		AverageOvertimePerDay: avg,
		OvertimeSessions:      sessions,
	}
}

type TeamPerformanceEntry struct {
	TeamID                string  `json:"team_id"`
	TeamName              string  `json:"team_name"`
	TeamLead              *string `json:"team_lead"`
	MemberCount           int64   `json:"member_count"`
	TasksCompleted        int64   `json:"tasks_completed"`
	TotalTasks            int64   `json:"total_tasks"`
	TaskCompletionRate    float64 `json:"task_completion_rate"`
	WorksheetsSubmitted   int64   `json:"worksheets_submitted"`
	WorksheetsApproved    int64   `json:"worksheets_approved"`
	WorksheetApprovalRate float64 `json:"worksheet_approval_rate"`
	TotalWorkHours        float64 `json:"total_work_hours"`
	TotalOvertimeHours    float64 `json:"total_overtime_hours"`
	AttendanceSessions    int64   `json:"attendance_sessions"`
}

func NewTeamPerformanceEntry(r TeamPerformanceRow) TeamPerformanceEntry {
	return TeamPerformanceEntry{
		TeamID:                r.TeamID,
		TeamName:              r.TeamName,
		TeamLead:              r.TeamLeadName,
		MemberCount:           r.MemberCount,
		TasksCompleted:        r.TasksCompleted,
		TotalTasks:            r.TotalTasks,
		TaskCompletionRate:    Rate(r.TasksCompleted, r.TotalTasks),
		WorksheetsSubmitted:   r.WorksheetsSubmitted,
		WorksheetsApproved:    r.WorksheetsApproved,
		WorksheetApprovalRate: Rate(r.WorksheetsApproved, r.WorksheetsSubmitted),
		TotalWorkHours:        Round2(r.TotalWorkHours),
		TotalOvertimeHours:    Round2(r.TotalOvertimeHours),
		AttendanceSessions:    r.AttendanceSessions,
	}
}

type WorksheetAnalyticsSummary struct {
	TotalWorksheets     int64   `json:"total_worksheets"`
	PendingVerification int64   `json:"pending_verification"`
	PendingApproval     int64   `json:"pending_approval"`
	Approved            int64   `json:"approved"`
	Rejected            int64   `json:"rejected"`
	RejectionRate       float64 `json:"rejection_rate"`
}

type WorksheetAnalytics struct {
	ReportType         string                    `json:"report_type"`
	DateRange          DateRange                 `json:"date_range"`
	GeneratedAt        time.Time                 `json:"generated_at"`
	Summary            WorksheetAnalyticsSummary `json:"summary"`
	StatusDistribution map[string]int64          `json:"status_distribution"`
	DailyTrend         []DailyTrend              `json:"daily_trend"`
}

func NewWorksheetAnalytics(rng DateRange, now time.Time, dist map[string]int64, trend []DailyTrend) WorksheetAnalytics {
	if dist == nil {
		dist = map[string]int64{}
	}
	if trend == nil {
		trend = []DailyTrend{}
	}
	var total int64
	for _, n := range dist {
		total += n
	}
	return WorksheetAnalytics{
		ReportType:  "worksheet_analytics",
		DateRange:   rng,
		GeneratedAt: now,
		Summary: WorksheetAnalyticsSummary{
			TotalWorksheets:     total,
			PendingVerification: dist["submitted"],
			PendingApproval:     dist["tl_verified"],
			Approved:            dist["manager_approved"],
			Rejected:            dist["rejected"],
			RejectionRate:       Rate(dist["rejected"], total),
		},
		StatusDistribution: dist,
		DailyTrend:         trend,
	}
}
