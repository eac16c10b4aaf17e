package report

import "math"

// DateRange is an inclusive range of calendar dates in YYYY-MM-DD form.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// DefaultWindowDays is the range used when the caller omits start_date.
const DefaultWindowDays = 30

// ProductivityRow is the raw aggregate for one associate over a range.
type ProductivityRow struct {
	EmployeeID          string
	EmployeeName        string
	EmployeeEmail       *string
	Department          *string
	TasksCompleted      int64
	TotalTasks          int64
	DaysWorked          int64
	TotalWorkHours      float64
	TotalOvertimeHours  float64
	WorksheetsSubmitted int64
	WorksheetsApproved  int64
}

type AttendanceRow struct {
	Date               string
	EmployeeID         string
	EmployeeName       string
	LoginTime          *string
	LogoutTime         *string
	TotalWorkHours     float64
	TotalBreakMinutes  int
	OvertimeHours      float64
	Status             string
	WorksheetSubmitted bool
}

type OvertimeSession struct {
	Date          string  `json:"date"`
	OvertimeHours float64 `json:"overtime_hours"`
}

type OvertimeRow struct {
	EmployeeID         string
	EmployeeName       string
	Department         *string
	TotalOvertimeHours float64
	OvertimeDays       int64
	Sessions           []OvertimeSession
}

type TeamPerformanceRow struct {
	TeamID              string
	TeamName            string
	TeamLeadName        *string
	MemberCount         int64
	TasksCompleted      int64
	TotalTasks          int64
	WorksheetsSubmitted int64
	WorksheetsApproved  int64
	TotalWorkHours      float64
	TotalOvertimeHours  float64
	AttendanceSessions  int64
}

type DailyTrend struct {
	Date      string `json:"date"`
	Submitted int64  `json:"submitted"`
	Approved  int64  `json:"approved"`
}

// Rate returns part/whole as a percentage rounded to 2 decimals, or 0 for an
// empty whole.
func Rate(part, whole int64) float64 {
	if whole <= 0 {
		return 0
	}
	return Round2(float64(part) / float64(whole) * 100)
}

func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
