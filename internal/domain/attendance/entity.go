package attendance

import (
	"math"
	"slices"
	"time"
)

type SessionStatus string

const (
	StatusActive     SessionStatus = "active"
	StatusOnBreak    SessionStatus = "on_break"
	StatusCompleted  SessionStatus = "completed"
	StatusIncomplete SessionStatus = "incomplete"
)

// OpenStatuses are the states of a session that has not been closed.
var OpenStatuses = []SessionStatus{StatusActive, StatusOnBreak}

func (s SessionStatus) IsOpen() bool {
	return s == StatusActive || s == StatusOnBreak
}

func (s SessionStatus) IsValid() bool {
	switch s {
	case StatusActive, StatusOnBreak, StatusCompleted, StatusIncomplete:
		return true
	}
	return false
}

type BreakType string

const (
	BreakShort   BreakType = "short_break"
	BreakLunch   BreakType = "lunch_break"
	BreakTea     BreakType = "tea_break"
	BreakMeeting BreakType = "meeting"
	BreakOther   BreakType = "other"
)

func (b BreakType) IsValid() bool {
	switch b {
	case BreakShort, BreakLunch, BreakTea, BreakMeeting, BreakOther:
		return true
	}
	return false
}

// Break is stored inside its session as JSON.
type Break struct {
	BreakID         string     `json:"break_id"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         *time.Time `json:"end_time"`
	BreakType       BreakType  `json:"break_type"`
	DurationMinutes int        `json:"duration_minutes"`
	Comment         *string    `json:"comment"`
}

// TimeSession is one clock-in to clock-out span of an employee on a calendar
// day in the organisation time zone.
type TimeSession struct {
	ID                 string
	EmployeeID         string
	Date               string
	LoginTime          time.Time
	LogoutTime         *time.Time
	Breaks             []Break
	TotalWorkHours     float64
	TotalBreakMinutes  int
	OvertimeHours      float64
	Status             SessionStatus
	WorksheetSubmitted bool
	CurrentBreakID     *string
	CreatedAt          time.Time
	UpdatedAt          time.Time

	// Join
	EmployeeName *string
}

// NewSession opens a session at now. now must already be in the organisation zone.
func NewSession(employeeID string, now time.Time) TimeSession {
	return TimeSession{
		EmployeeID: employeeID,
		Date:       now.Format("2006-01-02"),
		LoginTime:  now,
		Breaks:     []Break{},
		Status:     StatusActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// StartBreak appends an open break. Legal only from Active.
func (s TimeSession) StartBreak(breakID string, breakType BreakType, comment *string, now time.Time) (TimeSession, error) {
	if s.Status != StatusActive {
		return s, ErrNoActiveSession
	}
	if breakType == "" {
		breakType = BreakShort
	}

	s.Breaks = append(slices.Clone(s.Breaks), Break{
		BreakID:   breakID,
		StartTime: now,
		BreakType: breakType,
		Comment:   comment,
	})
	s.Status = StatusOnBreak
	s.CurrentBreakID = &breakID
	s.UpdatedAt = now
	return s, nil
}

// EndBreak closes the current break. Legal only from OnBreak.
func (s TimeSession) EndBreak(now time.Time) (TimeSession, error) {
	if s.Status != StatusOnBreak || s.CurrentBreakID == nil {
		return s, ErrNoActiveBreak
	}

	breaks := slices.Clone(s.Breaks)
	idx := slices.IndexFunc(breaks, func(b Break) bool { return b.BreakID == *s.CurrentBreakID })
	if idx < 0 {
		return s, ErrNoActiveBreak
	}
	end := now
	breaks[idx].EndTime = &end
	breaks[idx].DurationMinutes = wholeMinutes(breaks[idx].StartTime, end)

	s.Breaks = breaks
	s.Status = StatusActive
	s.CurrentBreakID = nil
	s.UpdatedAt = now
	return s, nil
}

// ClockOut closes the session, ending an open break first, and computes the
// totals. Worksheet gating is the caller's concern.
func (s TimeSession) ClockOut(now time.Time, standardHours float64) (TimeSession, error) {
	if !s.Status.IsOpen() {
		return s, ErrNoActiveSession
	}
	if s.Status == StatusOnBreak {
		var err error
		if s, err = s.EndBreak(now); err != nil {
			return s, err
		}
	}
	return s.close(now, StatusCompleted, standardHours), nil
}

// MarkIncomplete closes a session that was never clocked out. The logout is
// capped at the last second of the session's own day and no work or overtime
// is credited, since the real end of the day is unknown.
func (s TimeSession) MarkIncomplete(now time.Time) (TimeSession, error) {
	if !s.Status.IsOpen() {
		return s, ErrNoActiveSession
	}
	logout := now
	if end := s.dayEnd(now.Location()); end.Before(logout) {
		logout = end
	}
	if logout.Before(s.LoginTime) {
		logout = s.LoginTime
	}
	if s.Status == StatusOnBreak {
		var err error
		if s, err = s.EndBreak(logout); err != nil {
			return s, err
		}
	}
	s.LogoutTime = &logout
	s.TotalBreakMinutes = s.BreakMinutes()
	s.TotalWorkHours = 0
	s.OvertimeHours = 0
	s.Status = StatusIncomplete
	s.UpdatedAt = now
	return s, nil
}

// dayEnd is 23:59:59 of the session date in loc.
func (s TimeSession) dayEnd(loc *time.Location) time.Time {
	day, err := time.ParseInLocation("2006-01-02", s.Date, loc)
	if err != nil {
		y, m, d := s.LoginTime.In(loc).Date()
		day = time.Date(y, m, d, 0, 0, 0, 0, loc)
	}
	return day.AddDate(0, 0, 1).Add(-time.Second)
}

func (s TimeSession) close(now time.Time, status SessionStatus, standardHours float64) TimeSession {
	logout := now
	s.LogoutTime = &logout
	s.TotalBreakMinutes = s.BreakMinutes()
	s.TotalWorkHours, s.OvertimeHours = ComputeWorkHours(s.LoginTime, logout, s.TotalBreakMinutes, standardHours)
	s.Status = status
	s.UpdatedAt = now
	return s
}

// BreakMinutes sums the durations of the closed breaks.
func (s TimeSession) BreakMinutes() int {
	total := 0
	for _, b := range s.Breaks {
		total += b.DurationMinutes
	}
	return total
}

// ComputeWorkHours returns worked hours net of breaks and the overtime beyond
// standardHours, both rounded to 2 decimals and never negative.
func ComputeWorkHours(login, logout time.Time, breakMinutes int, standardHours float64) (workHours, overtimeHours float64) {
	seconds := logout.Sub(login).Seconds() - float64(breakMinutes)*60
	workHours = math.Max(0, round2(seconds/3600))
	overtimeHours = math.Max(0, round2(workHours-standardHours))
	return workHours, overtimeHours
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func wholeMinutes(start, end time.Time) int {
	d := end.Sub(start)
	if d <= 0 {
		return 0
	}
	return int(d / time.Minute)
}

// BreakSettings is the advisory break policy of a team.
type BreakSettings struct {
	ID                      string    `json:"id"`
	TeamID                  string    `json:"team_id"`
	MaxBreaksPerDay         *int      `json:"max_breaks_per_day"`
	MaxBreakDurationMinutes *int      `json:"max_break_duration_minutes"`
	LunchBreakDuration      *int      `json:"lunch_break_duration"`
	ShortBreakDuration      *int      `json:"short_break_duration"`
	EnforceLimits           bool      `json:"enforce_limits"`
	CreatedAt               time.Time `json:"created_at"`
	UpdatedAt               time.Time `json:"updated_at"`
}

// LimitWarning is a break-limit breach to report to the employee.
type LimitWarning struct {
	Title   string
	Message string
}

// Evaluate checks the breaks already taken against the limits. It never
// blocks; the result is a list of warnings.
func (bs BreakSettings) Evaluate(existing []Break) []LimitWarning {
	if !bs.EnforceLimits {
		return nil
	}

	var warnings []LimitWarning
	if bs.MaxBreaksPerDay != nil && *bs.MaxBreaksPerDay > 0 && len(existing) >= *bs.MaxBreaksPerDay {
		warnings = append(warnings, LimitWarning{
			Title:   "Break Limit Warning",
			Message: "You have reached the maximum breaks (" + itoa(*bs.MaxBreaksPerDay) + ") for today.",
		})
	}
	if bs.MaxBreakDurationMinutes != nil && *bs.MaxBreakDurationMinutes > 0 {
		total := 0
		for _, b := range existing {
			total += b.DurationMinutes
		}
		if total >= *bs.MaxBreakDurationMinutes {
			warnings = append(warnings, LimitWarning{
				Title:   "Break Duration Warning",
				Message: "You have exceeded the total break duration (" + itoa(*bs.MaxBreakDurationMinutes) + " minutes) for today.",
			})
		}
	}
	return warnings
}
