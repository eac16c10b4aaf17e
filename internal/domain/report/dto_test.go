package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRate(t *testing.T) {
	assert.Equal(t, 0.0, Rate(3, 0))
	assert.Equal(t, 33.33, Rate(1, 3))
	assert.Equal(t, 100.0, Rate(4, 4))
}

func TestNewProductivityEntry(t *testing.T) {
	e := NewProductivityEntry(ProductivityRow{
		EmployeeID:          "e1",
		TasksCompleted:      3,
		TotalTasks:          4,
		DaysWorked:          3,
		TotalWorkHours:      25.004,
		WorksheetsSubmitted: 3,
		WorksheetsApproved:  2,
	})
	assert.Equal(t, 75.0, e.CompletionRate)
	assert.Equal(t, 25.0, e.TotalWorkHours)
	assert.Equal(t, 8.33, e.AverageHoursPerDay)
	assert.Equal(t, 66.67, e.WorksheetApprovalRate)
}

func TestNewOvertimeEntryCapsSessions(t *testing.T) {
	sessions := make([]OvertimeSession, 12)
	e := NewOvertimeEntry(OvertimeRow{TotalOvertimeHours: 6, OvertimeDays: 4, Sessions: sessions})
	assert.Len(t, e.OvertimeSessions, MaxOvertimeSessions)
	assert.Equal(t, 1.5, e.AverageOvertimePerDay)
}

func TestNewWorksheetAnalytics(t *testing.T) {
	a := NewWorksheetAnalytics(DateRange{Start: "2024-03-01", End: "2024-03-31"}, time.Now(),
		map[string]int64{"submitted": 2, "tl_verified": 1, "manager_approved": 6, "rejected": 1}, nil)
	assert.Equal(t, int64(10), a.Summary.TotalWorksheets)
	assert.Equal(t, 10.0, a.Summary.RejectionRate)
	assert.Equal(t, int64(2), a.Summary.PendingVerification)
	assert.NotNil(t, a.DailyTrend)
}

func TestReportRequestValidate(t *testing.T) {
	start, end := "2024-03-10", "2024-03-01"
	req := ReportRequest{StartDate: &start, EndDate: &end}
	assert.Error(t, req.Validate())

	bad := "not-a-uuid"
	req = ReportRequest{EmployeeID: &bad}
	assert.Error(t, req.Validate())

	assert.NoError(t, (&ReportRequest{}).Validate())
}
