package report

import "context"

type ReportService interface {
	Productivity(ctx context.Context, req ReportRequest) (Report[ProductivityEntry], error)
	Attendance(ctx context.Context, req ReportRequest) (Report[AttendanceEntry], error)
	Overtime(ctx context.Context, req ReportRequest) (Report[OvertimeEntry], error)
	TeamPerformance(ctx context.Context, req ReportRequest) (Report[TeamPerformanceEntry], error)
	WorksheetAnalytics(ctx context.Context, req ReportRequest) (WorksheetAnalytics, error)
}
