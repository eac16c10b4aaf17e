package http

import (
	"io"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/authz"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/user"
	"github.com/pagemantra/worktrack-backend-go/internal/handler/http/middleware"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/jwt"
)

type Handlers struct {
	Auth         AuthHandler
	User         UserHandler
	Team         TeamHandler
	Task         TaskHandler
	Form         FormHandler
	Attendance   AttendanceHandler
	Worksheet    WorksheetHandler
	Notification NotificationHandler
	Report       ReportHandler
}

type RouterOptions struct {
	AppName        string
	Version        string
	Env            string
	LogLevel       slog.Level
	LogOutput      io.Writer // default: os.Stdout
	AllowedOrigins []string
	LoginLimiter   *middleware.IPRateLimiter
}

func NewRouter(jwtService jwt.Service, users user.UserRepository, authorizer authz.Authorizer, h Handlers, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	if opts.LogOutput == nil {
		opts.LogOutput = os.Stdout
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"http://localhost:3000"}
	}
	if opts.LoginLimiter == nil {
		opts.LoginLimiter = middleware.NewIPRateLimiter(10, 5)
	}

	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(opts.LogOutput, &slog.HandlerOptions{
		Level:       opts.LogLevel,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", opts.AppName),
		slog.String("version", opts.Version),
		slog.String("env", opts.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(chiMiddleware.RealIP)

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  opts.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register-admin", h.Auth.RegisterAdmin)
			r.With(opts.LoginLimiter.Handler).Post("/login", h.Auth.Login)
		})

		// EventSource cannot send headers; authenticated by its SSE token.
		r.Get("/notifications/stream", h.Notification.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired(users))

			r.Get("/auth/me", h.Auth.Me)

			r.Route("/users", func(r chi.Router) {
				r.Post("/", h.User.Create)
				r.Get("/", h.User.List)
				r.Get("/managers", h.User.ListManagers)
				r.Get("/team-leads", h.User.ListTeamLeads)
				r.Get("/employees", h.User.ListEmployees)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.User.GetByID)
					r.Put("/", h.User.Update)
					r.Delete("/", h.User.Delete)
				})
			})

			r.Route("/teams", func(r chi.Router) {
				r.Post("/", h.Team.Create)
				r.Get("/", h.Team.List)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.Team.GetByID)
					r.Put("/", h.Team.Update)
					r.Delete("/", h.Team.Delete)
					r.Post("/members", h.Team.AddMember)
					r.Delete("/members/{userID}", h.Team.RemoveMember)
				})
			})

			r.Route("/tasks", func(r chi.Router) {
				r.Post("/", h.Task.Create)
				r.Get("/", h.Task.List)
				r.Get("/my-tasks", h.Task.MyTasks)
				r.Get("/assigned-by-me", h.Task.AssignedByMe)
				r.Get("/reports/summary", h.Task.Summary)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.Task.GetByID)
					r.Put("/", h.Task.Update)
					r.Delete("/", h.Task.Delete)
					r.Post("/work-log", h.Task.AddWorkLog)
				})
			})

			r.Route("/forms", func(r chi.Router) {
				r.Post("/", h.Form.Create)
				r.Get("/", h.Form.List)
				r.Get("/team/{teamID}", h.Form.TeamForms)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.Form.GetByID)
					r.Put("/", h.Form.Update)
					r.Delete("/", h.Form.Delete)
					r.Post("/assign", h.Form.Assign)
					r.Delete("/unassign/{teamID}", h.Form.Unassign)
				})
			})

			r.Route("/attendance", func(r chi.Router) {
				r.Post("/clock-in", h.Attendance.ClockIn)
				r.Post("/clock-out", h.Attendance.ClockOut)
				r.Post("/break/start", h.Attendance.StartBreak)
				r.Post("/break/end", h.Attendance.EndBreak)
				r.Get("/current", h.Attendance.Current)
				r.Get("/today", h.Attendance.Today)
				r.Get("/today-all", h.Attendance.Today)
				r.Get("/history", h.Attendance.History)

				r.Post("/break-settings", h.Attendance.CreateBreakSettings)
				r.Get("/break-settings/{teamID}", h.Attendance.GetBreakSettings)
				r.Put("/break-settings/{teamID}", h.Attendance.UpdateBreakSettings)
			})

			r.Route("/worksheets", func(r chi.Router) {
				r.Post("/", h.Worksheet.Create)
				r.Get("/", h.Worksheet.List)
				r.Post("/bulk-approve", h.Worksheet.BulkApprove)
				r.Get("/pending-verification", h.Worksheet.PendingVerification)
				r.Get("/pending-approval", h.Worksheet.PendingApproval)
				r.Get("/my-worksheets", h.Worksheet.My)
				r.Get("/summary", h.Worksheet.Summary)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.Worksheet.GetByID)
					r.Put("/", h.Worksheet.Update)
					r.Post("/submit", h.Worksheet.Submit)
					r.Post("/verify", h.Worksheet.Verify)
					r.Post("/approve", h.Worksheet.Approve)
					r.Post("/reject", h.Worksheet.Reject)
				})
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", h.Notification.List)
				r.Delete("/", h.Notification.DeleteAll)
				r.Get("/count", h.Notification.Count)
				r.Get("/unread", h.Notification.Unread)
				r.Put("/read-all", h.Notification.MarkAllAsRead)
				r.Get("/sse-token", h.Notification.GetSSEToken)
				r.Put("/{id}/read", h.Notification.MarkAsRead)
				r.Delete("/{id}", h.Notification.Delete)
			})

			r.Route("/reports", func(r chi.Router) {
				r.Use(middleware.RequirePermission(authorizer, user.PermissionReportView))
				r.Get("/productivity", h.Report.Productivity)
				r.Get("/attendance", h.Report.Attendance)
				r.Get("/overtime", h.Report.Overtime)
				r.Get("/team-performance", h.Report.TeamPerformance)
				r.Get("/worksheet-analytics", h.Report.WorksheetAnalytics)
			})
		})
	})
	return r
}
