package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/pagemantra/worktrack-backend-go/internal/config"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/user"
	appHTTP "github.com/pagemantra/worktrack-backend-go/internal/handler/http"
	"github.com/pagemantra/worktrack-backend-go/internal/handler/http/middleware"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/cache"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/clock"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/cron"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/database"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/events"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/jwt"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/password"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/sse"
	"github.com/pagemantra/worktrack-backend-go/internal/repository/postgresql"
	attendanceService "github.com/pagemantra/worktrack-backend-go/internal/service/attendance"
	authService "github.com/pagemantra/worktrack-backend-go/internal/service/auth"
	authzService "github.com/pagemantra/worktrack-backend-go/internal/service/authz"
	formService "github.com/pagemantra/worktrack-backend-go/internal/service/form"
	notificationService "github.com/pagemantra/worktrack-backend-go/internal/service/notification"
	reportService "github.com/pagemantra/worktrack-backend-go/internal/service/report"
	taskService "github.com/pagemantra/worktrack-backend-go/internal/service/task"
	teamService "github.com/pagemantra/worktrack-backend-go/internal/service/team"
	userService "github.com/pagemantra/worktrack-backend-go/internal/service/user"
	worksheetService "github.com/pagemantra/worktrack-backend-go/internal/service/worksheet"
	"github.com/redis/go-redis/v9"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.App.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})).With(
		slog.String("app", "worktrack"),
		slog.String("version", cfg.App.Version),
		slog.String("env", cfg.App.Env),
	))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc := cfg.Location()
	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
		TimeZone: cfg.App.Timezone,
	})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	userRepo := postgresql.NewUserRepository(db)
	teamRepo := postgresql.NewTeamRepository(db)
	taskRepo := postgresql.NewTaskRepository(db)
	formRepo := postgresql.NewFormRepository(db)
	sessionRepo := postgresql.NewSessionRepository(db)
	breakSettingsRepo := postgresql.NewBreakSettingsRepository(db)
	worksheetRepo := postgresql.NewWorksheetRepository(db)
	notificationRepo := postgresql.NewNotificationRepository(db)
	reportRepo := postgresql.NewReportRepository(db)
	tx := postgresql.NewTransactor(db)

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			slog.Warn("redis unreachable, cache reads will fall through", "addr", cfg.Redis.Addr, "error", err)
		}
	}
	settingsCache := cache.New(rdb, "worktrack", cfg.Redis.CacheTTL)

	publisher := events.NewNoopPublisher()
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = events.NewKafkaPublisher(events.NewWriter(cfg.Kafka.Brokers), cfg.Kafka.Topic)
	}
	defer publisher.Close()

	clk := clock.New(loc)
	authorizer, err := authzService.NewAuthorizer(user.RolePermissions)
	if err != nil {
		return fmt.Errorf("build authorizer: %w", err)
	}
	hasher := password.NewBcrypt(0)
	jwtSvc := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.SSEExpiration)

	hub := sse.NewHub(16)
	defer hub.Close()
	notifSvc := notificationService.NewNotificationService(notificationRepo, hub, clk, notificationService.Config{
		BatchSize:     cfg.Notification.BatchSize,
		FlushInterval: cfg.Notification.FlushInterval,
		WorkerCount:   cfg.Notification.WorkerCount,
		QueueSize:     cfg.Notification.QueueSize,
	})
	defer notifSvc.Stop()

	breakSettingsSvc := attendanceService.NewBreakSettingsService(breakSettingsRepo, teamRepo, authorizer, settingsCache, clk)
	attendanceSvc := attendanceService.NewAttendanceService(
		sessionRepo,
		userRepo,
		breakSettingsSvc,
		authorizer,
		notifSvc,
		publisher,
		clk,
		cfg.App.StandardWorkHours,
	)

	handlers := appHTTP.Handlers{
		Auth:       appHTTP.NewAuthHandler(authService.NewAuthService(userRepo, hasher, jwtSvc, clk)),
		User:       appHTTP.NewUserHandler(userService.NewUserService(userRepo, authorizer, hasher, clk)),
		Team:       appHTTP.NewTeamHandler(teamService.NewTeamService(teamRepo, userRepo, tx, authorizer, notifSvc, clk)),
		Task:       appHTTP.NewTaskHandler(taskService.NewTaskService(taskRepo, userRepo, authorizer, notifSvc, publisher, clk)),
		Form:       appHTTP.NewFormHandler(formService.NewFormService(formRepo, teamRepo, authorizer, notifSvc, clk)),
		Attendance: appHTTP.NewAttendanceHandler(attendanceSvc, breakSettingsSvc),
		Worksheet: appHTTP.NewWorksheetHandler(worksheetService.NewWorksheetService(
			worksheetRepo,
			sessionRepo,
			formRepo,
			userRepo,
			tx,
			authorizer,
			notifSvc,
			publisher,
			clk,
		)),
		Notification: appHTTP.NewNotificationHandler(notifSvc, jwtSvc, userRepo),
		Report:       appHTTP.NewReportHandler(reportService.NewReportService(reportRepo, teamRepo, authorizer, clk)),
	}

	router := appHTTP.NewRouter(jwtSvc, userRepo, authorizer, handlers, appHTTP.RouterOptions{
		AppName:        "worktrack",
		Version:        cfg.App.Version,
		Env:            cfg.App.Env,
		LogLevel:       level,
		AllowedOrigins: cfg.App.CORSAllowedOrigins,
		LoginLimiter:   middleware.NewIPRateLimiter(cfg.RateLimit.LoginPerMinute, cfg.RateLimit.LoginBurst),
	})

	scheduler := cron.NewScheduler()
	cron.NewAttendanceJobs(attendanceSvc, loc).RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", srv.Addr, "timezone", cfg.App.Timezone)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	// End open event streams so Shutdown can drain.
	hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
