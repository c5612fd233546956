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
	"time"

	"github.com/cmlabs-hris/hris-core-go/internal/config"
	"github.com/cmlabs-hris/hris-core-go/internal/domain/application"
	"github.com/cmlabs-hris/hris-core-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-core-go/internal/domain/employee"
	appHTTP "github.com/cmlabs-hris/hris-core-go/internal/handler/http"
	"github.com/cmlabs-hris/hris-core-go/internal/pkg/cron"
	"github.com/cmlabs-hris/hris-core-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-core-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-core-go/internal/pkg/sse"
	"github.com/cmlabs-hris/hris-core-go/internal/repository/memory"
	"github.com/cmlabs-hris/hris-core-go/internal/repository/postgresql"
	approvalService "github.com/cmlabs-hris/hris-core-go/internal/service/approval"
	attendanceService "github.com/cmlabs-hris/hris-core-go/internal/service/attendance"
	notificationService "github.com/cmlabs-hris/hris-core-go/internal/service/notification"
	"github.com/go-chi/httplog/v3"
)

type repositories struct {
	tx           database.Transactor
	schedules    attendance.ScheduleRepository
	punches      attendance.PunchRepository
	stores       attendance.StoreRepository
	snapshots    attendance.SnapshotRepository
	employees    employee.EmployeeRepository
	approvers    employee.ApproverRepository
	applications application.ApplicationRepository
	events       application.EventRepository
	close        func()
}

func newRepositories(cfg *config.Config) (*repositories, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		s := memory.NewStorage()
		return &repositories{
			tx:           s,
			schedules:    memory.NewScheduleRepository(s),
			punches:      memory.NewPunchRepository(s),
			stores:       memory.NewStoreRepository(s),
			snapshots:    memory.NewSnapshotRepository(s),
			employees:    memory.NewEmployeeRepository(s),
			approvers:    memory.NewApproverRepository(s),
			applications: memory.NewApplicationRepository(s),
			events:       memory.NewEventRepository(s),
			close:        func() {},
		}, nil

	case config.StorageDriverPostgres:
		db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return &repositories{
			tx:           postgresql.NewTransactor(db),
			schedules:    postgresql.NewScheduleRepository(db),
			punches:      postgresql.NewPunchRepository(db),
			stores:       postgresql.NewBranchRepository(db),
			snapshots:    postgresql.NewSnapshotRepository(db),
			employees:    postgresql.NewEmployeeRepository(db),
			approvers:    postgresql.NewApproverRepository(db),
			applications: postgresql.NewApplicationRepository(db),
			events:       postgresql.NewEventRepository(db),
			close:        db.Close,
		}, nil
	}
	return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
}

func main() {
	if err := run(); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logFormat := httplog.SchemaECS.Concise(cfg.App.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.SlogLevel(),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "hris-core"),
		slog.String("env", cfg.App.Env),
	)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := newRepositories(cfg)
	if err != nil {
		return err
	}
	defer repos.close()

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	hub := sse.NewHub(10)
	notifSvc := notificationService.NewNotificationService(hub, notificationService.Config{})

	attendanceSvc := attendanceService.NewAttendanceService(
		repos.tx,
		repos.schedules,
		repos.punches,
		repos.stores,
		repos.snapshots,
		repos.employees,
	)
	approvalSvc := approvalService.NewApprovalService(
		repos.tx,
		repos.applications,
		repos.events,
		repos.approvers,
		notifSvc,
	)

	scheduler := cron.NewScheduler(ctx)
	if cfg.Cron.Enabled {
		location, err := time.LoadLocation(cfg.Cron.TimeZone)
		if err != nil {
			return fmt.Errorf("invalid cron time zone: %w", err)
		}
		cron.NewAttendanceJobs(attendanceSvc, repos.employees, cfg.Cron.Workers, location).
			RegisterJobs(scheduler, cfg.Cron.Interval)
		scheduler.Start()
	}

	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{
			Logger:         logger,
			LogLevel:       cfg.SlogLevel(),
			AllowedOrigins: cfg.App.AllowedOrigins,
		},
		JWTService,
		appHTTP.NewAttendanceHandler(attendanceSvc),
		appHTTP.NewApplicationHandler(approvalSvc),
		appHTTP.NewNotificationHandler(notifSvc, JWTService),
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", srv.Addr, "storage", cfg.Storage.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	// open SSE streams would otherwise hold Shutdown until the timeout
	hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown failed", "error", err)
	}
	scheduler.Stop()
	notifSvc.Stop()

	slog.Info("server stopped")
	return nil
}
