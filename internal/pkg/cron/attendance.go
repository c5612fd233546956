package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cmlabs-hris/hris-core-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-core-go/internal/domain/employee"
	"golang.org/x/sync/errgroup"
)

// SystemActorID is recorded as the author of snapshots written by jobs.
const SystemActorID = "system"

type AttendanceJobs struct {
	attendanceSvc attendance.AttendanceService
	employeeRepo  employee.EmployeeRepository
	workers       int
	location      *time.Location
	now           func() time.Time

	mu      sync.Mutex
	lastRun string
}

func NewAttendanceJobs(
	attendanceSvc attendance.AttendanceService,
	employeeRepo employee.EmployeeRepository,
	workers int,
	location *time.Location,
) *AttendanceJobs {
	if workers < 1 {
		workers = 1
	}
	if location == nil {
		location = time.UTC
	}
	return &AttendanceJobs{
		attendanceSvc: attendanceSvc,
		employeeRepo:  employeeRepo,
		workers:       workers,
		location:      location,
		now:           time.Now,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler, interval time.Duration) {
	scheduler.AddJob("recompute_previous_day", interval, j.RecomputePreviousDay)
}

// RecomputePreviousDay merges yesterday (in the configured time zone) into the
// monthly snapshot of every active employee. A date is processed at most once
// per process unless an earlier run failed.
func (j *AttendanceJobs) RecomputePreviousDay(ctx context.Context) error {
	date := j.now().In(j.location).AddDate(0, 0, -1).Format("2006-01-02")

	j.mu.Lock()
	done := j.lastRun == date
	j.mu.Unlock()
	if done {
		return nil
	}

	employees, err := j.employeeRepo.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active employees: %w", err)
	}

	slog.Info("Cron: recomputing previous day", "date", date, "employees", len(employees))

	var failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(j.workers)

	for _, emp := range employees {
		emp := emp
		g.Go(func() error {
			_, err := j.attendanceSvc.RecomputeDay(gctx, attendance.RecomputeDayRequest{
				UserID:  emp.UserID,
				Date:    date,
				ActorID: SystemActorID,
			})
			if err != nil {
				// one employee must not stop the rest
				failed.Add(1)
				slog.Error("Cron: failed to recompute day", "user_id", emp.UserID, "date", date, "error", err)
			}
			return gctx.Err()
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	if n := failed.Load(); n > 0 {
		return fmt.Errorf("failed to recompute %s for %d of %d employees", date, n, len(employees))
	}

	j.mu.Lock()
	j.lastRun = date
	j.mu.Unlock()

	slog.Info("Cron: previous day recomputed", "date", date, "employees", len(employees))
	return nil
}
