package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-core-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-core-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-core-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-core-go/internal/pkg/keylock"
)

type AttendanceServiceImpl struct {
	tx    database.Transactor
	locks *keylock.KeyLock
	now   func() time.Time
	attendance.ScheduleRepository
	attendance.PunchRepository
	attendance.StoreRepository
	attendance.SnapshotRepository
	employee.EmployeeRepository
}

// ComputeDailyAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ComputeDailyAttendance(ctx context.Context, req attendance.DailyAttendanceQuery) (attendance.DailyAttendanceRecord, error) {
	if err := req.Validate(); err != nil {
		return attendance.DailyAttendanceRecord{}, err
	}
	date, _ := time.Parse("2006-01-02", req.Date)

	in, err := s.loadDay(ctx, req.UserID, date)
	if err != nil {
		return attendance.DailyAttendanceRecord{}, err
	}

	return Reconcile(in), nil
}

// RecomputeDay implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) RecomputeDay(ctx context.Context, req attendance.RecomputeDayRequest) (attendance.MonthlySnapshotResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.MonthlySnapshotResponse{}, err
	}
	date, _ := time.Parse("2006-01-02", req.Date)

	snapshot, err := s.merge(ctx, req.UserID, date.Year(), int(date.Month()), req.ActorID, func(ctx context.Context, snap *attendance.MonthlyAttendanceSnapshot) error {
		in, err := s.loadDay(ctx, req.UserID, date)
		if err != nil {
			return err
		}
		return mergeDay(snap, Reconcile(in))
	})
	if err != nil {
		return attendance.MonthlySnapshotResponse{}, err
	}

	return attendance.ToMonthlySnapshotResponse(snapshot), nil
}

// RecomputeMonth implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) RecomputeMonth(ctx context.Context, req attendance.RecomputeMonthRequest) (attendance.MonthlySnapshotResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.MonthlySnapshotResponse{}, err
	}

	snapshot, err := s.merge(ctx, req.UserID, req.Year, req.Month, req.ActorID, func(ctx context.Context, snap *attendance.MonthlyAttendanceSnapshot) error {
		records, err := s.reconcileMonth(ctx, req.UserID, req.Year, req.Month)
		if err != nil {
			return err
		}
		snap.DailyRecords = records
		snap.Totals = Summarize(records)
		return nil
	})
	if err != nil {
		return attendance.MonthlySnapshotResponse{}, err
	}

	slog.Info("monthly attendance recomputed",
		"user_id", req.UserID,
		"year", req.Year,
		"month", req.Month,
		"version", snapshot.Version,
	)

	return attendance.ToMonthlySnapshotResponse(snapshot), nil
}

// GetMonthlySnapshot implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetMonthlySnapshot(ctx context.Context, req attendance.MonthlySnapshotQuery) (attendance.MonthlySnapshotResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.MonthlySnapshotResponse{}, err
	}

	snapshot, err := s.SnapshotRepository.GetByPeriod(ctx, req.UserID, req.Year, req.Month)
	if err != nil {
		if errors.Is(err, attendance.ErrSnapshotNotFound) {
			return attendance.MonthlySnapshotResponse{}, err
		}
		return attendance.MonthlySnapshotResponse{}, fmt.Errorf("failed to get monthly snapshot: %w", err)
	}

	return attendance.ToMonthlySnapshotResponse(snapshot), nil
}

// merge applies fn to the (user, year, month) snapshot while holding the
// per-snapshot lock, creating the snapshot on first use. fn does its source
// reads with the context it is given so they happen under the lock.
func (s *AttendanceServiceImpl) merge(ctx context.Context, userID string, year, month int, actorID string, fn func(context.Context, *attendance.MonthlyAttendanceSnapshot) error) (attendance.MonthlyAttendanceSnapshot, error) {
	unlock := s.locks.Lock(fmt.Sprintf("%s:%04d-%02d", userID, year, month))
	defer unlock()

	var result attendance.MonthlyAttendanceSnapshot
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		snapshot, err := s.loadOrCreateSnapshot(ctx, userID, year, month, actorID)
		if err != nil {
			return err
		}

		if err := fn(ctx, &snapshot); err != nil {
			return err
		}
		snapshot.UpdatedBy = actorID
		snapshot.UpdatedAt = s.now()

		result, err = s.SnapshotRepository.Update(ctx, snapshot)
		if err != nil {
			return fmt.Errorf("failed to update monthly snapshot: %w", err)
		}
		return nil
	})
	if err != nil {
		return attendance.MonthlyAttendanceSnapshot{}, err
	}

	return result, nil
}

func (s *AttendanceServiceImpl) loadOrCreateSnapshot(ctx context.Context, userID string, year, month int, actorID string) (attendance.MonthlyAttendanceSnapshot, error) {
	snapshot, err := s.SnapshotRepository.GetByPeriodForUpdate(ctx, userID, year, month)
	if err == nil {
		return snapshot, nil
	}
	if !errors.Is(err, attendance.ErrSnapshotNotFound) {
		return attendance.MonthlyAttendanceSnapshot{}, fmt.Errorf("failed to get monthly snapshot: %w", err)
	}

	now := s.now()
	records := newMonthSkeleton(year, month)
	created, err := s.SnapshotRepository.Create(ctx, attendance.MonthlyAttendanceSnapshot{
		UserID:       userID,
		Year:         year,
		Month:        month,
		DailyRecords: records,
		Totals:       Summarize(records),
		CreatedBy:    actorID,
		UpdatedBy:    actorID,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if errors.Is(err, attendance.ErrSnapshotAlreadyExists) {
		// Created by another process between the read and the insert.
		snapshot, err = s.SnapshotRepository.GetByPeriodForUpdate(ctx, userID, year, month)
		if err != nil {
			return attendance.MonthlyAttendanceSnapshot{}, fmt.Errorf("failed to get monthly snapshot: %w", err)
		}
		return snapshot, nil
	}
	if err != nil {
		return attendance.MonthlyAttendanceSnapshot{}, fmt.Errorf("failed to create monthly snapshot: %w", err)
	}

	return created, nil
}

// loadDay pre-fetches everything Reconcile needs for one day.
func (s *AttendanceServiceImpl) loadDay(ctx context.Context, userID string, date time.Time) (DayInput, error) {
	mode, stores, err := s.loadDirectories(ctx, userID)
	if err != nil {
		return DayInput{}, err
	}

	schedule, err := s.ScheduleRepository.GetSchedule(ctx, userID, date)
	if err != nil {
		return DayInput{}, fmt.Errorf("failed to get schedule: %w", err)
	}

	punches, err := s.PunchRepository.GetClockPunches(ctx, userID, date)
	if err != nil {
		return DayInput{}, fmt.Errorf("failed to get clock punches: %w", err)
	}

	return DayInput{
		Date:     date,
		Schedule: schedule,
		Punches:  punches,
		Mode:     mode,
		Stores:   stores,
	}, nil
}

// reconcileMonth reconciles every calendar day of the month from two range
// queries.
func (s *AttendanceServiceImpl) reconcileMonth(ctx context.Context, userID string, year, month int) ([]attendance.DailyAttendanceRecord, error) {
	mode, stores, err := s.loadDirectories(ctx, userID)
	if err != nil {
		return nil, err
	}

	from, to := monthRange(year, month)

	schedules, err := s.ScheduleRepository.ListSchedules(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}
	punches, err := s.PunchRepository.ListClockPunches(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list clock punches: %w", err)
	}

	scheduleByDate := make(map[string]*attendance.ScheduleEntry, len(schedules))
	for i := range schedules {
		scheduleByDate[schedules[i].Date.Format("2006-01-02")] = &schedules[i]
	}
	punchesByDate := make(map[string][]attendance.ClockPunch)
	for _, p := range punches {
		key := p.Date.Format("2006-01-02")
		punchesByDate[key] = append(punchesByDate[key], p)
	}

	days := monthDays(year, month)
	records := make([]attendance.DailyAttendanceRecord, 0, len(days))
	for _, day := range days {
		key := day.Format("2006-01-02")
		records = append(records, Reconcile(DayInput{
			Date:     day,
			Schedule: scheduleByDate[key],
			Punches:  punchesByDate[key],
			Mode:     mode,
			Stores:   stores,
		}))
	}

	return records, nil
}

// loadDirectories resolves the employment mode and a store snapshot. An
// unknown employee falls back to the default mode.
func (s *AttendanceServiceImpl) loadDirectories(ctx context.Context, userID string) (attendance.EmploymentMode, attendance.StoreIndex, error) {
	var mode attendance.EmploymentMode
	emp, err := s.EmployeeRepository.GetByUserID(ctx, userID)
	switch {
	case err == nil:
		mode = emp.EmploymentMode
	case errors.Is(err, employee.ErrEmployeeNotFound):
	default:
		return "", nil, fmt.Errorf("failed to get employee: %w", err)
	}

	stores, err := s.StoreRepository.ListStores(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("failed to list stores: %w", err)
	}

	return mode, attendance.NewStoreIndex(stores), nil
}

func NewAttendanceService(
	tx database.Transactor,
	scheduleRepo attendance.ScheduleRepository,
	punchRepo attendance.PunchRepository,
	storeRepo attendance.StoreRepository,
	snapshotRepo attendance.SnapshotRepository,
	employeeRepo employee.EmployeeRepository,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		tx:                 tx,
		locks:              keylock.New(),
		now:                time.Now,
		ScheduleRepository: scheduleRepo,
		PunchRepository:    punchRepo,
		StoreRepository:    storeRepo,
		SnapshotRepository: snapshotRepo,
		EmployeeRepository: employeeRepo,
	}
}
