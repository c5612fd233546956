package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-core-go/internal/domain/attendance"
	"github.com/google/uuid"
)

type scheduleRepository struct{ *Storage }

func NewScheduleRepository(s *Storage) attendance.ScheduleRepository {
	return &scheduleRepository{s}
}

func (r *scheduleRepository) GetSchedule(ctx context.Context, userID string, date time.Time) (*attendance.ScheduleEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.schedules[dayKey(userID, date)]
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

func (r *scheduleRepository) ListSchedules(ctx context.Context, userID string, from, to time.Time) ([]attendance.ScheduleEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var entries []attendance.ScheduleEntry
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		if entry, ok := r.schedules[dayKey(userID, d)]; ok {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

type punchRepository struct{ *Storage }

func NewPunchRepository(s *Storage) attendance.PunchRepository {
	return &punchRepository{s}
}

func (r *punchRepository) GetClockPunches(ctx context.Context, userID string, date time.Time) ([]attendance.ClockPunch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]attendance.ClockPunch(nil), r.punches[dayKey(userID, date)]...), nil
}

func (r *punchRepository) ListClockPunches(ctx context.Context, userID string, from, to time.Time) ([]attendance.ClockPunch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var punches []attendance.ClockPunch
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		punches = append(punches, r.punches[dayKey(userID, d)]...)
	}
	return punches, nil
}

type storeRepository struct{ *Storage }

func NewStoreRepository(s *Storage) attendance.StoreRepository {
	return &storeRepository{s}
}

func (r *storeRepository) ListStores(ctx context.Context) ([]attendance.Store, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stores := make([]attendance.Store, 0, len(r.stores))
	for _, s := range r.stores {
		stores = append(stores, s)
	}
	sort.Slice(stores, func(i, j int) bool { return stores[i].BranchCode < stores[j].BranchCode })
	return stores, nil
}

type snapshotRepository struct{ *Storage }

func NewSnapshotRepository(s *Storage) attendance.SnapshotRepository {
	return &snapshotRepository{s}
}

func periodKey(userID string, year, month int) string {
	return fmt.Sprintf("%s|%04d-%02d", userID, year, month)
}

func cloneSnapshot(s attendance.MonthlyAttendanceSnapshot) attendance.MonthlyAttendanceSnapshot {
	s.DailyRecords = append([]attendance.DailyAttendanceRecord(nil), s.DailyRecords...)
	return s
}

func (r *snapshotRepository) GetByPeriod(ctx context.Context, userID string, year, month int) (attendance.MonthlyAttendanceSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot, ok := r.snapshots[periodKey(userID, year, month)]
	if !ok {
		return attendance.MonthlyAttendanceSnapshot{}, attendance.ErrSnapshotNotFound
	}
	return cloneSnapshot(snapshot), nil
}

func (r *snapshotRepository) GetByPeriodForUpdate(ctx context.Context, userID string, year, month int) (attendance.MonthlyAttendanceSnapshot, error) {
	return r.GetByPeriod(ctx, userID, year, month)
}

func (r *snapshotRepository) Create(ctx context.Context, snapshot attendance.MonthlyAttendanceSnapshot) (attendance.MonthlyAttendanceSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := periodKey(snapshot.UserID, snapshot.Year, snapshot.Month)
	if _, exists := r.snapshots[key]; exists {
		return attendance.MonthlyAttendanceSnapshot{}, attendance.ErrSnapshotAlreadyExists
	}

	if snapshot.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return attendance.MonthlyAttendanceSnapshot{}, fmt.Errorf("failed to generate snapshot id: %w", err)
		}
		snapshot.ID = id.String()
	}
	snapshot.Version = 1
	r.snapshots[key] = cloneSnapshot(snapshot)

	return cloneSnapshot(snapshot), nil
}

func (r *snapshotRepository) Update(ctx context.Context, snapshot attendance.MonthlyAttendanceSnapshot) (attendance.MonthlyAttendanceSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := periodKey(snapshot.UserID, snapshot.Year, snapshot.Month)
	stored, ok := r.snapshots[key]
	if !ok {
		return attendance.MonthlyAttendanceSnapshot{}, attendance.ErrSnapshotNotFound
	}
	if stored.Version != snapshot.Version {
		return attendance.MonthlyAttendanceSnapshot{}, attendance.ErrSnapshotVersionConflict
	}

	snapshot.ID = stored.ID
	snapshot.CreatedBy = stored.CreatedBy
	snapshot.CreatedAt = stored.CreatedAt
	snapshot.Version++
	r.snapshots[key] = cloneSnapshot(snapshot)

	return cloneSnapshot(snapshot), nil
}
