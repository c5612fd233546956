package attendance

import (
	"context"
	"time"
)

// ScheduleRepository supplies planned shifts. A nil entry means no schedule.
type ScheduleRepository interface {
	GetSchedule(ctx context.Context, userID string, date time.Time) (*ScheduleEntry, error)

	// ListSchedules returns entries with from <= date < to.
	ListSchedules(ctx context.Context, userID string, from, to time.Time) ([]ScheduleEntry, error)
}

// PunchRepository supplies raw clock punches in supplier order.
type PunchRepository interface {
	GetClockPunches(ctx context.Context, userID string, date time.Time) ([]ClockPunch, error)

	// ListClockPunches returns punches with from <= date < to.
	ListClockPunches(ctx context.Context, userID string, from, to time.Time) ([]ClockPunch, error)
}

type StoreRepository interface {
	ListStores(ctx context.Context) ([]Store, error)
}

// SnapshotRepository persists monthly snapshots.
type SnapshotRepository interface {
	// GetByPeriod returns ErrSnapshotNotFound when absent.
	GetByPeriod(ctx context.Context, userID string, year, month int) (MonthlyAttendanceSnapshot, error)

	// GetByPeriodForUpdate is GetByPeriod holding a row lock until the
	// surrounding transaction ends.
	GetByPeriodForUpdate(ctx context.Context, userID string, year, month int) (MonthlyAttendanceSnapshot, error)

	// Create returns ErrSnapshotAlreadyExists when the period is taken.
	Create(ctx context.Context, snapshot MonthlyAttendanceSnapshot) (MonthlyAttendanceSnapshot, error)

	// Update writes the snapshot if its stored version equals snapshot.Version
	// and bumps the version. Returns ErrSnapshotVersionConflict otherwise.
	Update(ctx context.Context, snapshot MonthlyAttendanceSnapshot) (MonthlyAttendanceSnapshot, error)
}
