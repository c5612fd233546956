package attendance

import (
	"context"
)

// AttendanceService derives attendance from punches and maintains monthly snapshots
type AttendanceService interface {
	// ComputeDailyAttendance reconciles one day without persisting it
	ComputeDailyAttendance(ctx context.Context, req DailyAttendanceQuery) (DailyAttendanceRecord, error)

	// RecomputeDay merges one day into its monthly snapshot, creating the snapshot on first use
	RecomputeDay(ctx context.Context, req RecomputeDayRequest) (MonthlySnapshotResponse, error)

	// RecomputeMonth recomputes every calendar day of a month and persists the snapshot
	RecomputeMonth(ctx context.Context, req RecomputeMonthRequest) (MonthlySnapshotResponse, error)

	// GetMonthlySnapshot returns the stored snapshot
	GetMonthlySnapshot(ctx context.Context, req MonthlySnapshotQuery) (MonthlySnapshotResponse, error)
}
