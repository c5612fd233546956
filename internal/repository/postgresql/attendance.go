package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-core-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-core-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type snapshotRepositoryImpl struct {
	db *database.DB
}

func NewSnapshotRepository(db *database.DB) attendance.SnapshotRepository {
	return &snapshotRepositoryImpl{db: db}
}

const snapshotColumns = `id, user_id, year, month, daily_records, totals, version,
	created_by, updated_by, created_at, updated_at`

func scanSnapshot(row pgx.Row) (attendance.MonthlyAttendanceSnapshot, error) {
	var (
		s           attendance.MonthlyAttendanceSnapshot
		recordsJSON []byte
		totalsJSON  []byte
	)
	if err := row.Scan(
		&s.ID, &s.UserID, &s.Year, &s.Month, &recordsJSON, &totalsJSON, &s.Version,
		&s.CreatedBy, &s.UpdatedBy, &s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		return attendance.MonthlyAttendanceSnapshot{}, err
	}
	if err := json.Unmarshal(recordsJSON, &s.DailyRecords); err != nil {
		return attendance.MonthlyAttendanceSnapshot{}, fmt.Errorf("failed to decode daily records: %w", err)
	}
	if err := json.Unmarshal(totalsJSON, &s.Totals); err != nil {
		return attendance.MonthlyAttendanceSnapshot{}, fmt.Errorf("failed to decode totals: %w", err)
	}
	return s, nil
}

func (r *snapshotRepositoryImpl) get(ctx context.Context, userID string, year, month int, lock bool) (attendance.MonthlyAttendanceSnapshot, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + snapshotColumns + `
		FROM attendance_snapshots
		WHERE user_id = $1 AND year = $2 AND month = $3`
	if lock {
		query += ` FOR UPDATE`
	}

	s, err := scanSnapshot(q.QueryRow(ctx, query, userID, year, month))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.MonthlyAttendanceSnapshot{}, attendance.ErrSnapshotNotFound
		}
		return attendance.MonthlyAttendanceSnapshot{}, fmt.Errorf("failed to get attendance snapshot: %w", err)
	}
	return s, nil
}

// GetByPeriod implements attendance.SnapshotRepository.
func (r *snapshotRepositoryImpl) GetByPeriod(ctx context.Context, userID string, year, month int) (attendance.MonthlyAttendanceSnapshot, error) {
	return r.get(ctx, userID, year, month, false)
}

// GetByPeriodForUpdate implements attendance.SnapshotRepository.
func (r *snapshotRepositoryImpl) GetByPeriodForUpdate(ctx context.Context, userID string, year, month int) (attendance.MonthlyAttendanceSnapshot, error) {
	return r.get(ctx, userID, year, month, true)
}

// Create implements attendance.SnapshotRepository.
func (r *snapshotRepositoryImpl) Create(ctx context.Context, snapshot attendance.MonthlyAttendanceSnapshot) (attendance.MonthlyAttendanceSnapshot, error) {
	q := GetQuerier(ctx, r.db)

	recordsJSON, err := json.Marshal(snapshot.DailyRecords)
	if err != nil {
		return attendance.MonthlyAttendanceSnapshot{}, fmt.Errorf("failed to encode daily records: %w", err)
	}
	totalsJSON, err := json.Marshal(snapshot.Totals)
	if err != nil {
		return attendance.MonthlyAttendanceSnapshot{}, fmt.Errorf("failed to encode totals: %w", err)
	}

	// DO NOTHING keeps the surrounding transaction usable when the period exists
	query := `
		INSERT INTO attendance_snapshots (
			id, user_id, year, month, daily_records, totals, version,
			created_by, updated_by, created_at, updated_at
		)
		VALUES (uuidv7(), $1, $2, $3, $4, $5, 1, $6, $7, $8, $9)
		ON CONFLICT (user_id, year, month) DO NOTHING
		RETURNING ` + snapshotColumns

	created, err := scanSnapshot(q.QueryRow(ctx, query,
		snapshot.UserID, snapshot.Year, snapshot.Month, recordsJSON, totalsJSON,
		snapshot.CreatedBy, snapshot.UpdatedBy, snapshot.CreatedAt, snapshot.UpdatedAt,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.MonthlyAttendanceSnapshot{}, attendance.ErrSnapshotAlreadyExists
		}
		return attendance.MonthlyAttendanceSnapshot{}, fmt.Errorf("failed to create attendance snapshot: %w", err)
	}
	return created, nil
}

// Update implements attendance.SnapshotRepository.
func (r *snapshotRepositoryImpl) Update(ctx context.Context, snapshot attendance.MonthlyAttendanceSnapshot) (attendance.MonthlyAttendanceSnapshot, error) {
	q := GetQuerier(ctx, r.db)

	recordsJSON, err := json.Marshal(snapshot.DailyRecords)
	if err != nil {
		return attendance.MonthlyAttendanceSnapshot{}, fmt.Errorf("failed to encode daily records: %w", err)
	}
	totalsJSON, err := json.Marshal(snapshot.Totals)
	if err != nil {
		return attendance.MonthlyAttendanceSnapshot{}, fmt.Errorf("failed to encode totals: %w", err)
	}

	query := `
		UPDATE attendance_snapshots
		SET daily_records = $1, totals = $2, version = version + 1,
			updated_by = $3, updated_at = $4
		WHERE user_id = $5 AND year = $6 AND month = $7 AND version = $8
		RETURNING ` + snapshotColumns

	updated, err := scanSnapshot(q.QueryRow(ctx, query,
		recordsJSON, totalsJSON, snapshot.UpdatedBy, snapshot.UpdatedAt,
		snapshot.UserID, snapshot.Year, snapshot.Month, snapshot.Version,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.MonthlyAttendanceSnapshot{}, attendance.ErrSnapshotVersionConflict
		}
		return attendance.MonthlyAttendanceSnapshot{}, fmt.Errorf("failed to update attendance snapshot: %w", err)
	}
	return updated, nil
}
