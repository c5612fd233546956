package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-core-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-core-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type scheduleRepositoryImpl struct {
	db *database.DB
}

func NewScheduleRepository(db *database.DB) attendance.ScheduleRepository {
	return &scheduleRepositoryImpl{db: db}
}

const scheduleColumns = `user_id, date, planned_start_time, planned_end_time,
	leave_type_name, leave_session, is_approved_leave`

func scanSchedule(row pgx.Row) (attendance.ScheduleEntry, error) {
	var (
		s       attendance.ScheduleEntry
		session *string
	)
	if err := row.Scan(
		&s.UserID, &s.Date, &s.PlannedStartTime, &s.PlannedEndTime,
		&s.LeaveTypeName, &session, &s.IsApprovedLeave,
	); err != nil {
		return attendance.ScheduleEntry{}, err
	}
	if session != nil {
		ls := attendance.LeaveSession(*session)
		s.LeaveSession = &ls
	}
	return s, nil
}

// GetSchedule implements attendance.ScheduleRepository.
func (r *scheduleRepositoryImpl) GetSchedule(ctx context.Context, userID string, date time.Time) (*attendance.ScheduleEntry, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + scheduleColumns + ` FROM schedules WHERE user_id = $1 AND date = $2`

	s, err := scanSchedule(q.QueryRow(ctx, query, userID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}
	return &s, nil
}

// ListSchedules implements attendance.ScheduleRepository.
func (r *scheduleRepositoryImpl) ListSchedules(ctx context.Context, userID string, from, to time.Time) ([]attendance.ScheduleEntry, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + scheduleColumns + `
		FROM schedules
		WHERE user_id = $1 AND date >= $2 AND date < $3
		ORDER BY date`

	rows, err := q.Query(ctx, query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}
	defer rows.Close()

	entries := make([]attendance.ScheduleEntry, 0)
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan schedule: %w", err)
		}
		entries = append(entries, s)
	}

	return entries, rows.Err()
}

type punchRepositoryImpl struct {
	db *database.DB
}

func NewPunchRepository(db *database.DB) attendance.PunchRepository {
	return &punchRepositoryImpl{db: db}
}

// GetClockPunches implements attendance.PunchRepository.
func (r *punchRepositoryImpl) GetClockPunches(ctx context.Context, userID string, date time.Time) ([]attendance.ClockPunch, error) {
	return r.list(ctx, userID, date, date.AddDate(0, 0, 1))
}

// ListClockPunches implements attendance.PunchRepository.
func (r *punchRepositoryImpl) ListClockPunches(ctx context.Context, userID string, from, to time.Time) ([]attendance.ClockPunch, error) {
	return r.list(ctx, userID, from, to)
}

func (r *punchRepositoryImpl) list(ctx context.Context, userID string, from, to time.Time) ([]attendance.ClockPunch, error) {
	q := GetQuerier(ctx, r.db)

	// seq preserves the order punches were recorded in
	query := `
		SELECT id, user_id, date, time, direction, is_valid, branch_code
		FROM clock_punches
		WHERE user_id = $1 AND date >= $2 AND date < $3
		ORDER BY date, seq
	`

	rows, err := q.Query(ctx, query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list clock punches: %w", err)
	}
	defer rows.Close()

	punches := make([]attendance.ClockPunch, 0)
	for rows.Next() {
		var (
			p         attendance.ClockPunch
			direction string
		)
		if err := rows.Scan(&p.ID, &p.UserID, &p.Date, &p.Time, &direction, &p.IsValid, &p.BranchCode); err != nil {
			return nil, fmt.Errorf("failed to scan clock punch: %w", err)
		}
		p.Direction = attendance.PunchDirection(direction)
		punches = append(punches, p)
	}

	return punches, rows.Err()
}
