package attendance

import (
	"time"

	"github.com/shopspring/decimal"
)

type EmploymentMode string

const (
	EmploymentModeFullTime EmploymentMode = "full_time"
	EmploymentModePartTime EmploymentMode = "part_time"
)

// OvertimeInterval returns the billing interval approved overtime is floored to.
func (m EmploymentMode) OvertimeInterval() int {
	if m == EmploymentModePartTime {
		return 15
	}
	return 30
}

type LeaveSession string

const (
	LeaveSessionMorning   LeaveSession = "morning"
	LeaveSessionAfternoon LeaveSession = "afternoon"
	LeaveSessionFull      LeaveSession = "full"
)

type PunchDirection string

const (
	PunchDirectionIn  PunchDirection = "in"
	PunchDirectionOut PunchDirection = "out"
)

// ScheduleEntry is the planned shift (or leave marker) for one user on one date.
// Planned times are "HH:MM[:SS]" offsets from the start of Date.
type ScheduleEntry struct {
	UserID           string
	Date             time.Time
	PlannedStartTime *string
	PlannedEndTime   *string
	LeaveTypeName    *string
	LeaveSession     *LeaveSession
	IsApprovedLeave  bool
}

// IsFullDayLeave reports whether the whole day is covered by an approved leave.
func (s ScheduleEntry) IsFullDayLeave() bool {
	return s.IsApprovedLeave && s.LeaveSession != nil && *s.LeaveSession == LeaveSessionFull
}

// CoversSession reports whether an approved leave covers session. A full-day
// leave covers both halves.
func (s ScheduleEntry) CoversSession(session LeaveSession) bool {
	if !s.IsApprovedLeave || s.LeaveSession == nil {
		return false
	}
	return *s.LeaveSession == session || *s.LeaveSession == LeaveSessionFull
}

// ClockPunch is a raw time-clock event. Time may exceed 24:00 for shifts
// recorded against their start date.
type ClockPunch struct {
	ID         string
	UserID     string
	Date       time.Time
	Time       string
	Direction  PunchDirection
	IsValid    bool
	BranchCode *string
}

type Store struct {
	BranchCode string
	Label      string
}

// StoreDirectory resolves a branch code to a store label.
type StoreDirectory interface {
	ResolveStore(branchCode string) (string, bool)
}

// StoreIndex is a read-only snapshot of the store directory.
type StoreIndex map[string]string

func NewStoreIndex(stores []Store) StoreIndex {
	idx := make(StoreIndex, len(stores))
	for _, s := range stores {
		idx[s.BranchCode] = s.Label
	}
	return idx
}

func (i StoreIndex) ResolveStore(branchCode string) (string, bool) {
	label, ok := i[branchCode]
	return label, ok
}

// DailyAttendanceRecord is derived from a single day's schedule and punches.
// A nil metric means the inputs were insufficient to compute it.
type DailyAttendanceRecord struct {
	Date                    string           `json:"date"`
	LateMinutes             *int             `json:"late_minutes"`
	BreakMinutes            *int             `json:"break_minutes"`
	TotalWorkHours          *decimal.Decimal `json:"total_work_hours"`
	OvertimeHours           *decimal.Decimal `json:"overtime_hours"`
	ApprovedOvertimeMinutes *int             `json:"approved_overtime_minutes"`
	IsLate                  bool             `json:"is_late"`
	IsAbsent                bool             `json:"is_absent"`
	IsEarlyLeave            bool             `json:"is_early_leave"`
	StoreIdentifier         *string          `json:"store_identifier"`

	ClockIn         *string       `json:"clock_in"`
	ClockOut        *string       `json:"clock_out"`
	PlannedStart    *string       `json:"planned_start"`
	PlannedEnd      *string       `json:"planned_end"`
	LeaveTypeName   *string       `json:"leave_type_name"`
	LeaveSession    *LeaveSession `json:"leave_session"`
	ValidPunchCount int           `json:"valid_punch_count"`
}

type MonthlyTotals struct {
	ScheduledDays                int             `json:"scheduled_days"`
	PresentDays                  int             `json:"present_days"`
	AbsentDays                   int             `json:"absent_days"`
	LateDays                     int             `json:"late_days"`
	EarlyLeaveDays               int             `json:"early_leave_days"`
	LeaveDays                    int             `json:"leave_days"`
	TotalLateMinutes             int             `json:"total_late_minutes"`
	TotalBreakMinutes            int             `json:"total_break_minutes"`
	TotalWorkHours               decimal.Decimal `json:"total_work_hours"`
	TotalOvertimeHours           decimal.Decimal `json:"total_overtime_hours"`
	TotalApprovedOvertimeMinutes int             `json:"total_approved_overtime_minutes"`
}

// MonthlyAttendanceSnapshot holds one record per calendar day, ordered by date.
// Unique per (UserID, Year, Month).
type MonthlyAttendanceSnapshot struct {
	ID           string
	UserID       string
	Year         int
	Month        int
	DailyRecords []DailyAttendanceRecord
	Totals       MonthlyTotals
	Version      int
	CreatedBy    string
	UpdatedBy    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
