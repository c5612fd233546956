package attendance

import (
	"time"

	"github.com/cmlabs-hris/hris-core-go/internal/domain/attendance"
	"github.com/shopspring/decimal"
)

// monthRange returns [first day of month, first day of next month) in UTC.
func monthRange(year, month int) (time.Time, time.Time) {
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0)
}

// monthDays lists every calendar day of the month.
func monthDays(year, month int) []time.Time {
	from, to := monthRange(year, month)
	var days []time.Time
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// newMonthSkeleton returns one empty record per calendar day.
func newMonthSkeleton(year, month int) []attendance.DailyAttendanceRecord {
	days := monthDays(year, month)
	records := make([]attendance.DailyAttendanceRecord, len(days))
	for i, d := range days {
		records[i] = attendance.DailyAttendanceRecord{Date: d.Format("2006-01-02")}
	}
	return records
}

// mergeDay replaces the record for rec.Date, rebuilding the month skeleton
// first if records does not cover every day.
func mergeDay(snapshot *attendance.MonthlyAttendanceSnapshot, rec attendance.DailyAttendanceRecord) error {
	date, err := time.Parse("2006-01-02", rec.Date)
	if err != nil || date.Year() != snapshot.Year || int(date.Month()) != snapshot.Month {
		return attendance.ErrDateOutsideSnapshot
	}

	days := len(monthDays(snapshot.Year, snapshot.Month))
	if len(snapshot.DailyRecords) != days {
		skeleton := newMonthSkeleton(snapshot.Year, snapshot.Month)
		for _, existing := range snapshot.DailyRecords {
			if d, err := time.Parse("2006-01-02", existing.Date); err == nil && d.Day() <= days {
				skeleton[d.Day()-1] = existing
			}
		}
		snapshot.DailyRecords = skeleton
	}

	snapshot.DailyRecords[date.Day()-1] = rec
	snapshot.Totals = Summarize(snapshot.DailyRecords)
	return nil
}

// Summarize folds daily records into monthly totals.
func Summarize(records []attendance.DailyAttendanceRecord) attendance.MonthlyTotals {
	totals := attendance.MonthlyTotals{
		TotalWorkHours:     decimal.Zero,
		TotalOvertimeHours: decimal.Zero,
	}

	for _, r := range records {
		if r.PlannedStart != nil {
			totals.ScheduledDays++
		}
		if r.ValidPunchCount > 0 {
			totals.PresentDays++
		}
		if r.IsAbsent {
			totals.AbsentDays++
		}
		if r.IsLate {
			totals.LateDays++
		}
		if r.IsEarlyLeave {
			totals.EarlyLeaveDays++
		}
		if r.LeaveTypeName != nil {
			totals.LeaveDays++
		}
		if r.LateMinutes != nil {
			totals.TotalLateMinutes += *r.LateMinutes
		}
		if r.BreakMinutes != nil {
			totals.TotalBreakMinutes += *r.BreakMinutes
		}
		if r.TotalWorkHours != nil {
			totals.TotalWorkHours = totals.TotalWorkHours.Add(*r.TotalWorkHours)
		}
		if r.OvertimeHours != nil {
			totals.TotalOvertimeHours = totals.TotalOvertimeHours.Add(*r.OvertimeHours)
		}
		if r.ApprovedOvertimeMinutes != nil {
			totals.TotalApprovedOvertimeMinutes += *r.ApprovedOvertimeMinutes
		}
	}

	return totals
}
