package attendance

import (
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-core-go/internal/domain/attendance"
	"github.com/shopspring/decimal"
)

// Minimum excess over the planned end that counts as overtime.
const overtimeThresholdMinutes = 15

// DayInput is everything needed to reconcile one user's day.
type DayInput struct {
	Date     time.Time
	Schedule *attendance.ScheduleEntry
	Punches  []attendance.ClockPunch
	Mode     attendance.EmploymentMode
	Stores   attendance.StoreDirectory
}

type validPunch struct {
	punch   attendance.ClockPunch
	seconds int
}

// Reconcile derives the attendance record of a single day. It never fails:
// metrics that cannot be derived from the inputs are left nil.
func Reconcile(in DayInput) attendance.DailyAttendanceRecord {
	rec := attendance.DailyAttendanceRecord{
		Date: in.Date.Format("2006-01-02"),
	}

	planStart, hasStart, planEnd, hasEnd := plannedWindow(in.Schedule, &rec)

	var fullDayLeave, morningLeave, afternoonLeave bool
	if in.Schedule != nil && in.Schedule.IsApprovedLeave {
		rec.LeaveTypeName = in.Schedule.LeaveTypeName
		rec.LeaveSession = in.Schedule.LeaveSession
		fullDayLeave = in.Schedule.IsFullDayLeave()
		morningLeave = in.Schedule.CoversSession(attendance.LeaveSessionMorning)
		afternoonLeave = in.Schedule.CoversSession(attendance.LeaveSessionAfternoon)
	}

	punches := validPunches(in.Punches)
	rec.ValidPunchCount = len(punches)

	if len(punches) == 0 {
		rec.IsAbsent = hasStart && !fullDayLeave
		return rec
	}

	first := punches[0]
	clockIn := first.seconds / 60
	rec.ClockIn = stringPtr(first.punch.Time)

	if first.punch.BranchCode != nil && in.Stores != nil {
		if label, ok := in.Stores.ResolveStore(*first.punch.BranchCode); ok {
			rec.StoreIdentifier = stringPtr(label)
		}
	}

	// lateness does not apply when the morning is on leave
	if hasStart && !morningLeave {
		late := 0
		if clockIn > planStart {
			late = clockIn - planStart
		}
		rec.LateMinutes = intPtr(late)
		rec.IsLate = late > 0
	}

	breakMinutes := 0
	if len(punches) >= 3 {
		breakMinutes = punches[2].seconds/60 - punches[1].seconds/60
		rec.BreakMinutes = intPtr(breakMinutes)
	}

	if len(punches) < 2 {
		return rec
	}

	last := punches[len(punches)-1]
	clockOut := last.seconds / 60
	rec.ClockOut = stringPtr(last.punch.Time)

	worked := decimal.NewFromInt(int64(clockOut - clockIn - breakMinutes)).
		Div(decimal.NewFromInt(60)).
		Round(2)
	rec.TotalWorkHours = &worked

	if hasEnd {
		if clockOut > planEnd {
			raw := clockOut - planEnd
			if raw >= overtimeThresholdMinutes {
				hours := decimal.NewFromInt(int64(raw)).Div(decimal.NewFromInt(60)).Round(2)
				rec.OvertimeHours = &hours

				interval := in.Mode.OvertimeInterval()
				rec.ApprovedOvertimeMinutes = intPtr(raw / interval * interval)
			}
		}
		rec.IsEarlyLeave = clockOut < planEnd && !afternoonLeave
	}

	return rec
}

// plannedWindow returns the planned start and end in minutes. An end before
// the start marks an overnight shift and is moved to the next day.
func plannedWindow(s *attendance.ScheduleEntry, rec *attendance.DailyAttendanceRecord) (start int, hasStart bool, end int, hasEnd bool) {
	if s == nil {
		return 0, false, 0, false
	}

	start, hasStart = parseClockMinutes(s.PlannedStartTime)
	end, hasEnd = parseClockMinutes(s.PlannedEndTime)

	if hasStart {
		rec.PlannedStart = s.PlannedStartTime
	}
	if hasEnd {
		rec.PlannedEnd = s.PlannedEndTime
	}
	if hasStart && hasEnd && end < start {
		end += minutesPerDay
	}
	return start, hasStart, end, hasEnd
}

// validPunches keeps reviewer-approved punches with a readable time, ordered
// by time. Ties keep supplier order.
func validPunches(punches []attendance.ClockPunch) []validPunch {
	out := make([]validPunch, 0, len(punches))
	for _, p := range punches {
		if !p.IsValid {
			continue
		}
		sec, ok := parseClock(p.Time)
		if !ok {
			continue
		}
		out = append(out, validPunch{punch: p, seconds: sec})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].seconds < out[j].seconds
	})
	return out
}

func intPtr(v int) *int {
	return &v
}

func stringPtr(v string) *string {
	return &v
}
