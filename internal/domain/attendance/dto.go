package attendance

import (
	"time"

	"github.com/cmlabs-hris/hris-core-go/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

type DailyAttendanceQuery struct {
	UserID string `json:"user_id"`
	Date   string `json:"date"`
}

func (r *DailyAttendanceQuery) Validate() error {
	var errs validator.ValidationErrors

	errs = validateUserID(errs, r.UserID)
	errs = validateDate(errs, r.Date)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RecomputeDayRequest struct {
	UserID  string `json:"user_id"`
	Date    string `json:"date"`
	ActorID string `json:"-"`
}

func (r *RecomputeDayRequest) Validate() error {
	var errs validator.ValidationErrors

	errs = validateUserID(errs, r.UserID)
	errs = validateDate(errs, r.Date)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RecomputeMonthRequest struct {
	UserID  string `json:"user_id"`
	Year    int    `json:"year"`
	Month   int    `json:"month"`
	ActorID string `json:"-"`
}

func (r *RecomputeMonthRequest) Validate() error {
	var errs validator.ValidationErrors

	errs = validateUserID(errs, r.UserID)
	errs = validatePeriod(errs, r.Year, r.Month)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type MonthlySnapshotQuery struct {
	UserID string `json:"user_id"`
	Year   int    `json:"year"`
	Month  int    `json:"month"`
}

func (r *MonthlySnapshotQuery) Validate() error {
	var errs validator.ValidationErrors

	errs = validateUserID(errs, r.UserID)
	errs = validatePeriod(errs, r.Year, r.Month)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateUserID(errs validator.ValidationErrors, userID string) validator.ValidationErrors {
	if validator.IsEmpty(userID) {
		errs = append(errs, validator.ValidationError{
			Field:   "user_id",
			Message: "user_id is required",
		})
	}
	return errs
}

func validateDate(errs validator.ValidationErrors, date string) validator.ValidationErrors {
	if validator.IsEmpty(date) {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date is required",
		})
	} else if _, ok := validator.IsValidDate(date); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}
	return errs
}

func validatePeriod(errs validator.ValidationErrors, year, month int) validator.ValidationErrors {
	if year < 2000 || year > 2100 {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: "year must be between 2000 and 2100",
		})
	}
	if !validator.IsValidMonth(month) {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "month must be between 1 and 12",
		})
	}
	return errs
}

type MonthlySnapshotResponse struct {
	ID           string                  `json:"id"`
	UserID       string                  `json:"user_id"`
	Year         int                     `json:"year"`
	Month        int                     `json:"month"`
	DailyRecords []DailyAttendanceRecord `json:"daily_records"`
	Totals       MonthlyTotals           `json:"totals"`
	Version      int                     `json:"version"`
	CreatedBy    string                  `json:"created_by"`
	UpdatedBy    string                  `json:"updated_by"`
	CreatedAt    string                  `json:"created_at"`
	UpdatedAt    string                  `json:"updated_at"`
}

func ToMonthlySnapshotResponse(s MonthlyAttendanceSnapshot) MonthlySnapshotResponse {
	return MonthlySnapshotResponse{
		ID:           s.ID,
		UserID:       s.UserID,
		Year:         s.Year,
		Month:        s.Month,
		DailyRecords: s.DailyRecords,
		Totals:       s.Totals,
		Version:      s.Version,
		CreatedBy:    s.CreatedBy,
		UpdatedBy:    s.UpdatedBy,
		CreatedAt:    s.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    s.UpdatedAt.Format(time.RFC3339),
	}
}
