package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/hris-core-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-core-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-core-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-core-go/internal/handler/http/response"
)

type AttendanceHandler interface {
	GetDaily(w http.ResponseWriter, r *http.Request)
	RecomputeDay(w http.ResponseWriter, r *http.Request)
	RecomputeMonth(w http.ResponseWriter, r *http.Request)
	GetMonthly(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

// targetUserID resolves ?user_id against the caller. Reading another user's
// attendance requires attendance.view_all.
func targetUserID(r *http.Request, principal user.Principal) (string, error) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" || userID == principal.UserID {
		return principal.UserID, nil
	}
	if !principal.Can(user.PermissionAttendanceViewAll) {
		return "", attendance.ErrForbidden
	}
	return userID, nil
}

// queryInt returns 0 for a missing or malformed value so Validate reports it.
func queryInt(r *http.Request, key string) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return v
}

// GetDaily implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetDaily(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	userID, err := targetUserID(r, principal)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	record, err := h.attendanceService.ComputeDailyAttendance(r.Context(), attendance.DailyAttendanceQuery{
		UserID: userID,
		Date:   r.URL.Query().Get("date"),
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, record)
}

// GetMonthly implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetMonthly(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	userID, err := targetUserID(r, principal)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	snapshot, err := h.attendanceService.GetMonthlySnapshot(r.Context(), attendance.MonthlySnapshotQuery{
		UserID: userID,
		Year:   queryInt(r, "year"),
		Month:  queryInt(r, "month"),
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, snapshot)
}

// RecomputeDay implements AttendanceHandler.
func (h *attendanceHandlerImpl) RecomputeDay(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	var req attendance.RecomputeDayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ActorID = principal.UserID

	snapshot, err := h.attendanceService.RecomputeDay(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance day recomputed", snapshot)
}

// RecomputeMonth implements AttendanceHandler.
func (h *attendanceHandlerImpl) RecomputeMonth(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	var req attendance.RecomputeMonthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.ActorID = principal.UserID

	snapshot, err := h.attendanceService.RecomputeMonth(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance month recomputed", snapshot)
}
