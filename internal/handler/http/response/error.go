package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-core-go/internal/domain/application"
	"github.com/cmlabs-hris/hris-core-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-core-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-core-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, "Validation failed", validationErrs.ToMap())
		return
	}

	switch {
	// Application domain errors
	case errors.Is(err, application.ErrNoConfiguredStage):
		ValidationError(w, err.Error(), map[string]string{"stage_assignees": err.Error()})
	case errors.Is(err, application.ErrUnauthorized):
		Forbidden(w, err.Error())
	case errors.Is(err, application.ErrForbidden):
		Forbidden(w, err.Error())
	case errors.Is(err, application.ErrStaleStage):
		Conflict(w, "STALE_STAGE", err.Error())
	case errors.Is(err, application.ErrNotCancellable):
		Conflict(w, "NOT_CANCELLABLE", err.Error())
	case errors.Is(err, application.ErrApplicationNotFound):
		NotFound(w, "Application not found")

	// Attendance domain errors
	case errors.Is(err, attendance.ErrSnapshotNotFound):
		NotFound(w, "Attendance snapshot not found")
	case errors.Is(err, attendance.ErrSnapshotVersionConflict):
		Conflict(w, "VERSION_CONFLICT", err.Error())
	case errors.Is(err, attendance.ErrDateOutsideSnapshot):
		ValidationError(w, err.Error(), map[string]string{"date": err.Error()})
	case errors.Is(err, attendance.ErrForbidden):
		Forbidden(w, err.Error())

	// User domain errors
	case errors.Is(err, user.ErrInsufficientPermissions):
		Forbidden(w, err.Error())

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
