package attendance

import "errors"

// Attendance domain errors
var (
	ErrSnapshotNotFound        = errors.New("attendance snapshot not found")
	ErrSnapshotAlreadyExists   = errors.New("attendance snapshot already exists for this period")
	ErrSnapshotVersionConflict = errors.New("attendance snapshot was modified concurrently")
	ErrDateOutsideSnapshot     = errors.New("date does not belong to the snapshot period")
	ErrForbidden               = errors.New("not allowed to view attendance of another user")
)
