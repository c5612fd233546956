package application

import "errors"

// Application domain errors
var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrNoConfiguredStage   = errors.New("at least one approval stage must be configured")
	ErrUnauthorized        = errors.New("actor is not the assignee of the current stage")
	ErrStaleStage          = errors.New("stage has already been acted on")
	ErrNotCancellable      = errors.New("application can no longer be cancelled")
	ErrForbidden           = errors.New("not allowed to view this application")
)
