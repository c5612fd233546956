package application

import "context"

type ApplicationRepository interface {
	Create(ctx context.Context, app Application) (Application, error)

	// GetByID returns ErrApplicationNotFound when absent.
	GetByID(ctx context.Context, id string) (Application, error)

	// GetByIDForUpdate is GetByID holding a row lock until the surrounding
	// transaction ends.
	GetByIDForUpdate(ctx context.Context, id string) (Application, error)

	// Update persists app only if the stored version equals app.Version and
	// bumps the version. A lost race returns ErrStaleStage.
	Update(ctx context.Context, app Application) (Application, error)

	ListByApplicant(ctx context.Context, applicantID string, filter ApplicationFilter) ([]Application, int64, error)

	// ListPendingForActor returns pending applications whose current stage is assigned to actorID.
	ListPendingForActor(ctx context.Context, actorID string, filter ApplicationFilter) ([]Application, int64, error)
}

// EventRepository stores the append-only audit trail.
type EventRepository interface {
	Append(ctx context.Context, event ApplicationEvent) error
	ListByApplication(ctx context.Context, applicationID string) ([]ApplicationEvent, error)
}

// Notifier is told about every committed state change.
type Notifier interface {
	ApplicationChanged(ctx context.Context, app Application, event ApplicationEvent)
}
