package application

import "context"

// ApprovalService drives applications through the sequential approval pipeline
type ApprovalService interface {
	SubmitApplication(ctx context.Context, req SubmitApplicationRequest) (ApplicationResponse, error)
	ActOnApplication(ctx context.Context, req ActRequest) (ApplicationResponse, error)
	CancelApplication(ctx context.Context, req CancelRequest) (ApplicationResponse, error)

	GetApplication(ctx context.Context, req ViewRequest) (ApplicationResponse, error)
	ListApplicationEvents(ctx context.Context, req ViewRequest) ([]ApplicationEventResponse, error)
	ListMyApplications(ctx context.Context, applicantID string, filter ApplicationFilter) (ListApplicationResponse, error)
	ListPendingForActor(ctx context.Context, actorID string, filter ApplicationFilter) (ListApplicationResponse, error)
}
