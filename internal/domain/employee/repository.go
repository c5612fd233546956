package employee

import "context"

type EmployeeRepository interface {
	GetByUserID(ctx context.Context, userID string) (Employee, error)
	ListActive(ctx context.Context) ([]Employee, error)
}

// ApproverRepository resolves the approval route of an applicant. It is
// consulted once at submission time.
type ApproverRepository interface {
	// GetRoute reports ok=false when no route is configured.
	GetRoute(ctx context.Context, userID string, applicationType string) (ApprovalRoute, bool, error)
}
