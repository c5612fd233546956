package notification

import (
	"context"

	"github.com/cmlabs-hris/hris-core-go/internal/domain/application"
)

// Service fans application state changes out to live subscribers
type Service interface {
	application.Notifier

	// SSE subscription
	Subscribe(ctx context.Context, userID string) (<-chan SSEEvent, func())

	// Lifecycle
	Stop()
}
