package notification

import (
	"time"
)

// NotificationType represents the type of notification
type NotificationType string

const (
	TypeApplicationPendingAction NotificationType = "application_pending_action"
	TypeApplicationStageApproved NotificationType = "application_stage_approved"
	TypeApplicationApproved      NotificationType = "application_approved"
	TypeApplicationRejected      NotificationType = "application_rejected"
	TypeApplicationCancelled     NotificationType = "application_cancelled"
)

// Notification represents a notification entity
type Notification struct {
	ID          string
	RecipientID string
	SenderID    *string
	Type        NotificationType
	Title       string
	Message     string
	Data        map[string]interface{}
	CreatedAt   time.Time
}
