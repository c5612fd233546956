package notification

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-core-go/internal/domain/application"
	"github.com/cmlabs-hris/hris-core-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-core-go/internal/pkg/sse"
	"github.com/google/uuid"
)

// Config holds notification service configuration
type Config struct {
	WorkerCount int // default: 2
	QueueSize   int // default: 1000
}

type service struct {
	hub    *sse.Hub
	config Config
	now    func() time.Time

	queue  chan notification.Notification
	wg     sync.WaitGroup
	stopCh chan struct{}
	once   sync.Once
}

// NewNotificationService creates a new notification service with background workers
func NewNotificationService(hub *sse.Hub, cfg Config) notification.Service {
	// Set defaults
	if cfg.WorkerCount == 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize == 0 {
		cfg.QueueSize = 1000
	}

	s := &service{
		hub:    hub,
		config: cfg,
		now:    time.Now,
		queue:  make(chan notification.Notification, cfg.QueueSize),
		stopCh: make(chan struct{}),
	}

	// Start background workers
	for i := 0; i < cfg.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	slog.Info("notification service started", "workers", cfg.WorkerCount, "queue_size", cfg.QueueSize)

	return s
}

// worker pushes queued notifications to SSE subscribers
func (s *service) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case n := <-s.queue:
			s.publish(n)
		case <-s.stopCh:
			// Drain what is already queued
			for {
				select {
				case n := <-s.queue:
					s.publish(n)
				default:
					slog.Debug("notification worker stopped", "worker", id)
					return
				}
			}
		}
	}
}

func (s *service) publish(n notification.Notification) {
	s.hub.Publish(n.RecipientID, sse.Event{
		UserID: n.RecipientID,
		Event:  "notification",
		Data:   toResponse(n),
	})
}

// ApplicationChanged implements application.Notifier.
func (s *service) ApplicationChanged(ctx context.Context, app application.Application, event application.ApplicationEvent) {
	for _, n := range s.buildNotifications(app, event) {
		select {
		case s.queue <- n:
		default:
			// Queue full, publish inline
			s.publish(n)
		}
	}
}

// buildNotifications decides who hears about a transition.
func (s *service) buildNotifications(app application.Application, event application.ApplicationEvent) []notification.Notification {
	var out []notification.Notification
	add := func(recipient string, typ notification.NotificationType, title, message string) {
		if recipient == "" || recipient == event.ActorID {
			return
		}
		sender := event.ActorID
		out = append(out, notification.Notification{
			ID:          uuid.New().String(),
			RecipientID: recipient,
			SenderID:    &sender,
			Type:        typ,
			Title:       title,
			Message:     message,
			Data: map[string]interface{}{
				"application_id": app.ID,
				"type":           string(app.Type),
				"status":         string(app.Status),
				"current_stage":  string(app.CurrentStage),
			},
			CreatedAt: s.now(),
		})
	}

	label := applicationLabel(app.Type)

	switch event.Action {
	case application.EventSubmitted:
		if next, ok := app.CurrentAssignee(); ok {
			add(next, notification.TypeApplicationPendingAction, "Approval Needed",
				fmt.Sprintf("A %s application is waiting for your review", label))
		}
	case application.EventApproved:
		if app.Status == application.StatusApproved {
			add(app.ApplicantID, notification.TypeApplicationApproved, "Application Approved",
				fmt.Sprintf("Your %s application has been approved", label))
			break
		}
		add(app.ApplicantID, notification.TypeApplicationStageApproved, "Application Progressed",
			fmt.Sprintf("Your %s application moved to %s", label, app.CurrentStage))
		if next, ok := app.CurrentAssignee(); ok {
			add(next, notification.TypeApplicationPendingAction, "Approval Needed",
				fmt.Sprintf("A %s application is waiting for your review", label))
		}
	case application.EventRejected:
		add(app.ApplicantID, notification.TypeApplicationRejected, "Application Rejected",
			fmt.Sprintf("Your %s application has been rejected", label))
	case application.EventCancelled:
		if i, ok := app.StageIndex(app.CurrentStage); ok {
			add(app.Stages[i].AssigneeID, notification.TypeApplicationCancelled, "Application Cancelled",
				fmt.Sprintf("A %s application awaiting your review was cancelled", label))
		}
	}

	return out
}

func applicationLabel(t application.ApplicationType) string {
	switch t {
	case application.TypeLeave:
		return "leave"
	case application.TypeExtraWorkingHours:
		return "extra working hours"
	case application.TypeOutdoorWork:
		return "outdoor work"
	}
	return string(t)
}

// toResponse converts a Notification entity to NotificationResponse
func toResponse(n notification.Notification) notification.NotificationResponse {
	return notification.NotificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Data:      n.Data,
		CreatedAt: n.CreatedAt,
	}
}

// Subscribe creates an SSE subscription for a user
func (s *service) Subscribe(ctx context.Context, userID string) (<-chan notification.SSEEvent, func()) {
	ch, cleanup := s.hub.Subscribe(userID)

	out := make(chan notification.SSEEvent, 10)

	go func() {
		defer close(out)
		for {
			select {
			case event, ok := <-ch:
				if !ok {
					return
				}
				if resp, ok := event.Data.(notification.NotificationResponse); ok {
					select {
					case out <- notification.SSEEvent{Event: event.Event, Data: resp}:
					case <-ctx.Done():
						return
					}
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, cleanup
}

// Stop gracefully stops the notification service
func (s *service) Stop() {
	s.once.Do(func() {
		close(s.stopCh)
		s.wg.Wait()
		slog.Info("notification service stopped")
	})
}
