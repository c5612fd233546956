package approval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-core-go/internal/domain/application"
	"github.com/cmlabs-hris/hris-core-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-core-go/internal/pkg/database"
	"github.com/google/uuid"
)

type ApprovalServiceImpl struct {
	tx           database.Transactor
	now          func() time.Time
	appRepo      application.ApplicationRepository
	eventRepo    application.EventRepository
	approverRepo employee.ApproverRepository
	notifier     application.Notifier
}

type noopNotifier struct{}

func (noopNotifier) ApplicationChanged(context.Context, application.Application, application.ApplicationEvent) {
}

func newID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// SubmitApplication implements application.ApprovalService.
func (s *ApprovalServiceImpl) SubmitApplication(ctx context.Context, req application.SubmitApplicationRequest) (application.ApplicationResponse, error) {
	if err := req.Validate(); err != nil {
		return application.ApplicationResponse{}, err
	}

	stages, err := s.resolveStages(ctx, req)
	if err != nil {
		return application.ApplicationResponse{}, err
	}

	now := s.now()
	app, err := newApplication(req.ApplicantID, req.Type, req.Payload, stages, now)
	if err != nil {
		return application.ApplicationResponse{}, err
	}
	if app.ID, err = newID(); err != nil {
		return application.ApplicationResponse{}, fmt.Errorf("failed to generate application id: %w", err)
	}

	var (
		created application.Application
		event   application.ApplicationEvent
	)
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		created, err = s.appRepo.Create(ctx, app)
		if err != nil {
			return fmt.Errorf("failed to create application: %w", err)
		}

		event = application.ApplicationEvent{
			ApplicationID: created.ID,
			Action:        application.EventSubmitted,
			ActorID:       req.ApplicantID,
			CreatedAt:     now,
		}
		return s.appendEvent(ctx, &event)
	})
	if err != nil {
		return application.ApplicationResponse{}, err
	}

	slog.Info("application submitted",
		"application_id", created.ID,
		"type", created.Type,
		"applicant_id", created.ApplicantID,
		"current_stage", created.CurrentStage,
	)
	s.notifier.ApplicationChanged(ctx, created, event)

	return application.ToApplicationResponse(created), nil
}

// resolveStages uses the submitted assignees, falling back to the applicant's
// configured approval route.
func (s *ApprovalServiceImpl) resolveStages(ctx context.Context, req application.SubmitApplicationRequest) ([]application.Stage, error) {
	if req.StageAssignees != nil && !req.StageAssignees.IsEmpty() {
		return req.StageAssignees.Stages(), nil
	}

	route, ok, err := s.approverRepo.GetRoute(ctx, req.ApplicantID, string(req.Type))
	if err != nil {
		return nil, fmt.Errorf("failed to get approval route: %w", err)
	}
	if !ok {
		return nil, application.ErrNoConfiguredStage
	}

	assignees := application.StageAssignees{
		Checker:   route.CheckerID,
		Approver1: route.Approver1ID,
		Approver2: route.Approver2ID,
		Approver3: route.Approver3ID,
	}
	return assignees.Stages(), nil
}

// ActOnApplication implements application.ApprovalService.
func (s *ApprovalServiceImpl) ActOnApplication(ctx context.Context, req application.ActRequest) (application.ApplicationResponse, error) {
	if err := req.Validate(); err != nil {
		return application.ApplicationResponse{}, err
	}

	var (
		result application.Application
		event  *application.ApplicationEvent
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		app, err := s.getForUpdate(ctx, req.ApplicationID)
		if err != nil {
			return err
		}

		now := s.now()
		updated, changed, err := act(app, req.Stage, req.ActorID, req.Decision, req.Remarks, now)
		if err != nil {
			return err
		}
		if !changed {
			result = app
			return nil
		}

		saved, err := s.save(ctx, updated)
		if err != nil {
			return err
		}

		ev := eventFor(saved, req.Stage, req.ActorID, req.Decision, req.Remarks, now)
		if err := s.appendEvent(ctx, &ev); err != nil {
			return err
		}

		result = saved
		event = &ev
		return nil
	})
	if err != nil {
		return application.ApplicationResponse{}, err
	}

	if event != nil {
		slog.Info("application stage decided",
			"application_id", result.ID,
			"stage", req.Stage,
			"decision", req.Decision,
			"actor_id", req.ActorID,
			"status", result.Status,
			"current_stage", result.CurrentStage,
		)
		s.notifier.ApplicationChanged(ctx, result, *event)
	}

	return application.ToApplicationResponse(result), nil
}

// CancelApplication implements application.ApprovalService.
func (s *ApprovalServiceImpl) CancelApplication(ctx context.Context, req application.CancelRequest) (application.ApplicationResponse, error) {
	var (
		result application.Application
		event  application.ApplicationEvent
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		app, err := s.getForUpdate(ctx, req.ApplicationID)
		if err != nil {
			return err
		}

		now := s.now()
		cancelled, err := cancel(app, req.ActorID, req.Override, now)
		if err != nil {
			return err
		}

		result, err = s.save(ctx, cancelled)
		if err != nil {
			return err
		}

		event = application.ApplicationEvent{
			ApplicationID: result.ID,
			Action:        application.EventCancelled,
			ActorID:       req.ActorID,
			CreatedAt:     now,
		}
		return s.appendEvent(ctx, &event)
	})
	if err != nil {
		return application.ApplicationResponse{}, err
	}

	slog.Info("application cancelled",
		"application_id", result.ID,
		"actor_id", req.ActorID,
		"override", req.Override,
	)
	s.notifier.ApplicationChanged(ctx, result, event)

	return application.ToApplicationResponse(result), nil
}

// GetApplication implements application.ApprovalService.
func (s *ApprovalServiceImpl) GetApplication(ctx context.Context, req application.ViewRequest) (application.ApplicationResponse, error) {
	app, err := s.getVisible(ctx, req)
	if err != nil {
		return application.ApplicationResponse{}, err
	}
	return application.ToApplicationResponse(app), nil
}

// ListApplicationEvents implements application.ApprovalService.
func (s *ApprovalServiceImpl) ListApplicationEvents(ctx context.Context, req application.ViewRequest) ([]application.ApplicationEventResponse, error) {
	app, err := s.getVisible(ctx, req)
	if err != nil {
		return nil, err
	}

	events, err := s.eventRepo.ListByApplication(ctx, app.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list application events: %w", err)
	}

	resp := make([]application.ApplicationEventResponse, 0, len(events))
	for _, e := range events {
		resp = append(resp, application.ToApplicationEventResponse(e))
	}
	return resp, nil
}

// ListMyApplications implements application.ApprovalService.
func (s *ApprovalServiceImpl) ListMyApplications(ctx context.Context, applicantID string, filter application.ApplicationFilter) (application.ListApplicationResponse, error) {
	if err := filter.Validate(); err != nil {
		return application.ListApplicationResponse{}, err
	}

	apps, total, err := s.appRepo.ListByApplicant(ctx, applicantID, filter)
	if err != nil {
		return application.ListApplicationResponse{}, fmt.Errorf("failed to list applications: %w", err)
	}

	return application.ToListApplicationResponse(apps, total, filter.Page, filter.Limit), nil
}

// ListPendingForActor implements application.ApprovalService.
func (s *ApprovalServiceImpl) ListPendingForActor(ctx context.Context, actorID string, filter application.ApplicationFilter) (application.ListApplicationResponse, error) {
	if err := filter.Validate(); err != nil {
		return application.ListApplicationResponse{}, err
	}

	apps, total, err := s.appRepo.ListPendingForActor(ctx, actorID, filter)
	if err != nil {
		return application.ListApplicationResponse{}, fmt.Errorf("failed to list pending applications: %w", err)
	}

	return application.ToListApplicationResponse(apps, total, filter.Page, filter.Limit), nil
}

func (s *ApprovalServiceImpl) getForUpdate(ctx context.Context, id string) (application.Application, error) {
	app, err := s.appRepo.GetByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, application.ErrApplicationNotFound) {
			return application.Application{}, err
		}
		return application.Application{}, fmt.Errorf("failed to get application: %w", err)
	}
	return app, nil
}

func (s *ApprovalServiceImpl) getVisible(ctx context.Context, req application.ViewRequest) (application.Application, error) {
	app, err := s.appRepo.GetByID(ctx, req.ApplicationID)
	if err != nil {
		if errors.Is(err, application.ErrApplicationNotFound) {
			return application.Application{}, err
		}
		return application.Application{}, fmt.Errorf("failed to get application: %w", err)
	}

	if !req.CanViewAll && !app.IsParticipant(req.ViewerID) {
		return application.Application{}, application.ErrForbidden
	}
	return app, nil
}

// save writes app with a version check. Losing the race surfaces as ErrStaleStage.
func (s *ApprovalServiceImpl) save(ctx context.Context, app application.Application) (application.Application, error) {
	saved, err := s.appRepo.Update(ctx, app)
	if err != nil {
		if errors.Is(err, application.ErrStaleStage) {
			return application.Application{}, err
		}
		return application.Application{}, fmt.Errorf("failed to update application: %w", err)
	}
	return saved, nil
}

func (s *ApprovalServiceImpl) appendEvent(ctx context.Context, event *application.ApplicationEvent) error {
	id, err := newID()
	if err != nil {
		return fmt.Errorf("failed to generate event id: %w", err)
	}
	event.ID = id

	if err := s.eventRepo.Append(ctx, *event); err != nil {
		return fmt.Errorf("failed to append application event: %w", err)
	}
	return nil
}

func NewApprovalService(
	tx database.Transactor,
	appRepo application.ApplicationRepository,
	eventRepo application.EventRepository,
	approverRepo employee.ApproverRepository,
	notifier application.Notifier,
) application.ApprovalService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &ApprovalServiceImpl{
		tx:           tx,
		now:          time.Now,
		appRepo:      appRepo,
		eventRepo:    eventRepo,
		approverRepo: approverRepo,
		notifier:     notifier,
	}
}
