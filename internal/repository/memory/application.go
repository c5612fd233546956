package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/cmlabs-hris/hris-core-go/internal/domain/application"
	"github.com/google/uuid"
)

type applicationRepository struct{ *Storage }

func NewApplicationRepository(s *Storage) application.ApplicationRepository {
	return &applicationRepository{s}
}

func cloneApplication(a application.Application) application.Application {
	a.Stages = append([]application.Stage(nil), a.Stages...)
	return a
}

func (r *applicationRepository) Create(ctx context.Context, app application.Application) (application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if app.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return application.Application{}, fmt.Errorf("failed to generate application id: %w", err)
		}
		app.ID = id.String()
	}
	app.Version = 1
	r.applications[app.ID] = cloneApplication(app)

	return cloneApplication(app), nil
}

func (r *applicationRepository) GetByID(ctx context.Context, id string) (application.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	app, ok := r.applications[id]
	if !ok {
		return application.Application{}, application.ErrApplicationNotFound
	}
	return cloneApplication(app), nil
}

func (r *applicationRepository) GetByIDForUpdate(ctx context.Context, id string) (application.Application, error) {
	return r.GetByID(ctx, id)
}

func (r *applicationRepository) Update(ctx context.Context, app application.Application) (application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.applications[app.ID]
	if !ok {
		return application.Application{}, application.ErrApplicationNotFound
	}
	if stored.Version != app.Version {
		return application.Application{}, application.ErrStaleStage
	}

	app.Version++
	r.applications[app.ID] = cloneApplication(app)

	return cloneApplication(app), nil
}

func matchesFilter(app application.Application, filter application.ApplicationFilter) bool {
	if filter.Type != nil && string(app.Type) != *filter.Type {
		return false
	}
	if filter.Status != nil && string(app.Status) != *filter.Status {
		return false
	}
	return true
}

func paginate(apps []application.Application, filter application.ApplicationFilter) []application.Application {
	if filter.Limit <= 0 {
		return apps
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	start := (page - 1) * filter.Limit
	if start >= len(apps) {
		return []application.Application{}
	}
	end := start + filter.Limit
	if end > len(apps) {
		end = len(apps)
	}
	return apps[start:end]
}

func (r *applicationRepository) ListByApplicant(ctx context.Context, applicantID string, filter application.ApplicationFilter) ([]application.Application, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var apps []application.Application
	for _, app := range r.applications {
		if app.ApplicantID == applicantID && matchesFilter(app, filter) {
			apps = append(apps, cloneApplication(app))
		}
	}
	// Newest first
	sort.Slice(apps, func(i, j int) bool { return apps[i].SubmittedAt.After(apps[j].SubmittedAt) })

	return paginate(apps, filter), int64(len(apps)), nil
}

func (r *applicationRepository) ListPendingForActor(ctx context.Context, actorID string, filter application.ApplicationFilter) ([]application.Application, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var apps []application.Application
	for _, app := range r.applications {
		if assignee, ok := app.CurrentAssignee(); ok && assignee == actorID && matchesFilter(app, filter) {
			apps = append(apps, cloneApplication(app))
		}
	}
	// Oldest first
	sort.Slice(apps, func(i, j int) bool { return apps[i].SubmittedAt.Before(apps[j].SubmittedAt) })

	return paginate(apps, filter), int64(len(apps)), nil
}

type eventRepository struct{ *Storage }

func NewEventRepository(s *Storage) application.EventRepository {
	return &eventRepository{s}
}

func (r *eventRepository) Append(ctx context.Context, event application.ApplicationEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if event.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate event id: %w", err)
		}
		event.ID = id.String()
	}
	r.events[event.ApplicationID] = append(r.events[event.ApplicationID], event)
	return nil
}

func (r *eventRepository) ListByApplication(ctx context.Context, applicationID string) ([]application.ApplicationEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]application.ApplicationEvent(nil), r.events[applicationID]...), nil
}
