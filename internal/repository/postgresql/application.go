package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-core-go/internal/domain/application"
	"github.com/cmlabs-hris/hris-core-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type applicationRepositoryImpl struct {
	db *database.DB
}

func NewApplicationRepository(db *database.DB) application.ApplicationRepository {
	return &applicationRepositoryImpl{db: db}
}

const applicationColumns = `id, applicant_id, type, payload, status, current_stage, stages,
	rejected_by, rejected_at, rejection_reason, cancelled_by, cancelled_at,
	version, submitted_at, updated_at`

func scanApplication(row pgx.Row) (application.Application, error) {
	var (
		app         application.Application
		payloadJSON []byte
		stagesJSON  []byte
	)
	if err := row.Scan(
		&app.ID, &app.ApplicantID, &app.Type, &payloadJSON, &app.Status, &app.CurrentStage, &stagesJSON,
		&app.RejectedBy, &app.RejectedAt, &app.RejectionReason, &app.CancelledBy, &app.CancelledAt,
		&app.Version, &app.SubmittedAt, &app.UpdatedAt,
	); err != nil {
		return application.Application{}, err
	}
	if err := json.Unmarshal(payloadJSON, &app.Payload); err != nil {
		return application.Application{}, fmt.Errorf("failed to decode payload: %w", err)
	}
	if err := json.Unmarshal(stagesJSON, &app.Stages); err != nil {
		return application.Application{}, fmt.Errorf("failed to decode stages: %w", err)
	}
	return app, nil
}

// currentAssignee is denormalized so the inbox query can use an index.
func currentAssignee(app application.Application) *string {
	if id, ok := app.CurrentAssignee(); ok {
		return &id
	}
	return nil
}

func encodeApplication(app application.Application) (payloadJSON, stagesJSON []byte, err error) {
	if payloadJSON, err = json.Marshal(app.Payload); err != nil {
		return nil, nil, fmt.Errorf("failed to encode payload: %w", err)
	}
	if stagesJSON, err = json.Marshal(app.Stages); err != nil {
		return nil, nil, fmt.Errorf("failed to encode stages: %w", err)
	}
	return payloadJSON, stagesJSON, nil
}

// Create implements application.ApplicationRepository.
func (r *applicationRepositoryImpl) Create(ctx context.Context, app application.Application) (application.Application, error) {
	q := GetQuerier(ctx, r.db)

	payloadJSON, stagesJSON, err := encodeApplication(app)
	if err != nil {
		return application.Application{}, err
	}

	query := `
		INSERT INTO applications (
			id, applicant_id, type, payload, status, current_stage, stages, current_assignee_id,
			version, submitted_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 1, $9, $10)
		RETURNING ` + applicationColumns

	created, err := scanApplication(q.QueryRow(ctx, query,
		app.ID, app.ApplicantID, app.Type, payloadJSON, app.Status, app.CurrentStage, stagesJSON,
		currentAssignee(app), app.SubmittedAt, app.UpdatedAt,
	))
	if err != nil {
		return application.Application{}, fmt.Errorf("failed to create application: %w", err)
	}
	return created, nil
}

func (r *applicationRepositoryImpl) get(ctx context.Context, id string, lock bool) (application.Application, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1`
	if lock {
		query += ` FOR UPDATE`
	}

	app, err := scanApplication(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return application.Application{}, application.ErrApplicationNotFound
		}
		return application.Application{}, fmt.Errorf("failed to get application with id %s: %w", id, err)
	}
	return app, nil
}

// GetByID implements application.ApplicationRepository.
func (r *applicationRepositoryImpl) GetByID(ctx context.Context, id string) (application.Application, error) {
	return r.get(ctx, id, false)
}

// GetByIDForUpdate implements application.ApplicationRepository.
func (r *applicationRepositoryImpl) GetByIDForUpdate(ctx context.Context, id string) (application.Application, error) {
	return r.get(ctx, id, true)
}

// Update implements application.ApplicationRepository.
func (r *applicationRepositoryImpl) Update(ctx context.Context, app application.Application) (application.Application, error) {
	q := GetQuerier(ctx, r.db)

	payloadJSON, stagesJSON, err := encodeApplication(app)
	if err != nil {
		return application.Application{}, err
	}

	query := `
		UPDATE applications
		SET payload = $1, status = $2, current_stage = $3, stages = $4, current_assignee_id = $5,
			rejected_by = $6, rejected_at = $7, rejection_reason = $8,
			cancelled_by = $9, cancelled_at = $10,
			version = version + 1, updated_at = $11
		WHERE id = $12 AND version = $13
		RETURNING ` + applicationColumns

	updated, err := scanApplication(q.QueryRow(ctx, query,
		payloadJSON, app.Status, app.CurrentStage, stagesJSON, currentAssignee(app),
		app.RejectedBy, app.RejectedAt, app.RejectionReason,
		app.CancelledBy, app.CancelledAt,
		app.UpdatedAt, app.ID, app.Version,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return application.Application{}, application.ErrStaleStage
		}
		return application.Application{}, fmt.Errorf("failed to update application with id %s: %w", app.ID, err)
	}
	return updated, nil
}

// ListByApplicant implements application.ApplicationRepository.
func (r *applicationRepositoryImpl) ListByApplicant(ctx context.Context, applicantID string, filter application.ApplicationFilter) ([]application.Application, int64, error) {
	return r.list(ctx, "applicant_id", applicantID, "submitted_at DESC", filter)
}

// ListPendingForActor implements application.ApplicationRepository.
func (r *applicationRepositoryImpl) ListPendingForActor(ctx context.Context, actorID string, filter application.ApplicationFilter) ([]application.Application, int64, error) {
	return r.list(ctx, "current_assignee_id", actorID, "submitted_at ASC", filter)
}

func (r *applicationRepositoryImpl) list(ctx context.Context, ownerColumn, ownerID, orderBy string, filter application.ApplicationFilter) ([]application.Application, int64, error) {
	q := GetQuerier(ctx, r.db)

	// Build WHERE clause
	whereClause := fmt.Sprintf("WHERE %s = $1", ownerColumn)
	args := []interface{}{ownerID}
	argIndex := 2

	if filter.Type != nil {
		whereClause += fmt.Sprintf(" AND type = $%d", argIndex)
		args = append(args, *filter.Type)
		argIndex++
	}

	if filter.Status != nil {
		whereClause += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, *filter.Status)
		argIndex++
	}

	// Count total
	var total int64
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM applications %s`, whereClause)
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count applications: %w", err)
	}

	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.Limit == 0 {
		filter.Limit = 20
	}
	offset := (filter.Page - 1) * filter.Limit

	query := fmt.Sprintf(`
		SELECT %s
		FROM applications
		%s
		ORDER BY %s, id
		LIMIT $%d OFFSET $%d
	`, applicationColumns, whereClause, orderBy, argIndex, argIndex+1)
	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	apps := []application.Application{}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan application: %w", err)
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating applications: %w", err)
	}
	return apps, total, nil
}

type eventRepositoryImpl struct {
	db *database.DB
}

func NewEventRepository(db *database.DB) application.EventRepository {
	return &eventRepositoryImpl{db: db}
}

// Append implements application.EventRepository.
func (r *eventRepositoryImpl) Append(ctx context.Context, event application.ApplicationEvent) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO application_events (id, application_id, action, stage, actor_id, remarks, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	if _, err := q.Exec(ctx, query,
		event.ID, event.ApplicationID, event.Action, event.Stage, event.ActorID, event.Remarks, event.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to append application event: %w", err)
	}
	return nil
}

// ListByApplication implements application.EventRepository.
func (r *eventRepositoryImpl) ListByApplication(ctx context.Context, applicationID string) ([]application.ApplicationEvent, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, application_id, action, stage, actor_id, remarks, created_at
		FROM application_events
		WHERE application_id = $1
		ORDER BY created_at ASC, seq ASC`

	rows, err := q.Query(ctx, query, applicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list application events: %w", err)
	}
	defer rows.Close()

	events := []application.ApplicationEvent{}
	for rows.Next() {
		var event application.ApplicationEvent
		if err := rows.Scan(
			&event.ID, &event.ApplicationID, &event.Action, &event.Stage, &event.ActorID, &event.Remarks, &event.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan application event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating application events: %w", err)
	}
	return events, nil
}
