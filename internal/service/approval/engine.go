package approval

import (
	"time"

	"github.com/cmlabs-hris/hris-core-go/internal/domain/application"
)

// newApplication builds a pending application positioned at its first
// configured stage.
func newApplication(applicantID string, appType application.ApplicationType, payload application.Payload, stages []application.Stage, now time.Time) (application.Application, error) {
	if len(stages) == 0 {
		return application.Application{}, application.ErrNoConfiguredStage
	}

	return application.Application{
		ApplicantID:  applicantID,
		Type:         appType,
		Payload:      payload,
		Status:       application.StatusPending,
		CurrentStage: stages[0].Role,
		Stages:       stages,
		SubmittedAt:  now,
		UpdatedAt:    now,
	}, nil
}

// act applies a stage decision. changed is false when the call replays a
// decision that is already recorded.
func act(app application.Application, role application.StageRole, actorID string, decision application.Decision, remarks *string, now time.Time) (application.Application, bool, error) {
	idx, ok := app.StageIndex(role)
	if !ok || app.Stages[idx].AssigneeID != actorID {
		return app, false, application.ErrUnauthorized
	}

	stage := app.Stages[idx]
	if stage.HasActed() {
		if stage.Decision == decision {
			return app, false, nil
		}
		return app, false, application.ErrStaleStage
	}

	if role != app.CurrentStage {
		return app, false, application.ErrUnauthorized
	}
	if app.Status != application.StatusPending {
		return app, false, application.ErrStaleStage
	}

	stages := append([]application.Stage(nil), app.Stages...)
	actor := actorID
	actedAt := now
	stages[idx].Decision = decision
	stages[idx].ActorID = &actor
	stages[idx].ActedAt = &actedAt
	stages[idx].Remarks = remarks
	app.Stages = stages
	app.UpdatedAt = now

	switch decision {
	case application.DecisionApprove:
		if idx+1 < len(stages) {
			app.CurrentStage = stages[idx+1].Role
		} else {
			app.CurrentStage = application.StageCompleted
			app.Status = application.StatusApproved
		}
	case application.DecisionReject:
		app.Status = application.StatusRejected
		app.RejectedBy = &actor
		app.RejectedAt = &actedAt
		app.RejectionReason = remarks
	}

	return app, true, nil
}

// cancel withdraws a pending application no stage has acted on yet. Only the
// applicant may cancel unless override is set.
func cancel(app application.Application, actorID string, override bool, now time.Time) (application.Application, error) {
	if !override && app.ApplicantID != actorID {
		return app, application.ErrUnauthorized
	}
	if app.Status != application.StatusPending || app.AnyStageActed() {
		return app, application.ErrNotCancellable
	}

	actor := actorID
	cancelledAt := now
	app.Status = application.StatusCancelled
	app.CancelledBy = &actor
	app.CancelledAt = &cancelledAt
	app.UpdatedAt = now

	return app, nil
}

// eventFor describes the transition produced by a decision.
func eventFor(app application.Application, role application.StageRole, actorID string, decision application.Decision, remarks *string, now time.Time) application.ApplicationEvent {
	action := application.EventApproved
	if decision == application.DecisionReject {
		action = application.EventRejected
	}
	stage := role
	return application.ApplicationEvent{
		ApplicationID: app.ID,
		Action:        action,
		Stage:         &stage,
		ActorID:       actorID,
		Remarks:       remarks,
		CreatedAt:     now,
	}
}
