package approval

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-core-go/internal/domain/application"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, time.May, 6, 8, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func threeStageApplication(t *testing.T) application.Application {
	t.Helper()

	assignees := application.StageAssignees{
		Checker:   strPtr("checker-1"),
		Approver1: strPtr("approver-1"),
		Approver2: strPtr("approver-2"),
	}
	app, err := newApplication("applicant-1", application.TypeExtraWorkingHours, application.Payload{
		ExtraWorkingHours: &application.ExtraWorkingHoursPayload{
			Date:         "2024-05-06",
			StartTime:    "18:00",
			EndTime:      "20:00",
			TotalMinutes: 120,
			Reason:       "quarter close",
		},
	}, assignees.Stages(), t0)
	require.NoError(t, err)
	app.ID = "app-1"
	return app
}

func mustAct(t *testing.T, app application.Application, role application.StageRole, actor string, decision application.Decision, remarks *string) application.Application {
	t.Helper()
	updated, changed, err := act(app, role, actor, decision, remarks, t0.Add(time.Hour))
	require.NoError(t, err)
	require.True(t, changed)
	return updated
}

func TestNewApplication(t *testing.T) {
	app := threeStageApplication(t)

	assert.Equal(t, application.StatusPending, app.Status)
	assert.Equal(t, application.StageChecker, app.CurrentStage)
	require.Len(t, app.Stages, 3)
	assert.Equal(t, application.StageApprover2, app.Stages[2].Role)

	t.Run("skips unconfigured leading stages", func(t *testing.T) {
		assignees := application.StageAssignees{Approver2: strPtr("approver-2")}
		app, err := newApplication("applicant-1", application.TypeLeave, application.Payload{}, assignees.Stages(), t0)
		require.NoError(t, err)
		assert.Equal(t, application.StageApprover2, app.CurrentStage)
	})

	t.Run("requires a configured stage", func(t *testing.T) {
		_, err := newApplication("applicant-1", application.TypeLeave, application.Payload{}, nil, t0)
		assert.ErrorIs(t, err, application.ErrNoConfiguredStage)
	})
}

// After checker and approver_1 approve the application waits on approver_2,
// whose approval completes it without visiting approver_3.
func TestAct_ThreeStageApproval(t *testing.T) {
	app := threeStageApplication(t)

	app = mustAct(t, app, application.StageChecker, "checker-1", application.DecisionApprove, nil)
	assert.Equal(t, application.StageApprover1, app.CurrentStage)

	app = mustAct(t, app, application.StageApprover1, "approver-1", application.DecisionApprove, strPtr("ok"))
	assert.Equal(t, application.StageApprover2, app.CurrentStage)
	assert.Equal(t, application.StatusPending, app.Status)

	app = mustAct(t, app, application.StageApprover2, "approver-2", application.DecisionApprove, nil)
	assert.Equal(t, application.StatusApproved, app.Status)
	assert.Equal(t, application.StageCompleted, app.CurrentStage)

	for _, s := range app.Stages {
		assert.NotNil(t, s.ActedAt, s.Role)
		assert.Equal(t, application.DecisionApprove, s.Decision)
	}
	_, ok := app.StageIndex(application.StageApprover3)
	assert.False(t, ok)
}

// Approver_1 rejecting after the checker approved freezes the pipeline.
func TestAct_RejectAfterChecker(t *testing.T) {
	app := threeStageApplication(t)

	app = mustAct(t, app, application.StageChecker, "checker-1", application.DecisionApprove, nil)
	app = mustAct(t, app, application.StageApprover1, "approver-1", application.DecisionReject, strPtr("budget frozen"))

	assert.Equal(t, application.StatusRejected, app.Status)
	assert.Equal(t, application.StageApprover1, app.CurrentStage)
	require.NotNil(t, app.RejectedBy)
	assert.Equal(t, "approver-1", *app.RejectedBy)
	require.NotNil(t, app.RejectedAt)
	assert.Equal(t, "budget frozen", *app.RejectionReason)

	rejected := 0
	for _, s := range app.Stages {
		if s.Decision == application.DecisionReject {
			rejected++
		}
	}
	assert.Equal(t, 1, rejected)
	assert.Nil(t, app.Stages[2].ActedAt)
	assert.False(t, app.Stages[2].HasActed())

	_, _, err := act(app, application.StageApprover2, "approver-2", application.DecisionApprove, nil, t0)
	assert.ErrorIs(t, err, application.ErrUnauthorized)
}

func TestAct_Unauthorized(t *testing.T) {
	app := threeStageApplication(t)

	tests := []struct {
		name  string
		role  application.StageRole
		actor string
	}{
		{"wrong actor", application.StageChecker, "approver-1"},
		{"stage not reached", application.StageApprover1, "approver-1"},
		{"unconfigured stage", application.StageApprover3, "approver-3"},
		{"applicant", application.StageChecker, "applicant-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed, err := act(app, tt.role, tt.actor, application.DecisionApprove, nil, t0)
			assert.ErrorIs(t, err, application.ErrUnauthorized)
			assert.False(t, changed)
			assert.Equal(t, app, got)
		})
	}
}

func TestAct_Idempotent(t *testing.T) {
	app := threeStageApplication(t)
	app = mustAct(t, app, application.StageChecker, "checker-1", application.DecisionApprove, strPtr("fine"))

	replayed, changed, err := act(app, application.StageChecker, "checker-1", application.DecisionApprove, strPtr("fine"), t0.Add(2*time.Hour))
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, app, replayed)

	_, _, err = act(app, application.StageChecker, "checker-1", application.DecisionReject, nil, t0)
	assert.ErrorIs(t, err, application.ErrStaleStage)
}

func TestAct_DoesNotMutateInput(t *testing.T) {
	app := threeStageApplication(t)

	_ = mustAct(t, app, application.StageChecker, "checker-1", application.DecisionApprove, nil)

	assert.False(t, app.Stages[0].HasActed())
	assert.Equal(t, application.StageChecker, app.CurrentStage)
}

func TestAct_CancelledApplication(t *testing.T) {
	app := threeStageApplication(t)
	app, err := cancel(app, "applicant-1", false, t0)
	require.NoError(t, err)

	_, _, err = act(app, application.StageChecker, "checker-1", application.DecisionApprove, nil, t0)
	assert.ErrorIs(t, err, application.ErrStaleStage)
}

func TestAct_StageMonotonicity(t *testing.T) {
	app := threeStageApplication(t)
	rank := app.CurrentStage.Rank()

	steps := []struct {
		role  application.StageRole
		actor string
	}{
		{application.StageChecker, "checker-1"},
		{application.StageApprover1, "approver-1"},
		{application.StageApprover2, "approver-2"},
	}
	for _, step := range steps {
		// Out-of-order attempts never move the stage
		for _, other := range steps {
			if other.role == step.role {
				continue
			}
			got, _, _ := act(app, other.role, other.actor, application.DecisionApprove, nil, t0)
			assert.Equal(t, app.CurrentStage, got.CurrentStage)
		}

		app = mustAct(t, app, step.role, step.actor, application.DecisionApprove, nil)
		assert.Greater(t, app.CurrentStage.Rank(), rank)
		rank = app.CurrentStage.Rank()
	}
}

func TestCancel(t *testing.T) {
	t.Run("applicant while pending", func(t *testing.T) {
		app, err := cancel(threeStageApplication(t), "applicant-1", false, t0)
		require.NoError(t, err)
		assert.Equal(t, application.StatusCancelled, app.Status)
		assert.Equal(t, "applicant-1", *app.CancelledBy)
		assert.Equal(t, t0, *app.CancelledAt)
	})

	t.Run("someone else", func(t *testing.T) {
		_, err := cancel(threeStageApplication(t), "checker-1", false, t0)
		assert.ErrorIs(t, err, application.ErrUnauthorized)
	})

	t.Run("administrative override", func(t *testing.T) {
		app, err := cancel(threeStageApplication(t), "owner-1", true, t0)
		require.NoError(t, err)
		assert.Equal(t, "owner-1", *app.CancelledBy)
	})

	t.Run("after a stage acted", func(t *testing.T) {
		app := mustAct(t, threeStageApplication(t), application.StageChecker, "checker-1", application.DecisionApprove, nil)
		_, err := cancel(app, "applicant-1", false, t0)
		assert.ErrorIs(t, err, application.ErrNotCancellable)
	})

	t.Run("twice", func(t *testing.T) {
		app, err := cancel(threeStageApplication(t), "applicant-1", false, t0)
		require.NoError(t, err)
		_, err = cancel(app, "applicant-1", false, t0)
		assert.ErrorIs(t, err, application.ErrNotCancellable)
	})
}
