package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/hris-core-go/internal/domain/application"
	"github.com/cmlabs-hris/hris-core-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-core-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", validator.ValidationErrors{{Field: "type", Message: "type is required"}}, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"no stage", application.ErrNoConfiguredStage, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"unauthorized", application.ErrUnauthorized, http.StatusForbidden, "FORBIDDEN"},
		{"stale", fmt.Errorf("act: %w", application.ErrStaleStage), http.StatusConflict, "STALE_STAGE"},
		{"not cancellable", application.ErrNotCancellable, http.StatusConflict, "NOT_CANCELLABLE"},
		{"application not found", application.ErrApplicationNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"snapshot not found", attendance.ErrSnapshotNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"snapshot conflict", attendance.ErrSnapshotVersionConflict, http.StatusConflict, "VERSION_CONFLICT"},
		{"attendance forbidden", attendance.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{"unknown", errors.New("db down"), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleError(rec, tc.err)

			assert.Equal(t, tc.status, rec.Code)
			var body Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.False(t, body.Success)
			require.NotNil(t, body.Error)
			assert.Equal(t, tc.code, body.Error.Code)
		})
	}
}

func TestHandleError_ValidationDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleError(rec, validator.ValidationErrors{{Field: "payload.leave", Message: "leave payload is required"}})

	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "leave payload is required", body.Error.Details["payload.leave"])
}
