package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-core-go/internal/domain/application"
	"github.com/cmlabs-hris/hris-core-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-core-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-core-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-core-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-core-go/internal/pkg/sse"
	"github.com/cmlabs-hris/hris-core-go/internal/repository/memory"
	approvalService "github.com/cmlabs-hris/hris-core-go/internal/service/approval"
	attendanceService "github.com/cmlabs-hris/hris-core-go/internal/service/attendance"
	notificationService "github.com/cmlabs-hris/hris-core-go/internal/service/notification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const handlerTestSecret = "test-secret-key-for-jwt"

type testServer struct {
	*httptest.Server
	jwt     jwt.Service
	storage *memory.Storage
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	storage := memory.NewStorage()
	jwtSvc := jwt.NewJWTService(handlerTestSecret, "1h")

	hub := sse.NewHub(10)
	notifSvc := notificationService.NewNotificationService(hub, notificationService.Config{WorkerCount: 1})
	t.Cleanup(notifSvc.Stop)

	attendanceSvc := attendanceService.NewAttendanceService(
		storage,
		memory.NewScheduleRepository(storage),
		memory.NewPunchRepository(storage),
		memory.NewStoreRepository(storage),
		memory.NewSnapshotRepository(storage),
		memory.NewEmployeeRepository(storage),
	)
	approvalSvc := approvalService.NewApprovalService(
		storage,
		memory.NewApplicationRepository(storage),
		memory.NewEventRepository(storage),
		memory.NewApproverRepository(storage),
		notifSvc,
	)

	router := NewRouter(
		RouterConfig{
			Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
			LogLevel:       slog.LevelInfo,
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		jwtSvc,
		NewAttendanceHandler(attendanceSvc),
		NewApplicationHandler(approvalSvc),
		NewNotificationHandler(notifSvc, jwtSvc),
	)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testServer{Server: srv, jwt: jwtSvc, storage: storage}
}

func (s *testServer) token(t *testing.T, userID string, role user.Role) string {
	t.Helper()
	token, _, err := s.jwt.GenerateAccessToken(userID, nil, role)
	require.NoError(t, err)
	return token
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, s.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func seedScenarioA(storage *memory.Storage, userID string) {
	date := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	start, end := "09:00", "18:00"
	storage.PutEmployee(employee.Employee{
		UserID:           userID,
		EmploymentMode:   attendance.EmploymentModeFullTime,
		EmploymentStatus: employee.EmploymentStatusActive,
	})
	storage.PutSchedule(attendance.ScheduleEntry{UserID: userID, Date: date, PlannedStartTime: &start, PlannedEndTime: &end})
	for _, tm := range []string{"09:10", "12:00", "13:00", "18:40"} {
		storage.AddPunch(attendance.ClockPunch{UserID: userID, Date: date, Time: tm, IsValid: true})
	}
}

func TestRouter_RequiresToken(t *testing.T) {
	srv := newTestServer(t)

	status, _ := srv.do(t, http.MethodGet, "/api/v1/applications/my", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	sseToken, _, err := srv.jwt.GenerateSSEToken("emp-1")
	require.NoError(t, err)
	status, _ = srv.do(t, http.MethodGet, "/api/v1/applications/my", sseToken, nil)
	assert.Equal(t, http.StatusUnauthorized, status, "sse tokens are not access tokens")
}

func TestAttendance_GetDaily(t *testing.T) {
	srv := newTestServer(t)
	seedScenarioA(srv.storage, "emp-1")

	status, env := srv.do(t, http.MethodGet, "/api/v1/attendance/daily?date=2024-03-04", srv.token(t, "emp-1", user.RoleEmployee), nil)
	require.Equal(t, http.StatusOK, status)

	var record attendance.DailyAttendanceRecord
	require.NoError(t, json.Unmarshal(env.Data, &record))
	require.NotNil(t, record.LateMinutes)
	assert.Equal(t, 10, *record.LateMinutes)
	assert.True(t, record.IsLate)
	require.NotNil(t, record.BreakMinutes)
	assert.Equal(t, 60, *record.BreakMinutes)
	require.NotNil(t, record.ApprovedOvertimeMinutes)
	assert.Equal(t, 30, *record.ApprovedOvertimeMinutes)
}

func TestAttendance_OtherUserNeedsViewAll(t *testing.T) {
	srv := newTestServer(t)
	seedScenarioA(srv.storage, "emp-1")
	path := "/api/v1/attendance/daily?date=2024-03-04&user_id=emp-1"

	status, _ := srv.do(t, http.MethodGet, path, srv.token(t, "emp-2", user.RoleEmployee), nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = srv.do(t, http.MethodGet, path, srv.token(t, "mgr-1", user.RoleManager), nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestAttendance_DailyValidation(t *testing.T) {
	srv := newTestServer(t)

	status, env := srv.do(t, http.MethodGet, "/api/v1/attendance/daily?date=04-03-2024", srv.token(t, "emp-1", user.RoleEmployee), nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Details, "date")
}

func TestAttendance_RecomputeAndReadMonth(t *testing.T) {
	srv := newTestServer(t)
	seedScenarioA(srv.storage, "emp-1")
	body := map[string]interface{}{"user_id": "emp-1", "year": 2024, "month": 3}

	status, _ := srv.do(t, http.MethodPost, "/api/v1/attendance/monthly/recompute", srv.token(t, "emp-1", user.RoleEmployee), body)
	assert.Equal(t, http.StatusForbidden, status)

	manager := srv.token(t, "mgr-1", user.RoleManager)
	status, env := srv.do(t, http.MethodPost, "/api/v1/attendance/monthly/recompute", manager, body)
	require.Equal(t, http.StatusOK, status)

	var snapshot attendance.MonthlySnapshotResponse
	require.NoError(t, json.Unmarshal(env.Data, &snapshot))
	assert.Len(t, snapshot.DailyRecords, 31)
	assert.Equal(t, "mgr-1", snapshot.UpdatedBy)
	assert.Equal(t, 1, snapshot.Totals.PresentDays)

	status, env = srv.do(t, http.MethodGet, "/api/v1/attendance/monthly?year=2024&month=3", srv.token(t, "emp-1", user.RoleEmployee), nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &snapshot))
	assert.Equal(t, "emp-1", snapshot.UserID)

	status, _ = srv.do(t, http.MethodGet, "/api/v1/attendance/monthly?year=2024&month=4", srv.token(t, "emp-1", user.RoleEmployee), nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func submitLeave(t *testing.T, srv *testServer, applicant string) application.ApplicationResponse {
	t.Helper()

	body := map[string]interface{}{
		"type": "leave",
		"payload": map[string]interface{}{
			"leave": map[string]interface{}{
				"leave_type_name": "Annual",
				"start_date":      "2024-03-11",
				"end_date":        "2024-03-12",
				"reason":          "Family trip",
			},
		},
		"stage_assignees": map[string]interface{}{
			"checker":    "chk-1",
			"approver_1": "mgr-1",
		},
	}

	status, env := srv.do(t, http.MethodPost, "/api/v1/applications", srv.token(t, applicant, user.RoleEmployee), body)
	require.Equal(t, http.StatusCreated, status, env.Error)

	var app application.ApplicationResponse
	require.NoError(t, json.Unmarshal(env.Data, &app))
	return app
}

func TestApplication_FullApprovalFlow(t *testing.T) {
	srv := newTestServer(t)
	app := submitLeave(t, srv, "emp-1")
	assert.Equal(t, application.StageChecker, app.CurrentStage)

	checker := srv.token(t, "chk-1", user.RoleEmployee)
	manager := srv.token(t, "mgr-1", user.RoleManager)

	status, env := srv.do(t, http.MethodGet, "/api/v1/applications/inbox", checker, nil)
	require.Equal(t, http.StatusOK, status)
	var inbox application.ListApplicationResponse
	require.NoError(t, json.Unmarshal(env.Data, &inbox))
	assert.Equal(t, int64(1), inbox.TotalCount)

	// manager acting out of turn
	status, _ = srv.do(t, http.MethodPost, "/api/v1/applications/"+app.ID+"/act", manager,
		map[string]string{"stage": "approver_1", "decision": "approve"})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = srv.do(t, http.MethodPost, "/api/v1/applications/"+app.ID+"/act", checker,
		map[string]string{"stage": "checker", "decision": "approve"})
	require.Equal(t, http.StatusOK, status)

	status, env = srv.do(t, http.MethodPost, "/api/v1/applications/"+app.ID+"/act", manager,
		map[string]string{"stage": "approver_1", "decision": "approve", "remarks": "enjoy"})
	require.Equal(t, http.StatusOK, status)
	var final application.ApplicationResponse
	require.NoError(t, json.Unmarshal(env.Data, &final))
	assert.Equal(t, application.StatusApproved, final.Status)
	assert.Equal(t, application.StageCompleted, final.CurrentStage)

	// late reject on an approved stage
	status, env = srv.do(t, http.MethodPost, "/api/v1/applications/"+app.ID+"/act", checker,
		map[string]string{"stage": "checker", "decision": "reject"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "STALE_STAGE", env.Error.Code)

	status, env = srv.do(t, http.MethodGet, "/api/v1/applications/"+app.ID+"/events", srv.token(t, "emp-1", user.RoleEmployee), nil)
	require.Equal(t, http.StatusOK, status)
	var events []application.ApplicationEventResponse
	require.NoError(t, json.Unmarshal(env.Data, &events))
	assert.Len(t, events, 3)
}

func TestApplication_Visibility(t *testing.T) {
	srv := newTestServer(t)
	app := submitLeave(t, srv, "emp-1")
	path := "/api/v1/applications/" + app.ID

	status, _ := srv.do(t, http.MethodGet, path, srv.token(t, "stranger", user.RoleEmployee), nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = srv.do(t, http.MethodGet, path, srv.token(t, "chk-1", user.RoleEmployee), nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = srv.do(t, http.MethodGet, path, srv.token(t, "boss", user.RoleOwner), nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = srv.do(t, http.MethodGet, "/api/v1/applications/0190a0b0-0000-7000-8000-000000000000", srv.token(t, "boss", user.RoleOwner), nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestApplication_Cancel(t *testing.T) {
	srv := newTestServer(t)
	first := submitLeave(t, srv, "emp-1")
	second := submitLeave(t, srv, "emp-1")

	status, _ := srv.do(t, http.MethodPost, "/api/v1/applications/"+first.ID+"/cancel", srv.token(t, "emp-2", user.RoleEmployee), nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, env := srv.do(t, http.MethodPost, "/api/v1/applications/"+first.ID+"/cancel", srv.token(t, "emp-1", user.RoleEmployee), nil)
	require.Equal(t, http.StatusOK, status)
	var cancelled application.ApplicationResponse
	require.NoError(t, json.Unmarshal(env.Data, &cancelled))
	assert.Equal(t, application.StatusCancelled, cancelled.Status)

	// owner override
	status, _ = srv.do(t, http.MethodPost, "/api/v1/applications/"+second.ID+"/cancel", srv.token(t, "boss", user.RoleOwner), nil)
	assert.Equal(t, http.StatusOK, status)

	status, env = srv.do(t, http.MethodPost, "/api/v1/applications/"+first.ID+"/cancel", srv.token(t, "emp-1", user.RoleEmployee), nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "NOT_CANCELLABLE", env.Error.Code)
}

func TestApplication_SubmitValidation(t *testing.T) {
	srv := newTestServer(t)

	status, env := srv.do(t, http.MethodPost, "/api/v1/applications", srv.token(t, "emp-1", user.RoleEmployee),
		map[string]interface{}{"type": "leave", "payload": map[string]interface{}{}})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, env.Error.Details, "payload.leave")

	status, _ = srv.do(t, http.MethodPost, "/api/v1/applications", srv.token(t, "new", user.RolePending),
		map[string]interface{}{"type": "leave"})
	assert.Equal(t, http.StatusForbidden, status)
}

func TestNotifications_SSETokenAndStream(t *testing.T) {
	srv := newTestServer(t)

	status, env := srv.do(t, http.MethodGet, "/api/v1/notifications/sse-token", srv.token(t, "chk-1", user.RoleEmployee), nil)
	require.Equal(t, http.StatusOK, status)
	var tok struct {
		Token     string `json:"token"`
		ExpiresIn int    `json:"expires_in"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &tok))
	assert.Equal(t, 300, tok.ExpiresIn)

	status, _ = srv.do(t, http.MethodGet, "/api/v1/notifications/stream", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	resp, err := srv.Client().Get(srv.URL + "/api/v1/notifications/stream?token=" + tok.Token)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	buf := make([]byte, 256)
	n, err := resp.Body.Read(buf)
	require.NoError(t, err)
	assert.Contains(t, string(buf[:n]), "event: connected")
}
