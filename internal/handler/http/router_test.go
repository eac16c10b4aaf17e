package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pagemantra/worktrack-backend-go/internal/domain/form"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/notification"
	"github.com/pagemantra/worktrack-backend-go/internal/domain/user"
	"github.com/pagemantra/worktrack-backend-go/internal/handler/http/middleware"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/cache"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/clock"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/events"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/jwt"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/password"
	"github.com/pagemantra/worktrack-backend-go/internal/pkg/sse"
	"github.com/pagemantra/worktrack-backend-go/internal/repository/memory"
	attendanceService "github.com/pagemantra/worktrack-backend-go/internal/service/attendance"
	authService "github.com/pagemantra/worktrack-backend-go/internal/service/auth"
	authzService "github.com/pagemantra/worktrack-backend-go/internal/service/authz"
	formService "github.com/pagemantra/worktrack-backend-go/internal/service/form"
	notificationService "github.com/pagemantra/worktrack-backend-go/internal/service/notification"
	reportService "github.com/pagemantra/worktrack-backend-go/internal/service/report"
	taskService "github.com/pagemantra/worktrack-backend-go/internal/service/task"
	teamService "github.com/pagemantra/worktrack-backend-go/internal/service/team"
	userService "github.com/pagemantra/worktrack-backend-go/internal/service/user"
	worksheetService "github.com/pagemantra/worktrack-backend-go/internal/service/worksheet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	handlerTestSecret = "test-secret-key-for-jwt-signing-0123"
	handlerTestFormID = "0b7e0000-0000-4000-8000-0000000000f1"
)

type testServer struct {
	router   http.Handler
	jwt      jwt.Service
	store    *memory.Store
	org      memory.Org
	clock    *clock.Fixed
	notifier *memory.Notifier
}

func newTestServer(t *testing.T, limiter *middleware.IPRateLimiter) *testServer {
	t.Helper()

	store := memory.NewStore()
	clk := &clock.Fixed{T: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
	org := store.SeedOrg(clk.Now())
	jwtSvc := jwt.NewJWTService(handlerTestSecret, time.Hour, time.Minute)
	authorizer, err := authzService.NewAuthorizer(user.RolePermissions)
	require.NoError(t, err)

	users := memory.NewUserRepository(store)
	teams := memory.NewTeamRepository(store)
	sessions := memory.NewSessionRepository(store)
	forms := memory.NewFormRepository(store)
	hasher := password.NewBcrypt(bcrypt.MinCost)
	notifier := &memory.Notifier{}
	publisher := &events.Memory{}

	_, err = forms.Create(context.Background(), form.Form{
		ID:   handlerTestFormID,
		Name: "Daily Log",
		Fields: []form.Field{
			{FieldID: "summary", FieldType: form.FieldTextarea, Label: "Summary", Required: true, Order: 1},
		},
		CreatedBy:     memory.ManagerID,
		AssignedTeams: []string{memory.TeamID},
		IsActive:      true,
		Version:       1,
	})
	require.NoError(t, err)

	notifSvc := notificationService.NewNotificationService(memory.NewNotificationRepository(store), sse.NewHub(4), clk,
		notificationService.Config{FlushInterval: 10 * time.Millisecond})
	t.Cleanup(notifSvc.Stop)

	breakSettings := attendanceService.NewBreakSettingsService(
		memory.NewBreakSettingsRepository(store), teams, authorizer, cache.New(nil, "worktrack", time.Minute), clk)

	h := Handlers{
		Auth:  NewAuthHandler(authService.NewAuthService(users, hasher, jwtSvc, clk)),
		User:  NewUserHandler(userService.NewUserService(users, authorizer, hasher, clk)),
		Team:  NewTeamHandler(teamService.NewTeamService(teams, users, memory.Transactor{}, authorizer, notifier, clk)),
		Task:  NewTaskHandler(taskService.NewTaskService(memory.NewTaskRepository(store), users, authorizer, notifier, publisher, clk)),
		Form:  NewFormHandler(formService.NewFormService(forms, teams, authorizer, notifier, clk)),
		Attendance: NewAttendanceHandler(
			attendanceService.NewAttendanceService(sessions, users, breakSettings, authorizer, notifier, publisher, clk, 8),
			breakSettings,
		),
		Worksheet: NewWorksheetHandler(worksheetService.NewWorksheetService(
			memory.NewWorksheetRepository(store), sessions, forms, users, memory.Transactor{}, authorizer, notifier, publisher, clk)),
		Notification: NewNotificationHandler(notifSvc, jwtSvc, users),
		Report:       NewReportHandler(reportService.NewReportService(memory.NewReportRepository(store), teams, authorizer, clk)),
	}

	router := NewRouter(jwtSvc, users, authorizer, h, RouterOptions{
		AppName:      "worktrack-test",
		LogOutput:    io.Discard,
		LoginLimiter: limiter,
	})

	return &testServer{router: router, jwt: jwtSvc, store: store, org: org, clock: clk, notifier: notifier}
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

func (s *testServer) tokenFor(t *testing.T, u user.User) string {
	t.Helper()
	token, _, err := s.jwt.GenerateAccessToken(u.ID, u.EmployeeID, u.Role)
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func TestAuthEndpoints(t *testing.T) {
	s := newTestServer(t, nil)

	code, env := s.do(t, http.MethodPost, "/api/v1/auth/register-admin", "", map[string]any{
		"employee_id": "root01", "full_name": "Root Admin", "password": "secret1",
	})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "CONFLICT", env.Error.Code)

	code, env = s.do(t, http.MethodPost, "/api/v1/users", s.tokenFor(t, s.org.Lead), map[string]any{
		"employee_id": "emp100", "full_name": "Nina Newhire", "password": "secret1", "role": "employee",
	})
	require.Equal(t, http.StatusCreated, code, env.Error)
	created := decodeData[user.UserResponse](t, env)
	require.NotNil(t, created.TeamLeadID)
	assert.Equal(t, s.org.Lead.ID, *created.TeamLeadID)

	code, env = s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"employee_id": "EMP100", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, code, env.Error)
	tok := decodeData[struct {
		AccessToken string `json:"access_token"`
	}](t, env)
	require.NotEmpty(t, tok.AccessToken)

	code, env = s.do(t, http.MethodGet, "/api/v1/auth/me", tok.AccessToken, nil)
	require.Equal(t, http.StatusOK, code)
	me := decodeData[user.UserResponse](t, env)
	assert.Equal(t, "EMP100", me.EmployeeID)
	assert.Equal(t, created.ID, me.ID)

	code, _ = s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"employee_id": "emp100", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env = s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]any{"password": "secret1"})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, env.Error.Details, "employee_id")
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t, nil)

	code, _ := s.do(t, http.MethodGet, "/api/v1/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	sseToken, _, err := s.jwt.GenerateSSEToken(s.org.Associate.ID)
	require.NoError(t, err)
	code, _ = s.do(t, http.MethodGet, "/api/v1/auth/me", sseToken, nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	token := s.tokenFor(t, s.org.Associate)
	require.NoError(t, memory.NewUserRepository(s.store).SetActive(context.Background(), s.org.Associate.ID, false))
	code, env := s.do(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, user.ErrInactiveUser.Error(), env.Error.Message)
}

func TestLoginRateLimit(t *testing.T) {
	s := newTestServer(t, middleware.NewIPRateLimiter(1, 1))
	body := map[string]any{"employee_id": "nobody", "password": "secret1"}

	code, _ := s.do(t, http.MethodPost, "/api/v1/auth/login", "", body)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env := s.do(t, http.MethodPost, "/api/v1/auth/login", "", body)
	assert.Equal(t, http.StatusTooManyRequests, code)
	assert.Equal(t, "TOO_MANY_REQUESTS", env.Error.Code)
}

func TestWorkdayOverHTTP(t *testing.T) {
	s := newTestServer(t, nil)
	associate := s.tokenFor(t, s.org.Associate)
	lead := s.tokenFor(t, s.org.Lead)
	otherLead := s.tokenFor(t, s.org.Lead2)
	manager := s.tokenFor(t, s.org.Manager)

	code, env := s.do(t, http.MethodPost, "/api/v1/attendance/clock-in", associate, nil)
	require.Equal(t, http.StatusCreated, code, env.Error)

	code, _ = s.do(t, http.MethodPost, "/api/v1/attendance/clock-in", associate, nil)
	assert.Equal(t, http.StatusConflict, code)

	s.clock.Advance(9 * time.Hour)
	code, env = s.do(t, http.MethodPost, "/api/v1/attendance/clock-out", associate, nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Contains(t, env.Error.Message, "worksheet")

	code, env = s.do(t, http.MethodPost, "/api/v1/worksheets", associate, map[string]any{
		"date":    "2025-03-10",
		"form_id": handlerTestFormID,
		"form_responses": []map[string]any{
			{"field_id": "summary", "field_label": "Summary", "value": "shipped the release"},
		},
	})
	require.Equal(t, http.StatusCreated, code, env.Error)
	ws := decodeData[struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}](t, env)
	assert.Equal(t, "draft", ws.Status)

	code, _ = s.do(t, http.MethodPost, "/api/v1/worksheets/"+ws.ID+"/submit", associate, nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = s.do(t, http.MethodPost, "/api/v1/worksheets/"+ws.ID+"/verify", otherLead, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = s.do(t, http.MethodPost, "/api/v1/worksheets/"+ws.ID+"/approve", manager, nil)
	assert.Equal(t, http.StatusConflict, code)

	code, _ = s.do(t, http.MethodPost, "/api/v1/worksheets/"+ws.ID+"/verify", lead, nil)
	require.Equal(t, http.StatusOK, code)

	code, env = s.do(t, http.MethodPost, "/api/v1/worksheets/bulk-approve", manager, map[string]any{
		"worksheet_ids": []string{ws.ID, "0b7e0000-0000-4000-8000-0000000000ff"},
	})
	require.Equal(t, http.StatusOK, code)
	approved := decodeData[[]struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}](t, env)
	require.Len(t, approved, 1)
	assert.Equal(t, "manager_approved", approved[0].Status)

	code, env = s.do(t, http.MethodPost, "/api/v1/attendance/clock-out", associate, nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	session := decodeData[struct {
		Status         string  `json:"status"`
		TotalWorkHours float64 `json:"total_work_hours"`
		OvertimeHours  float64 `json:"overtime_hours"`
	}](t, env)
	assert.Equal(t, "completed", session.Status)
	assert.InDelta(t, 9.0, session.TotalWorkHours, 0.001)
	assert.InDelta(t, 1.0, session.OvertimeHours, 0.001)

	code, env = s.do(t, http.MethodGet, "/api/v1/worksheets/summary", manager, nil)
	require.Equal(t, http.StatusOK, code)
	summary := decodeData[struct {
		Total           int64 `json:"total"`
		ManagerApproved int64 `json:"manager_approved"`
	}](t, env)
	assert.Equal(t, int64(1), summary.Total)
	assert.Equal(t, int64(1), summary.ManagerApproved)
}

func TestRequestValidation(t *testing.T) {
	s := newTestServer(t, nil)
	admin := s.tokenFor(t, s.org.Admin)

	code, _ := s.do(t, http.MethodGet, "/api/v1/worksheets/not-a-uuid", admin, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, env := s.do(t, http.MethodGet, "/api/v1/tasks?limit=500", admin, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, env.Error.Details, "limit")

	code, env = s.do(t, http.MethodGet, "/api/v1/users?is_active=maybe", admin, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, env.Error.Details, "is_active")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/teams", bytes.NewReader([]byte("{")))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+admin)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	code, _ = s.do(t, http.MethodGet, "/api/v1/users/0b7e0000-0000-4000-8000-0000000000ff", admin, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestReportsRequirePermission(t *testing.T) {
	s := newTestServer(t, nil)

	code, _ := s.do(t, http.MethodGet, "/api/v1/reports/productivity", s.tokenFor(t, s.org.Associate), nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = s.do(t, http.MethodGet, "/api/v1/reports/team-performance", s.tokenFor(t, s.org.Lead), nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, env := s.do(t, http.MethodGet, "/api/v1/reports/productivity?start_date=2025-03-01&end_date=2025-03-10", s.tokenFor(t, s.org.Manager), nil)
	assert.Equal(t, http.StatusOK, code, env.Error)

	code, _ = s.do(t, http.MethodGet, "/api/v1/reports/productivity?start_date=2025-03-10&end_date=2025-03-01", s.tokenFor(t, s.org.Manager), nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
}

func TestNotificationEndpoints(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.tokenFor(t, s.org.Associate)

	repo := memory.NewNotificationRepository(s.store)
	now := s.clock.Now()
	require.NoError(t, repo.CreateBatch(context.Background(), []notification.Notification{
		{RecipientID: s.org.Associate.ID, Type: notification.TypeTaskAssigned, Title: "New task", Message: "a", CreatedAt: now},
		{RecipientID: s.org.Associate.ID, Type: notification.TypeWorksheetApproved, Title: "Approved", Message: "b", CreatedAt: now.Add(time.Minute)},
		{RecipientID: s.org.Peer.ID, Type: notification.TypeTaskAssigned, Title: "Not mine", Message: "c", CreatedAt: now},
	}))

	code, env := s.do(t, http.MethodGet, "/api/v1/notifications/count", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, notification.CountResponse{Total: 2, Unread: 2}, decodeData[notification.CountResponse](t, env))

	code, env = s.do(t, http.MethodGet, "/api/v1/notifications", token, nil)
	require.Equal(t, http.StatusOK, code)
	page := decodeData[struct {
		Items []notification.NotificationResponse `json:"items"`
		Total int64                               `json:"total"`
	}](t, env)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Approved", page.Items[0].Title)

	code, _ = s.do(t, http.MethodPut, "/api/v1/notifications/"+page.Items[0].ID+"/read", token, nil)
	require.Equal(t, http.StatusOK, code)

	code, env = s.do(t, http.MethodGet, "/api/v1/notifications/unread", token, nil)
	require.Equal(t, http.StatusOK, code)
	unread := decodeData[struct {
		Total int64 `json:"total"`
	}](t, env)
	assert.Equal(t, int64(1), unread.Total)

	code, _ = s.do(t, http.MethodDelete, "/api/v1/notifications/"+page.Items[0].ID, s.tokenFor(t, s.org.Peer), nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, env = s.do(t, http.MethodGet, "/api/v1/notifications/sse-token", token, nil)
	require.Equal(t, http.StatusOK, code)
	sseToken := decodeData[notification.SSETokenResponse](t, env)
	assert.Equal(t, 60, sseToken.ExpiresIn)

	code, env = s.do(t, http.MethodDelete, "/api/v1/notifications", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"deleted":2}`, string(env.Data))
}

func TestNotificationStreamRejectsAccessToken(t *testing.T) {
	s := newTestServer(t, nil)

	code, env := s.do(t, http.MethodGet, "/api/v1/notifications/stream?token="+s.tokenFor(t, s.org.Associate), "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)
}

func TestNotificationStreamRejectsInactiveUser(t *testing.T) {
	s := newTestServer(t, nil)

	sseToken, _, err := s.jwt.GenerateSSEToken(s.org.Associate.ID)
	require.NoError(t, err)
	require.NoError(t, memory.NewUserRepository(s.store).SetActive(context.Background(), s.org.Associate.ID, false))

	code, env := s.do(t, http.MethodGet, "/api/v1/notifications/stream?token="+sseToken, "", nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, user.ErrInactiveUser.Error(), env.Error.Message)

	gone, _, err := s.jwt.GenerateSSEToken("0b7e0000-0000-4000-8000-0000000000ff")
	require.NoError(t, err)
	code, env = s.do(t, http.MethodGet, "/api/v1/notifications/stream?token="+gone, "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)
}
