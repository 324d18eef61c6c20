package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/classroom-kit/student-records/internal/api/http/handlers"
	"github.com/classroom-kit/student-records/internal/auth"
	"github.com/classroom-kit/student-records/internal/config"
	"github.com/classroom-kit/student-records/internal/events"
	"github.com/classroom-kit/student-records/internal/notify"
	"github.com/classroom-kit/student-records/internal/observability"
	"github.com/classroom-kit/student-records/internal/persistence"
	"github.com/classroom-kit/student-records/internal/repository/memory"
	"github.com/classroom-kit/student-records/internal/service"
)

const (
	adminEmail    = "admin@school.test"
	adminPassword = "admin-pass"
)

type sessionSet map[string]bool

func (s sessionSet) Revoke(_ context.Context, id string, _ time.Duration) error {
	s[id] = true
	return nil
}

func (s sessionSet) IsRevoked(_ context.Context, id string) (bool, error) {
	return s[id], nil
}

var _ persistence.SessionStore = sessionSet{}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	cfg := config.Config{
		App:   config.AppConfig{Name: "student-records", Version: "test"},
		Auth:  config.AuthConfig{JWTSecret: "secret", AccessTokenTTLMinutes: 5, BcryptCost: bcrypt.MinCost},
		Admin: config.AdminConfig{Email: adminEmail, Password: adminPassword},
	}
	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	users := memory.NewUserRepository()
	sessions := sessionSet{}

	dispatcher := events.NewInMemoryDispatcher()
	service.NewNotificationService(dispatcher, notify.NewLogMailer(logger), adminEmail, logger).RegisterHandlers()

	authService := service.NewAuthService(cfg, service.AuthDependencies{
		UserRepo:   users,
		Sessions:   sessions,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	require.NoError(t, authService.EnsureAdmin(context.Background()))
	studentService := service.NewStudentService(service.StudentDependencies{
		StudentRepo: memory.NewStudentRepository(),
		Logger:      logger,
	})

	app := NewApp(cfg.App.Name, ErrorHandler(logger, metrics))
	RegisterMiddlewares(app, logger, metrics, time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, nil, nil, metrics),
		Users:          handlers.NewUsersHandler(authService),
		Admin:          handlers.NewAdminHandler(authService),
		Students:       handlers.NewStudentsHandler(studentService),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), users, sessions, adminEmail, logger),
	})
	return app
}

type response struct {
	Status int
	Body   map[string]any
	Raw    string
}

func call(t *testing.T, app *fiber.App, method, path, token string, body any) response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := response{Status: resp.StatusCode, Raw: string(raw)}
	if strings.HasPrefix(resp.Header.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) && len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out.Body))
	}
	return out
}

func data(r response) map[string]any {
	d, _ := r.Body["data"].(map[string]any)
	return d
}

func errorCode(r response) string {
	e, _ := r.Body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func login(t *testing.T, app *fiber.App, email, password string) string {
	t.Helper()
	r := call(t, app, http.MethodPost, "/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, r.Status, r.Raw)
	authData := data(r)["auth"].(map[string]any)
	return authData["token"].(string)
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)

	assert.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/health/live", "", nil).Status)

	ready := call(t, app, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, ready.Status)
	deps := ready.Body["dependencies"].(map[string]any)
	assert.Equal(t, "disabled", deps["postgres"])

	metrics := call(t, app, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, metrics.Status)
	assert.Contains(t, metrics.Body, "requests")
}

func TestRegistrationApprovalFlow(t *testing.T) {
	app := newTestApp(t)

	reg := call(t, app, http.MethodPost, "/auth/register", "", map[string]string{
		"name": "Ana", "email": "ana@x.com", "password": "p1",
	})
	require.Equal(t, http.StatusCreated, reg.Status, reg.Raw)
	assert.Equal(t, service.MessageAwaitingApproval, data(reg)["message"])
	assert.NotContains(t, reg.Raw, "password")
	userID := int64(data(reg)["user"].(map[string]any)["id"].(float64))

	dup := call(t, app, http.MethodPost, "/auth/register", "", map[string]string{
		"name": "Other", "email": "ana@x.com", "password": "p2",
	})
	assert.Equal(t, http.StatusConflict, dup.Status)
	assert.Equal(t, "CONFLICT", errorCode(dup))

	pendingLogin := call(t, app, http.MethodPost, "/auth/login", "", map[string]string{"email": "ana@x.com", "password": "p1"})
	assert.Equal(t, http.StatusUnauthorized, pendingLogin.Status)

	adminToken := login(t, app, adminEmail, adminPassword)

	pending := call(t, app, http.MethodGet, "/admin/users/pending", adminToken, nil)
	require.Equal(t, http.StatusOK, pending.Status)
	assert.Len(t, pending.Body["data"], 1)

	approve := call(t, app, http.MethodPost, "/admin/users/"+itoa(userID)+"/approve", adminToken, nil)
	require.Equal(t, http.StatusOK, approve.Status, approve.Raw)
	assert.Equal(t, true, data(approve)["user"].(map[string]any)["authorized"])

	missing := call(t, app, http.MethodPost, "/admin/users/999/approve", adminToken, nil)
	assert.Equal(t, http.StatusNotFound, missing.Status)

	userToken := login(t, app, "ana@x.com", "p1")
	forbidden := call(t, app, http.MethodGet, "/admin/users/pending", userToken, nil)
	assert.Equal(t, http.StatusForbidden, forbidden.Status)

	del := call(t, app, http.MethodDelete, "/admin/users?email=ana@x.com", adminToken, nil)
	assert.Equal(t, http.StatusNoContent, del.Status)
	again := call(t, app, http.MethodDelete, "/admin/users?email=ana@x.com", adminToken, nil)
	assert.Equal(t, http.StatusNoContent, again.Status)

	gone := call(t, app, http.MethodGet, "/students", userToken, nil)
	assert.Equal(t, http.StatusUnauthorized, gone.Status, "token of a removed user is rejected")
}

func TestAdminCannotRemoveOwnAccount(t *testing.T) {
	app := newTestApp(t)
	token := login(t, app, adminEmail, adminPassword)

	r := call(t, app, http.MethodDelete, "/admin/users?email="+strings.ToUpper(adminEmail), token, nil)
	assert.Equal(t, http.StatusBadRequest, r.Status, r.Raw)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(r))

	assert.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/admin/users/pending", token, nil).Status)
	login(t, app, adminEmail, adminPassword)
}

func TestLogoutRevokesToken(t *testing.T) {
	app := newTestApp(t)
	token := login(t, app, adminEmail, adminPassword)

	assert.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/students", token, nil).Status)
	assert.Equal(t, http.StatusNoContent, call(t, app, http.MethodPost, "/auth/logout", token, nil).Status)
	assert.Equal(t, http.StatusUnauthorized, call(t, app, http.MethodGet, "/students", token, nil).Status)
}

func TestStudentCRUD(t *testing.T) {
	app := newTestApp(t)
	token := login(t, app, adminEmail, adminPassword)

	assert.Equal(t, http.StatusUnauthorized, call(t, app, http.MethodGet, "/students", "", nil).Status)

	invalid := call(t, app, http.MethodPost, "/students", token, map[string]any{"name": "", "age": 0})
	assert.Equal(t, http.StatusBadRequest, invalid.Status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(invalid))

	badDate := call(t, app, http.MethodPost, "/students", token, map[string]any{"name": "Ana", "age": 20, "birth_date": "01/02/2005"})
	assert.Equal(t, http.StatusBadRequest, badDate.Status)

	overflow := call(t, app, http.MethodPost, "/students", token, map[string]any{"name": "Ana", "age": int64(1) << 31})
	assert.Equal(t, http.StatusBadRequest, overflow.Status, overflow.Raw)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(overflow))

	created := call(t, app, http.MethodPost, "/students", token, map[string]any{
		"name": "Ana", "age": 20, "course": "Math", "gender": "Feminino", "birth_date": "2005-02-01",
	})
	require.Equal(t, http.StatusCreated, created.Status, created.Raw)
	id := itoa(int64(data(created)["id"].(float64)))
	assert.Equal(t, "2005-02-01", data(created)["birth_date"])

	got := call(t, app, http.MethodGet, "/students/"+id, token, nil)
	require.Equal(t, http.StatusOK, got.Status)
	assert.Equal(t, "Math", data(got)["course"])

	updated := call(t, app, http.MethodPut, "/students/"+id, token, map[string]any{"name": "Ana Maria", "age": 21})
	require.Equal(t, http.StatusOK, updated.Status, updated.Raw)
	assert.Nil(t, data(updated)["course"])

	list := call(t, app, http.MethodGet, "/students", token, nil)
	assert.Len(t, list.Body["data"], 1)

	export := call(t, app, http.MethodGet, "/students/export", token, nil)
	require.Equal(t, http.StatusOK, export.Status)
	assert.True(t, strings.HasPrefix(export.Raw, "id,nome,idade,"))
	assert.Contains(t, export.Raw, "Ana Maria,21")

	archive := call(t, app, http.MethodPost, "/students/export/archive", token, nil)
	assert.Equal(t, http.StatusServiceUnavailable, archive.Status)

	assert.Equal(t, http.StatusNotFound, call(t, app, http.MethodPut, "/students/999", token, map[string]any{"name": "X", "age": 1}).Status)
	assert.Equal(t, http.StatusBadRequest, call(t, app, http.MethodGet, "/students/abc", token, nil).Status)

	assert.Equal(t, http.StatusNoContent, call(t, app, http.MethodDelete, "/students/"+id, token, nil).Status)
	assert.Equal(t, http.StatusNoContent, call(t, app, http.MethodDelete, "/students/"+id, token, nil).Status)
	assert.Equal(t, http.StatusNotFound, call(t, app, http.MethodGet, "/students/"+id, token, nil).Status)
}

func TestUnknownRoute(t *testing.T) {
	app := newTestApp(t)
	r := call(t, app, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, r.Status)
	assert.Equal(t, "NOT_FOUND", errorCode(r))
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
