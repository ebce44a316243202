package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyonlabs/identity-service/internal/logging"
)

// recordingPublisher captures published notifications for assertions.
type recordingPublisher struct {
	mu            sync.Mutex
	notifications []Notification
}

func (p *recordingPublisher) Publish(ctx context.Context, n Notification) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notifications = append(p.notifications, n)
	return nil
}

func (p *recordingPublisher) wait(t *testing.T, want int) []Notification {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		p.mu.Lock()
		n := len(p.notifications)
		snapshot := append([]Notification(nil), p.notifications...)
		p.mu.Unlock()
		if n >= want {
			return snapshot
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected %d notifications, publisher never saw them", want)
	return nil
}

func newTestRouter(t *testing.T) (*chi.Mux, *recordingPublisher) {
	t.Helper()

	svc, _ := newTestService(t)
	publisher := &recordingPublisher{}
	logger := logging.NewLogger(true)
	handler := NewHandler(svc, publisher, logger)
	mw := NewMiddleware(svc.signer)

	r := chi.NewRouter()
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", handler.Register)
		r.Post("/login", handler.Login)
		r.Get("/verify-email", handler.VerifyEmail)
		r.Post("/forgot-password", handler.ForgotPassword)
		r.Post("/reset-password", handler.ResetPassword)
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireAuth)
			r.Post("/logout", handler.Logout)
		})
	})

	return r, publisher
}

func doJSON(t *testing.T, router http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

const registerBody = `{"email":"ada@example.com","password":"correct horse","first_name":"Ada","last_name":"Lovelace"}`

func TestHandler_RegisterAndStatusMapping(t *testing.T) {
	router, publisher := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/auth/register", registerBody, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var tokens AuthTokens
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tokens))
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)

	notifications := publisher.wait(t, 1)
	assert.Equal(t, NotificationVerification, notifications[0].Kind)
	assert.Equal(t, "ada@example.com", notifications[0].To)
	assert.NotEmpty(t, notifications[0].Token)

	// Duplicate registration conflicts.
	rec = doJSON(t, router, http.MethodPost, "/auth/register", registerBody, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandler_RegisterValidation(t *testing.T) {
	router, _ := newTestRouter(t)

	cases := []struct {
		name string
		body string
	}{
		{"bad json", `{`},
		{"missing email", `{"password":"correct horse","first_name":"A","last_name":"B"}`},
		{"bad email", `{"email":"not-an-email","password":"correct horse","first_name":"A","last_name":"B"}`},
		{"short password", `{"email":"a@x.com","password":"short","first_name":"A","last_name":"B"}`},
		{"missing name", `{"email":"a@x.com","password":"correct horse"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, router, http.MethodPost, "/auth/register", tc.body, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandler_LoginStatuses(t *testing.T) {
	router, publisher := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/auth/register", registerBody, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	notifications := publisher.wait(t, 1)

	// Unverified login is forbidden.
	loginBody := `{"email":"ada@example.com","password":"correct horse"}`
	rec = doJSON(t, router, http.MethodPost, "/auth/login", loginBody, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Verify via the HTTP surface, then log in.
	rec = doJSON(t, router, http.MethodGet, "/auth/verify-email?token="+notifications[0].Token, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/auth/login", loginBody, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Wrong password and unknown account both 401.
	rec = doJSON(t, router, http.MethodPost, "/auth/login", `{"email":"ada@example.com","password":"wrong password"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = doJSON(t, router, http.MethodPost, "/auth/login", `{"email":"nobody@example.com","password":"whatever!"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandler_VerifyEmailReplay(t *testing.T) {
	router, publisher := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/auth/register", registerBody, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	token := publisher.wait(t, 1)[0].Token

	rec = doJSON(t, router, http.MethodGet, "/auth/verify-email?token="+token, "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/auth/verify-email?token="+token, "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_ForgotPasswordMasksAccountExistence(t *testing.T) {
	router, publisher := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/auth/register", registerBody, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	publisher.wait(t, 1)

	known := doJSON(t, router, http.MethodPost, "/auth/forgot-password", `{"email":"ada@example.com"}`, nil)
	unknown := doJSON(t, router, http.MethodPost, "/auth/forgot-password", `{"email":"nobody@example.com"}`, nil)

	assert.Equal(t, http.StatusOK, known.Code)
	assert.Equal(t, http.StatusOK, unknown.Code)
	assert.Equal(t, known.Body.String(), unknown.Body.String())

	// Only the real account produced a notification.
	notifications := publisher.wait(t, 2)
	assert.Len(t, notifications, 2)
	assert.Equal(t, NotificationPasswordReset, notifications[1].Kind)
	assert.Equal(t, "ada@example.com", notifications[1].To)
}

func TestHandler_ResetPasswordFlow(t *testing.T) {
	router, publisher := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/auth/register", registerBody, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	publisher.wait(t, 1)

	rec = doJSON(t, router, http.MethodPost, "/auth/forgot-password", `{"email":"ada@example.com"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	token := publisher.wait(t, 2)[1].Token

	body := fmt.Sprintf(`{"token":%q,"new_password":"brand new pw"}`, token)
	rec = doJSON(t, router, http.MethodPost, "/auth/reset-password", body, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Consumed token no longer works.
	rec = doJSON(t, router, http.MethodPost, "/auth/reset-password", body, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_LogoutRequiresAuth(t *testing.T) {
	router, publisher := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/auth/logout", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/auth/logout", "", map[string]string{"Authorization": "Bearer garbage"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Register, verify, log in, then log out with the access token.
	rec = doJSON(t, router, http.MethodPost, "/auth/register", registerBody, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	token := publisher.wait(t, 1)[0].Token

	rec = doJSON(t, router, http.MethodGet, "/auth/verify-email?token="+token, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/auth/login", `{"email":"ada@example.com","password":"correct horse"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var tokens AuthTokens
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tokens))

	rec = doJSON(t, router, http.MethodPost, "/auth/logout", "", map[string]string{
		"Authorization": "Bearer " + tokens.AccessToken,
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}
