package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/coaching-portal/internal/config"
	"github.com/iliyamo/coaching-portal/internal/handler"
	"github.com/iliyamo/coaching-portal/internal/middleware"
	"github.com/iliyamo/coaching-portal/internal/router"
)

// testEnv wires the real router, middleware and handlers over the fakes,
// so requests exercise the full HTTP surface including cookies and role
// gates.  The rate limiter is disabled (pass-through), matching the
// degraded no-redis mode.
type testEnv struct {
	e      *echo.Echo
	cfg    config.Config
	users  *fakeUsers
	tokens *fakeTokens
	resets *fakeResets
	weeks  *fakeWeeks
	mailer *fakeMailer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := testConfig()
	weeks := newFakeWeeks()
	users := newFakeUsers(weeks)
	tokens := &fakeTokens{}
	resets := &fakeResets{users: users, tokens: tokens}
	mailer := &fakeMailer{}

	e := echo.New()
	limiter := middleware.NewFixedWindow(config.RateLimitConfig{Enabled: false}, nil)
	router.Register(e, cfg,
		handler.NewAuthHandler(cfg, users, tokens, resets, mailer),
		handler.NewWeekHandler(weeks),
		handler.NewClientsHandler(users),
		limiter)

	return &testEnv{e: e, cfg: cfg, users: users, tokens: tokens, resets: resets, weeks: weeks, mailer: mailer}
}

func (env *testEnv) do(t *testing.T, method, path, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var rd *strings.Reader
	if body == "" {
		rd = strings.NewReader("")
	} else {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

// signup registers a user through the endpoint and returns the session
// cookies from the response.
func (env *testEnv) signup(t *testing.T, email, password, role string) []*http.Cookie {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"email": email, "password": password, "role": role})
	rec := env.do(t, http.MethodPost, "/signup", string(body), nil)
	require.Equal(t, http.StatusCreated, rec.Code, "signup failed: %s", rec.Body.String())
	return rec.Result().Cookies()
}

func (env *testEnv) login(t *testing.T, email, password string) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	return env.do(t, http.MethodPost, "/login", string(body), nil)
}

func cookieByName(cookies []*http.Cookie, name string) *http.Cookie {
	for _, ck := range cookies {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

func parseBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}
