package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikita1503agarwal/devfolio/internal/auth"
	"github.com/nikita1503agarwal/devfolio/internal/handler"
	"github.com/nikita1503agarwal/devfolio/internal/model"
	"github.com/nikita1503agarwal/devfolio/internal/repository/sqlite"
	"github.com/nikita1503agarwal/devfolio/internal/service"
)

// testEnv bundles the wired components handler tests need. It uses a real
// in-memory SQLite database so the whole chain — middleware included — is
// exercised, not mocked.
type testEnv struct {
	db        *sqlite.DB
	sessions  *auth.SessionService
	auth      *service.AuthService
	portfolio *service.PortfolioService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	sessions := auth.NewSessionService(db.Sessions(), time.Hour)

	return &testEnv{
		db:        db,
		sessions:  sessions,
		auth:      service.NewAuthService(db.Developers(), db.Portfolios(), sessions, logger),
		portfolio: service.NewPortfolioService(db.Portfolios(), logger),
	}
}

func (e *testEnv) logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// loginTestDeveloper creates a developer row and an active session, and
// returns the session token.
func (e *testEnv) loginTestDeveloper(t *testing.T, username string) string {
	t.Helper()

	dev := &model.Developer{Username: username, Name: "Test Developer"}
	require.NoError(t, e.db.Developers().Upsert(context.Background(), dev))

	sess, err := e.sessions.Issue(context.Background(), username)
	require.NoError(t, err)
	return sess.Token
}

// fakeGitHub satisfies handler.GitHubAuthorizer without any network calls,
// so callback tests can drive the exchange step directly.
type fakeGitHub struct {
	user        *auth.GitHubUser
	exchangeErr error
}

func (f *fakeGitHub) AuthURL(state string) string {
	return "https://github.test/login/oauth/authorize?state=" + state
}

func (f *fakeGitHub) Exchange(ctx context.Context, code string) (*auth.GitHubUser, error) {
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	return f.user, nil
}

func TestHandleGitHubStart(t *testing.T) {
	env := newTestEnv(t)

	t.Run("returns authorize URL and sets state cookie", func(t *testing.T) {
		github := auth.NewGitHubProvider("client-id", "client-secret", "http://localhost:8000/auth/github/callback")
		h := handler.NewAuthHandler(github, env.auth, "http://localhost:3000", env.logger())

		req := httptest.NewRequest(http.MethodGet, "/auth/github/start", nil)
		rr := httptest.NewRecorder()

		h.HandleGitHubStart(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var body map[string]string
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
		assert.Contains(t, body["url"], "https://github.com/login/oauth/authorize")
		assert.Contains(t, body["url"], "client_id=client-id")
		assert.Contains(t, body["url"], "state=")

		var stateCookie *http.Cookie
		for _, c := range rr.Result().Cookies() {
			if c.Name == "oauth_state" {
				stateCookie = c
			}
		}
		require.NotNil(t, stateCookie, "state cookie not set")
		assert.True(t, stateCookie.HttpOnly)
		assert.NotEmpty(t, stateCookie.Value)
		assert.Contains(t, body["url"], "state="+stateCookie.Value)
	})

	t.Run("oauth not configured", func(t *testing.T) {
		h := handler.NewAuthHandler(nil, env.auth, "http://localhost:3000", env.logger())

		req := httptest.NewRequest(http.MethodGet, "/auth/github/start", nil)
		rr := httptest.NewRecorder()

		h.HandleGitHubStart(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Contains(t, rr.Body.String(), "oauth_not_configured")
	})
}

func TestHandleGitHubCallbackRejections(t *testing.T) {
	env := newTestEnv(t)
	github := auth.NewGitHubProvider("client-id", "client-secret", "http://localhost:8000/auth/github/callback")
	h := handler.NewAuthHandler(github, env.auth, "http://localhost:3000", env.logger())

	stateCookie := &http.Cookie{Name: "oauth_state", Value: "expected-state"}

	tests := []struct {
		name       string
		target     string
		cookie     *http.Cookie
		wantStatus int
		wantError  string
	}{
		{
			name:       "missing state cookie",
			target:     "/auth/github/callback?code=abc&state=expected-state",
			cookie:     nil,
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid_state",
		},
		{
			name:       "state mismatch",
			target:     "/auth/github/callback?code=abc&state=tampered",
			cookie:     stateCookie,
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid_state",
		},
		{
			name:       "authorization denied",
			target:     "/auth/github/callback?error=access_denied&state=expected-state",
			cookie:     stateCookie,
			wantStatus: http.StatusBadRequest,
			wantError:  "access_denied",
		},
		{
			name:       "missing code",
			target:     "/auth/github/callback?state=expected-state",
			cookie:     stateCookie,
			wantStatus: http.StatusBadRequest,
			wantError:  "missing_code",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			rr := httptest.NewRecorder()

			h.HandleGitHubCallback(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.wantError)
		})
	}
}

func TestHandleGitHubCallbackSuccess(t *testing.T) {
	env := newTestEnv(t)
	github := &fakeGitHub{user: &auth.GitHubUser{
		Login: "octocat",
		Name:  "The Octocat",
		Email: "octocat@github.com",
	}}
	h := handler.NewAuthHandler(github, env.auth, "http://localhost:3000", env.logger())

	req := httptest.NewRequest(http.MethodGet, "/auth/github/callback?code=good-code&state=expected-state", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "expected-state"})
	rr := httptest.NewRecorder()

	h.HandleGitHubCallback(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))

	// The redirect target carries the freshly issued session token.
	prefix := "http://localhost:3000/auth?token="
	require.True(t, strings.HasPrefix(body["redirect_to"], prefix),
		"redirect_to = %q, want prefix %q", body["redirect_to"], prefix)
	token := strings.TrimPrefix(body["redirect_to"], prefix)
	require.NotEmpty(t, token)

	// And the token resolves to the developer GitHub reported.
	sess, err := env.sessions.Resolve(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "octocat", sess.Username)

	dev, err := env.db.Developers().GetByUsername(context.Background(), "octocat")
	require.NoError(t, err)
	assert.Equal(t, "The Octocat", dev.Name)
	assert.Equal(t, "octocat@github.com", dev.Email)

	// First login also seeds the default portfolio.
	p, err := env.db.Portfolios().GetByUsername(context.Background(), "octocat")
	require.NoError(t, err)
	assert.Equal(t, "Building with code.", p.Headline)

	// The single-use state cookie is cleared.
	var cleared bool
	for _, c := range rr.Result().Cookies() {
		if c.Name == "oauth_state" && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared, "state cookie was not cleared")
}

func TestHandleGitHubCallbackExchangeFailure(t *testing.T) {
	env := newTestEnv(t)
	github := &fakeGitHub{exchangeErr: errors.New("bad verification code")}
	h := handler.NewAuthHandler(github, env.auth, "http://localhost:3000", env.logger())

	req := httptest.NewRequest(http.MethodGet, "/auth/github/callback?code=bad-code&state=expected-state", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "expected-state"})
	rr := httptest.NewRecorder()

	h.HandleGitHubCallback(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "exchange_failed")
}

func TestHandleMe(t *testing.T) {
	env := newTestEnv(t)
	h := handler.NewAuthHandler(nil, env.auth, "http://localhost:3000", env.logger())

	protected := auth.RequireAuth(env.sessions, env.db.Developers())(http.HandlerFunc(h.HandleMe))

	t.Run("authenticated", func(t *testing.T) {
		token := env.loginTestDeveloper(t, "octocat")

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set(auth.SessionTokenHeader, token)
		rr := httptest.NewRecorder()

		protected.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var body struct {
			User model.Developer `json:"user"`
		}
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
		assert.Equal(t, "octocat", body.User.Username)
		assert.Equal(t, "Test Developer", body.User.Name)
	})

	t.Run("missing token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		rr := httptest.NewRecorder()

		protected.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("unknown token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set(auth.SessionTokenHeader, "never-issued")
		rr := httptest.NewRecorder()

		protected.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		env := newTestEnv(t)
		expired := auth.NewSessionService(env.db.Sessions(), -time.Minute)

		dev := &model.Developer{Username: "hubot"}
		require.NoError(t, env.db.Developers().Upsert(context.Background(), dev))
		sess, err := expired.Issue(context.Background(), "hubot")
		require.NoError(t, err)

		protected := auth.RequireAuth(env.sessions, env.db.Developers())(http.HandlerFunc(h.HandleMe))

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set(auth.SessionTokenHeader, sess.Token)
		rr := httptest.NewRecorder()

		protected.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestHandleLogout(t *testing.T) {
	env := newTestEnv(t)
	h := handler.NewAuthHandler(nil, env.auth, "http://localhost:3000", env.logger())

	protected := auth.RequireAuth(env.sessions, env.db.Developers())(http.HandlerFunc(h.HandleLogout))

	token := env.loginTestDeveloper(t, "octocat")

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.Header.Set(auth.SessionTokenHeader, token)
	rr := httptest.NewRecorder()

	protected.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.Contains(rr.Body.String(), "logged out"))

	// The token is dead now.
	req = httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.Header.Set(auth.SessionTokenHeader, token)
	rr = httptest.NewRecorder()

	protected.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
