package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/rs/xid"

	"github.com/nikita1503agarwal/devfolio/internal/auth"
	"github.com/nikita1503agarwal/devfolio/internal/service"
)

const stateCookieName = "oauth_state"

// GitHubAuthorizer is what the auth handler needs from the OAuth provider:
// an authorize URL to hand out and a code-for-profile exchange. Tests
// substitute a fake so the callback can run without talking to GitHub.
type GitHubAuthorizer interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*auth.GitHubUser, error)
}

var _ GitHubAuthorizer = (*auth.GitHubProvider)(nil)

// AuthHandler manages the GitHub OAuth login flow and session endpoints.
//
//   - HandleGitHubStart    → hand the frontend GitHub's authorize URL
//   - HandleGitHubCallback → exchange the code, log the developer in
//   - HandleMe             → return the authenticated developer
//   - HandleLogout         → revoke the caller's session
type AuthHandler struct {
	github      GitHubAuthorizer // nil when OAuth credentials are unset
	auth        *service.AuthService
	frontendURL string
	logger      *slog.Logger
}

// NewAuthHandler creates an AuthHandler. github may be nil if OAuth is not
// configured; the auth routes then respond oauth_not_configured.
func NewAuthHandler(
	github GitHubAuthorizer,
	authSvc *service.AuthService,
	frontendURL string,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		github:      github,
		auth:        authSvc,
		frontendURL: frontendURL,
		logger:      logger,
	}
}

// HandleGitHubStart returns the GitHub authorization URL as JSON.
//
// HTTP: GET /auth/github/start → {"url": "https://github.com/login/oauth/authorize?..."}
//
// The frontend fetches this and navigates to the URL itself (rather than us
// redirecting) so it can stash its own pre-login state first.
//
// CSRF PROTECTION VIA STATE:
// A random state goes both into the URL and into a short-lived HttpOnly
// cookie. The callback verifies the two match, which proves the flow was
// started by this server for this browser.
func (h *AuthHandler) HandleGitHubStart(w http.ResponseWriter, r *http.Request) {
	if h.github == nil {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "oauth_not_configured",
			Message: "GitHub OAuth is not configured",
		})
		return
	}

	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   600, // 10 minutes
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]string{"url": h.github.AuthURL(state)})
}

// HandleGitHubCallback completes the OAuth login flow.
//
// HTTP: GET /auth/github/callback?code=xxx&state=yyy
//
// FLOW:
//  1. Verify the state parameter against the cookie (CSRF check)
//  2. Exchange the code for the GitHub profile
//  3. Upsert developer, replace session, seed portfolio (AuthService)
//  4. Respond with the frontend URL carrying the session token
//
// The response is JSON with a redirect_to field rather than a 302 — the
// frontend initiated the navigation and finishes it.
func (h *AuthHandler) HandleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	if h.github == nil {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "oauth_not_configured",
			Message: "GitHub OAuth is not configured",
		})
		return
	}

	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" {
		h.logger.Warn("auth callback: missing state cookie")
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_state",
			Message: "invalid OAuth state",
		})
		return
	}

	if r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("auth callback: state mismatch")
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_state",
			Message: "invalid OAuth state",
		})
		return
	}

	// The state cookie is single-use.
	http.SetCookie(w, &http.Cookie{
		Name:   stateCookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	// GitHub reports "user clicked deny" via an error query parameter.
	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("auth callback: authorization denied", slog.String("error", errParam))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "access_denied",
			Message: "GitHub authorization was denied",
		})
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "missing_code",
			Message: "missing OAuth code",
		})
		return
	}

	ghUser, err := h.github.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("auth callback: GitHub exchange failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "exchange_failed",
			Message: "failed to exchange OAuth code",
		})
		return
	}

	result, err := h.auth.LoginWithGitHub(r.Context(), ghUser)
	if err != nil {
		h.logger.Error("auth callback: login failed",
			slog.String("login", ghUser.Login),
			slog.String("error", err.Error()),
		)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "authentication failed",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"redirect_to": h.frontendURL + "/auth?token=" + result.Token,
	})
}

// HandleMe returns the authenticated developer's profile.
//
// HTTP: GET /me
// Auth: required (RequireAuth resolves the session to a developer)
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	dev, ok := auth.DeveloperFromContext(r.Context())
	if !ok {
		// Unreachable on a RequireAuth-protected route.
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "valid session token required",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": dev})
}

// HandleLogout revokes the caller's session server-side.
//
// HTTP: POST /auth/logout
// Auth: required
//
// Sessions are stored rows, not stateless tokens, so logout actually kills
// the token — it stops working on the next request, everywhere.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get(auth.SessionTokenHeader)

	if err := h.auth.Logout(r.Context(), token); err != nil {
		h.logger.Error("logout failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}
