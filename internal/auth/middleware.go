package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/nikita1503agarwal/devfolio/internal/apperror"
	"github.com/nikita1503agarwal/devfolio/internal/model"
	"github.com/nikita1503agarwal/devfolio/internal/repository"
)

// SessionTokenHeader carries the opaque session token on authenticated
// requests. The frontend receives the token in the post-login redirect and
// attaches it to every API call.
const SessionTokenHeader = "X-Session-Token"

// contextKey is an unexported type used for context keys in this package.
// A package-private key type means only this package can read or write the
// developer value — no collisions with other packages' context values.
type contextKey string

const developerKey contextKey = "developer"

// RequireAuth enforces authentication on protected routes.
//
// It reads the X-Session-Token header, resolves it to a session, then to a
// developer, and stores the developer in the request context. Missing,
// unknown, and expired tokens — and a session whose developer has vanished —
// all produce the same 401. A repository failure is not a bad credential,
// so it surfaces as a 500 instead.
func RequireAuth(sessions *SessionService, developers repository.DeveloperRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(SessionTokenHeader)

			sess, err := sessions.Resolve(r.Context(), token)
			if err != nil {
				if errors.Is(err, apperror.ErrUnauthorized) {
					unauthorized(w)
				} else {
					internalError(w)
				}
				return
			}

			dev, err := developers.GetByUsername(r.Context(), sess.Username)
			if err != nil {
				if errors.Is(err, apperror.ErrNotFound) {
					unauthorized(w)
				} else {
					internalError(w)
				}
				return
			}

			ctx := context.WithValue(r.Context(), developerKey, dev)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// DeveloperFromContext retrieves the authenticated developer from the
// request context. Returns (nil, false) on routes without RequireAuth.
func DeveloperFromContext(ctx context.Context) (*model.Developer, bool) {
	dev, ok := ctx.Value(developerKey).(*model.Developer)
	return dev, ok && dev != nil
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"unauthorized","message":"valid session token required"}`))
}

func internalError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	w.Write([]byte(`{"error":"internal_error","message":"An internal error occurred"}`))
}
