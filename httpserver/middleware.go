package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ruteri/web3-dashboard-backend/auth"
	"github.com/ruteri/web3-dashboard-backend/interfaces"
)

type contextKey int

const (
	userIDContextKey contextKey = iota
	userContextKey
)

// UserIDFromContext returns the authenticated user id set by RequireSession.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDContextKey).(string)
	return id, ok && id != ""
}

// UserFromContext returns the user record set by RequireAdmin.
func UserFromContext(ctx context.Context) (*interfaces.User, bool) {
	user, ok := ctx.Value(userContextKey).(*interfaces.User)
	return user, ok
}

// bearerToken extracts the credential from an "Authorization: Bearer" header.
func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	return token, token != ""
}

// RequireSession rejects requests without a valid session token and
// attaches the user id to the request context. It does not touch the
// repository.
func RequireSession(sessions *auth.SessionIssuer, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				writeError(w, log, interfaces.ErrAuthenticationRequired)
				return
			}

			claims, err := sessions.Validate(token)
			if err != nil {
				writeError(w, log, err)
				return
			}

			ctx := context.WithValue(r.Context(), userIDContextKey, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin must run after RequireSession. The admin flag is read from
// the repository on every request.
func RequireAdmin(users interfaces.UserRepository, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := UserIDFromContext(r.Context())
			if !ok {
				writeError(w, log, interfaces.ErrAuthenticationRequired)
				return
			}

			user, err := users.GetUser(r.Context(), userID)
			if errors.Is(err, interfaces.ErrNotFound) {
				writeError(w, log, fmt.Errorf("%w: user %s no longer exists", interfaces.ErrAdminAccessRequired, userID))
				return
			}
			if err != nil {
				writeError(w, log, fmt.Errorf("could not load user: %w", err))
				return
			}

			if !user.IsAdmin {
				log.Warn("Non-admin requested admin route", "userID", userID, "path", r.URL.Path)
				writeError(w, log, interfaces.ErrAdminAccessRequired)
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
