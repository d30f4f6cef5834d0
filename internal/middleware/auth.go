// Package middleware provides HTTP middlewares for authentication and logging.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/atinyakov/GreenCart/internal/models"
)

type ctxKey string

const (
	userKey    ctxKey = "user"
	tokenKey   ctxKey = "token"
	sessionKey ctxKey = "session"
)

// ErrNoSession is returned by a SessionResolver when the token is unknown or expired.
var ErrNoSession = errors.New("no active session")

// SessionResolver resolves a bearer token to the session it identifies.
type SessionResolver interface {
	Session(ctx context.Context, token string) (*models.AuthSession, error)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
// Returns an empty string if the header is missing or malformed.
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(h[len(prefix):])
}

// RequireSession is a middleware that enforces bearer-token authentication.
//
// It resolves the token through resolver and, on success, stores the user ID
// and token in the request context so handlers can read them with
// GetUserIDFromContext and GetTokenFromContext.
func RequireSession(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				http.Error(w, "authorization required", http.StatusUnauthorized)
				return
			}
			sess, err := resolver.Session(r.Context(), token)
			if errors.Is(err, ErrNoSession) {
				http.Error(w, "session expired", http.StatusUnauthorized)
				return
			}
			if err != nil {
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			ctx := context.WithValue(r.Context(), userKey, sess.UserID)
			ctx = context.WithValue(ctx, tokenKey, token)
			ctx = context.WithValue(ctx, sessionKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects requests whose session lacks the admin role with 403.
// It must run after RequireSession.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := GetSessionFromContext(r.Context())
		if sess == nil || !sess.Admin {
			http.Error(w, "admin only", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetUserIDFromContext extracts the authenticated user ID from the request
// context. Returns an empty string if not found.
func GetUserIDFromContext(ctx context.Context) string {
	val := ctx.Value(userKey)
	if s, ok := val.(string); ok {
		return s
	}
	return ""
}

// GetTokenFromContext extracts the bearer token stored by RequireSession.
func GetTokenFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(tokenKey).(string); ok {
		return s
	}
	return ""
}

// GetSessionFromContext returns the session stored by RequireSession, or nil.
func GetSessionFromContext(ctx context.Context) *models.AuthSession {
	sess, _ := ctx.Value(sessionKey).(*models.AuthSession)
	return sess
}
