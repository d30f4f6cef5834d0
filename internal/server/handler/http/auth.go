// Package http provides the HTTP handlers of the storefront API.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/atinyakov/GreenCart/internal/middleware"
	"github.com/atinyakov/GreenCart/internal/models"
	"github.com/atinyakov/GreenCart/internal/service"
)

// AuthService defines the identity-provider operations required by the HTTP handlers.
type AuthService interface {
	// SignUp registers a new user.
	SignUp(ctx context.Context, login, password, displayName string) error
	// SignIn verifies credentials and opens a session.
	SignIn(ctx context.Context, login, password string) (*models.AuthSession, error)
	// SignOut ends the session identified by token.
	SignOut(ctx context.Context, token string) error
	// Session resolves a token to its session.
	Session(ctx context.Context, token string) (*models.AuthSession, error)
}

// AuthHandler handles HTTP requests for sign-up, sign-in and sessions.
type AuthHandler struct {
	// AuthService performs the underlying authentication operations.
	AuthService AuthService
}

// CredentialsRequest represents the JSON payload for sign-up and sign-in.
type CredentialsRequest struct {
	Login       string `json:"login"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// SignUp handles POST /api/auth/signup.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Login == "" || req.Password == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	err := h.AuthService.SignUp(r.Context(), req.Login, req.Password, req.DisplayName)
	switch {
	case errors.Is(err, service.ErrUserExists):
		http.Error(w, "user already exists", http.StatusConflict)
	case errors.Is(err, service.ErrInvalidInput):
		http.Error(w, "invalid request", http.StatusBadRequest)
	case err != nil:
		http.Error(w, "internal error", http.StatusInternalServerError)
	default:
		writeJSON(w, http.StatusCreated, map[string]string{"status": "ok", "user": req.Login})
	}
}

// SignIn handles POST /api/auth/signin and returns the new session with its token.
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Login == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	sess, err := h.AuthService.SignIn(r.Context(), req.Login, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// SignOut handles POST /api/auth/signout. Requires RequireSession.
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.AuthService.SignOut(r.Context(), middleware.GetTokenFromContext(r.Context())); err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Session handles GET /api/auth/session. Requires RequireSession.
// The token is not echoed back.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	sess, err := h.AuthService.Session(r.Context(), middleware.GetTokenFromContext(r.Context()))
	if errors.Is(err, middleware.ErrNoSession) {
		http.Error(w, "session expired", http.StatusUnauthorized)
		return
	}
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	out := *sess
	out.Token = ""
	writeJSON(w, http.StatusOK, out)
}
