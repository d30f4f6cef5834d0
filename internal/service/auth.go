// Package service provides the storefront business logic, delegating
// persistence to repository interfaces.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atinyakov/GreenCart/internal/middleware"
	"github.com/atinyakov/GreenCart/internal/models"
	"github.com/atinyakov/GreenCart/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned when login or password do not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserExists is returned when signing up with a taken login.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidInput is returned for empty or oversized credentials.
	ErrInvalidInput = errors.New("invalid input")
)

// bcrypt ignores bytes past 72.
const maxPasswordLen = 72

// AuthRepository defines the persistence operations
// required by the authentication service.
type AuthRepository interface {
	// CreateUser stores a new user; returns repository.ErrConflict for a taken login.
	CreateUser(ctx context.Context, u models.User) error
	// GetUser returns repository.ErrNotFound for an unknown login.
	GetUser(ctx context.Context, login string) (*models.User, error)
	CreateSession(ctx context.Context, token, login string, expiresAt time.Time) error
	// GetSession returns repository.ErrNotFound for unknown or expired tokens.
	GetSession(ctx context.Context, token string, now time.Time) (*models.AuthSession, error)
	DeleteSession(ctx context.Context, token string) error
}

// AuthService is the identity provider: it registers users, issues
// bearer sessions and resolves them.
type AuthService struct {
	// repo performs the data-layer operations.
	repo AuthRepository
	ttl  time.Duration
	now  func() time.Time
	// newToken generates session tokens.
	newToken func() string
	// admins are logins granted the admin role regardless of the stored flag.
	admins map[string]bool
}

// NewAuthService constructs a new AuthService issuing sessions valid for ttl.
// Users whose login is listed in admins may manage products.
func NewAuthService(repo AuthRepository, ttl time.Duration, admins ...string) *AuthService {
	set := make(map[string]bool, len(admins))
	for _, a := range admins {
		if a = strings.TrimSpace(a); a != "" {
			set[a] = true
		}
	}
	return &AuthService{
		repo:     repo,
		ttl:      ttl,
		now:      func() time.Time { return time.Now().UTC() },
		newToken: uuid.NewString,
		admins:   set,
	}
}

// SignUp registers a new user. The display name defaults to the login.
func (s *AuthService) SignUp(ctx context.Context, login, password, displayName string) error {
	login = strings.TrimSpace(login)
	if login == "" || password == "" || len(password) > maxPasswordLen {
		return ErrInvalidInput
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if strings.TrimSpace(displayName) == "" {
		displayName = login
	}
	err = s.repo.CreateUser(ctx, models.User{Login: login, DisplayName: displayName, PasswordHash: hash, Admin: s.admins[login]})
	if errors.Is(err, repository.ErrConflict) {
		return ErrUserExists
	}
	return err
}

// SignIn verifies credentials and opens a new session.
func (s *AuthService) SignIn(ctx context.Context, login, password string) (*models.AuthSession, error) {
	u, err := s.repo.GetUser(ctx, strings.TrimSpace(login))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	sess := &models.AuthSession{
		UserID:      u.Login,
		DisplayName: u.DisplayName,
		Token:       s.newToken(),
		ExpiresAt:   s.now().Add(s.ttl),
		Admin:       u.Admin || s.admins[u.Login],
	}
	if err := s.repo.CreateSession(ctx, sess.Token, u.Login, sess.ExpiresAt); err != nil {
		return nil, err
	}
	return sess, nil
}

// SignOut ends the session identified by token.
func (s *AuthService) SignOut(ctx context.Context, token string) error {
	return s.repo.DeleteSession(ctx, token)
}

// Session resolves token; it returns middleware.ErrNoSession if the token is
// unknown or expired.
func (s *AuthService) Session(ctx context.Context, token string) (*models.AuthSession, error) {
	sess, err := s.repo.GetSession(ctx, token, s.now())
	if errors.Is(err, repository.ErrNotFound) {
		return nil, middleware.ErrNoSession
	}
	if err != nil {
		return nil, err
	}
	if s.admins[sess.UserID] {
		sess.Admin = true
	}
	return sess, nil
}
