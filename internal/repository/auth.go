// Package repository provides PostgreSQL persistence for the identity
// provider and the product document store.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/atinyakov/GreenCart/internal/models"
	"github.com/lib/pq"
)

// ErrNotFound is returned when the requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a unique key is already taken.
var ErrConflict = errors.New("already exists")

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// PostgresAuthRepository stores users and their sessions in PostgreSQL.
type PostgresAuthRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresAuthRepository creates a new PostgresAuthRepository with the given database connection.
// db must be a valid *sql.DB connected to a PostgreSQL instance.
func NewPostgresAuthRepository(db *sql.DB) *PostgresAuthRepository {
	return &PostgresAuthRepository{DB: db}
}

// CreateUser inserts a new user. Returns ErrConflict if the login is taken.
func (r *PostgresAuthRepository) CreateUser(ctx context.Context, u models.User) error {
	_, err := r.DB.ExecContext(
		ctx,
		`INSERT INTO users (login, display_name, password_hash, is_admin) VALUES ($1, $2, $3, $4)`,
		u.Login, u.DisplayName, u.PasswordHash, u.Admin,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return ErrConflict
	}
	if err != nil {
		return fmt.Errorf("CreateUser: %w", err)
	}
	return nil
}

// GetUser fetches a user by login. Returns ErrNotFound if absent.
func (r *PostgresAuthRepository) GetUser(ctx context.Context, login string) (*models.User, error) {
	var u models.User
	err := r.DB.QueryRowContext(
		ctx,
		`SELECT login, display_name, password_hash, is_admin FROM users WHERE login = $1`,
		login,
	).Scan(&u.Login, &u.DisplayName, &u.PasswordHash, &u.Admin)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetUser: %w", err)
	}
	return &u, nil
}

// CreateSession records a session token for login valid until expiresAt.
func (r *PostgresAuthRepository) CreateSession(ctx context.Context, token, login string, expiresAt time.Time) error {
	_, err := r.DB.ExecContext(
		ctx,
		`INSERT INTO sessions (token, user_login, expires_at) VALUES ($1, $2, $3)`,
		token, login, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("CreateSession: %w", err)
	}
	return nil
}

// GetSession resolves an unexpired token to its session.
// Returns ErrNotFound if the token is unknown or expired at now.
func (r *PostgresAuthRepository) GetSession(ctx context.Context, token string, now time.Time) (*models.AuthSession, error) {
	var s models.AuthSession
	err := r.DB.QueryRowContext(ctx, `
		SELECT s.token, u.login, u.display_name, u.is_admin, s.expires_at
		  FROM sessions s JOIN users u ON u.login = s.user_login
		 WHERE s.token = $1 AND s.expires_at > $2
	`, token, now).Scan(&s.Token, &s.UserID, &s.DisplayName, &s.Admin, &s.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetSession: %w", err)
	}
	return &s, nil
}

// DeleteSession removes a session. Deleting an unknown token is not an error.
func (r *PostgresAuthRepository) DeleteSession(ctx context.Context, token string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("DeleteSession: %w", err)
	}
	return nil
}
