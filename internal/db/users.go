package db

import (
	"context"
	"database/sql"
)

// UserRow is a row in the users table.
type UserRow struct {
	ID           string
	Email        string
	PasswordHash sql.NullString
	Role         string
	CreatedAt    int64
}

// SessionRow is a row in the sessions table.
type SessionRow struct {
	SessionID string
	UserID    string
	ExpiresAt int64
	CreatedAt int64
}

// ResetTokenRow is a row in the reset_tokens table. TokenHash stores a SHA-256
// of the token sent by email; the plaintext never touches the database.
type ResetTokenRow struct {
	TokenHash string
	Email     string
	UserID    string
	ExpiresAt int64
	CreatedAt int64
}

// CreateUser inserts a new account record.
func (s *Store) CreateUser(ctx context.Context, row UserRow) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, role, created_at) VALUES (?, ?, ?, ?, ?)`,
		row.ID, row.Email, row.PasswordHash, row.Role, row.CreatedAt)
	return err
}

// GetUserByEmail returns the account with the given email, or sql.ErrNoRows.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (UserRow, error) {
	var row UserRow
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, role, created_at FROM users WHERE email = ?`,
		email).Scan(&row.ID, &row.Email, &row.PasswordHash, &row.Role, &row.CreatedAt)
	return row, err
}

// GetUserByID returns the account with the given ID, or sql.ErrNoRows.
func (s *Store) GetUserByID(ctx context.Context, id string) (UserRow, error) {
	var row UserRow
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, role, created_at FROM users WHERE id = ?`,
		id).Scan(&row.ID, &row.Email, &row.PasswordHash, &row.Role, &row.CreatedAt)
	return row, err
}

// UpdateUserPasswordHash replaces the stored password hash for a user.
func (s *Store) UpdateUserPasswordHash(ctx context.Context, userID, passwordHash string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE id = ?`, passwordHash, userID)
	return err
}

// UpsertSession stores a session, replacing any existing row with the same ID.
func (s *Store) UpsertSession(ctx context.Context, row SessionRow) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (session_id, user_id, expires_at, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(session_id) DO UPDATE SET user_id = excluded.user_id,
		   expires_at = excluded.expires_at, created_at = excluded.created_at`,
		row.SessionID, row.UserID, row.ExpiresAt, row.CreatedAt)
	return err
}

// GetSession returns the session row without filtering on expiry, so callers
// can check expiration against an injectable clock.
func (s *Store) GetSession(ctx context.Context, sessionID string) (SessionRow, error) {
	var row SessionRow
	err := s.db.QueryRowContext(ctx,
		`SELECT session_id, user_id, expires_at, created_at FROM sessions WHERE session_id = ?`,
		sessionID).Scan(&row.SessionID, &row.UserID, &row.ExpiresAt, &row.CreatedAt)
	return row, err
}

// DeleteSession removes a session (logout).
func (s *Store) DeleteSession(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE session_id = ?`, sessionID)
	return err
}

// DeleteSessionsByUserID removes all sessions for a user.
func (s *Store) DeleteSessionsByUserID(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ?`, userID)
	return err
}

// DeleteExpiredSessions removes sessions that expired at or before cutoff.
func (s *Store) DeleteExpiredSessions(ctx context.Context, cutoff int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, cutoff)
	return err
}

// UpsertResetToken stores a hashed password-reset token.
func (s *Store) UpsertResetToken(ctx context.Context, row ResetTokenRow) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reset_tokens (token_hash, email, user_id, expires_at, created_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(token_hash) DO UPDATE SET email = excluded.email, user_id = excluded.user_id,
		   expires_at = excluded.expires_at, created_at = excluded.created_at`,
		row.TokenHash, row.Email, row.UserID, row.ExpiresAt, row.CreatedAt)
	return err
}

// GetResetToken returns a reset token row by hash, without expiry filtering.
func (s *Store) GetResetToken(ctx context.Context, tokenHash string) (ResetTokenRow, error) {
	var row ResetTokenRow
	err := s.db.QueryRowContext(ctx,
		`SELECT token_hash, email, user_id, expires_at, created_at FROM reset_tokens WHERE token_hash = ?`,
		tokenHash).Scan(&row.TokenHash, &row.Email, &row.UserID, &row.ExpiresAt, &row.CreatedAt)
	return row, err
}

// DeleteResetToken consumes a reset token.
func (s *Store) DeleteResetToken(ctx context.Context, tokenHash string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM reset_tokens WHERE token_hash = ?`, tokenHash)
	return err
}
