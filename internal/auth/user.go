// Package auth handles accounts, sessions, and password-reset flows. The
// UserService and SessionService take an injectable Clock so expiry behavior
// is testable without sleeping.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	stdtime "time"

	"github.com/google/uuid"

	"github.com/PotatoBoi2658/notesapp/internal/config"
	"github.com/PotatoBoi2658/notesapp/internal/db"
	"github.com/PotatoBoi2658/notesapp/internal/email"
	"github.com/PotatoBoi2658/notesapp/internal/obs"
)

// Errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountExists      = errors.New("account already exists")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrEmailNotConfigured = errors.New("email delivery is not configured")
)

// Token expiry
const (
	ResetTokenExpiry = 15 * stdtime.Minute
)

// Roles. Administrators can read, edit, and delete every note; regular users
// only their own.
const (
	RoleUser          = "user"
	RoleAdministrator = "administrator"
)

// Clock abstracts time for testability.
type Clock interface {
	Now() stdtime.Time
}

// realClock implements Clock using the real system stdtime.
type realClock struct{}

func (realClock) Now() stdtime.Time { return stdtime.Now() }

// User represents a user account. It is the principal carried through request
// context and passed to the notes layer for access checks.
type User struct {
	ID        string
	Email     string
	Role      string
	CreatedAt stdtime.Time
}

// IsAdmin reports whether this account holds the administrator role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdministrator
}

// UserService handles user management operations.
type UserService struct {
	store   *db.Store
	cfg     *config.Config
	mailer  email.Mailer
	baseURL string
	clock   Clock
	hasher  PasswordHasher
	log     *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(store *db.Store, cfg *config.Config, mailer email.Mailer) *UserService {
	return &UserService{
		store:   store,
		cfg:     cfg,
		mailer:  mailer,
		baseURL: cfg.BaseURL,
		clock:   realClock{},
		hasher:  Argon2Hasher{},
		log:     obs.Pkg("auth"),
	}
}

// SetClock replaces the clock used by the service. Intended for testing.
func (s *UserService) SetClock(c Clock) {
	s.clock = c
}

// SetHasher replaces the password hasher. Intended for testing.
func (s *UserService) SetHasher(h PasswordHasher) {
	s.hasher = h
}

// Register creates a new account with email/password.
// Accounts whose address appears in the configured admin list are created with
// the administrator role. Returns ErrAccountExists for duplicate addresses.
func (s *UserService) Register(ctx context.Context, emailAddr, password string) (*User, error) {
	if err := ValidatePasswordStrength(password); err != nil {
		return nil, err
	}

	_, err := s.store.GetUserByEmail(ctx, emailAddr)
	if err == nil {
		return nil, ErrAccountExists
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("check account existence: %w", err)
	}

	passwordHash, err := s.hasher.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	role := RoleUser
	if s.cfg.IsAdminEmail(emailAddr) {
		role = RoleAdministrator
	}

	now := s.clock.Now()
	userID := "user-" + uuid.New().String()
	err = s.store.CreateUser(ctx, db.UserRow{
		ID:           userID,
		Email:        emailAddr,
		PasswordHash: sql.NullString{String: passwordHash, Valid: true},
		Role:         role,
		CreatedAt:    now.Unix(),
	})
	if err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	s.log.Info("account created", "user_id", userID, "role", role)
	return &User{
		ID:        userID,
		Email:     emailAddr,
		Role:      role,
		CreatedAt: now,
	}, nil
}

// VerifyLogin verifies email/password credentials for an existing account.
// Returns ErrInvalidCredentials if the user doesn't exist or the password is
// wrong, without distinguishing the two.
func (s *UserService) VerifyLogin(ctx context.Context, emailAddr, password string) (*User, error) {
	account, err := s.store.GetUserByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get account: %w", err)
	}

	if !account.PasswordHash.Valid || account.PasswordHash.String == "" {
		return nil, ErrInvalidCredentials
	}

	if !s.hasher.VerifyPassword(password, account.PasswordHash.String) {
		return nil, ErrInvalidCredentials
	}

	return userFromRow(account), nil
}

// GetByID loads an account by ID.
func (s *UserService) GetByID(ctx context.Context, userID string) (*User, error) {
	account, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	return userFromRow(account), nil
}

// SendPasswordReset sends a password reset email if an account with the given
// address exists. It reports success either way so callers cannot discover which
// addresses are registered; transport failures are logged, not surfaced.
// Returns ErrEmailNotConfigured when no email transport is available at all.
func (s *UserService) SendPasswordReset(ctx context.Context, emailAddr string) error {
	if !s.cfg.EmailConfigured() {
		return ErrEmailNotConfigured
	}

	account, err := s.store.GetUserByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// No such account. Pretend we sent something.
			return nil
		}
		return fmt.Errorf("get account: %w", err)
	}

	token, err := generateSecureToken(32)
	if err != nil {
		return fmt.Errorf("generate token: %w", err)
	}

	// Only the hash touches the database.
	tokenHash := hashToken(token)

	now := s.clock.Now()
	err = s.store.UpsertResetToken(ctx, db.ResetTokenRow{
		TokenHash: tokenHash,
		Email:     account.Email,
		UserID:    account.ID,
		ExpiresAt: now.Add(ResetTokenExpiry).Unix(),
		CreatedAt: now.Unix(),
	})
	if err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	link := fmt.Sprintf("%s/account/reset-password?token=%s", s.baseURL, token)
	err = s.mailer.Send(account.Email, email.TemplatePasswordReset, email.PasswordResetData{
		Link:      link,
		ExpiresIn: "15 minutes",
	})
	if err != nil {
		s.log.Warn("password reset email failed", "user_id", account.ID, "error", err.Error())
	}

	return nil
}

// ResetPassword sets a new password using a reset token. The token is consumed
// on success and on expiry.
func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := ValidatePasswordStrength(newPassword); err != nil {
		return err
	}

	tokenHash := hashToken(token)

	// Look up without SQL-level time filtering so the clock is testable.
	row, err := s.store.GetResetToken(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrInvalidToken
		}
		return fmt.Errorf("get reset token: %w", err)
	}

	if row.ExpiresAt <= s.clock.Now().Unix() {
		_ = s.store.DeleteResetToken(ctx, tokenHash)
		return ErrInvalidToken
	}

	passwordHash, err := s.hasher.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.store.UpdateUserPasswordHash(ctx, row.UserID, passwordHash); err != nil {
		return fmt.Errorf("update password hash: %w", err)
	}

	if err := s.store.DeleteResetToken(ctx, tokenHash); err != nil {
		return fmt.Errorf("delete reset token: %w", err)
	}

	// Existing sessions are invalidated when the password changes.
	if err := s.store.DeleteSessionsByUserID(ctx, row.UserID); err != nil {
		return fmt.Errorf("delete user sessions: %w", err)
	}

	s.log.Info("password reset", "user_id", row.UserID)
	return nil
}

// Helper functions

func userFromRow(row db.UserRow) *User {
	return &User{
		ID:        row.ID,
		Email:     row.Email,
		Role:      row.Role,
		CreatedAt: stdtime.Unix(row.CreatedAt, 0),
	}
}

func generateSecureToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(bytes), nil
}

func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return base64.URLEncoding.EncodeToString(hash[:])
}
