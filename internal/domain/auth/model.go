// Package auth provides user accounts, login and the user directory.
package auth

import (
	"strings"
	"time"

	"github.com/harpreet-2146/FM-demo-sub001/internal/core/apperror"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/id"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/security"
)

// User represents a system user. Every user holds exactly one role.
type User struct {
	ID                  id.ID         `db:"id" json:"id"`
	Email               string        `db:"email" json:"email"`
	Name                string        `db:"name" json:"name"`
	Role                security.Role `db:"role" json:"role"`
	PasswordHash        string        `db:"password_hash" json:"-"`
	IsActive            bool          `db:"is_active" json:"isActive"`
	LastLoginAt         *time.Time    `db:"last_login_at" json:"lastLoginAt,omitempty"`
	FailedLoginAttempts int           `db:"failed_login_attempts" json:"-"`
	LockedUntil         *time.Time    `db:"locked_until" json:"-"`
	CreatedAt           time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt           time.Time     `db:"updated_at" json:"updatedAt"`
}

// NewUser creates an active user.
func NewUser(email, name string, role security.Role, passwordHash string) *User {
	now := time.Now().UTC()
	return &User{
		ID:           id.New(),
		Email:        NormalizeEmail(email),
		Name:         strings.TrimSpace(name),
		Role:         role,
		PasswordHash: passwordHash,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NormalizeEmail lower-cases and trims an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Actor returns the capability identity of the user.
func (u *User) Actor() security.Actor {
	return security.NewActor(u.ID, u.Role)
}

// IsLocked returns true if account is locked.
func (u *User) IsLocked() bool {
	if u.LockedUntil == nil {
		return false
	}
	return time.Now().Before(*u.LockedUntil)
}

// CanLogin checks if user can login.
func (u *User) CanLogin() error {
	if !u.IsActive {
		return apperror.NewForbidden("account is disabled")
	}
	if u.IsLocked() {
		return apperror.NewForbidden("account is temporarily locked")
	}
	return nil
}

// RecordFailedLogin increments failed login counter and locks the account at maxAttempts.
func (u *User) RecordFailedLogin(maxAttempts int, lockDuration time.Duration) {
	u.FailedLoginAttempts++
	if u.FailedLoginAttempts >= maxAttempts {
		lockUntil := time.Now().Add(lockDuration)
		u.LockedUntil = &lockUntil
	}
}

// RecordSuccessfulLogin resets failed login counter.
func (u *User) RecordSuccessfulLogin() {
	u.FailedLoginAttempts = 0
	u.LockedUntil = nil
	now := time.Now().UTC()
	u.LastLoginAt = &now
}

// Credentials for login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateUserRequest is the admin input for a new account.
type CreateUserRequest struct {
	Email    string        `json:"email"`
	Name     string        `json:"name"`
	Role     security.Role `json:"role"`
	Password string        `json:"password"`
}

// Token is an issued access token.
type Token struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
	TokenType   string    `json:"tokenType"`
}
