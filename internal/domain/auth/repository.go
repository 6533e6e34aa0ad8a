package auth

import (
	"context"

	"github.com/harpreet-2146/FM-demo-sub001/internal/core/id"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/security"
)

// UserRepository defines user storage operations.
type UserRepository interface {
	// Create inserts a user. A taken email is a Conflict.
	Create(ctx context.Context, user *User) error

	GetByID(ctx context.Context, userID id.ID) (*User, error)

	// GetByEmail looks up a normalized email.
	GetByEmail(ctx context.Context, email string) (*User, error)

	Update(ctx context.Context, user *User) error

	List(ctx context.Context, filter UserFilter) ([]User, error)

	// ListActiveByRole returns active users holding role, oldest first.
	ListActiveByRole(ctx context.Context, role security.Role) ([]User, error)

	// Exists checks if email is taken.
	Exists(ctx context.Context, email string) (bool, error)
}

// UserFilter narrows user listings.
type UserFilter struct {
	Role       security.Role
	ActiveOnly bool
	Limit      int
	Offset     int
}

// Directory is the read side of the user store consumed by the workflows.
// Service implements it.
type Directory interface {
	ActiveUser(ctx context.Context, userID id.ID, role security.Role) (*User, error)
	ListActiveByRole(ctx context.Context, role security.Role) ([]id.ID, error)
}
