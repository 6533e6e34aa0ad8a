package dto

import (
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/security"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/auth"
)

// LoginRequest for user login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ToCredentials converts to domain credentials.
func (r *LoginRequest) ToCredentials() auth.Credentials {
	return auth.Credentials{Email: r.Email, Password: r.Password}
}

// LoginResponse carries the access token and the signed-in user.
type LoginResponse struct {
	*auth.Token
	User *auth.User `json:"user"`
}

// CreateUserRequest for an admin creating an account.
type CreateUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required,max=200"`
	Role     string `json:"role" binding:"required,oneof=ADMIN MANUFACTURER RETAILER"`
	Password string `json:"password" binding:"required,min=8"`
}

// ToDomain converts to the domain request.
func (r *CreateUserRequest) ToDomain() auth.CreateUserRequest {
	return auth.CreateUserRequest{
		Email:    r.Email,
		Name:     r.Name,
		Role:     security.Role(r.Role),
		Password: r.Password,
	}
}

// UserListQuery filters the user list.
type UserListQuery struct {
	PageQuery
	Role       string `form:"role" binding:"omitempty,oneof=ADMIN MANUFACTURER RETAILER"`
	ActiveOnly bool   `form:"activeOnly"`
}

// ToFilter converts to the domain filter.
func (q *UserListQuery) ToFilter() auth.UserFilter {
	page := q.ToPage()
	return auth.UserFilter{
		Role:       security.Role(q.Role),
		ActiveOnly: q.ActiveOnly,
		Limit:      page.Limit,
		Offset:     page.Offset,
	}
}
