package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harpreet-2146/FM-demo-sub001/internal/app/apptest"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/apperror"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/id"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/security"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/auth"
)

func TestLoginIssuesToken(t *testing.T) {
	env := apptest.New(t)
	u := env.User(t, security.RoleRetailer)

	token, user, err := env.Auth.Login(env.Ctx, auth.Credentials{Email: "  " + u.Email + " ", Password: apptest.Password})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", token.TokenType)
	assert.True(t, token.ExpiresAt.After(time.Now()))
	assert.NotNil(t, user.LastLoginAt)

	claims, err := env.JWT.ValidateToken(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID.String(), claims.UserID)
	assert.Equal(t, []string{string(security.RoleRetailer)}, claims.Roles)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := apptest.New(t)
	u := env.User(t, security.RoleManufacturer)

	_, _, err := env.Auth.Login(env.Ctx, auth.Credentials{Email: u.Email, Password: "wrong-password"})
	assert.True(t, apperror.HasCode(err, apperror.CodeUnauthorized), "got %v", err)

	_, _, err = env.Auth.Login(env.Ctx, auth.Credentials{Email: "nobody@example.com", Password: apptest.Password})
	assert.True(t, apperror.HasCode(err, apperror.CodeUnauthorized), "got %v", err)
}

func TestLoginLocksAfterRepeatedFailures(t *testing.T) {
	env := apptest.New(t)
	u := env.User(t, security.RoleRetailer)

	for range auth.DefaultServiceConfig().MaxLoginAttempts {
		_, _, err := env.Auth.Login(env.Ctx, auth.Credentials{Email: u.Email, Password: "wrong-password"})
		require.True(t, apperror.HasCode(err, apperror.CodeUnauthorized), "got %v", err)
	}

	_, _, err := env.Auth.Login(env.Ctx, auth.Credentials{Email: u.Email, Password: apptest.Password})
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden), "got %v", err)
}

func TestDisabledUserCannotLogin(t *testing.T) {
	env := apptest.New(t)
	u := env.User(t, security.RoleRetailer)

	_, err := env.Auth.SetActive(env.Ctx, env.Admin, u.ID, false)
	require.NoError(t, err)

	_, _, err = env.Auth.Login(env.Ctx, auth.Credentials{Email: u.Email, Password: apptest.Password})
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden), "got %v", err)

	_, err = env.Auth.SetActive(env.Ctx, env.Admin, env.Admin.ID, false)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidArgument), "got %v", err)
}

func TestCreateUserValidation(t *testing.T) {
	env := apptest.New(t)

	tests := []struct {
		name string
		req  auth.CreateUserRequest
		code string
	}{
		{"missing email", auth.CreateUserRequest{Name: "x", Role: security.RoleRetailer, Password: apptest.Password}, apperror.CodeInvalidArgument},
		{"unknown role", auth.CreateUserRequest{Email: "a@example.com", Role: "AUDITOR", Password: apptest.Password}, apperror.CodeInvalidArgument},
		{"short password", auth.CreateUserRequest{Email: "b@example.com", Role: security.RoleRetailer, Password: "short"}, apperror.CodeInvalidArgument},
		{"duplicate email", auth.CreateUserRequest{Email: "ADMIN@example.com", Role: security.RoleRetailer, Password: apptest.Password}, apperror.CodeConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.Auth.CreateUser(env.Ctx, env.Admin, tt.req)
			assert.True(t, apperror.HasCode(err, tt.code), "got %v", err)
		})
	}

	retailer := env.Retailer(t)
	_, err := env.Auth.CreateUser(env.Ctx, retailer, auth.CreateUserRequest{
		Email: "c@example.com", Role: security.RoleRetailer, Password: apptest.Password,
	})
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden), "got %v", err)
}

func TestBootstrapIsIdempotent(t *testing.T) {
	env := apptest.New(t)

	again, err := env.Auth.Bootstrap(env.Ctx, "other@example.com", "Other", apptest.Password)
	require.NoError(t, err)
	assert.Equal(t, env.Admin.ID, again.ID)
}

func TestDirectory(t *testing.T) {
	env := apptest.New(t)
	mfg := env.User(t, security.RoleManufacturer)
	retailer := env.User(t, security.RoleRetailer)

	got, err := env.Auth.ActiveUser(env.Ctx, mfg.ID, security.RoleManufacturer)
	require.NoError(t, err)
	assert.Equal(t, mfg.ID, got.ID)

	_, err = env.Auth.ActiveUser(env.Ctx, retailer.ID, security.RoleManufacturer)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidArgument), "got %v", err)

	ids, err := env.Auth.ListActiveByRole(env.Ctx, security.RoleRetailer)
	require.NoError(t, err)
	assert.Equal(t, []id.ID{retailer.ID}, ids)

	_, err = env.Auth.GetUser(env.Ctx, retailer.Actor(), mfg.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeForbidden), "got %v", err)

	self, err := env.Auth.GetUser(env.Ctx, retailer.Actor(), retailer.ID)
	require.NoError(t, err)
	assert.Equal(t, retailer.Email, self.Email)
}

func TestValidateTokenRejectsForeignSignature(t *testing.T) {
	env := apptest.New(t)
	u := env.User(t, security.RoleAdmin)

	other := auth.NewJWTService(auth.DefaultJWTConfig("another-secret"))
	token, _, err := other.GenerateAccessToken(u)
	require.NoError(t, err)

	_, err = env.JWT.ValidateToken(token)
	assert.Error(t, err)

	_, err = env.JWT.ValidateToken("not-a-token")
	assert.Error(t, err)
}
