package auth

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/harpreet-2146/FM-demo-sub001/internal/core/apperror"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/id"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/security"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/tx"
	"github.com/harpreet-2146/FM-demo-sub001/pkg/logger"
)

// ServiceConfig holds auth service configuration.
type ServiceConfig struct {
	MaxLoginAttempts  int
	LockDuration      time.Duration
	PasswordMinLength int
	// BcryptCost overrides bcrypt.DefaultCost when non-zero.
	BcryptCost int
}

// DefaultServiceConfig returns default configuration.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		MaxLoginAttempts:  5,
		LockDuration:      15 * time.Minute,
		PasswordMinLength: 8,
	}
}

// Service provides login, account administration and the user directory.
type Service struct {
	userRepo   UserRepository
	txManager  tx.Manager
	jwtService *JWTService
	config     ServiceConfig
}

// NewService creates a new auth service.
func NewService(userRepo UserRepository, txManager tx.Manager, jwtService *JWTService, config ServiceConfig) *Service {
	return &Service{
		userRepo:   userRepo,
		txManager:  txManager,
		jwtService: jwtService,
		config:     config,
	}
}

// CreateUser registers an account. Admin only.
func (s *Service) CreateUser(ctx context.Context, actor security.Actor, req CreateUserRequest) (*User, error) {
	if err := security.Require(actor, security.RoleAdmin); err != nil {
		return nil, err
	}
	return s.createUser(ctx, req)
}

// Bootstrap creates the first admin when no admin exists yet. It is a no-op otherwise.
func (s *Service) Bootstrap(ctx context.Context, email, name, password string) (*User, error) {
	admins, err := s.userRepo.ListActiveByRole(ctx, security.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	if len(admins) > 0 {
		return &admins[0], nil
	}
	return s.createUser(ctx, CreateUserRequest{Email: email, Name: name, Role: security.RoleAdmin, Password: password})
}

func (s *Service) createUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	if NormalizeEmail(req.Email) == "" {
		return nil, apperror.NewInvalidArgument("email is required").WithDetail("field", "email")
	}
	role, err := security.ParseRole(string(req.Role))
	if err != nil {
		return nil, err
	}
	if len(req.Password) < s.config.PasswordMinLength {
		return nil, apperror.NewInvalidArgument(
			fmt.Sprintf("password must be at least %d characters", s.config.PasswordMinLength),
		).WithDetail("field", "password")
	}

	cost := s.config.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := NewUser(req.Email, req.Name, role, string(passwordHash))

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		exists, err := s.userRepo.Exists(ctx, user.Email)
		if err != nil {
			return fmt.Errorf("check email exists: %w", err)
		}
		if exists {
			return apperror.NewDuplicate("user", "email", user.Email)
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "user created", "user_id", user.ID, "role", user.Role)
	return user, nil
}

// Login authenticates by email and password and issues an access token.
func (s *Service) Login(ctx context.Context, creds Credentials) (*Token, *User, error) {
	user, err := s.userRepo.GetByEmail(ctx, NormalizeEmail(creds.Email))
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, nil, apperror.NewUnauthorized("invalid credentials")
		}
		return nil, nil, fmt.Errorf("get user: %w", err)
	}
	if err := user.CanLogin(); err != nil {
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		user.RecordFailedLogin(s.config.MaxLoginAttempts, s.config.LockDuration)
		if uerr := s.userRepo.Update(ctx, user); uerr != nil {
			logger.Warn(ctx, "failed to record login attempt", "error", uerr)
		}
		return nil, nil, apperror.NewUnauthorized("invalid credentials")
	}

	user.RecordSuccessfulLogin()
	if err := s.userRepo.Update(ctx, user); err != nil {
		logger.Warn(ctx, "failed to record login", "error", err)
	}

	accessToken, expiresAt, err := s.jwtService.GenerateAccessToken(user)
	if err != nil {
		return nil, nil, fmt.Errorf("generate token: %w", err)
	}

	logger.Info(ctx, "user logged in", "user_id", user.ID)
	return &Token{AccessToken: accessToken, ExpiresAt: expiresAt, TokenType: "Bearer"}, user, nil
}

// SetActive enables or disables an account. Admin only; admins cannot disable themselves.
func (s *Service) SetActive(ctx context.Context, actor security.Actor, userID id.ID, active bool) (*User, error) {
	if err := security.Require(actor, security.RoleAdmin); err != nil {
		return nil, err
	}
	if actor.Is(userID) && !active {
		return nil, apperror.NewInvalidArgument("cannot deactivate your own account")
	}

	var user *User
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		user, err = s.userRepo.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		user.IsActive = active
		user.UpdatedAt = time.Now().UTC()
		return s.userRepo.Update(ctx, user)
	})
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "user activation changed", "user_id", userID, "active", active)
	return user, nil
}

// GetUser returns a user. Non-admins may only read themselves.
func (s *Service) GetUser(ctx context.Context, actor security.Actor, userID id.ID) (*User, error) {
	if err := security.RequireOwner(actor, userID, "user"); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, userID)
}

// ListUsers lists accounts. Admin only.
func (s *Service) ListUsers(ctx context.Context, actor security.Actor, filter UserFilter) ([]User, error) {
	if err := security.Require(actor, security.RoleAdmin); err != nil {
		return nil, err
	}
	return s.userRepo.List(ctx, filter)
}

// ActiveUser returns userID if it is an active user holding role.
// Unknown, inactive or wrong-role users are InvalidArgument.
func (s *Service) ActiveUser(ctx context.Context, userID id.ID, role security.Role) (*User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewInvalidArgument(fmt.Sprintf("unknown %s", roleNoun(role))).
				WithDetail("user_id", userID)
		}
		return nil, err
	}
	if !user.IsActive || user.Role != role {
		return nil, apperror.NewInvalidArgument(fmt.Sprintf("user is not an active %s", roleNoun(role))).
			WithDetail("user_id", userID)
	}
	return user, nil
}

// ListActiveByRole returns the ids of active users holding role.
func (s *Service) ListActiveByRole(ctx context.Context, role security.Role) ([]id.ID, error) {
	users, err := s.userRepo.ListActiveByRole(ctx, role)
	if err != nil {
		return nil, fmt.Errorf("list users by role: %w", err)
	}
	ids := make([]id.ID, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	return ids, nil
}

func roleNoun(role security.Role) string {
	switch role {
	case security.RoleManufacturer:
		return "manufacturer"
	case security.RoleRetailer:
		return "retailer"
	}
	return "admin"
}
