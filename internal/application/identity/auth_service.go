package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Replicator56/mini-crm/internal/domain/identity"
	"github.com/Replicator56/mini-crm/internal/domain/shared"
	"github.com/Replicator56/mini-crm/internal/infrastructure/logger"
	"github.com/Replicator56/mini-crm/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ErrEmailTaken is returned when registering an email that already exists
var ErrEmailTaken = shared.NewConflictError("An account with this email already exists.")

// AuthService handles registration and credential checks.
// Session handling stays in the HTTP layer.
type AuthService struct {
	users  identity.UserRepository
	logger *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(users identity.UserRepository, logger *zap.Logger) *AuthService {
	return &AuthService{users: users, logger: logger}
}

// Register validates the input, hashes the password and stores the user
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*UserInfo, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "auth", "register")
	defer span.End()

	user, err := identity.NewUser(input.Name, input.Email, input.Password)
	if err != nil {
		return nil, err
	}

	exists, err := s.users.ExistsByEmail(ctx, user.Email)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		s.log(ctx).Info("Registration rejected, email taken")
		return nil, ErrEmailTaken
	}

	if err := s.users.Create(ctx, user); err != nil {
		// A concurrent registration can still win the unique index.
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, ErrEmailTaken
		}
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.log(ctx).Info("User registered", zap.String("user_id", user.ID.String()))
	return toUserInfo(user), nil
}

// Login returns the user whose credentials match. Unknown email and wrong
// password produce the same error.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*UserInfo, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "auth", "login")
	defer span.End()

	email := shared.NormalizeEmail(input.Email)
	if email == "" || strings.TrimSpace(input.Password) == "" {
		return nil, shared.NewValidationError("Email and password are required.")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.log(ctx).Warn("Login failed, unknown email")
			return nil, shared.ErrInvalidCredentials
		}
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !user.VerifyPassword(input.Password) {
		s.log(ctx).Warn("Login failed, bad password", zap.String("user_id", user.ID.String()))
		return nil, shared.ErrInvalidCredentials
	}

	s.log(ctx).Info("User logged in", zap.String("user_id", user.ID.String()))
	return toUserInfo(user), nil
}

func (s *AuthService) log(ctx context.Context) *zap.Logger {
	return logger.ForContext(ctx, s.logger)
}
