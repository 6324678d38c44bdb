package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/edafa/admissions/internal/app/models"
	"github.com/edafa/admissions/internal/app/repositories"
	"github.com/edafa/admissions/internal/pkg/apperrors"
	"github.com/edafa/admissions/internal/pkg/auth"
)

// AuthService authenticates staff users for the back-office API.
type AuthService struct {
	userStore UserStore
	jwt       *auth.JWTService
	logger    zerolog.Logger
}

// NewAuthService creates a new auth service instance
func NewAuthService(userStore UserStore, jwt *auth.JWTService, logger zerolog.Logger) *AuthService {
	return &AuthService{userStore: userStore, jwt: jwt, logger: logger}
}

// Login verifies staff credentials and mints an access token. Portal accounts
// cannot sign in here.
func (s *AuthService) Login(ctx context.Context, loginEmail, password string) (*models.User, string, int64, error) {
	loginEmail = strings.TrimSpace(strings.ToLower(loginEmail))

	user, err := s.userStore.GetByEmail(ctx, loginEmail)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, "", 0, apperrors.ErrInvalidCredentials
		}
		return nil, "", 0, err
	}

	if !user.Active {
		return nil, "", 0, apperrors.ErrAccountDisabled
	}
	if user.RoleType != models.RoleStaff {
		return nil, "", 0, apperrors.ErrPermissionDenied
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		s.logger.Warn().Str("email", loginEmail).Msg("Failed login attempt")
		return nil, "", 0, apperrors.ErrInvalidCredentials
	}

	token, expiresIn, err := s.jwt.GenerateToken(user)
	if err != nil {
		return nil, "", 0, err
	}
	return user, token, expiresIn, nil
}
