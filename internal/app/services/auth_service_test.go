package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edafa/admissions/internal/app/models"
	"github.com/edafa/admissions/internal/pkg/apperrors"
	"github.com/edafa/admissions/internal/pkg/auth"
)

func newAuthFixture(t *testing.T) (*AuthService, *fakeUserStore) {
	t.Helper()

	users := &fakeUserStore{}
	hash, err := auth.HashPassword("Sup3r.Secret!")
	require.NoError(t, err)
	require.NoError(t, users.Create(context.Background(), &models.User{
		Email:        "staff@edafa.sa",
		PasswordHash: hash,
		Name:         "Admissions Officer",
		RoleType:     models.RoleStaff,
		Active:       true,
	}))

	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:      "test-secret",
		AccessTokenExp: time.Hour,
		TokenIssuer:    "admissions-test",
	})
	return NewAuthService(users, jwtService, zerolog.Nop()), users
}

func TestLogin(t *testing.T) {
	svc, _ := newAuthFixture(t)

	user, accessToken, expiresIn, err := svc.Login(context.Background(), "staff@edafa.sa", "Sup3r.Secret!")
	require.NoError(t, err)

	assert.Equal(t, "staff@edafa.sa", user.Email)
	assert.NotEmpty(t, accessToken)
	assert.Equal(t, int64(3600), expiresIn)
}

func TestLoginNormalizesEmail(t *testing.T) {
	svc, _ := newAuthFixture(t)

	user, _, _, err := svc.Login(context.Background(), "  STAFF@edafa.sa ", "Sup3r.Secret!")
	require.NoError(t, err)
	assert.Equal(t, "staff@edafa.sa", user.Email)
}

func TestLoginFailures(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(users *fakeUserStore)
		email    string
		password string
		wantErr  error
	}{
		{
			name:     "unknown email",
			email:    "nobody@edafa.sa",
			password: "Sup3r.Secret!",
			wantErr:  apperrors.ErrInvalidCredentials,
		},
		{
			name:     "wrong password",
			email:    "staff@edafa.sa",
			password: "wrong",
			wantErr:  apperrors.ErrInvalidCredentials,
		},
		{
			name:     "disabled account",
			mutate:   func(users *fakeUserStore) { users.users[0].Active = false },
			email:    "staff@edafa.sa",
			password: "Sup3r.Secret!",
			wantErr:  apperrors.ErrAccountDisabled,
		},
		{
			name:     "portal accounts cannot use the staff login",
			mutate:   func(users *fakeUserStore) { users.users[0].RoleType = models.RolePortal },
			email:    "staff@edafa.sa",
			password: "Sup3r.Secret!",
			wantErr:  apperrors.ErrPermissionDenied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, users := newAuthFixture(t)
			if tt.mutate != nil {
				tt.mutate(users)
			}

			_, _, _, err := svc.Login(context.Background(), tt.email, tt.password)
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, tt.wantErr), "want %v, got %v", tt.wantErr, err)
		})
	}
}
