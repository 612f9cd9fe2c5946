package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reportit-app/reportit-api/internal/models"
	"github.com/reportit-app/reportit-api/internal/repository"
	appErrors "github.com/reportit-app/reportit-api/pkg/errors"
)

func newAuthServiceFixture(t *testing.T) (*AuthService, *repository.MemoryStore) {
	t.Helper()
	store := repository.NewMemoryStore()
	service := NewAuthService(store, nil, nil, AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "reportit-test",
	})
	return service, store
}

func registerRequest() models.RegisterRequest {
	return models.RegisterRequest{
		Username: "alice",
		Password: "hunter22",
		Name:     "Alice Doe",
		Email:    "alice@example.com",
	}
}

func TestAuthServiceRegister(t *testing.T) {
	service, store := newAuthServiceFixture(t)

	resp, err := service.Register(context.Background(), registerRequest(), models.LoginRequest{})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, models.RoleUser, resp.User.Role)

	user, err := store.FindUserByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", user.PasswordHash)
	assert.Empty(t, user.Badges)
	assert.Zero(t, user.ReportCount)
}

func TestAuthServiceRegisterDuplicateUsername(t *testing.T) {
	service, _ := newAuthServiceFixture(t)

	_, err := service.Register(context.Background(), registerRequest(), models.LoginRequest{})
	require.NoError(t, err)

	_, err = service.Register(context.Background(), registerRequest(), models.LoginRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRegisterValidation(t *testing.T) {
	service, _ := newAuthServiceFixture(t)

	req := registerRequest()
	req.Password = "short"
	_, err := service.Register(context.Background(), req, models.LoginRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLogin(t *testing.T) {
	service, _ := newAuthServiceFixture(t)

	_, err := service.Register(context.Background(), registerRequest(), models.LoginRequest{})
	require.NoError(t, err)

	resp, err := service.Login(context.Background(), models.LoginRequest{Username: "alice", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, "alice", resp.User.Username)

	claims, err := service.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, models.RoleUser, claims.Role)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	service, _ := newAuthServiceFixture(t)

	_, err := service.Register(context.Background(), registerRequest(), models.LoginRequest{})
	require.NoError(t, err)

	_, err = service.Login(context.Background(), models.LoginRequest{Username: "alice", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginUnknownUser(t *testing.T) {
	service, _ := newAuthServiceFixture(t)

	_, err := service.Login(context.Background(), models.LoginRequest{Username: "nobody", Password: "whatever"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRefreshRotatesToken(t *testing.T) {
	service, _ := newAuthServiceFixture(t)

	login, err := service.Register(context.Background(), registerRequest(), models.LoginRequest{})
	require.NoError(t, err)

	refreshed, err := service.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// The presented token is single use.
	_, err = service.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLogoutRevokesToken(t *testing.T) {
	service, _ := newAuthServiceFixture(t)

	login, err := service.Register(context.Background(), registerRequest(), models.LoginRequest{})
	require.NoError(t, err)

	require.NoError(t, service.Logout(context.Background(), login.RefreshToken, login.User.ID))

	_, err = service.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.Error(t, err)
}

func TestAuthServiceLogoutWrongUser(t *testing.T) {
	service, _ := newAuthServiceFixture(t)

	login, err := service.Register(context.Background(), registerRequest(), models.LoginRequest{})
	require.NoError(t, err)

	err = service.Logout(context.Background(), login.RefreshToken, login.User.ID+1)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceValidateTokenRejectsGarbage(t *testing.T) {
	service, _ := newAuthServiceFixture(t)

	_, err := service.ValidateToken("not-a-token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
