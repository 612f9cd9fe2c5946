package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reportit-app/reportit-api/internal/models"
	"github.com/reportit-app/reportit-api/internal/repository"
	appErrors "github.com/reportit-app/reportit-api/pkg/errors"
)

func TestUserServiceProfile(t *testing.T) {
	store := repository.NewMemoryStore()
	user := &models.User{
		Username:     "alice",
		PasswordHash: "x",
		Name:         "Alice Doe",
		Email:        "alice@example.com",
		Role:         models.RoleUser,
	}
	require.NoError(t, store.CreateUser(context.Background(), user))

	user.ReportCount = 6
	user.Badges = []string{"first-report", "active-reporter"}
	require.NoError(t, store.UpdateUserActivity(context.Background(), user))

	service := NewUserService(store, nil)
	profile, err := service.Profile(context.Background(), user.ID)
	require.NoError(t, err)

	require.Len(t, profile.Badges, 2)
	assert.Equal(t, "first-report", profile.Badges[0].ID)
	assert.Equal(t, "active-reporter", profile.Badges[1].ID)

	require.Len(t, profile.Progress, len(models.BadgeDefinitions))
	byID := make(map[string]int)
	for i, p := range profile.Progress {
		byID[p.Badge.ID] = i
	}

	superReporter := profile.Progress[byID["super-reporter"]]
	assert.False(t, superReporter.Earned)
	assert.Equal(t, 6, superReporter.Current)
	assert.Equal(t, 10, superReporter.Target)

	// Counters are clamped to the threshold for already earned badges.
	firstReport := profile.Progress[byID["first-report"]]
	assert.True(t, firstReport.Earned)
	assert.Equal(t, 1, firstReport.Current)
}

func TestUserServiceProfileNotFound(t *testing.T) {
	service := NewUserService(repository.NewMemoryStore(), nil)
	_, err := service.Profile(context.Background(), 99)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestUserServiceListAdminOnly(t *testing.T) {
	store := repository.NewMemoryStore()
	require.NoError(t, store.CreateUser(context.Background(), &models.User{Username: "alice", Role: models.RoleUser}))
	require.NoError(t, store.CreateUser(context.Background(), &models.User{Username: "bob", Role: models.RoleUser}))

	service := NewUserService(store, nil)

	_, err := service.List(context.Background(), models.Actor{ID: 1, Role: models.RoleUser})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	users, err := service.List(context.Background(), models.Actor{ID: 2, Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.Len(t, users, 2)
}
