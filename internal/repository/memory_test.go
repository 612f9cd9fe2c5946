package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reportit-app/reportit-api/internal/models"
)

func TestMemoryStoreCreateUserAssignsIDs(t *testing.T) {
	store := NewMemoryStore()

	alice := &models.User{Username: "alice", Role: models.RoleUser}
	bob := &models.User{Username: "bob", Role: models.RoleUser}
	require.NoError(t, store.CreateUser(context.Background(), alice))
	require.NoError(t, store.CreateUser(context.Background(), bob))

	assert.Equal(t, int64(1), alice.ID)
	assert.Equal(t, int64(2), bob.ID)
	assert.NotNil(t, alice.Badges)
	assert.False(t, alice.CreatedAt.IsZero())
}

func TestMemoryStoreFindUserNotFound(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.FindUserByID(context.Background(), 1)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	_, err = store.FindUserByUsername(context.Background(), "nobody")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	store := NewMemoryStore()

	user := &models.User{Username: "alice", Role: models.RoleUser}
	require.NoError(t, store.CreateUser(context.Background(), user))

	loaded, err := store.FindUserByID(context.Background(), user.ID)
	require.NoError(t, err)
	loaded.Badges = append(loaded.Badges, "tampered")

	fresh, err := store.FindUserByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Empty(t, fresh.Badges)
}

func TestMemoryStoreCreateReportStoresInitialUpdate(t *testing.T) {
	store := NewMemoryStore()

	report := &models.Report{Title: "Pothole", Status: models.StatusPending, UserID: 1}
	initial := &models.Update{UserID: 1, Content: models.InitialUpdateContent}
	require.NoError(t, store.CreateReport(context.Background(), report, initial))

	assert.Equal(t, report.ID, initial.ReportID)

	updates, err := store.ListUpdatesByReport(context.Background(), report.ID)
	require.NoError(t, err)
	require.Len(t, updates, 1)
	assert.Equal(t, models.InitialUpdateContent, updates[0].Content)
}

func TestMemoryStoreUpdateReportStatusReturnsPrevious(t *testing.T) {
	store := NewMemoryStore()

	report := &models.Report{Title: "Pothole", Status: models.StatusPending, UserID: 1}
	require.NoError(t, store.CreateReport(context.Background(), report, &models.Update{UserID: 1, Content: models.InitialUpdateContent}))

	updated, previous, err := store.UpdateReportStatus(context.Background(), report.ID, models.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, previous)
	assert.Equal(t, models.StatusCompleted, updated.Status)

	_, _, err = store.UpdateReportStatus(context.Background(), 99, models.StatusCompleted)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestMemoryStoreAddPhotoUnknownReportIsNoOp(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.AddPhoto(context.Background(), 42, "/uploads/a.jpg"))
}

func TestMemoryStoreListUpdatesNewestFirst(t *testing.T) {
	store := NewMemoryStore()

	report := &models.Report{Title: "Pothole", Status: models.StatusPending, UserID: 1}
	require.NoError(t, store.CreateReport(context.Background(), report, &models.Update{UserID: 1, Content: models.InitialUpdateContent}))

	for _, content := range []string{"first", "second", "third"} {
		require.NoError(t, store.CreateUpdate(context.Background(), &models.Update{ReportID: report.ID, UserID: 1, Content: content}))
	}

	updates, err := store.ListUpdatesByReport(context.Background(), report.ID)
	require.NoError(t, err)
	require.Len(t, updates, 4)
	assert.Equal(t, "third", updates[0].Content)
	assert.Equal(t, models.InitialUpdateContent, updates[3].Content)
}

func TestMemoryStoreListReportsByUser(t *testing.T) {
	store := NewMemoryStore()

	for userID := int64(1); userID <= 2; userID++ {
		report := &models.Report{Title: "Pothole", Status: models.StatusPending, UserID: userID}
		require.NoError(t, store.CreateReport(context.Background(), report, &models.Update{UserID: userID, Content: models.InitialUpdateContent}))
	}

	mine, err := store.ListReportsByUser(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, int64(1), mine[0].UserID)

	all, err := store.ListReports(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
