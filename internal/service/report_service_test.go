package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reportit-app/reportit-api/internal/dto"
	"github.com/reportit-app/reportit-api/internal/models"
	"github.com/reportit-app/reportit-api/internal/repository"
	appErrors "github.com/reportit-app/reportit-api/pkg/errors"
)

type recordedActivity struct {
	UserID   int64
	Activity models.ActivityType
}

type activityRecorderStub struct {
	mu       sync.Mutex
	recorded []recordedActivity
	err      error
}

func (s *activityRecorderStub) RecordActivity(ctx context.Context, userID int64, activity models.ActivityType) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	s.recorded = append(s.recorded, recordedActivity{UserID: userID, Activity: activity})
	return nil, nil
}

func (s *activityRecorderStub) activities() []recordedActivity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]recordedActivity(nil), s.recorded...)
}

var (
	citizenActor = models.Actor{ID: 1, Role: models.RoleUser}
	adminActor   = models.Actor{ID: 2, Role: models.RoleAdmin}
)

func newReportServiceFixture(t *testing.T) (*ReportService, *repository.MemoryStore, *activityRecorderStub) {
	t.Helper()
	store := repository.NewMemoryStore()
	recorder := &activityRecorderStub{}
	service := NewReportService(store, recorder, nil, nil, nil)
	return service, store, recorder
}

func validCreateRequest() dto.CreateReportRequest {
	return dto.CreateReportRequest{
		Title:       "Pothole on Main St",
		Description: "Deep pothole near the intersection",
		Category:    models.CategoryRoadDamage,
		Address:     "123 Main St",
		Latitude:    "40.7128",
		Longitude:   "-74.0060",
	}
}

func TestReportServiceCreate(t *testing.T) {
	service, store, recorder := newReportServiceFixture(t)

	report, err := service.Create(context.Background(), citizenActor, validCreateRequest())
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, report.Status)
	assert.Equal(t, citizenActor.ID, report.UserID)
	assert.NotZero(t, report.ID)

	updates, err := store.ListUpdatesByReport(context.Background(), report.ID)
	require.NoError(t, err)
	require.Len(t, updates, 1)
	assert.Equal(t, models.InitialUpdateContent, updates[0].Content)
	assert.Equal(t, citizenActor.ID, updates[0].UserID)

	// Filing fires a single report activity; the initiating update is not
	// counted as update activity.
	assert.Equal(t, []recordedActivity{{UserID: 1, Activity: models.ActivityReport}}, recorder.activities())
}

func TestReportServiceCreateRejectsUnknownCategory(t *testing.T) {
	service, _, recorder := newReportServiceFixture(t)

	req := validCreateRequest()
	req.Category = "potholes"
	_, err := service.Create(context.Background(), citizenActor, req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, recorder.activities())
}

func TestReportServiceGetEnforcesOwnership(t *testing.T) {
	service, _, _ := newReportServiceFixture(t)

	report, err := service.Create(context.Background(), citizenActor, validCreateRequest())
	require.NoError(t, err)

	_, err = service.Get(context.Background(), models.Actor{ID: 99, Role: models.RoleUser}, report.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	got, err := service.Get(context.Background(), adminActor, report.ID)
	require.NoError(t, err)
	assert.Equal(t, report.ID, got.ID)
}

func TestReportServiceGetNotFound(t *testing.T) {
	service, _, _ := newReportServiceFixture(t)

	_, err := service.Get(context.Background(), adminActor, 404)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestReportServiceListScopesByRole(t *testing.T) {
	service, _, _ := newReportServiceFixture(t)

	_, err := service.Create(context.Background(), citizenActor, validCreateRequest())
	require.NoError(t, err)
	other := models.Actor{ID: 3, Role: models.RoleUser}
	_, err = service.Create(context.Background(), other, validCreateRequest())
	require.NoError(t, err)

	all, err := service.List(context.Background(), adminActor)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	own, err := service.List(context.Background(), citizenActor)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, citizenActor.ID, own[0].UserID)
}

func TestReportServiceUpdateStatusAdminOnly(t *testing.T) {
	service, _, _ := newReportServiceFixture(t)

	report, err := service.Create(context.Background(), citizenActor, validCreateRequest())
	require.NoError(t, err)

	_, err = service.UpdateStatus(context.Background(), citizenActor, report.ID, models.StatusInProgress)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestReportServiceUpdateStatusWritesSystemUpdate(t *testing.T) {
	service, store, recorder := newReportServiceFixture(t)

	report, err := service.Create(context.Background(), citizenActor, validCreateRequest())
	require.NoError(t, err)

	updated, err := service.UpdateStatus(context.Background(), adminActor, report.ID, models.StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, updated.Status)

	updates, err := store.ListUpdatesByReport(context.Background(), report.ID)
	require.NoError(t, err)
	require.Len(t, updates, 2)
	assert.Equal(t, "Status updated to in-progress", updates[0].Content)
	assert.Equal(t, adminActor.ID, updates[0].UserID)

	acts := recorder.activities()
	require.Len(t, acts, 2)
	assert.Equal(t, recordedActivity{UserID: 2, Activity: models.ActivityUpdate}, acts[1])
}

func TestReportServiceUpdateStatusRejectsUnknownStatus(t *testing.T) {
	service, _, _ := newReportServiceFixture(t)

	report, err := service.Create(context.Background(), citizenActor, validCreateRequest())
	require.NoError(t, err)

	_, err = service.UpdateStatus(context.Background(), adminActor, report.ID, "done")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestReportServiceCompletionCreditsOwnerOnce(t *testing.T) {
	service, _, recorder := newReportServiceFixture(t)

	report, err := service.Create(context.Background(), citizenActor, validCreateRequest())
	require.NoError(t, err)

	_, err = service.UpdateStatus(context.Background(), adminActor, report.ID, models.StatusCompleted)
	require.NoError(t, err)

	// Setting completed again must not credit the owner a second time.
	_, err = service.UpdateStatus(context.Background(), adminActor, report.ID, models.StatusCompleted)
	require.NoError(t, err)

	var completions []recordedActivity
	for _, act := range recorder.activities() {
		if act.Activity == models.ActivityCompleted {
			completions = append(completions, act)
		}
	}
	require.Len(t, completions, 1)
	assert.Equal(t, citizenActor.ID, completions[0].UserID)
}

func TestReportServiceReopenCompletedReport(t *testing.T) {
	service, _, recorder := newReportServiceFixture(t)

	report, err := service.Create(context.Background(), citizenActor, validCreateRequest())
	require.NoError(t, err)

	_, err = service.UpdateStatus(context.Background(), adminActor, report.ID, models.StatusCompleted)
	require.NoError(t, err)

	reopened, err := service.UpdateStatus(context.Background(), adminActor, report.ID, models.StatusPending)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, reopened.Status)

	// Re-completing after a reopen credits the owner again.
	_, err = service.UpdateStatus(context.Background(), adminActor, report.ID, models.StatusCompleted)
	require.NoError(t, err)

	completions := 0
	for _, act := range recorder.activities() {
		if act.Activity == models.ActivityCompleted {
			completions++
		}
	}
	assert.Equal(t, 2, completions)
}

func TestReportServiceAssign(t *testing.T) {
	service, store, _ := newReportServiceFixture(t)

	report, err := service.Create(context.Background(), citizenActor, validCreateRequest())
	require.NoError(t, err)

	assigned, err := service.Assign(context.Background(), adminActor, report.ID, "  Road Crew ")
	require.NoError(t, err)
	require.NotNil(t, assigned.AssignedTo)
	assert.Equal(t, "Road Crew", *assigned.AssignedTo)

	updates, err := store.ListUpdatesByReport(context.Background(), report.ID)
	require.NoError(t, err)
	assert.Equal(t, "Issue assigned to Road Crew", updates[0].Content)
}

func TestReportServiceAssignRejectsBlankAssignee(t *testing.T) {
	service, _, _ := newReportServiceFixture(t)

	report, err := service.Create(context.Background(), citizenActor, validCreateRequest())
	require.NoError(t, err)

	_, err = service.Assign(context.Background(), adminActor, report.ID, "   ")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestReportServiceAddUpdate(t *testing.T) {
	service, _, recorder := newReportServiceFixture(t)

	report, err := service.Create(context.Background(), citizenActor, validCreateRequest())
	require.NoError(t, err)

	update, err := service.AddUpdate(context.Background(), citizenActor, report.ID, " still not fixed ")
	require.NoError(t, err)
	assert.Equal(t, "still not fixed", update.Content)
	assert.Equal(t, citizenActor.ID, update.UserID)

	acts := recorder.activities()
	require.Len(t, acts, 2)
	assert.Equal(t, recordedActivity{UserID: 1, Activity: models.ActivityUpdate}, acts[1])
}

func TestReportServiceAddUpdateRejectsBlankContent(t *testing.T) {
	service, _, _ := newReportServiceFixture(t)

	report, err := service.Create(context.Background(), citizenActor, validCreateRequest())
	require.NoError(t, err)

	_, err = service.AddUpdate(context.Background(), citizenActor, report.ID, "   ")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestReportServiceListUpdatesNewestFirst(t *testing.T) {
	service, _, _ := newReportServiceFixture(t)

	report, err := service.Create(context.Background(), citizenActor, validCreateRequest())
	require.NoError(t, err)

	_, err = service.AddUpdate(context.Background(), citizenActor, report.ID, "first comment")
	require.NoError(t, err)
	_, err = service.AddUpdate(context.Background(), citizenActor, report.ID, "second comment")
	require.NoError(t, err)

	updates, err := service.ListUpdates(context.Background(), citizenActor, report.ID)
	require.NoError(t, err)
	require.Len(t, updates, 3)
	assert.Equal(t, "second comment", updates[0].Content)
	assert.Equal(t, "first comment", updates[1].Content)
	assert.Equal(t, models.InitialUpdateContent, updates[2].Content)
}

func TestReportServiceListUpdatesForbiddenForStranger(t *testing.T) {
	service, _, _ := newReportServiceFixture(t)

	report, err := service.Create(context.Background(), citizenActor, validCreateRequest())
	require.NoError(t, err)

	_, err = service.ListUpdates(context.Background(), models.Actor{ID: 50, Role: models.RoleUser}, report.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestReportServiceAttachPhoto(t *testing.T) {
	service, _, _ := newReportServiceFixture(t)

	report, err := service.Create(context.Background(), citizenActor, validCreateRequest())
	require.NoError(t, err)

	updated, err := service.AttachPhoto(context.Background(), citizenActor, report.ID, "/uploads/123-abc.jpg")
	require.NoError(t, err)
	require.Len(t, updated.Photos, 1)
	assert.Equal(t, "/uploads/123-abc.jpg", updated.Photos[0])
}

func TestReportServiceBadgeFailureDoesNotFailCreate(t *testing.T) {
	store := repository.NewMemoryStore()
	recorder := &activityRecorderStub{err: assert.AnError}
	service := NewReportService(store, recorder, nil, nil, nil)

	report, err := service.Create(context.Background(), citizenActor, validCreateRequest())
	require.NoError(t, err)
	assert.NotZero(t, report.ID)
}
