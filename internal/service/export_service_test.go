package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reportit-app/reportit-api/internal/models"
	"github.com/reportit-app/reportit-api/internal/repository"
	appErrors "github.com/reportit-app/reportit-api/pkg/errors"
)

func seedExportReports(t *testing.T) *repository.MemoryStore {
	t.Helper()
	store := repository.NewMemoryStore()
	for _, title := range []string{"Pothole on Main St", "Broken street light"} {
		report := &models.Report{
			Title:       title,
			Description: "details",
			Category:    models.CategoryRoadDamage,
			Address:     "123 Main St",
			Latitude:    "40.0",
			Longitude:   "-74.0",
			Status:      models.StatusPending,
			UserID:      1,
		}
		initial := &models.Update{UserID: 1, Content: models.InitialUpdateContent}
		require.NoError(t, store.CreateReport(context.Background(), report, initial))
	}
	return store
}

func TestExportServiceCSV(t *testing.T) {
	service := NewExportService(seedExportReports(t), nil)

	result, err := service.ExportReports(context.Background(), models.Actor{ID: 9, Role: models.RoleAdmin}, ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.True(t, strings.HasSuffix(result.Filename, ".csv"))

	body := string(result.Data)
	assert.Contains(t, body, "Pothole on Main St")
	assert.Contains(t, body, "Broken street light")
	assert.Contains(t, body, "road-damage")
}

func TestExportServicePDF(t *testing.T) {
	service := NewExportService(seedExportReports(t), nil)

	result, err := service.ExportReports(context.Background(), models.Actor{ID: 9, Role: models.RoleAdmin}, ExportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, strings.HasPrefix(string(result.Data), "%PDF"))
}

func TestExportServiceForbiddenForNonAdmin(t *testing.T) {
	service := NewExportService(seedExportReports(t), nil)

	_, err := service.ExportReports(context.Background(), models.Actor{ID: 1, Role: models.RoleUser}, ExportFormatCSV)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestExportServiceRejectsUnknownFormat(t *testing.T) {
	service := NewExportService(seedExportReports(t), nil)

	_, err := service.ExportReports(context.Background(), models.Actor{ID: 9, Role: models.RoleAdmin}, ParseExportFormat("xlsx"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
