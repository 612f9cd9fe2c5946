package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/reportit-app/reportit-api/internal/service"
	appErrors "github.com/reportit-app/reportit-api/pkg/errors"
	"github.com/reportit-app/reportit-api/pkg/response"
)

// ExportHandler serves tabular report exports for administrators.
type ExportHandler struct {
	service *service.ExportService
}

// NewExportHandler creates a new handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// Export godoc
// @Summary Export reports
// @Description Download every report as CSV or PDF
// @Tags Reports
// @Produce octet-stream
// @Param format query string true "Export format" Enums(csv, pdf)
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /reports/export [get]
func (h *ExportHandler) Export(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	format := service.ParseExportFormat(c.DefaultQuery("format", string(service.ExportFormatCSV)))
	result, err := h.service.ExportReports(c.Request.Context(), claims.Actor(), format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Data)
}
