package handler

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/reportit-app/reportit-api/internal/dto"
	"github.com/reportit-app/reportit-api/internal/service"
	appErrors "github.com/reportit-app/reportit-api/pkg/errors"
	"github.com/reportit-app/reportit-api/pkg/response"
	"github.com/reportit-app/reportit-api/pkg/storage"
)

var allowedPhotoExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".webp": {},
}

// ReportHandler wires HTTP endpoints to the report lifecycle service.
type ReportHandler struct {
	service       *service.ReportService
	uploads       *storage.LocalStorage
	publicPath    string
	maxUploadSize int64
}

// NewReportHandler creates a new handler. The uploads storage may be nil when
// photo upload is disabled.
func NewReportHandler(svc *service.ReportService, uploads *storage.LocalStorage, publicPath string, maxUploadSize int64) *ReportHandler {
	if publicPath == "" {
		publicPath = "/uploads"
	}
	if maxUploadSize <= 0 {
		maxUploadSize = 10 * 1024 * 1024
	}
	return &ReportHandler{service: svc, uploads: uploads, publicPath: publicPath, maxUploadSize: maxUploadSize}
}

// Create godoc
// @Summary File a new report
// @Description Create a civic issue report owned by the authenticated user
// @Tags Reports
// @Accept json
// @Produce json
// @Param payload body dto.CreateReportRequest true "Report payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /reports [post]
func (h *ReportHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid report payload"))
		return
	}

	report, err := h.service.Create(c.Request.Context(), claims.Actor(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, report)
}

// List godoc
// @Summary List reports
// @Description Administrators see all reports, citizens their own
// @Tags Reports
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /reports [get]
func (h *ReportHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	reports, err := h.service.List(c.Request.Context(), claims.Actor())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, dto.ReportListResponse{Reports: reports, Total: len(reports)}, nil)
}

// ListMine godoc
// @Summary List own reports
// @Description Reports filed by the authenticated user
// @Tags Reports
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /reports/user [get]
func (h *ReportHandler) ListMine(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	reports, err := h.service.ListByUser(c.Request.Context(), claims.Actor())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, dto.ReportListResponse{Reports: reports, Total: len(reports)}, nil)
}

// Get godoc
// @Summary Get a report
// @Description Fetch a single report by id
// @Tags Reports
// @Produce json
// @Param id path int true "Report ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /reports/{id} [get]
func (h *ReportHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	id, err := reportIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	report, err := h.service.Get(c.Request.Context(), claims.Actor(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, report, nil)
}

// UpdateStatus godoc
// @Summary Update report status
// @Description Administrator status transition, unrestricted between known statuses
// @Tags Reports
// @Accept json
// @Produce json
// @Param id path int true "Report ID"
// @Param payload body dto.UpdateReportStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /reports/{id}/status [patch]
func (h *ReportHandler) UpdateStatus(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	id, err := reportIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.UpdateReportStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid status payload"))
		return
	}

	report, err := h.service.UpdateStatus(c.Request.Context(), claims.Actor(), id, req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, report, nil)
}

// Assign godoc
// @Summary Assign a report
// @Description Set the crew or department responsible for the report
// @Tags Reports
// @Accept json
// @Produce json
// @Param id path int true "Report ID"
// @Param payload body dto.AssignReportRequest true "Assignment payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /reports/{id}/assign [patch]
func (h *ReportHandler) Assign(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	id, err := reportIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.AssignReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assignment payload"))
		return
	}

	report, err := h.service.Assign(c.Request.Context(), claims.Actor(), id, req.AssignedTo)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, report, nil)
}

// ListUpdates godoc
// @Summary List report updates
// @Description Update trail for the report, newest first
// @Tags Reports
// @Produce json
// @Param id path int true "Report ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /reports/{id}/updates [get]
func (h *ReportHandler) ListUpdates(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	id, err := reportIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	updates, err := h.service.ListUpdates(c.Request.Context(), claims.Actor(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, updates, nil)
}

// AddUpdate godoc
// @Summary Comment on a report
// @Description Append an update to the report's trail
// @Tags Reports
// @Accept json
// @Produce json
// @Param id path int true "Report ID"
// @Param payload body dto.CreateUpdateRequest true "Update payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /reports/{id}/updates [post]
func (h *ReportHandler) AddUpdate(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	id, err := reportIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.CreateUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid update payload"))
		return
	}

	update, err := h.service.AddUpdate(c.Request.Context(), claims.Actor(), id, req.Content)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, update)
}

// UploadPhoto godoc
// @Summary Attach a photo
// @Description Multipart image upload, stored on disk and linked to the report
// @Tags Reports
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Report ID"
// @Param photo formData file true "Image file"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /reports/{id}/photos [post]
func (h *ReportHandler) UploadPhoto(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if h.uploads == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "photo uploads are not configured"))
		return
	}

	id, err := reportIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	file, err := c.FormFile("photo")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "photo file is required"))
		return
	}
	if file.Size > h.maxUploadSize {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("photo exceeds the %d byte limit", h.maxUploadSize)))
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if _, ok := allowedPhotoExtensions[ext]; !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "only image files are allowed"))
		return
	}

	src, err := file.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload"))
		return
	}
	defer src.Close() //nolint:errcheck

	filename := storage.UniqueFilename(file.Filename)
	if _, err := h.uploads.SaveStream(filename, src); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store upload"))
		return
	}

	url := h.publicPath + "/" + filename
	report, err := h.service.AttachPhoto(c.Request.Context(), claims.Actor(), id, url)
	if err != nil {
		// The report mutation failed, keep the disk consistent.
		_ = h.uploads.Delete(filename)
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, report, nil)
}

func reportIDParam(c *gin.Context) (int64, error) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "invalid report id")
	}
	return id, nil
}
