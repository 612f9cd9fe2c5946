package dto

import "github.com/reportit-app/reportit-api/internal/models"

// CreateReportRequest captures POST /reports payload.
type CreateReportRequest struct {
	Title        string                `json:"title" validate:"required,max=200"`
	Description  string                `json:"description" validate:"required"`
	Category     models.ReportCategory `json:"category" validate:"required"`
	Address      string                `json:"address" validate:"required"`
	Neighborhood *string               `json:"neighborhood,omitempty"`
	Latitude     string                `json:"latitude" validate:"required"`
	Longitude    string                `json:"longitude" validate:"required"`
}

// UpdateReportStatusRequest captures PATCH /reports/:id/status payload.
type UpdateReportStatusRequest struct {
	Status models.ReportStatus `json:"status" validate:"required"`
}

// AssignReportRequest captures PATCH /reports/:id/assign payload.
type AssignReportRequest struct {
	AssignedTo string `json:"assigned_to" validate:"required"`
}

// CreateUpdateRequest captures POST /reports/:id/updates payload.
type CreateUpdateRequest struct {
	Content string `json:"content" validate:"required"`
}

// ReportListResponse wraps a report listing.
type ReportListResponse struct {
	Reports []models.Report `json:"reports"`
	Total   int             `json:"total"`
}
