package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/reportit-app/reportit-api/internal/models"
	appErrors "github.com/reportit-app/reportit-api/pkg/errors"
	"github.com/reportit-app/reportit-api/pkg/export"
)

// ExportFormat enumerates supported report export formats.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

type exportReportStore interface {
	ListReports(ctx context.Context) ([]models.Report, error)
}

// ExportResult carries a rendered export document.
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders the full report listing as CSV or PDF for
// administrators. Rendering is synchronous; the dataset is small enough that
// no job queue is warranted.
type ExportService struct {
	repo   exportReportStore
	csv    *export.CSVExporter
	pdf    *export.PDFExporter
	logger *zap.Logger
}

// NewExportService constructs an ExportService instance.
func NewExportService(repo exportReportStore, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		repo:   repo,
		csv:    export.NewCSVExporter(),
		pdf:    export.NewPDFExporter(),
		logger: logger,
	}
}

// ExportReports renders every report into the requested format.
func (s *ExportService) ExportReports(ctx context.Context, actor models.Actor, format ExportFormat) (*ExportResult, error) {
	if !actor.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only administrators may export reports")
	}

	switch format {
	case ExportFormatCSV, ExportFormatPDF:
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	reports, err := s.repo.ListReports(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list reports")
	}

	dataset := buildReportDataset(reports)
	stamp := time.Now().UTC().Format("20060102-150405")

	switch format {
	case ExportFormatCSV:
		data, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportResult{
			Filename:    fmt.Sprintf("reports-%s.csv", stamp),
			ContentType: "text/csv",
			Data:        data,
		}, nil
	default:
		data, err := s.pdf.Render(dataset, "Issue Reports")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportResult{
			Filename:    fmt.Sprintf("reports-%s.pdf", stamp),
			ContentType: "application/pdf",
			Data:        data,
		}, nil
	}
}

func buildReportDataset(reports []models.Report) export.Dataset {
	headers := []string{"ID", "Title", "Category", "Status", "Address", "Neighborhood", "Assigned To", "Reporter", "Created At"}
	rows := make([]map[string]string, 0, len(reports))
	for _, r := range reports {
		neighborhood := ""
		if r.Neighborhood != nil {
			neighborhood = *r.Neighborhood
		}
		assignedTo := ""
		if r.AssignedTo != nil {
			assignedTo = *r.AssignedTo
		}
		rows = append(rows, map[string]string{
			"ID":           fmt.Sprintf("%d", r.ID),
			"Title":        r.Title,
			"Category":     string(r.Category),
			"Status":       string(r.Status),
			"Address":      r.Address,
			"Neighborhood": neighborhood,
			"Assigned To":  assignedTo,
			"Reporter":     fmt.Sprintf("%d", r.UserID),
			"Created At":   r.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

// ParseExportFormat normalises a query parameter into an ExportFormat.
func ParseExportFormat(raw string) ExportFormat {
	return ExportFormat(strings.ToLower(strings.TrimSpace(raw)))
}
