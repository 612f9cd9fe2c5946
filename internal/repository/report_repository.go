package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/reportit-app/reportit-api/internal/models"
)

const reportColumns = `id, title, description, category, address, neighborhood, latitude, longitude, status, user_id, assigned_to, photos, created_at`

const updateColumns = `id, report_id, user_id, content, created_at`

// ReportRepository provides PostgreSQL access for reports and updates.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository creates a new instance of ReportRepository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// CreateReport inserts the report and its initiating update in one transaction.
func (r *ReportRepository) CreateReport(ctx context.Context, report *models.Report, initial *models.Update) error {
	now := time.Now().UTC()
	if report.CreatedAt.IsZero() {
		report.CreatedAt = now
	}
	if report.Photos == nil {
		report.Photos = pq.StringArray{}
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create report: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const insertReport = `INSERT INTO reports (title, description, category, address, neighborhood, latitude, longitude, status, user_id, assigned_to, photos, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING id`
	if err := tx.QueryRowContext(ctx, insertReport,
		report.Title, report.Description, report.Category, report.Address, report.Neighborhood,
		report.Latitude, report.Longitude, report.Status, report.UserID, report.AssignedTo,
		report.Photos, report.CreatedAt,
	).Scan(&report.ID); err != nil {
		return fmt.Errorf("create report: %w", err)
	}

	initial.ReportID = report.ID
	if initial.CreatedAt.IsZero() {
		initial.CreatedAt = now
	}
	const insertUpdate = `INSERT INTO updates (report_id, user_id, content, created_at)
		VALUES ($1, $2, $3, $4) RETURNING id`
	if err := tx.QueryRowContext(ctx, insertUpdate,
		initial.ReportID, initial.UserID, initial.Content, initial.CreatedAt,
	).Scan(&initial.ID); err != nil {
		return fmt.Errorf("create initial update: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create report: %w", err)
	}
	return nil
}

// FindReportByID returns a report by identifier.
func (r *ReportRepository) FindReportByID(ctx context.Context, id int64) (*models.Report, error) {
	const query = `SELECT ` + reportColumns + ` FROM reports WHERE id = $1 LIMIT 1`
	var report models.Report
	if err := r.db.GetContext(ctx, &report, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find report by id: %w", err)
	}
	return &report, nil
}

// ListReports returns all reports.
func (r *ReportRepository) ListReports(ctx context.Context) ([]models.Report, error) {
	const query = `SELECT ` + reportColumns + ` FROM reports ORDER BY created_at DESC`
	var reports []models.Report
	if err := r.db.SelectContext(ctx, &reports, query); err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return reports, nil
}

// ListReportsByUser returns the reports owned by a user.
func (r *ReportRepository) ListReportsByUser(ctx context.Context, userID int64) ([]models.Report, error) {
	const query = `SELECT ` + reportColumns + ` FROM reports WHERE user_id = $1 ORDER BY created_at DESC`
	var reports []models.Report
	if err := r.db.SelectContext(ctx, &reports, query, userID); err != nil {
		return nil, fmt.Errorf("list reports by user: %w", err)
	}
	return reports, nil
}

// UpdateReportStatus writes the new status and reports the one it replaced so the
// caller can detect a transition into completed.
func (r *ReportRepository) UpdateReportStatus(ctx context.Context, id int64, status models.ReportStatus) (*models.Report, models.ReportStatus, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, "", fmt.Errorf("begin update status: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var previous models.ReportStatus
	const selectStatus = `SELECT status FROM reports WHERE id = $1 FOR UPDATE`
	if err := tx.GetContext(ctx, &previous, selectStatus, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, "", err
		}
		return nil, "", fmt.Errorf("lock report status: %w", err)
	}

	const update = `UPDATE reports SET status = $2 WHERE id = $1 RETURNING ` + reportColumns
	var report models.Report
	if err := tx.GetContext(ctx, &report, update, id, status); err != nil {
		return nil, "", fmt.Errorf("update report status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, "", fmt.Errorf("commit update status: %w", err)
	}
	return &report, previous, nil
}

// UpdateReportAssignment sets the assignee for a report.
func (r *ReportRepository) UpdateReportAssignment(ctx context.Context, id int64, assignedTo string) (*models.Report, error) {
	const query = `UPDATE reports SET assigned_to = $2 WHERE id = $1 RETURNING ` + reportColumns
	var report models.Report
	if err := r.db.GetContext(ctx, &report, query, id, assignedTo); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("update report assignment: %w", err)
	}
	return &report, nil
}

// AddPhoto appends a photo URL to the report's ordered photo list.
func (r *ReportRepository) AddPhoto(ctx context.Context, id int64, url string) error {
	const query = `UPDATE reports SET photos = array_append(photos, $2) WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, url); err != nil {
		return fmt.Errorf("add photo to report: %w", err)
	}
	return nil
}

// CreateUpdate inserts a new update for a report.
func (r *ReportRepository) CreateUpdate(ctx context.Context, update *models.Update) error {
	if update.CreatedAt.IsZero() {
		update.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO updates (report_id, user_id, content, created_at)
		VALUES ($1, $2, $3, $4) RETURNING id`
	if err := r.db.QueryRowContext(ctx, query,
		update.ReportID, update.UserID, update.Content, update.CreatedAt,
	).Scan(&update.ID); err != nil {
		return fmt.Errorf("create update: %w", err)
	}
	return nil
}

// ListUpdatesByReport returns a report's updates ordered newest-first.
func (r *ReportRepository) ListUpdatesByReport(ctx context.Context, reportID int64) ([]models.Update, error) {
	const query = `SELECT ` + updateColumns + ` FROM updates WHERE report_id = $1 ORDER BY created_at DESC, id DESC`
	var updates []models.Update
	if err := r.db.SelectContext(ctx, &updates, query, reportID); err != nil {
		return nil, fmt.Errorf("list updates by report: %w", err)
	}
	return updates, nil
}
