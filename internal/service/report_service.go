package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/reportit-app/reportit-api/internal/dto"
	"github.com/reportit-app/reportit-api/internal/models"
	appErrors "github.com/reportit-app/reportit-api/pkg/errors"
)

const (
	reportListCacheKey     = "reports:list"
	reportListCachePattern = "reports:*"
)

type reportStore interface {
	CreateReport(ctx context.Context, report *models.Report, initial *models.Update) error
	FindReportByID(ctx context.Context, id int64) (*models.Report, error)
	ListReports(ctx context.Context) ([]models.Report, error)
	ListReportsByUser(ctx context.Context, userID int64) ([]models.Report, error)
	UpdateReportStatus(ctx context.Context, id int64, status models.ReportStatus) (*models.Report, models.ReportStatus, error)
	UpdateReportAssignment(ctx context.Context, id int64, assignedTo string) (*models.Report, error)
	AddPhoto(ctx context.Context, id int64, url string) error
	CreateUpdate(ctx context.Context, update *models.Update) error
	ListUpdatesByReport(ctx context.Context, reportID int64) ([]models.Update, error)
}

type activityRecorder interface {
	RecordActivity(ctx context.Context, userID int64, activity models.ActivityType) ([]string, error)
}

// ReportService manages the report lifecycle: creation, status transitions,
// assignment, the update trail, and photo attachment. Every mutation commits
// before its derived system update, which in turn commits before the badge
// signal fires; badge failures are logged, never surfaced to the caller.
type ReportService struct {
	repo      reportStore
	badges    activityRecorder
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewReportService constructs a ReportService instance.
func NewReportService(repo reportStore, badges activityRecorder, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ReportService{repo: repo, badges: badges, cache: cache, validator: validate, logger: logger}
}

// Create files a new report owned by the actor. The report starts in pending
// status and carries an initiating system update in the same store commit.
func (s *ReportService) Create(ctx context.Context, actor models.Actor, req dto.CreateReportRequest) (*models.Report, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid report payload")
	}
	if !models.ValidCategory(req.Category) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown category %q", req.Category))
	}

	report := &models.Report{
		Title:        strings.TrimSpace(req.Title),
		Description:  req.Description,
		Category:     req.Category,
		Address:      req.Address,
		Neighborhood: req.Neighborhood,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		Status:       models.StatusPending,
		UserID:       actor.ID,
		Photos:       []string{},
	}
	initial := &models.Update{
		UserID:  actor.ID,
		Content: models.InitialUpdateContent,
	}

	if err := s.repo.CreateReport(ctx, report, initial); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create report")
	}

	s.invalidateListCache(ctx)
	s.fireActivity(ctx, actor.ID, models.ActivityReport)

	return report, nil
}

// Get returns a single report. Owners and administrators only.
func (s *ReportService) Get(ctx context.Context, actor models.Actor, id int64) (*models.Report, error) {
	return s.loadAccessible(ctx, actor, id)
}

// List returns all reports for administrators and the actor's own reports
// otherwise. The admin listing is served from cache when available.
func (s *ReportService) List(ctx context.Context, actor models.Actor) ([]models.Report, error) {
	if !actor.IsAdmin() {
		return s.ListByUser(ctx, actor)
	}

	var cached []models.Report
	if hit, err := s.cache.Get(ctx, reportListCacheKey, &cached); err == nil && hit {
		return cached, nil
	}

	reports, err := s.repo.ListReports(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list reports")
	}

	if err := s.cache.Set(ctx, reportListCacheKey, reports, 0); err != nil {
		s.logger.Warn("failed to cache report list", zap.Error(err))
	}

	return reports, nil
}

// ListByUser returns the reports filed by the actor.
func (s *ReportService) ListByUser(ctx context.Context, actor models.Actor) ([]models.Report, error) {
	reports, err := s.repo.ListReportsByUser(ctx, actor.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list reports")
	}
	return reports, nil
}

// UpdateStatus performs an administrator status transition. Transitions are
// deliberately unrestricted between known statuses, reopening a completed
// report included. Entering completed credits the report owner once per
// transition.
func (s *ReportService) UpdateStatus(ctx context.Context, actor models.Actor, id int64, status models.ReportStatus) (*models.Report, error) {
	if !actor.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only administrators may change report status")
	}
	if !models.ValidStatus(status) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown status %q", status))
	}

	report, previous, err := s.repo.UpdateReportStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update report status")
	}

	s.invalidateListCache(ctx)
	s.recordSystemUpdate(ctx, actor, id, fmt.Sprintf("Status updated to %s", status))

	if status == models.StatusCompleted && previous != models.StatusCompleted {
		s.fireActivity(ctx, report.UserID, models.ActivityCompleted)
	}

	return report, nil
}

// Assign sets the crew or department responsible for the report.
func (s *ReportService) Assign(ctx context.Context, actor models.Actor, id int64, assignedTo string) (*models.Report, error) {
	if !actor.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only administrators may assign reports")
	}
	assignee := strings.TrimSpace(assignedTo)
	if assignee == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "assignee must not be empty")
	}

	report, err := s.repo.UpdateReportAssignment(ctx, id, assignee)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign report")
	}

	s.invalidateListCache(ctx)
	s.recordSystemUpdate(ctx, actor, id, fmt.Sprintf("Issue assigned to %s", assignee))

	return report, nil
}

// AddUpdate posts a comment on the report's update trail. Owners and
// administrators only.
func (s *ReportService) AddUpdate(ctx context.Context, actor models.Actor, reportID int64, content string) (*models.Update, error) {
	if _, err := s.loadAccessible(ctx, actor, reportID); err != nil {
		return nil, err
	}

	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "update content must not be empty")
	}

	update := &models.Update{
		ReportID: reportID,
		UserID:   actor.ID,
		Content:  trimmed,
	}
	if err := s.repo.CreateUpdate(ctx, update); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create update")
	}

	s.fireActivity(ctx, actor.ID, models.ActivityUpdate)

	return update, nil
}

// ListUpdates returns the report's update trail newest first. Owners and
// administrators only.
func (s *ReportService) ListUpdates(ctx context.Context, actor models.Actor, reportID int64) ([]models.Update, error) {
	if _, err := s.loadAccessible(ctx, actor, reportID); err != nil {
		return nil, err
	}

	updates, err := s.repo.ListUpdatesByReport(ctx, reportID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list updates")
	}
	return updates, nil
}

// AttachPhoto appends an uploaded photo URL to the report.
func (s *ReportService) AttachPhoto(ctx context.Context, actor models.Actor, reportID int64, url string) (*models.Report, error) {
	if _, err := s.loadAccessible(ctx, actor, reportID); err != nil {
		return nil, err
	}

	if err := s.repo.AddPhoto(ctx, reportID, url); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to attach photo")
	}

	s.invalidateListCache(ctx)

	report, err := s.repo.FindReportByID(ctx, reportID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload report")
	}
	return report, nil
}

func (s *ReportService) loadAccessible(ctx context.Context, actor models.Actor, id int64) (*models.Report, error) {
	report, err := s.repo.FindReportByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report")
	}
	if !actor.CanAccessReport(report) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "report belongs to another user")
	}
	return report, nil
}

// recordSystemUpdate appends an administrator-authored system entry to the
// trail. System updates count toward the author's update activity like any
// other update. Failures are logged so the already committed mutation stands.
func (s *ReportService) recordSystemUpdate(ctx context.Context, actor models.Actor, reportID int64, content string) {
	update := &models.Update{
		ReportID: reportID,
		UserID:   actor.ID,
		Content:  content,
	}
	if err := s.repo.CreateUpdate(ctx, update); err != nil {
		s.logger.Error("failed to record system update",
			zap.Int64("report_id", reportID),
			zap.String("content", content),
			zap.Error(err))
		return
	}
	s.fireActivity(ctx, actor.ID, models.ActivityUpdate)
}

func (s *ReportService) fireActivity(ctx context.Context, userID int64, activity models.ActivityType) {
	if s.badges == nil {
		return
	}
	if _, err := s.badges.RecordActivity(ctx, userID, activity); err != nil {
		s.logger.Error("failed to record badge activity",
			zap.Int64("user_id", userID),
			zap.String("activity", string(activity)),
			zap.Error(err))
	}
}

func (s *ReportService) invalidateListCache(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, reportListCachePattern); err != nil {
		s.logger.Warn("failed to invalidate report list cache", zap.Error(err))
	}
}
