package repository

import (
	"context"
	"time"

	"github.com/reportit-app/reportit-api/internal/models"
)

// UserStore provides durable storage for users. Missing records are signalled
// with sql.ErrNoRows by every implementation; callers map that to a typed
// not-found error at the boundary.
type UserStore interface {
	FindUserByID(ctx context.Context, id int64) (*models.User, error)
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	ListUsers(ctx context.Context) ([]models.User, error)
	// UpdateUserActivity persists the activity counters and the badge set of
	// the given user in a single update.
	UpdateUserActivity(ctx context.Context, user *models.User) error
}

// ReportStore provides durable storage for reports and their update trail.
type ReportStore interface {
	// CreateReport stores the report together with its initiating update in
	// one logical operation; a report must never exist without it.
	CreateReport(ctx context.Context, report *models.Report, initial *models.Update) error
	FindReportByID(ctx context.Context, id int64) (*models.Report, error)
	ListReports(ctx context.Context) ([]models.Report, error)
	ListReportsByUser(ctx context.Context, userID int64) ([]models.Report, error)
	// UpdateReportStatus writes the new status and returns the refreshed
	// report along with the status it replaced.
	UpdateReportStatus(ctx context.Context, id int64, status models.ReportStatus) (*models.Report, models.ReportStatus, error)
	UpdateReportAssignment(ctx context.Context, id int64, assignedTo string) (*models.Report, error)
	// AddPhoto appends a photo URL; it is a no-op for an unknown report.
	AddPhoto(ctx context.Context, id int64, url string) error
	CreateUpdate(ctx context.Context, update *models.Update) error
	// ListUpdatesByReport returns updates ordered newest-first.
	ListUpdatesByReport(ctx context.Context, reportID int64) ([]models.Update, error)
}

// AuthStore bundles the storage served to the account flows. Both backends
// implement the whole bundle.
type AuthStore interface {
	UserStore
	TokenStore
}

// TokenStore persists refresh token sessions.
type TokenStore interface {
	CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error
	FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error
	RevokeUserRefreshTokens(ctx context.Context, userID int64) error
}
