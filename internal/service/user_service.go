package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/reportit-app/reportit-api/internal/dto"
	"github.com/reportit-app/reportit-api/internal/models"
	appErrors "github.com/reportit-app/reportit-api/pkg/errors"
)

type userStore interface {
	FindUserByID(ctx context.Context, id int64) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
}

// UserService serves user profiles and the administrator user listing.
type UserService struct {
	repo   userStore
	logger *zap.Logger
}

// NewUserService constructs a UserService instance.
func NewUserService(repo userStore, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{repo: repo, logger: logger}
}

// Profile returns the user together with earned badge details and progress
// toward every badge in the definition table.
func (s *UserService) Profile(ctx context.Context, userID int64) (*dto.ProfileResponse, error) {
	user, err := s.repo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	earned := make([]models.BadgeDefinition, 0, len(user.Badges))
	progress := make([]dto.BadgeProgress, 0, len(models.BadgeDefinitions))
	for _, def := range models.BadgeDefinitions {
		held := user.HasBadge(def.ID)
		if held {
			earned = append(earned, def)
		}
		current := models.CounterFor(user, def.Criteria.Type)
		if current > def.Criteria.Count {
			current = def.Criteria.Count
		}
		progress = append(progress, dto.BadgeProgress{
			Badge:   def,
			Earned:  held,
			Current: current,
			Target:  def.Criteria.Count,
		})
	}

	return &dto.ProfileResponse{User: *user, Badges: earned, Progress: progress}, nil
}

// List returns every user. Administrators only.
func (s *UserService) List(ctx context.Context, actor models.Actor) ([]models.User, error) {
	if !actor.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only administrators may list users")
	}

	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}
	return users, nil
}
