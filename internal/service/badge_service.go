package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/reportit-app/reportit-api/internal/models"
)

type badgeUserRepository interface {
	FindUserByID(ctx context.Context, id int64) (*models.User, error)
	UpdateUserActivity(ctx context.Context, user *models.User) error
}

// BadgeService is the achievement engine. It tracks per-user activity
// counters and grants badges from the fixed definition table. Grants are
// monotonic: a badge once held is never revoked, and re-processing the same
// activity level never produces duplicates.
type BadgeService struct {
	repo    badgeUserRepository
	metrics *MetricsService
	logger  *zap.Logger

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// NewBadgeService constructs a BadgeService instance.
func NewBadgeService(repo badgeUserRepository, metrics *MetricsService, logger *zap.Logger) *BadgeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BadgeService{
		repo:    repo,
		metrics: metrics,
		logger:  logger,
		locks:   make(map[int64]*sync.Mutex),
	}
}

// Definitions returns the full badge definition table.
func (s *BadgeService) Definitions() []models.BadgeDefinition {
	return models.BadgeDefinitions
}

// RecordActivity increments the user's counter for the given activity type
// and grants every definition whose threshold the new counters satisfy. The
// per-user lock serialises concurrent evaluations so the read-evaluate-write
// cycle never loses a grant. A missing user is logged and skipped rather
// than surfaced, matching the fire-and-forget contract of callers.
func (s *BadgeService) RecordActivity(ctx context.Context, userID int64, activity models.ActivityType) ([]string, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	user, err := s.repo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("badge activity for unknown user",
				zap.Int64("user_id", userID),
				zap.String("activity", string(activity)))
			return nil, nil
		}
		return nil, fmt.Errorf("load user %d for badge evaluation: %w", userID, err)
	}

	switch activity {
	case models.ActivityReport:
		user.ReportCount++
	case models.ActivityUpdate:
		user.UpdateCount++
	case models.ActivityCompleted:
		user.CompletedCount++
	default:
		return nil, fmt.Errorf("unknown activity type %q", activity)
	}

	granted := evaluateBadges(user)
	for _, id := range granted {
		user.Badges = append(user.Badges, id)
	}

	if err := s.repo.UpdateUserActivity(ctx, user); err != nil {
		return nil, fmt.Errorf("persist activity for user %d: %w", userID, err)
	}

	if len(granted) > 0 {
		s.metrics.RecordBadgesGranted(len(granted))
		s.logger.Info("badges granted",
			zap.Int64("user_id", userID),
			zap.Strings("badges", granted))
	}

	return granted, nil
}

// evaluateBadges returns the definitions the user now qualifies for but does
// not yet hold. The whole table is checked on every call, so a single
// activity can grant several badges at once.
func evaluateBadges(user *models.User) []string {
	var granted []string
	for _, def := range models.BadgeDefinitions {
		if user.HasBadge(def.ID) {
			continue
		}
		if models.CounterFor(user, def.Criteria.Type) >= def.Criteria.Count {
			granted = append(granted, def.ID)
		}
	}
	return granted
}

func (s *BadgeService) userLock(userID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[userID] = lock
	}
	return lock
}
