package repository

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/lib/pq"

	"github.com/reportit-app/reportit-api/internal/models"
)

// MemoryStore is an in-memory backing satisfying the same store contracts as
// the PostgreSQL repositories. It is used by tests and selectable through
// STORE_BACKEND=memory for local development without a database.
type MemoryStore struct {
	mu sync.RWMutex

	users   map[int64]*models.User
	reports map[int64]*models.Report
	updates map[int64]*models.Update
	tokens  map[string]*models.RefreshToken

	nextUserID   int64
	nextReportID int64
	nextUpdateID int64
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:        make(map[int64]*models.User),
		reports:      make(map[int64]*models.Report),
		updates:      make(map[int64]*models.Update),
		tokens:       make(map[string]*models.RefreshToken),
		nextUserID:   1,
		nextReportID: 1,
		nextUpdateID: 1,
	}
}

// FindUserByID returns a user by identifier.
func (s *MemoryStore) FindUserByID(ctx context.Context, id int64) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return copyUser(user), nil
}

// FindUserByUsername returns a user by username.
func (s *MemoryStore) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.Username == username {
			return copyUser(user), nil
		}
	}
	return nil, sql.ErrNoRows
}

// CreateUser assigns a fresh id and stores the user.
func (s *MemoryStore) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user.ID = s.nextUserID
	s.nextUserID++
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	if user.Badges == nil {
		user.Badges = pq.StringArray{}
	}
	s.users[user.ID] = copyUser(user)
	return nil
}

// ListUsers returns all users.
func (s *MemoryStore) ListUsers(ctx context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]models.User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, *copyUser(user))
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

// UpdateUserActivity persists counters and the badge set in one step.
func (s *MemoryStore) UpdateUserActivity(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.users[user.ID]
	if !ok {
		return sql.ErrNoRows
	}
	stored.ReportCount = user.ReportCount
	stored.UpdateCount = user.UpdateCount
	stored.CompletedCount = user.CompletedCount
	stored.Badges = append(pq.StringArray{}, user.Badges...)
	return nil
}

// CreateReport stores the report together with its initiating update under a
// single lock section.
func (s *MemoryStore) CreateReport(ctx context.Context, report *models.Report, initial *models.Update) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()

	report.ID = s.nextReportID
	s.nextReportID++
	if report.CreatedAt.IsZero() {
		report.CreatedAt = now
	}
	if report.Photos == nil {
		report.Photos = pq.StringArray{}
	}
	s.reports[report.ID] = copyReport(report)

	initial.ID = s.nextUpdateID
	s.nextUpdateID++
	initial.ReportID = report.ID
	if initial.CreatedAt.IsZero() {
		initial.CreatedAt = now
	}
	s.updates[initial.ID] = copyUpdate(initial)
	return nil
}

// FindReportByID returns a report by identifier.
func (s *MemoryStore) FindReportByID(ctx context.Context, id int64) (*models.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	report, ok := s.reports[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return copyReport(report), nil
}

// ListReports returns all reports, newest first.
func (s *MemoryStore) ListReports(ctx context.Context) ([]models.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	reports := make([]models.Report, 0, len(s.reports))
	for _, report := range s.reports {
		reports = append(reports, *copyReport(report))
	}
	sortReports(reports)
	return reports, nil
}

// ListReportsByUser returns the reports owned by a user, newest first.
func (s *MemoryStore) ListReportsByUser(ctx context.Context, userID int64) ([]models.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var reports []models.Report
	for _, report := range s.reports {
		if report.UserID == userID {
			reports = append(reports, *copyReport(report))
		}
	}
	sortReports(reports)
	return reports, nil
}

// UpdateReportStatus writes the status and returns the replaced one.
func (s *MemoryStore) UpdateReportStatus(ctx context.Context, id int64, status models.ReportStatus) (*models.Report, models.ReportStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	report, ok := s.reports[id]
	if !ok {
		return nil, "", sql.ErrNoRows
	}
	previous := report.Status
	report.Status = status
	return copyReport(report), previous, nil
}

// UpdateReportAssignment sets the assignee for a report.
func (s *MemoryStore) UpdateReportAssignment(ctx context.Context, id int64, assignedTo string) (*models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	report, ok := s.reports[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	report.AssignedTo = &assignedTo
	return copyReport(report), nil
}

// AddPhoto appends a photo URL; unknown reports are ignored.
func (s *MemoryStore) AddPhoto(ctx context.Context, id int64, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	report, ok := s.reports[id]
	if !ok {
		return nil
	}
	report.Photos = append(report.Photos, url)
	return nil
}

// CreateUpdate stores a new update for a report.
func (s *MemoryStore) CreateUpdate(ctx context.Context, update *models.Update) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	update.ID = s.nextUpdateID
	s.nextUpdateID++
	if update.CreatedAt.IsZero() {
		update.CreatedAt = time.Now().UTC()
	}
	s.updates[update.ID] = copyUpdate(update)
	return nil
}

// ListUpdatesByReport returns a report's updates ordered newest-first.
func (s *MemoryStore) ListUpdatesByReport(ctx context.Context, reportID int64) ([]models.Update, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var updates []models.Update
	for _, update := range s.updates {
		if update.ReportID == reportID {
			updates = append(updates, *copyUpdate(update))
		}
	}
	sort.Slice(updates, func(i, j int) bool {
		if !updates[i].CreatedAt.Equal(updates[j].CreatedAt) {
			return updates[i].CreatedAt.After(updates[j].CreatedAt)
		}
		return updates[i].ID > updates[j].ID
	})
	return updates, nil
}

// CreateRefreshToken persists a refresh token entry.
func (s *MemoryStore) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now().UTC()
	}
	stored := *token
	s.tokens[token.Token] = &stored
	return nil
}

// FindRefreshToken returns a refresh token by token string.
func (s *MemoryStore) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.tokens[token]
	if !ok {
		return nil, sql.ErrNoRows
	}
	result := *stored
	return &result, nil
}

// RevokeRefreshToken marks a token as revoked.
func (s *MemoryStore) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, token := range s.tokens {
		if token.ID == id {
			token.Revoked = true
			token.RevokedAt = &revokedAt
			return nil
		}
	}
	return nil
}

// RevokeUserRefreshTokens revokes all refresh tokens for a user.
func (s *MemoryStore) RevokeUserRefreshTokens(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	for _, token := range s.tokens {
		if token.UserID == userID && !token.Revoked {
			token.Revoked = true
			ts := now
			token.RevokedAt = &ts
		}
	}
	return nil
}

func sortReports(reports []models.Report) {
	sort.Slice(reports, func(i, j int) bool {
		if !reports[i].CreatedAt.Equal(reports[j].CreatedAt) {
			return reports[i].CreatedAt.After(reports[j].CreatedAt)
		}
		return reports[i].ID > reports[j].ID
	})
}

func copyUser(u *models.User) *models.User {
	clone := *u
	clone.Badges = append(pq.StringArray{}, u.Badges...)
	return &clone
}

func copyReport(r *models.Report) *models.Report {
	clone := *r
	clone.Photos = append(pq.StringArray{}, r.Photos...)
	return &clone
}

func copyUpdate(u *models.Update) *models.Update {
	clone := *u
	return &clone
}
