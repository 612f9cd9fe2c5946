package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/reportit-app/reportit-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func userRows(user models.User) *sqlmock.Rows {
	// pq arrays scan from their text literal form, not from the Go slice.
	badges, _ := user.Badges.Value()
	return sqlmock.NewRows([]string{"id", "username", "password_hash", "name", "email", "role", "report_count", "update_count", "completed_count", "badges", "created_at"}).
		AddRow(user.ID, user.Username, user.PasswordHash, user.Name, user.Email, user.Role, user.ReportCount, user.UpdateCount, user.CompletedCount, badges, user.CreatedAt)
}

func TestUserRepositoryFindUserByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewUserRepository(db)
	user := models.User{ID: 1, Username: "alice", Role: models.RoleUser, Badges: pq.StringArray{"first-report"}, CreatedAt: time.Now()}

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, username, password_hash, name, email, role, report_count, update_count, completed_count, badges, created_at FROM users WHERE id = $1")).
		WithArgs(int64(1)).
		WillReturnRows(userRows(user))

	found, err := repo.FindUserByID(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, "alice", found.Username)
	require.True(t, found.HasBadge("first-report"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryFindUserByIDNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewUserRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
		WithArgs(int64(99)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindUserByID(context.Background(), 99)
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryCreateUser(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewUserRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	user := &models.User{Username: "alice", PasswordHash: "hash", Name: "Alice", Email: "alice@example.com", Role: models.RoleUser}
	require.NoError(t, repo.CreateUser(context.Background(), user))
	require.Equal(t, int64(7), user.ID)
	require.NotNil(t, user.Badges)
	require.False(t, user.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryUpdateUserActivity(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewUserRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET report_count = $2, update_count = $3, completed_count = $4, badges = $5 WHERE id = $1")).
		WithArgs(int64(1), 3, 1, 0, pq.StringArray{"first-report"}).
		WillReturnResult(sqlmock.NewResult(0, 1))

	user := &models.User{ID: 1, ReportCount: 3, UpdateCount: 1, Badges: pq.StringArray{"first-report"}}
	require.NoError(t, repo.UpdateUserActivity(context.Background(), user))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryRefreshTokenRoundTrip(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewUserRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO refresh_tokens")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	token := &models.RefreshToken{UserID: 1, Token: "abc", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, repo.CreateRefreshToken(context.Background(), token))
	require.NotEmpty(t, token.ID)

	rows := sqlmock.NewRows([]string{"id", "user_id", "token", "expires_at", "created_at", "revoked", "revoked_at", "ip_address", "user_agent"}).
		AddRow(token.ID, token.UserID, token.Token, token.ExpiresAt, token.CreatedAt, false, nil, "", "")
	mock.ExpectQuery(regexp.QuoteMeta("FROM refresh_tokens WHERE token = $1")).
		WithArgs("abc").
		WillReturnRows(rows)

	found, err := repo.FindRefreshToken(context.Background(), "abc")
	require.NoError(t, err)
	require.Equal(t, token.ID, found.ID)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE refresh_tokens SET revoked = TRUE, revoked_at = $2 WHERE id = $1")).
		WithArgs(token.ID, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.RevokeRefreshToken(context.Background(), token.ID, time.Now()))

	require.NoError(t, mock.ExpectationsWereMet())
}
