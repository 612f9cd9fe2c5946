package models

import (
	"time"

	"github.com/lib/pq"
)

// UserRole represents the available roles for access control.
type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// User represents a citizen or administrator stored in the users table.
// Activity counters and the badge set are mutated only by the badge engine.
type User struct {
	ID             int64          `db:"id" json:"id"`
	Username       string         `db:"username" json:"username"`
	PasswordHash   string         `db:"password_hash" json:"-"`
	Name           string         `db:"name" json:"name"`
	Email          string         `db:"email" json:"email"`
	Role           UserRole       `db:"role" json:"role"`
	ReportCount    int            `db:"report_count" json:"report_count"`
	UpdateCount    int            `db:"update_count" json:"update_count"`
	CompletedCount int            `db:"completed_count" json:"completed_count"`
	Badges         pq.StringArray `db:"badges" json:"badges"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
}

// HasBadge reports whether the user already holds the given badge.
func (u *User) HasBadge(badgeID string) bool {
	for _, b := range u.Badges {
		if b == badgeID {
			return true
		}
	}
	return false
}

// Actor is the capability handed to lifecycle operations. It is derived from
// validated JWT claims, never from request payloads.
type Actor struct {
	ID   int64
	Role UserRole
}

// IsAdmin reports whether the actor carries administrator rights.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// CanAccessReport reports whether the actor may read the given report and its
// update trail: administrators always, otherwise only the owner.
func (a Actor) CanAccessReport(r *Report) bool {
	return a.IsAdmin() || r.UserID == a.ID
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
