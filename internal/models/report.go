package models

import (
	"time"

	"github.com/lib/pq"
)

// ReportCategory classifies the kind of civic problem being reported.
type ReportCategory string

const (
	CategoryRoadDamage  ReportCategory = "road-damage"
	CategoryGarbage     ReportCategory = "garbage"
	CategoryStreetLight ReportCategory = "street-light"
	CategoryWaterSewage ReportCategory = "water-sewage"
	CategoryOther       ReportCategory = "other"
)

// ReportStatus tracks a report through its workflow. Transitions are
// administrator-triggered and deliberately unrestricted between states.
type ReportStatus string

const (
	StatusPending    ReportStatus = "pending"
	StatusInProgress ReportStatus = "in-progress"
	StatusAssigned   ReportStatus = "assigned"
	StatusCompleted  ReportStatus = "completed"
)

// ValidCategory reports whether the value is one of the known categories.
func ValidCategory(c ReportCategory) bool {
	switch c {
	case CategoryRoadDamage, CategoryGarbage, CategoryStreetLight, CategoryWaterSewage, CategoryOther:
		return true
	}
	return false
}

// ValidStatus reports whether the value is one of the known statuses.
func ValidStatus(s ReportStatus) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusAssigned, StatusCompleted:
		return true
	}
	return false
}

// Report represents a single filed civic issue.
type Report struct {
	ID           int64          `db:"id" json:"id"`
	Title        string         `db:"title" json:"title"`
	Description  string         `db:"description" json:"description"`
	Category     ReportCategory `db:"category" json:"category"`
	Address      string         `db:"address" json:"address"`
	Neighborhood *string        `db:"neighborhood" json:"neighborhood,omitempty"`
	Latitude     string         `db:"latitude" json:"latitude"`
	Longitude    string         `db:"longitude" json:"longitude"`
	Status       ReportStatus   `db:"status" json:"status"`
	UserID       int64          `db:"user_id" json:"user_id"`
	AssignedTo   *string        `db:"assigned_to" json:"assigned_to,omitempty"`
	Photos       pq.StringArray `db:"photos" json:"photos"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
}

// InitialUpdateContent is the content of the system update created together
// with every new report.
const InitialUpdateContent = "Report submitted"
