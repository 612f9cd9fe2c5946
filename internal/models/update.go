package models

import "time"

// Update is a timestamped note attached to a report, either a user comment or
// a system-generated workflow note. Updates are immutable once created.
type Update struct {
	ID        int64     `db:"id" json:"id"`
	ReportID  int64     `db:"report_id" json:"report_id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
