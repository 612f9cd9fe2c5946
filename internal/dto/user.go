package dto

import "github.com/reportit-app/reportit-api/internal/models"

// BadgeProgress pairs a badge definition with the user's standing against it.
type BadgeProgress struct {
	Badge   models.BadgeDefinition `json:"badge"`
	Earned  bool                   `json:"earned"`
	Current int                    `json:"current"`
	Target  int                    `json:"target"`
}

// ProfileResponse is returned by GET /users/me: the user record together with
// earned badge details and progress toward the full definition table.
type ProfileResponse struct {
	User     models.User              `json:"user"`
	Badges   []models.BadgeDefinition `json:"badges"`
	Progress []BadgeProgress          `json:"progress"`
}
