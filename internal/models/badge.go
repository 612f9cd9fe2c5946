package models

// ActivityType names a per-user activity counter tracked by the badge engine.
type ActivityType string

const (
	ActivityReport    ActivityType = "report"
	ActivityUpdate    ActivityType = "update"
	ActivityCompleted ActivityType = "completed"
)

// BadgeCriteria describes the counter threshold a badge is granted against.
type BadgeCriteria struct {
	Type  ActivityType `json:"type"`
	Count int          `json:"count"`
}

// BadgeDefinition is a static achievement definition. The table is fixed at
// compile time and never mutated; users reference definitions by id.
type BadgeDefinition struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Icon        string        `json:"icon"`
	Level       int           `json:"level"`
	Criteria    BadgeCriteria `json:"criteria"`
}

// BadgeDefinitions is the fixed ordered table of achievements.
var BadgeDefinitions = []BadgeDefinition{
	{
		ID:          "first-report",
		Name:        "First Report",
		Description: "Filed your first issue report",
		Icon:        "flag",
		Level:       1,
		Criteria:    BadgeCriteria{Type: ActivityReport, Count: 1},
	},
	{
		ID:          "active-reporter",
		Name:        "Active Reporter",
		Description: "Filed 5 issue reports",
		Icon:        "award",
		Level:       2,
		Criteria:    BadgeCriteria{Type: ActivityReport, Count: 5},
	},
	{
		ID:          "super-reporter",
		Name:        "Super Reporter",
		Description: "Filed 10 issue reports",
		Icon:        "trophy",
		Level:       3,
		Criteria:    BadgeCriteria{Type: ActivityReport, Count: 10},
	},
	{
		ID:          "first-update",
		Name:        "First Update",
		Description: "Posted your first update on a report",
		Icon:        "message-circle",
		Level:       1,
		Criteria:    BadgeCriteria{Type: ActivityUpdate, Count: 1},
	},
	{
		ID:          "active-commenter",
		Name:        "Active Commenter",
		Description: "Posted 10 updates on reports",
		Icon:        "messages-square",
		Level:       2,
		Criteria:    BadgeCriteria{Type: ActivityUpdate, Count: 10},
	},
	{
		ID:          "first-completed",
		Name:        "First Fix",
		Description: "Had your first report resolved",
		Icon:        "check-square",
		Level:       1,
		Criteria:    BadgeCriteria{Type: ActivityCompleted, Count: 1},
	},
	{
		ID:          "problem-solver",
		Name:        "Problem Solver",
		Description: "Had 5 reports resolved",
		Icon:        "star",
		Level:       2,
		Criteria:    BadgeCriteria{Type: ActivityCompleted, Count: 5},
	},
}

// CounterFor returns the user's counter value matching the criterion type.
func CounterFor(u *User, t ActivityType) int {
	switch t {
	case ActivityReport:
		return u.ReportCount
	case ActivityUpdate:
		return u.UpdateCount
	case ActivityCompleted:
		return u.CompletedCount
	}
	return 0
}
