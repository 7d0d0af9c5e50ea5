package sprint

import "time"

// Status is the lifecycle state of a sprint.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// StatusClass is the semantic state a free-text task status maps to.
type StatusClass string

const (
	ClassCompleted  StatusClass = "completed"
	ClassInProgress StatusClass = "in_progress"
	ClassPending    StatusClass = "pending"
	ClassBlocked    StatusClass = "blocked"
)

// DateRange is a sprint's inferred calendar window.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// TaskMetrics counts tasks per classified state. Overdue is counted
// independently of the four-way split, so a task can be both blocked and
// overdue.
type TaskMetrics struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	InProgress int `json:"in_progress"`
	Pending    int `json:"pending"`
	Overdue    int `json:"overdue"`
	Blocked    int `json:"blocked"`
}

// StoryPoints totals story-point estimates across a task set.
type StoryPoints struct {
	Total     float64 `json:"total"`
	Completed float64 `json:"completed"`
	Remaining float64 `json:"remaining"`
}

// TimeTracking sums estimated and spent time verbatim. Remaining may go
// negative and is not clamped.
type TimeTracking struct {
	Estimated int64 `json:"estimated"`
	Spent     int64 `json:"spent"`
	Remaining int64 `json:"remaining"`
}

// Metrics carries the derived sprint-level measures.
type Metrics struct {
	Velocity     int          `json:"velocity"`
	StoryPoints  StoryPoints  `json:"story_points"`
	TimeTracking TimeTracking `json:"time_tracking"`
}

// Sprint is the derived record for one task list. Dates are formatted
// YYYY-MM-DD, matching what the cache and the frontend consume.
type Sprint struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	StartDate string      `json:"start_date"`
	EndDate   string      `json:"end_date"`
	Status    Status      `json:"status"`
	Tasks     TaskMetrics `json:"tasks"`
	Metrics   Metrics     `json:"metrics"`
}

const dateLayout = "2006-01-02"
