package sprint

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"qaboard/internal/clickup"
)

// sprintPointsField is the custom attribute carrying story points when the
// generic points field is unused.
const sprintPointsField = "Sprint points"

// StoryPointsFor resolves a task's story-point value: the "Sprint points"
// custom field when present and non-zero, else the generic points field,
// else 0.
func StoryPointsFor(task clickup.Task) float64 {
	for _, field := range task.CustomFields {
		if field.Name != sprintPointsField {
			continue
		}
		if v, ok := numericValue(field.Value); ok && v != 0 {
			return v
		}
	}
	return task.Points
}

// numericValue coerces a raw custom-field value: the API returns numbers for
// some field types and numeric strings for others.
func numericValue(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if n, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

// Aggregate computes task counts and sprint-level metrics for one task set.
// Running it twice on the same input yields identical results.
func Aggregate(tasks []clickup.Task, now time.Time) (TaskMetrics, Metrics) {
	var tm TaskMetrics
	tm.Total = len(tasks)

	var totalPoints, completedPoints float64
	var estimated, spent int64

	for _, task := range tasks {
		class := Classify(task.Status.Status)
		switch class {
		case ClassCompleted:
			tm.Completed++
		case ClassInProgress:
			tm.InProgress++
		case ClassBlocked:
			tm.Blocked++
		default:
			tm.Pending++
		}

		if due, ok := ParseDate(task.DueDate); ok && due.Before(now) && class != ClassCompleted {
			tm.Overdue++
		}

		points := StoryPointsFor(task)
		totalPoints += points
		if class == ClassCompleted {
			completedPoints += points
		}

		estimated += task.TimeEstimate
		spent += task.TimeSpent
	}

	velocity := 0
	if tm.Total > 0 {
		velocity = int(math.Round(float64(tm.Completed) / float64(tm.Total) * 100))
	}

	metrics := Metrics{
		Velocity: velocity,
		StoryPoints: StoryPoints{
			Total:     totalPoints,
			Completed: completedPoints,
			Remaining: totalPoints - completedPoints,
		},
		TimeTracking: TimeTracking{
			Estimated: estimated,
			Spent:     spent,
			Remaining: estimated - spent,
		},
	}
	return tm, metrics
}

// FromTasks builds the full derived record for one list: classification,
// date inference, aggregation and status resolution in one pass.
func FromTasks(id, name string, tasks []clickup.Task, now time.Time) Sprint {
	tm, metrics := Aggregate(tasks, now)
	r := InferRange(tasks, now)
	return Sprint{
		ID:        id,
		Name:      name,
		StartDate: r.Start.Format(dateLayout),
		EndDate:   r.End.Format(dateLayout),
		Status:    ResolveStatus(r, tm, now),
		Tasks:     tm,
		Metrics:   metrics,
	}
}
