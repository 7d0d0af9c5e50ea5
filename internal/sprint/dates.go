package sprint

import (
	"strconv"
	"time"

	"qaboard/internal/clickup"
)

// ParseDate interprets a task date value. The API sends epoch-milliseconds
// strings; ISO timestamps and plain dates are accepted as a fallback.
// Invalid values report ok=false rather than an error, so callers discard
// them and move on.
func ParseDate(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), true
	}
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// InferRange derives a sprint's calendar window from its tasks.
// Preference order: due-date span, then first creation date plus 14 days,
// then a week either side of now.
func InferRange(tasks []clickup.Task, now time.Time) DateRange {
	if len(tasks) == 0 {
		return defaultRange(now)
	}

	var due []time.Time
	for _, task := range tasks {
		if t, ok := ParseDate(task.DueDate); ok {
			due = append(due, t)
		}
	}
	if len(due) > 0 {
		return DateRange{Start: earliest(due), End: latest(due)}
	}

	var created []time.Time
	for _, task := range tasks {
		if t, ok := ParseDate(task.DateCreated); ok {
			created = append(created, t)
		}
	}
	if len(created) > 0 {
		start := earliest(created)
		return DateRange{Start: start, End: start.AddDate(0, 0, 14)}
	}

	return defaultRange(now)
}

func defaultRange(now time.Time) DateRange {
	if now.IsZero() {
		// Degenerate clock; fall back to a fixed year-long window.
		start, _ := time.Parse(dateLayout, "2024-01-01")
		end, _ := time.Parse(dateLayout, "2024-12-31")
		return DateRange{Start: start, End: end}
	}
	return DateRange{
		Start: now.AddDate(0, 0, -7),
		End:   now.AddDate(0, 0, 7),
	}
}

func earliest(dates []time.Time) time.Time {
	min := dates[0]
	for _, d := range dates[1:] {
		if d.Before(min) {
			min = d
		}
	}
	return min
}

func latest(dates []time.Time) time.Time {
	max := dates[0]
	for _, d := range dates[1:] {
		if d.After(max) {
			max = d
		}
	}
	return max
}
