package sprint

import "time"

// ResolveStatus decides a sprint's lifecycle state. Full completion
// overrides date-based signals even before the nominal end date.
func ResolveStatus(r DateRange, m TaskMetrics, now time.Time) Status {
	if m.Total > 0 && m.Completed == m.Total {
		return StatusCompleted
	}
	if now.After(r.End) {
		return StatusCompleted
	}
	if !now.Before(r.Start) && !now.After(r.End) {
		return StatusActive
	}
	if now.Before(r.Start) {
		return StatusDraft
	}
	// Undecidable window; fall back on progress.
	if m.Completed > 0 {
		return StatusActive
	}
	return StatusDraft
}
