package sprint

import "strings"

// Keyword groups are tested in order; the first match wins. Cancelled and
// abandoned work is deliberately grouped under completed so a closed
// sprint's denominator includes it. The French labels come from upstream
// workspaces that mix languages in status names.
var statusGroups = []struct {
	class    StatusClass
	keywords []string
}{
	{ClassCompleted, []string{
		"complete", "done", "terminé", "finished", "closed", "resolved",
		"archived", "ready for deployment", "shipped", "deployed",
		"canceled", "cancelled", "annulé", "abandoned", "abandonné",
	}},
	{ClassInProgress, []string{
		"progress", "review", "en cours", "testing", "qa", "validation",
		"in progress", "work in progress",
	}},
	{ClassBlocked, []string{
		"blocked", "bloqué", "stuck", "waiting", "on hold", "paused",
	}},
	{ClassPending, []string{
		"open", "to do", "à faire", "new", "ready", "ready for dev",
		"ready for qa",
	}},
}

// Classify maps a free-text status label to a semantic state. Upstream
// systems use inconsistent free-text statuses, so matching is permissive:
// unmatched labels default to pending.
func Classify(label string) StatusClass {
	lower := strings.ToLower(label)
	for _, group := range statusGroups {
		for _, kw := range group.keywords {
			if strings.Contains(lower, kw) {
				return group.class
			}
		}
	}
	return ClassPending
}
