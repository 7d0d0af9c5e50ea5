package dashboard

import (
	"context"
	"strings"

	"qaboard/internal/clickup"
	"qaboard/internal/sprint"

	"github.com/rs/zerolog/log"
)

// sprintHistory rebuilds the per-sprint history for a space. Completed
// sprints already in the cache are reused as-is; only active, draft or
// unknown sprints are refetched, bounding repeated API load over time.
func (o *Orchestrator) sprintHistory(ctx context.Context, space clickup.Space) []sprint.Sprint {
	var sprintLists []clickup.List
	for _, l := range space.Lists {
		if l.Name != backlogName && strings.Contains(strings.ToLower(l.Name), "sprint") {
			sprintLists = append(sprintLists, l)
		}
	}

	saved := o.cache.Load(space.ID)
	savedByID := make(map[string]sprint.Sprint, len(saved))
	for _, s := range saved {
		savedByID[s.ID] = s
	}

	var processed []sprint.Sprint
	var toProcess []clickup.List
	for _, list := range sprintLists {
		cached, ok := savedByID[list.ID]
		if ok && cached.Status == sprint.StatusCompleted {
			processed = append(processed, cached)
			continue
		}
		toProcess = append(toProcess, list)
	}

	for _, list := range toProcess {
		tasks, err := o.fetchTasks(ctx, list.ID, false)
		if err != nil {
			log.Warn().Err(err).Str("list", list.Name).Msg("Skipping sprint history entry, task fetch failed")
			continue
		}
		processed = append(processed, sprint.FromTasks(list.ID, list.Name, tasks, o.now()))

		if err := sleepCtx(ctx, o.historyPause); err != nil {
			break
		}
	}

	o.cache.Save(space.ID, processed)
	return processed
}
