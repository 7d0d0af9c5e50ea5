// Package dashboard drives the refresh cycle: batched, rate-limit-aware
// retrieval from the project-management API, sprint derivation through the
// pure core, merging with cached history, and the state handed to the
// presentation layer.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"qaboard/internal/clickup"
	"qaboard/internal/config"
	"qaboard/internal/history"
	"qaboard/internal/quality"
	"qaboard/internal/sprint"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const backlogName = "BACKLOG"

// Orchestrator coordinates one refresh cycle. Individual list failures
// degrade to partial data; only top-level discovery failures surface.
type Orchestrator struct {
	cfg      *config.AppConfig
	clickup  clickup.Client
	quality  *quality.Refresher
	velocity *history.VelocityStore
	cache    *history.SprintCacheStore
	now      func() time.Time

	// Fixed-delay politeness controls. Constants by contract, fields so
	// tests can zero them.
	batchSize    int
	stagger      time.Duration
	batchPause   time.Duration
	ratePause    time.Duration
	historyPause time.Duration

	flight singleflight.Group
}

func NewOrchestrator(cfg *config.AppConfig, cu clickup.Client, q *quality.Refresher, vel *history.VelocityStore, cache *history.SprintCacheStore) *Orchestrator {
	return &Orchestrator{
		cfg:          cfg,
		clickup:      cu,
		quality:      q,
		velocity:     vel,
		cache:        cache,
		now:          time.Now,
		batchSize:    3,
		stagger:      200 * time.Millisecond,
		batchPause:   time.Second,
		ratePause:    2 * time.Second,
		historyPause: 100 * time.Millisecond,
	}
}

// WithClock overrides the orchestrator's clock, for deterministic tests.
func (o *Orchestrator) WithClock(now func() time.Time) *Orchestrator {
	o.now = now
	return o
}

// SprintsResult is the output of one sprint refresh cycle: the current
// board (backlog plus latest sprint) and the per-sprint history.
type SprintsResult struct {
	SpaceID   string          `json:"space_id"`
	SpaceName string          `json:"space_name"`
	Sprints   []sprint.Sprint `json:"sprints"`
	History   []sprint.Sprint `json:"history"`
}

// RefreshSprints runs a sprint refresh cycle. Concurrent calls join the
// in-flight cycle instead of stacking fetches.
func (o *Orchestrator) RefreshSprints(ctx context.Context) (*SprintsResult, error) {
	v, err, shared := o.flight.Do("sprints", func() (interface{}, error) {
		return o.refreshSprints(ctx)
	})
	if shared {
		log.Debug().Msg("Joined in-flight sprint refresh")
	}
	if err != nil {
		return nil, err
	}
	return v.(*SprintsResult), nil
}

func (o *Orchestrator) refreshSprints(ctx context.Context) (*SprintsResult, error) {
	spaces, err := o.discoverSpaces(ctx)
	if err != nil {
		return nil, err
	}
	space, err := selectSpace(spaces)
	if err != nil {
		return nil, err
	}
	log.Info().Str("space", space.Name).Int("lists", len(space.Lists)).Msg("Refreshing sprint data")

	sprints := o.currentBoard(ctx, space)
	hist := o.sprintHistory(ctx, space)

	// Record the active sprint's completed story points while it is live;
	// once it completes it is no longer refetched.
	for _, s := range sprints {
		if s.Status == sprint.StatusActive {
			o.velocity.Save(history.VelocityEntry{
				SprintID:             s.ID,
				SprintName:           s.Name,
				EndDate:              s.EndDate,
				CompletedStoryPoints: s.Metrics.StoryPoints.Completed,
			})
			break
		}
	}

	return &SprintsResult{
		SpaceID:   space.ID,
		SpaceName: space.Name,
		Sprints:   sprints,
		History:   hist,
	}, nil
}

// discoverSpaces walks workspace -> spaces -> sprint-containing lists.
// Failures here abort the cycle; per-space list failures only skip the
// space.
func (o *Orchestrator) discoverSpaces(ctx context.Context) ([]clickup.Space, error) {
	if _, err := o.clickup.GetTeams(ctx); err != nil {
		return nil, fmt.Errorf("workspace discovery failed: %w", err)
	}

	spaces, err := o.clickup.GetSpaces(ctx, o.cfg.WorkspaceID)
	if err != nil {
		return nil, fmt.Errorf("space discovery failed: %w", err)
	}

	var out []clickup.Space
	for _, sp := range spaces {
		lists, err := o.listsForSpace(ctx, sp.ID)
		if err != nil {
			log.Warn().Err(err).Str("space", sp.Name).Msg("Skipping space, list retrieval failed")
			continue
		}
		sp.Lists = lists
		out = append(out, sp)
	}
	return out, nil
}

// listsForSpace resolves the sprint lists of one space: the configured
// sprint folder when set, else a folder whose name mentions "sprint",
// else the space's raw lists.
func (o *Orchestrator) listsForSpace(ctx context.Context, spaceID string) ([]clickup.List, error) {
	if o.cfg.SprintFolderID != "" {
		return o.clickup.GetLists(ctx, spaceID, o.cfg.SprintFolderID)
	}

	folders, err := o.clickup.GetFolders(ctx, spaceID)
	if err != nil {
		return nil, err
	}
	for _, folder := range folders {
		if strings.Contains(strings.ToLower(folder.Name), "sprint") {
			return o.clickup.GetLists(ctx, spaceID, folder.ID)
		}
	}
	return o.clickup.GetLists(ctx, spaceID, "")
}

// selectSpace prefers the engineering space, falling back to the first
// space that has lists.
func selectSpace(spaces []clickup.Space) (clickup.Space, error) {
	for _, sp := range spaces {
		name := strings.ToLower(sp.Name)
		if strings.Contains(name, "engineering") ||
			strings.Contains(name, "dev") ||
			strings.Contains(name, "development") {
			return sp, nil
		}
	}
	if len(spaces) > 0 {
		return spaces[0], nil
	}
	return clickup.Space{}, errors.New("no space with lists found in the workspace")
}

// currentBoard produces the backlog plus the most recent sprint. When that
// narrow selection yields nothing, every list with tasks is processed
// instead, subtasks included.
func (o *Orchestrator) currentBoard(ctx context.Context, space clickup.Space) []sprint.Sprint {
	var toProcess []clickup.List

	for _, l := range space.Lists {
		if l.Name == backlogName || strings.Contains(strings.ToLower(l.Name), "backlog") {
			toProcess = append(toProcess, l)
			break
		}
	}
	var sprintLists []clickup.List
	for _, l := range space.Lists {
		if strings.Contains(strings.ToLower(l.Name), "sprint") {
			sprintLists = append(sprintLists, l)
		}
	}
	if len(sprintLists) > 0 {
		toProcess = append(toProcess, sprintLists[len(sprintLists)-1])
	}

	sprints := dropDrafts(o.processLists(ctx, toProcess, false, false))
	if len(sprints) == 0 {
		sprints = dropDrafts(o.processLists(ctx, space.Lists, true, true))
	}
	return dedupeByID(sprints)
}

// processLists fetches and derives each list's sprint record in fixed-size
// batches: members staggered by index, a fixed pause between batches. A
// failed member contributes nothing.
func (o *Orchestrator) processLists(ctx context.Context, lists []clickup.List, subtasks bool, skipEmpty bool) []sprint.Sprint {
	var out []sprint.Sprint

	for i := 0; i < len(lists); i += o.batchSize {
		end := i + o.batchSize
		if end > len(lists) {
			end = len(lists)
		}
		batch := lists[i:end]
		results := make([]*sprint.Sprint, len(batch))

		g, gctx := errgroup.WithContext(ctx)
		for j, list := range batch {
			g.Go(func() error {
				if err := sleepCtx(gctx, time.Duration(j)*o.stagger); err != nil {
					return nil
				}
				tasks, err := o.fetchTasks(gctx, list.ID, subtasks)
				if err != nil {
					log.Warn().Err(err).Str("list", list.Name).Msg("Skipping list, task fetch failed")
					return nil
				}
				if skipEmpty && len(tasks) == 0 {
					return nil
				}
				s := sprint.FromTasks(list.ID, list.Name, tasks, o.now())
				results[j] = &s
				return nil
			})
		}
		_ = g.Wait()

		for _, r := range results {
			if r != nil {
				out = append(out, *r)
			}
		}

		if end < len(lists) {
			if err := sleepCtx(ctx, o.batchPause); err != nil {
				break
			}
		}
	}
	return out
}

// fetchTasks retrieves a list's tasks, retrying once after a fixed pause
// on a rate-limit response.
func (o *Orchestrator) fetchTasks(ctx context.Context, listID string, subtasks bool) ([]clickup.Task, error) {
	q := clickup.TaskQuery{
		IncludeClosed: true,
		Subtasks:      subtasks,
		IncludeTime:   true,
		Page:          0,
	}
	tasks, err := o.clickup.GetTasks(ctx, listID, q)

	var rl *clickup.RateLimitError
	if errors.As(err, &rl) {
		log.Warn().Str("list", listID).Msg("Rate limited, retrying after pause")
		if err := sleepCtx(ctx, o.ratePause); err != nil {
			return nil, err
		}
		return o.clickup.GetTasks(ctx, listID, q)
	}
	return tasks, err
}

func dropDrafts(sprints []sprint.Sprint) []sprint.Sprint {
	kept := sprints[:0]
	for _, s := range sprints {
		if s.Status != sprint.StatusDraft {
			kept = append(kept, s)
		}
	}
	return kept
}

// dedupeByID removes duplicate sprint records (last write wins) and sorts
// by end date descending, independent of fetch completion order.
func dedupeByID(sprints []sprint.Sprint) []sprint.Sprint {
	byID := make(map[string]sprint.Sprint, len(sprints))
	order := make([]string, 0, len(sprints))
	for _, s := range sprints {
		if _, seen := byID[s.ID]; !seen {
			order = append(order, s.ID)
		}
		byID[s.ID] = s
	}

	out := make([]sprint.Sprint, 0, len(byID))
	for _, id := range order {
		out = append(out, byID[id])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EndDate > out[j].EndDate
	})
	return out
}

// sleepCtx pauses for d unless the context ends first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
