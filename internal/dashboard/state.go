package dashboard

import (
	"context"
	"time"

	"qaboard/internal/history"
	"qaboard/internal/quality"
	"qaboard/internal/sprint"
)

// State is the full aggregated snapshot handed to the presentation layer.
type State struct {
	SpaceID         string                  `json:"space_id"`
	SpaceName       string                  `json:"space_name"`
	Sprints         []sprint.Sprint         `json:"sprints"`
	SprintHistory   []sprint.Sprint         `json:"sprint_history"`
	AverageVelocity int                     `json:"average_velocity"`
	VelocityHistory []history.VelocityEntry `json:"velocity_history"`
	TestRuns        []quality.TestRun       `json:"test_runs"`
	TestCaseStats   quality.CaseStats       `json:"test_case_stats"`
	RefreshedAt     time.Time               `json:"refreshed_at"`
}

type qualityResult struct {
	runs  []quality.TestRun
	stats quality.CaseStats
}

// RefreshQuality runs a QA refresh. Concurrent callers join the in-flight
// cycle. The quality side never fails the overall refresh; it degrades to
// stored or empty data internally.
func (o *Orchestrator) RefreshQuality(ctx context.Context) ([]quality.TestRun, quality.CaseStats) {
	v, _, _ := o.flight.Do("quality", func() (interface{}, error) {
		runs := o.quality.RefreshRuns(ctx)
		_, stats := o.quality.RefreshCases(ctx)
		return qualityResult{runs: runs, stats: stats}, nil
	})
	res := v.(qualityResult)
	return res.runs, res.stats
}

// Refresh runs one full cycle over both data sources and assembles the
// dashboard state. A sprint discovery failure aborts with no data update;
// everything else degrades partially.
func (o *Orchestrator) Refresh(ctx context.Context) (*State, error) {
	sprints, err := o.RefreshSprints(ctx)
	if err != nil {
		return nil, err
	}
	runs, stats := o.RefreshQuality(ctx)

	return &State{
		SpaceID:         sprints.SpaceID,
		SpaceName:       sprints.SpaceName,
		Sprints:         sprints.Sprints,
		SprintHistory:   sprints.History,
		AverageVelocity: sprint.AverageVelocity(sprints.History),
		VelocityHistory: o.velocity.All(),
		TestRuns:        runs,
		TestCaseStats:   stats,
		RefreshedAt:     o.now(),
	}, nil
}
