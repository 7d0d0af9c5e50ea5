package quality

import (
	"context"
	"sort"
	"time"

	"qaboard/internal/history"
	"qaboard/internal/qase"

	"github.com/rs/zerolog/log"
)

const (
	runFetchLimit  = 50
	caseFetchLimit = 100
	displayWindow  = 30
)

// Refresher fetches live QA data and merges it with the stored history.
type Refresher struct {
	client qase.Client
	store  *history.TestRunStore
	now    func() time.Time
}

func NewRefresher(client qase.Client, store *history.TestRunStore) *Refresher {
	return &Refresher{client: client, store: store, now: time.Now}
}

// WithClock overrides the refresher's clock, for merge tests.
func (r *Refresher) WithClock(now func() time.Time) *Refresher {
	r.now = now
	return r
}

// RefreshRuns fetches the latest runs, records today's snapshots, and
// merges them with the past week's history. A fetch failure degrades to
// the stored history alone; it is never fatal.
func (r *Refresher) RefreshRuns(ctx context.Context) []TestRun {
	now := r.now()
	today := now.Format("2006-01-02")

	raw, err := r.client.GetRuns(ctx, runFetchLimit, 0)
	if err != nil {
		log.Warn().Err(err).Msg("Test-run fetch failed, serving stored history only")
		return r.historicalOnly()
	}

	current := make([]TestRun, 0, len(raw))
	for _, qr := range raw {
		run := RunFromQase(qr, now)
		current = append(current, run)
		r.store.Save(history.StoredTestRun{
			ID:            run.ID,
			Name:          run.Name,
			Status:        run.Status,
			Passed:        run.Passed,
			Failed:        run.Failed,
			Skipped:       run.Skipped,
			Total:         run.Total,
			LastUpdated:   run.LastUpdated,
			ExecutionDate: today,
		})
	}

	stored := r.store.LastWeek()
	var merged []TestRun
	for _, sr := range stored {
		if sr.ExecutionDate != today {
			merged = append(merged, fromStored(sr))
		}
	}

	// No snapshot for yesterday yet: carry today's first run backwards so
	// the trend chart has no gap on day one.
	yesterday := now.AddDate(0, 0, -1)
	yesterdayDate := yesterday.Format("2006-01-02")
	hasYesterday := false
	for _, sr := range stored {
		if sr.ExecutionDate == yesterdayDate {
			hasYesterday = true
			break
		}
	}
	if !hasYesterday && len(current) > 0 {
		clone := current[0]
		clone.ID = clone.ID + "_yesterday"
		clone.Name = clone.Name + " - " + yesterday.Format("02/01/2006")
		clone.LastUpdated = yesterday.Format(time.RFC3339)
		clone.IsHistorical = true
		clone.IsCurrentRun = false
		merged = append(merged, clone)
	}

	merged = append(merged, current...)
	sortByLastUpdated(merged)
	if len(merged) > displayWindow {
		merged = merged[len(merged)-displayWindow:]
	}
	return merged
}

// RefreshCases fetches test cases and computes the automation stats. On
// failure the stats degrade to zero counts.
func (r *Refresher) RefreshCases(ctx context.Context) ([]TestCase, CaseStats) {
	raw, err := r.client.GetCases(ctx, caseFetchLimit)
	if err != nil {
		log.Warn().Err(err).Msg("Test-case fetch failed, serving empty stats")
		return nil, CaseStats{}
	}

	now := r.now()
	cases := make([]TestCase, 0, len(raw))
	for _, qc := range raw {
		cases = append(cases, CaseFromQase(qc, now))
	}
	return cases, ComputeCaseStats(cases)
}

func (r *Refresher) historicalOnly() []TestRun {
	var runs []TestRun
	for _, sr := range r.store.LastWeek() {
		runs = append(runs, fromStored(sr))
	}
	sortByLastUpdated(runs)
	if len(runs) > displayWindow {
		runs = runs[len(runs)-displayWindow:]
	}
	return runs
}

func sortByLastUpdated(runs []TestRun) {
	sort.SliceStable(runs, func(i, j int) bool {
		ti, _ := time.Parse(time.RFC3339, runs[i].LastUpdated)
		tj, _ := time.Parse(time.RFC3339, runs[j].LastUpdated)
		return ti.Before(tj)
	})
}
