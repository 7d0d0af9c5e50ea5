package history

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
)

const testRunsKey = "qase_test_runs_history"

// testRunRetention is how far back daily snapshots are kept.
const testRunRetention = 30

// StoredTestRun is one daily test-run snapshot. ExecutionDate (YYYY-MM-DD)
// is the dedup and retention key together with ID.
type StoredTestRun struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Status        string `json:"status"`
	Passed        int    `json:"passed"`
	Failed        int    `json:"failed"`
	Skipped       int    `json:"skipped"`
	Total         int    `json:"total"`
	LastUpdated   string `json:"lastUpdated"`
	ExecutionDate string `json:"executionDate"`
}

// TestRunStore retains daily test-run snapshots across sessions.
type TestRunStore struct {
	kv  KV
	now func() time.Time
}

func NewTestRunStore(kv KV) *TestRunStore {
	return &TestRunStore{kv: kv, now: time.Now}
}

// WithClock overrides the store's clock, for retention tests.
func (s *TestRunStore) WithClock(now func() time.Time) *TestRunStore {
	s.now = now
	return s
}

func (s *TestRunStore) read() []StoredTestRun {
	data, ok := s.kv.Get(testRunsKey)
	if !ok {
		return nil
	}
	var runs []StoredTestRun
	if err := json.Unmarshal(data, &runs); err != nil {
		log.Warn().Err(err).Msg("Discarding unreadable test-run history")
		return nil
	}
	return runs
}

func (s *TestRunStore) write(runs []StoredTestRun) {
	data, err := json.Marshal(runs)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to encode test-run history")
		return
	}
	if err := s.kv.Set(testRunsKey, data); err != nil {
		log.Warn().Err(err).Msg("Failed to persist test-run history")
	}
}

// Save upserts a run by (executionDate, id), then prunes entries older than
// the retention window before writing back.
func (s *TestRunStore) Save(run StoredTestRun) {
	runs := s.read()

	found := false
	for i := range runs {
		if runs[i].ExecutionDate == run.ExecutionDate && runs[i].ID == run.ID {
			runs[i] = run
			found = true
			break
		}
	}
	if !found {
		runs = append(runs, run)
	}

	cutoff := s.now().AddDate(0, 0, -testRunRetention)
	kept := runs[:0]
	for _, r := range runs {
		if d, err := time.Parse("2006-01-02", r.ExecutionDate); err == nil && !d.Before(cutoff) {
			kept = append(kept, r)
		}
	}

	s.write(kept)
}

// History returns every retained snapshot.
func (s *TestRunStore) History() []StoredTestRun {
	return s.read()
}

// RunsForDate returns the snapshots recorded for one execution date.
func (s *TestRunStore) RunsForDate(date string) []StoredTestRun {
	var out []StoredTestRun
	for _, r := range s.read() {
		if r.ExecutionDate == date {
			out = append(out, r)
		}
	}
	return out
}

// LastWeek returns the snapshots of the past seven days, oldest first.
func (s *TestRunStore) LastWeek() []StoredTestRun {
	cutoff := s.now().AddDate(0, 0, -7)
	var out []StoredTestRun
	for _, r := range s.read() {
		if d, err := time.Parse("2006-01-02", r.ExecutionDate); err == nil && !d.Before(cutoff) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ExecutionDate < out[j].ExecutionDate
	})
	return out
}
