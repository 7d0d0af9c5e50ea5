// Package quality turns QA API entities into dashboard records: test runs
// merged with their stored daily history, and test-case automation stats.
package quality

import (
	"fmt"
	"time"

	"qaboard/internal/history"
	"qaboard/internal/qase"
)

// TestRun is a dashboard-facing run record. Historical entries come from
// the local store rather than the live API.
type TestRun struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Status       string `json:"status"`
	Passed       int    `json:"passed"`
	Failed       int    `json:"failed"`
	Skipped      int    `json:"skipped"`
	Total        int    `json:"total"`
	LastUpdated  string `json:"lastUpdated"`
	IsHistorical bool   `json:"isHistorical"`
	IsCurrentRun bool   `json:"isCurrentRun"`
	TestCount    int    `json:"testCount"`
}

// TestCase is a dashboard-facing case record with the numeric API codes
// translated to labels.
type TestCase struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Automation  string `json:"automation"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	Suite       string `json:"suite"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// CaseGroupStats counts cases of one automation kind by lifecycle status.
type CaseGroupStats struct {
	Total      int `json:"total"`
	Active     int `json:"active"`
	Draft      int `json:"draft"`
	Deprecated int `json:"deprecated"`
}

// CaseStats is the manual/automated breakdown shown on the quality tab.
type CaseStats struct {
	Manual    CaseGroupStats `json:"manual"`
	Automated CaseGroupStats `json:"automated"`
}

// RunFromQase maps a raw run entity to a dashboard record. Status is taken
// from the textual field when present, the numeric code otherwise; counts
// prefer the top-level fields and fall back to the stats block.
func RunFromQase(run qase.Run, now time.Time) TestRun {
	status := "pending"
	switch {
	case run.StatusText == "passed" || run.Status == 1:
		status = "passed"
	case run.StatusText == "failed" || run.Status == 3:
		status = "failed"
	case run.StatusText == "running" || run.Status == 2:
		status = "running"
	}

	name := run.Title
	if name == "" {
		name = fmt.Sprintf("Test Run %d", run.ID)
	}

	lastUpdated := run.EndTime
	if lastUpdated == "" {
		lastUpdated = run.StartTime
	}
	if lastUpdated == "" {
		lastUpdated = now.Format(time.RFC3339)
	}

	total := pick(run.Total, run.Stats.Total)
	return TestRun{
		ID:           fmt.Sprintf("%d", run.ID),
		Name:         name,
		Status:       status,
		Passed:       pick(run.Passed, run.Stats.Passed),
		Failed:       pick(run.Failed, run.Stats.Failed),
		Skipped:      pick(run.Skipped, run.Stats.Skipped),
		Total:        total,
		LastUpdated:  lastUpdated,
		IsCurrentRun: true,
		TestCount:    total,
	}
}

func pick(primary, fallback int) int {
	if primary != 0 {
		return primary
	}
	return fallback
}

// CaseFromQase maps a raw case entity, translating the automation, status
// and priority codes.
func CaseFromQase(c qase.Case, now time.Time) TestCase {
	automation := "manual"
	switch c.Automation {
	case 2:
		automation = "automated"
	case 1:
		automation = "to-be-automated"
	}

	status := "active"
	switch c.Status {
	case 1:
		status = "draft"
	case 2:
		status = "deprecated"
	}

	priority := "medium"
	switch c.Priority {
	case 1:
		priority = "low"
	case 3:
		priority = "high"
	case 4:
		priority = "critical"
	}

	title := c.Title
	if title == "" {
		title = "Untitled test case"
	}
	suite := "No suite"
	if c.Suite != nil && c.Suite.Title != "" {
		suite = c.Suite.Title
	}

	createdAt := c.CreatedAt
	if createdAt == "" {
		createdAt = now.Format(time.RFC3339)
	}
	updatedAt := c.UpdatedAt
	if updatedAt == "" {
		updatedAt = now.Format(time.RFC3339)
	}

	return TestCase{
		ID:          c.ID,
		Title:       title,
		Description: c.Description,
		Automation:  automation,
		Status:      status,
		Priority:    priority,
		Suite:       suite,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

// ComputeCaseStats counts manual and automated cases by lifecycle status.
// Cases still waiting to be automated are not counted on either side.
func ComputeCaseStats(cases []TestCase) CaseStats {
	var stats CaseStats
	for _, tc := range cases {
		var group *CaseGroupStats
		switch tc.Automation {
		case "manual":
			group = &stats.Manual
		case "automated":
			group = &stats.Automated
		default:
			continue
		}
		group.Total++
		switch tc.Status {
		case "active":
			group.Active++
		case "draft":
			group.Draft++
		case "deprecated":
			group.Deprecated++
		}
	}
	return stats
}

// fromStored rehydrates a history snapshot as a historical run record.
func fromStored(r history.StoredTestRun) TestRun {
	return TestRun{
		ID:           r.ID,
		Name:         r.Name,
		Status:       r.Status,
		Passed:       r.Passed,
		Failed:       r.Failed,
		Skipped:      r.Skipped,
		Total:        r.Total,
		LastUpdated:  r.LastUpdated,
		IsHistorical: true,
		TestCount:    r.Total,
	}
}
