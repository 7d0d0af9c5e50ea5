package sprint

import "testing"

func TestNumber(t *testing.T) {
	cases := []struct {
		name string
		want int
	}{
		{"Sprint 34", 34},
		{"sprint-40 (hotfix)", 40},
		{"BACKLOG", 0},
		{"", 0},
	}
	for _, tc := range cases {
		if got := Number(tc.name); got != tc.want {
			t.Errorf("Number(%q) = %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestAverageVelocity(t *testing.T) {
	completed := func(name string, points float64) Sprint {
		return Sprint{
			Name:    name,
			Status:  StatusCompleted,
			Metrics: Metrics{StoryPoints: StoryPoints{Completed: points}},
		}
	}

	sprints := []Sprint{
		completed("Sprint 30", 100), // before the baseline, ignored
		completed("Sprint 32", 20),
		completed("Sprint 33", 30),
		{Name: "Sprint 34", Status: StatusActive, Metrics: Metrics{StoryPoints: StoryPoints{Completed: 99}}},
	}

	if got := AverageVelocity(sprints); got != 25 {
		t.Errorf("AverageVelocity = %d, want 25", got)
	}
	if got := AverageVelocity(nil); got != 0 {
		t.Errorf("AverageVelocity(nil) = %d, want 0", got)
	}
}
