package sprint

import (
	"math"
	"regexp"
	"strconv"
)

var sprintNumberRe = regexp.MustCompile(`\d+`)

// Number extracts the sprint number from a display name ("Sprint 34" -> 34).
// Returns 0 when the name carries no digits.
func Number(name string) int {
	m := sprintNumberRe.FindString(name)
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return n
}

// velocityBaselineSprint is the first sprint counted in the long-term
// average; earlier sprints predate the current estimation practice.
const velocityBaselineSprint = 32

// AverageVelocity computes the mean completed story points per completed
// sprint, counting only sprints at or after the baseline.
func AverageVelocity(sprints []Sprint) int {
	var total float64
	var count int
	for _, s := range sprints {
		if s.Status != StatusCompleted {
			continue
		}
		if Number(s.Name) < velocityBaselineSprint {
			continue
		}
		total += s.Metrics.StoryPoints.Completed
		count++
	}
	if count == 0 {
		return 0
	}
	return int(math.Round(total / float64(count)))
}
