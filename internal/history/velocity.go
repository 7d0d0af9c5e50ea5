package history

import (
	"encoding/json"
	"math"
	"sort"

	"github.com/rs/zerolog/log"
)

const velocityKey = "sprint_velocity_history"

// velocityRetention caps how many sprints of velocity history are kept.
const velocityRetention = 24

// VelocityEntry records the completed story points of one sprint.
type VelocityEntry struct {
	SprintID             string  `json:"sprintId"`
	SprintName           string  `json:"sprintName"`
	EndDate              string  `json:"endDate"`
	CompletedStoryPoints float64 `json:"completedStoryPoints"`
}

// VelocityStore retains the completed-story-points trend across sprints.
type VelocityStore struct {
	kv KV
}

func NewVelocityStore(kv KV) *VelocityStore {
	return &VelocityStore{kv: kv}
}

func (s *VelocityStore) read() []VelocityEntry {
	data, ok := s.kv.Get(velocityKey)
	if !ok {
		return nil
	}
	var entries []VelocityEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		log.Warn().Err(err).Msg("Discarding unreadable velocity history")
		return nil
	}
	return entries
}

// Save upserts an entry, matching on sprint id first and end date second
// (a reused sprint id must not produce duplicate samples). The history is
// kept sorted by end date and capped to the most recent entries.
func (s *VelocityStore) Save(entry VelocityEntry) {
	entries := s.read()

	idx := -1
	for i, e := range entries {
		if e.SprintID == entry.SprintID || e.EndDate == entry.EndDate {
			idx = i
			break
		}
	}
	if idx >= 0 {
		entries[idx] = entry
	} else {
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].EndDate < entries[j].EndDate
	})
	if len(entries) > velocityRetention {
		entries = entries[len(entries)-velocityRetention:]
	}

	data, err := json.Marshal(entries)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to encode velocity history")
		return
	}
	if err := s.kv.Set(velocityKey, data); err != nil {
		log.Warn().Err(err).Msg("Failed to persist velocity history")
	}
}

// All returns the full history, oldest first.
func (s *VelocityStore) All() []VelocityEntry {
	entries := s.read()
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].EndDate < entries[j].EndDate
	})
	return entries
}

// LastN returns the most recent n entries, oldest first.
func (s *VelocityStore) LastN(n int) []VelocityEntry {
	entries := s.All()
	if len(entries) > n {
		entries = entries[len(entries)-n:]
	}
	return entries
}

// AverageCompleted returns the mean completed story points over the most
// recent lastN sprints, rounded to the nearest integer.
func (s *VelocityStore) AverageCompleted(lastN int) int {
	if lastN <= 0 {
		lastN = 4
	}
	recent := s.LastN(lastN)
	if len(recent) == 0 {
		return 0
	}
	var sum float64
	for _, e := range recent {
		sum += e.CompletedStoryPoints
	}
	return int(math.Round(sum / float64(len(recent))))
}
