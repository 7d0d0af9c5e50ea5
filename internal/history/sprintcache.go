package history

import (
	"encoding/json"
	"time"

	"qaboard/internal/sprint"

	"github.com/rs/zerolog/log"
)

// sprintCacheMaxAge is how long a cached per-space sprint history counts
// as fresh.
const sprintCacheMaxAge = 7 * 24 * time.Hour

type sprintCachePayload struct {
	History   []sprint.Sprint `json:"history"`
	Timestamp time.Time       `json:"timestamp"`
	SpaceID   string          `json:"spaceId"`
}

// SprintCacheStore caches each space's processed sprint history so
// completed sprints are not re-fetched on every cycle.
type SprintCacheStore struct {
	kv  KV
	now func() time.Time
}

func NewSprintCacheStore(kv KV) *SprintCacheStore {
	return &SprintCacheStore{kv: kv, now: time.Now}
}

// WithClock overrides the store's clock, for freshness tests.
func (s *SprintCacheStore) WithClock(now func() time.Time) *SprintCacheStore {
	s.now = now
	return s
}

func cacheKey(spaceID string) string {
	return "sprintHistory_" + spaceID
}

// Load returns the cached sprint history for a space, or nil when absent
// or older than the freshness window.
func (s *SprintCacheStore) Load(spaceID string) []sprint.Sprint {
	data, ok := s.kv.Get(cacheKey(spaceID))
	if !ok {
		return nil
	}
	var payload sprintCachePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		log.Warn().Err(err).Str("space", spaceID).Msg("Discarding unreadable sprint cache")
		return nil
	}
	if s.now().Sub(payload.Timestamp) >= sprintCacheMaxAge {
		return nil
	}
	return payload.History
}

// Save replaces the cached history for a space, stamping it with the
// current time for the freshness check.
func (s *SprintCacheStore) Save(spaceID string, sprints []sprint.Sprint) {
	payload := sprintCachePayload{
		History:   sprints,
		Timestamp: s.now(),
		SpaceID:   spaceID,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		log.Warn().Err(err).Str("space", spaceID).Msg("Failed to encode sprint cache")
		return
	}
	if err := s.kv.Set(cacheKey(spaceID), data); err != nil {
		log.Warn().Err(err).Str("space", spaceID).Msg("Failed to persist sprint cache")
	}
}
