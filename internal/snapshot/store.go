// Package snapshot holds the latest raw current-weather payload for each
// configured resource city. Entries are whole-value swaps behind a RWMutex,
// so readers never observe a partially written payload.
package snapshot

import (
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
)

type Entry struct {
	City      string          `json:"city"`
	Payload   json.RawMessage `json:"payload"`
	FetchedAt time.Time       `json:"fetched_at"`
}

type Store struct {
	mu      sync.RWMutex
	entries map[string]Entry
	logger  *zap.Logger
}

func NewStore(logger *zap.Logger) *Store {
	return &Store{
		entries: make(map[string]Entry),
		logger:  logger,
	}
}

func (s *Store) Set(city string, payload json.RawMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[city] = Entry{
		City:      city,
		Payload:   payload,
		FetchedAt: time.Now(),
	}

	s.logger.Debug("Snapshot stored",
		zap.String("city", city),
		zap.Int("payload_size", len(payload)))
}

func (s *Store) Get(city string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[city]
	return entry, ok
}

// Stats feeds the health endpoint.
func (s *Store) Stats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var oldest time.Time
	for _, entry := range s.entries {
		if oldest.IsZero() || entry.FetchedAt.Before(oldest) {
			oldest = entry.FetchedAt
		}
	}

	return map[string]interface{}{
		"cities_stored": len(s.entries),
		"oldest_fetch":  oldest,
	}
}
