package store

import (
	"context"
	"sync"

	"github.com/couchcryptid/forecast-enrichment-service/internal/domain"
)

// MemoryStore is a concurrency-safe in-memory store for enriched forecast
// datasets. It keeps a bounded history, newest last, and serves the latest
// dataset to the HTTP API.
type MemoryStore struct {
	mu       sync.RWMutex
	datasets []domain.ForecastDataset

	// max number of retained datasets; <= 0 means unlimited
	maxHistory int
}

// NewMemoryStore creates a MemoryStore retaining at most maxHistory datasets.
func NewMemoryStore(maxHistory int) *MemoryStore {
	return &MemoryStore{maxHistory: maxHistory}
}

// LoadDataset appends the dataset and enforces the retention bound. It never
// fails, so the pipeline treats the store as an always-available sink.
func (s *MemoryStore) LoadDataset(_ context.Context, ds domain.ForecastDataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.datasets = append(s.datasets, ds)

	if s.maxHistory > 0 && len(s.datasets) > s.maxHistory {
		over := len(s.datasets) - s.maxHistory
		s.datasets = append([]domain.ForecastDataset(nil), s.datasets[over:]...)
	}
	return nil
}

// Latest returns the most recently loaded dataset, reporting false when no
// refresh has completed yet.
func (s *MemoryStore) Latest() (domain.ForecastDataset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.datasets) == 0 {
		return domain.ForecastDataset{}, false
	}
	return s.datasets[len(s.datasets)-1], true
}

// History returns all retained datasets, oldest first.
func (s *MemoryStore) History() []domain.ForecastDataset {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.ForecastDataset, len(s.datasets))
	copy(out, s.datasets)
	return out
}
