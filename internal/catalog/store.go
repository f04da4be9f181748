package catalog

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"lokonnect/internal/api"
	"lokonnect/internal/models"
)

// CategoryAll is the wildcard category filter.
const CategoryAll = "All"

// Lister is the slice of the API client the catalog needs.
type Lister interface {
	ListServices(ctx context.Context, filters api.ServiceFilters) ([]models.Event, error)
}

// Store holds the unfiltered event list plus the three independent
// filter predicates. The visible set is the conjunction of all three,
// derived on demand; events are never mutated after load.
type Store struct {
	mu     sync.RWMutex
	lister Lister
	logger *zap.Logger

	events []models.Event
	loaded bool
	gen    int

	search   string
	category string
	location string
}

// NewStore creates a catalog store.
func NewStore(lister Lister, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		lister:   lister,
		logger:   logger,
		category: CategoryAll,
	}
}

// Load fetches the catalog. A response superseded by a newer Load is
// discarded rather than applied. When the API is unavailable and
// nothing has loaded yet, the static fallback dataset is served.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	events, err := s.lister.ListServices(ctx, api.ServiceFilters{})

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		// A newer load superseded this one; drop the response.
		s.logger.Debug("discarding stale catalog response")
		return nil
	}

	if err != nil {
		if !s.loaded {
			s.logger.Warn("catalog fetch failed, using fallback data", zap.Error(err))
			s.events = fallbackEvents()
			s.loaded = true
			return nil
		}
		return err
	}

	s.events = events
	s.loaded = true
	return nil
}

// SetSearch sets the free-text filter.
func (s *Store) SetSearch(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.search = query
}

// SetCategory sets the category filter; CategoryAll matches everything.
func (s *Store) SetCategory(category string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if category == "" {
		category = CategoryAll
	}
	s.category = category
}

// SetLocation sets the location filter; empty matches everything.
func (s *Store) SetLocation(location string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.location = location
}

// Events returns the unfiltered event list.
func (s *Store) Events() []models.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Event, len(s.events))
	copy(out, s.events)
	return out
}

// Visible returns the events matching all three filters.
func (s *Store) Visible() []models.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Event
	for _, e := range s.events {
		if !e.MatchesSearch(s.search) {
			continue
		}
		if s.category != CategoryAll && e.Category != s.category {
			continue
		}
		if s.location != "" && e.Location != s.location {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Find returns an event by id.
func (s *Store) Find(id string) (*models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.events {
		if s.events[i].ID == id {
			e := s.events[i]
			return &e, nil
		}
	}
	return nil, models.ErrEventNotFound
}
