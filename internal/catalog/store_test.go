package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lokonnect/internal/api"
	"lokonnect/internal/models"
)

type mockLister struct {
	mu     sync.Mutex
	events []models.Event
	err    error

	// when set, ListServices parks until the channel closes
	block chan struct{}
}

func (m *mockLister) ListServices(ctx context.Context, filters api.ServiceFilters) ([]models.Event, error) {
	m.mu.Lock()
	block := m.block
	events := m.events
	err := m.err
	m.mu.Unlock()

	if block != nil {
		<-block
	}
	return events, err
}

func sampleEvents() []models.Event {
	return []models.Event{
		{ID: "1", Title: "Sunburn Arena", Category: "Music", Location: "Mumbai", Venue: "Phoenix Marketcity"},
		{ID: "2", Title: "Stand-up Comedy Night", Category: "Comedy", Location: "Mumbai", Venue: "Canvas Laugh Club"},
		{ID: "3", Title: "Jazz Evening", Category: "Music", Location: "Pune", Venue: "Shisha Jazz Cafe"},
	}
}

func TestStoreLoad(t *testing.T) {
	s := NewStore(&mockLister{events: sampleEvents()}, nil)
	require.NoError(t, s.Load(context.Background()))
	assert.Len(t, s.Events(), 3)
}

func TestStoreFiltersAreConjunctive(t *testing.T) {
	s := NewStore(&mockLister{events: sampleEvents()}, nil)
	require.NoError(t, s.Load(context.Background()))

	// Defaults show everything.
	assert.Len(t, s.Visible(), 3)

	s.SetCategory("Music")
	visible := s.Visible()
	require.Len(t, visible, 2)

	s.SetLocation("Mumbai")
	visible = s.Visible()
	require.Len(t, visible, 1)
	assert.Equal(t, "Sunburn Arena", visible[0].Title)

	s.SetSearch("jazz")
	assert.Empty(t, s.Visible(), "all three filters must hold at once")

	// Each filter relaxes independently.
	s.SetLocation("")
	s.SetCategory(CategoryAll)
	visible = s.Visible()
	require.Len(t, visible, 1)
	assert.Equal(t, "Jazz Evening", visible[0].Title)
}

func TestStoreSearchMatchesVenue(t *testing.T) {
	s := NewStore(&mockLister{events: sampleEvents()}, nil)
	require.NoError(t, s.Load(context.Background()))

	s.SetSearch("phoenix")
	visible := s.Visible()
	require.Len(t, visible, 1)
	assert.Equal(t, "1", visible[0].ID)
}

func TestStoreFallbackOnFirstLoadFailure(t *testing.T) {
	lister := &mockLister{err: errors.New("connection refused")}
	s := NewStore(lister, nil)

	require.NoError(t, s.Load(context.Background()), "first-load failure falls back, not errors")
	assert.NotEmpty(t, s.Events(), "fallback dataset must be served")
}

func TestStoreLoadedDataSurvivesLaterFailure(t *testing.T) {
	lister := &mockLister{events: sampleEvents()}
	s := NewStore(lister, nil)
	require.NoError(t, s.Load(context.Background()))

	lister.mu.Lock()
	lister.err = errors.New("connection refused")
	lister.events = nil
	lister.mu.Unlock()

	require.Error(t, s.Load(context.Background()))
	assert.Len(t, s.Events(), 3, "a later failure must not clobber loaded data")
}

func TestStoreStaleLoadDiscarded(t *testing.T) {
	lister := &mockLister{events: []models.Event{{ID: "old", Title: "Old"}}}
	lister.block = make(chan struct{})
	s := NewStore(lister, nil)

	firstDone := make(chan error, 1)
	go func() { firstDone <- s.Load(context.Background()) }()
	time.Sleep(20 * time.Millisecond) // let the first load reach the lister

	// A second load supersedes the first while it is still in flight.
	block := lister.block
	lister.mu.Lock()
	lister.block = nil
	lister.events = []models.Event{{ID: "new", Title: "New"}}
	lister.mu.Unlock()
	require.NoError(t, s.Load(context.Background()))

	close(block)
	require.NoError(t, <-firstDone)

	events := s.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "new", events[0].ID, "superseded response must be discarded")
}

func TestStoreFind(t *testing.T) {
	s := NewStore(&mockLister{events: sampleEvents()}, nil)
	require.NoError(t, s.Load(context.Background()))

	e, err := s.Find("2")
	require.NoError(t, err)
	assert.Equal(t, "Stand-up Comedy Night", e.Title)

	_, err = s.Find("missing")
	require.ErrorIs(t, err, models.ErrEventNotFound)
}
