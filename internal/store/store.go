// Package store owns all per-user application state: collections, watch
// progress, reviews, profiles, theme, the player slot and catalog filters.
//
// Every mutation runs under one mutex together with the save of the slices
// it touched, so saves reach the backend in mutation order. Listeners are
// called after the lock is released and may call back into the store.
package store

import (
	"sync"

	"cinescope/internal/logging"
	"cinescope/internal/metrics"
	"cinescope/internal/models"
	"cinescope/internal/storage"
)

// Slice names one independently persisted (or ephemeral) piece of state.
type Slice string

const (
	SliceLikedMovies      Slice = Slice(models.LikedMovies)
	SliceWatchLaterMovies Slice = Slice(models.WatchLaterMovies)
	SliceLikedSeries      Slice = Slice(models.LikedSeries)
	SliceWatchLaterSeries Slice = Slice(models.WatchLaterSeries)
	SliceProgress         Slice = "progress"
	SliceReviews          Slice = "reviews"
	SliceProfiles         Slice = "profiles"
	SliceCurrentProfile   Slice = "currentProfile"
	SliceTheme            Slice = "theme"
	SlicePlayer           Slice = "player"
	SliceFilters          Slice = "filters"
)

// Store is the single owner of application state. Create it with New.
type Store struct {
	mu     sync.Mutex
	bridge *storage.Bridge
	table  []sliceSpec
	ready  map[Slice]bool

	collections    map[models.Collection]models.IDSet
	progress       progressLedger
	reviews        map[int][]models.Review
	profiles       []models.Profile
	currentProfile int
	theme          models.Theme
	player         models.PlayerState
	filters        models.FilterState

	listenersMu  sync.Mutex
	listeners    map[int]func(Slice)
	nextListener int
}

// New builds a store over bridge and hydrates every persisted slice once.
// Nothing is written during construction.
func New(bridge *storage.Bridge) *Store {
	s := &Store{
		bridge:    bridge,
		table:     sliceTable(),
		ready:     make(map[Slice]bool),
		listeners: make(map[int]func(Slice)),
	}
	s.mu.Lock()
	s.hydrateAll()
	s.mu.Unlock()
	return s
}

// hydrateAll resets every slice to its default and then loads persisted
// slices from the bridge. Caller holds mu.
func (s *Store) hydrateAll() {
	s.resetDefaults()
	for _, spec := range s.table {
		spec.hydrate(s, s.bridge)
		s.ready[spec.name] = true
	}
	logging.Debug().Int("slices", len(s.table)).Msg("store hydrated")
}

func (s *Store) resetDefaults() {
	s.collections = make(map[models.Collection]models.IDSet, len(models.Collections))
	for _, c := range models.Collections {
		s.collections[c] = models.IDSet{}
	}
	s.progress = newProgressLedger()
	s.reviews = make(map[int][]models.Review)
	s.profiles = models.DefaultProfiles()
	s.currentProfile = models.DefaultCurrentProfileID
	s.theme = models.ThemeDark
	s.player = models.IdlePlayer()
	s.filters = models.DefaultFilters()
}

// Reload drops in-memory state and hydrates again from the backend, e.g.
// after a restore replaced the stored keys. Player and filters go back to
// their defaults.
func (s *Store) Reload() {
	s.mu.Lock()
	s.hydrateAll()
	s.mu.Unlock()

	all := []Slice{SlicePlayer, SliceFilters}
	for _, spec := range s.table {
		all = append(all, spec.name)
	}
	s.notify(all)
}

// persist saves one slice. A slice that has not been hydrated is never
// written, so defaults cannot overwrite stored data. Caller holds mu.
func (s *Store) persist(name Slice) {
	spec, ok := s.spec(name)
	if !ok {
		// ephemeral slice
		return
	}
	if !s.ready[name] {
		logging.Warn().Str("slice", string(name)).Str("key", spec.key).Msg("refusing to save slice before hydration")
		return
	}
	s.bridge.Save(spec.key, spec.codec, spec.snapshot(s))
}

func (s *Store) spec(name Slice) (sliceSpec, bool) {
	for _, spec := range s.table {
		if spec.name == name {
			return spec, true
		}
	}
	return sliceSpec{}, false
}

// mutate runs fn under the store lock. When fn reports a change, every
// slice in changed is persisted before the lock is released and listeners
// are notified afterwards.
func (s *Store) mutate(fn func() bool, changed ...Slice) bool {
	return len(s.commit(func() []Slice {
		if fn() {
			return changed
		}
		return nil
	})) > 0
}

// commit is mutate for operations that decide which slices they touched.
func (s *Store) commit(fn func() []Slice) []Slice {
	s.mu.Lock()
	changed := fn()
	for _, name := range changed {
		s.persist(name)
		metrics.StoreMutations.WithLabelValues(string(name)).Inc()
	}
	s.mu.Unlock()

	s.notify(changed)
	return changed
}

// Subscribe registers fn to be called with each slice that changed. The
// returned function removes the subscription.
func (s *Store) Subscribe(fn func(Slice)) (unsubscribe func()) {
	s.listenersMu.Lock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn
	s.listenersMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.listenersMu.Lock()
			delete(s.listeners, id)
			s.listenersMu.Unlock()
		})
	}
}

func (s *Store) notify(changed []Slice) {
	s.listenersMu.Lock()
	fns := make([]func(Slice), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.listenersMu.Unlock()

	for _, name := range changed {
		for _, fn := range fns {
			fn(name)
		}
	}
}
