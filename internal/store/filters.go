package store

import "cinescope/internal/models"

// Filters returns the catalog selectors. They are not persisted.
func (s *Store) Filters() models.FilterState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters
}

// SetActiveCategory sets the category selector; blank means "all".
// Resetting an actor the new category lacks is left to subscribers.
func (s *Store) SetActiveCategory(category string) {
	category = models.NormalizeSelector(category)
	s.mutate(func() bool {
		if s.filters.ActiveCategory == category {
			return false
		}
		s.filters.ActiveCategory = category
		return true
	}, SliceFilters)
}

// SetActiveActor sets the actor selector; blank means "all".
func (s *Store) SetActiveActor(actor string) {
	actor = models.NormalizeSelector(actor)
	s.mutate(func() bool {
		if s.filters.ActiveActor == actor {
			return false
		}
		s.filters.ActiveActor = actor
		return true
	}, SliceFilters)
}

// ResetFilters sets both selectors back to "all".
func (s *Store) ResetFilters() {
	s.mutate(func() bool {
		if s.filters == models.DefaultFilters() {
			return false
		}
		s.filters = models.DefaultFilters()
		return true
	}, SliceFilters)
}
