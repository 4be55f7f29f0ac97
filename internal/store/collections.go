package store

import (
	"slices"

	"cinescope/internal/models"
)

// IsMember reports whether id is in collection c.
func (s *Store) IsMember(c models.Collection, id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collections[c].Has(id)
}

// Collection returns the ids in c in insertion order.
func (s *Store) Collection(c models.Collection) []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone([]int(s.collections[c]))
}

// Toggle adds id to c if absent and removes it otherwise, then persists c.
// Ids are not checked against the catalog. It returns the new membership;
// an unknown collection is ignored and reports false.
func (s *Store) Toggle(c models.Collection, id int) bool {
	var member bool
	s.mutate(func() bool {
		set, ok := s.collections[c]
		if !ok {
			return false
		}
		next := set.Toggle(id)
		s.collections[c] = next
		member = next.Has(id)
		return true
	}, Slice(c))
	return member
}

func (s *Store) ToggleLike(id int) bool { return s.Toggle(models.LikedMovies, id) }

func (s *Store) ToggleWatchLater(id int) bool { return s.Toggle(models.WatchLaterMovies, id) }

func (s *Store) ToggleLikeSeries(id int) bool { return s.Toggle(models.LikedSeries, id) }

func (s *Store) ToggleWatchLaterSeries(id int) bool { return s.Toggle(models.WatchLaterSeries, id) }
