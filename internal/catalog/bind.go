package catalog

import (
	"slices"
	"strings"
	"sync"

	"cinescope/internal/models"
	"cinescope/internal/store"
)

// ReconcileActor keeps prev when it is "all" or still among actors, and
// otherwise falls back to "all".
func ReconcileActor(prev string, actors []string) string {
	prev = models.NormalizeSelector(prev)
	if prev == models.FilterAll {
		return prev
	}
	if slices.ContainsFunc(actors, func(a string) bool { return strings.EqualFold(a, prev) }) {
		return prev
	}
	return models.FilterAll
}

// BindFilters keeps the store's actor selector consistent with its
// category selector for kind: whenever the category changes and the
// selected actor does not appear in it, the actor resets to "all".
func (c *Catalog) BindFilters(s *store.Store, kind models.Kind) (unbind func()) {
	var mu sync.Mutex
	lastCategory := s.Filters().ActiveCategory

	return s.Subscribe(func(changed store.Slice) {
		if changed != store.SliceFilters {
			return
		}
		f := s.Filters()

		mu.Lock()
		if f.ActiveCategory == lastCategory {
			mu.Unlock()
			return
		}
		lastCategory = f.ActiveCategory
		mu.Unlock()

		if next := ReconcileActor(f.ActiveActor, c.ActorsFor(kind, f.ActiveCategory)); next != f.ActiveActor {
			s.SetActiveActor(next)
		}
	})
}
