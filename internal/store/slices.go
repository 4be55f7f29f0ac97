package store

import (
	"cinescope/internal/logging"
	"cinescope/internal/models"
	"cinescope/internal/storage"
)

// Storage keys outside the four collections, which are stored under their
// own names.
const (
	KeyReviews        = "cinescope_reviews"
	KeyProfiles       = "cinescope_profiles"
	KeyCurrentProfile = "cinescope_current_profile"
	KeyTheme          = "theme"
	KeyProgress       = "cinescope_progress"
)

// sliceSpec ties a persisted slice to its storage key and accessors.
type sliceSpec struct {
	name  Slice
	key   string
	codec storage.Codec
	// hydrate loads the stored value into the store, leaving the default
	// in place when nothing usable is stored.
	hydrate func(s *Store, b *storage.Bridge)
	// snapshot returns the value to save.
	snapshot func(s *Store) any
}

// sliceTable lists persisted slices in hydration order.
func sliceTable() []sliceSpec {
	table := make([]sliceSpec, 0, len(models.Collections)+5)
	for _, c := range models.Collections {
		table = append(table, collectionSpec(c))
	}
	return append(table,
		sliceSpec{
			name:  SliceProgress,
			key:   KeyProgress,
			codec: storage.JSON,
			hydrate: func(s *Store, b *storage.Bridge) {
				var entries []models.ContinueEntry
				if b.Load(KeyProgress, storage.JSON, &entries) {
					s.progress = progressLedgerFrom(entries)
				}
			},
			snapshot: func(s *Store) any { return s.progress.list() },
		},
		sliceSpec{
			name:  SliceReviews,
			key:   KeyReviews,
			codec: storage.JSON,
			hydrate: func(s *Store, b *storage.Bridge) {
				var ledger map[int][]models.Review
				if b.Load(KeyReviews, storage.JSON, &ledger) && ledger != nil {
					s.reviews = ledger
				}
			},
			snapshot: func(s *Store) any { return s.reviews },
		},
		sliceSpec{
			name:  SliceProfiles,
			key:   KeyProfiles,
			codec: storage.JSON,
			hydrate: func(s *Store, b *storage.Bridge) {
				var profiles []models.Profile
				if !b.Load(KeyProfiles, storage.JSON, &profiles) {
					return
				}
				if len(profiles) == 0 {
					logging.Warn().Str("key", KeyProfiles).Msg("ignoring empty stored profile list")
					return
				}
				s.profiles = profiles
			},
			snapshot: func(s *Store) any { return s.profiles },
		},
		sliceSpec{
			name:  SliceCurrentProfile,
			key:   KeyCurrentProfile,
			codec: storage.JSON,
			hydrate: func(s *Store, b *storage.Bridge) {
				var id int
				if b.Load(KeyCurrentProfile, storage.JSON, &id) {
					s.currentProfile = id
				}
			},
			snapshot: func(s *Store) any { return s.currentProfile },
		},
		sliceSpec{
			name:  SliceTheme,
			key:   KeyTheme,
			codec: storage.Text,
			hydrate: func(s *Store, b *storage.Bridge) {
				var theme models.Theme
				if b.Load(KeyTheme, storage.Text, &theme) {
					s.theme = theme
				}
			},
			snapshot: func(s *Store) any { return s.theme },
		},
	)
}

func collectionSpec(c models.Collection) sliceSpec {
	return sliceSpec{
		name:  Slice(c),
		key:   string(c),
		codec: storage.JSON,
		hydrate: func(s *Store, b *storage.Bridge) {
			var ids []int
			if b.Load(string(c), storage.JSON, &ids) {
				s.collections[c] = models.NewIDSet(ids)
			}
		},
		snapshot: func(s *Store) any { return []int(s.collections[c]) },
	}
}
