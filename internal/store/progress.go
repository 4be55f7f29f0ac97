package store

import (
	"iter"
	"slices"

	"cinescope/internal/models"
	"cinescope/internal/timeutil"
)

// progressLedger keeps entries in first-insertion order. Updating an
// existing key keeps its position.
type progressLedger struct {
	order   []models.ProgressKey
	entries map[models.ProgressKey]models.ProgressEntry
}

func newProgressLedger() progressLedger {
	return progressLedger{entries: make(map[models.ProgressKey]models.ProgressEntry)}
}

func progressLedgerFrom(stored []models.ContinueEntry) progressLedger {
	l := newProgressLedger()
	for _, e := range stored {
		// stored values pass through the same coercion as live updates
		entry := models.NewProgressEntry(e.Time, e.Duration)
		entry.UpdatedAt = e.UpdatedAt
		l.set(e.Key, entry)
	}
	return l
}

func (l *progressLedger) set(k models.ProgressKey, e models.ProgressEntry) {
	if _, ok := l.entries[k]; !ok {
		l.order = append(l.order, k)
	}
	l.entries[k] = e
}

func (l *progressLedger) remove(k models.ProgressKey) bool {
	if _, ok := l.entries[k]; !ok {
		return false
	}
	delete(l.entries, k)
	l.order = slices.DeleteFunc(l.order, func(o models.ProgressKey) bool { return o == k })
	return true
}

func (l *progressLedger) list() []models.ContinueEntry {
	out := make([]models.ContinueEntry, 0, len(l.order))
	for _, k := range l.order {
		out = append(out, models.ContinueEntry{Key: k, ProgressEntry: l.entries[k]})
	}
	return out
}

// UpdateProgress records the playback position for key. Positions may move
// backwards. Non-finite or negative values are stored as 0 and time is
// capped at a known duration.
func (s *Store) UpdateProgress(key models.ProgressKey, t, duration float64) models.ProgressEntry {
	entry := models.NewProgressEntry(t, duration)
	entry.UpdatedAt = timeutil.Now()
	s.mutate(func() bool {
		s.progress.set(key, entry)
		return true
	}, SliceProgress)
	return entry
}

// ResetProgress forgets key entirely. It reports whether an entry existed.
func (s *Store) ResetProgress(key models.ProgressKey) bool {
	return s.mutate(func() bool {
		return s.progress.remove(key)
	}, SliceProgress)
}

// Progress returns the entry for key, or a zero entry when none exists.
func (s *Store) Progress(key models.ProgressKey) models.ProgressEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress.entries[key]
}

// MovieProgress is Progress for a movie id.
func (s *Store) MovieProgress(id int) models.ProgressEntry {
	return s.Progress(models.MovieKey(id))
}

// EpisodeProgress is Progress for one episode of a series.
func (s *Store) EpisodeProgress(seriesID, season, episode int) models.ProgressEntry {
	return s.Progress(models.EpisodeKey(seriesID, season, episode))
}

// ContinueWatching yields entries watched past the threshold, in insertion
// order. Each range over the sequence reads the current state afresh.
func (s *Store) ContinueWatching() iter.Seq[models.ContinueEntry] {
	return func(yield func(models.ContinueEntry) bool) {
		s.mu.Lock()
		entries := s.progress.list()
		s.mu.Unlock()

		for _, e := range entries {
			if e.Time <= models.ContinueWatchingThreshold {
				continue
			}
			if !yield(e) {
				return
			}
		}
	}
}

// ContinueWatchingByRecency is ContinueWatching sorted newest first.
func (s *Store) ContinueWatchingByRecency() []models.ContinueEntry {
	entries := slices.Collect(s.ContinueWatching())
	slices.SortStableFunc(entries, func(a, b models.ContinueEntry) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
	return entries
}
