package store

import (
	"slices"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cinescope/internal/models"
	"cinescope/internal/storage"
	"cinescope/internal/timeutil"
)

func newTestStore(t *testing.T) (*Store, *storage.MemoryBackend) {
	t.Helper()
	mem := storage.NewMemoryBackend()
	return New(storage.NewBridge(mem)), mem
}

func stored(t *testing.T, mem *storage.MemoryBackend, key string) string {
	t.Helper()
	v, ok, err := mem.Get(key)
	require.NoError(t, err)
	require.True(t, ok, "key %s not stored", key)
	return string(v)
}

// For any collection, starting set and id, toggling twice restores the
// original membership and never duplicates the id.
func TestToggleTwiceRestoresSet(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("toggle(toggle(S, x), x) == S as a set", prop.ForAll(
		func(collectionIdx int, seed []int, x int) bool {
			c := models.Collections[collectionIdx]
			s, _ := newTestStore(t)
			for _, id := range models.NewIDSet(seed) {
				s.Toggle(c, id)
			}
			before := s.Collection(c)
			wasMember := s.IsMember(c, x)

			if s.Toggle(c, x) == wasMember {
				return false
			}
			if s.Toggle(c, x) != wasMember {
				return false
			}

			after := s.Collection(c)
			slices.Sort(before)
			slices.Sort(after)
			return slices.Equal(before, after)
		},
		gen.IntRange(0, len(models.Collections)-1),
		gen.SliceOf(gen.IntRange(1, 30)),
		gen.IntRange(1, 30),
	))

	properties.TestingRun(t)
}

// For any sequence of toggles, a fresh store over the same backend sees the
// same collection contents.
func TestCollectionsSurviveReload(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("hydrate(save(S)) == S", prop.ForAll(
		func(toggles []int) bool {
			mem := storage.NewMemoryBackend()
			s := New(storage.NewBridge(mem))
			for i, id := range toggles {
				s.Toggle(models.Collections[i%len(models.Collections)], id)
			}

			reloaded := New(storage.NewBridge(mem))
			for _, c := range models.Collections {
				if !slices.Equal(s.Collection(c), reloaded.Collection(c)) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(1, 20)),
	))

	properties.TestingRun(t)
}

// For any recorded time and positive duration the watched fraction stays
// within [0, 1].
func TestProgressPercentBounded(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)
	s, _ := newTestStore(t)

	properties.Property("0 <= percent <= 1 and time <= duration", prop.ForAll(
		func(id int, tm, duration float64) bool {
			s.UpdateProgress(models.MovieKey(id), tm, duration)
			e := s.MovieProgress(id)
			p := e.Percent()
			return p >= 0 && p <= 1 && e.Time <= e.Duration && e.Time >= 0
		},
		gen.IntRange(1, 1000),
		gen.Float64Range(-500, 20000),
		gen.Float64Range(0.5, 10000),
	))

	properties.TestingRun(t)
}

// For any two reviews added in order, the later one is listed first.
func TestAddReviewPrepends(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("getReviews(id)[0] == last added", prop.ForAll(
		func(contentID int, textA, textB string) bool {
			s, _ := newTestStore(t)
			a := s.AddReview(contentID, models.ReviewInput{Name: "A", Rating: 5, Text: textA})
			b := s.AddReview(contentID, models.ReviewInput{Name: "B", Rating: 6, Text: textB})
			list := s.Reviews(contentID)
			return len(list) == 2 && list[0].ID == b.ID && list[1].ID == a.ID && a.ID != b.ID
		},
		gen.IntRange(1, 500),
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}

// For any non-empty list of ratings the average is the rounded mean.
func TestAverageRatingIsRoundedMean(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("average == round1(mean)", prop.ForAll(
		func(ratings []int) bool {
			s, _ := newTestStore(t)
			if _, ok := s.AverageRating(1); ok {
				return false
			}
			sum := 0
			for _, r := range ratings {
				s.AddReview(1, models.ReviewInput{Rating: r})
				sum += r
			}
			avg, ok := s.AverageRating(1)
			want := models.RoundRating(float64(sum) / float64(len(ratings)))
			return ok && avg == want && s.ReviewCount(1) == len(ratings)
		},
		gen.SliceOfN(5, gen.IntRange(0, 10)).SuchThat(func(v []int) bool { return len(v) > 0 }),
	))

	properties.TestingRun(t)
}

func TestAverageRatingExample(t *testing.T) {
	s, _ := newTestStore(t)

	_, ok := s.AverageRating(7)
	assert.False(t, ok, "no reviews means no average")
	assert.Equal(t, []models.Review{}, s.Reviews(7))

	s.AddReview(7, models.ReviewInput{Rating: 8})
	s.AddReview(7, models.ReviewInput{Rating: "6"})
	avg, ok := s.AverageRating(7)
	require.True(t, ok)
	assert.Equal(t, 7.0, avg)

	s.AddReview(8, models.ReviewInput{Rating: "abc"})
	avg, ok = s.AverageRating(8)
	require.True(t, ok, "a zero rating is still a rating")
	assert.Equal(t, 0.0, avg)
}

// Opening any player mode replaces whatever was open.
func TestPlayerExclusive(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)
	s, _ := newTestStore(t)

	properties.Property("trailer(X) after movie(Y) is exactly trailer(X)", prop.ForAll(
		func(x, y int) bool {
			s.OpenMovie(models.ContentItem{ID: y, Kind: models.KindMovie})
			s.OpenTrailer(models.ContentItem{ID: x, Kind: models.KindMovie})
			p := s.Player()
			return p.Mode == models.PlayerTrailer && p.Item != nil && p.Item.ID == x && p.Episode == nil
		},
		gen.IntRange(1, 1000),
		gen.IntRange(1, 1000),
	))

	properties.TestingRun(t)
}

func TestPlayerTransitions(t *testing.T) {
	s, mem := newTestStore(t)

	assert.Equal(t, models.PlayerIdle, s.Player().Mode)

	s.OpenEpisode(3, 2, models.Episode{EpisodeNumber: 5, Title: "Pilot"})
	p := s.Player()
	require.Equal(t, models.PlayerEpisode, p.Mode)
	assert.Nil(t, p.Item)
	assert.Equal(t, 3, p.Episode.SeriesID)
	assert.Equal(t, 5, p.Episode.Episode.EpisodeNumber)

	// returned state is a copy
	p.Episode.SeriesID = 99
	assert.Equal(t, 3, s.Player().Episode.SeriesID)

	s.OpenMovie(models.ContentItem{ID: 1, Actors: []string{"A"}})
	assert.Nil(t, s.Player().Episode)

	s.ClosePlayer()
	assert.False(t, s.Player().IsOpen())

	keys, err := mem.Keys()
	require.NoError(t, err)
	assert.Empty(t, keys, "player is never persisted")
}

// Deleting profiles can never empty the list.
func TestDeleteLastProfileIsNoop(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("profile list never drops below one", prop.ForAll(
		func(order []int) bool {
			s, _ := newTestStore(t)
			for _, id := range order {
				s.DeleteProfile(id)
				if len(s.Profiles()) < 1 {
					return false
				}
			}
			for _, p := range s.Profiles() {
				s.DeleteProfile(p.ID)
			}
			remaining := s.Profiles()
			if len(remaining) != 1 {
				return false
			}
			return !s.DeleteProfile(remaining[0].ID) && len(s.Profiles()) == 1
		},
		gen.SliceOf(gen.IntRange(1, 5)),
	))

	properties.TestingRun(t)
}

func TestContinueWatchingThreshold(t *testing.T) {
	s, _ := newTestStore(t)
	s.UpdateProgress(models.MovieKey(1), 3, 100)
	s.UpdateProgress(models.EpisodeKey(2, 1, 4), 120, 1500)
	s.UpdateProgress(models.MovieKey(3), 5, 100)

	got := slices.Collect(s.ContinueWatching())
	require.Len(t, got, 1)
	assert.Equal(t, models.EpisodeKey(2, 1, 4), got[0].Key)
	assert.Equal(t, 120.0, got[0].Time)

	// the sequence is restartable and sees later updates
	seq := s.ContinueWatching()
	s.UpdateProgress(models.MovieKey(1), 30, 100)
	assert.Len(t, slices.Collect(seq), 2)
	assert.Len(t, slices.Collect(seq), 2)
}

func TestProgressInsertionAndRecencyOrder(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	restore := timeutil.Freeze(base)
	defer restore()

	s, mem := newTestStore(t)
	s.UpdateProgress(models.MovieKey(1), 60, 100)
	timeutil.Freeze(base.Add(time.Minute))
	s.UpdateProgress(models.MovieKey(2), 60, 100)
	timeutil.Freeze(base.Add(2 * time.Minute))
	s.UpdateProgress(models.MovieKey(1), 40, 100) // rewind keeps position

	var keys []models.ProgressKey
	for e := range s.ContinueWatching() {
		keys = append(keys, e.Key)
	}
	assert.Equal(t, []models.ProgressKey{models.MovieKey(1), models.MovieKey(2)}, keys)
	assert.Equal(t, 40.0, s.MovieProgress(1).Time)

	recent := s.ContinueWatchingByRecency()
	require.Len(t, recent, 2)
	assert.Equal(t, models.MovieKey(1), recent[0].Key)

	assert.Contains(t, stored(t, mem, KeyProgress), `"key":"movie:1"`)

	reloaded := New(storage.NewBridge(mem))
	assert.Equal(t, s.ContinueWatchingByRecency(), reloaded.ContinueWatchingByRecency())
}

func TestProgressQueryAndReset(t *testing.T) {
	s, _ := newTestStore(t)

	assert.Equal(t, models.ProgressEntry{}, s.EpisodeProgress(1, 1, 1))

	s.UpdateProgress(models.EpisodeKey(1, 1, 1), 500, 300)
	assert.Equal(t, 300.0, s.EpisodeProgress(1, 1, 1).Time)

	assert.True(t, s.ResetProgress(models.EpisodeKey(1, 1, 1)))
	assert.False(t, s.ResetProgress(models.EpisodeKey(1, 1, 1)))
	assert.Equal(t, models.ProgressEntry{}, s.EpisodeProgress(1, 1, 1))
	assert.Empty(t, slices.Collect(s.ContinueWatching()))
}

func TestNewDoesNotWrite(t *testing.T) {
	mem := storage.NewMemoryBackend()
	require.NoError(t, mem.Set(string(models.LikedMovies), []byte("[5,6]")))

	s := New(storage.NewBridge(mem))
	assert.Equal(t, []int{5, 6}, s.Collection(models.LikedMovies))

	keys, err := mem.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{string(models.LikedMovies)}, keys)
}

func TestPersistRefusedBeforeHydration(t *testing.T) {
	mem := storage.NewMemoryBackend()
	require.NoError(t, mem.Set(KeyTheme, []byte("light")))

	s := &Store{
		bridge:    storage.NewBridge(mem),
		table:     sliceTable(),
		ready:     make(map[Slice]bool),
		listeners: make(map[int]func(Slice)),
	}
	s.resetDefaults()
	s.persist(SliceTheme)

	assert.Equal(t, "light", stored(t, mem, KeyTheme), "default must not clobber stored value")
}

func TestCorruptStorageFallsBackToDefaults(t *testing.T) {
	mem := storage.NewMemoryBackend()
	require.NoError(t, mem.Set(string(models.WatchLaterMovies), []byte("not json")))
	require.NoError(t, mem.Set(KeyReviews, []byte(`{"1": "nope"}`)))
	require.NoError(t, mem.Set(KeyProfiles, []byte(`[]`)))
	require.NoError(t, mem.Set(KeyCurrentProfile, []byte(`"abc"`)))
	require.NoError(t, mem.Set(KeyTheme, []byte(`sepia`)))
	require.NoError(t, mem.Set(KeyProgress, []byte(`[{"key":"tv-1","time":1}]`)))

	s := New(storage.NewBridge(mem))

	assert.Empty(t, s.Collection(models.WatchLaterMovies))
	assert.Equal(t, 0, s.ReviewCount(1))
	assert.Equal(t, models.DefaultProfiles(), s.Profiles())
	assert.Equal(t, 1, s.CurrentProfileID())
	assert.Equal(t, models.ThemeDark, s.Theme())
	assert.Empty(t, slices.Collect(s.ContinueWatching()))

	// the store keeps working and overwrites the corrupt value on next save
	assert.True(t, s.ToggleWatchLater(9))
	assert.Equal(t, "[9]", stored(t, mem, string(models.WatchLaterMovies)))
}

func TestHydrateDeduplicatesCollections(t *testing.T) {
	mem := storage.NewMemoryBackend()
	require.NoError(t, mem.Set(string(models.LikedSeries), []byte("[3,3,1,3]")))
	s := New(storage.NewBridge(mem))
	assert.Equal(t, []int{3, 1}, s.Collection(models.LikedSeries))
}

func TestNamedToggles(t *testing.T) {
	s, mem := newTestStore(t)

	assert.True(t, s.ToggleLike(1))
	assert.True(t, s.ToggleWatchLater(2))
	assert.True(t, s.ToggleLikeSeries(3))
	assert.True(t, s.ToggleWatchLaterSeries(4))
	assert.False(t, s.ToggleLike(1))

	assert.Equal(t, "[]", stored(t, mem, "likedMovies"))
	assert.Equal(t, "[2]", stored(t, mem, "watchLater"))
	assert.Equal(t, "[3]", stored(t, mem, "likedSeries"))
	assert.Equal(t, "[4]", stored(t, mem, "watchLaterSeries"))

	assert.False(t, s.Toggle(models.Collection("bogus"), 1))
}

func TestReviewsPersistAndLegacyIDs(t *testing.T) {
	restore := timeutil.Freeze(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	defer restore()

	mem := storage.NewMemoryBackend()
	require.NoError(t, mem.Set(KeyReviews, []byte(`{"12":[{"id":1700000000000,"name":"Old","rating":"9","text":"great","date":"2023-11-14T22:13:20.000Z"}]}`)))
	s := New(storage.NewBridge(mem))

	list := s.Reviews(12)
	require.Len(t, list, 1)
	assert.Equal(t, models.ReviewID("1700000000000"), list[0].ID)
	assert.Equal(t, 9.0, list[0].Rating)

	r := s.AddReview(12, models.ReviewInput{Name: "  ", Rating: 15, Text: "wow"})
	assert.Equal(t, models.DefaultAuthorName, r.AuthorName)
	assert.Equal(t, 10.0, r.Rating)
	assert.Equal(t, 2026, r.CreatedAt.Year())

	raw := stored(t, mem, KeyReviews)
	assert.Contains(t, raw, `"name":"Anonymous"`)
	assert.Contains(t, raw, `"date":"2026-03-01T00:00:00Z"`)

	reloaded := New(storage.NewBridge(mem))
	assert.Equal(t, s.Reviews(12), reloaded.Reviews(12))
}

func TestProfiles(t *testing.T) {
	s, mem := newTestStore(t)

	assert.Equal(t, "You", s.CurrentProfile().Name)

	p := s.AddProfile("guest", "bg-purple-500")
	assert.Equal(t, models.Profile{ID: 5, Name: "guest", Color: "bg-purple-500", Initial: "G"}, p)

	s.SwitchProfile(5)
	assert.Equal(t, "5", stored(t, mem, KeyCurrentProfile))

	name := "Visitor"
	updated, ok := s.UpdateProfile(5, models.ProfileUpdate{Name: &name})
	require.True(t, ok)
	assert.Equal(t, "Visitor", updated.Name)
	assert.Equal(t, "G", updated.Initial, "initial only changes when given")

	_, ok = s.UpdateProfile(42, models.ProfileUpdate{Name: &name})
	assert.False(t, ok)

	// deleting the active profile moves the pointer to the first remaining
	require.True(t, s.DeleteProfile(5))
	assert.Equal(t, 1, s.CurrentProfileID())
	assert.Equal(t, "1", stored(t, mem, KeyCurrentProfile))

	require.True(t, s.DeleteProfile(1))
	assert.Equal(t, 2, s.CurrentProfileID())
	assert.False(t, s.DeleteProfile(99))

	// switching to an unknown id is accepted; reads fall back to the first
	s.SwitchProfile(77)
	assert.Equal(t, 77, s.CurrentProfileID())
	assert.Equal(t, "Mom", s.CurrentProfile().Name)

	reloaded := New(storage.NewBridge(mem))
	assert.Equal(t, s.Profiles(), reloaded.Profiles())
	assert.Equal(t, 77, reloaded.CurrentProfileID())
}

func TestAddProfileAfterGap(t *testing.T) {
	s, _ := newTestStore(t)
	s.DeleteProfile(2)
	p := s.AddProfile("Zed", "bg-black")
	assert.Equal(t, 5, p.ID)
}

func TestFilters(t *testing.T) {
	s, mem := newTestStore(t)

	var seen []Slice
	unsubscribe := s.Subscribe(func(sl Slice) { seen = append(seen, sl) })

	s.SetActiveCategory("Drama")
	s.SetActiveActor("  ")
	assert.Equal(t, models.FilterState{ActiveCategory: "Drama", ActiveActor: "all"}, s.Filters())

	s.SetActiveActor("Ann")
	s.ResetFilters()
	assert.Equal(t, models.DefaultFilters(), s.Filters())

	unsubscribe()
	unsubscribe()
	s.SetActiveCategory("Comedy")

	assert.Equal(t, []Slice{SliceFilters, SliceFilters, SliceFilters}, seen)

	keys, err := mem.Keys()
	require.NoError(t, err)
	assert.Empty(t, keys, "filters are never persisted")
}

func TestTheme(t *testing.T) {
	s, mem := newTestStore(t)
	assert.Equal(t, models.ThemeDark, s.Theme())

	assert.Equal(t, models.ThemeLight, s.ToggleTheme())
	assert.Equal(t, "light", stored(t, mem, KeyTheme))

	assert.False(t, s.SetTheme("sepia"))
	assert.True(t, s.SetTheme(models.ThemeDark))
	assert.Equal(t, "dark", stored(t, mem, KeyTheme))
}

func TestReload(t *testing.T) {
	s, mem := newTestStore(t)
	s.ToggleLike(1)
	s.OpenMovie(models.ContentItem{ID: 1})
	s.SetActiveCategory("Drama")

	// another writer replaces stored state
	require.NoError(t, mem.Set(string(models.LikedMovies), []byte("[7,8]")))
	require.NoError(t, mem.Set(KeyTheme, []byte("light")))

	var seen []Slice
	s.Subscribe(func(sl Slice) { seen = append(seen, sl) })
	s.Reload()

	assert.Equal(t, []int{7, 8}, s.Collection(models.LikedMovies))
	assert.Equal(t, models.ThemeLight, s.Theme())
	assert.False(t, s.Player().IsOpen())
	assert.Equal(t, models.DefaultFilters(), s.Filters())
	assert.Contains(t, seen, SliceTheme)
	assert.Contains(t, seen, SlicePlayer)
}

func TestListenerMayCallBackIntoStore(t *testing.T) {
	s, _ := newTestStore(t)
	s.Subscribe(func(sl Slice) {
		if sl == SliceFilters && s.Filters().ActiveActor != models.FilterAll {
			s.SetActiveActor(models.FilterAll)
		}
	})
	s.SetActiveActor("Someone")
	assert.Equal(t, models.FilterAll, s.Filters().ActiveActor)
}
