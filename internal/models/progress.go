package models

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidProgressKey is returned when a key string matches neither scheme.
var ErrInvalidProgressKey = errors.New("invalid progress key")

// ContinueWatchingThreshold is the number of seconds an entry must exceed
// before it shows up in continue watching.
const ContinueWatchingThreshold = 5.0

// ProgressKey identifies a movie or one episode of a series.
// Season and Episode are zero for movies.
type ProgressKey struct {
	Kind    Kind
	ID      int
	Season  int
	Episode int
}

// MovieKey returns the progress key of a movie.
func MovieKey(id int) ProgressKey {
	return ProgressKey{Kind: KindMovie, ID: id}
}

// EpisodeKey returns the progress key of a series episode.
func EpisodeKey(seriesID, season, episode int) ProgressKey {
	return ProgressKey{Kind: KindSeries, ID: seriesID, Season: season, Episode: episode}
}

// String renders movie:{id} or series:{id}:{season}:{episode}.
func (k ProgressKey) String() string {
	if k.Kind == KindSeries {
		return fmt.Sprintf("series:%d:%d:%d", k.ID, k.Season, k.Episode)
	}
	return fmt.Sprintf("movie:%d", k.ID)
}

// ParseProgressKey is the inverse of String.
func ParseProgressKey(s string) (ProgressKey, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	nums := make([]int, 0, 3)
	for _, p := range parts[1:] {
		n, err := strconv.Atoi(p)
		if err != nil {
			return ProgressKey{}, fmt.Errorf("%w: %q", ErrInvalidProgressKey, s)
		}
		nums = append(nums, n)
	}

	switch {
	case parts[0] == string(KindMovie) && len(nums) == 1:
		return MovieKey(nums[0]), nil
	case parts[0] == string(KindSeries) && len(nums) == 3:
		return EpisodeKey(nums[0], nums[1], nums[2]), nil
	}
	return ProgressKey{}, fmt.Errorf("%w: %q", ErrInvalidProgressKey, s)
}

// MarshalText implements encoding.TextMarshaler.
func (k ProgressKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *ProgressKey) UnmarshalText(b []byte) error {
	parsed, err := ParseProgressKey(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ProgressEntry is the watched position of one key, in seconds.
type ProgressEntry struct {
	Time      float64   `json:"time"`
	Duration  float64   `json:"duration"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Percent returns the watched fraction in [0, 1].
func (e ProgressEntry) Percent() float64 {
	return PercentWatched(e.Time, e.Duration)
}

// NewProgressEntry coerces raw player values into a valid entry: non-finite
// or negative numbers become 0 and time never exceeds a known duration.
func NewProgressEntry(t, duration float64) ProgressEntry {
	t = nonNegative(t)
	duration = nonNegative(duration)
	if duration > 0 && t > duration {
		t = duration
	}
	return ProgressEntry{Time: t, Duration: duration}
}

// ContinueEntry is one row of the continue watching list.
type ContinueEntry struct {
	Key ProgressKey `json:"key"`
	ProgressEntry
}

// PercentWatched returns time/duration clamped to [0, 1]. A zero or unknown
// duration yields 0.
func PercentWatched(t, duration float64) float64 {
	if duration <= 0 || math.IsNaN(duration) || math.IsInf(duration, 0) || math.IsNaN(t) {
		return 0
	}
	return math.Min(1, math.Max(0, t/duration))
}

func nonNegative(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
