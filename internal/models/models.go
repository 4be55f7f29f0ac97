package models

import (
	"fmt"
	"slices"
	"strings"
)

// Kind distinguishes movies from series. Content identity is (Kind, ID).
type Kind string

const (
	KindMovie  Kind = "movie"
	KindSeries Kind = "series"
)

// ParseKind accepts "movie"/"movies" and "series" in any case.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "movie", "movies":
		return KindMovie, nil
	case "series":
		return KindSeries, nil
	default:
		return "", fmt.Errorf("unknown content kind %q", s)
	}
}

// ContentRef points at a catalog record without owning it
type ContentRef struct {
	ID   int  `json:"id"`
	Kind Kind `json:"kind"`
}

// ContentItem is a catalog record as supplied by the external dataset.
type ContentItem struct {
	ID       int      `json:"id" yaml:"id" toml:"id"`
	Kind     Kind     `json:"kind" yaml:"kind" toml:"kind"`
	Title    string   `json:"title" yaml:"title" toml:"title"`
	Category string   `json:"category" yaml:"category" toml:"category"`
	Actors   []string `json:"actors" yaml:"actors" toml:"actors"`
	Duration int      `json:"duration" yaml:"duration" toml:"duration"` // minutes
	Poster   string   `json:"poster,omitempty" yaml:"poster,omitempty" toml:"poster,omitempty"`
	Trailer  string   `json:"trailer,omitempty" yaml:"trailer,omitempty" toml:"trailer,omitempty"`
	Seasons  []Season `json:"seasons,omitempty" yaml:"seasons,omitempty" toml:"seasons,omitempty"`
}

// Ref returns the item's identity.
func (c ContentItem) Ref() ContentRef {
	return ContentRef{ID: c.ID, Kind: c.Kind}
}

// Clone returns a deep copy so store-held payloads never alias caller data.
func (c ContentItem) Clone() ContentItem {
	c.Actors = slices.Clone(c.Actors)
	if c.Seasons != nil {
		seasons := make([]Season, len(c.Seasons))
		for i, s := range c.Seasons {
			s.Episodes = slices.Clone(s.Episodes)
			seasons[i] = s
		}
		c.Seasons = seasons
	}
	return c
}

// Season groups the episodes of one season of a series.
type Season struct {
	SeasonNumber int       `json:"seasonNumber" yaml:"seasonNumber" toml:"seasonNumber"`
	Episodes     []Episode `json:"episodes" yaml:"episodes" toml:"episodes"`
}

// Episode is a single playable episode.
type Episode struct {
	EpisodeNumber int    `json:"episodeNumber" yaml:"episodeNumber" toml:"episodeNumber"`
	Title         string `json:"title" yaml:"title" toml:"title"`
	Duration      int    `json:"duration" yaml:"duration" toml:"duration"` // minutes
	Thumbnail     string `json:"thumbnail,omitempty" yaml:"thumbnail,omitempty" toml:"thumbnail,omitempty"`
}

// Collection names one of the four id sets. The values double as storage keys.
type Collection string

const (
	LikedMovies      Collection = "likedMovies"
	WatchLaterMovies Collection = "watchLater"
	LikedSeries      Collection = "likedSeries"
	WatchLaterSeries Collection = "watchLaterSeries"
)

// Collections lists every collection in hydration order.
var Collections = []Collection{LikedMovies, WatchLaterMovies, LikedSeries, WatchLaterSeries}

// Purpose is why an id is kept in a collection.
type Purpose string

const (
	PurposeLiked      Purpose = "liked"
	PurposeWatchLater Purpose = "watch-later"
)

// CollectionFor maps (kind, purpose) to its collection.
func CollectionFor(kind Kind, purpose Purpose) (Collection, bool) {
	switch {
	case kind == KindMovie && purpose == PurposeLiked:
		return LikedMovies, true
	case kind == KindMovie && purpose == PurposeWatchLater:
		return WatchLaterMovies, true
	case kind == KindSeries && purpose == PurposeLiked:
		return LikedSeries, true
	case kind == KindSeries && purpose == PurposeWatchLater:
		return WatchLaterSeries, true
	}
	return "", false
}

// ParseCollection accepts the storage names plus "kind/purpose" aliases
// such as "series/watch-later".
func ParseCollection(s string) (Collection, bool) {
	for _, c := range Collections {
		if s == string(c) {
			return c, true
		}
	}
	kindStr, purposeStr, ok := strings.Cut(s, "/")
	if !ok {
		return "", false
	}
	kind, err := ParseKind(kindStr)
	if err != nil {
		return "", false
	}
	return CollectionFor(kind, Purpose(strings.ToLower(purposeStr)))
}

// IDSet is an insertion-ordered set of content ids.
type IDSet []int

// NewIDSet builds a set from ids, dropping duplicates.
func NewIDSet(ids []int) IDSet {
	set := make(IDSet, 0, len(ids))
	for _, id := range ids {
		if !set.Has(id) {
			set = append(set, id)
		}
	}
	return set
}

// Has reports membership.
func (s IDSet) Has(id int) bool {
	return slices.Contains(s, id)
}

// Toggle returns a new set with id removed if present, appended otherwise.
// The receiver is left untouched.
func (s IDSet) Toggle(id int) IDSet {
	if i := slices.Index(s, id); i >= 0 {
		return slices.Delete(slices.Clone(s), i, i+1)
	}
	return append(slices.Clone(s), id)
}

// FilterState holds the catalog selectors.
type FilterState struct {
	ActiveCategory string `json:"activeCategory"`
	ActiveActor    string `json:"activeActor"`
}

// FilterAll is the "no restriction" selector value.
const FilterAll = "all"

// DefaultFilters returns both selectors set to "all".
func DefaultFilters() FilterState {
	return FilterState{ActiveCategory: FilterAll, ActiveActor: FilterAll}
}

// NormalizeSelector maps blank selector values to "all".
func NormalizeSelector(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return FilterAll
	}
	return v
}

// Theme is the UI color scheme preference.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// Toggled returns the other theme.
func (t Theme) Toggled() Theme {
	if t == ThemeLight {
		return ThemeDark
	}
	return ThemeLight
}

// MarshalText implements encoding.TextMarshaler.
func (t Theme) MarshalText() ([]byte, error) {
	return []byte(t), nil
}

// UnmarshalText accepts only "dark" and "light".
func (t *Theme) UnmarshalText(b []byte) error {
	switch Theme(strings.TrimSpace(string(b))) {
	case ThemeDark:
		*t = ThemeDark
	case ThemeLight:
		*t = ThemeLight
	default:
		return fmt.Errorf("unknown theme %q", string(b))
	}
	return nil
}
