// Package catalog serves the read-only content dataset: lookups, filter
// option lists and filtered listings.
package catalog

import (
	"fmt"
	"slices"
	"strings"

	"cinescope/internal/models"
)

// Dataset is the on-disk shape of a catalog file.
type Dataset struct {
	Movies []models.ContentItem `json:"movies" yaml:"movies" toml:"movies"`
	Series []models.ContentItem `json:"series" yaml:"series" toml:"series"`
}

// Catalog is immutable once built and safe for concurrent reads.
type Catalog struct {
	items map[models.Kind][]models.ContentItem
	index map[models.ContentRef]int
}

// New builds a catalog. Each item's Kind is taken from the list it is in;
// duplicate ids within one kind are rejected.
func New(ds Dataset) (*Catalog, error) {
	c := &Catalog{
		items: make(map[models.Kind][]models.ContentItem, 2),
		index: make(map[models.ContentRef]int),
	}
	for kind, list := range map[models.Kind][]models.ContentItem{
		models.KindMovie:  ds.Movies,
		models.KindSeries: ds.Series,
	} {
		items := make([]models.ContentItem, 0, len(list))
		for _, item := range list {
			item = item.Clone()
			item.Kind = kind
			ref := item.Ref()
			if _, dup := c.index[ref]; dup {
				return nil, fmt.Errorf("duplicate %s id %d in catalog", kind, item.ID)
			}
			c.index[ref] = len(items)
			items = append(items, item)
		}
		c.items[kind] = items
	}
	return c, nil
}

// Empty returns a catalog with no content.
func Empty() *Catalog {
	c, _ := New(Dataset{})
	return c
}

// Get looks up one item.
func (c *Catalog) Get(ref models.ContentRef) (models.ContentItem, bool) {
	i, ok := c.index[ref]
	if !ok {
		return models.ContentItem{}, false
	}
	return c.items[ref.Kind][i].Clone(), true
}

// Items returns every item of kind in dataset order.
func (c *Catalog) Items(kind models.Kind) []models.ContentItem {
	src := c.items[kind]
	out := make([]models.ContentItem, len(src))
	for i, item := range src {
		out[i] = item.Clone()
	}
	return out
}

func (c *Catalog) Movies() []models.ContentItem { return c.Items(models.KindMovie) }

func (c *Catalog) Series() []models.ContentItem { return c.Items(models.KindSeries) }

// Episode finds one episode of a series.
func (c *Catalog) Episode(seriesID, season, episode int) (models.Episode, bool) {
	item, ok := c.Get(models.ContentRef{ID: seriesID, Kind: models.KindSeries})
	if !ok {
		return models.Episode{}, false
	}
	for _, s := range item.Seasons {
		if s.SeasonNumber != season {
			continue
		}
		for _, ep := range s.Episodes {
			if ep.EpisodeNumber == episode {
				return ep, true
			}
		}
	}
	return models.Episode{}, false
}

// Categories lists the distinct categories of kind in first-seen order.
func (c *Catalog) Categories(kind models.Kind) []string {
	var out []string
	for _, item := range c.items[kind] {
		if item.Category != "" && !slices.Contains(out, item.Category) {
			out = append(out, item.Category)
		}
	}
	return out
}

// ActorsFor lists the distinct actors appearing in category, or in every
// item of kind when category is "all".
func (c *Catalog) ActorsFor(kind models.Kind, category string) []string {
	category = models.NormalizeSelector(category)
	var out []string
	for _, item := range c.items[kind] {
		if category != models.FilterAll && item.Category != category {
			continue
		}
		for _, a := range item.Actors {
			if !slices.Contains(out, a) {
				out = append(out, a)
			}
		}
	}
	return out
}

// Filter returns the items of kind matching query and the selectors. The
// query matches title, category or any actor as a case-insensitive
// substring; category must match exactly and actor case-insensitively.
func (c *Catalog) Filter(kind models.Kind, query string, f models.FilterState) []models.ContentItem {
	q := strings.ToLower(strings.TrimSpace(query))
	category := models.NormalizeSelector(f.ActiveCategory)
	actor := models.NormalizeSelector(f.ActiveActor)

	out := []models.ContentItem{}
	for _, item := range c.items[kind] {
		if q != "" && !matchesQuery(item, q) {
			continue
		}
		if category != models.FilterAll && item.Category != category {
			continue
		}
		if actor != models.FilterAll && !slices.ContainsFunc(item.Actors, func(a string) bool {
			return strings.EqualFold(a, actor)
		}) {
			continue
		}
		out = append(out, item.Clone())
	}
	return out
}

func matchesQuery(item models.ContentItem, q string) bool {
	if strings.Contains(strings.ToLower(item.Title), q) || strings.Contains(strings.ToLower(item.Category), q) {
		return true
	}
	return slices.ContainsFunc(item.Actors, func(a string) bool {
		return strings.Contains(strings.ToLower(a), q)
	})
}
