package handler

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"cinescope/internal/models"
)

// GetPlayer returns the player slot.
func (h *HTTPHandler) GetPlayer(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Player())
}

type openItemRequest struct {
	ID   int    `json:"id" validate:"required,gte=1"`
	Kind string `json:"kind"`
}

// lookupItem resolves the request body to a catalog item. Kind defaults
// to fallback.
func (h *HTTPHandler) lookupItem(c *gin.Context, fallback models.Kind) (models.ContentItem, bool) {
	var req openItemRequest
	if !bindJSON(c, &req) {
		return models.ContentItem{}, false
	}
	kind := fallback
	if req.Kind != "" {
		k, err := models.ParseKind(req.Kind)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return models.ContentItem{}, false
		}
		kind = k
	}
	item, ok := h.catalog.Get(models.ContentRef{ID: req.ID, Kind: kind})
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "content not found"})
		return models.ContentItem{}, false
	}
	return item, true
}

// OpenMovie plays a movie from the catalog.
func (h *HTTPHandler) OpenMovie(c *gin.Context) {
	item, ok := h.lookupItem(c, models.KindMovie)
	if !ok {
		return
	}
	h.store.OpenMovie(item)
	c.JSON(http.StatusOK, h.store.Player())
}

// OpenTrailer plays the trailer of a movie or series.
func (h *HTTPHandler) OpenTrailer(c *gin.Context) {
	item, ok := h.lookupItem(c, models.KindMovie)
	if !ok {
		return
	}
	h.store.OpenTrailer(item)
	c.JSON(http.StatusOK, h.store.Player())
}

// OpenEpisode plays one episode of a series.
func (h *HTTPHandler) OpenEpisode(c *gin.Context) {
	var req struct {
		SeriesID int `json:"seriesId" validate:"required,gte=1"`
		Season   int `json:"season" validate:"required,gte=1"`
		Episode  int `json:"episode" validate:"required,gte=1"`
	}
	if !bindJSON(c, &req) {
		return
	}
	ep, ok := h.catalog.Episode(req.SeriesID, req.Season, req.Episode)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "episode not found"})
		return
	}
	h.store.OpenEpisode(req.SeriesID, req.Season, ep)
	c.JSON(http.StatusOK, h.store.Player())
}

// ClosePlayer returns the player to idle.
func (h *HTTPHandler) ClosePlayer(c *gin.Context) {
	h.store.ClosePlayer()
	c.JSON(http.StatusOK, h.store.Player())
}

// ListProfiles returns every profile and the active id.
func (h *HTTPHandler) ListProfiles(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"profiles":  h.store.Profiles(),
		"currentId": h.store.CurrentProfileID(),
	})
}

// CurrentProfile returns the active profile.
func (h *HTTPHandler) CurrentProfile(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"profile": h.store.CurrentProfile()})
}

// AddProfile creates a profile.
func (h *HTTPHandler) AddProfile(c *gin.Context) {
	var req struct {
		Name  string `json:"name" validate:"required,max=40"`
		Color string `json:"color" validate:"max=40"`
	}
	if !bindJSON(c, &req) {
		return
	}
	c.JSON(http.StatusCreated, gin.H{"profile": h.store.AddProfile(req.Name, req.Color)})
}

// UpdateProfile changes a profile's name, color or initial.
func (h *HTTPHandler) UpdateProfile(c *gin.Context) {
	id := h.getIntParam(c, "id")
	if id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid profile id"})
		return
	}
	var req models.ProfileUpdate
	if !bindJSON(c, &req) {
		return
	}
	p, ok := h.store.UpdateProfile(id, req)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": p})
}

// DeleteProfile removes a profile. The last profile cannot be removed.
func (h *HTTPHandler) DeleteProfile(c *gin.Context) {
	id := h.getIntParam(c, "id")
	if id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid profile id"})
		return
	}
	if !h.hasProfile(id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
		return
	}
	if !h.store.DeleteProfile(id) {
		c.JSON(http.StatusConflict, gin.H{"error": "cannot delete the last profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "profile deleted", "currentId": h.store.CurrentProfileID()})
}

// SwitchProfile makes a profile active.
func (h *HTTPHandler) SwitchProfile(c *gin.Context) {
	id := h.getIntParam(c, "id")
	if id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid profile id"})
		return
	}
	if !h.hasProfile(id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
		return
	}
	h.store.SwitchProfile(id)
	c.JSON(http.StatusOK, gin.H{"profile": h.store.CurrentProfile()})
}

func (h *HTTPHandler) hasProfile(id int) bool {
	return slices.ContainsFunc(h.store.Profiles(), func(p models.Profile) bool { return p.ID == id })
}

// GetFilters returns the catalog selectors.
func (h *HTTPHandler) GetFilters(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Filters())
}

// SetFilters updates the selectors present in the body. The category is
// applied first so an explicit actor survives the category change.
func (h *HTTPHandler) SetFilters(c *gin.Context) {
	var req struct {
		ActiveCategory *string `json:"activeCategory"`
		ActiveActor    *string `json:"activeActor"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if req.ActiveCategory != nil {
		h.store.SetActiveCategory(*req.ActiveCategory)
	}
	if req.ActiveActor != nil {
		h.store.SetActiveActor(*req.ActiveActor)
	}
	c.JSON(http.StatusOK, h.store.Filters())
}

// ResetFilters sets both selectors back to "all".
func (h *HTTPHandler) ResetFilters(c *gin.Context) {
	h.store.ResetFilters()
	c.JSON(http.StatusOK, h.store.Filters())
}

func parseKindParam(c *gin.Context) (models.Kind, bool) {
	kind, err := models.ParseKind(c.Param("kind"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return "", false
	}
	return kind, true
}

// ListCatalog returns the items of a kind matching ?q and the stored
// selectors.
func (h *HTTPHandler) ListCatalog(c *gin.Context) {
	kind, ok := parseKindParam(c)
	if !ok {
		return
	}
	filters := h.store.Filters()
	c.JSON(http.StatusOK, gin.H{
		"items":   h.catalog.Filter(kind, c.Query("q"), filters),
		"filters": filters,
	})
}

// ListCategories returns the distinct categories of a kind.
func (h *HTTPHandler) ListCategories(c *gin.Context) {
	kind, ok := parseKindParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": h.catalog.Categories(kind)})
}

// ListActors returns the actors of a kind within ?category, defaulting to
// the stored category selector.
func (h *HTTPHandler) ListActors(c *gin.Context) {
	kind, ok := parseKindParam(c)
	if !ok {
		return
	}
	category := c.DefaultQuery("category", h.store.Filters().ActiveCategory)
	c.JSON(http.StatusOK, gin.H{"actors": h.catalog.ActorsFor(kind, category)})
}

// GetTheme returns the theme preference.
func (h *HTTPHandler) GetTheme(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"theme": h.store.Theme()})
}

// SetTheme sets the theme to "dark" or "light".
func (h *HTTPHandler) SetTheme(c *gin.Context) {
	var req struct {
		Theme string `json:"theme" validate:"required,oneof=dark light"`
	}
	if !bindJSON(c, &req) {
		return
	}
	h.store.SetTheme(models.Theme(req.Theme))
	c.JSON(http.StatusOK, gin.H{"theme": h.store.Theme()})
}

// ToggleTheme flips between dark and light.
func (h *HTTPHandler) ToggleTheme(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"theme": h.store.ToggleTheme()})
}
