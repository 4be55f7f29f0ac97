package handler

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"

	"cinescope/internal/models"
)

type progressResponse struct {
	Key       string     `json:"key"`
	Time      float64    `json:"time"`
	Duration  float64    `json:"duration"`
	Percent   float64    `json:"percent"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

func newProgressResponse(key models.ProgressKey, e models.ProgressEntry) progressResponse {
	resp := progressResponse{
		Key:      key.String(),
		Time:     e.Time,
		Duration: e.Duration,
		Percent:  e.Percent(),
	}
	if !e.UpdatedAt.IsZero() {
		resp.UpdatedAt = &e.UpdatedAt
	}
	return resp
}

// GetCollection returns the ids in a collection, in insertion order.
func (h *HTTPHandler) GetCollection(c *gin.Context) {
	coll, ok := models.ParseCollection(c.Param("name"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown collection"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": coll, "ids": h.store.Collection(coll)})
}

// ToggleCollection flips one id's membership.
func (h *HTTPHandler) ToggleCollection(c *gin.Context) {
	coll, ok := models.ParseCollection(c.Param("name"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown collection"})
		return
	}
	id := h.getIntParam(c, "id")
	if id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid content id"})
		return
	}

	h.store.Toggle(coll, id)
	c.JSON(http.StatusOK, gin.H{"name": coll, "id": id, "member": h.store.IsMember(coll, id)})
}

// GetProgress returns the entry for a progress key, zero when unknown.
func (h *HTTPHandler) GetProgress(c *gin.Context) {
	key, err := models.ParseProgressKey(c.Param("key"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, newProgressResponse(key, h.store.Progress(key)))
}

// UpdateProgress records a playback position.
func (h *HTTPHandler) UpdateProgress(c *gin.Context) {
	key, err := models.ParseProgressKey(c.Param("key"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var req struct {
		Time     *float64 `json:"time" validate:"required"`
		Duration *float64 `json:"duration" validate:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}

	entry := h.store.UpdateProgress(key, *req.Time, *req.Duration)
	c.JSON(http.StatusOK, newProgressResponse(key, entry))
}

// ResetProgress forgets a progress key.
func (h *HTTPHandler) ResetProgress(c *gin.Context) {
	key, err := models.ParseProgressKey(c.Param("key"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.store.ResetProgress(key) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no progress recorded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "progress reset"})
}

// ContinueWatching lists started titles. ?order=recent sorts by last update
// instead of first play.
func (h *HTTPHandler) ContinueWatching(c *gin.Context) {
	var entries []models.ContinueEntry
	if c.Query("order") == "recent" {
		entries = h.store.ContinueWatchingByRecency()
	} else {
		entries = slices.Collect(h.store.ContinueWatching())
	}

	items := make([]progressResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, newProgressResponse(e.Key, e.ProgressEntry))
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// GetReviews returns a title's reviews, newest first, with their average.
func (h *HTTPHandler) GetReviews(c *gin.Context) {
	id := h.getIntParam(c, "contentId")
	if id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid content id"})
		return
	}

	resp := gin.H{
		"reviews": h.store.Reviews(id),
		"count":   h.store.ReviewCount(id),
		"average": nil,
	}
	if avg, ok := h.store.AverageRating(id); ok {
		resp["average"] = avg
	}
	c.JSON(http.StatusOK, resp)
}

// AddReview stores a review for a title.
func (h *HTTPHandler) AddReview(c *gin.Context) {
	id := h.getIntParam(c, "contentId")
	if id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid content id"})
		return
	}
	var req models.ReviewInput
	if !bindJSON(c, &req) {
		return
	}

	review := h.store.AddReview(id, req)
	c.JSON(http.StatusCreated, gin.H{"review": review})
}
