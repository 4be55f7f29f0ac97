package handler

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cinescope/internal/catalog"
	"cinescope/internal/logging"
	"cinescope/internal/service"
	"cinescope/internal/store"
	"cinescope/internal/validation"
)

// HTTPHandler serves the JSON API over the store and catalog.
type HTTPHandler struct {
	store     *store.Store
	catalog   *catalog.Catalog
	backupSvc *service.BackupService
	apiToken  string
}

// NewHTTPHandler creates a new HTTPHandler. A nil catalog serves an empty one.
func NewHTTPHandler(
	st *store.Store,
	cat *catalog.Catalog,
	backupSvc *service.BackupService,
	apiToken string,
) *HTTPHandler {
	if cat == nil {
		cat = catalog.Empty()
	}
	return &HTTPHandler{
		store:     st,
		catalog:   cat,
		backupSvc: backupSvc,
		apiToken:  strings.TrimSpace(apiToken),
	}
}

// RegisterRoutes registers all HTTP routes
func (h *HTTPHandler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")
	if h.apiToken == "" {
		logging.Warn().Msg("api_token not set, /api is open")
	} else {
		api.Use(h.authMiddleware)
	}

	// Probes and scrapes stay unauthenticated
	r.GET("/api/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Collections
	api.GET("/collections/:name", h.GetCollection)
	api.POST("/collections/:name/:id/toggle", h.ToggleCollection)

	// Progress
	api.GET("/progress/:key", h.GetProgress)
	api.PUT("/progress/:key", h.UpdateProgress)
	api.DELETE("/progress/:key", h.ResetProgress)
	api.GET("/continue-watching", h.ContinueWatching)

	// Reviews
	api.GET("/reviews/:contentId", h.GetReviews)
	api.POST("/reviews/:contentId", h.AddReview)

	// Player
	api.GET("/player", h.GetPlayer)
	api.POST("/player/movie", h.OpenMovie)
	api.POST("/player/trailer", h.OpenTrailer)
	api.POST("/player/episode", h.OpenEpisode)
	api.DELETE("/player", h.ClosePlayer)

	// Profiles
	api.GET("/profiles", h.ListProfiles)
	api.POST("/profiles", h.AddProfile)
	api.GET("/profiles/current", h.CurrentProfile)
	api.PATCH("/profiles/:id", h.UpdateProfile)
	api.DELETE("/profiles/:id", h.DeleteProfile)
	api.POST("/profiles/:id/switch", h.SwitchProfile)

	// Filters
	api.GET("/filters", h.GetFilters)
	api.PUT("/filters", h.SetFilters)
	api.DELETE("/filters", h.ResetFilters)

	// Catalog
	api.GET("/catalog/:kind", h.ListCatalog)
	api.GET("/catalog/:kind/categories", h.ListCategories)
	api.GET("/catalog/:kind/actors", h.ListActors)

	// Theme
	api.GET("/theme", h.GetTheme)
	api.PUT("/theme", h.SetTheme)
	api.POST("/theme/toggle", h.ToggleTheme)

	// Backups
	api.POST("/backup", func(c *gin.Context) {
		backupPath, err := h.backupSvc.Backup()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"backup_path": backupPath})
	})
	api.POST("/restore", h.Restore)
}

// Health returns health status
func (h *HTTPHandler) Health(c *gin.Context) {
	resp := gin.H{"status": "ok"}
	if h.backupSvc != nil {
		if last, err := h.backupSvc.LastBackupTime(); err == nil && !last.IsZero() {
			resp["last_backup"] = last.UTC().Format(time.RFC3339)
		}
	}
	c.JSON(http.StatusOK, resp)
}

// Restore replaces all stored state with a snapshot and reloads the store.
// The body may name a snapshot file in the backup directory; without one
// the newest snapshot is used.
func (h *HTTPHandler) Restore(c *gin.Context) {
	var req struct {
		File string `json:"file"`
	}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	path := ""
	if req.File != "" {
		path = h.backupSvc.Path(req.File)
	} else {
		latest, err := h.backupSvc.Latest()
		if errors.Is(err, service.ErrNoBackups) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		path = latest
	}

	if err := h.backupSvc.Restore(path); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.store.Reload()
	c.JSON(http.StatusOK, gin.H{"restored": path})
}

// RequestLogger logs one line per request through the shared logger.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		ev := logging.Info()
		if c.Writer.Status() >= http.StatusInternalServerError {
			ev = logging.Error()
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

// authMiddleware enforces Bearer token authentication against the configured API token.
func (h *HTTPHandler) authMiddleware(c *gin.Context) {
	authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid Authorization header"})
		c.Abort()
		return
	}

	if subtle.ConstantTimeCompare([]byte(strings.TrimSpace(parts[1])), []byte(h.apiToken)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		c.Abort()
		return
	}

	c.Next()
}

// Helper functions

// bindJSON decodes the body into req and runs the validator over it. It
// writes the 400 response itself and reports whether the caller may go on.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	if err := validation.ValidateStruct(req); err != nil {
		var verr *validation.Error
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "fields": verr.Fields})
			return false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

func (h *HTTPHandler) getParam(c *gin.Context, key, defaultValue string) string {
	value := c.Param(key)
	if value == "" {
		value = c.Query(key)
	}
	if value == "" {
		return defaultValue
	}
	return value
}

// getIntParam returns the positive integer in path or query parameter key,
// or 0 when it is missing or malformed.
func (h *HTTPHandler) getIntParam(c *gin.Context, key string) int {
	id, err := strconv.Atoi(h.getParam(c, key, ""))
	if err != nil || id <= 0 {
		return 0
	}
	return id
}
