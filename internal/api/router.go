// Package api exposes run results and generated artifacts over HTTP.
package api

import (
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/crisiswatch/crisiswatch/internal/cache"
	"github.com/crisiswatch/crisiswatch/internal/db"
	"github.com/crisiswatch/crisiswatch/internal/models"
	"github.com/crisiswatch/crisiswatch/pkg/logging"
)

const defaultPostLimit = 50

// Router sets up API routes
type Router struct {
	runs      *db.RunRepository
	posts     *db.PostRepository
	cache     *cache.Cache
	outputDir string
	logger    *zap.Logger
}

// NewRouter creates a new API router. The database is optional; when
// absent, the data endpoints answer 503 but artifacts are still served.
func NewRouter(database *db.DB, redisCache *cache.Cache, outputDir string) *Router {
	router := &Router{
		cache:     redisCache,
		outputDir: outputDir,
		logger:    logging.GetLogger().With(zap.String("component", "api-router")),
	}
	if database != nil {
		repo := db.NewRepository(database.DB)
		router.runs = db.NewRunRepository(repo)
		router.posts = db.NewPostRepository(repo)
	}
	return router
}

// SetupRoutes sets up all API routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	engine.GET("/health", r.healthHandler)
	engine.GET("/.well-known/healthcheck.json", r.healthHandler)

	engine.GET("/api/summary", r.summaryHandler)
	engine.GET("/api/posts", r.postsHandler)

	// Generated artifacts from the last pipeline run
	engine.Static("/maps", filepath.Join(r.outputDir, "maps"))
	engine.Static("/reports", filepath.Join(r.outputDir, "reports"))
}

// healthHandler handles health check requests
func (r *Router) healthHandler(c *gin.Context) {
	status := gin.H{
		"status":  "OK",
		"service": "crisiswatch-api",
	}
	if r.cache != nil {
		if err := r.cache.Health(c.Request.Context()); err != nil {
			status["cache"] = "unavailable"
		} else {
			status["cache"] = "OK"
		}
	}
	c.JSON(http.StatusOK, status)
}

// platformParam validates the ?platform query argument
func platformParam(c *gin.Context) (models.Platform, bool) {
	switch c.DefaultQuery("platform", "twitter") {
	case "twitter":
		return models.PlatformTwitter, true
	case "reddit":
		return models.PlatformReddit, true
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "platform must be twitter or reddit"})
		return "", false
	}
}

// latestRun resolves the most recent run for a platform, handling the
// no-database and no-runs cases.
func (r *Router) latestRun(c *gin.Context) (*models.Run, bool) {
	if r.runs == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no database configured"})
		return nil, false
	}

	platform, ok := platformParam(c)
	if !ok {
		return nil, false
	}

	run, err := r.runs.Latest(c.Request.Context(), platform)
	if err != nil {
		r.logger.Error("Failed to load latest run", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return nil, false
	}
	if run == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no completed runs for platform"})
		return nil, false
	}
	return run, true
}

// summaryHandler returns the latest run's aggregates for one platform
func (r *Router) summaryHandler(c *gin.Context) {
	run, ok := r.latestRun(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	risks, err := r.posts.RiskDistribution(ctx, run.ID)
	if err != nil {
		r.logger.Error("Failed to load risk distribution", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	locations, err := r.posts.TopLocations(ctx, run.ID, 5)
	if err != nil {
		r.logger.Error("Failed to load top locations", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"run":           run,
		"risk_counts":   risks,
		"top_locations": locations,
	})
}

// postsHandler returns posts from the latest run, optionally filtered
// by risk level.
func (r *Router) postsHandler(c *gin.Context) {
	run, ok := r.latestRun(c)
	if !ok {
		return
	}

	limit := defaultPostLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 500 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 500"})
			return
		}
		limit = n
	}

	level := models.RiskLevel(c.DefaultQuery("risk", string(models.RiskHigh)))
	switch level {
	case models.RiskHigh, models.RiskModerate, models.RiskLow, models.RiskUnknown:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "risk must be high, moderate, low or unknown"})
		return
	}

	posts, err := r.posts.ByRisk(c.Request.Context(), run.ID, level, limit)
	if err != nil {
		r.logger.Error("Failed to load posts", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"run_id": run.ID,
		"risk":   level,
		"posts":  posts,
	})
}
