package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arnavshah/coverage-api-go/pkg/logging"
	"github.com/arnavshah/coverage-api-go/pkg/metrics"
	"github.com/arnavshah/coverage-api-go/pkg/middleware"
)

// Version is reported by the root route
const Version = "3.0.0"

// NewRouter builds the gin engine with middleware and every route
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		logging.Middleware(h.Log),
		middleware.Recovery(h.Log),
		middleware.CORS(h.Config.Origins()),
		middleware.RateLimit(h.Config.RateLimitPerMinute, h.Log),
	)
	Register(r, h)
	return r
}

// Register mounts the routes on r
func Register(r *gin.Engine, h *Handler) {
	// Admin interface - serve static files from embedded FS
	r.StaticFS("/static", h.GetStaticFS())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Station Coverage API",
			"version": Version,
		})
	})
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	r.GET("/admin", h.AdminInterface)
	r.POST("/admin/login", h.Login)

	// Admin Endpoints
	admin := r.Group("/admin")
	admin.Use(h.AuthMiddleware())
	{
		admin.POST("/keys", h.GenerateKey)
		admin.GET("/keys", h.ListKeys)
		admin.PUT("/keys/:id", h.UpdateKeyLimit)
		admin.DELETE("/keys/:id", h.RevokeKey)
		admin.GET("/usage/:id", h.GetUsage)
	}

	// Coverage Endpoints
	api := r.Group("/api")
	api.Use(h.APIKeyMiddleware())
	{
		api.POST("/coverage", h.ComputeCoverage)
		api.POST("/coverage/csv", h.CoverageCSV)
		api.POST("/coverage/impact", h.EstimateImpact)
		api.POST("/coverage/suggest", h.SuggestAssignments)
		api.POST("/schedule/grid", h.ScheduleGrid)
		api.POST("/validate", h.ValidateInput)
		api.GET("/usage", h.GetMyUsage)
	}
}
