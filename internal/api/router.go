package api

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/naija-amebo-api/internal/auth"
	"github.com/naija-amebo-api/internal/config"
	"github.com/naija-amebo-api/internal/service"
	"github.com/rs/zerolog"
)

// HealthChecker reports on the backing database. It may be nil in tests.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
	Stats() sql.DBStats
	SchemaVersion() uint
}

// NewRouter creates and configures the Gin router
func NewRouter(services *service.Services, jwt *auth.JWTService, db HealthChecker, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware())
	router.Use(optionalAuth(jwt))

	// Handlers
	articleHandler := NewArticleHandler(services, log)
	presenceHandler := NewPresenceHandler(services, cfg.Presence.TTL, log)
	analyticsHandler := NewAnalyticsHandler(services, log)
	adminHandler := NewAdminHandler(services, log)

	// Health check
	router.GET("/health", healthCheck(db))
	router.GET("/metrics", metricsHandler(services, db, log))

	// API v1
	v1 := router.Group("/v1")
	{
		// Article endpoints
		articles := v1.Group("/articles")
		{
			articles.GET("", articleHandler.List)
			articles.GET("/:id", articleHandler.Get)
			articles.POST("", requireUser(), articleHandler.Create)
			articles.PATCH("/:id/status", requireAdmin(), articleHandler.SetStatus)
			articles.POST("/:id/approve", requireAdmin(), articleHandler.Approve)
			articles.POST("/:id/reject", requireAdmin(), articleHandler.Reject)
			articles.POST("/:id/counters/:counter", articleHandler.IncrementCounter)
		}

		// Presence endpoints
		presence := v1.Group("/presence")
		{
			presence.PUT("", requireUser(), presenceHandler.Heartbeat)
			presence.GET("", presenceHandler.GetMany)
			presence.GET("/stream", presenceHandler.Stream)
			presence.GET("/ws", requireUser(), presenceHandler.Socket)
			presence.GET("/:user_id", presenceHandler.Get)
		}

		// Analytics endpoints
		analytics := v1.Group("/analytics")
		{
			analytics.POST("/events", analyticsHandler.Track)
			analytics.GET("/summary", requireAdmin(), analyticsHandler.Summary)
			analytics.GET("/stream", requireAdmin(), analyticsHandler.Stream)
		}

		// Admin endpoints
		admin := v1.Group("/admin", requireAdmin())
		{
			admin.POST("/feeds/sync", adminHandler.SyncFeeds)
		}
	}

	return router
}

// healthCheck returns the health status
func healthCheck(db HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := http.StatusOK
		body := gin.H{
			"status":    "healthy",
			"timestamp": time.Now().Format(time.RFC3339),
			"service":   "naija-amebo-api",
		}

		if db != nil {
			ctx, cancel := contextWithTimeout(c, 2*time.Second)
			defer cancel()
			if err := db.HealthCheck(ctx); err != nil {
				status = http.StatusServiceUnavailable
				body["status"] = "unhealthy"
				body["database"] = err.Error()
			}
			body["schema_version"] = db.SchemaVersion()
		}

		c.JSON(status, body)
	}
}

// metricsHandler returns moderation, presence and analytics counts. A count
// whose store fails is reported under "errors" with a 503.
func metricsHandler(services *service.Services, db HealthChecker, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		failures := gin.H{}
		fail := func(name string, err error) {
			log.Error().Err(err).Str("metric", name).Msg("Failed to collect metric")
			failures[name] = err.Error()
		}

		articles := gin.H{}
		byStatus, err := services.Article.CountByStatus(ctx)
		if err != nil {
			fail("articles", err)
		}
		for status, n := range byStatus {
			articles[string(status)] = n
		}

		online, err := services.Presence.OnlineCount(ctx)
		if err != nil {
			fail("online_users", err)
		}
		events, err := services.Analytics.Count(ctx)
		if err != nil {
			fail("analytics_events", err)
		}

		body := gin.H{
			"articles":         articles,
			"online_users":     online,
			"analytics_events": events,
			"timestamp":        time.Now().Format(time.RFC3339),
		}
		if db != nil {
			stats := db.Stats()
			body["database"] = gin.H{
				"open_connections": stats.OpenConnections,
				"in_use":           stats.InUse,
				"idle":             stats.Idle,
				"wait_count":       stats.WaitCount,
			}
		}

		status := http.StatusOK
		if len(failures) > 0 {
			status = http.StatusServiceUnavailable
			body["errors"] = failures
		}
		c.JSON(status, body)
	}
}

// recoveryMiddleware handles panics
func recoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().Interface("error", err).Msg("Panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody("internal server error", nil))
			}
		}()
		c.Next()
	}
}

// loggingMiddleware logs requests
func loggingMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		event := log.Info()
		if statusCode >= 400 {
			event = log.Warn()
		}
		if statusCode >= 500 {
			event = log.Error()
		}

		if claims := claimsFrom(c); claims != nil {
			event = event.Str("user_id", claims.UserID)
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", statusCode).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("Request completed")
	}
}

// corsMiddleware handles CORS
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// contextWithTimeout creates a context with timeout for handlers
func contextWithTimeout(c *gin.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), timeout)
}
