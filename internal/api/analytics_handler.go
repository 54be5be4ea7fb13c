package api

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/naija-amebo-api/internal/models"
	"github.com/naija-amebo-api/internal/service"
	"github.com/rs/zerolog"
)

// AnalyticsHandler handles analytics endpoints
type AnalyticsHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(services *service.Services, log zerolog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		services: services,
		log:      log.With().Str("handler", "analytics").Logger(),
	}
}

// Track handles POST /v1/analytics/events
// Responds 202 when at least one event was stored, 400 when none were
func (h *AnalyticsHandler) Track(c *gin.Context) {
	var req models.TrackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}

	result, err := h.services.Analytics.Track(c.Request.Context(), req.Events)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	if result.Accepted == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":    "no valid events",
			"details":  result.Errors,
			"accepted": result.Accepted,
			"rejected": result.Rejected,
		})
		return
	}
	c.JSON(http.StatusAccepted, result)
}

// Summary handles GET /v1/analytics/summary?since=&until=
// Bounds are RFC 3339 timestamps; the window is [since, until)
func (h *AnalyticsHandler) Summary(c *gin.Context) {
	query, ok := parseWindow(c)
	if !ok {
		return
	}

	summary, err := h.services.Analytics.Summary(c.Request.Context(), query)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Stream handles GET /v1/analytics/stream
// Pushes a rollup of every accepted batch as a server-sent event
func (h *AnalyticsHandler) Stream(c *gin.Context) {
	rollups, cancel := h.services.Analytics.Subscribe()
	defer cancel()

	startStream(c)

	ticker := time.NewTicker(streamKeepAlive)
	defer ticker.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case summary, ok := <-rollups:
			if !ok {
				return false
			}
			c.SSEvent("batch", summary)
			return true
		case <-ticker.C:
			c.SSEvent("ping", time.Now().UTC().Format(time.RFC3339))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

func parseWindow(c *gin.Context) (models.AnalyticsQuery, bool) {
	var query models.AnalyticsQuery
	for name, dst := range map[string]*time.Time{"since": &query.Since, "until": &query.Until} {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorBody("validation failed",
				[]models.ValidationError{{Field: name, Message: "must be an RFC 3339 timestamp", Value: raw}}))
			return query, false
		}
		*dst = t
	}
	return query, true
}
