package api

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/naija-amebo-api/internal/service"
	"github.com/naija-amebo-api/internal/validation"
	"github.com/rs/zerolog"
)

const (
	// maxPresenceLookup caps the user_ids accepted by a batch lookup
	maxPresenceLookup = 100

	// streamKeepAlive is how often idle SSE streams get a ping
	streamKeepAlive = 25 * time.Second
)

// PresenceHandler handles presence endpoints
type PresenceHandler struct {
	services *service.Services
	ttl      time.Duration
	log      zerolog.Logger
}

// NewPresenceHandler creates a new PresenceHandler. Websocket clients must
// send something within ttl to keep their connection.
func NewPresenceHandler(services *service.Services, ttl time.Duration, log zerolog.Logger) *PresenceHandler {
	return &PresenceHandler{
		services: services,
		ttl:      ttl,
		log:      log.With().Str("handler", "presence").Logger(),
	}
}

// Heartbeat handles PUT /v1/presence
func (h *PresenceHandler) Heartbeat(c *gin.Context) {
	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}
	status, err := validation.ParsePresenceStatus(req.Status)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	view, err := h.services.Presence.Heartbeat(c.Request.Context(), claimsFrom(c).UserID, status, "")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Get handles GET /v1/presence/:user_id
func (h *PresenceHandler) Get(c *gin.Context) {
	view, err := h.services.Presence.Get(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GetMany handles GET /v1/presence?user_ids=a,b,c
func (h *PresenceHandler) GetMany(c *gin.Context) {
	ids := splitIDs(c.Query("user_ids"))
	if len(ids) == 0 {
		badRequest(c, "user_ids parameter is required")
		return
	}
	if len(ids) > maxPresenceLookup {
		badRequest(c, "too many user_ids")
		return
	}

	views, err := h.services.Presence.GetMany(c.Request.Context(), ids)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"presence": views})
}

// Stream handles GET /v1/presence/stream?user_ids=a,b
// Pushes presence changes as server-sent events; without user_ids every
// change is sent.
func (h *PresenceHandler) Stream(c *gin.Context) {
	var only map[string]bool
	if ids := splitIDs(c.Query("user_ids")); len(ids) > 0 {
		only = make(map[string]bool, len(ids))
		for _, id := range ids {
			only[id] = true
		}
	}

	events, cancel := h.services.Presence.Subscribe()
	defer cancel()

	startStream(c)

	ticker := time.NewTicker(streamKeepAlive)
	defer ticker.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-events:
			if !ok {
				return false
			}
			if only == nil || only[ev.UserID] {
				c.SSEvent("presence", ev)
			}
			return true
		case <-ticker.C:
			c.SSEvent("ping", time.Now().UTC().Format(time.RFC3339))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// startStream writes SSE headers and a ready event once the subscription is live
func startStream(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("ready", gin.H{"timestamp": time.Now().UTC().Format(time.RFC3339)})
	c.Writer.Flush()
}

func splitIDs(raw string) []string {
	var ids []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
