package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/naija-amebo-api/internal/service"
	"github.com/rs/zerolog"
)

// feedSyncTimeout bounds a manually triggered sync
const feedSyncTimeout = 2 * time.Minute

// AdminHandler handles admin-only operations
type AdminHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(services *service.Services, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		services: services,
		log:      log.With().Str("handler", "admin").Logger(),
	}
}

// SyncFeeds handles POST /v1/admin/feeds/sync
func (h *AdminHandler) SyncFeeds(c *gin.Context) {
	if !h.services.Feed.Enabled() {
		c.JSON(http.StatusConflict, errorBody("no feeds configured", nil))
		return
	}

	ctx, cancel := contextWithTimeout(c, feedSyncTimeout)
	defer cancel()

	h.log.Info().Str("admin_id", claimsFrom(c).UserID).Msg("Manual feed sync requested")

	result, err := h.services.Feed.Sync(ctx)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
