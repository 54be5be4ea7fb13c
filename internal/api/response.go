package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/naija-amebo-api/internal/models"
	"github.com/rs/zerolog"
)

// errorBody is the shape of every error response. details is null when
// there is nothing beyond the message.
func errorBody(message string, details interface{}) gin.H {
	return gin.H{"error": message, "details": details}
}

// respondError maps service errors onto HTTP status codes
func respondError(c *gin.Context, log zerolog.Logger, err error) {
	var verrs models.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		c.JSON(http.StatusBadRequest, errorBody("validation failed", []models.ValidationError(verrs)))
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, errorBody("not found", nil))
	case errors.Is(err, models.ErrInvalidTransition):
		c.JSON(http.StatusConflict, errorBody("invalid status transition", err.Error()))
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
		c.JSON(http.StatusInternalServerError, errorBody("internal server error", nil))
	}
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, errorBody(message, nil))
}
