package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/naija-amebo-api/internal/models"
	"github.com/naija-amebo-api/internal/service"
	"github.com/naija-amebo-api/internal/validation"
	"github.com/rs/zerolog"
)

// ArticleHandler handles article endpoints
type ArticleHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewArticleHandler creates a new ArticleHandler
func NewArticleHandler(services *service.Services, log zerolog.Logger) *ArticleHandler {
	return &ArticleHandler{
		services: services,
		log:      log.With().Str("handler", "article").Logger(),
	}
}

// Create handles POST /v1/articles
// The submitter is always the authenticated caller
func (h *ArticleHandler) Create(c *gin.Context) {
	var draft models.ArticleDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}
	draft.SubmittedBy = claimsFrom(c).UserID

	article, err := h.services.Article.Create(c.Request.Context(), &draft)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, article)
}

// Get handles GET /v1/articles/:id
func (h *ArticleHandler) Get(c *gin.Context) {
	article, err := h.services.Article.Get(c.Request.Context(), c.Param("id"), claimsFrom(c).IsAdmin())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

// List handles GET /v1/articles?status=&category=&page=&page_size=
// Only admins may list anything other than approved articles
func (h *ArticleHandler) List(c *gin.Context) {
	var filter models.ArticleFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		badRequest(c, "invalid query parameters")
		return
	}
	if filter.Status != "" {
		status, err := validation.ParseStatus(string(filter.Status))
		if err != nil {
			respondError(c, h.log, err)
			return
		}
		filter.Status = status
	}
	if !claimsFrom(c).IsAdmin() {
		filter.Status = models.ArticleStatusApproved
	}

	page, err := h.services.Article.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// SetStatus handles PATCH /v1/articles/:id/status
func (h *ArticleHandler) SetStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}
	status, err := validation.ParseStatus(req.Status)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.moderate(c, status)
}

// Approve handles POST /v1/articles/:id/approve
func (h *ArticleHandler) Approve(c *gin.Context) {
	h.moderate(c, models.ArticleStatusApproved)
}

// Reject handles POST /v1/articles/:id/reject
func (h *ArticleHandler) Reject(c *gin.Context) {
	h.moderate(c, models.ArticleStatusRejected)
}

func (h *ArticleHandler) moderate(c *gin.Context, status models.ArticleStatus) {
	article, err := h.services.Article.SetStatus(c.Request.Context(), c.Param("id"), status)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.Info().
		Str("article_id", article.ID).
		Str("status", string(article.Status)).
		Str("admin_id", claimsFrom(c).UserID).
		Msg("Moderation decision applied")

	c.JSON(http.StatusOK, article)
}

// IncrementCounter handles POST /v1/articles/:id/counters/:counter
func (h *ArticleHandler) IncrementCounter(c *gin.Context) {
	counter, err := validation.ParseCounter(c.Param("counter"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	if err := h.services.Article.IncrementCounter(c.Request.Context(), c.Param("id"), counter); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
