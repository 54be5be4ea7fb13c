package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/naija-amebo-api/internal/config"
	"github.com/naija-amebo-api/internal/models"
	"github.com/naija-amebo-api/internal/repository"
	"github.com/naija-amebo-api/internal/validation"
	"github.com/rs/zerolog"
)

// articleService is the concrete implementation of ArticleService
type articleService struct {
	repo      repository.ArticleRepository
	validator *validation.Validator
	cfg       config.ArticlesConfig
	now       func() time.Time
	log       zerolog.Logger
}

// newArticleService creates a new ArticleService
func newArticleService(repo repository.ArticleRepository, cfg config.ArticlesConfig, now func() time.Time, log zerolog.Logger) *articleService {
	return &articleService{
		repo:      repo,
		validator: validation.NewValidator().WithClock(now),
		cfg:       cfg,
		now:       now,
		log:       log.With().Str("service", "article").Logger(),
	}
}

// Create files a new submission as pending
func (s *articleService) Create(ctx context.Context, draft *models.ArticleDraft) (*models.Article, error) {
	if errs := s.validator.ValidateDraft(draft); len(errs) > 0 {
		return nil, models.ValidationErrors(errs)
	}

	category := strings.ToLower(strings.TrimSpace(draft.Category))
	if category == "" {
		category = models.DefaultCategory
	}

	now := s.now().UTC()
	article := &models.Article{
		ID:          uuid.New().String(),
		Title:       strings.TrimSpace(draft.Title),
		Description: strings.TrimSpace(draft.Description),
		Category:    category,
		Status:      models.ArticleStatusPending,
		SubmittedBy: strings.TrimSpace(draft.SubmittedBy),
		Hashtags:    normalizeHashtags(draft.Hashtags),
		Image:       draft.Image,
		Video:       draft.Video,
		SourceURL:   draft.SourceURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, article); err != nil {
		return nil, fmt.Errorf("failed to create article: %w", err)
	}

	s.log.Info().
		Str("article_id", article.ID).
		Str("category", article.Category).
		Str("submitted_by", article.SubmittedBy).
		Msg("Article submitted for review")

	return article, nil
}

// Get retrieves an article. Unpublished articles are hidden unless asked for.
func (s *articleService) Get(ctx context.Context, id string, includeUnpublished bool) (*models.Article, error) {
	if !isValidUUID(id) {
		return nil, models.ErrNotFound
	}

	article, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get article: %w", err)
	}
	if article == nil {
		return nil, models.ErrNotFound
	}
	if !includeUnpublished && article.Status != models.ArticleStatusApproved {
		return nil, models.ErrNotFound
	}
	return article, nil
}

// Approve publishes an article
func (s *articleService) Approve(ctx context.Context, id string) (*models.Article, error) {
	return s.SetStatus(ctx, id, models.ArticleStatusApproved)
}

// Reject turns an article down
func (s *articleService) Reject(ctx context.Context, id string) (*models.Article, error) {
	return s.SetStatus(ctx, id, models.ArticleStatusRejected)
}

// SetStatus applies an admin moderation decision. Re-applying the current
// status is a no-op; nothing moves an article back to pending.
func (s *articleService) SetStatus(ctx context.Context, id string, status models.ArticleStatus) (*models.Article, error) {
	if status != models.ArticleStatusApproved && status != models.ArticleStatusRejected {
		return nil, fmt.Errorf("%w: cannot move an article to %q", models.ErrInvalidTransition, status)
	}
	if !isValidUUID(id) {
		return nil, models.ErrNotFound
	}

	article, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get article: %w", err)
	}
	if article == nil {
		return nil, models.ErrNotFound
	}
	if article.Status == status {
		return article, nil
	}

	previous := article.Status
	updatedAt := s.now().UTC()
	updated, err := s.repo.UpdateStatus(ctx, id, status, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to update article status: %w", err)
	}
	if !updated {
		return nil, models.ErrNotFound
	}

	article.Status = status
	article.UpdatedAt = updatedAt

	s.log.Info().
		Str("article_id", id).
		Str("from", string(previous)).
		Str("to", string(status)).
		Msg("Article status changed")

	return article, nil
}

// List returns a recency-ordered page of articles
func (s *articleService) List(ctx context.Context, filter models.ArticleFilter) (*models.ArticlePage, error) {
	if filter.Status != "" && !models.ValidStatuses[filter.Status] {
		return nil, models.ValidationErrors{{Field: "status", Message: "invalid status", Value: string(filter.Status)}}
	}
	filter.Category = strings.ToLower(strings.TrimSpace(filter.Category))
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = s.cfg.DefaultPageSize
	}
	if filter.PageSize > s.cfg.MaxPageSize {
		filter.PageSize = s.cfg.MaxPageSize
	}

	articles, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}

	return &models.ArticlePage{
		Articles: articles,
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Total:    total,
		HasMore:  filter.Offset()+len(articles) < total,
	}, nil
}

// IncrementCounter bumps an engagement counter on a published article
func (s *articleService) IncrementCounter(ctx context.Context, id string, counter models.Counter) error {
	if !models.ValidCounters[counter] {
		return models.ValidationErrors{{Field: "counter", Message: "invalid counter", Value: string(counter)}}
	}
	if !isValidUUID(id) {
		return models.ErrNotFound
	}

	updated, err := s.repo.IncrementCounter(ctx, id, counter)
	if err != nil {
		return fmt.Errorf("failed to increment %s: %w", counter, err)
	}
	if !updated {
		return models.ErrNotFound
	}
	return nil
}

// CountByStatus returns the number of articles in each moderation state
func (s *articleService) CountByStatus(ctx context.Context) (map[models.ArticleStatus]int, error) {
	return s.repo.CountByStatus(ctx)
}

func normalizeHashtags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = "#" + strings.TrimPrefix(strings.TrimSpace(tag), "#")
		key := strings.ToLower(tag)
		if tag == "#" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, tag)
	}
	return out
}

// isValidUUID checks if a string is a valid UUID
func isValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
