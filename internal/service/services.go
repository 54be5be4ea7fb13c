package service

import (
	"context"
	"time"

	"github.com/naija-amebo-api/internal/config"
	"github.com/naija-amebo-api/internal/feeds"
	"github.com/naija-amebo-api/internal/models"
	"github.com/naija-amebo-api/internal/repository"
	"github.com/rs/zerolog"
)

// ArticleService defines the interface for the article lifecycle
type ArticleService interface {
	Create(ctx context.Context, draft *models.ArticleDraft) (*models.Article, error)
	Get(ctx context.Context, id string, includeUnpublished bool) (*models.Article, error)
	Approve(ctx context.Context, id string) (*models.Article, error)
	Reject(ctx context.Context, id string) (*models.Article, error)
	SetStatus(ctx context.Context, id string, status models.ArticleStatus) (*models.Article, error)
	List(ctx context.Context, filter models.ArticleFilter) (*models.ArticlePage, error)
	IncrementCounter(ctx context.Context, id string, counter models.Counter) error
	CountByStatus(ctx context.Context) (map[models.ArticleStatus]int, error)
}

// PresenceService defines the interface for presence tracking
type PresenceService interface {
	Heartbeat(ctx context.Context, userID string, status models.PresenceStatus, reason string) (*models.PresenceView, error)
	Get(ctx context.Context, userID string) (*models.PresenceView, error)
	GetMany(ctx context.Context, userIDs []string) ([]*models.PresenceView, error)
	ExpireStale(ctx context.Context) (int, error)
	OnlineCount(ctx context.Context) (int, error)
	Subscribe() (<-chan models.PresenceEvent, func())
}

// AnalyticsService defines the interface for analytics ingestion and rollups
type AnalyticsService interface {
	Track(ctx context.Context, events []models.AnalyticsEvent) (*models.TrackResult, error)
	Summary(ctx context.Context, query models.AnalyticsQuery) (*models.AnalyticsSummary, error)
	Count(ctx context.Context) (int, error)
	Subscribe() (<-chan *models.AnalyticsSummary, func())
}

// FeedService defines the interface for external news ingestion
type FeedService interface {
	Sync(ctx context.Context) (*models.FeedSyncResult, error)
	Enabled() bool
}

// Services holds all service interfaces
type Services struct {
	Article   ArticleService
	Presence  PresenceService
	Analytics AnalyticsService
	Feed      FeedService

	closers []func()
}

// Option customises service construction
type Option func(*options)

type options struct {
	now     func() time.Time
	fetcher feeds.Fetcher
}

// WithClock replaces the wall clock used for timestamps and presence expiry
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithFetcher replaces the feed fetcher
func WithFetcher(f feeds.Fetcher) Option {
	return func(o *options) { o.fetcher = f }
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, cfg *config.Config, log zerolog.Logger, opts ...Option) *Services {
	o := &options{now: time.Now}
	for _, opt := range opts {
		opt(o)
	}
	if o.fetcher == nil {
		o.fetcher = feeds.NewFetcher(cfg.Feeds.Timeout)
	}

	articleSvc := newArticleService(repos.Article, cfg.Articles, o.now, log)
	presenceSvc := newPresenceService(repos.Presence, cfg.Presence, o.now, log)
	analyticsSvc := newAnalyticsService(repos.Analytics, cfg.Analytics, o.now, log)
	feedSvc := newFeedService(articleSvc, repos.Article, o.fetcher, cfg.Feeds, o.now, log)

	return &Services{
		Article:   articleSvc,
		Presence:  presenceSvc,
		Analytics: analyticsSvc,
		Feed:      feedSvc,
		closers:   []func(){presenceSvc.events.Close, analyticsSvc.rollups.Close},
	}
}

// Close disconnects every push subscriber
func (s *Services) Close() {
	for _, c := range s.closers {
		c()
	}
}
