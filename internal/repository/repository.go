package repository

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/go-redis/redis/v8"
	"github.com/naija-amebo-api/internal/database"
	"github.com/naija-amebo-api/internal/models"
)

// psql builds PostgreSQL statements with $n placeholders
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// ArticleRepository defines the interface for article data operations
type ArticleRepository interface {
	Create(ctx context.Context, article *models.Article) error
	GetByID(ctx context.Context, id string) (*models.Article, error)
	UpdateStatus(ctx context.Context, id string, status models.ArticleStatus, updatedAt time.Time) (bool, error)
	List(ctx context.Context, filter models.ArticleFilter) ([]*models.Article, int, error)
	IncrementCounter(ctx context.Context, id string, counter models.Counter) (bool, error)
	SourceURLExists(ctx context.Context, sourceURL string) (bool, error)
	CountByStatus(ctx context.Context) (map[models.ArticleStatus]int, error)
}

// PresenceRepository defines the interface for presence data operations
type PresenceRepository interface {
	Get(ctx context.Context, userID string) (*models.PresenceRecord, error)
	GetMany(ctx context.Context, userIDs []string) (map[string]*models.PresenceRecord, error)
	Put(ctx context.Context, record *models.PresenceRecord) error
	ListStale(ctx context.Context, before time.Time) ([]string, error)
	CountOnline(ctx context.Context, since time.Time) (int, error)
}

// AnalyticsRepository defines the interface for analytics event storage
type AnalyticsRepository interface {
	BatchInsert(ctx context.Context, events []*models.AnalyticsEvent) (int, error)
	Stream(ctx context.Context, query models.AnalyticsQuery, callback func(*models.AnalyticsEvent) error) error
	Count(ctx context.Context) (int, error)
}

// Repositories holds all repository interfaces
type Repositories struct {
	Article   ArticleRepository
	Presence  PresenceRepository
	Analytics AnalyticsRepository
}

// New creates all repositories with the given connections
func New(db *database.DB, rdb *redis.Client) *Repositories {
	return &Repositories{
		Article:   NewArticleRepo(db),
		Presence:  NewPresenceRepo(rdb),
		Analytics: NewAnalyticsRepo(db),
	}
}
