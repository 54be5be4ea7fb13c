package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/naija-amebo-api/internal/database"
	"github.com/naija-amebo-api/internal/models"
)

var articleColumns = []string{
	"id", "title", "description", "category", "status", "submitted_by", "hashtags",
	"image", "video", "source_url", "views", "likes", "comments", "shares",
	"created_at", "updated_at",
}

// counterColumns maps counters to their column. Only these names are ever
// interpolated into SQL.
var counterColumns = map[models.Counter]string{
	models.CounterViews:    "views",
	models.CounterLikes:    "likes",
	models.CounterComments: "comments",
	models.CounterShares:   "shares",
}

// articleRepo is the concrete implementation of ArticleRepository
type articleRepo struct {
	db *database.DB
}

// NewArticleRepo creates a new article repository
func NewArticleRepo(db *database.DB) ArticleRepository {
	return &articleRepo{db: db}
}

// Create inserts a new article
func (r *articleRepo) Create(ctx context.Context, article *models.Article) error {
	hashtags := article.Hashtags
	if hashtags == nil {
		hashtags = []string{}
	}

	query := `
		INSERT INTO articles (id, title, description, category, status, submitted_by, hashtags,
			image, video, source_url, views, likes, comments, shares, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err := r.db.ExecContext(ctx, query,
		article.ID, article.Title, article.Description, article.Category, string(article.Status),
		article.SubmittedBy, pq.Array(hashtags),
		nullString(article.Image), nullString(article.Video), nullString(article.SourceURL),
		article.Views, article.Likes, article.Comments, article.Shares,
		article.CreatedAt, article.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert article: %w", err)
	}
	return nil
}

// GetByID retrieves an article by ID. Returns nil when it does not exist.
func (r *articleRepo) GetByID(ctx context.Context, id string) (*models.Article, error) {
	query, args, err := psql.Select(articleColumns...).From("articles").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}

	article, err := scanArticle(r.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get article: %w", err)
	}
	return article, nil
}

// UpdateStatus sets the moderation status and reports whether a row changed
func (r *articleRepo) UpdateStatus(ctx context.Context, id string, status models.ArticleStatus, updatedAt time.Time) (bool, error) {
	query, args, err := psql.Update("articles").
		Set("status", string(status)).
		Set("updated_at", updatedAt).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return false, err
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("update article status: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// List returns one page of articles matching the filter plus the total match count
func (r *articleRepo) List(ctx context.Context, filter models.ArticleFilter) ([]*models.Article, int, error) {
	countQuery, countArgs, err := buildCountQuery(filter)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count articles: %w", err)
	}
	if total == 0 {
		return []*models.Article{}, 0, nil
	}

	query, args, err := buildListQuery(filter)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()

	articles := make([]*models.Article, 0, filter.PageSize)
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan article: %w", err)
		}
		articles = append(articles, article)
	}

	return articles, total, rows.Err()
}

// IncrementCounter bumps an engagement counter on an approved article
func (r *articleRepo) IncrementCounter(ctx context.Context, id string, counter models.Counter) (bool, error) {
	column, ok := counterColumns[counter]
	if !ok {
		return false, fmt.Errorf("unknown counter: %s", counter)
	}

	query, args, err := psql.Update("articles").
		Set(column, sq.Expr(column+" + 1")).
		Where(sq.Eq{"id": id, "status": string(models.ArticleStatusApproved)}).
		ToSql()
	if err != nil {
		return false, err
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("increment %s: %w", column, err)
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// SourceURLExists checks if an article was already filed from the given link
func (r *articleRepo) SourceURLExists(ctx context.Context, sourceURL string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM articles WHERE source_url = $1)", sourceURL).Scan(&exists)
	return exists, err
}

// CountByStatus returns the number of articles in each moderation state
func (r *articleRepo) CountByStatus(ctx context.Context) (map[models.ArticleStatus]int, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM articles GROUP BY status")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[models.ArticleStatus]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[models.ArticleStatus(status)] = count
	}
	return counts, rows.Err()
}

func applyFilter(b sq.SelectBuilder, filter models.ArticleFilter) sq.SelectBuilder {
	if filter.Status != "" {
		b = b.Where(sq.Eq{"status": string(filter.Status)})
	}
	if filter.Category != "" {
		b = b.Where(sq.Eq{"category": filter.Category})
	}
	return b
}

func buildCountQuery(filter models.ArticleFilter) (string, []interface{}, error) {
	return applyFilter(psql.Select("COUNT(*)").From("articles"), filter).ToSql()
}

func buildListQuery(filter models.ArticleFilter) (string, []interface{}, error) {
	b := applyFilter(psql.Select(articleColumns...).From("articles"), filter).
		OrderBy("created_at DESC", "id DESC")
	if filter.PageSize > 0 {
		b = b.Limit(uint64(filter.PageSize)).Offset(uint64(filter.Offset()))
	}
	return b.ToSql()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanArticle(row rowScanner) (*models.Article, error) {
	var article models.Article
	var status string
	var image, video, sourceURL sql.NullString

	err := row.Scan(
		&article.ID, &article.Title, &article.Description, &article.Category, &status,
		&article.SubmittedBy, pq.Array(&article.Hashtags),
		&image, &video, &sourceURL,
		&article.Views, &article.Likes, &article.Comments, &article.Shares,
		&article.CreatedAt, &article.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	article.Status = models.ArticleStatus(status)
	article.Image = image.String
	article.Video = video.String
	article.SourceURL = sourceURL.String
	if article.Hashtags == nil {
		article.Hashtags = []string{}
	}
	return &article, nil
}

// helper to convert empty string to NULL
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
