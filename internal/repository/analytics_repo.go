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

var analyticsColumns = []string{
	"id", "session_id", "user_id", "device_fingerprint", "browser", "os", "device", "page",
	"clicks", "scroll_depth", "time_spent", "engagement_score", "bounced", "suspected_bot",
	"occurred_at",
}

// analyticsRepo is the concrete implementation of AnalyticsRepository
type analyticsRepo struct {
	db *database.DB
}

// NewAnalyticsRepo creates a new analytics repository
func NewAnalyticsRepo(db *database.DB) AnalyticsRepository {
	return &analyticsRepo{db: db}
}

// BatchInsert appends events using PostgreSQL COPY
func (r *analyticsRepo) BatchInsert(ctx context.Context, events []*models.AnalyticsEvent) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("analytics_events", analyticsColumns...))
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, e := range events {
		_, err := stmt.ExecContext(ctx,
			e.ID, e.SessionID, nullString(e.UserID), nullString(e.DeviceFingerprint),
			nullString(e.Browser), nullString(e.OS), nullString(e.Device), nullString(e.Page),
			e.Clicks, e.ScrollDepth, e.TimeSpent, e.EngagementScore, e.Bounced, e.SuspectedBot,
			e.Timestamp,
		)
		if err != nil {
			return 0, fmt.Errorf("copy analytics event %s: %w", e.ID, err)
		}
	}

	// Flush the COPY buffer
	if _, err := stmt.ExecContext(ctx); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	return len(events), nil
}

// Stream feeds every event in the query window to callback, oldest first
func (r *analyticsRepo) Stream(ctx context.Context, query models.AnalyticsQuery, callback func(*models.AnalyticsEvent) error) error {
	stmt, args, err := buildAnalyticsQuery(query)
	if err != nil {
		return err
	}

	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("query analytics events: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e models.AnalyticsEvent
		var userID, fingerprint, browser, os, device, page sql.NullString
		err := rows.Scan(
			&e.ID, &e.SessionID, &userID, &fingerprint, &browser, &os, &device, &page,
			&e.Clicks, &e.ScrollDepth, &e.TimeSpent, &e.EngagementScore, &e.Bounced, &e.SuspectedBot,
			&e.Timestamp,
		)
		if err != nil {
			return err
		}
		e.UserID = userID.String
		e.DeviceFingerprint = fingerprint.String
		e.Browser = browser.String
		e.OS = os.String
		e.Device = device.String
		e.Page = page.String

		if err := callback(&e); err != nil {
			return err
		}
	}

	return rows.Err()
}

// Count returns the total number of stored events
func (r *analyticsRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM analytics_events").Scan(&count)
	return count, err
}

func buildAnalyticsQuery(query models.AnalyticsQuery) (string, []interface{}, error) {
	b := psql.Select(analyticsColumns...).From("analytics_events")
	if !query.Since.IsZero() {
		b = b.Where(sq.GtOrEq{"occurred_at": query.Since.UTC().Truncate(time.Microsecond)})
	}
	if !query.Until.IsZero() {
		b = b.Where(sq.Lt{"occurred_at": query.Until.UTC().Truncate(time.Microsecond)})
	}
	return b.OrderBy("occurred_at").ToSql()
}
