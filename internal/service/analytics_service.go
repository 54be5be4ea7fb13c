package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/naija-amebo-api/internal/analytics"
	"github.com/naija-amebo-api/internal/broker"
	"github.com/naija-amebo-api/internal/config"
	"github.com/naija-amebo-api/internal/models"
	"github.com/naija-amebo-api/internal/repository"
	"github.com/naija-amebo-api/internal/validation"
	"github.com/rs/zerolog"
)

// analyticsService is the concrete implementation of AnalyticsService
type analyticsService struct {
	repo      repository.AnalyticsRepository
	validator *validation.Validator
	cfg       config.AnalyticsConfig
	now       func() time.Time
	rollups   *broker.Broker[*models.AnalyticsSummary]
	log       zerolog.Logger
}

// newAnalyticsService creates a new AnalyticsService
func newAnalyticsService(repo repository.AnalyticsRepository, cfg config.AnalyticsConfig, now func() time.Time, log zerolog.Logger) *analyticsService {
	return &analyticsService{
		repo:      repo,
		validator: validation.NewValidator().WithClock(now),
		cfg:       cfg,
		now:       now,
		rollups:   broker.New[*models.AnalyticsSummary](broker.DefaultBuffer),
		log:       log.With().Str("service", "analytics").Logger(),
	}
}

// Track validates, scores and stores a batch of events. Invalid events are
// reported by index and do not block the valid ones.
func (s *analyticsService) Track(ctx context.Context, events []models.AnalyticsEvent) (*models.TrackResult, error) {
	if len(events) == 0 {
		return nil, models.ValidationErrors{{Field: "events", Message: "at least one event is required"}}
	}
	if s.cfg.MaxBatchSize > 0 && len(events) > s.cfg.MaxBatchSize {
		return nil, models.ValidationErrors{{
			Field:   "events",
			Message: fmt.Sprintf("batch exceeds maximum of %d events", s.cfg.MaxBatchSize),
			Value:   len(events),
		}}
	}

	start := time.Now()
	now := s.now().UTC()
	result := &models.TrackResult{}
	accepted := make([]*models.AnalyticsEvent, 0, len(events))

	for i := range events {
		event := events[i]
		if errs := s.validator.ValidateEvent(&event, i); len(errs) > 0 {
			result.Rejected++
			result.Errors = append(result.Errors, errs...)
			continue
		}

		event.ID = uuid.New().String()
		if event.Timestamp.IsZero() {
			event.Timestamp = now
		}
		event.Timestamp = event.Timestamp.UTC()
		// Derived fields are never taken from the client
		analytics.Score(&event)
		accepted = append(accepted, &event)
	}

	if len(accepted) > 0 {
		n, err := s.repo.BatchInsert(ctx, accepted)
		if err != nil {
			return nil, fmt.Errorf("failed to store analytics events: %w", err)
		}
		result.Accepted = n
		s.publish(accepted)
	}

	s.log.Info().
		Int("accepted", result.Accepted).
		Int("rejected", result.Rejected).
		Dur("duration", time.Since(start)).
		Msg("Analytics batch ingested")

	return result, nil
}

// Summary rolls up every stored event in the query window
func (s *analyticsService) Summary(ctx context.Context, query models.AnalyticsQuery) (*models.AnalyticsSummary, error) {
	if !query.Since.IsZero() && !query.Until.IsZero() && query.Until.Before(query.Since) {
		return nil, models.ValidationErrors{{Field: "until", Message: "until must not be before since"}}
	}

	agg := analytics.NewAggregator()
	err := s.repo.Stream(ctx, query, func(event *models.AnalyticsEvent) error {
		agg.Add(event)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate analytics: %w", err)
	}

	summary := agg.Summary()
	summary.GeneratedAt = s.now().UTC()
	if !query.Since.IsZero() {
		since := query.Since.UTC()
		summary.Since = &since
	}
	if !query.Until.IsZero() {
		until := query.Until.UTC()
		summary.Until = &until
	}
	return summary, nil
}

// Count returns the number of stored events
func (s *analyticsService) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

// Subscribe streams a rollup of each accepted batch until cancel is called
func (s *analyticsService) Subscribe() (<-chan *models.AnalyticsSummary, func()) {
	return s.rollups.Subscribe()
}

func (s *analyticsService) publish(events []*models.AnalyticsEvent) {
	if s.rollups.Subscribers() == 0 {
		return
	}
	agg := analytics.NewAggregator()
	for _, e := range events {
		agg.Add(e)
	}
	summary := agg.Summary()
	summary.GeneratedAt = s.now().UTC()
	s.rollups.Publish(summary)
}
