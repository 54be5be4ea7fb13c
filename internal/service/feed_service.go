package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/naija-amebo-api/internal/config"
	"github.com/naija-amebo-api/internal/feeds"
	"github.com/naija-amebo-api/internal/models"
	"github.com/naija-amebo-api/internal/repository"
	"github.com/rs/zerolog"
)

// feedService is the concrete implementation of FeedService
type feedService struct {
	articles ArticleService
	repo     repository.ArticleRepository
	fetcher  feeds.Fetcher
	cfg      config.FeedsConfig
	now      func() time.Time
	log      zerolog.Logger
	// Serializes Sync calls
	running sync.Mutex
	// Semaphore: buffered channel to limit concurrent feed downloads
	sem chan struct{}
}

// newFeedService creates a new FeedService
func newFeedService(articles ArticleService, repo repository.ArticleRepository, fetcher feeds.Fetcher, cfg config.FeedsConfig, now func() time.Time, log zerolog.Logger) *feedService {
	workers := cfg.Concurrency
	if workers < 1 {
		workers = 1
	}
	return &feedService{
		articles: articles,
		repo:     repo,
		fetcher:  fetcher,
		cfg:      cfg,
		now:      now,
		log:      log.With().Str("service", "feed").Logger(),
		sem:      make(chan struct{}, workers),
	}
}

// Enabled reports whether any feeds are configured
func (s *feedService) Enabled() bool {
	return len(s.cfg.URLs) > 0
}

// Sync fetches every configured feed and files unseen items as pending articles
func (s *feedService) Sync(ctx context.Context) (*models.FeedSyncResult, error) {
	s.running.Lock()
	defer s.running.Unlock()

	start := s.now()
	result := &models.FeedSyncResult{Feeds: len(s.cfg.URLs)}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[string]bool)
	)

	for _, feedURL := range s.cfg.URLs {
		// Acquire semaphore slot - blocks if all workers are busy
		select {
		case s.sem <- struct{}{}:
		case <-ctx.Done():
			wg.Wait()
			return result, ctx.Err()
		}

		wg.Add(1)
		go func(feedURL string) {
			defer wg.Done()
			defer func() { <-s.sem }()

			// Panic recovery - a malformed feed must not crash the process
			defer func() {
				if r := recover(); r != nil {
					s.log.Error().Interface("panic", r).Str("feed", feedURL).Msg("Feed sync panicked - recovered")
					mu.Lock()
					result.Errors = append(result.Errors, models.FeedError{URL: feedURL, Error: fmt.Sprintf("panic: %v", r)})
					mu.Unlock()
				}
			}()

			stats, err := s.syncFeed(ctx, feedURL, seen, &mu)

			mu.Lock()
			defer mu.Unlock()
			result.Fetched += stats.Fetched
			result.Created += stats.Created
			result.Skipped += stats.Skipped
			result.Invalid += stats.Invalid
			if err != nil {
				s.log.Warn().Err(err).Str("feed", feedURL).Msg("Feed sync failed")
				result.Errors = append(result.Errors, models.FeedError{URL: feedURL, Error: err.Error()})
			}
		}(feedURL)
	}

	wg.Wait()
	result.DurationMs = s.now().Sub(start).Milliseconds()

	s.log.Info().
		Int("feeds", result.Feeds).
		Int("fetched", result.Fetched).
		Int("created", result.Created).
		Int("skipped", result.Skipped).
		Int("invalid", result.Invalid).
		Int("errors", len(result.Errors)).
		Msg("Feed sync completed")

	return result, nil
}

// syncFeed ingests one feed. seen is shared across feeds of the same run and
// guarded by mu.
func (s *feedService) syncFeed(ctx context.Context, feedURL string, seen map[string]bool, mu *sync.Mutex) (models.FeedSyncResult, error) {
	var stats models.FeedSyncResult

	drafts, err := s.fetcher.Fetch(ctx, feedURL)
	if err != nil {
		return stats, err
	}
	stats.Fetched = len(drafts)
	sortByPublished(drafts)

	for i := range drafts {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}

		draft := drafts[i].ArticleDraft
		if draft.SourceURL == "" {
			stats.Invalid++
			continue
		}

		mu.Lock()
		dup := seen[draft.SourceURL]
		seen[draft.SourceURL] = true
		mu.Unlock()
		if dup {
			stats.Skipped++
			continue
		}

		exists, err := s.repo.SourceURLExists(ctx, draft.SourceURL)
		if err != nil {
			return stats, fmt.Errorf("check %s: %w", draft.SourceURL, err)
		}
		if exists {
			stats.Skipped++
			continue
		}

		if _, err := s.articles.Create(ctx, &draft); err != nil {
			var verrs models.ValidationErrors
			if errors.As(err, &verrs) {
				stats.Invalid++
				s.log.Debug().Str("source_url", draft.SourceURL).Str("reason", verrs.Error()).Msg("Skipping invalid feed item")
				continue
			}
			return stats, err
		}
		stats.Created++
		s.log.Debug().
			Str("source_url", draft.SourceURL).
			Time("published_at", drafts[i].PublishedAt).
			Msg("Filed feed item")
	}

	return stats, nil
}

// sortByPublished orders drafts oldest first so the newest item is filed
// last and lists first. Undated items keep their feed order after the rest.
func sortByPublished(drafts []feeds.Draft) {
	sort.SliceStable(drafts, func(i, j int) bool {
		a, b := drafts[i].PublishedAt, drafts[j].PublishedAt
		if a.IsZero() || b.IsZero() {
			return !a.IsZero() && b.IsZero()
		}
		return a.Before(b)
	})
}
