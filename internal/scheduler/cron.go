// Package scheduler runs the periodic background jobs: expiring stale
// presence and pulling external feeds.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/naija-amebo-api/internal/config"
	"github.com/naija-amebo-api/internal/models"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const (
	sweepTimeout = 30 * time.Second
	syncTimeout  = 10 * time.Minute
)

// PresenceSweeper expires online users that stopped sending heartbeats
type PresenceSweeper interface {
	ExpireStale(ctx context.Context) (int, error)
}

// FeedSyncer ingests external feeds
type FeedSyncer interface {
	Sync(ctx context.Context) (*models.FeedSyncResult, error)
	Enabled() bool
}

// Scheduler owns the cron runner and its entries
type Scheduler struct {
	cron     *cron.Cron
	presence PresenceSweeper
	feeds    FeedSyncer
	cfg      *config.Config
	log      zerolog.Logger

	sweepEntryID cron.EntryID
	feedEntryID  cron.EntryID
}

// New creates a scheduler. Overlapping runs of the same job are skipped and
// panics are recovered.
func New(presence PresenceSweeper, feeds FeedSyncer, cfg *config.Config, log zerolog.Logger) *Scheduler {
	log = log.With().Str("component", "scheduler").Logger()
	logger := cronLogger{log: log}
	return &Scheduler{
		cron: cron.New(cron.WithLogger(logger), cron.WithChain(
			cron.Recover(logger),
			cron.SkipIfStillRunning(logger),
		)),
		presence: presence,
		feeds:    feeds,
		cfg:      cfg,
		log:      log,
	}
}

// Start registers the jobs and starts the runner
func (s *Scheduler) Start() error {
	var err error
	s.sweepEntryID, err = s.cron.AddFunc(s.cfg.Presence.SweepSchedule, s.sweepPresence)
	if err != nil {
		return fmt.Errorf("invalid presence sweep schedule %q: %w", s.cfg.Presence.SweepSchedule, err)
	}

	if s.feeds.Enabled() {
		s.feedEntryID, err = s.cron.AddFunc(s.cfg.Feeds.Schedule, s.syncFeeds)
		if err != nil {
			return fmt.Errorf("invalid feed schedule %q: %w", s.cfg.Feeds.Schedule, err)
		}
	} else {
		s.log.Info().Msg("No feeds configured, feed sync disabled")
	}

	s.cron.Start()
	s.log.Info().
		Str("presence_sweep", s.cfg.Presence.SweepSchedule).
		Str("feed_sync", s.cfg.Feeds.Schedule).
		Msg("Scheduler started")
	return nil
}

// Stop halts the runner and waits for running jobs to finish
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop().Done()
	select {
	case <-done:
		s.log.Info().Msg("Scheduler stopped")
	case <-ctx.Done():
		s.log.Warn().Msg("Scheduler stop timed out with jobs still running")
	}
}

// NextSweep returns when the presence sweep runs next
func (s *Scheduler) NextSweep() time.Time {
	return s.cron.Entry(s.sweepEntryID).Next
}

// NextFeedSync returns when feeds are pulled next. Zero when disabled.
func (s *Scheduler) NextFeedSync() time.Time {
	if s.feedEntryID == 0 {
		return time.Time{}
	}
	return s.cron.Entry(s.feedEntryID).Next
}

func (s *Scheduler) sweepPresence() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	if _, err := s.presence.ExpireStale(ctx); err != nil {
		s.log.Error().Err(err).Msg("Presence sweep failed")
	}
}

func (s *Scheduler) syncFeeds() {
	ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
	defer cancel()

	if _, err := s.feeds.Sync(ctx); err != nil {
		s.log.Error().Err(err).Msg("Scheduled feed sync failed")
	}
}

// cronLogger adapts zerolog to cron.Logger
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
