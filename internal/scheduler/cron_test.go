package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/naija-amebo-api/internal/config"
	"github.com/naija-amebo-api/internal/models"
	"github.com/rs/zerolog"
)

type countingSweeper struct{ runs int32 }

func (s *countingSweeper) ExpireStale(ctx context.Context) (int, error) {
	atomic.AddInt32(&s.runs, 1)
	return 0, nil
}

type countingSyncer struct {
	enabled bool
	runs    int32
}

func (s *countingSyncer) Sync(ctx context.Context) (*models.FeedSyncResult, error) {
	atomic.AddInt32(&s.runs, 1)
	return &models.FeedSyncResult{}, nil
}

func (s *countingSyncer) Enabled() bool { return s.enabled }

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Presence.SweepSchedule = "@every 1s"
	cfg.Feeds.Schedule = "@every 1s"
	return cfg
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(4 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("Timed out waiting for scheduled run")
		}
		time.Sleep(50 * time.Millisecond)
	}
}

func TestScheduler_RunsJobs(t *testing.T) {
	sweeper := &countingSweeper{}
	syncer := &countingSyncer{enabled: true}
	s := New(sweeper, syncer, testConfig(), zerolog.Nop())

	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer s.Stop(context.Background())

	if s.NextSweep().IsZero() || s.NextFeedSync().IsZero() {
		t.Error("Expected both jobs to be scheduled")
	}

	waitFor(t, func() bool {
		return atomic.LoadInt32(&sweeper.runs) > 0 && atomic.LoadInt32(&syncer.runs) > 0
	})
}

func TestScheduler_FeedSyncDisabled(t *testing.T) {
	sweeper := &countingSweeper{}
	syncer := &countingSyncer{}
	s := New(sweeper, syncer, testConfig(), zerolog.Nop())

	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer s.Stop(context.Background())

	if !s.NextFeedSync().IsZero() {
		t.Error("Feed sync should not be scheduled without feeds")
	}
	waitFor(t, func() bool { return atomic.LoadInt32(&sweeper.runs) > 0 })
	if atomic.LoadInt32(&syncer.runs) != 0 {
		t.Error("Disabled feed sync ran")
	}
}

func TestScheduler_InvalidSchedule(t *testing.T) {
	cfg := testConfig()
	cfg.Presence.SweepSchedule = "every now and then"

	s := New(&countingSweeper{}, &countingSyncer{}, cfg, zerolog.Nop())
	if err := s.Start(); err == nil {
		t.Error("Expected error for invalid schedule")
	}
}
