package benchmark

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/naija-amebo-api/internal/analytics"
	"github.com/naija-amebo-api/internal/config"
	"github.com/naija-amebo-api/internal/mocks"
	"github.com/naija-amebo-api/internal/models"
	"github.com/naija-amebo-api/internal/repository"
	"github.com/naija-amebo-api/internal/service"
	"github.com/naija-amebo-api/internal/validation"
	"github.com/rs/zerolog"
)

var (
	browsers = []string{"Chrome", "Safari", "Firefox", "Opera Mini", ""}
	systems  = []string{"Android", "iOS", "Windows", "macOS"}
	devices  = []string{"mobile", "desktop", "tablet"}
)

func makeEvents(n int) []models.AnalyticsEvent {
	events := make([]models.AnalyticsEvent, n)
	for i := range events {
		events[i] = models.AnalyticsEvent{
			SessionID:         fmt.Sprintf("session-%d", i%200),
			UserID:            fmt.Sprintf("user-%d", i%50),
			DeviceFingerprint: fmt.Sprintf("fp-%d", i%120),
			Browser:           browsers[i%len(browsers)],
			OS:                systems[i%len(systems)],
			Device:            devices[i%len(devices)],
			ScrollDepth:       float64(i % 101),
			Clicks:            i % 60,
			TimeSpent:         float64(i % 400),
		}
		analytics.Score(&events[i])
	}
	return events
}

// BenchmarkEngagementScore benchmarks the per-event scoring heuristic
func BenchmarkEngagementScore(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		analytics.EngagementScore(float64(i%101), i%60, float64(i%400))
	}
}

// BenchmarkAggregate benchmarks rolling up a large window of events
func BenchmarkAggregate(b *testing.B) {
	events := makeEvents(10000)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		agg := analytics.NewAggregator()
		for j := range events {
			agg.Add(&events[j])
		}
		agg.Summary()
	}

	b.ReportMetric(float64(len(events)*b.N)/b.Elapsed().Seconds(), "events/sec")
}

// BenchmarkTrack benchmarks validation, scoring and storage of a full batch
func BenchmarkTrack(b *testing.B) {
	cfg := config.Default()
	repo := mocks.NewMockAnalyticsRepository()
	services := service.NewServices(&repository.Repositories{
		Article:   mocks.NewMockArticleRepository(),
		Presence:  mocks.NewMockPresenceRepository(),
		Analytics: repo,
	}, cfg, zerolog.Nop())
	defer services.Close()

	batch := makeEvents(cfg.Analytics.MaxBatchSize)
	ctx := context.Background()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := services.Analytics.Track(ctx, batch); err != nil {
			b.Fatal(err)
		}
	}

	b.ReportMetric(float64(len(batch)*b.N)/b.Elapsed().Seconds(), "events/sec")
}

// BenchmarkValidateDraft benchmarks article submission validation
func BenchmarkValidateDraft(b *testing.B) {
	v := validation.NewValidator().WithClock(time.Now)
	draft := &models.ArticleDraft{
		Title:       "Big Brother Naija reunion gets heated",
		Description: "Ex-housemates clashed on the reunion show as fans took sides online.",
		Category:    "entertainment",
		SubmittedBy: "user-1",
		Hashtags:    []string{"#BBNaija", "#Reunion", "#Gist"},
		Image:       "https://cdn.example.com/reunion.jpg",
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if errs := v.ValidateDraft(draft); len(errs) > 0 {
			b.Fatal(errs)
		}
	}
}
