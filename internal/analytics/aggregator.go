package analytics

import (
	"time"

	"github.com/naija-amebo-api/internal/models"
)

const unknown = "unknown"

// Aggregator accumulates events one at a time so rollups can be computed
// while streaming rows out of storage. It is not safe for concurrent use.
type Aggregator struct {
	total        int
	bounced      int
	bots         int
	clicks       int64
	engagement   int64
	sessions     map[string]struct{}
	users        map[string]struct{}
	fingerprints map[string]struct{}
	devices      map[string]int
	browsers     map[string]int
	systems      map[string]int
}

// NewAggregator creates an empty aggregator
func NewAggregator() *Aggregator {
	return &Aggregator{
		sessions:     make(map[string]struct{}),
		users:        make(map[string]struct{}),
		fingerprints: make(map[string]struct{}),
		devices:      make(map[string]int),
		browsers:     make(map[string]int),
		systems:      make(map[string]int),
	}
}

// Add folds one event into the rollup
func (a *Aggregator) Add(event *models.AnalyticsEvent) {
	a.total++
	a.clicks += int64(event.Clicks)
	a.engagement += int64(event.EngagementScore)
	if event.Bounced {
		a.bounced++
	}
	if event.SuspectedBot {
		a.bots++
	}

	a.sessions[event.SessionID] = struct{}{}
	if event.UserID != "" {
		a.users[event.UserID] = struct{}{}
	}
	if event.DeviceFingerprint != "" {
		a.fingerprints[event.DeviceFingerprint] = struct{}{}
	}

	a.devices[orUnknown(event.Device)]++
	a.browsers[orUnknown(event.Browser)]++
	a.systems[orUnknown(event.OS)]++
}

// Summary returns the rollup of everything added so far
func (a *Aggregator) Summary() *models.AnalyticsSummary {
	summary := &models.AnalyticsSummary{
		TotalEvents:      a.total,
		UniqueSessions:   len(a.sessions),
		UniqueUsers:      len(a.users),
		UniqueDevices:    len(a.fingerprints),
		UniqueBrowsers:   distinctKnown(a.browsers),
		UniqueOS:         distinctKnown(a.systems),
		SuspectedBots:    a.bots,
		TotalClicks:      a.clicks,
		DeviceBreakdown:  copyCounts(a.devices),
		BrowserBreakdown: copyCounts(a.browsers),
		OSBreakdown:      copyCounts(a.systems),
		GeneratedAt:      time.Now().UTC(),
	}
	if a.total > 0 {
		summary.BounceRate = round2(float64(a.bounced) / float64(a.total) * 100)
		summary.AverageEngagement = round2(float64(a.engagement) / float64(a.total))
	}
	return summary
}

// Aggregate is a convenience for rolling up an in-memory slice
func Aggregate(events []models.AnalyticsEvent) *models.AnalyticsSummary {
	agg := NewAggregator()
	for i := range events {
		agg.Add(&events[i])
	}
	return agg.Summary()
}

func orUnknown(s string) string {
	if s == "" {
		return unknown
	}
	return s
}

func distinctKnown(counts map[string]int) int {
	n := len(counts)
	if _, ok := counts[unknown]; ok {
		n--
	}
	return n
}

func copyCounts(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
