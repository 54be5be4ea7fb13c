// Package analytics holds the heuristics applied to client-reported session
// events. All thresholds are fixed constants.
package analytics

import (
	"math"

	"github.com/naija-amebo-api/internal/models"
)

const (
	// MaxEngagementScore caps the weighted score
	MaxEngagementScore = 100

	// BounceScrollThreshold is the scroll depth (percent) below which an event bounced
	BounceScrollThreshold = 25.0

	// BotClickThreshold flags events with more clicks than a person plausibly makes
	BotClickThreshold = 50
)

type bucket struct {
	min    float64
	points int
}

// Buckets are ordered from highest to lowest threshold.
var (
	scrollBuckets = []bucket{{90, 40}, {75, 30}, {50, 20}, {25, 10}}
	clickBuckets  = []bucket{{10, 30}, {5, 20}, {1, 10}}
	timeBuckets   = []bucket{{300, 30}, {120, 20}, {30, 10}}
)

func points(value float64, buckets []bucket) int {
	for _, b := range buckets {
		if value >= b.min {
			return b.points
		}
	}
	return 0
}

// EngagementScore awards fixed points per scroll-depth, click and
// time-spent bucket. The result is in [0, 100].
func EngagementScore(scrollDepth float64, clicks int, timeSpent float64) int {
	score := points(scrollDepth, scrollBuckets) +
		points(float64(clicks), clickBuckets) +
		points(timeSpent, timeBuckets)
	if score > MaxEngagementScore {
		return MaxEngagementScore
	}
	return score
}

// IsBounce reports whether the visitor left without meaningful scrolling
func IsBounce(scrollDepth float64) bool {
	return scrollDepth < BounceScrollThreshold
}

// IsSuspectedBot reports whether a single event has an implausible click count
func IsSuspectedBot(clicks int) bool {
	return clicks > BotClickThreshold
}

// Score fills the derived fields of an event from its raw measurements
func Score(event *models.AnalyticsEvent) {
	event.EngagementScore = EngagementScore(event.ScrollDepth, event.Clicks, event.TimeSpent)
	event.Bounced = IsBounce(event.ScrollDepth)
	event.SuspectedBot = IsSuspectedBot(event.Clicks)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
