package models

import (
	"time"
)

// AnalyticsEvent is a single client-reported session sample. Events are
// append-only and never mutated after ingestion.
type AnalyticsEvent struct {
	ID                string    `json:"id"`
	SessionID         string    `json:"session_id"`
	UserID            string    `json:"user_id,omitempty"`
	DeviceFingerprint string    `json:"device_fingerprint,omitempty"`
	Browser           string    `json:"browser,omitempty"`
	OS                string    `json:"os,omitempty"`
	Device            string    `json:"device,omitempty"`
	Page              string    `json:"page,omitempty"`
	Clicks            int       `json:"clicks"`
	ScrollDepth       float64   `json:"scroll_depth"` // percent, 0-100
	TimeSpent         float64   `json:"time_spent"`   // seconds
	EngagementScore   int       `json:"engagement_score"`
	Bounced           bool      `json:"bounced"`
	SuspectedBot      bool      `json:"suspected_bot"`
	Timestamp         time.Time `json:"timestamp"`
}

// TrackRequest is the body of an ingestion call
type TrackRequest struct {
	Events []AnalyticsEvent `json:"events"`
}

// TrackResult reports the outcome of an ingestion call
type TrackResult struct {
	Accepted int               `json:"accepted"`
	Rejected int               `json:"rejected"`
	Errors   []ValidationError `json:"errors,omitempty"`
}

// AnalyticsQuery bounds an aggregation to [Since, Until). Zero values are open.
type AnalyticsQuery struct {
	Since time.Time `json:"since,omitempty"`
	Until time.Time `json:"until,omitempty"`
}

// AnalyticsSummary is the rollup of a set of events
type AnalyticsSummary struct {
	TotalEvents       int            `json:"total_events"`
	UniqueSessions    int            `json:"unique_sessions"`
	UniqueUsers       int            `json:"unique_users"`
	UniqueDevices     int            `json:"unique_devices"`
	UniqueBrowsers    int            `json:"unique_browsers"`
	UniqueOS          int            `json:"unique_os"`
	BounceRate        float64        `json:"bounce_rate"` // percent of events that bounced
	SuspectedBots     int            `json:"suspected_bots"`
	AverageEngagement float64        `json:"average_engagement"`
	TotalClicks       int64          `json:"total_clicks"`
	DeviceBreakdown   map[string]int `json:"device_breakdown"`
	BrowserBreakdown  map[string]int `json:"browser_breakdown"`
	OSBreakdown       map[string]int `json:"os_breakdown"`
	Since             *time.Time     `json:"since,omitempty"`
	Until             *time.Time     `json:"until,omitempty"`
	GeneratedAt       time.Time      `json:"generated_at"`
}
