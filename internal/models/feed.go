package models

// FeedError records a feed that could not be ingested
type FeedError struct {
	URL   string `json:"url"`
	Error string `json:"error"`
}

// FeedSyncResult reports the outcome of one ingestion pass over all feeds
type FeedSyncResult struct {
	Feeds      int         `json:"feeds"`
	Fetched    int         `json:"fetched"`
	Created    int         `json:"created"`
	Skipped    int         `json:"skipped"`
	Invalid    int         `json:"invalid"`
	Errors     []FeedError `json:"errors,omitempty"`
	DurationMs int64       `json:"duration_ms"`
}
