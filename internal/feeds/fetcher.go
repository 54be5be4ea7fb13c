// Package feeds pulls gossip items from external RSS/Atom feeds and turns
// them into article drafts awaiting moderation.
package feeds

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
)

// UserAgent is sent with every feed request
const UserAgent = "NaijaAmeboBot/1.0"

// Fetcher retrieves the drafts published by one feed
type Fetcher interface {
	Fetch(ctx context.Context, feedURL string) ([]Draft, error)
}

// HTTPFetcher fetches feeds over HTTP and parses them with gofeed
type HTTPFetcher struct {
	parser *gofeed.Parser
}

// NewFetcher creates a fetcher whose requests give up after timeout
func NewFetcher(timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	parser := gofeed.NewParser()
	parser.UserAgent = UserAgent
	parser.Client = &http.Client{Timeout: timeout}
	return &HTTPFetcher{parser: parser}
}

// Fetch downloads and converts every item of the feed at feedURL
func (f *HTTPFetcher) Fetch(ctx context.Context, feedURL string) ([]Draft, error) {
	parsed, err := f.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", feedURL, err)
	}

	drafts := make([]Draft, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item == nil {
			continue
		}
		drafts = append(drafts, ItemToDraft(feedURL, item))
	}
	return drafts, nil
}
