package feeds

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Lagos Gist Daily</title>
    <link>https://gist.example.com</link>
    <item>
      <title>Wizkid spotted in Lekki</title>
      <link>https://gist.example.com/wizkid-lekki</link>
      <description><![CDATA[<p>The <b>star</b> was seen <img src="https://cdn.example.com/wiz.jpg"/> at a beach party.</p><script>track()</script>]]></description>
      <category>Music</category>
      <category>Afrobeats!</category>
      <pubDate>Mon, 06 May 2024 10:00:00 GMT</pubDate>
    </item>
    <item>
      <title>No link here</title>
      <description>Orphan item</description>
    </item>
  </channel>
</rss>`

func TestHTTPFetcher_Fetch(t *testing.T) {
	agents := make(chan string, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case agents <- r.Header.Get("User-Agent"):
		default:
		}
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(sampleRSS))
	}))
	defer server.Close()

	drafts, err := NewFetcher(5*time.Second).Fetch(context.Background(), server.URL+"/rss")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if gotAgent := <-agents; gotAgent != UserAgent {
		t.Errorf("Expected user agent %q, got %q", UserAgent, gotAgent)
	}
	if len(drafts) != 2 {
		t.Fatalf("Expected 2 drafts, got %d", len(drafts))
	}

	d := drafts[0]
	if d.Title != "Wizkid spotted in Lekki" {
		t.Errorf("Unexpected title %q", d.Title)
	}
	if d.Description != "The star was seen at a beach party." {
		t.Errorf("HTML not stripped: %q", d.Description)
	}
	if d.Image != "https://cdn.example.com/wiz.jpg" {
		t.Errorf("Expected inline image, got %q", d.Image)
	}
	if d.Category != "music" {
		t.Errorf("Expected category music, got %q", d.Category)
	}
	if len(d.Hashtags) != 2 || d.Hashtags[0] != "#Music" || d.Hashtags[1] != "#Afrobeats" {
		t.Errorf("Unexpected hashtags %v", d.Hashtags)
	}
	if !strings.HasPrefix(d.SubmittedBy, SubmitterPrefix+"127.0.0.1") {
		t.Errorf("Unexpected submitter %q", d.SubmittedBy)
	}
	if d.SourceURL != "https://gist.example.com/wizkid-lekki" {
		t.Errorf("Unexpected source url %q", d.SourceURL)
	}
	if d.PublishedAt.IsZero() {
		t.Error("Expected published time")
	}

	if drafts[1].SourceURL != "" {
		t.Errorf("Expected empty link, got %q", drafts[1].SourceURL)
	}
}

func TestHTTPFetcher_BadFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer server.Close()

	if _, err := NewFetcher(time.Second).Fetch(context.Background(), server.URL); err == nil {
		t.Error("Expected error for failing feed")
	}
}

func TestItemToDraft(t *testing.T) {
	t.Run("falls back to title when body is empty", func(t *testing.T) {
		d := ItemToDraft("https://news.example.com/feed", &gofeed.Item{Title: "  Breaking gist  ", Link: "https://news.example.com/a"})
		if d.Description != "Breaking gist" {
			t.Errorf("Expected title fallback, got %q", d.Description)
		}
		if d.Category != "gist" {
			t.Errorf("Expected default category, got %q", d.Category)
		}
		if d.SubmittedBy != "feed:news.example.com" {
			t.Errorf("Unexpected submitter %q", d.SubmittedBy)
		}
	})

	t.Run("prefers item image over inline", func(t *testing.T) {
		d := ItemToDraft("https://x.example.com", &gofeed.Item{
			Title:       "t",
			Description: `<img src="https://cdn.example.com/inline.png">`,
			Image:       &gofeed.Image{URL: "https://cdn.example.com/cover.png"},
		})
		if d.Image != "https://cdn.example.com/cover.png" {
			t.Errorf("Expected cover image, got %q", d.Image)
		}
	})

	t.Run("uses image enclosure", func(t *testing.T) {
		d := ItemToDraft("https://x.example.com", &gofeed.Item{
			Title:      "t",
			Enclosures: []*gofeed.Enclosure{{URL: "https://cdn.example.com/a.mp3", Type: "audio/mpeg"}, {URL: "https://cdn.example.com/b.jpg", Type: "image/jpeg"}},
		})
		if d.Image != "https://cdn.example.com/b.jpg" {
			t.Errorf("Expected image enclosure, got %q", d.Image)
		}
	})

	t.Run("ignores relative images", func(t *testing.T) {
		d := ItemToDraft("https://x.example.com", &gofeed.Item{Title: "t", Description: `<img src="/rel.png">`})
		if d.Image != "" {
			t.Errorf("Expected no image, got %q", d.Image)
		}
	})

	t.Run("truncates long title", func(t *testing.T) {
		d := ItemToDraft("https://x.example.com", &gofeed.Item{Title: strings.Repeat("é", 250)})
		if n := len([]rune(d.Title)); n != 200 {
			t.Errorf("Expected 200 runes, got %d", n)
		}
	})
}

func TestHashtags(t *testing.T) {
	cats := []string{"Big Brother", "big brother", "??", strings.Repeat("a", 60)}
	for i := 0; i < 12; i++ {
		cats = append(cats, "tag"+string(rune('a'+i)))
	}

	tags := hashtags(cats)
	if len(tags) != 10 {
		t.Fatalf("Expected 10 tags, got %d: %v", len(tags), tags)
	}
	if tags[0] != "#BigBrother" {
		t.Errorf("Unexpected first tag %q", tags[0])
	}
	if len(tags[1]) != maxTagLength+1 {
		t.Errorf("Expected truncated tag, got %q", tags[1])
	}
}
