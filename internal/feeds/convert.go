package feeds

import (
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"github.com/naija-amebo-api/internal/models"
	"github.com/naija-amebo-api/internal/validation"
)

// SubmitterPrefix marks articles filed by ingestion rather than a person
const SubmitterPrefix = "feed:"

const maxTagLength = 50

// Draft is a feed item ready to be submitted. A draft without a title or
// link is kept so callers can count it as invalid.
type Draft struct {
	models.ArticleDraft
	PublishedAt time.Time
}

// ItemToDraft converts one feed item. HTML is stripped from the body and the
// first inline image is used when the item carries none of its own.
func ItemToDraft(feedURL string, item *gofeed.Item) Draft {
	body := item.Content
	if strings.TrimSpace(body) == "" {
		body = item.Description
	}
	text, inlineImage := stripHTML(body)

	title := strings.TrimSpace(item.Title)
	if text == "" {
		text = title
	}

	draft := Draft{
		ArticleDraft: models.ArticleDraft{
			Title:       truncate(title, validation.MaxTitleLength),
			Description: truncate(text, validation.MaxDescriptionLength),
			Category:    pickCategory(item.Categories),
			SubmittedBy: SubmitterPrefix + host(feedURL),
			Hashtags:    hashtags(item.Categories),
			Image:       pickImage(item, inlineImage),
			SourceURL:   strings.TrimSpace(item.Link),
		},
	}
	if item.PublishedParsed != nil {
		draft.PublishedAt = item.PublishedParsed.UTC()
	} else if item.UpdatedParsed != nil {
		draft.PublishedAt = item.UpdatedParsed.UTC()
	}
	return draft
}

func stripHTML(fragment string) (string, string) {
	if strings.TrimSpace(fragment) == "" {
		return "", ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment), ""
	}
	doc.Find("script, style").Remove()

	image, _ := doc.Find("img[src]").First().Attr("src")
	text := strings.Join(strings.Fields(doc.Text()), " ")
	return text, strings.TrimSpace(image)
}

func pickImage(item *gofeed.Item, inline string) string {
	candidates := []string{}
	if item.Image != nil {
		candidates = append(candidates, item.Image.URL)
	}
	for _, enc := range item.Enclosures {
		if enc != nil && strings.HasPrefix(enc.Type, "image/") {
			candidates = append(candidates, enc.URL)
		}
	}
	candidates = append(candidates, inline)

	for _, c := range candidates {
		if isAbsoluteHTTP(c) {
			return c
		}
	}
	return ""
}

func pickCategory(categories []string) string {
	for _, c := range categories {
		c = strings.ToLower(strings.TrimSpace(c))
		if models.ValidCategories[c] {
			return c
		}
	}
	return models.DefaultCategory
}

// hashtags turns free-form feed categories into tags accepted by validation
func hashtags(categories []string) []string {
	tags := make([]string, 0, len(categories))
	seen := make(map[string]bool)
	for _, c := range categories {
		var b strings.Builder
		for _, r := range c {
			switch {
			case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
				b.WriteRune(r)
			}
		}
		tag := b.String()
		if len(tag) > maxTagLength {
			tag = tag[:maxTagLength]
		}
		key := strings.ToLower(tag)
		if tag == "" || seen[key] {
			continue
		}
		seen[key] = true
		tags = append(tags, "#"+tag)
		if len(tags) == validation.MaxHashtags {
			break
		}
	}
	return tags
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:max]))
}

func host(feedURL string) string {
	u, err := url.Parse(feedURL)
	if err != nil || u.Host == "" {
		return feedURL
	}
	return u.Host
}

func isAbsoluteHTTP(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
