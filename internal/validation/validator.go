package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/naija-amebo-api/internal/models"
)

const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 10000
	MaxHashtags          = 10

	// MaxClockSkew is how far in the future an event timestamp may be
	MaxClockSkew = 5 * time.Minute
)

var hashtagRegex = regexp.MustCompile(`^#?[A-Za-z0-9_]{1,50}$`)

// Validator provides validation methods
type Validator struct {
	now func() time.Time
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{now: time.Now}
}

// WithClock returns a copy of the validator that reads time from now
func (v *Validator) WithClock(now func() time.Time) *Validator {
	return &Validator{now: now}
}

// ValidateDraft validates a new article submission
func (v *Validator) ValidateDraft(draft *models.ArticleDraft) []models.ValidationError {
	var errors []models.ValidationError

	// Validate title
	title := strings.TrimSpace(draft.Title)
	if title == "" {
		errors = append(errors, models.ValidationError{Field: "title", Message: "title is required"})
	} else if utf8.RuneCountInString(title) > MaxTitleLength {
		errors = append(errors, models.ValidationError{
			Field:   "title",
			Message: fmt.Sprintf("title exceeds maximum of %d characters", MaxTitleLength),
		})
	}

	// Validate description
	description := strings.TrimSpace(draft.Description)
	if description == "" {
		errors = append(errors, models.ValidationError{Field: "description", Message: "description is required"})
	} else if utf8.RuneCountInString(description) > MaxDescriptionLength {
		errors = append(errors, models.ValidationError{
			Field:   "description",
			Message: fmt.Sprintf("description exceeds maximum of %d characters", MaxDescriptionLength),
		})
	}

	// Validate category
	if draft.Category != "" && !models.ValidCategories[strings.ToLower(draft.Category)] {
		errors = append(errors, models.ValidationError{Field: "category", Message: "unknown category", Value: draft.Category})
	}

	// Validate submitter
	if strings.TrimSpace(draft.SubmittedBy) == "" {
		errors = append(errors, models.ValidationError{Field: "submitted_by", Message: "submitted_by is required"})
	}

	// Validate hashtags
	if len(draft.Hashtags) > MaxHashtags {
		errors = append(errors, models.ValidationError{
			Field:   "hashtags",
			Message: fmt.Sprintf("at most %d hashtags allowed (has %d)", MaxHashtags, len(draft.Hashtags)),
		})
	}
	for _, tag := range draft.Hashtags {
		if !hashtagRegex.MatchString(tag) {
			errors = append(errors, models.ValidationError{Field: "hashtags", Message: "invalid hashtag", Value: tag})
		}
	}

	// Validate media links
	links := []struct{ field, value string }{
		{"image", draft.Image},
		{"video", draft.Video},
		{"source_url", draft.SourceURL},
	}
	for _, link := range links {
		if link.value != "" && !isHTTPURL(link.value) {
			errors = append(errors, models.ValidationError{Field: link.field, Message: "must be an absolute http(s) URL", Value: link.value})
		}
	}

	return errors
}

// ValidateEvent validates an analytics event at position index of a batch
func (v *Validator) ValidateEvent(event *models.AnalyticsEvent, index int) []models.ValidationError {
	var errors []models.ValidationError
	add := func(field, message string, value interface{}) {
		i := index
		errors = append(errors, models.ValidationError{Index: &i, Field: field, Message: message, Value: value})
	}

	if strings.TrimSpace(event.SessionID) == "" {
		add("session_id", "session_id is required", nil)
	}
	if event.ScrollDepth < 0 || event.ScrollDepth > 100 {
		add("scroll_depth", "scroll_depth must be between 0 and 100", event.ScrollDepth)
	}
	if event.Clicks < 0 {
		add("clicks", "clicks must not be negative", event.Clicks)
	}
	if event.TimeSpent < 0 {
		add("time_spent", "time_spent must not be negative", event.TimeSpent)
	}
	if !event.Timestamp.IsZero() && event.Timestamp.After(v.now().Add(MaxClockSkew)) {
		add("timestamp", "timestamp is in the future", event.Timestamp.Format(time.RFC3339))
	}

	return errors
}

// ParseStatus converts a raw string into an ArticleStatus
func ParseStatus(raw string) (models.ArticleStatus, error) {
	status := models.ArticleStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !models.ValidStatuses[status] {
		return "", models.ValidationErrors{{
			Field:   "status",
			Message: "invalid status, must be one of: pending, approved, rejected",
			Value:   raw,
		}}
	}
	return status, nil
}

// ParseCounter converts a raw string into a Counter
func ParseCounter(raw string) (models.Counter, error) {
	counter := models.Counter(strings.ToLower(strings.TrimSpace(raw)))
	if !models.ValidCounters[counter] {
		return "", models.ValidationErrors{{
			Field:   "counter",
			Message: "invalid counter, must be one of: views, likes, comments, shares",
			Value:   raw,
		}}
	}
	return counter, nil
}

// ParsePresenceStatus converts a raw string into a PresenceStatus
func ParsePresenceStatus(raw string) (models.PresenceStatus, error) {
	status := models.PresenceStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !models.ValidPresenceStatuses[status] {
		return "", models.ValidationErrors{{
			Field:   "status",
			Message: "invalid status, must be one of: online, offline",
			Value:   raw,
		}}
	}
	return status, nil
}

func isHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
