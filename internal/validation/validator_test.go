package validation

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/naija-amebo-api/internal/models"
)

func TestValidateDraft(t *testing.T) {
	validator := NewValidator()

	tests := []struct {
		name       string
		draft      *models.ArticleDraft
		wantErrors int
		wantFields []string
	}{
		{
			name: "valid draft with all fields",
			draft: &models.ArticleDraft{
				Title:       "Davido drops surprise single",
				Description: "The singer shared the news with fans on Sunday night.",
				Category:    "music",
				SubmittedBy: "user-123",
				Hashtags:    []string{"#Davido", "afrobeats"},
				Image:       "https://res.cloudinary.com/amebo/image/upload/davido.jpg",
				Video:       "https://www.youtube.com/watch?v=abc123",
			},
			wantErrors: 0,
		},
		{
			name: "valid draft without category",
			draft: &models.ArticleDraft{
				Title:       "Lagos wedding of the year",
				Description: "Everyone who was anyone showed up.",
				SubmittedBy: "user-123",
			},
			wantErrors: 0,
		},
		{
			name: "empty title",
			draft: &models.ArticleDraft{
				Description: "Body",
				SubmittedBy: "user-123",
			},
			wantErrors: 1,
			wantFields: []string{"title"},
		},
		{
			name: "whitespace-only description",
			draft: &models.ArticleDraft{
				Title:       "Title",
				Description: "   \n\t ",
				SubmittedBy: "user-123",
			},
			wantErrors: 1,
			wantFields: []string{"description"},
		},
		{
			name: "title too long",
			draft: &models.ArticleDraft{
				Title:       strings.Repeat("a", MaxTitleLength+1),
				Description: "Body",
				SubmittedBy: "user-123",
			},
			wantErrors: 1,
			wantFields: []string{"title"},
		},
		{
			name: "unknown category",
			draft: &models.ArticleDraft{
				Title:       "Title",
				Description: "Body",
				Category:    "recipes",
				SubmittedBy: "user-123",
			},
			wantErrors: 1,
			wantFields: []string{"category"},
		},
		{
			name: "invalid hashtag",
			draft: &models.ArticleDraft{
				Title:       "Title",
				Description: "Body",
				SubmittedBy: "user-123",
				Hashtags:    []string{"#ok", "not ok"},
			},
			wantErrors: 1,
			wantFields: []string{"hashtags"},
		},
		{
			name: "relative image and ftp video",
			draft: &models.ArticleDraft{
				Title:       "Title",
				Description: "Body",
				SubmittedBy: "user-123",
				Image:       "/uploads/pic.jpg",
				Video:       "ftp://example.com/clip.mp4",
			},
			wantErrors: 2,
			wantFields: []string{"image", "video"},
		},
		{
			name:       "everything missing",
			draft:      &models.ArticleDraft{},
			wantErrors: 3, // title, description, submitted_by
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errors := validator.ValidateDraft(tt.draft)
			if len(errors) != tt.wantErrors {
				t.Errorf("ValidateDraft() got %d errors, want %d. Errors: %v", len(errors), tt.wantErrors, errors)
			}

			for _, wantField := range tt.wantFields {
				found := false
				for _, err := range errors {
					if err.Field == wantField {
						found = true
						break
					}
				}
				if !found {
					t.Errorf("Expected error for field '%s' but not found", wantField)
				}
			}
		})
	}
}

func TestValidateDraft_TooManyHashtags(t *testing.T) {
	validator := NewValidator()

	tags := make([]string, MaxHashtags+1)
	for i := range tags {
		tags[i] = "tag"
	}
	errors := validator.ValidateDraft(&models.ArticleDraft{
		Title:       "Title",
		Description: "Body",
		SubmittedBy: "user-123",
		Hashtags:    tags,
	})

	if len(errors) != 1 || errors[0].Field != "hashtags" {
		t.Errorf("Expected a single hashtags error, got %v", errors)
	}
}

func TestValidateEvent(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	validator := NewValidator().WithClock(func() time.Time { return now })

	tests := []struct {
		name       string
		event      *models.AnalyticsEvent
		wantErrors int
		wantFields []string
	}{
		{
			name: "valid event",
			event: &models.AnalyticsEvent{
				SessionID:   "sess-1",
				Clicks:      3,
				ScrollDepth: 60,
				TimeSpent:   45,
				Timestamp:   now.Add(-time.Minute),
			},
			wantErrors: 0,
		},
		{
			name:       "valid event without timestamp",
			event:      &models.AnalyticsEvent{SessionID: "sess-1"},
			wantErrors: 0,
		},
		{
			name:       "missing session",
			event:      &models.AnalyticsEvent{ScrollDepth: 10},
			wantErrors: 1,
			wantFields: []string{"session_id"},
		},
		{
			name:       "scroll depth out of range",
			event:      &models.AnalyticsEvent{SessionID: "s", ScrollDepth: 101},
			wantErrors: 1,
			wantFields: []string{"scroll_depth"},
		},
		{
			name:       "negative counters",
			event:      &models.AnalyticsEvent{SessionID: "s", Clicks: -1, TimeSpent: -5},
			wantErrors: 2,
			wantFields: []string{"clicks", "time_spent"},
		},
		{
			name:       "timestamp in the future",
			event:      &models.AnalyticsEvent{SessionID: "s", Timestamp: now.Add(time.Hour)},
			wantErrors: 1,
			wantFields: []string{"timestamp"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errors := validator.ValidateEvent(tt.event, 4)
			if len(errors) != tt.wantErrors {
				t.Errorf("ValidateEvent() got %d errors, want %d. Errors: %v", len(errors), tt.wantErrors, errors)
			}

			for _, err := range errors {
				if err.Index == nil || *err.Index != 4 {
					t.Errorf("Expected index 4 on error %v", err)
				}
			}

			for _, wantField := range tt.wantFields {
				found := false
				for _, err := range errors {
					if err.Field == wantField {
						found = true
						break
					}
				}
				if !found {
					t.Errorf("Expected error for field '%s' but not found", wantField)
				}
			}
		})
	}
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		raw     string
		want    models.ArticleStatus
		wantErr bool
	}{
		{"approved", models.ArticleStatusApproved, false},
		{" Rejected ", models.ArticleStatusRejected, false},
		{"pending", models.ArticleStatusPending, false},
		{"published", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseStatus(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseStatus(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseStatus(%q) = %q, want %q", tt.raw, got, tt.want)
			}
			if err != nil {
				var verrs models.ValidationErrors
				if !errors.As(err, &verrs) {
					t.Errorf("Expected ValidationErrors, got %T", err)
				}
			}
		})
	}
}

func TestParseCounterAndPresence(t *testing.T) {
	if c, err := ParseCounter("LIKES"); err != nil || c != models.CounterLikes {
		t.Errorf("ParseCounter(LIKES) = %q, %v", c, err)
	}
	if _, err := ParseCounter("downloads"); err == nil {
		t.Error("Expected error for unknown counter")
	}
	if s, err := ParsePresenceStatus("online"); err != nil || s != models.PresenceOnline {
		t.Errorf("ParsePresenceStatus(online) = %q, %v", s, err)
	}
	if _, err := ParsePresenceStatus("away"); err == nil {
		t.Error("Expected error for unsupported presence status")
	}
}

func TestValidateDraft_LinkErrorOrder(t *testing.T) {
	validator := NewValidator()
	draft := &models.ArticleDraft{
		Title:       "Title",
		Description: "Body",
		SubmittedBy: "user-123",
		Image:       "pic.jpg",
		Video:       "ftp://example.com/clip.mp4",
		SourceURL:   "mailto:desk@example.com",
	}

	want := []string{"image", "video", "source_url"}
	for run := 0; run < 20; run++ {
		errors := validator.ValidateDraft(draft)
		if len(errors) != len(want) {
			t.Fatalf("Expected %d errors, got %v", len(want), errors)
		}
		for i, field := range want {
			if errors[i].Field != field {
				t.Fatalf("Run %d: error %d is %q, want %q", run, i, errors[i].Field, field)
			}
		}
	}
}
