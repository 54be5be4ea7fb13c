package models

import (
	"time"
)

// ArticleStatus represents the moderation state of an article
type ArticleStatus string

const (
	ArticleStatusPending  ArticleStatus = "pending"
	ArticleStatusApproved ArticleStatus = "approved"
	ArticleStatusRejected ArticleStatus = "rejected"
)

// ValidStatuses defines allowed article statuses
var ValidStatuses = map[ArticleStatus]bool{
	ArticleStatusPending:  true,
	ArticleStatusApproved: true,
	ArticleStatusRejected: true,
}

// DefaultCategory is applied to drafts submitted without a category
const DefaultCategory = "gist"

// ValidCategories defines the site sections an article can be filed under
var ValidCategories = map[string]bool{
	"gist":          true,
	"celebrity":     true,
	"entertainment": true,
	"music":         true,
	"movies":        true,
	"fashion":       true,
	"relationships": true,
	"sports":        true,
	"politics":      true,
	"lifestyle":     true,
}

// Article represents a content submission in the system
type Article struct {
	ID          string        `json:"id" db:"id"`
	Title       string        `json:"title" db:"title"`
	Description string        `json:"description" db:"description"`
	Category    string        `json:"category" db:"category"`
	Status      ArticleStatus `json:"status" db:"status"`
	SubmittedBy string        `json:"submitted_by" db:"submitted_by"`
	Hashtags    []string      `json:"hashtags" db:"hashtags"`
	Image       string        `json:"image,omitempty" db:"image"`
	Video       string        `json:"video,omitempty" db:"video"`
	SourceURL   string        `json:"source_url,omitempty" db:"source_url"`
	Views       int64         `json:"views" db:"views"`
	Likes       int64         `json:"likes" db:"likes"`
	Comments    int64         `json:"comments" db:"comments"`
	Shares      int64         `json:"shares" db:"shares"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" db:"updated_at"`
}

// ArticleDraft is the payload of a new submission
type ArticleDraft struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	SubmittedBy string   `json:"submitted_by"`
	Hashtags    []string `json:"hashtags"`
	Image       string   `json:"image,omitempty"`
	Video       string   `json:"video,omitempty"`
	SourceURL   string   `json:"source_url,omitempty"`
}

// ArticleFilter narrows an article listing. Empty fields match everything.
type ArticleFilter struct {
	Status   ArticleStatus `json:"status,omitempty" form:"status"`
	Category string        `json:"category,omitempty" form:"category"`
	Page     int           `json:"page" form:"page"`
	PageSize int           `json:"page_size" form:"page_size"`
}

// Offset returns the row offset for the filter's page
func (f ArticleFilter) Offset() int {
	if f.Page <= 1 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}

// ArticlePage is one page of a listing, newest first
type ArticlePage struct {
	Articles []*Article `json:"articles"`
	Page     int        `json:"page"`
	PageSize int        `json:"page_size"`
	Total    int        `json:"total"`
	HasMore  bool       `json:"has_more"`
}

// Counter names an engagement counter on an article
type Counter string

const (
	CounterViews    Counter = "views"
	CounterLikes    Counter = "likes"
	CounterComments Counter = "comments"
	CounterShares   Counter = "shares"
)

// ValidCounters defines the counters that may be incremented
var ValidCounters = map[Counter]bool{
	CounterViews:    true,
	CounterLikes:    true,
	CounterComments: true,
	CounterShares:   true,
}
