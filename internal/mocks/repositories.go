package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/naija-amebo-api/internal/models"
	"github.com/naija-amebo-api/internal/repository"
)

// Verify interface compliance
var (
	_ repository.ArticleRepository   = (*MockArticleRepository)(nil)
	_ repository.PresenceRepository  = (*MockPresenceRepository)(nil)
	_ repository.AnalyticsRepository = (*MockAnalyticsRepository)(nil)
)

// MockArticleRepository is an in-memory implementation of ArticleRepository
type MockArticleRepository struct {
	mu          sync.Mutex
	Articles    map[string]*models.Article
	InsertError error
	CreateCalls int
	UpdateCalls int
	// CreatedIDs lists stored ids in insertion order
	CreatedIDs []string
}

func NewMockArticleRepository() *MockArticleRepository {
	return &MockArticleRepository{
		Articles: make(map[string]*models.Article),
	}
}

func (m *MockArticleRepository) Create(ctx context.Context, article *models.Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls++
	if m.InsertError != nil {
		return m.InsertError
	}
	stored := *article
	m.Articles[article.ID] = &stored
	m.CreatedIDs = append(m.CreatedIDs, article.ID)
	return nil
}

func (m *MockArticleRepository) GetByID(ctx context.Context, id string) (*models.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.Articles[id]
	if !ok {
		return nil, nil
	}
	out := *a
	return &out, nil
}

func (m *MockArticleRepository) UpdateStatus(ctx context.Context, id string, status models.ArticleStatus, updatedAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.Articles[id]
	if !ok {
		return false, nil
	}
	m.UpdateCalls++
	a.Status = status
	a.UpdatedAt = updatedAt
	return true, nil
}

func (m *MockArticleRepository) List(ctx context.Context, filter models.ArticleFilter) ([]*models.Article, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	matched := make([]*models.Article, 0)
	for _, a := range m.Articles {
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		if filter.Category != "" && a.Category != filter.Category {
			continue
		}
		out := *a
		matched = append(matched, &out)
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	if filter.PageSize <= 0 {
		return matched, total, nil
	}
	start := filter.Offset()
	if start >= total {
		return []*models.Article{}, total, nil
	}
	end := start + filter.PageSize
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (m *MockArticleRepository) IncrementCounter(ctx context.Context, id string, counter models.Counter) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.Articles[id]
	if !ok || a.Status != models.ArticleStatusApproved {
		return false, nil
	}
	switch counter {
	case models.CounterViews:
		a.Views++
	case models.CounterLikes:
		a.Likes++
	case models.CounterComments:
		a.Comments++
	case models.CounterShares:
		a.Shares++
	}
	return true, nil
}

func (m *MockArticleRepository) SourceURLExists(ctx context.Context, sourceURL string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.Articles {
		if a.SourceURL != "" && a.SourceURL == sourceURL {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockArticleRepository) CountByStatus(ctx context.Context) (map[models.ArticleStatus]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[models.ArticleStatus]int)
	for _, a := range m.Articles {
		counts[a.Status]++
	}
	return counts, nil
}

// Len returns the number of stored articles
func (m *MockArticleRepository) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Articles)
}

// MockPresenceRepository is an in-memory implementation of PresenceRepository
type MockPresenceRepository struct {
	mu       sync.Mutex
	Records  map[string]*models.PresenceRecord
	PutError error
	PutCalls int
	// ScanError fails ListStale and CountOnline
	ScanError error
}

func NewMockPresenceRepository() *MockPresenceRepository {
	return &MockPresenceRepository{
		Records: make(map[string]*models.PresenceRecord),
	}
}

func (m *MockPresenceRepository) Get(ctx context.Context, userID string) (*models.PresenceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.Records[userID]
	if !ok {
		return nil, nil
	}
	out := *r
	return &out, nil
}

func (m *MockPresenceRepository) GetMany(ctx context.Context, userIDs []string) (map[string]*models.PresenceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make(map[string]*models.PresenceRecord)
	for _, id := range userIDs {
		if r, ok := m.Records[id]; ok {
			out := *r
			result[id] = &out
		}
	}
	return result, nil
}

func (m *MockPresenceRepository) Put(ctx context.Context, record *models.PresenceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PutCalls++
	if m.PutError != nil {
		return m.PutError
	}
	stored := *record
	m.Records[record.UserID] = &stored
	return nil
}

func (m *MockPresenceRepository) ListStale(ctx context.Context, before time.Time) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ScanError != nil {
		return nil, m.ScanError
	}
	var ids []string
	for id, r := range m.Records {
		if r.Status == models.PresenceOnline && r.LastSeen.Before(before) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *MockPresenceRepository) CountOnline(ctx context.Context, since time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ScanError != nil {
		return 0, m.ScanError
	}
	n := 0
	for _, r := range m.Records {
		if r.Status == models.PresenceOnline && !r.LastSeen.Before(since) {
			n++
		}
	}
	return n, nil
}

// MockAnalyticsRepository is an in-memory implementation of AnalyticsRepository
type MockAnalyticsRepository struct {
	mu               sync.Mutex
	Events           []*models.AnalyticsEvent
	InsertError      error
	CountError       error
	BatchInsertCalls int
}

func NewMockAnalyticsRepository() *MockAnalyticsRepository {
	return &MockAnalyticsRepository{}
}

func (m *MockAnalyticsRepository) BatchInsert(ctx context.Context, events []*models.AnalyticsEvent) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BatchInsertCalls++
	if m.InsertError != nil {
		return 0, m.InsertError
	}
	for _, e := range events {
		stored := *e
		m.Events = append(m.Events, &stored)
	}
	return len(events), nil
}

func (m *MockAnalyticsRepository) Stream(ctx context.Context, query models.AnalyticsQuery, callback func(*models.AnalyticsEvent) error) error {
	m.mu.Lock()
	events := make([]*models.AnalyticsEvent, len(m.Events))
	copy(events, m.Events)
	m.mu.Unlock()

	sort.SliceStable(events, func(i, j int) bool { return events[i].Timestamp.Before(events[j].Timestamp) })
	for _, e := range events {
		if !query.Since.IsZero() && e.Timestamp.Before(query.Since) {
			continue
		}
		if !query.Until.IsZero() && !e.Timestamp.Before(query.Until) {
			continue
		}
		out := *e
		if err := callback(&out); err != nil {
			return err
		}
	}
	return nil
}

func (m *MockAnalyticsRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CountError != nil {
		return 0, m.CountError
	}
	return len(m.Events), nil
}
