package repository

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/naija-amebo-api/internal/models"
)

func TestBuildListQuery(t *testing.T) {
	tests := []struct {
		name      string
		filter    models.ArticleFilter
		wantParts []string
		notParts  []string
		wantArgs  int
	}{
		{
			name:      "approved in category, second page",
			filter:    models.ArticleFilter{Status: models.ArticleStatusApproved, Category: "music", Page: 2, PageSize: 20},
			wantParts: []string{"FROM articles", "WHERE status = $1 AND category = $2", "ORDER BY created_at DESC, id DESC", "LIMIT 20", "OFFSET 20"},
			wantArgs:  2,
		},
		{
			name:      "no filters",
			filter:    models.ArticleFilter{Page: 1, PageSize: 10},
			wantParts: []string{"ORDER BY created_at DESC, id DESC", "LIMIT 10", "OFFSET 0"},
			notParts:  []string{"WHERE"},
			wantArgs:  0,
		},
		{
			name:      "status only",
			filter:    models.ArticleFilter{Status: models.ArticleStatusPending, PageSize: 5},
			wantParts: []string{"WHERE status = $1", "LIMIT 5"},
			notParts:  []string{"category"},
			wantArgs:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args, err := buildListQuery(tt.filter)
			if err != nil {
				t.Fatalf("buildListQuery failed: %v", err)
			}
			for _, part := range tt.wantParts {
				if !strings.Contains(query, part) {
					t.Errorf("Expected %q in query: %s", part, query)
				}
			}
			for _, part := range tt.notParts {
				if strings.Contains(query, part) {
					t.Errorf("Did not expect %q in query: %s", part, query)
				}
			}
			if len(args) != tt.wantArgs {
				t.Errorf("Expected %d args, got %d (%v)", tt.wantArgs, len(args), args)
			}
		})
	}
}

func TestBuildListQuery_ArgsAreStrings(t *testing.T) {
	_, args, err := buildListQuery(models.ArticleFilter{Status: models.ArticleStatusApproved, PageSize: 1})
	if err != nil {
		t.Fatal(err)
	}
	if s, ok := args[0].(string); !ok || s != "approved" {
		t.Errorf("Expected plain string arg 'approved', got %#v", args[0])
	}
}

func TestBuildCountQuery(t *testing.T) {
	query, args, err := buildCountQuery(models.ArticleFilter{Category: "fashion", Page: 3, PageSize: 50})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(query, "SELECT COUNT(*) FROM articles WHERE category = $1") {
		t.Errorf("Unexpected count query: %s", query)
	}
	if strings.Contains(query, "LIMIT") {
		t.Errorf("Count query must not be paginated: %s", query)
	}
	if len(args) != 1 {
		t.Errorf("Expected 1 arg, got %d", len(args))
	}
}

func TestBuildAnalyticsQuery(t *testing.T) {
	since := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	until := since.Add(24 * time.Hour)

	query, args, err := buildAnalyticsQuery(models.AnalyticsQuery{Since: since, Until: until})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(query, "occurred_at >= $1 AND occurred_at < $2") {
		t.Errorf("Unexpected window clause: %s", query)
	}
	if len(args) != 2 {
		t.Errorf("Expected 2 args, got %d", len(args))
	}

	query, args, _ = buildAnalyticsQuery(models.AnalyticsQuery{})
	if strings.Contains(query, "WHERE") || len(args) != 0 {
		t.Errorf("Open window should not filter: %s %v", query, args)
	}
}

func newTestPresenceRepo(t *testing.T) (PresenceRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewPresenceRepo(client), mr
}

func TestPresenceRepo_PutGet(t *testing.T) {
	repo, _ := newTestPresenceRepo(t)
	ctx := context.Background()

	missing, err := repo.Get(ctx, "nobody")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if missing != nil {
		t.Fatalf("Expected nil record for unknown user, got %+v", missing)
	}

	seen := time.Date(2024, 5, 1, 10, 0, 0, 123e6, time.UTC)
	record := &models.PresenceRecord{
		UserID:           "u1",
		Status:           models.PresenceOnline,
		LastSeen:         seen,
		LastStatusChange: seen.Add(-time.Minute),
	}
	if err := repo.Put(ctx, record); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := repo.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got == nil {
		t.Fatal("Expected record")
	}
	if got.Status != models.PresenceOnline {
		t.Errorf("Expected online, got %s", got.Status)
	}
	if !got.LastSeen.Equal(seen) {
		t.Errorf("Expected last_seen %v, got %v", seen, got.LastSeen)
	}
	if !got.LastStatusChange.Equal(seen.Add(-time.Minute)) {
		t.Errorf("Unexpected last_status_change %v", got.LastStatusChange)
	}
}

func TestPresenceRepo_OnlineIndex(t *testing.T) {
	repo, _ := newTestPresenceRepo(t)
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	put := func(id string, status models.PresenceStatus, seen time.Time) {
		t.Helper()
		if err := repo.Put(ctx, &models.PresenceRecord{UserID: id, Status: status, LastSeen: seen, LastStatusChange: seen}); err != nil {
			t.Fatalf("Put %s failed: %v", id, err)
		}
	}

	put("fresh", models.PresenceOnline, now)
	put("stale", models.PresenceOnline, now.Add(-5*time.Minute))
	put("gone", models.PresenceOnline, now.Add(-10*time.Minute))
	put("gone", models.PresenceOffline, now.Add(-time.Minute))

	stale, err := repo.ListStale(ctx, now.Add(-90*time.Second))
	if err != nil {
		t.Fatalf("ListStale failed: %v", err)
	}
	if len(stale) != 1 || stale[0] != "stale" {
		t.Errorf("Expected only 'stale', got %v", stale)
	}

	count, err := repo.CountOnline(ctx, now.Add(-90*time.Second))
	if err != nil {
		t.Fatalf("CountOnline failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 fresh online user, got %d", count)
	}
}

func TestPresenceRepo_GetMany(t *testing.T) {
	repo, _ := newTestPresenceRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	for _, id := range []string{"a", "b"} {
		repo.Put(ctx, &models.PresenceRecord{UserID: id, Status: models.PresenceOnline, LastSeen: now, LastStatusChange: now})
	}

	records, err := repo.GetMany(ctx, []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("GetMany failed: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("Expected 2 records, got %d", len(records))
	}
	if _, ok := records["c"]; ok {
		t.Error("Unknown user should be absent")
	}

	empty, err := repo.GetMany(ctx, nil)
	if err != nil || len(empty) != 0 {
		t.Errorf("Expected empty result, got %v, %v", empty, err)
	}
}

func TestPresenceRepo_CorruptRecord(t *testing.T) {
	repo, mr := newTestPresenceRepo(t)
	mr.HSet("presence:user:broken", "status", "online", "last_seen", "yesterday", "last_status_change", "1")

	if _, err := repo.Get(context.Background(), "broken"); err == nil {
		t.Error("Expected error for corrupt record")
	}
}
