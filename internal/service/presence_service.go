package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/naija-amebo-api/internal/broker"
	"github.com/naija-amebo-api/internal/config"
	"github.com/naija-amebo-api/internal/models"
	"github.com/naija-amebo-api/internal/repository"
	"github.com/rs/zerolog"
)

// presenceService is the concrete implementation of PresenceService.
// Records are last-write-wins; an online record older than ttl reads as offline.
type presenceService struct {
	repo   repository.PresenceRepository
	ttl    time.Duration
	now    func() time.Time
	events *broker.Broker[models.PresenceEvent]
	log    zerolog.Logger
}

// newPresenceService creates a new PresenceService
func newPresenceService(repo repository.PresenceRepository, cfg config.PresenceConfig, now func() time.Time, log zerolog.Logger) *presenceService {
	return &presenceService{
		repo:   repo,
		ttl:    cfg.TTL,
		now:    now,
		events: broker.New[models.PresenceEvent](broker.DefaultBuffer),
		log:    log.With().Str("service", "presence").Logger(),
	}
}

// Heartbeat records the status a client reported for userID
func (s *presenceService) Heartbeat(ctx context.Context, userID string, status models.PresenceStatus, reason string) (*models.PresenceView, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, models.ValidationErrors{{Field: "user_id", Message: "user_id is required"}}
	}
	if !models.ValidPresenceStatuses[status] {
		return nil, models.ValidationErrors{{Field: "status", Message: "invalid status, must be one of: online, offline", Value: string(status)}}
	}

	previous, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read presence: %w", err)
	}

	now := s.now().UTC()
	before := s.effectiveStatus(previous, now)

	record := &models.PresenceRecord{
		UserID:           userID,
		Status:           status,
		LastSeen:         now,
		LastStatusChange: now,
	}
	if previous != nil && before == status {
		record.LastStatusChange = previous.LastStatusChange
	}

	if err := s.repo.Put(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to write presence: %w", err)
	}

	if before != status {
		s.publish(userID, status, before, reason, now)
	}

	return s.view(userID, record, now), nil
}

// Get returns the presence of one user
func (s *presenceService) Get(ctx context.Context, userID string) (*models.PresenceView, error) {
	record, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read presence: %w", err)
	}
	return s.view(userID, record, s.now().UTC()), nil
}

// GetMany returns the presence of several users in request order, without duplicates
func (s *presenceService) GetMany(ctx context.Context, userIDs []string) ([]*models.PresenceView, error) {
	ids := make([]string, 0, len(userIDs))
	seen := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}

	records, err := s.repo.GetMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to read presence batch: %w", err)
	}

	now := s.now().UTC()
	views := make([]*models.PresenceView, 0, len(ids))
	for _, id := range ids {
		views = append(views, s.view(id, records[id], now))
	}
	return views, nil
}

// ExpireStale persists offline for every online user whose heartbeat is
// older than the TTL and returns how many were expired
func (s *presenceService) ExpireStale(ctx context.Context) (int, error) {
	now := s.now().UTC()
	ids, err := s.repo.ListStale(ctx, now.Add(-s.ttl))
	if err != nil {
		return 0, fmt.Errorf("failed to list stale presence: %w", err)
	}

	expired := 0
	for _, id := range ids {
		record, err := s.repo.Get(ctx, id)
		if err != nil {
			return expired, fmt.Errorf("failed to read presence: %w", err)
		}
		// A heartbeat may have landed since the scan
		if record == nil || !s.isStale(record, now) {
			continue
		}

		record.Status = models.PresenceOffline
		record.LastStatusChange = now
		if err := s.repo.Put(ctx, record); err != nil {
			return expired, fmt.Errorf("failed to expire presence for '%s': %w", id, err)
		}
		expired++
		s.publish(id, models.PresenceOffline, models.PresenceOnline, models.PresenceReasonExpired, now)
	}

	if expired > 0 {
		s.log.Info().Int("expired", expired).Dur("ttl", s.ttl).Msg("Expired stale presence records")
	}
	return expired, nil
}

// OnlineCount returns the number of users with a fresh online heartbeat
func (s *presenceService) OnlineCount(ctx context.Context) (int, error) {
	return s.repo.CountOnline(ctx, s.now().UTC().Add(-s.ttl))
}

// Subscribe streams presence changes until cancel is called
func (s *presenceService) Subscribe() (<-chan models.PresenceEvent, func()) {
	return s.events.Subscribe()
}

func (s *presenceService) publish(userID string, status, previous models.PresenceStatus, reason string, at time.Time) {
	if reason == "" {
		reason = models.PresenceReasonHeartbeat
	}
	s.events.Publish(models.PresenceEvent{
		UserID:    userID,
		Status:    status,
		Previous:  previous,
		Reason:    reason,
		Timestamp: at,
	})
	s.log.Debug().
		Str("user_id", userID).
		Str("status", string(status)).
		Str("previous", string(previous)).
		Str("reason", reason).
		Msg("Presence changed")
}

func (s *presenceService) isStale(record *models.PresenceRecord, now time.Time) bool {
	return record.Status == models.PresenceOnline && now.Sub(record.LastSeen) > s.ttl
}

func (s *presenceService) effectiveStatus(record *models.PresenceRecord, now time.Time) models.PresenceStatus {
	if record == nil || s.isStale(record, now) {
		return models.PresenceOffline
	}
	return record.Status
}

func (s *presenceService) view(userID string, record *models.PresenceRecord, now time.Time) *models.PresenceView {
	if record == nil {
		return &models.PresenceView{UserID: userID, Status: models.PresenceOffline}
	}

	lastSeen := record.LastSeen
	lastChange := record.LastStatusChange
	status := s.effectiveStatus(record, now)
	return &models.PresenceView{
		UserID:           userID,
		Status:           status,
		IsOnline:         status == models.PresenceOnline,
		Stale:            s.isStale(record, now),
		LastSeen:         &lastSeen,
		LastStatusChange: &lastChange,
	}
}
