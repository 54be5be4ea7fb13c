package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/naija-amebo-api/internal/models"
)

const (
	// presenceKeyPrefix is the hash holding one user's record.
	// Format: presence:user:<userID>
	presenceKeyPrefix = "presence:user:%s"

	// onlineSetKey is a sorted set of users whose last heartbeat said online,
	// scored by last-seen unix milliseconds.
	onlineSetKey = "presence:online"

	fieldStatus           = "status"
	fieldLastSeen         = "last_seen"
	fieldLastStatusChange = "last_status_change"
)

// presenceRepo is the Redis implementation of PresenceRepository
type presenceRepo struct {
	client *redis.Client
}

// NewPresenceRepo creates a new presence repository
func NewPresenceRepo(client *redis.Client) PresenceRepository {
	return &presenceRepo{client: client}
}

func presenceKey(userID string) string {
	return fmt.Sprintf(presenceKeyPrefix, userID)
}

// Get retrieves a user's record. Returns nil when the user never reported.
func (r *presenceRepo) Get(ctx context.Context, userID string) (*models.PresenceRecord, error) {
	fields, err := r.client.HGetAll(ctx, presenceKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read presence for '%s': %w", userID, err)
	}
	return decodePresence(userID, fields)
}

// GetMany retrieves several records in one round trip. Users without a
// record are absent from the result.
func (r *presenceRepo) GetMany(ctx context.Context, userIDs []string) (map[string]*models.PresenceRecord, error) {
	result := make(map[string]*models.PresenceRecord, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}

	pipe := r.client.Pipeline()
	cmds := make(map[string]*redis.StringStringMapCmd, len(userIDs))
	for _, id := range userIDs {
		cmds[id] = pipe.HGetAll(ctx, presenceKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to read presence batch: %w", err)
	}

	for id, cmd := range cmds {
		record, err := decodePresence(id, cmd.Val())
		if err != nil {
			return nil, err
		}
		if record != nil {
			result[id] = record
		}
	}
	return result, nil
}

// Put overwrites a user's record and keeps the online index in sync
func (r *presenceRepo) Put(ctx context.Context, record *models.PresenceRecord) error {
	key := presenceKey(record.UserID)

	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, key, map[string]interface{}{
		fieldStatus:           string(record.Status),
		fieldLastSeen:         record.LastSeen.UnixMilli(),
		fieldLastStatusChange: record.LastStatusChange.UnixMilli(),
	})
	if record.Status == models.PresenceOnline {
		pipe.ZAdd(ctx, onlineSetKey, &redis.Z{Score: float64(record.LastSeen.UnixMilli()), Member: record.UserID})
	} else {
		pipe.ZRem(ctx, onlineSetKey, record.UserID)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to write presence for '%s': %w", record.UserID, err)
	}
	return nil
}

// ListStale returns online users whose last heartbeat is strictly before the cutoff
func (r *presenceRepo) ListStale(ctx context.Context, before time.Time) ([]string, error) {
	ids, err := r.client.ZRangeByScore(ctx, onlineSetKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: "(" + strconv.FormatInt(before.UnixMilli(), 10),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list stale presence: %w", err)
	}
	return ids, nil
}

// CountOnline returns the number of online users seen at or after since
func (r *presenceRepo) CountOnline(ctx context.Context, since time.Time) (int, error) {
	n, err := r.client.ZCount(ctx, onlineSetKey, strconv.FormatInt(since.UnixMilli(), 10), "+inf").Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count online users: %w", err)
	}
	return int(n), nil
}

func decodePresence(userID string, fields map[string]string) (*models.PresenceRecord, error) {
	if len(fields) == 0 {
		return nil, nil
	}

	lastSeen, err := parseMillis(fields[fieldLastSeen])
	if err != nil {
		return nil, fmt.Errorf("corrupt last_seen for '%s': %w", userID, err)
	}
	lastChange, err := parseMillis(fields[fieldLastStatusChange])
	if err != nil {
		return nil, fmt.Errorf("corrupt last_status_change for '%s': %w", userID, err)
	}

	return &models.PresenceRecord{
		UserID:           userID,
		Status:           models.PresenceStatus(fields[fieldStatus]),
		LastSeen:         lastSeen,
		LastStatusChange: lastChange,
	}, nil
}

func parseMillis(s string) (time.Time, error) {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(ms).UTC(), nil
}
