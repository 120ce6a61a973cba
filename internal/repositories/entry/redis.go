package entry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/KirkDiggler/spinwin/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	// Key names for Redis
	entryKeyPrefix   = "entry:"
	entriesByDateKey = "entries:by_date"
	entryMobilesKey  = "entries:mobiles"
)

// RedisConfig holds configuration for the Redis entry repository
type RedisConfig struct {
	// Redis client
	RedisClient *redis.Client
}

// redisRepository implements the Repository interface using Redis
type redisRepository struct {
	client *redis.Client
}

// NewRedis creates a new Redis-backed entry repository
func NewRedis(cfg *RedisConfig) (*redisRepository, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	// Test connection
	if err := cfg.RedisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &redisRepository{
		client: cfg.RedisClient,
	}, nil
}

// CreateEntry stores the entry, indexes it by date and records the mobile
func (r *redisRepository) CreateEntry(ctx context.Context, input *CreateEntryInput) error {
	if err := validateEntry(input); err != nil {
		return err
	}

	entry := input.Entry

	entryJSON, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	pipe := r.client.TxPipeline()

	pipe.Set(ctx, entryKeyPrefix+entry.ID, entryJSON, 0)
	pipe.ZAdd(ctx, entriesByDateKey, redis.Z{
		Score:  float64(entry.EntryDate.UnixMilli()),
		Member: entry.ID,
	})
	pipe.SAdd(ctx, entryMobilesKey, entry.Mobile)

	if _, err = pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save entry: %w", err)
	}

	return nil
}

// HasEntryForMobile checks the mobile set
func (r *redisRepository) HasEntryForMobile(ctx context.Context, input *HasEntryForMobileInput) (bool, error) {
	if input == nil || input.Mobile == "" {
		return false, ErrEmptyMobile
	}

	exists, err := r.client.SIsMember(ctx, entryMobilesKey, input.Mobile).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check mobile: %w", err)
	}

	return exists, nil
}

// GetRecentEntries reads the date index newest first and loads each entry
func (r *redisRepository) GetRecentEntries(ctx context.Context, input *GetRecentEntriesInput) (*GetRecentEntriesOutput, error) {
	if input == nil || input.Limit <= 0 {
		return nil, ErrInvalidLimit
	}

	ids, err := r.client.ZRevRange(ctx, entriesByDateKey, 0, int64(input.Limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get entry IDs: %w", err)
	}

	if len(ids) == 0 {
		return &GetRecentEntriesOutput{
			Entries: []*models.Entry{},
		}, nil
	}

	pipe := r.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.Get(ctx, entryKeyPrefix+id)
	}

	// redis.Nil for a missing key is handled per command below
	if _, err = pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to get entries: %w", err)
	}

	entries := make([]*models.Entry, 0, len(ids))
	for i, cmd := range cmds {
		entryJSON, err := cmd.Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return nil, fmt.Errorf("failed to get entry %s: %w", ids[i], err)
		}

		var entry models.Entry
		if err := json.Unmarshal([]byte(entryJSON), &entry); err != nil {
			return nil, fmt.Errorf("failed to unmarshal entry %s: %w", ids[i], err)
		}

		entries = append(entries, &entry)
	}

	return &GetRecentEntriesOutput{
		Entries: entries,
	}, nil
}

// Ping checks the Redis connection
func (r *redisRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
