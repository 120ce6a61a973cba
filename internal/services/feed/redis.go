package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/KirkDiggler/spinwin/internal/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Channel is the pub/sub channel entries are announced on
const Channel = "wheel_entries:inserts"

var ErrNilConfig = errors.New("config cannot be nil")

// RedisConfig holds configuration for the Redis feed
type RedisConfig struct {
	RedisClient *redis.Client
	Logger      *zap.Logger
}

type redisFeed struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedis creates a feed backed by Redis pub/sub
func NewRedis(cfg *RedisConfig) (*redisFeed, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &redisFeed{
		client: cfg.RedisClient,
		logger: logger,
	}, nil
}

func (f *redisFeed) Publish(ctx context.Context, entry *models.Entry) error {
	if entry == nil {
		return errors.New("entry cannot be nil")
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	if err := f.client.Publish(ctx, Channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish entry: %w", err)
	}

	return nil
}

func (f *redisFeed) Subscribe(ctx context.Context) (<-chan *models.Entry, error) {
	pubsub := f.client.Subscribe(ctx, Channel)

	// wait for the subscription to be confirmed so no publish is missed
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", Channel, err)
	}

	out := make(chan *models.Entry)
	messages := pubsub.Channel()

	go func() {
		defer close(out)
		defer pubsub.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}

				var entry models.Entry
				if err := json.Unmarshal([]byte(msg.Payload), &entry); err != nil {
					f.logger.Warn("dropping malformed feed message",
						zap.String("channel", msg.Channel),
						zap.Error(err))
					continue
				}

				select {
				case out <- &entry:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}
