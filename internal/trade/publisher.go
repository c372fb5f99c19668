package trade

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/atmx/trading-account/internal/model"
)

// Event types.
const (
	EventAccountCreated = "account_created"
	EventTransaction    = "transaction"
)

// Event is the JSON message fanned out after every successful mutation.
type Event struct {
	Type        string             `json:"type"`
	AccountID   string             `json:"account_id"`
	Username    string             `json:"username"`
	Balance     string             `json:"balance"`
	Transaction *model.Transaction `json:"transaction,omitempty"`
	Message     string             `json:"message"`
}

// Publisher delivers events to subscribers. Publish must not block the
// caller for long; implementations drop or fail fast instead.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// RedisPublisher publishes events on a Redis pub/sub channel.
type RedisPublisher struct {
	rdb     *redis.Client
	channel string
}

// NewRedisPublisher creates a publisher writing to channel.
func NewRedisPublisher(rdb *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{rdb: rdb, channel: channel}
}

func (p *RedisPublisher) Publish(ctx context.Context, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.rdb.Publish(ctx, p.channel, data).Err()
}

// MultiPublisher sends each event to every publisher and joins their errors.
type MultiPublisher []Publisher

func (m MultiPublisher) Publish(ctx context.Context, ev Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// publish is a no-op without a publisher. Failures are logged, never
// returned: the account has already changed.
func (s *Service) publish(ctx context.Context, ev Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		slog.Warn("event publish failed", "type", ev.Type, "account", ev.AccountID, "err", err)
	}
}
