package notifications

import (
	"fmt"

	"hotorflop/internal/config"

	"github.com/redis/go-redis/v9"
)

// New picks the publisher for cfg.EventsBackend.
func New(cfg *config.Config, rdb *redis.Client) (Publisher, error) {
	switch cfg.EventsBackend {
	case "", "redis":
		return NewRedisPublisher(rdb), nil
	case "nats":
		return ConnectNats(cfg.NatsURL)
	case "none":
		return Noop{}, nil
	default:
		return nil, fmt.Errorf("unsupported EVENTS_BACKEND %q", cfg.EventsBackend)
	}
}
