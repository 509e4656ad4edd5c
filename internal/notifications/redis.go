package notifications

import (
	"context"
	"encoding/json"
	"log/slog"
	"runtime/debug"

	"hotorflop/internal/middleware"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// ChannelPrefix namespaces event channels in Redis.
const ChannelPrefix = "events:"

// Channel returns the Redis channel carrying subject.
func Channel(subject string) string {
	return ChannelPrefix + subject
}

// RedisPublisher publishes events over Redis pub/sub. A nil client makes it a no-op.
type RedisPublisher struct {
	rdb *redis.Client
}

// NewRedisPublisher creates a publisher using the provided Redis client.
func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

func (p *RedisPublisher) PublishVoteCast(ctx context.Context, e VoteCastEvent) error {
	stamp(&e.ID, &e.At)
	return p.publish(ctx, SubjectVoteCast, e)
}

func (p *RedisPublisher) PublishPostCreated(ctx context.Context, e PostCreatedEvent) error {
	stamp(&e.ID, &e.At)
	return p.publish(ctx, SubjectPostCreated, e)
}

func (p *RedisPublisher) PublishMessageSent(ctx context.Context, e MessageSentEvent) error {
	stamp(&e.ID, &e.At)
	return p.publish(ctx, SubjectMessageSent, e)
}

func (p *RedisPublisher) publish(ctx context.Context, subject string, v any) error {
	if p.rdb == nil {
		return nil
	}
	data, err := encode(v)
	if err != nil {
		return err
	}

	headers := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, headers)

	payload, err := json.Marshal(Envelope{Subject: subject, Headers: headers, Data: data})
	if err != nil {
		return err
	}
	err = p.rdb.Publish(ctx, Channel(subject), payload).Err()
	record(subject, err)
	return err
}

// Close is a no-op; the Redis client is owned by the cache package.
func (p *RedisPublisher) Close() error { return nil }

// Subscribe delivers every event on the event channels to onEvent until ctx is done.
func (p *RedisPublisher) Subscribe(ctx context.Context, onEvent func(Envelope)) error {
	if p.rdb == nil {
		return nil
	}
	sub := p.rdb.PSubscribe(ctx, ChannelPrefix+"*")
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return err
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var env Envelope
				if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
					middleware.Logger.Warn("dropping malformed event", slog.String("channel", msg.Channel), slog.String("error", err.Error()))
					continue
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							middleware.Logger.Error("panic in event subscriber",
								slog.Any("panic", r), slog.String("stack", string(debug.Stack())))
						}
					}()
					onEvent(env)
				}()
			}
		}
	}()

	return nil
}
