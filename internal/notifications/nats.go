package notifications

import (
	"context"
	"fmt"
	"log/slog"

	"hotorflop/internal/middleware"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// NatsPublisher publishes events as NATS messages, carrying the trace context in headers.
type NatsPublisher struct {
	nc *nats.Conn
}

// NewNatsPublisher wraps an established connection.
func NewNatsPublisher(nc *nats.Conn) *NatsPublisher {
	return &NatsPublisher{nc: nc}
}

// ConnectNats dials url and returns a publisher owning the connection.
func ConnectNats(url string) (*NatsPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("hotorflop-api"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				middleware.Logger.Warn("NATS disconnected", slog.String("error", err.Error()))
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return NewNatsPublisher(nc), nil
}

func (p *NatsPublisher) PublishVoteCast(ctx context.Context, e VoteCastEvent) error {
	stamp(&e.ID, &e.At)
	return p.publish(ctx, SubjectVoteCast, e)
}

func (p *NatsPublisher) PublishPostCreated(ctx context.Context, e PostCreatedEvent) error {
	stamp(&e.ID, &e.At)
	return p.publish(ctx, SubjectPostCreated, e)
}

func (p *NatsPublisher) PublishMessageSent(ctx context.Context, e MessageSentEvent) error {
	stamp(&e.ID, &e.At)
	return p.publish(ctx, SubjectMessageSent, e)
}

func (p *NatsPublisher) publish(ctx context.Context, subject string, v any) error {
	msg, err := newMsg(ctx, subject, v)
	if err != nil {
		return err
	}
	err = p.nc.PublishMsg(msg)
	record(subject, err)
	return err
}

func newMsg(ctx context.Context, subject string, v any) (*nats.Msg, error) {
	data, err := encode(v)
	if err != nil {
		return nil, err
	}
	msg := &nats.Msg{
		Subject: subject,
		Data:    data,
		Header:  nats.Header{},
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(msg.Header))
	return msg, nil
}

// Close flushes pending messages and closes the connection.
func (p *NatsPublisher) Close() error {
	if p.nc == nil {
		return nil
	}
	return p.nc.Drain()
}
