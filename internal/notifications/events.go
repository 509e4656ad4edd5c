// Package notifications publishes domain events to Redis pub/sub or NATS.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"hotorflop/internal/audience"
	"hotorflop/internal/observability"
	"hotorflop/internal/tally"

	"github.com/google/uuid"
)

// Event subjects.
const (
	SubjectVoteCast    = "votes.cast"
	SubjectPostCreated = "posts.created"
	SubjectMessageSent = "messages.sent"
)

// VoteCastEvent is published for every vote that changed a tally.
type VoteCastEvent struct {
	ID      string       `json:"id"`
	PostID  uint         `json:"post_id"`
	VoterID uint         `json:"voter_id"`
	Choice  tally.Choice `json:"choice"`
	Counts  tally.Counts `json:"counts"`
	At      time.Time    `json:"at"`
}

// PostCreatedEvent is published when a post is shared.
type PostCreatedEvent struct {
	ID       string            `json:"id"`
	PostID   uint              `json:"post_id"`
	AuthorID uint              `json:"author_id"`
	Audience audience.Audience `json:"audience"`
	At       time.Time         `json:"at"`
}

// MessageSentEvent is published for every direct message. It carries no
// content so bus consumers never see private text.
type MessageSentEvent struct {
	ID         string    `json:"id"`
	MessageID  uint      `json:"message_id"`
	SenderID   uint      `json:"sender_id"`
	ReceiverID uint      `json:"receiver_id"`
	At         time.Time `json:"at"`
}

// Publisher delivers domain events. Implementations must be safe for concurrent use.
type Publisher interface {
	PublishVoteCast(ctx context.Context, e VoteCastEvent) error
	PublishPostCreated(ctx context.Context, e PostCreatedEvent) error
	PublishMessageSent(ctx context.Context, e MessageSentEvent) error
	Close() error
}

// Envelope is the Redis wire form: the subject, trace headers and the event body.
type Envelope struct {
	Subject string            `json:"subject"`
	Headers map[string]string `json:"headers,omitempty"`
	Data    json.RawMessage   `json:"data"`
}

func stamp(id *string, at *time.Time) {
	if *id == "" {
		*id = uuid.NewString()
	}
	if at.IsZero() {
		*at = time.Now().UTC()
	}
}

func encode(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshalling error: %w", err)
	}
	return data, nil
}

func record(subject string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	observability.EventsPublished.WithLabelValues(subject, outcome).Inc()
}

// Noop drops every event.
type Noop struct{}

func (Noop) PublishVoteCast(context.Context, VoteCastEvent) error       { return nil }
func (Noop) PublishPostCreated(context.Context, PostCreatedEvent) error { return nil }
func (Noop) PublishMessageSent(context.Context, MessageSentEvent) error { return nil }
func (Noop) Close() error                                               { return nil }
