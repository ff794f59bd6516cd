// Package events publishes booking lifecycle events.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"rentshare-backend/internal/domain"
	"rentshare-backend/internal/logger"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

const Source = "rentshare-backend"

// Event is the envelope written to the topic.
type Event struct {
	ID         string          `json:"id"`
	Source     string          `json:"source"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       json.RawMessage `json:"data"`
}

// BookingChanged is the payload of every booking.<status> event.
type BookingChanged struct {
	BookingID          int32                `json:"booking_id"`
	ItemID             int32                `json:"item_id"`
	RenterID           int32                `json:"renter_id"`
	OwnerID            int32                `json:"owner_id"`
	From               domain.BookingStatus `json:"from,omitempty"`
	Status             domain.BookingStatus `json:"status"`
	TotalPriceCents    int64                `json:"total_price_cents"`
	CancellationReason string               `json:"cancellation_reason,omitempty"`
	ActorID            int32                `json:"actor_id"`
}

// TypeFor returns the event type for a booking status, e.g. "booking.pending payment"
// becomes "booking.pending_payment".
func TypeFor(status domain.BookingStatus) string {
	b := []byte(status)
	for i := range b {
		if b[i] == ' ' {
			b[i] = '_'
		}
	}
	return "booking." + string(b)
}

func NewEvent(eventType string, data any) (Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Event{}, fmt.Errorf("failed to marshal event data: %w", err)
	}
	return Event{
		ID:         uuid.NewString(),
		Source:     Source,
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Data:       raw,
	}, nil
}

type Publisher interface {
	Publish(ctx context.Context, key string, evt Event) error
	Close() error
}

// messageWriter is the part of *kafkago.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
	topic  string
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireOne,
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
	}
	return &KafkaPublisher{writer: w, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, key string, evt Event) error {
	value, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	logger.ExternalServiceCall("kafka", "WriteMessages", "topic", p.topic, "type", evt.Type, "key", key)
	err = p.writer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(key),
		Value: value,
		Headers: []kafkago.Header{
			{Key: "ce_type", Value: []byte(evt.Type)},
			{Key: "ce_source", Value: []byte(evt.Source)},
		},
		Time: evt.OccurredAt,
	})
	logger.ExternalServiceResult("kafka", "WriteMessages", err, "topic", p.topic, "type", evt.Type)
	return err
}

func (p *KafkaPublisher) Close() error { return p.writer.Close() }

// NoopPublisher drops events. Used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, Event) error { return nil }

func (NoopPublisher) Close() error { return nil }
