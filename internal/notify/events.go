package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	EventBookingConfirmed = "BookingConfirmed"
	EventBookingCancelled = "BookingCancelled"
	EventBookingCompleted = "BookingCompleted"
)

type Envelope struct {
	EventID      string          `json:"event_id"`
	EventType    string          `json:"event_type"`
	EventVersion int             `json:"event_version"`
	OccurredAt   time.Time       `json:"occurred_at"`
	Producer     string          `json:"producer"`
	Payload      json.RawMessage `json:"payload"`
}

// BookingEvent is the payload of every booking lifecycle event.
type BookingEvent struct {
	BookingID        string `json:"booking_id"`
	RestaurantID     string `json:"restaurant_id"`
	UserID           string `json:"user_id"`
	Date             string `json:"date"`
	Time             string `json:"time"`
	Seats            int    `json:"seats"`
	Status           string `json:"status"`
	ConfirmationCode string `json:"confirmation_code"`
}

type EventPublisher interface {
	Publish(ctx context.Context, eventType string, event BookingEvent) error
}

// NopPublisher drops events, used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, BookingEvent) error { return nil }

func NewEnvelope(eventType, producer string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return Envelope{
		EventID:      uuid.NewString(),
		EventType:    eventType,
		EventVersion: 1,
		OccurredAt:   time.Now().UTC(),
		Producer:     producer,
		Payload:      raw,
	}, nil
}

// KafkaPublisher buffers events and writes them from a single goroutine,
// keyed by booking id so one booking's events stay ordered.
type KafkaPublisher struct {
	w        *kafka.Writer
	producer string
	inbox    chan kafka.Message
	closeCh  chan struct{}
	log      *zap.Logger
}

func NewKafkaPublisher(brokers []string, topic, producer string, buf int, log *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		},
		producer: producer,
		inbox:    make(chan kafka.Message, buf),
		closeCh:  make(chan struct{}),
		log:      log.With(zap.String("publisher", "kafka"), zap.String("topic", topic)),
	}
}

func (p *KafkaPublisher) Start() {
	go func() {
		defer close(p.closeCh)
		for m := range p.inbox {
			if err := p.w.WriteMessages(context.Background(), m); err != nil {
				p.log.Error("Failed to write event", zap.Error(err), zap.ByteString("key", m.Key))
			}
		}
		if err := p.w.Close(); err != nil {
			p.log.Warn("Failed to close writer", zap.Error(err))
		}
	}()
}

func (p *KafkaPublisher) Publish(ctx context.Context, eventType string, event BookingEvent) error {
	env, err := NewEnvelope(eventType, p.producer, event)
	if err != nil {
		return err
	}
	value, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal %s envelope: %w", eventType, err)
	}

	msg := kafka.Message{
		Key:   []byte(event.BookingID),
		Value: value,
		Time:  env.OccurredAt,
	}

	select {
	case p.inbox <- msg:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("enqueue %s: %w", eventType, ctx.Err())
	}
}

// Close stops accepting events and waits for the buffer to flush.
func (p *KafkaPublisher) Close() {
	close(p.inbox)
	<-p.closeCh
}
