package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// AMQPNotifier queues confirmations on a durable RabbitMQ queue so delivery
// happens out of the request path (see StartMailConsumer). One connection is
// shared by all publishes; each publish opens its own channel.
type AMQPNotifier struct {
	url   string
	queue string
	log   *zap.Logger

	mu   sync.Mutex
	conn *amqp.Connection
}

func NewAMQPNotifier(url, queue string, log *zap.Logger) *AMQPNotifier {
	return &AMQPNotifier{
		url:   url,
		queue: queue,
		log:   log.With(zap.String("notifier", "amqp")),
	}
}

// connection returns the shared connection, redialing after the broker
// dropped it.
func (n *AMQPNotifier) connection() (*amqp.Connection, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.conn != nil && !n.conn.IsClosed() {
		return n.conn, nil
	}

	conn, err := amqp.Dial(n.url)
	if err != nil {
		return nil, fmt.Errorf("dial broker: %w", err)
	}
	n.conn = conn
	n.log.Info("Connected to broker", zap.String("queue", n.queue))
	return conn, nil
}

func (n *AMQPNotifier) BookingConfirmed(ctx context.Context, msg Notification) error {
	conn, err := n.connection()
	if err != nil {
		return err
	}

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(n.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", n.queue, err)
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx, "", n.queue, false, false, pub); err != nil {
		return fmt.Errorf("publish to %s: %w", n.queue, err)
	}

	n.log.Debug("Confirmation queued",
		zap.String("queue", n.queue),
		zap.String("confirmation_code", msg.ConfirmationCode))
	return nil
}

// Close drops the shared connection. Safe to call when never connected.
func (n *AMQPNotifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.conn == nil {
		return nil
	}
	err := n.conn.Close()
	n.conn = nil
	if err != nil && !errors.Is(err, amqp.ErrClosed) {
		return fmt.Errorf("close broker connection: %w", err)
	}
	return nil
}

// StartMailConsumer drains the confirmation queue into deliver until ctx is
// done, reconnecting with backoff when the broker goes away.
func StartMailConsumer(ctx context.Context, url, queue string, deliver Notifier, log *zap.Logger) {
	log = log.With(zap.String("consumer", queue))
	backoff := time.Second

	for {
		if ctx.Err() != nil {
			return
		}

		conn, err := amqp.Dial(url)
		if err != nil {
			log.Warn("Failed to dial broker", zap.Error(err), zap.Duration("retry_in", backoff))
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := consumeLoop(ctx, conn, queue, deliver, log); err != nil {
			log.Warn("Consume loop ended, reconnecting", zap.Error(err))
		}
		_ = conn.Close()
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, queue string, deliver Notifier, log *zap.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Warn("Set QoS failed", zap.Error(err))
	}

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}

			var msg Notification
			if err := json.Unmarshal(d.Body, &msg); err != nil {
				log.Error("Discarding malformed notification", zap.Error(err))
				_ = d.Nack(false, false)
				continue
			}

			if err := deliver.BookingConfirmed(ctx, msg); err != nil {
				log.Error("Failed to deliver notification",
					zap.Error(err),
					zap.String("confirmation_code", msg.ConfirmationCode))
				// do not requeue to avoid tight loops
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}
