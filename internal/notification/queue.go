package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// QueueSender publishes confirmations to a durable RabbitMQ queue. The connection is opened lazily
// and reopened after a failed publish.
type QueueSender struct {
	url   string
	queue string
	log   *zap.Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewQueueSender(url, queue string, log *zap.Logger) *QueueSender {
	return &QueueSender{
		url:   url,
		queue: queue,
		log:   log.With(zap.String("sender", "rabbitmq"), zap.String("queue", queue)),
	}
}

func (q *QueueSender) SendBookingConfirmation(ctx context.Context, msg BookingConfirmation) error {
	if msg.MessageID == "" {
		msg.MessageID = uuid.NewString()
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal booking confirmation: %w", err)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	ch, err := q.channel()
	if err != nil {
		return err
	}

	err = ch.PublishWithContext(ctx, "", q.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    msg.MessageID,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		q.closeLocked()
		return fmt.Errorf("publish booking confirmation %d: %w", msg.Booking.ID, err)
	}

	q.log.Debug("Booking confirmation queued",
		zap.Int64("booking_id", msg.Booking.ID),
		zap.String("message_id", msg.MessageID))
	return nil
}

// channel returns the open channel, dialing and declaring the queue when needed. Caller holds mu.
func (q *QueueSender) channel() (*amqp.Channel, error) {
	if q.ch != nil && !q.ch.IsClosed() {
		return q.ch, nil
	}
	q.closeLocked()

	conn, err := amqp.Dial(q.url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(q.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", q.queue, err)
	}

	q.conn, q.ch = conn, ch
	return ch, nil
}

func (q *QueueSender) closeLocked() {
	if q.ch != nil {
		_ = q.ch.Close()
		q.ch = nil
	}
	if q.conn != nil {
		_ = q.conn.Close()
		q.conn = nil
	}
}

func (q *QueueSender) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closeLocked()
	return nil
}

// QueueWorker consumes confirmations from the queue and hands them to a delivery Sender.
type QueueWorker struct {
	url      string
	queue    string
	delivery Sender
	log      *zap.Logger

	minBackoff time.Duration
	maxBackoff time.Duration

	// session runs one consumer connection and calls ready once deliveries are flowing.
	session func(ctx context.Context, ready func()) error
}

func NewQueueWorker(url, queue string, delivery Sender, log *zap.Logger) *QueueWorker {
	w := &QueueWorker{
		url:        url,
		queue:      queue,
		delivery:   delivery,
		log:        log.With(zap.String("worker", "notification"), zap.String("queue", queue)),
		minBackoff: time.Second,
		maxBackoff: 30 * time.Second,
	}
	w.session = w.consume
	return w
}

var errDeliveriesClosed = errors.New("deliveries channel closed")

// Run consumes until ctx is cancelled, reconnecting with exponential backoff.
func (w *QueueWorker) Run(ctx context.Context) {
	backoff := w.minBackoff
	for {
		err := w.session(ctx, func() { backoff = w.minBackoff })
		if ctx.Err() != nil {
			w.log.Info("Notification worker stopped")
			return
		}

		w.log.Warn("Notification consumer disconnected, retrying", zap.Error(err), zap.Duration("backoff", backoff))
		select {
		case <-ctx.Done():
			w.log.Info("Notification worker stopped")
			return
		case <-time.After(backoff):
		}

		if backoff < w.maxBackoff {
			backoff = min(backoff*2, w.maxBackoff)
		}
	}
}

func (w *QueueWorker) consume(ctx context.Context, ready func()) error {
	conn, err := amqp.Dial(w.url)
	if err != nil {
		return fmt.Errorf("dial rabbitmq: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.Qos(8, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}
	if _, err := ch.QueueDeclare(w.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", w.queue, err)
	}

	msgs, err := ch.ConsumeWithContext(ctx, w.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", w.queue, err)
	}

	w.log.Info("Notification worker consuming")
	ready()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errDeliveriesClosed
			}
			if err := w.handle(ctx, d.Body); err != nil {
				w.log.Error("Failed to deliver booking confirmation", zap.Error(err), zap.String("message_id", d.MessageId))
				// rejected without requeue so a bad message cannot spin
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (w *QueueWorker) handle(ctx context.Context, body []byte) error {
	var msg BookingConfirmation
	if err := json.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("unmarshal booking confirmation: %w", err)
	}
	if msg.RecipientAddress == "" {
		return fmt.Errorf("booking confirmation %d has no recipient", msg.Booking.ID)
	}
	return w.delivery.SendBookingConfirmation(ctx, msg)
}
