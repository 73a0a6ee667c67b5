package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"shorts_factory/internal/domain"
)

// ErrNotConfirmed is returned when the broker nacks a published event.
var ErrNotConfirmed = errors.New("event not confirmed by broker")

type Config struct {
	URL      string
	Exchange string
	// RoutingKey is the prefix of every event key: <prefix>.<kind>.<slot>.
	RoutingKey string
	// QueueName receives every event under the prefix.
	QueueName string
}

// RabbitMQ publishes task events to a durable topic exchange and waits for
// the broker to confirm each one.
type RabbitMQ struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	prefix   string
	logger   *slog.Logger
}

func NewRabbitMQ(cfg Config, logger *slog.Logger) (*RabbitMQ, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := declareTopology(ch, cfg); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	if err := ch.Confirm(false); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("enable confirms: %w", err)
	}

	logger.Info("connected to rabbitmq",
		"exchange", cfg.Exchange,
		"queue", cfg.QueueName,
		"binding", bindingKey(cfg.RoutingKey),
	)

	return &RabbitMQ{
		conn:     conn,
		channel:  ch,
		exchange: cfg.Exchange,
		prefix:   cfg.RoutingKey,
		logger:   logger.With("component", "publisher"),
	}, nil
}

func declareTopology(ch *amqp.Channel, cfg Config) error {
	if err := ch.ExchangeDeclare(cfg.Exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	if cfg.QueueName == "" {
		return nil
	}
	q, err := ch.QueueDeclare(cfg.QueueName, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, bindingKey(cfg.RoutingKey), cfg.Exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// EventMessage is the JSON body of every task event.
type EventMessage struct {
	Event     domain.TaskEvent `json:"event"`
	Timestamp time.Time        `json:"timestamp"`
}

// routingKey places an event under <prefix>.<kind>.<slot> so consumers can
// bind to e.g. "tasks.uploaded.*" or "tasks.*.morning".
func routingKey(prefix string, event domain.TaskEvent) string {
	slot := event.Slot
	if slot == "" {
		slot = "none"
	}
	parts := []string{event.Kind, strings.ReplaceAll(slot, ".", "_")}
	if prefix != "" {
		parts = append([]string{prefix}, parts...)
	}
	return strings.Join(parts, ".")
}

func bindingKey(prefix string) string {
	if prefix == "" {
		return "#"
	}
	return prefix + ".#"
}

func buildPublishing(event domain.TaskEvent, now time.Time) (amqp.Publishing, error) {
	ts := event.Timestamp
	if ts.IsZero() {
		ts = now.UTC()
	}

	body, err := json.Marshal(EventMessage{Event: event, Timestamp: ts})
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal message: %w", err)
	}

	headers := amqp.Table{
		"task_id": event.TaskID,
		"to":      string(event.To),
	}
	if event.From != "" {
		headers["from"] = string(event.From)
	}
	if event.Slot != "" {
		headers["slot"] = event.Slot
	}

	return amqp.Publishing{
		Headers:      headers,
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Type:         event.Kind,
		MessageId:    event.TaskID + ":" + string(event.To),
		Timestamp:    ts,
		Body:         body,
	}, nil
}

// Publish sends event and blocks until the broker confirms it or ctx ends.
func (r *RabbitMQ) Publish(ctx context.Context, event domain.TaskEvent) error {
	msg, err := buildPublishing(event, time.Now())
	if err != nil {
		return err
	}
	key := routingKey(r.prefix, event)

	r.mu.Lock()
	confirm, err := r.channel.PublishWithDeferredConfirmWithContext(ctx, r.exchange, key, false, false, msg)
	r.mu.Unlock()
	if err != nil {
		return fmt.Errorf("publish %s: %w", key, err)
	}

	acked, err := confirm.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("wait confirm %s: %w", key, err)
	}
	if !acked {
		return fmt.Errorf("%w: %s", ErrNotConfirmed, key)
	}

	r.logger.Debug("published task event", "task_id", event.TaskID, "routing_key", key)
	return nil
}

func (r *RabbitMQ) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.channel != nil {
		r.channel.Close()
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}
