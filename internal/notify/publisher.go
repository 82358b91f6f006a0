package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"mpihole/internal/logger"
	"mpihole/internal/models"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher forwards finished toggles to other systems.
type Publisher interface {
	Publish(ctx context.Context, e models.ToggleEvent) error
	Close() error
}

// Nop is used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, models.ToggleEvent) error { return nil }
func (Nop) Close() error                                      { return nil }

// AMQPPublisher publishes toggle events to a topic exchange with routing
// keys toggle.enable and toggle.disable.
type AMQPPublisher struct {
	conn     *amqp.Connection
	exchange string
	log      *logger.Logger
}

// NewAMQPPublisher dials url and declares a durable topic exchange.
func NewAMQPPublisher(url, exchange string, log *logger.Logger) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open amqp channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %q: %w", exchange, err)
	}

	return &AMQPPublisher{conn: conn, exchange: exchange, log: log}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, e models.ToggleEvent) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open amqp channel: %w", err)
	}
	defer ch.Close()

	msg, err := publishing(e)
	if err != nil {
		return err
	}
	key := RoutingKey(e)
	if err := ch.PublishWithContext(ctx, p.exchange, key, false, false, msg); err != nil {
		return fmt.Errorf("publish %s: %w", key, err)
	}
	p.log.Debugw("toggle_event_published", "exchange", p.exchange, "key", key, "event_id", e.EventID)
	return nil
}

func (p *AMQPPublisher) Close() error {
	return p.conn.Close()
}

// RoutingKey returns toggle.<action> in lower case.
func RoutingKey(e models.ToggleEvent) string {
	return "toggle." + strings.ToLower(e.Action)
}

func publishing(e models.ToggleEvent) (amqp.Publishing, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal toggle event: %w", err)
	}
	id := e.EventID
	if id == "" {
		id = uuid.NewString()
	}
	ts := e.OccurredAt
	if ts.IsZero() {
		ts = time.Now()
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    id,
		Timestamp:    ts,
		Type:         "mpihole.toggle",
		Body:         body,
	}, nil
}
