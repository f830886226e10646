package events

import (
	"context"
	"log/slog"

	"seatwise/internal/pkg/config"
	"seatwise/internal/pkg/errs"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher pushes seat events to a topic exchange. It is used only by the
// notification dispatcher, never from inside a database transaction.
type Publisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

func NewPublisher(cfg config.AMQPConfig) (*Publisher, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, errs.Wrap(err, "failed to connect to amqp broker")
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, errs.Wrap(err, "failed to open amqp channel")
	}
	if err := ch.ExchangeDeclare(cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, errs.Wrap(err, "failed to declare amqp exchange")
	}
	return &Publisher{conn: conn, ch: ch, exchange: cfg.Exchange}, nil
}

func (p *Publisher) Publish(ctx context.Context, topic string, payload []byte) error {
	err := p.ch.PublishWithContext(ctx, p.exchange, topic, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         payload,
	})
	if err != nil {
		return errs.Wrap(err, "failed to publish seat event")
	}
	return nil
}

// NopPublisher stands in when no broker is configured. Events are dropped
// after a debug log; the jobs table still records every transition.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, topic string, _ []byte) error {
	slog.DebugContext(ctx, "amqp disabled, dropping seat event", "topic", topic)
	return nil
}

func (p *Publisher) Close() error {
	if err := p.ch.Close(); err != nil {
		p.conn.Close()
		return errs.Wrap(err, "failed to close amqp channel")
	}
	if err := p.conn.Close(); err != nil {
		return errs.Wrap(err, "failed to close amqp connection")
	}
	return nil
}
