package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/extmgr-labs/extmgr/internal/extension"
	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQPConfig describes the broker connection.
type AMQPConfig struct {
	URL      string
	Exchange string
}

// AMQPPublisher sends events to a durable topic exchange.
type AMQPPublisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

// NewAMQPPublisher dials the broker and declares the exchange.
func NewAMQPPublisher(cfg AMQPConfig) (*AMQPPublisher, error) {
	if cfg.URL == "" {
		return nil, errors.New("amqp URL is empty")
	}
	if _, err := amqp.ParseURI(cfg.URL); err != nil {
		return nil, fmt.Errorf("parsing amqp URL: %w", err)
	}
	exchange := cfg.Exchange
	if exchange == "" {
		exchange = "extmgr.events"
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connecting to amqp broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("opening amqp channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declaring exchange %s: %w", exchange, err)
	}
	return &AMQPPublisher{conn: conn, ch: ch, exchange: exchange}, nil
}

// Notify publishes the change as a persistent JSON message.
func (p *AMQPPublisher) Notify(ctx context.Context, c extension.Change) error {
	if p == nil || p.ch == nil {
		return errors.New("amqp publisher is not initialized")
	}

	ev := FromChange(c)
	body, err := ev.Encode()
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}

	return p.ch.PublishWithContext(ctx, p.exchange, ev.RoutingKey(), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.ID,
		Timestamp:    ev.OccurredAt,
		Type:         ev.Kind,
		Body:         body,
	})
}

// Close closes the channel and the connection.
func (p *AMQPPublisher) Close() error {
	if p == nil {
		return nil
	}
	var errs []error
	if p.ch != nil {
		errs = append(errs, p.ch.Close())
	}
	if p.conn != nil {
		errs = append(errs, p.conn.Close())
	}
	return errors.Join(errs...)
}
