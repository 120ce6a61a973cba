package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/streadway/amqp"
)

// DefaultExchange is the fanout exchange wins are published on
const DefaultExchange = "wheel_entries"

type publisher interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPConfig holds configuration for the message bus notifier
type AMQPConfig struct {
	URL        string
	Exchange   string
	RoutingKey string
}

// AMQP publishes each win to a durable fanout exchange
type AMQP struct {
	connection *amqp.Connection
	exchange   string
	routingKey string

	mu      sync.Mutex
	channel publisher
}

// NewAMQP dials the broker and declares the exchange
func NewAMQP(cfg *AMQPConfig) (*AMQP, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	if cfg.URL == "" {
		return nil, errors.New("AMQP URL cannot be empty")
	}

	exchange := cfg.Exchange
	if exchange == "" {
		exchange = DefaultExchange
	}

	connection, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to AMQP broker: %w", err)
	}

	channel, err := connection.Channel()
	if err != nil {
		connection.Close()
		return nil, fmt.Errorf("failed to open AMQP channel: %w", err)
	}

	if err := channel.ExchangeDeclare(exchange, amqp.ExchangeFanout, true, false, false, false, nil); err != nil {
		connection.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &AMQP{
		connection: connection,
		exchange:   exchange,
		routingKey: cfg.RoutingKey,
		channel:    channel,
	}, nil
}

// Notify publishes the entry payload as a persistent message
func (a *AMQP) Notify(ctx context.Context, input *NotifyInput) error {
	if err := validate(input); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := json.Marshal(NewPayload(input.Entry))
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	err = a.channel.Publish(a.exchange, a.routingKey, false, false, amqp.Publishing{
		ContentType:     "application/json",
		ContentEncoding: "utf-8",
		Body:            body,
		DeliveryMode:    amqp.Persistent,
		Timestamp:       time.Now(),
		MessageId:       input.Entry.ID,
	})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	return nil
}

// Close closes the broker connection
func (a *AMQP) Close() error {
	if a.connection == nil {
		return nil
	}
	return a.connection.Close()
}
