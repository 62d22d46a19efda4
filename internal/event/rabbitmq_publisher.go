package event

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const publisherAppID = "customer-registry"

type EventPublisher interface {
	PublishCustomerCreated(ctx context.Context, evt CustomerEvent) error
	PublishCustomerUpdated(ctx context.Context, evt CustomerEvent) error
	PublishCustomerDeleted(ctx context.Context, evt CustomerEvent) error
	PublishUserCreated(ctx context.Context, evt UserEvent) error
	PublishUserUpdated(ctx context.Context, evt UserEvent) error
	PublishUserDeleted(ctx context.Context, evt UserEvent) error
}

// Channel is the subset of *amqp.Channel the publisher needs.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// ChannelOpener hands out a fresh channel per publish. *amqp.Connection satisfies it
// through AMQPConnection.
type ChannelOpener interface {
	OpenChannel() (Channel, error)
}

// AMQPConnection adapts *amqp.Connection to ChannelOpener.
type AMQPConnection struct {
	Conn *amqp.Connection
}

func (c AMQPConnection) OpenChannel() (Channel, error) {
	ch, err := c.Conn.Channel()
	if err != nil {
		return nil, err
	}
	return ch, nil
}

type RabbitMQEventPublisher struct {
	opener       ChannelOpener
	exchangeName string
	logger       *slog.Logger
	now          func() time.Time
	newID        func() string
}

func NewRabbitMQEventPublisher(conn *amqp.Connection, exchangeName string, logger *slog.Logger) (*RabbitMQEventPublisher, error) {
	if conn == nil {
		return nil, errors.New("RabbitMQ connection cannot be nil")
	}
	if exchangeName == "" {
		return nil, errors.New("RabbitMQ exchange name cannot be empty")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}

	tempCh, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open temporary channel for exchange declaration: %w", err)
	}
	defer tempCh.Close()

	err = tempCh.ExchangeDeclare(
		exchangeName,
		amqp.ExchangeTopic,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare exchange '%s': %w", exchangeName, err)
	}
	logger.Info("Ensured RabbitMQ exchange exists", "exchange", exchangeName, "type", amqp.ExchangeTopic)

	return newPublisher(AMQPConnection{Conn: conn}, exchangeName, logger), nil
}

func newPublisher(opener ChannelOpener, exchangeName string, logger *slog.Logger) *RabbitMQEventPublisher {
	return &RabbitMQEventPublisher{
		opener:       opener,
		exchangeName: exchangeName,
		logger:       logger.With("component", "RabbitMQEventPublisher", "exchange", exchangeName),
		now:          time.Now,
		newID:        uuid.NewString,
	}
}

func (p *RabbitMQEventPublisher) publish(ctx context.Context, routingKey string, payload any) error {
	logCtx := p.logger.With(slog.String("routingKey", routingKey))

	body, err := json.Marshal(payload)
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to marshal event payload to JSON", slog.Any("error", err))
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	channel, err := p.opener.OpenChannel()
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to open RabbitMQ channel", slog.Any("error", err))
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer channel.Close()

	messageID := p.newID()
	logCtx.DebugContext(ctx, "Publishing message", "bodySize", len(body), "messageId", messageID)

	err = channel.PublishWithContext(
		ctx,
		p.exchangeName,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    messageID,
			Timestamp:    p.now(),
			Body:         body,
			AppId:        publisherAppID,
		},
	)
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to publish message to RabbitMQ", slog.Any("error", err))
		return fmt.Errorf("failed to publish message: %w", err)
	}

	logCtx.InfoContext(ctx, "Successfully published message", "messageId", messageID)
	return nil
}

// NoopPublisher drops every event. Used when the broker is disabled or unreachable.
type NoopPublisher struct {
	logger *slog.Logger
}

func NewNoopPublisher(logger *slog.Logger) *NoopPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &NoopPublisher{logger: logger.With("component", "NoopPublisher")}
}

func (p *NoopPublisher) drop(ctx context.Context, routingKey string) error {
	p.logger.DebugContext(ctx, "Event publishing disabled, dropping event", slog.String("routingKey", routingKey))
	return nil
}

func (p *NoopPublisher) PublishCustomerCreated(ctx context.Context, _ CustomerEvent) error {
	return p.drop(ctx, routingKeyCustomerCreated)
}

func (p *NoopPublisher) PublishCustomerUpdated(ctx context.Context, _ CustomerEvent) error {
	return p.drop(ctx, routingKeyCustomerUpdated)
}

func (p *NoopPublisher) PublishCustomerDeleted(ctx context.Context, _ CustomerEvent) error {
	return p.drop(ctx, routingKeyCustomerDeleted)
}

func (p *NoopPublisher) PublishUserCreated(ctx context.Context, _ UserEvent) error {
	return p.drop(ctx, routingKeyUserCreated)
}

func (p *NoopPublisher) PublishUserUpdated(ctx context.Context, _ UserEvent) error {
	return p.drop(ctx, routingKeyUserUpdated)
}

func (p *NoopPublisher) PublishUserDeleted(ctx context.Context, _ UserEvent) error {
	return p.drop(ctx, routingKeyUserDeleted)
}

var _ EventPublisher = (*NoopPublisher)(nil)
