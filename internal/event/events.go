package event

import (
	"context"
	"time"
)

const (
	routingKeyCustomerCreated = "customer.created"
	routingKeyCustomerUpdated = "customer.updated"
	routingKeyCustomerDeleted = "customer.deleted"
	routingKeyUserCreated     = "user.created"
	routingKeyUserUpdated     = "user.updated"
	routingKeyUserDeleted     = "user.deleted"
)

type CustomerEventPayload struct {
	CustomerID int64     `json:"customerId"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      *string   `json:"phone,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type CustomerEvent struct {
	Timestamp time.Time            `json:"timestamp"`
	Payload   CustomerEventPayload `json:"payload"`
}

type UserEventPayload struct {
	UserID    int64     `json:"userId"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  *string   `json:"fullName,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type UserEvent struct {
	Timestamp time.Time        `json:"timestamp"`
	Payload   UserEventPayload `json:"payload"`
}

func (p *RabbitMQEventPublisher) PublishCustomerCreated(ctx context.Context, evt CustomerEvent) error {
	return p.publish(ctx, routingKeyCustomerCreated, evt)
}

func (p *RabbitMQEventPublisher) PublishCustomerUpdated(ctx context.Context, evt CustomerEvent) error {
	return p.publish(ctx, routingKeyCustomerUpdated, evt)
}

func (p *RabbitMQEventPublisher) PublishCustomerDeleted(ctx context.Context, evt CustomerEvent) error {
	return p.publish(ctx, routingKeyCustomerDeleted, evt)
}

func (p *RabbitMQEventPublisher) PublishUserCreated(ctx context.Context, evt UserEvent) error {
	return p.publish(ctx, routingKeyUserCreated, evt)
}

func (p *RabbitMQEventPublisher) PublishUserUpdated(ctx context.Context, evt UserEvent) error {
	return p.publish(ctx, routingKeyUserUpdated, evt)
}

func (p *RabbitMQEventPublisher) PublishUserDeleted(ctx context.Context, evt UserEvent) error {
	return p.publish(ctx, routingKeyUserDeleted, evt)
}

var _ EventPublisher = (*RabbitMQEventPublisher)(nil)
