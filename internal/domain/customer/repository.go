package customer

import (
	"context"

	"customer-registry/internal/domain/record"
	"customer-registry/internal/event"
)

type CustomerRepository interface {
	// WithinTx runs fn against a repository bound to a single transaction,
	// committing when fn returns nil and rolling back otherwise.
	WithinTx(ctx context.Context, fn func(ctx context.Context, repo CustomerRepository) error) error

	Save(ctx context.Context, customer *Customer) error

	FindByID(ctx context.Context, customerID int64) (*Customer, error)

	// FindByAttribute returns the first customer other than excludeID whose
	// attr equals value, or apperrors.ErrNotFound.
	FindByAttribute(ctx context.Context, attr Attribute, value string, excludeID *int64) (*Customer, error)

	FindAll(ctx context.Context, page record.Page) ([]*Customer, error)

	Delete(ctx context.Context, customerID int64) error

	Count(ctx context.Context) (int64, error)
}

type EventPublisher interface {
	PublishCustomerCreated(ctx context.Context, evt event.CustomerEvent) error
	PublishCustomerUpdated(ctx context.Context, evt event.CustomerEvent) error
	PublishCustomerDeleted(ctx context.Context, evt event.CustomerEvent) error
}
