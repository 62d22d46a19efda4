package user

import (
	"context"

	"customer-registry/internal/domain/record"
	"customer-registry/internal/event"
)

type UserRepository interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, repo UserRepository) error) error
	Save(ctx context.Context, user *User) error
	FindByID(ctx context.Context, userID int64) (*User, error)
	FindByAttribute(ctx context.Context, attr Attribute, value string, excludeID *int64) (*User, error)
	FindAll(ctx context.Context, page record.Page) ([]*User, error)
	Delete(ctx context.Context, userID int64) error
	Count(ctx context.Context) (int64, error)
}

type EventPublisher interface {
	PublishUserCreated(ctx context.Context, evt event.UserEvent) error
	PublishUserUpdated(ctx context.Context, evt event.UserEvent) error
	PublishUserDeleted(ctx context.Context, evt event.UserEvent) error
}
