package user

import (
	"context"

	"customer-registry/internal/domain/record"
	"customer-registry/internal/event"

	"github.com/stretchr/testify/mock"
)

type MockUserRepository struct {
	mock.Mock
}

func (_m *MockUserRepository) WithinTx(ctx context.Context, fn func(ctx context.Context, repo UserRepository) error) error {
	ret := _m.Called(ctx)

	if err := ret.Error(0); err != nil {
		return err
	}
	return fn(ctx, _m)
}

func (_m *MockUserRepository) Save(ctx context.Context, user *User) error {
	ret := _m.Called(ctx, user)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, *User) error); ok {
		r0 = rf(ctx, user)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

func (_m *MockUserRepository) FindByID(ctx context.Context, userID int64) (*User, error) {
	ret := _m.Called(ctx, userID)

	var r0 *User
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*User)
	}

	return r0, ret.Error(1)
}

func (_m *MockUserRepository) FindByAttribute(ctx context.Context, attr Attribute, value string, excludeID *int64) (*User, error) {
	ret := _m.Called(ctx, attr, value, excludeID)

	var r0 *User
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*User)
	}

	return r0, ret.Error(1)
}

func (_m *MockUserRepository) FindAll(ctx context.Context, page record.Page) ([]*User, error) {
	ret := _m.Called(ctx, page)

	var r0 []*User
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*User)
	}

	return r0, ret.Error(1)
}

func (_m *MockUserRepository) Delete(ctx context.Context, userID int64) error {
	return _m.Called(ctx, userID).Error(0)
}

func (_m *MockUserRepository) Count(ctx context.Context) (int64, error) {
	ret := _m.Called(ctx)

	var r0 int64
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(int64)
	}

	return r0, ret.Error(1)
}

var _ UserRepository = (*MockUserRepository)(nil)

type MockEventPublisher struct {
	mock.Mock
}

func (_m *MockEventPublisher) PublishUserCreated(ctx context.Context, evt event.UserEvent) error {
	return _m.Called(ctx, evt).Error(0)
}

func (_m *MockEventPublisher) PublishUserUpdated(ctx context.Context, evt event.UserEvent) error {
	return _m.Called(ctx, evt).Error(0)
}

func (_m *MockEventPublisher) PublishUserDeleted(ctx context.Context, evt event.UserEvent) error {
	return _m.Called(ctx, evt).Error(0)
}

var _ EventPublisher = (*MockEventPublisher)(nil)
