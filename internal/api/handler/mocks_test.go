package handler_test

import (
	"context"

	"customer-registry/internal/domain/customer"
	"customer-registry/internal/domain/record"
	"customer-registry/internal/domain/user"

	"github.com/stretchr/testify/mock"
)

type MockCustomerService struct {
	mock.Mock
}

func (_m *MockCustomerService) CreateCustomer(ctx context.Context, name, email string, phone *string) (*customer.Customer, error) {
	ret := _m.Called(ctx, name, email, phone)

	var r0 *customer.Customer
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*customer.Customer)
	}

	return r0, ret.Error(1)
}

func (_m *MockCustomerService) GetCustomer(ctx context.Context, customerID int64) (*customer.Customer, error) {
	ret := _m.Called(ctx, customerID)

	var r0 *customer.Customer
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*customer.Customer)
	}

	return r0, ret.Error(1)
}

func (_m *MockCustomerService) ListCustomers(ctx context.Context, page record.Page) ([]*customer.Customer, error) {
	ret := _m.Called(ctx, page)

	var r0 []*customer.Customer
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*customer.Customer)
	}

	return r0, ret.Error(1)
}

func (_m *MockCustomerService) UpdateCustomer(ctx context.Context, customerID int64, update customer.Update) (*customer.Customer, error) {
	ret := _m.Called(ctx, customerID, update)

	var r0 *customer.Customer
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*customer.Customer)
	}

	return r0, ret.Error(1)
}

func (_m *MockCustomerService) DeleteCustomer(ctx context.Context, customerID int64) error {
	return _m.Called(ctx, customerID).Error(0)
}

func (_m *MockCustomerService) CountCustomers(ctx context.Context) (int64, error) {
	ret := _m.Called(ctx)
	return ret.Get(0).(int64), ret.Error(1)
}

var _ customer.CustomerService = (*MockCustomerService)(nil)

type MockUserService struct {
	mock.Mock
}

func (_m *MockUserService) CreateUser(ctx context.Context, username, email string, fullName *string) (*user.User, error) {
	ret := _m.Called(ctx, username, email, fullName)

	var r0 *user.User
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*user.User)
	}

	return r0, ret.Error(1)
}

func (_m *MockUserService) GetUser(ctx context.Context, userID int64) (*user.User, error) {
	ret := _m.Called(ctx, userID)

	var r0 *user.User
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*user.User)
	}

	return r0, ret.Error(1)
}

func (_m *MockUserService) ListUsers(ctx context.Context, page record.Page) ([]*user.User, error) {
	ret := _m.Called(ctx, page)

	var r0 []*user.User
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*user.User)
	}

	return r0, ret.Error(1)
}

func (_m *MockUserService) UpdateUser(ctx context.Context, userID int64, update user.Update) (*user.User, error) {
	ret := _m.Called(ctx, userID, update)

	var r0 *user.User
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*user.User)
	}

	return r0, ret.Error(1)
}

func (_m *MockUserService) DeleteUser(ctx context.Context, userID int64) error {
	return _m.Called(ctx, userID).Error(0)
}

func (_m *MockUserService) CountUsers(ctx context.Context) (int64, error) {
	ret := _m.Called(ctx)
	return ret.Get(0).(int64), ret.Error(1)
}

var _ user.UserService = (*MockUserService)(nil)
