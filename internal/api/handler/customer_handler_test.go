package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"customer-registry/internal/api/handler"
	"customer-registry/internal/api/handler/dto"
	"customer-registry/internal/config"
	"customer-registry/internal/domain/customer"
	"customer-registry/internal/domain/record"
	"customer-registry/internal/pkg/apperrors"
	"customer-registry/internal/pkg/optional"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testPaging = config.PaginationConfig{DefaultLimit: 100, MaxLimit: 500}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) dto.ErrorDetail {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error
}

func strPtr(s string) *string {
	return &s
}

func sampleCustomer(id int64) *customer.Customer {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return &customer.Customer{CustomerID: id, Name: "John Doe", Email: "john@x.com", CreatedAt: now, UpdatedAt: now}
}

func TestNewCustomerHandler_PanicsOnNilDependencies(t *testing.T) {
	assert.Panics(t, func() { handler.NewCustomerHandler(nil, testPaging, discardLogger()) })
	assert.Panics(t, func() { handler.NewCustomerHandler(new(MockCustomerService), testPaging, nil) })
}

func TestCreateCustomer(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockService := new(MockCustomerService)
		h := handler.NewCustomerHandler(mockService, testPaging, discardLogger())

		body := `{"name":"John Doe","email":"john@x.com","phone":"555-0100"}`
		req := httptest.NewRequest(http.MethodPost, "/customers", strings.NewReader(body))
		rec := httptest.NewRecorder()

		mockService.On("CreateCustomer", mock.Anything, "John Doe", "john@x.com", strPtr("555-0100")).
			Return(sampleCustomer(1), nil)

		h.CreateCustomer(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		var resp dto.CustomerResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, int64(1), resp.ID)
		assert.Equal(t, "john@x.com", resp.Email)
		mockService.AssertExpectations(t)
	})

	t.Run("invalid payload", func(t *testing.T) {
		mockService := new(MockCustomerService)
		h := handler.NewCustomerHandler(mockService, testPaging, discardLogger())

		req := httptest.NewRequest(http.MethodPost, "/customers", bytes.NewReader([]byte(`{}`)))
		rec := httptest.NewRecorder()

		h.CreateCustomer(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "name", decodeError(t, rec).Field)
		mockService.AssertNotCalled(t, "CreateCustomer")
	})

	t.Run("malformed email", func(t *testing.T) {
		mockService := new(MockCustomerService)
		h := handler.NewCustomerHandler(mockService, testPaging, discardLogger())

		req := httptest.NewRequest(http.MethodPost, "/customers", strings.NewReader(`{"name":"John","email":"nope"}`))
		rec := httptest.NewRecorder()

		h.CreateCustomer(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		detail := decodeError(t, rec)
		assert.Equal(t, "email", detail.Field)
		assert.Equal(t, "must be a valid email address", detail.Message)
		mockService.AssertNotCalled(t, "CreateCustomer")
	})

	t.Run("unknown field", func(t *testing.T) {
		mockService := new(MockCustomerService)
		h := handler.NewCustomerHandler(mockService, testPaging, discardLogger())

		req := httptest.NewRequest(http.MethodPost, "/customers", strings.NewReader(`{"name":"John","email":"j@x.com","address":"x"}`))
		rec := httptest.NewRecorder()

		h.CreateCustomer(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decodeError(t, rec).Message, apperrors.ErrInvalidArgument.Error())
		mockService.AssertNotCalled(t, "CreateCustomer")
	})

	t.Run("email already registered", func(t *testing.T) {
		mockService := new(MockCustomerService)
		h := handler.NewCustomerHandler(mockService, testPaging, discardLogger())

		req := httptest.NewRequest(http.MethodPost, "/customers", strings.NewReader(`{"name":"Bob","email":"bob@x.com"}`))
		rec := httptest.NewRecorder()

		mockService.On("CreateCustomer", mock.Anything, "Bob", "bob@x.com", (*string)(nil)).
			Return(nil, record.Conflict(customer.Kind, string(customer.AttributeEmail)))

		h.CreateCustomer(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
		detail := decodeError(t, rec)
		assert.Equal(t, "Email already registered", detail.Message)
		assert.Equal(t, "email", detail.Field)
		mockService.AssertExpectations(t)
	})

	t.Run("unexpected service error", func(t *testing.T) {
		mockService := new(MockCustomerService)
		h := handler.NewCustomerHandler(mockService, testPaging, discardLogger())

		req := httptest.NewRequest(http.MethodPost, "/customers", strings.NewReader(`{"name":"Bob","email":"bob@x.com"}`))
		rec := httptest.NewRecorder()

		mockService.On("CreateCustomer", mock.Anything, "Bob", "bob@x.com", (*string)(nil)).
			Return(nil, errors.New("failed to create customer: connection reset"))

		h.CreateCustomer(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "An unexpected error occurred.", decodeError(t, rec).Message)
	})
}

func TestListCustomers(t *testing.T) {
	t.Run("default page", func(t *testing.T) {
		mockService := new(MockCustomerService)
		h := handler.NewCustomerHandler(mockService, testPaging, discardLogger())

		mockService.On("ListCustomers", mock.Anything, record.Page{Skip: 0, Limit: 100}).
			Return([]*customer.Customer{sampleCustomer(1), sampleCustomer(2)}, nil)

		req := httptest.NewRequest(http.MethodGet, "/customers", nil)
		rec := httptest.NewRecorder()

		h.ListCustomers(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp []dto.CustomerResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Len(t, resp, 2)
		mockService.AssertExpectations(t)
	})

	t.Run("explicit skip and limit", func(t *testing.T) {
		mockService := new(MockCustomerService)
		h := handler.NewCustomerHandler(mockService, testPaging, discardLogger())

		mockService.On("ListCustomers", mock.Anything, record.Page{Skip: 10, Limit: 5}).
			Return([]*customer.Customer{}, nil)

		req := httptest.NewRequest(http.MethodGet, "/customers?skip=10&limit=5", nil)
		rec := httptest.NewRecorder()

		h.ListCustomers(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
		mockService.AssertExpectations(t)
	})

	t.Run("limit out of range", func(t *testing.T) {
		mockService := new(MockCustomerService)
		h := handler.NewCustomerHandler(mockService, testPaging, discardLogger())

		req := httptest.NewRequest(http.MethodGet, "/customers?limit=501", nil)
		rec := httptest.NewRecorder()

		h.ListCustomers(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "limit", decodeError(t, rec).Field)
		mockService.AssertNotCalled(t, "ListCustomers")
	})
}

func TestGetCustomer(t *testing.T) {
	mockService := new(MockCustomerService)
	h := handler.NewCustomerHandler(mockService, testPaging, discardLogger())

	t.Run("success", func(t *testing.T) {
		mockService.On("GetCustomer", mock.Anything, int64(1)).Return(sampleCustomer(1), nil)

		req := withURLParam(httptest.NewRequest(http.MethodGet, "/customers/1", nil), "customerID", "1")
		rec := httptest.NewRecorder()

		h.GetCustomer(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp dto.CustomerResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, int64(1), resp.ID)
	})

	t.Run("invalid customer ID", func(t *testing.T) {
		req := withURLParam(httptest.NewRequest(http.MethodGet, "/customers/abc", nil), "customerID", "abc")
		rec := httptest.NewRecorder()

		h.GetCustomer(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("customer not found", func(t *testing.T) {
		mockService.On("GetCustomer", mock.Anything, int64(2)).Return(nil, apperrors.NewNotFoundError(string(customer.Kind), 2))

		req := withURLParam(httptest.NewRequest(http.MethodGet, "/customers/2", nil), "customerID", "2")
		rec := httptest.NewRecorder()

		h.GetCustomer(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Customer not found", decodeError(t, rec).Message)
	})

	mockService.AssertExpectations(t)
}

func TestUpdateCustomer(t *testing.T) {
	t.Run("partial update", func(t *testing.T) {
		mockService := new(MockCustomerService)
		h := handler.NewCustomerHandler(mockService, testPaging, discardLogger())

		updated := sampleCustomer(1)
		updated.Name = "Bob"
		mockService.On("UpdateCustomer", mock.Anything, int64(1), customer.Update{Name: optional.Of("Bob")}).
			Return(updated, nil)

		req := withURLParam(httptest.NewRequest(http.MethodPut, "/customers/1", strings.NewReader(`{"name":"Bob"}`)), "customerID", "1")
		rec := httptest.NewRecorder()

		h.UpdateCustomer(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp dto.CustomerResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Bob", resp.Name)
		mockService.AssertExpectations(t)
	})

	t.Run("null phone clears it", func(t *testing.T) {
		mockService := new(MockCustomerService)
		h := handler.NewCustomerHandler(mockService, testPaging, discardLogger())

		clearsPhone := mock.MatchedBy(func(u customer.Update) bool {
			return u.Phone.IsNull() && !u.Name.IsSet() && !u.Email.IsSet()
		})
		mockService.On("UpdateCustomer", mock.Anything, int64(1), clearsPhone).Return(sampleCustomer(1), nil)

		req := withURLParam(httptest.NewRequest(http.MethodPut, "/customers/1", strings.NewReader(`{"phone":null}`)), "customerID", "1")
		rec := httptest.NewRecorder()

		h.UpdateCustomer(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("null name rejected", func(t *testing.T) {
		mockService := new(MockCustomerService)
		h := handler.NewCustomerHandler(mockService, testPaging, discardLogger())

		req := withURLParam(httptest.NewRequest(http.MethodPut, "/customers/1", strings.NewReader(`{"name":null}`)), "customerID", "1")
		rec := httptest.NewRecorder()

		h.UpdateCustomer(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "name", decodeError(t, rec).Field)
		mockService.AssertNotCalled(t, "UpdateCustomer")
	})

	t.Run("email taken by another customer", func(t *testing.T) {
		mockService := new(MockCustomerService)
		h := handler.NewCustomerHandler(mockService, testPaging, discardLogger())

		mockService.On("UpdateCustomer", mock.Anything, int64(1), customer.Update{Email: optional.Of("bob@x.com")}).
			Return(nil, record.Conflict(customer.Kind, string(customer.AttributeEmail)))

		req := withURLParam(httptest.NewRequest(http.MethodPut, "/customers/1", strings.NewReader(`{"email":"bob@x.com"}`)), "customerID", "1")
		rec := httptest.NewRecorder()

		h.UpdateCustomer(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "Email already registered", decodeError(t, rec).Message)
	})

	t.Run("customer not found", func(t *testing.T) {
		mockService := new(MockCustomerService)
		h := handler.NewCustomerHandler(mockService, testPaging, discardLogger())

		mockService.On("UpdateCustomer", mock.Anything, int64(9), customer.Update{}).
			Return(nil, apperrors.NewNotFoundError(string(customer.Kind), 9))

		req := withURLParam(httptest.NewRequest(http.MethodPut, "/customers/9", strings.NewReader(`{}`)), "customerID", "9")
		rec := httptest.NewRecorder()

		h.UpdateCustomer(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestDeleteCustomer(t *testing.T) {
	mockService := new(MockCustomerService)
	h := handler.NewCustomerHandler(mockService, testPaging, discardLogger())

	t.Run("success", func(t *testing.T) {
		mockService.On("DeleteCustomer", mock.Anything, int64(1)).Return(nil)

		req := withURLParam(httptest.NewRequest(http.MethodDelete, "/customers/1", nil), "customerID", "1")
		rec := httptest.NewRecorder()

		h.DeleteCustomer(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.Bytes())
	})

	t.Run("customer not found", func(t *testing.T) {
		mockService.On("DeleteCustomer", mock.Anything, int64(2)).Return(apperrors.NewNotFoundError(string(customer.Kind), 2))

		req := withURLParam(httptest.NewRequest(http.MethodDelete, "/customers/2", nil), "customerID", "2")
		rec := httptest.NewRecorder()

		h.DeleteCustomer(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("non-positive ID", func(t *testing.T) {
		req := withURLParam(httptest.NewRequest(http.MethodDelete, "/customers/0", nil), "customerID", "0")
		rec := httptest.NewRecorder()

		h.DeleteCustomer(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	mockService.AssertExpectations(t)
}
