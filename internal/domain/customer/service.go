package customer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"customer-registry/internal/domain/record"
	"customer-registry/internal/event"
	"customer-registry/internal/infrastructure/monitoring"
	"customer-registry/internal/pkg/apperrors"
)

type CustomerService interface {
	CreateCustomer(ctx context.Context, name, email string, phone *string) (*Customer, error)
	GetCustomer(ctx context.Context, customerID int64) (*Customer, error)
	ListCustomers(ctx context.Context, page record.Page) ([]*Customer, error)
	UpdateCustomer(ctx context.Context, customerID int64, update Update) (*Customer, error)
	DeleteCustomer(ctx context.Context, customerID int64) error
	CountCustomers(ctx context.Context) (int64, error)
}

var _ CustomerService = (*customerService)(nil)

type customerService struct {
	repo   CustomerRepository
	pub    EventPublisher
	logger *slog.Logger
}

func NewCustomerService(repo CustomerRepository, publisher EventPublisher, logger *slog.Logger) CustomerService {
	if repo == nil {
		panic("customer repository cannot be nil")
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("No logger provided to NewCustomerService, using default stderr handler")
	}

	if publisher == nil {
		logger.Warn("No event publisher provided to NewCustomerService, events will be dropped")
		publisher = event.NewNoopPublisher(logger)
	}

	return &customerService{
		repo:   repo,
		pub:    publisher,
		logger: logger.With(slog.String("component", "customerService")),
	}
}

func NewCustomerEvent(cust *Customer) event.CustomerEvent {
	evt := event.CustomerEvent{Timestamp: time.Now()}
	if cust == nil {
		return evt
	}
	evt.Payload = event.CustomerEventPayload{
		CustomerID: cust.CustomerID,
		Name:       cust.Name,
		Email:      cust.Email,
		Phone:      cust.Phone,
		CreatedAt:  cust.CreatedAt,
		UpdatedAt:  cust.UpdatedAt,
	}
	return evt
}

// logOutcome logs client-correctable failures at Warn and everything else at Error.
func (s *customerService) logOutcome(ctx context.Context, logger *slog.Logger, msg string, err error) {
	var conflictErr *apperrors.ConflictError
	switch {
	case errors.As(err, &conflictErr):
		monitoring.RecordConflict(string(Kind), conflictErr.Field)
		logger.WarnContext(ctx, msg, slog.String("field", conflictErr.Field), slog.Any("error", err))
	case errors.Is(err, apperrors.ErrNotFound):
		logger.WarnContext(ctx, msg, slog.Any("error", err))
	default:
		logger.ErrorContext(ctx, msg, slog.Any("error", err))
	}
}

func isClientError(err error) bool {
	return errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, apperrors.ErrConflict)
}

func (s *customerService) CreateCustomer(ctx context.Context, name, email string, phone *string) (*Customer, error) {
	logger := s.logger.With(slog.String("email", email))
	logger.InfoContext(ctx, "Attempting to create new customer")

	customer := NewCustomer(name, email, phone)
	err := s.repo.WithinTx(ctx, func(ctx context.Context, repo CustomerRepository) error {
		if err := record.EnsureUnique(ctx, repo.FindByAttribute, Kind, AttributeEmail, email, nil); err != nil {
			return err
		}
		return repo.Save(ctx, customer)
	})
	if err != nil {
		s.logOutcome(ctx, logger, "Failed to create customer", err)
		if isClientError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	logger = logger.With(slog.Int64("customerID", customer.CustomerID))
	monitoring.RecordCreated(string(Kind))
	if pubErr := s.pub.PublishCustomerCreated(ctx, NewCustomerEvent(customer)); pubErr != nil {
		logger.ErrorContext(ctx, "Customer created, but FAILED to publish creation event", slog.Any("error", pubErr))
	}

	logger.InfoContext(ctx, "Successfully created new customer")
	return customer, nil
}

func (s *customerService) GetCustomer(ctx context.Context, customerID int64) (*Customer, error) {
	logger := s.logger.With(slog.Int64("customerID", customerID))
	logger.DebugContext(ctx, "Attempting to get customer by ID")

	customer, err := record.GetOrNotFound(ctx, s.repo.FindByID, Kind, customerID)
	if err != nil {
		s.logOutcome(ctx, logger, "Failed to get customer", err)
		if isClientError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get customer %d: %w", customerID, err)
	}

	return customer, nil
}

func (s *customerService) ListCustomers(ctx context.Context, page record.Page) ([]*Customer, error) {
	logger := s.logger.With(slog.Int("skip", page.Skip), slog.Int("limit", page.Limit))
	logger.DebugContext(ctx, "Attempting to list customers")

	customers, err := s.repo.FindAll(ctx, page)
	if err != nil {
		logger.ErrorContext(ctx, "Repository error listing customers", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	logger.DebugContext(ctx, "Successfully retrieved customers", slog.Int("count", len(customers)))
	return customers, nil
}

func (s *customerService) UpdateCustomer(ctx context.Context, customerID int64, update Update) (*Customer, error) {
	logger := s.logger.With(slog.Int64("customerID", customerID))
	logger.InfoContext(ctx, "Attempting to update customer")

	var customer *Customer
	err := s.repo.WithinTx(ctx, func(ctx context.Context, repo CustomerRepository) error {
		current, err := record.GetOrNotFound(ctx, repo.FindByID, Kind, customerID)
		if err != nil {
			return err
		}
		customer = current

		if update.IsEmpty() {
			return nil
		}
		if email, ok := update.Email.Get(); ok {
			if err := record.EnsureUnique(ctx, repo.FindByAttribute, Kind, AttributeEmail, email, record.ExcludeID(customerID)); err != nil {
				return err
			}
		}

		customer.Apply(update)
		return repo.Save(ctx, customer)
	})
	if err != nil {
		s.logOutcome(ctx, logger, "Failed to update customer", err)
		if isClientError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update customer %d: %w", customerID, err)
	}

	if update.IsEmpty() {
		logger.InfoContext(ctx, "Empty update, nothing to save")
		return customer, nil
	}

	monitoring.RecordUpdated(string(Kind))
	if pubErr := s.pub.PublishCustomerUpdated(ctx, NewCustomerEvent(customer)); pubErr != nil {
		logger.ErrorContext(ctx, "Customer updated, but FAILED to publish update event", slog.Any("error", pubErr))
	}

	logger.InfoContext(ctx, "Successfully updated customer")
	return customer, nil
}

func (s *customerService) DeleteCustomer(ctx context.Context, customerID int64) error {
	logger := s.logger.With(slog.Int64("customerID", customerID))
	logger.InfoContext(ctx, "Attempting to delete customer")

	var deleted *Customer
	err := s.repo.WithinTx(ctx, func(ctx context.Context, repo CustomerRepository) error {
		current, err := record.GetOrNotFound(ctx, repo.FindByID, Kind, customerID)
		if err != nil {
			return err
		}
		deleted = current
		return repo.Delete(ctx, customerID)
	})
	if err != nil {
		s.logOutcome(ctx, logger, "Failed to delete customer", err)
		if isClientError(err) {
			return err
		}
		return fmt.Errorf("failed to delete customer %d: %w", customerID, err)
	}

	monitoring.RecordDeleted(string(Kind))
	if pubErr := s.pub.PublishCustomerDeleted(ctx, NewCustomerEvent(deleted)); pubErr != nil {
		logger.ErrorContext(ctx, "Customer deleted, but FAILED to publish deletion event", slog.Any("error", pubErr))
	}

	logger.InfoContext(ctx, "Successfully deleted customer")
	return nil
}

func (s *customerService) CountCustomers(ctx context.Context) (int64, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository error counting customers", slog.Any("error", err))
		return 0, fmt.Errorf("failed to count customers: %w", err)
	}
	return count, nil
}
