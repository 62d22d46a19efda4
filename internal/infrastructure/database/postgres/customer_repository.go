package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"customer-registry/internal/domain/customer"
	"customer-registry/internal/domain/record"
	"customer-registry/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5"
)

const customerColumns = `id, name, email, phone, created_at, updated_at`

type CustomerRepository struct {
	db     DBPool
	q      Querier
	inTx   bool
	logger *slog.Logger
}

var _ customer.CustomerRepository = (*CustomerRepository)(nil)

func NewCustomerRepository(db DBPool, logger *slog.Logger) *CustomerRepository {
	if db == nil {
		panic("DBPool cannot be nil for CustomerRepository")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("No logger provided to NewCustomerRepository, using default stderr handler")
	}
	return &CustomerRepository{
		db:     db,
		q:      db,
		logger: logger.With("component", "CustomerRepository"),
	}
}

// WithinTx binds a copy of the repository to a new transaction. Calls on a
// repository that is already transaction bound join the open transaction.
func (r *CustomerRepository) WithinTx(ctx context.Context, fn func(ctx context.Context, repo customer.CustomerRepository) error) error {
	if r.inTx {
		return fn(ctx, r)
	}
	return withinTx(ctx, r.db, r.logger, func(tx pgx.Tx) error {
		return fn(ctx, &CustomerRepository{db: r.db, q: tx, inTx: true, logger: r.logger})
	})
}

func (r *CustomerRepository) Save(ctx context.Context, cust *customer.Customer) error {
	if cust == nil {
		return fmt.Errorf("%w: customer cannot be nil", apperrors.ErrInvalidArgument)
	}

	if cust.CustomerID == 0 {
		return r.createCustomer(ctx, cust)
	}
	return r.updateCustomer(ctx, cust)
}

func (r *CustomerRepository) createCustomer(ctx context.Context, cust *customer.Customer) error {
	r.logger.DebugContext(ctx, "Attempting to insert new customer", slog.String("email", cust.Email))

	query := `
        INSERT INTO customers (name, email, phone, created_at, updated_at)
        VALUES ($1, $2, $3, NOW(), NOW())
        RETURNING id, created_at, updated_at`

	start := time.Now()
	err := r.q.QueryRow(ctx, query,
		cust.Name,
		cust.Email,
		cust.Phone,
	).Scan(
		&cust.CustomerID,
		&cust.CreatedAt,
		&cust.UpdatedAt,
	)
	observe("InsertCustomer", start, err)

	if err != nil {
		translatedErr := translateDBError(err, r.logger)
		if errors.Is(translatedErr, apperrors.ErrConflict) {
			return translatedErr
		}
		return fmt.Errorf("failed to insert customer: %w", translatedErr)
	}

	r.logger.InfoContext(ctx, "Customer inserted successfully", slog.Int64("customerID", cust.CustomerID))
	return nil
}

func (r *CustomerRepository) updateCustomer(ctx context.Context, cust *customer.Customer) error {
	r.logger.DebugContext(ctx, "Attempting to update customer", slog.Int64("customerID", cust.CustomerID))

	query := `
        UPDATE customers
        SET name = $1,
            email = $2,
            phone = $3,
            updated_at = NOW()
        WHERE id = $4
        RETURNING updated_at`

	start := time.Now()
	err := r.q.QueryRow(ctx, query,
		cust.Name,
		cust.Email,
		cust.Phone,
		cust.CustomerID,
	).Scan(&cust.UpdatedAt)
	observe("UpdateCustomer", start, err)

	if err != nil {
		translatedErr := translateDBError(err, r.logger)
		if errors.Is(translatedErr, apperrors.ErrConflict) || errors.Is(translatedErr, apperrors.ErrNotFound) {
			return translatedErr
		}
		return fmt.Errorf("failed to update customer: %w", translatedErr)
	}

	r.logger.InfoContext(ctx, "Customer updated successfully", slog.Int64("customerID", cust.CustomerID))
	return nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, customerID int64) (*customer.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`

	start := time.Now()
	cust, err := scanCustomer(r.q.QueryRow(ctx, query, customerID))
	observe("FindCustomerByID", start, err)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.DebugContext(ctx, "Customer not found", slog.Int64("customerID", customerID))
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to query/scan customer by ID", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to get customer by ID: %w", apperrors.ErrDatabase, err)
	}
	return cust, nil
}

func customerLookupQuery(attr customer.Attribute) (string, error) {
	switch attr {
	case customer.AttributeEmail:
		return `SELECT ` + customerColumns + ` FROM customers
        WHERE email = $1 AND ($2::BIGINT IS NULL OR id <> $2)
        ORDER BY id ASC
        LIMIT 1`, nil
	default:
		return "", fmt.Errorf("%w: unknown customer attribute %q", apperrors.ErrInvalidArgument, attr)
	}
}

func (r *CustomerRepository) FindByAttribute(ctx context.Context, attr customer.Attribute, value string, excludeID *int64) (*customer.Customer, error) {
	query, err := customerLookupQuery(attr)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	cust, err := scanCustomer(r.q.QueryRow(ctx, query, value, excludeID))
	observe("FindCustomerByAttribute", start, err)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to look up customer by attribute", slog.String("attribute", string(attr)), slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to find customer by %s: %w", apperrors.ErrDatabase, attr, err)
	}
	return cust, nil
}

func (r *CustomerRepository) FindAll(ctx context.Context, page record.Page) ([]*customer.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers ORDER BY id ASC OFFSET $1 LIMIT $2`

	start := time.Now()
	rows, err := r.q.Query(ctx, query, page.Skip, page.Limit)
	if err != nil {
		observe("FindAllCustomers", start, err)
		r.logger.ErrorContext(ctx, "Failed to query customers", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to query customers: %w", apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	customers := make([]*customer.Customer, 0, page.Limit)
	for rows.Next() {
		cust, err := scanCustomer(rows)
		if err != nil {
			observe("FindAllCustomers", start, err)
			r.logger.ErrorContext(ctx, "Failed to scan customer row", slog.Any("error", err))
			return nil, fmt.Errorf("%w: failed to scan customer row: %w", apperrors.ErrDatabase, err)
		}
		customers = append(customers, cust)
	}

	err = rows.Err()
	observe("FindAllCustomers", start, err)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error iterating customer rows", slog.Any("error", err))
		return nil, fmt.Errorf("%w: error iterating customer rows: %w", apperrors.ErrDatabase, err)
	}

	return customers, nil
}

func (r *CustomerRepository) Delete(ctx context.Context, customerID int64) error {
	query := `DELETE FROM customers WHERE id = $1`

	start := time.Now()
	cmdTag, err := r.q.Exec(ctx, query, customerID)
	observe("DeleteCustomer", start, err)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to execute delete customer", slog.Any("error", err))
		return fmt.Errorf("%w: failed to delete customer: %w", apperrors.ErrDatabase, err)
	}

	if cmdTag.RowsAffected() == 0 {
		r.logger.WarnContext(ctx, "Delete affected zero rows, customer likely not found", slog.Int64("customerID", customerID))
		return apperrors.ErrNotFound
	}

	r.logger.InfoContext(ctx, "Customer deleted successfully", slog.Int64("customerID", customerID))
	return nil
}

func (r *CustomerRepository) Count(ctx context.Context) (int64, error) {
	var count int64

	start := time.Now()
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM customers`).Scan(&count)
	observe("CountCustomers", start, err)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to count customers", slog.Any("error", err))
		return 0, fmt.Errorf("%w: failed to count customers: %w", apperrors.ErrDatabase, err)
	}
	return count, nil
}

func scanCustomer(row pgx.Row) (*customer.Customer, error) {
	var cust customer.Customer
	err := row.Scan(
		&cust.CustomerID,
		&cust.Name,
		&cust.Email,
		&cust.Phone,
		&cust.CreatedAt,
		&cust.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &cust, nil
}
