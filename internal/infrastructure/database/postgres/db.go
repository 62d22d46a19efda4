package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"customer-registry/internal/domain/customer"
	"customer-registry/internal/domain/record"
	"customer-registry/internal/domain/user"
	"customer-registry/internal/infrastructure/monitoring"
	"customer-registry/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pashagolub/pgxmock/v3"
)

const pgUniqueViolation = "23505"

type DBPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
	Close()
}

// Querier is what repositories run statements against: the pool outside a
// transaction, the pgx.Tx inside one.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

var _ DBPool = (*pgxpool.Pool)(nil)

var _ DBPool = (pgxmock.PgxPoolIface)(nil)

var _ Querier = (pgx.Tx)(nil)

var errMsgFormat = "%w: %w"

type uniqueConstraint struct {
	kind  record.Kind
	field string
}

var uniqueConstraints = map[string]uniqueConstraint{
	"customers_email_key": {kind: customer.Kind, field: string(customer.AttributeEmail)},
	"users_username_key":  {kind: user.Kind, field: string(user.AttributeUsername)},
	"users_email_key":     {kind: user.Kind, field: string(user.AttributeEmail)},
}

// translateDBError maps driver errors onto apperrors. A unique violation on a
// known constraint becomes the same conflict the uniqueness guard reports.
func translateDBError(err error, contextLogger *slog.Logger) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == pgUniqueViolation {
			contextLogger.Warn("Database unique constraint violation", "detail", pgErr.Detail, "constraint", pgErr.ConstraintName)
			if c, ok := uniqueConstraints[pgErr.ConstraintName]; ok {
				return record.Conflict(c.kind, c.field)
			}
			return fmt.Errorf("%w: %s", apperrors.ErrConflict, pgErr.ConstraintName)
		}

		contextLogger.Error("PostgreSQL specific error", "code", pgErr.Code, "message", pgErr.Message, "detail", pgErr.Detail)
		return fmt.Errorf("%w: db error code %s: %w", apperrors.ErrDatabase, pgErr.Code, err)
	}

	contextLogger.Error("Generic database error", "error", err)
	return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
}

// withinTx begins a transaction, hands it to fn and commits when fn succeeds.
// Every failure path rolls back.
func withinTx(ctx context.Context, db DBPool, logger *slog.Logger, fn func(tx pgx.Tx) error) (err error) {
	logger.DebugContext(ctx, "Beginning transaction")
	tx, err := db.Begin(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to begin transaction", slog.Any("error", err))
		return fmt.Errorf("%w: failed to begin transaction: %w", apperrors.ErrDatabase, err)
	}

	defer func() {
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			logger.ErrorContext(ctx, "Failed to rollback transaction", slog.Any("error", rbErr))
			return
		}
		logger.DebugContext(ctx, "Transaction rolled back")
	}()

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		logger.ErrorContext(ctx, "Failed to commit transaction", slog.Any("error", err))
		return fmt.Errorf("%w: failed to commit transaction: %w", apperrors.ErrDatabase, err)
	}
	logger.DebugContext(ctx, "Transaction committed")
	return nil
}

func observe(queryName string, start time.Time, err error) {
	status := "success"
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		status = "error"
	}
	monitoring.RecordDBQuery(queryName, status, time.Since(start))
}
