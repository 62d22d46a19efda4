package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"customer-registry/internal/domain/record"
	"customer-registry/internal/domain/user"
	"customer-registry/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5"
)

const userColumns = `id, username, email, full_name, created_at, updated_at`

type UserRepository struct {
	db     DBPool
	q      Querier
	inTx   bool
	logger *slog.Logger
}

var _ user.UserRepository = (*UserRepository)(nil)

func NewUserRepository(db DBPool, logger *slog.Logger) *UserRepository {
	if db == nil {
		panic("DBPool cannot be nil for UserRepository")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("No logger provided to NewUserRepository, using default stderr handler")
	}
	return &UserRepository{
		db:     db,
		q:      db,
		logger: logger.With("component", "UserRepository"),
	}
}

func (r *UserRepository) WithinTx(ctx context.Context, fn func(ctx context.Context, repo user.UserRepository) error) error {
	if r.inTx {
		return fn(ctx, r)
	}
	return withinTx(ctx, r.db, r.logger, func(tx pgx.Tx) error {
		return fn(ctx, &UserRepository{db: r.db, q: tx, inTx: true, logger: r.logger})
	})
}

func (r *UserRepository) Save(ctx context.Context, u *user.User) error {
	if u == nil {
		return fmt.Errorf("%w: user cannot be nil", apperrors.ErrInvalidArgument)
	}

	var (
		query string
		args  []any
		dest  []any
		name  string
	)
	if u.UserID == 0 {
		name = "InsertUser"
		query = `
        INSERT INTO users (username, email, full_name, created_at, updated_at)
        VALUES ($1, $2, $3, NOW(), NOW())
        RETURNING id, created_at, updated_at`
		args = []any{u.Username, u.Email, u.FullName}
		dest = []any{&u.UserID, &u.CreatedAt, &u.UpdatedAt}
	} else {
		name = "UpdateUser"
		query = `
        UPDATE users
        SET username = $1,
            email = $2,
            full_name = $3,
            updated_at = NOW()
        WHERE id = $4
        RETURNING updated_at`
		args = []any{u.Username, u.Email, u.FullName, u.UserID}
		dest = []any{&u.UpdatedAt}
	}

	start := time.Now()
	err := r.q.QueryRow(ctx, query, args...).Scan(dest...)
	observe(name, start, err)

	if err != nil {
		translatedErr := translateDBError(err, r.logger)
		if errors.Is(translatedErr, apperrors.ErrConflict) || errors.Is(translatedErr, apperrors.ErrNotFound) {
			return translatedErr
		}
		return fmt.Errorf("failed to save user: %w", translatedErr)
	}

	r.logger.InfoContext(ctx, "User saved successfully", slog.Int64("userID", u.UserID), slog.String("query", name))
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, userID int64) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	start := time.Now()
	u, err := scanUser(r.q.QueryRow(ctx, query, userID))
	observe("FindUserByID", start, err)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to query/scan user by ID", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to get user by ID: %w", apperrors.ErrDatabase, err)
	}
	return u, nil
}

func userLookupQuery(attr user.Attribute) (string, error) {
	switch attr {
	case user.AttributeUsername:
		return `SELECT ` + userColumns + ` FROM users
        WHERE username = $1 AND ($2::BIGINT IS NULL OR id <> $2)
        ORDER BY id ASC
        LIMIT 1`, nil
	case user.AttributeEmail:
		return `SELECT ` + userColumns + ` FROM users
        WHERE email = $1 AND ($2::BIGINT IS NULL OR id <> $2)
        ORDER BY id ASC
        LIMIT 1`, nil
	default:
		return "", fmt.Errorf("%w: unknown user attribute %q", apperrors.ErrInvalidArgument, attr)
	}
}

func (r *UserRepository) FindByAttribute(ctx context.Context, attr user.Attribute, value string, excludeID *int64) (*user.User, error) {
	query, err := userLookupQuery(attr)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	u, err := scanUser(r.q.QueryRow(ctx, query, value, excludeID))
	observe("FindUserByAttribute", start, err)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to look up user by attribute", slog.String("attribute", string(attr)), slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to find user by %s: %w", apperrors.ErrDatabase, attr, err)
	}
	return u, nil
}

func (r *UserRepository) FindAll(ctx context.Context, page record.Page) ([]*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY id ASC OFFSET $1 LIMIT $2`

	start := time.Now()
	rows, err := r.q.Query(ctx, query, page.Skip, page.Limit)
	if err != nil {
		observe("FindAllUsers", start, err)
		r.logger.ErrorContext(ctx, "Failed to query users", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to query users: %w", apperrors.ErrDatabase, err)
	}

	users, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*user.User, error) {
		return scanUser(row)
	})
	observe("FindAllUsers", start, err)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to collect user rows", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to collect user rows: %w", apperrors.ErrDatabase, err)
	}
	return users, nil
}

func (r *UserRepository) Delete(ctx context.Context, userID int64) error {
	start := time.Now()
	cmdTag, err := r.q.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	observe("DeleteUser", start, err)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to execute delete user", slog.Any("error", err))
		return fmt.Errorf("%w: failed to delete user: %w", apperrors.ErrDatabase, err)
	}

	if cmdTag.RowsAffected() == 0 {
		r.logger.WarnContext(ctx, "Delete affected zero rows, user likely not found", slog.Int64("userID", userID))
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var count int64

	start := time.Now()
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	observe("CountUsers", start, err)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to count users", slog.Any("error", err))
		return 0, fmt.Errorf("%w: failed to count users: %w", apperrors.ErrDatabase, err)
	}
	return count, nil
}

func scanUser(row pgx.Row) (*user.User, error) {
	var u user.User
	err := row.Scan(
		&u.UserID,
		&u.Username,
		&u.Email,
		&u.FullName,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
