// Package record holds the lookup and uniqueness checks shared by every
// record kind. Both helpers are pure functions of store state at call time:
// they do not log, retry or mutate anything, and they report outcomes only
// through apperrors.ErrNotFound and apperrors.ErrConflict.
package record

import (
	"context"
	"errors"
	"strings"

	"customer-registry/internal/pkg/apperrors"
)

// Kind is the human readable name of a record kind, used in error messages.
type Kind string

// GetOrNotFound loads the record with the given id through find. A missing
// record, whether reported as apperrors.ErrNotFound or as a nil record, is
// returned as a NotFoundError for kind. Other errors pass through unchanged.
func GetOrNotFound[T any](
	ctx context.Context,
	find func(ctx context.Context, id int64) (*T, error),
	kind Kind,
	id int64,
) (*T, error) {
	rec, err := find(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError(string(kind), id)
		}
		return nil, err
	}
	if rec == nil {
		return nil, apperrors.NewNotFoundError(string(kind), id)
	}
	return rec, nil
}

// EnsureUnique fails with a ConflictError when a record other than excludeID
// already holds value for attr. find must return the first matching record
// that is not excludeID, or apperrors.ErrNotFound when there is none.
func EnsureUnique[T any, A ~string](
	ctx context.Context,
	find func(ctx context.Context, attr A, value string, excludeID *int64) (*T, error),
	kind Kind,
	attr A,
	value string,
	excludeID *int64,
) error {
	existing, err := find(ctx, attr, value, excludeID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		return err
	}
	if existing == nil {
		return nil
	}
	return Conflict(kind, string(attr))
}

// Conflict builds the error reported when attr is already held by another
// record of kind, e.g. "Email already registered".
func Conflict(kind Kind, attr string) error {
	return apperrors.NewConflictError(string(kind), attr, conflictMessage(attr))
}

// ExcludeID returns a pointer suitable for EnsureUnique's excludeID.
func ExcludeID(id int64) *int64 {
	return &id
}

func conflictMessage(attr string) string {
	label := strings.ReplaceAll(attr, "_", " ")
	if label == "" {
		return "Value already registered"
	}
	return strings.ToUpper(label[:1]) + label[1:] + " already registered"
}
