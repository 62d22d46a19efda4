package user

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
	"customer-registry/internal/pkg/optional"
)

type UserService interface {
	CreateUser(ctx context.Context, username, email string, fullName *string) (*User, error)
	GetUser(ctx context.Context, userID int64) (*User, error)
	ListUsers(ctx context.Context, page record.Page) ([]*User, error)
	UpdateUser(ctx context.Context, userID int64, update Update) (*User, error)
	DeleteUser(ctx context.Context, userID int64) error
	CountUsers(ctx context.Context) (int64, error)
}

var _ UserService = (*userService)(nil)

type userService struct {
	repo   UserRepository
	pub    EventPublisher
	logger *slog.Logger
}

func NewUserService(repo UserRepository, publisher EventPublisher, logger *slog.Logger) UserService {
	if repo == nil {
		panic("user repository cannot be nil")
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("No logger provided to NewUserService, using default stderr handler")
	}

	if publisher == nil {
		logger.Warn("No event publisher provided to NewUserService, events will be dropped")
		publisher = event.NewNoopPublisher(logger)
	}

	return &userService{
		repo:   repo,
		pub:    publisher,
		logger: logger.With(slog.String("component", "userService")),
	}
}

func NewUserEvent(u *User) event.UserEvent {
	evt := event.UserEvent{Timestamp: time.Now()}
	if u == nil {
		return evt
	}
	evt.Payload = event.UserEventPayload{
		UserID:    u.UserID,
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	return evt
}

// ensureUnique checks the unique attributes present in the payload, username
// before email, and stops at the first conflict.
func ensureUnique(ctx context.Context, repo UserRepository, username, email optional.Value[string], excludeID *int64) error {
	if v, ok := username.Get(); ok {
		if err := record.EnsureUnique(ctx, repo.FindByAttribute, Kind, AttributeUsername, v, excludeID); err != nil {
			return err
		}
	}
	if v, ok := email.Get(); ok {
		if err := record.EnsureUnique(ctx, repo.FindByAttribute, Kind, AttributeEmail, v, excludeID); err != nil {
			return err
		}
	}
	return nil
}

func (s *userService) fail(ctx context.Context, logger *slog.Logger, msg string, err error) error {
	var conflictErr *apperrors.ConflictError
	switch {
	case errors.As(err, &conflictErr):
		monitoring.RecordConflict(string(Kind), conflictErr.Field)
		logger.WarnContext(ctx, msg, slog.String("field", conflictErr.Field), slog.Any("error", err))
		return err
	case errors.Is(err, apperrors.ErrNotFound):
		logger.WarnContext(ctx, msg, slog.Any("error", err))
		return err
	default:
		logger.ErrorContext(ctx, msg, slog.Any("error", err))
		return fmt.Errorf("%s: %w", msg, err)
	}
}

func (s *userService) CreateUser(ctx context.Context, username, email string, fullName *string) (*User, error) {
	logger := s.logger.With(slog.String("username", username))
	logger.InfoContext(ctx, "Attempting to create new user")

	u := NewUser(username, email, fullName)
	err := s.repo.WithinTx(ctx, func(ctx context.Context, repo UserRepository) error {
		if err := ensureUnique(ctx, repo, optional.Of(username), optional.Of(email), nil); err != nil {
			return err
		}
		return repo.Save(ctx, u)
	})
	if err != nil {
		return nil, s.fail(ctx, logger, "failed to create user", err)
	}

	logger = logger.With(slog.Int64("userID", u.UserID))
	monitoring.RecordCreated(string(Kind))
	if pubErr := s.pub.PublishUserCreated(ctx, NewUserEvent(u)); pubErr != nil {
		logger.ErrorContext(ctx, "User created, but FAILED to publish creation event", slog.Any("error", pubErr))
	}

	logger.InfoContext(ctx, "Successfully created new user")
	return u, nil
}

func (s *userService) GetUser(ctx context.Context, userID int64) (*User, error) {
	logger := s.logger.With(slog.Int64("userID", userID))

	u, err := record.GetOrNotFound(ctx, s.repo.FindByID, Kind, userID)
	if err != nil {
		return nil, s.fail(ctx, logger, fmt.Sprintf("failed to get user %d", userID), err)
	}
	return u, nil
}

func (s *userService) ListUsers(ctx context.Context, page record.Page) ([]*User, error) {
	users, err := s.repo.FindAll(ctx, page)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository error listing users", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *userService) UpdateUser(ctx context.Context, userID int64, update Update) (*User, error) {
	logger := s.logger.With(slog.Int64("userID", userID))
	logger.InfoContext(ctx, "Attempting to update user")

	var u *User
	err := s.repo.WithinTx(ctx, func(ctx context.Context, repo UserRepository) error {
		current, err := record.GetOrNotFound(ctx, repo.FindByID, Kind, userID)
		if err != nil {
			return err
		}
		u = current

		if update.IsEmpty() {
			return nil
		}
		if err := ensureUnique(ctx, repo, update.Username, update.Email, record.ExcludeID(userID)); err != nil {
			return err
		}

		u.Apply(update)
		return repo.Save(ctx, u)
	})
	if err != nil {
		return nil, s.fail(ctx, logger, fmt.Sprintf("failed to update user %d", userID), err)
	}

	if update.IsEmpty() {
		logger.InfoContext(ctx, "Empty update, nothing to save")
		return u, nil
	}

	monitoring.RecordUpdated(string(Kind))
	if pubErr := s.pub.PublishUserUpdated(ctx, NewUserEvent(u)); pubErr != nil {
		logger.ErrorContext(ctx, "User updated, but FAILED to publish update event", slog.Any("error", pubErr))
	}

	logger.InfoContext(ctx, "Successfully updated user")
	return u, nil
}

func (s *userService) DeleteUser(ctx context.Context, userID int64) error {
	logger := s.logger.With(slog.Int64("userID", userID))
	logger.InfoContext(ctx, "Attempting to delete user")

	var deleted *User
	err := s.repo.WithinTx(ctx, func(ctx context.Context, repo UserRepository) error {
		current, err := record.GetOrNotFound(ctx, repo.FindByID, Kind, userID)
		if err != nil {
			return err
		}
		deleted = current
		return repo.Delete(ctx, userID)
	})
	if err != nil {
		return s.fail(ctx, logger, fmt.Sprintf("failed to delete user %d", userID), err)
	}

	monitoring.RecordDeleted(string(Kind))
	if pubErr := s.pub.PublishUserDeleted(ctx, NewUserEvent(deleted)); pubErr != nil {
		logger.ErrorContext(ctx, "User deleted, but FAILED to publish deletion event", slog.Any("error", pubErr))
	}

	logger.InfoContext(ctx, "Successfully deleted user")
	return nil
}

func (s *userService) CountUsers(ctx context.Context) (int64, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository error counting users", slog.Any("error", err))
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}
