package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"customer-registry/internal/api/handler/dto"
	"customer-registry/internal/config"
	"customer-registry/internal/domain/user"
	"customer-registry/internal/pkg/apperrors"
)

type UserHandler struct {
	service user.UserService
	paging  config.PaginationConfig
	logger  *slog.Logger
}

func NewUserHandler(service user.UserService, paging config.PaginationConfig, logger *slog.Logger) *UserHandler {
	if service == nil {
		panic("UserService cannot be nil")
	}
	if logger == nil {
		panic("Logger cannot be nil")
	}
	return &UserHandler{
		service: service,
		paging:  paging,
		logger:  logger.With("component", "UserHandler"),
	}
}

// CreateUser handles POST /users
// @Summary Create a new user
// @Description Creates a user. Username and email must each be unused; username is checked first.
// @Tags Users
// @Accept json
// @Produce json
// @Param request body dto.CreateUserRequest true "User payload"
// @Success 201 {object} dto.UserResponse "User created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload"
// @Failure 409 {object} dto.ErrorResponse "Username or email already registered"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /users [post]
// @Security BearerAuth
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		h.logger.WarnContext(r.Context(), "Request validation failed", slog.Any("error", err))
		respondError(w, err)
		return
	}

	created, err := h.service.CreateUser(r.Context(), req.Username, req.Email, req.FullName)
	if err != nil {
		h.logger.Log(r.Context(), errorLevel(err), "Service failed to create user", slog.Any("error", err))
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "User created successfully", slog.Int64("userID", created.UserID))
	respondJSON(w, http.StatusCreated, dto.NewUserResponse(created))
}

// ListUsers handles GET /users
// @Summary List users
// @Description Retrieves users ordered by ID.
// @Tags Users
// @Produce json
// @Param skip query int false "Number of records to skip" Minimum(0) default(0)
// @Param limit query int false "Maximum number of records to return" Minimum(1) Maximum(500) default(100)
// @Success 200 {array} dto.UserResponse "List of users"
// @Failure 400 {object} dto.ErrorResponse "Invalid pagination parameters"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /users [get]
// @Security BearerAuth
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, err := getPageFromQuery(r, h.paging)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Invalid pagination parameters", slog.Any("error", err))
		respondError(w, err)
		return
	}

	users, err := h.service.ListUsers(r.Context(), page)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Service failed to list users", slog.Any("error", err))
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewUserListResponse(users))
}

// GetUser handles GET /users/{userID}
// @Summary Retrieve user details
// @Tags Users
// @Produce json
// @Param userID path int true "User ID" Minimum(1)
// @Success 200 {object} dto.UserResponse "User details retrieved"
// @Failure 400 {object} dto.ErrorResponse "Invalid user ID format"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /users/{userID} [get]
// @Security BearerAuth
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := getIDFromURL(r, "userID")
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to get user ID from URL", slog.Any("error", err))
		respondError(w, err)
		return
	}

	found, err := h.service.GetUser(r.Context(), userID)
	if err != nil {
		h.logger.Log(r.Context(), errorLevel(err), "Service failed to get user", slog.Any("error", err))
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewUserResponse(found))
}

// UpdateUser handles PUT /users/{userID}
// @Summary Update a user
// @Description Applies a partial update. Only fields present in the body change; a null full_name clears it.
// @Tags Users
// @Accept json
// @Produce json
// @Param userID path int true "User ID" Minimum(1)
// @Param request body dto.UpdateUserRequest true "Fields to change"
// @Success 200 {object} dto.UserResponse "Updated user"
// @Failure 400 {object} dto.ErrorResponse "Invalid user ID or request payload"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Failure 409 {object} dto.ErrorResponse "Username or email already registered"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /users/{userID} [put]
// @Security BearerAuth
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	userID, err := getIDFromURL(r, "userID")
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to get user ID from URL", slog.Any("error", err))
		respondError(w, err)
		return
	}

	var req dto.UpdateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		h.logger.WarnContext(r.Context(), "Request validation failed", slog.Any("error", err))
		respondError(w, err)
		return
	}

	updated, err := h.service.UpdateUser(r.Context(), userID, req.ToUpdate())
	if err != nil {
		h.logger.Log(r.Context(), errorLevel(err), "Service failed to update user", slog.Any("error", err))
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "User updated successfully", slog.Int64("userID", userID))
	respondJSON(w, http.StatusOK, dto.NewUserResponse(updated))
}

// DeleteUser handles DELETE /users/{userID}
// @Summary Delete a user
// @Tags Users
// @Produce json
// @Param userID path int true "User ID" Minimum(1)
// @Success 204 "User deleted"
// @Failure 400 {object} dto.ErrorResponse "Invalid user ID"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /users/{userID} [delete]
// @Security BearerAuth
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, err := getIDFromURL(r, "userID")
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to get user ID from URL", slog.Any("error", err))
		respondError(w, err)
		return
	}

	if err := h.service.DeleteUser(r.Context(), userID); err != nil {
		h.logger.Log(r.Context(), errorLevel(err), "Service failed to delete user", slog.Any("error", err))
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "User deleted successfully", slog.Int64("userID", userID))
	w.WriteHeader(http.StatusNoContent)
}
