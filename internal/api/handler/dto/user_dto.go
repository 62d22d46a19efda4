package dto

import (
	"time"

	"customer-registry/internal/domain/user"
	"customer-registry/internal/pkg/optional"
)

type CreateUserRequest struct {
	Username string  `json:"username" validate:"required,min=3,max=50" example:"alice"`
	Email    string  `json:"email" validate:"required,email,max=320" example:"alice@example.com"`
	FullName *string `json:"full_name,omitempty" validate:"omitempty,max=100" example:"Alice Liddell"`
}

func (r *CreateUserRequest) Validate() error {
	return validateStruct(r)
}

type UpdateUserRequest struct {
	Username optional.Value[string]  `json:"username,omitzero" swaggertype:"string"`
	Email    optional.Value[string]  `json:"email,omitzero" swaggertype:"string"`
	FullName optional.Value[*string] `json:"full_name,omitzero" swaggertype:"string"`
}

func (r *UpdateUserRequest) Validate() error {
	if err := validatePresent("username", r.Username, "min=3,max=50"); err != nil {
		return err
	}
	if err := validatePresent("email", r.Email, "email,max=320"); err != nil {
		return err
	}
	return validateNullable("full_name", r.FullName, "max=100")
}

func (r *UpdateUserRequest) ToUpdate() user.Update {
	return user.Update{
		Username: r.Username,
		Email:    r.Email,
		FullName: r.FullName,
	}
}

type UserResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  *string   `json:"full_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:        u.UserID,
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func NewUserListResponse(users []*user.User) []UserResponse {
	resp := make([]UserResponse, len(users))
	for i, u := range users {
		resp[i] = NewUserResponse(u)
	}
	return resp
}
