package dto

import (
	"time"

	"customer-registry/internal/domain/customer"
	"customer-registry/internal/pkg/optional"
)

type CreateCustomerRequest struct {
	Name  string  `json:"name" validate:"required,min=1,max=100" example:"Alice Wonderland"`
	Email string  `json:"email" validate:"required,email,max=320" example:"alice@example.com"`
	Phone *string `json:"phone,omitempty" validate:"omitempty,max=20" example:"555-0100"`
}

func (r *CreateCustomerRequest) Validate() error {
	return validateStruct(r)
}

// UpdateCustomerRequest is a partial update: only keys present in the body
// are applied. A null phone clears it.
type UpdateCustomerRequest struct {
	Name  optional.Value[string]  `json:"name,omitzero" swaggertype:"string"`
	Email optional.Value[string]  `json:"email,omitzero" swaggertype:"string"`
	Phone optional.Value[*string] `json:"phone,omitzero" swaggertype:"string"`
}

func (r *UpdateCustomerRequest) Validate() error {
	if err := validatePresent("name", r.Name, "min=1,max=100"); err != nil {
		return err
	}
	if err := validatePresent("email", r.Email, "email,max=320"); err != nil {
		return err
	}
	return validateNullable("phone", r.Phone, "max=20")
}

func (r *UpdateCustomerRequest) ToUpdate() customer.Update {
	return customer.Update{
		Name:  r.Name,
		Email: r.Email,
		Phone: r.Phone,
	}
}

type CustomerResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewCustomerResponse(c *customer.Customer) CustomerResponse {
	return CustomerResponse{
		ID:        c.CustomerID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func NewCustomerListResponse(customers []*customer.Customer) []CustomerResponse {
	resp := make([]CustomerResponse, len(customers))
	for i, c := range customers {
		resp[i] = NewCustomerResponse(c)
	}
	return resp
}
