package customer

import (
	"time"

	"customer-registry/internal/domain/record"
	"customer-registry/internal/pkg/optional"
)

const Kind record.Kind = "Customer"

// Attribute names a unique customer column that can be looked up by value.
type Attribute string

const (
	AttributeEmail Attribute = "email"
)

type Customer struct {
	CustomerID int64     `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      *string   `json:"phone,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func NewCustomer(name, email string, phone *string) *Customer {
	now := time.Now()
	return &Customer{
		Name:      name,
		Email:     email,
		Phone:     phone,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Update is a partial update: only fields that are set are applied.
type Update struct {
	Name  optional.Value[string]
	Email optional.Value[string]
	Phone optional.Value[*string]
}

func (u Update) IsEmpty() bool {
	return !u.Name.IsSet() && !u.Email.IsSet() && !u.Phone.IsSet()
}

func (c *Customer) Apply(u Update) {
	if u.IsEmpty() {
		return
	}
	if name, ok := u.Name.Get(); ok {
		c.Name = name
	}
	if email, ok := u.Email.Get(); ok {
		c.Email = email
	}
	if phone, ok := u.Phone.Get(); ok {
		c.Phone = phone
	}
	c.UpdatedAt = time.Now()
}
