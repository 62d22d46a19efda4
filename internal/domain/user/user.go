package user

import (
	"time"

	"customer-registry/internal/domain/record"
	"customer-registry/internal/pkg/optional"
)

const Kind record.Kind = "User"

// Attribute names a unique user column. Uniqueness is checked in declaration order.
type Attribute string

const (
	AttributeUsername Attribute = "username"
	AttributeEmail    Attribute = "email"
)

type User struct {
	UserID    int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  *string   `json:"full_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewUser(username, email string, fullName *string) *User {
	now := time.Now()
	return &User{
		Username:  username,
		Email:     email,
		FullName:  fullName,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

type Update struct {
	Username optional.Value[string]
	Email    optional.Value[string]
	FullName optional.Value[*string]
}

func (u Update) IsEmpty() bool {
	return !u.Username.IsSet() && !u.Email.IsSet() && !u.FullName.IsSet()
}

func (u *User) Apply(upd Update) {
	if upd.IsEmpty() {
		return
	}
	if username, ok := upd.Username.Get(); ok {
		u.Username = username
	}
	if email, ok := upd.Email.Get(); ok {
		u.Email = email
	}
	if fullName, ok := upd.FullName.Get(); ok {
		u.FullName = fullName
	}
	u.UpdatedAt = time.Now()
}
