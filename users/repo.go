package users

import "errors"

var (
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned when a create collides with an existing
	// email. Callers must not leak this distinction to clients.
	ErrDuplicateEmail = errors.New("email already registered")
)

type UserRepo interface {
	Create(user *User) error
	GetByEmail(email string) (*User, error)
	GetByID(id string) (*User, error)
	List(offset, limit int) ([]*User, error)
	UpdatePassword(id, passwordHash string) error
	Count() (int64, error)
}
