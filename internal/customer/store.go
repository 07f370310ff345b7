package customer

import (
	"context"
	"errors"
)

var (
	ErrUsernameTaken      = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

type User struct {
	Username string
	Hash     []byte
}

// Store owns the registered users. Passwords are kept as bcrypt hashes, never
// in the clear.
type Store interface {
	Ping(ctx context.Context) error

	// Available reports whether the username is not yet registered.
	Available(ctx context.Context, username string) (bool, error)

	// Register adds the user, re-checking uniqueness under the store's own
	// lock. Returns ErrUsernameTaken on a duplicate.
	Register(ctx context.Context, username, password string) error

	// Verify returns nil iff a stored user matches both fields, otherwise
	// ErrInvalidCredentials.
	Verify(ctx context.Context, username, password string) error
}
