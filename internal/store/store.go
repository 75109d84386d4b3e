package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// User is an identity record created on first successful login. The email
// is the primary identifier; the display name may be overwritten on a
// repeat login.
type User struct {
	ID       int64
	Email    string
	FullName string
}

// Repository is the narrow persistence interface consumed by the auth
// service. Each operation is scoped to a single user-email key; the
// implementation must make individual upserts atomic but needs no
// cross-user locking.
type Repository interface {
	// UpsertUser inserts or replaces the user row keyed by email.
	UpsertUser(ctx context.Context, email, fullName string) error

	// GetUser fetches a user by email. Returns ErrNotFound when absent.
	GetUser(ctx context.Context, email string) (User, error)

	// UpsertCredential inserts or replaces the credential blob for email.
	UpsertCredential(ctx context.Context, email string, tokenJSON []byte) error

	// GetCredential fetches the credential blob for email. Returns
	// ErrNotFound when absent.
	GetCredential(ctx context.Context, email string) ([]byte, error)

	// DeleteCredential removes the credential blob for email. Deleting a
	// missing credential is not an error.
	DeleteCredential(ctx context.Context, email string) error
}
