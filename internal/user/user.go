package user

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("user with this email already exists")
)

// Record is the local user. Email is the only identity key: exactly one
// Record exists per email, whichever path created it.
type Record struct {
	ID                string
	Email             string
	DisplayName       string
	PasswordHash      *string // nil for accounts created through Google
	ProviderSubjectID *string // nil for directly registered accounts
	AvatarURL         string
	CreatedAt         time.Time
}

// Store persists user records. Implementations must enforce email
// uniqueness themselves; the service holds no lock.
type Store interface {
	// FindByEmail returns ErrNotFound when no record has this email.
	FindByEmail(ctx context.Context, email string) (*Record, error)

	// Create inserts rec, assigning ID and CreatedAt. It returns
	// ErrDuplicateEmail if the email is taken and never writes partially.
	Create(ctx context.Context, rec Record) (*Record, error)
}
