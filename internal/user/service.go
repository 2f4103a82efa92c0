package user

import (
	"context"
	"errors"
	"fmt"

	"google-auth-service/internal/auth"
)

// Service resolves verified identities to local users.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// FindOrCreate returns the record for identity.Email, creating it on the
// first call. An existing record is returned untouched: later logins never
// overwrite or backfill fields. created reports whether this call wrote.
func (s *Service) FindOrCreate(ctx context.Context, identity *auth.Identity) (rec *Record, created bool, err error) {
	if identity == nil {
		return nil, false, fmt.Errorf("%w: identity is nil", auth.ErrInternal)
	}

	rec, err = s.store.FindByEmail(ctx, identity.Email)
	if err == nil {
		return rec, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, fmt.Errorf("%w: find user: %v", auth.ErrStorageFailure, err)
	}

	subject := identity.ProviderSubjectID
	rec, err = s.store.Create(ctx, Record{
		Email:             identity.Email,
		DisplayName:       identity.DisplayName,
		PasswordHash:      nil,
		ProviderSubjectID: &subject,
		AvatarURL:         identity.AvatarURL,
	})
	if err == nil {
		return rec, true, nil
	}
	if !errors.Is(err, ErrDuplicateEmail) {
		return nil, false, fmt.Errorf("%w: create user: %v", auth.ErrStorageFailure, err)
	}

	// Lost the creation race; the winner's record is authoritative.
	rec, err = s.store.FindByEmail(ctx, identity.Email)
	if err != nil {
		return nil, false, fmt.Errorf("%w: re-read user after conflict: %v", auth.ErrStorageFailure, err)
	}
	return rec, false, nil
}
