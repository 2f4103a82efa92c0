package google

import (
	"context"
	"crypto"
	"errors"
	"fmt"

	"github.com/MicahParks/jwkset"
	keyfunc "github.com/MicahParks/keyfunc/v3"
)

// KeySource yields the provider's current ID token signing keys.
type KeySource interface {
	CurrentKeys(ctx context.Context) ([]crypto.PublicKey, error)
}

// StaticKeys is a fixed key set.
type StaticKeys []crypto.PublicKey

func (s StaticKeys) CurrentKeys(context.Context) ([]crypto.PublicKey, error) {
	if len(s) == 0 {
		return nil, errors.New("no signing keys configured")
	}
	return append([]crypto.PublicKey(nil), s...), nil
}

// JWKSKeySource serves keys from a remote JWKS document that keyfunc
// refreshes in the background.
type JWKSKeySource struct {
	kf keyfunc.Keyfunc
}

// NewJWKSKeySource fetches the JWKS at url once and keeps it fresh until
// ctx is done.
func NewJWKSKeySource(ctx context.Context, url string) (*JWKSKeySource, error) {
	if url == "" {
		return nil, errors.New("jwks url is required")
	}

	kf, err := keyfunc.NewDefaultCtx(ctx, []string{url})
	if err != nil {
		return nil, fmt.Errorf("jwks init failed: %w", err)
	}

	return &JWKSKeySource{kf: kf}, nil
}

func (s *JWKSKeySource) CurrentKeys(ctx context.Context) ([]crypto.PublicKey, error) {
	jwks, err := s.kf.Storage().KeyReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("read jwks: %w", err)
	}

	keys := make([]crypto.PublicKey, 0, len(jwks))
	for _, jwk := range jwks {
		if !signingKey(jwk) {
			continue
		}
		if k := jwk.Key(); k != nil {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return nil, errors.New("jwks contains no usable keys")
	}
	return keys, nil
}

// signingKey reports whether jwk may verify signatures. Keys published
// for encryption only are skipped.
func signingKey(jwk jwkset.JWK) bool {
	return jwk.Marshal().USE != jwkset.UseEnc
}

var (
	_ KeySource = StaticKeys(nil)
	_ KeySource = (*JWKSKeySource)(nil)
)
