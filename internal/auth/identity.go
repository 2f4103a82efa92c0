package auth

import (
	"fmt"
	"strings"
)

// ProviderClaims is the raw identity payload produced by a provider
// verifier, before any normalization or required-field checks.
type ProviderClaims struct {
	Subject string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// Identity represents a normalized external authentication identity
// returned by the identity provider. It contains facts only, no decisions.
type Identity struct {
	ProviderSubjectID string // provider-scoped unique user identifier (sub)
	Email             string // lower-cased, trimmed
	DisplayName       string
	AvatarURL         string
}

// ResolveIdentity turns verified provider claims into an Identity.
// sub and email are required; everything else is carried as-is.
func ResolveIdentity(claims ProviderClaims) (*Identity, error) {
	sub := strings.TrimSpace(claims.Subject)
	email := NormalizeEmail(claims.Email)

	var missing []string
	if sub == "" {
		missing = append(missing, "sub")
	}
	if email == "" {
		missing = append(missing, "email")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", ErrMalformedIdentity, strings.Join(missing, ", "))
	}

	return &Identity{
		ProviderSubjectID: sub,
		Email:             email,
		DisplayName:       claims.Name,
		AvatarURL:         claims.Picture,
	}, nil
}

// NormalizeEmail is the canonical form of the user identity key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
