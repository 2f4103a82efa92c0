package google

import (
	"context"
	"fmt"

	"google-auth-service/internal/auth"

	"github.com/coreos/go-oidc/v3/oidc"
)

// IDTokenVerifier checks Google ID tokens locally against the keys
// supplied by a KeySource: signature, issuer, audience and expiry.
type IDTokenVerifier struct {
	keys   KeySource
	issuer string
	config *oidc.Config
}

func NewIDTokenVerifier(cfg Config, keys KeySource) (*IDTokenVerifier, error) {
	cfg = cfg.withDefaults()
	if cfg.ClientID == "" {
		return nil, errMissingClientID
	}
	if keys == nil {
		return nil, fmt.Errorf("google id token verifier requires a key source")
	}

	return &IDTokenVerifier{
		keys:   keys,
		issuer: cfg.Issuer,
		config: &oidc.Config{
			ClientID:             cfg.ClientID,
			SupportedSigningAlgs: []string{oidc.RS256},
		},
	}, nil
}

// VerifyIDToken returns the identity claims of a valid token.
func (v *IDTokenVerifier) VerifyIDToken(ctx context.Context, token string) (auth.ProviderClaims, error) {
	keys, err := v.keys.CurrentKeys(ctx)
	if err != nil {
		return auth.ProviderClaims{}, fmt.Errorf("%w: signing keys unavailable: %v", auth.ErrProviderUnavailable, err)
	}

	verifier := oidc.NewVerifier(v.issuer, &oidc.StaticKeySet{PublicKeys: keys}, v.config)

	idToken, err := verifier.Verify(ctx, token)
	if err != nil {
		return auth.ProviderClaims{}, fmt.Errorf("%w: id_token verification failed: %v", auth.ErrInvalidCredential, err)
	}

	var claims auth.ProviderClaims
	if err := idToken.Claims(&claims); err != nil {
		return auth.ProviderClaims{}, fmt.Errorf("%w: id_token claims parse failed: %v", auth.ErrInvalidCredential, err)
	}

	return claims, nil
}
