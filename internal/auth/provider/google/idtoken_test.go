package google

import (
	"context"
	"crypto"
	"errors"
	"testing"
	"time"

	"google-auth-service/internal/auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingKeys struct{ err error }

func (f failingKeys) CurrentKeys(context.Context) ([]crypto.PublicKey, error) { return nil, f.err }

func newTestIDVerifier(t *testing.T, keys KeySource) *IDTokenVerifier {
	t.Helper()
	v, err := NewIDTokenVerifier(Config{ClientID: testClientID}, keys)
	require.NoError(t, err)
	return v
}

func TestNewIDTokenVerifier_RequiresClientID(t *testing.T) {
	t.Parallel()

	_, err := NewIDTokenVerifier(Config{}, StaticKeys{})
	require.Error(t, err)

	_, err = NewIDTokenVerifier(Config{ClientID: testClientID}, nil)
	require.Error(t, err)
}

func TestIDTokenVerifier_Valid(t *testing.T) {
	t.Parallel()

	pk := genRSA(t)
	v := newTestIDVerifier(t, StaticKeys{&pk.PublicKey})

	claims, err := v.VerifyIDToken(context.Background(), signToken(t, pk, "k1", googleClaims(time.Now())))
	require.NoError(t, err)
	assert.Equal(t, auth.ProviderClaims{
		Subject: "1094",
		Email:   "a@x.com",
		Name:    "A",
		Picture: "https://lh3.googleusercontent.com/a/p",
	}, claims)
}

func TestIDTokenVerifier_AcceptsSchemelessGoogleIssuer(t *testing.T) {
	t.Parallel()

	pk := genRSA(t)
	v := newTestIDVerifier(t, StaticKeys{&pk.PublicKey})

	c := googleClaims(time.Now())
	c["iss"] = "accounts.google.com"

	_, err := v.VerifyIDToken(context.Background(), signToken(t, pk, "k1", c))
	require.NoError(t, err)
}

// email_verified is not consulted; the email claim is taken as issued.
func TestIDTokenVerifier_IgnoresEmailVerified(t *testing.T) {
	t.Parallel()

	pk := genRSA(t)
	v := newTestIDVerifier(t, StaticKeys{&pk.PublicKey})

	c := googleClaims(time.Now())
	c["email_verified"] = false

	claims, err := v.VerifyIDToken(context.Background(), signToken(t, pk, "k1", c))
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", claims.Email)
}

func TestIDTokenVerifier_PicksMatchingKey(t *testing.T) {
	t.Parallel()

	other := genRSA(t)
	pk := genRSA(t)
	v := newTestIDVerifier(t, StaticKeys{&other.PublicKey, &pk.PublicKey})

	_, err := v.VerifyIDToken(context.Background(), signToken(t, pk, "", googleClaims(time.Now())))
	require.NoError(t, err)
}

func TestIDTokenVerifier_Rejects(t *testing.T) {
	t.Parallel()

	pk := genRSA(t)
	attacker := genRSA(t)
	now := time.Now()

	tests := []struct {
		name  string
		token func() string
	}{
		{"not a jwt", func() string { return "definitely-not-a-jwt" }},
		{"empty", func() string { return "" }},
		{"wrong signing key", func() string { return signToken(t, attacker, "k1", googleClaims(now)) }},
		{"audience mismatch", func() string {
			c := googleClaims(now)
			c["aud"] = "someone-else.apps.googleusercontent.com"
			return signToken(t, pk, "k1", c)
		}},
		{"expired", func() string {
			c := googleClaims(now)
			c["iat"] = now.Add(-2 * time.Hour).Unix()
			c["exp"] = now.Add(-time.Hour).Unix()
			return signToken(t, pk, "k1", c)
		}},
		{"issuer mismatch", func() string {
			c := googleClaims(now)
			c["iss"] = "https://evil.example.com"
			return signToken(t, pk, "k1", c)
		}},
		{"hmac signed", func() string {
			tok := jwt.NewWithClaims(jwt.SigningMethodHS256, googleClaims(now))
			s, err := tok.SignedString([]byte("shared-secret"))
			require.NoError(t, err)
			return s
		}},
	}

	v := newTestIDVerifier(t, StaticKeys{&pk.PublicKey})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.VerifyIDToken(context.Background(), tt.token())
			require.Error(t, err)
			assert.ErrorIs(t, err, auth.ErrInvalidCredential)
			assert.NotErrorIs(t, err, auth.ErrProviderUnavailable)
		})
	}
}

func TestIDTokenVerifier_KeySourceFailure(t *testing.T) {
	t.Parallel()

	pk := genRSA(t)
	v := newTestIDVerifier(t, failingKeys{err: errors.New("jwks fetch timed out")})

	_, err := v.VerifyIDToken(context.Background(), signToken(t, pk, "k1", googleClaims(time.Now())))
	require.Error(t, err)
	assert.ErrorIs(t, err, auth.ErrProviderUnavailable)
	assert.NotErrorIs(t, err, auth.ErrInvalidCredential)
}

func TestIDTokenVerifier_EmptyStaticKeys(t *testing.T) {
	t.Parallel()

	pk := genRSA(t)
	v := newTestIDVerifier(t, StaticKeys{})

	_, err := v.VerifyIDToken(context.Background(), signToken(t, pk, "k1", googleClaims(time.Now())))
	assert.ErrorIs(t, err, auth.ErrProviderUnavailable)
}
