package google

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testClientID = "client-123.apps.googleusercontent.com"

func genRSA(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	pk, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("gen key: %v", err)
	}
	return pk
}

func googleClaims(now time.Time) jwt.MapClaims {
	return jwt.MapClaims{
		"iss":     DefaultIssuer,
		"aud":     testClientID,
		"sub":     "1094",
		"email":   "a@x.com",
		"name":    "A",
		"picture": "https://lh3.googleusercontent.com/a/p",
		"iat":     now.Unix(),
		"exp":     now.Add(time.Hour).Unix(),
	}
}

func signToken(t *testing.T, pk *rsa.PrivateKey, kid string, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	if kid != "" {
		tok.Header["kid"] = kid
	}
	s, err := tok.SignedString(pk)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}
