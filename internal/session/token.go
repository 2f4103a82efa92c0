package session

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// TokenTTL is the fixed lifetime of a session token. There is no
// refresh; signing in again is the only way to renew.
const TokenTTL = 30 * 24 * time.Hour

// MinSecretLength is the minimum HS256 signing secret size in bytes.
const MinSecretLength = 32

var (
	ErrMissingSecret = errors.New("session: signing secret is too short")
	ErrInvalidToken  = errors.New("session: invalid token")
)

// Token is an issued session credential. Nothing about it is stored
// server side.
type Token struct {
	Value     string
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Claims is the signed payload. ID duplicates the subject under the
// claim name older clients read.
type Claims struct {
	ID string `json:"id"`
	jwt.RegisteredClaims
}

// Issuer mints and validates HS256 session tokens with one process-wide
// secret.
type Issuer struct {
	secret []byte
	now    func() time.Time
}

type Option func(*Issuer)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) {
		if now != nil {
			i.now = now
		}
	}
}

func NewIssuer(secret string, opts ...Option) (*Issuer, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrMissingSecret
	}

	i := &Issuer{
		secret: []byte(secret),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// Issue mints a token for userID valid for TokenTTL.
func (i *Issuer) Issue(userID string) (Token, error) {
	if userID == "" {
		return Token{}, errors.New("session: user id is required")
	}

	// JWT dates have second resolution.
	now := i.now().UTC().Truncate(time.Second)
	exp := now.Add(TokenTTL)

	claims := Claims{
		ID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return Token{}, fmt.Errorf("session: sign token: %w", err)
	}

	return Token{
		Value:     signed,
		Subject:   userID,
		IssuedAt:  now,
		ExpiresAt: exp,
	}, nil
}

// Parse validates tokenStr and returns its claims.
func (i *Issuer) Parse(tokenStr string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(i.now),
	)

	var claims Claims
	_, err := parser.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return &claims, nil
}
