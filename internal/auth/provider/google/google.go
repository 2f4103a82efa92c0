package google

import (
	"errors"
	"net/http"
	"time"
)

const (
	DefaultIssuer      = "https://accounts.google.com"
	DefaultUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"
	DefaultCertsURL    = "https://www.googleapis.com/oauth2/v3/certs"
	DefaultTimeout     = 10 * time.Second
)

// Config describes the Google client this service authenticates for.
// It is built once at start-up and handed to the verifier constructors.
type Config struct {
	ClientID    string // expected ID token audience
	Issuer      string
	UserInfoURL string
	CertsURL    string
	Timeout     time.Duration // upper bound for any single provider call

	// HTTPClient is the base client for provider calls. Its Timeout is
	// overridden by Timeout.
	HTTPClient *http.Client
}

func (c Config) withDefaults() Config {
	if c.Issuer == "" {
		c.Issuer = DefaultIssuer
	}
	if c.UserInfoURL == "" {
		c.UserInfoURL = DefaultUserInfoURL
	}
	if c.CertsURL == "" {
		c.CertsURL = DefaultCertsURL
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

func (c Config) httpClient() *http.Client {
	base := http.DefaultTransport
	if c.HTTPClient != nil && c.HTTPClient.Transport != nil {
		base = c.HTTPClient.Transport
	}
	return &http.Client{Transport: base, Timeout: c.Timeout}
}

var errMissingClientID = errors.New("google config missing client id")
