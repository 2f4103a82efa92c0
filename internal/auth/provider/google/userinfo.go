package google

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"google-auth-service/internal/auth"

	"golang.org/x/oauth2"
)

// userInfo is the Google user-info response. Error responses carry
// error / error_description instead of the profile fields.
type userInfo struct {
	Sub              string `json:"sub"`
	Email            string `json:"email"`
	Name             string `json:"name"`
	Picture          string `json:"picture"`
	Error            any    `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// AccessTokenVerifier redeems Google access tokens at the user-info
// endpoint. It makes exactly one request per call and never retries.
type AccessTokenVerifier struct {
	endpoint string
	client   *http.Client
}

func NewAccessTokenVerifier(cfg Config) *AccessTokenVerifier {
	cfg = cfg.withDefaults()
	return &AccessTokenVerifier{
		endpoint: cfg.UserInfoURL,
		client:   cfg.httpClient(),
	}
}

// VerifyAccessToken returns the profile Google associates with token.
func (v *AccessTokenVerifier) VerifyAccessToken(ctx context.Context, token string) (auth.ProviderClaims, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.endpoint, nil)
	if err != nil {
		return auth.ProviderClaims{}, fmt.Errorf("%w: build userinfo request: %v", auth.ErrInternal, err)
	}

	client := &http.Client{
		Timeout: v.client.Timeout,
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}),
			Base:   v.client.Transport,
		},
	}

	resp, err := client.Do(req)
	if err != nil {
		return auth.ProviderClaims{}, fmt.Errorf("%w: userinfo request failed: %v", auth.ErrProviderUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	// Rate limiting says nothing about the token.
	if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
		return auth.ProviderClaims{}, fmt.Errorf("%w: userinfo returned status %d", auth.ErrProviderUnavailable, resp.StatusCode)
	}

	var info userInfo
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&info); err != nil {
		return auth.ProviderClaims{}, fmt.Errorf("%w: undecodable userinfo response (status %d)", auth.ErrInvalidCredential, resp.StatusCode)
	}

	if info.Error != nil {
		return auth.ProviderClaims{}, fmt.Errorf("%w: userinfo error: %v %s", auth.ErrInvalidCredential, info.Error, info.ErrorDescription)
	}
	if resp.StatusCode != http.StatusOK {
		return auth.ProviderClaims{}, fmt.Errorf("%w: userinfo returned status %d", auth.ErrInvalidCredential, resp.StatusCode)
	}
	if info.Email == "" {
		return auth.ProviderClaims{}, fmt.Errorf("%w: userinfo response has no email", auth.ErrInvalidCredential)
	}

	return auth.ProviderClaims{
		Subject: info.Sub,
		Email:   info.Email,
		Name:    info.Name,
		Picture: info.Picture,
	}, nil
}
