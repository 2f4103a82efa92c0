package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"google-auth-service/internal/auth"
	"google-auth-service/internal/logger"
	"google-auth-service/internal/session"
	"google-auth-service/internal/user"

	"github.com/gin-gonic/gin"
)

const (
	msgLoginSucceeded = "Google login successful"
	msgTokenRequired  = "Google token is required"
	msgInvalidToken   = "Invalid Google token"
	msgLoginFailed    = "Google login failed"
)

const (
	defaultProviderTimeout = 10 * time.Second
	defaultStoreTimeout    = 5 * time.Second
)

type AccessTokenVerifier interface {
	VerifyAccessToken(ctx context.Context, token string) (auth.ProviderClaims, error)
}

type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, token string) (auth.ProviderClaims, error)
}

type UserResolver interface {
	FindOrCreate(ctx context.Context, identity *auth.Identity) (*user.Record, bool, error)
}

type SessionIssuer interface {
	Issue(userID string) (session.Token, error)
}

// Config wires the sign-in handler. AccessTokens, IDTokens, Users and
// Sessions are required.
type Config struct {
	AccessTokens AccessTokenVerifier
	IDTokens     IDTokenVerifier
	Users        UserResolver
	Sessions     SessionIssuer
	Logger       *slog.Logger

	ProviderTimeout time.Duration
	StoreTimeout    time.Duration
}

type Handler struct {
	accessTokens AccessTokenVerifier
	idTokens     IDTokenVerifier
	users        UserResolver
	sessions     SessionIssuer
	log          *slog.Logger

	providerTimeout time.Duration
	storeTimeout    time.Duration
}

func NewHandler(cfg Config) (*Handler, error) {
	switch {
	case cfg.AccessTokens == nil:
		return nil, errors.New("handler: access token verifier is required")
	case cfg.IDTokens == nil:
		return nil, errors.New("handler: id token verifier is required")
	case cfg.Users == nil:
		return nil, errors.New("handler: user resolver is required")
	case cfg.Sessions == nil:
		return nil, errors.New("handler: session issuer is required")
	}

	h := &Handler{
		accessTokens:    cfg.AccessTokens,
		idTokens:        cfg.IDTokens,
		users:           cfg.Users,
		sessions:        cfg.Sessions,
		log:             cfg.Logger,
		providerTimeout: cfg.ProviderTimeout,
		storeTimeout:    cfg.StoreTimeout,
	}
	if h.log == nil {
		h.log = logger.Discard()
	}
	if h.providerTimeout <= 0 {
		h.providerTimeout = defaultProviderTimeout
	}
	if h.storeTimeout <= 0 {
		h.storeTimeout = defaultStoreTimeout
	}
	h.log = h.log.With(logger.Component("auth_handler"))
	return h, nil
}

func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.POST("/auth/google", h.googleLogin)
}

type googleLoginRequest struct {
	Token string `json:"token"`
}

type googleLoginResponse struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
	Token   string `json:"token"`
	Message string `json:"message"`
}

// loginResult is what a successful sign-in produced.
type loginResult struct {
	user    *user.Record
	created bool
	session session.Token
}

func (h *Handler) googleLogin(c *gin.Context) {
	var req googleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.reject(c, "", fmt.Errorf("%w: %v", auth.ErrBadRequest, err))
		return
	}

	token := strings.TrimSpace(req.Token)
	if token == "" {
		h.reject(c, "", fmt.Errorf("%w: token is empty", auth.ErrBadRequest))
		return
	}

	kind := auth.Classify(token)

	res, err := h.signIn(c.Request.Context(), kind, token)
	if err != nil {
		h.reject(c, token, err)
		return
	}

	msg := "google user logged in"
	if res.created {
		msg = "google user registered"
	}
	h.log.Info(msg,
		logger.UserID(res.user.ID),
		slog.String("email", res.user.Email),
		slog.String("credential_kind", kind.String()),
	)

	c.JSON(http.StatusOK, googleLoginResponse{
		ID:      res.user.ID,
		Email:   res.user.Email,
		Name:    res.user.DisplayName,
		Picture: res.user.AvatarURL,
		Token:   res.session.Value,
		Message: msgLoginSucceeded,
	})
}

// signIn runs verify, resolve, find-or-create and issue in order. Every
// error it returns wraps one of the auth sentinels.
func (h *Handler) signIn(ctx context.Context, kind auth.CredentialKind, token string) (*loginResult, error) {
	claims, err := h.verify(ctx, kind, token)
	if err != nil {
		return nil, err
	}

	identity, err := auth.ResolveIdentity(claims)
	if err != nil {
		return nil, err
	}

	// A client disconnect must not abort a half-finished create.
	storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.storeTimeout)
	defer cancel()

	rec, created, err := h.users.FindOrCreate(storeCtx, identity)
	if err != nil {
		return nil, err
	}

	tok, err := h.sessions.Issue(rec.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: issue session: %v", auth.ErrInternal, err)
	}

	return &loginResult{user: rec, created: created, session: tok}, nil
}

func (h *Handler) verify(ctx context.Context, kind auth.CredentialKind, token string) (auth.ProviderClaims, error) {
	ctx, cancel := context.WithTimeout(ctx, h.providerTimeout)
	defer cancel()

	if kind == auth.CredentialAccessToken {
		return h.accessTokens.VerifyAccessToken(ctx, token)
	}
	return h.idTokens.VerifyIDToken(ctx, token)
}

// reject writes the fixed client message for err and logs the single
// failure event of the request. The credential itself never reaches the log.
func (h *Handler) reject(c *gin.Context, token string, err error) {
	status, msg := statusFor(err)

	text := err.Error()
	attrs := []any{
		slog.String("kind", auth.KindOf(err)),
		slog.Int("status", status),
	}
	if token != "" {
		text = strings.ReplaceAll(text, token, "[redacted]")
		attrs = append(attrs, slog.String("credential_kind", auth.Classify(token).String()))
	}
	attrs = append(attrs, slog.String("error", text))
	if clientFault(err) {
		h.log.Warn("google login rejected", attrs...)
	} else {
		h.log.Error("google login failed", attrs...)
	}

	c.JSON(status, gin.H{"message": msg})
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, auth.ErrBadRequest):
		return http.StatusBadRequest, msgTokenRequired
	case errors.Is(err, auth.ErrInvalidCredential), errors.Is(err, auth.ErrProviderUnavailable):
		return http.StatusUnauthorized, msgInvalidToken
	default:
		return http.StatusInternalServerError, msgLoginFailed
	}
}

func clientFault(err error) bool {
	return errors.Is(err, auth.ErrBadRequest) || errors.Is(err, auth.ErrInvalidCredential)
}
