package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"google-auth-service/internal/config"
	"google-auth-service/internal/logger"
	"google-auth-service/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func testConfig(t *testing.T) config.Config {
	t.Helper()

	jwks := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"keys":[]}`))
	}))
	t.Cleanup(jwks.Close)

	return config.Config{
		AppPort:               "0",
		AppEnv:                "test",
		GoogleClientID:        "client-123",
		GoogleIssuer:          "https://accounts.google.com",
		GoogleUserInfoURL:     "http://127.0.0.1:1/userinfo",
		GoogleCertsURL:        jwks.URL,
		GoogleProviderTimeout: time.Second,
		JWTSecret:             testSecret,
		UserStore:             config.StoreMemory,
		UserStoreTimeout:      time.Second,
	}
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	a, err := New(ctx, testConfig(t), logger.Discard())
	require.NoError(t, err)
	return a
}

func TestApp_Health(t *testing.T) {
	a := newTestApp(t)

	w := httptest.NewRecorder()
	a.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestApp_GoogleLoginRequiresToken(t *testing.T) {
	a := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/google", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	a.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message":"Google token is required"}`, w.Body.String())
}

func TestApp_MeRequiresSession(t *testing.T) {
	a := newTestApp(t)

	w := httptest.NewRecorder()
	a.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	issuer, err := session.NewIssuer(testSecret)
	require.NoError(t, err)
	tok, err := issuer.Issue("user-42")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok.Value)
	w = httptest.NewRecorder()
	a.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "user-42", body["user_id"])
}

func TestApp_UnknownStore(t *testing.T) {
	cfg := testConfig(t)
	cfg.UserStore = "cassandra"

	_, err := New(context.Background(), cfg, logger.Discard())
	require.Error(t, err)
}

func TestApp_ShutdownWithoutRun(t *testing.T) {
	a := newTestApp(t)
	require.NoError(t, a.Shutdown(context.Background()))
}
