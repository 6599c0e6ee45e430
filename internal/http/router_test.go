package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/healthmate-api/internal/auth"
	"github.com/redmonkez12/healthmate-api/internal/chatbot"
	"github.com/redmonkez12/healthmate-api/internal/config"
	"github.com/redmonkez12/healthmate-api/internal/logging"
	"github.com/redmonkez12/healthmate-api/internal/report"
)

func newTestRouter(t *testing.T, env string) http.Handler {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{
			Env:            env,
			TrustedOrigins: []string{"http://localhost:3000"},
		},
	}

	tokens := auth.NewJWTService("router-secret", time.Hour)
	authService := auth.NewService(nil, tokens, nil, nil)

	handlers := Handlers{
		Auth:    auth.NewHandler(authService, auth.NewCookieManager(false, time.Hour)),
		Report:  report.NewHandler(tokens, nil),
		Chatbot: chatbot.NewHandler(chatbot.NewService(nil, chatbot.Config{}, nil)),
	}

	return NewRouter(cfg, handlers, auth.NewMiddleware(authService), logging.Discard())
}

func serve(h http.Handler, method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := serve(newTestRouter(t, "dev"), http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"api is running"}`, rec.Body.String())
}

func TestSecurityHeaders(t *testing.T) {
	dev := serve(newTestRouter(t, "dev"), http.MethodGet, "/health", nil)
	assert.Equal(t, "nosniff", dev.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", dev.Header().Get("X-Frame-Options"))
	assert.Equal(t, "default-src 'none'", dev.Header().Get("Content-Security-Policy"))
	assert.Empty(t, dev.Header().Get("Strict-Transport-Security"))

	prod := serve(newTestRouter(t, "prod"), http.MethodGet, "/health", nil)
	assert.Contains(t, prod.Header().Get("Strict-Transport-Security"), "max-age=")
}

func TestRoutesMountedAtRootAndAPI(t *testing.T) {
	router := newTestRouter(t, "dev")

	for _, prefix := range []string{"", "/api"} {
		rec := serve(router, http.MethodGet, prefix+"/auth", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, prefix)
		assert.JSONEq(t, `{"user":null}`, rec.Body.String(), prefix)

		rec = serve(router, http.MethodPost, prefix+"/auth", []byte(`{"action":"nope"}`))
		assert.Equal(t, http.StatusBadRequest, rec.Code, prefix)

		rec = serve(router, http.MethodPost, prefix+"/summary", []byte(`{"text":"One. Two."}`))
		require.Equal(t, http.StatusOK, rec.Code, prefix)
		var summary map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
		assert.Equal(t, "Summary: One. Two.", summary["summary"])

		rec = serve(router, http.MethodPost, prefix+"/parse-pdf", []byte(`{}`))
		assert.Equal(t, http.StatusBadRequest, rec.Code, prefix)

		rec = serve(router, http.MethodPost, prefix+"/chatbot", []byte(`{"question":"hi"}`))
		assert.Equal(t, http.StatusInternalServerError, rec.Code, prefix)
	}
}

func TestUnknownRouteAndMethod(t *testing.T) {
	router := newTestRouter(t, "dev")

	assert.Equal(t, http.StatusNotFound, serve(router, http.MethodGet, "/nope", nil).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, serve(router, http.MethodDelete, "/auth", nil).Code)
}

func TestSwaggerOnlyInDevelopment(t *testing.T) {
	dev := serve(newTestRouter(t, "dev"), http.MethodGet, "/swagger/index.html", nil)
	assert.Equal(t, http.StatusOK, dev.Code)

	prod := serve(newTestRouter(t, "prod"), http.MethodGet, "/swagger/index.html", nil)
	assert.Equal(t, http.StatusNotFound, prod.Code)
}

func TestCORSPreflight(t *testing.T) {
	router := newTestRouter(t, "dev")

	req := httptest.NewRequest(http.MethodOptions, "/api/auth", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodOptions, "/api/auth", nil)
	req.Header.Set("Origin", "http://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
