// ABOUTME: Tests for the Gateway orchestrator and its HTTP middleware stack.
// ABOUTME: Drives the assembled handler with httptest against a fake weather upstream.

package gateway

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/course-gateway/internal/config"
	"github.com/2389/course-gateway/internal/mcp"
	"github.com/2389/course-gateway/internal/packs"
	"github.com/2389/course-gateway/internal/store"
	"github.com/2389/course-gateway/internal/weather"
)

const testSecret = "test-secret"

// testLogger creates a silent logger for tests.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeWeather serves an empty alert list for every state.
func fakeWeather(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/alerts/active/area/") {
			w.Header().Set("Content-Type", "application/geo+json")
			_, _ = w.Write([]byte(`{"features": []}`))
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// testConfig creates a minimal valid config pointing at a fake weather API.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Auth.Token = testSecret
	cfg.Server.Host = "127.0.0.1"
	cfg.Weather.BaseURL = fakeWeather(t).URL
	return cfg
}

func newTestGateway(t *testing.T, cfg *config.Config) *Gateway {
	t.Helper()
	gw, err := New(context.Background(), cfg, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = gw.Shutdown(context.Background()) })
	return gw
}

func postCall(t *testing.T, h http.Handler, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/mcp/call", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestGatewayNew(t *testing.T) {
	gw := newTestGateway(t, testConfig(t))

	assert.Equal(t, 9, gw.Registry().Len())
	assert.Nil(t, gw.Ledger(), "ledger is disabled without a database path")

	require.Len(t, gw.Reports(), 3)
	for _, rep := range gw.Reports() {
		assert.NoError(t, rep.Err, rep.Group)
		assert.Positive(t, rep.Added, rep.Group)
	}

	for _, name := range []string{
		"list-schools", "list-departments", "get-course", "get-schedule",
		"search-courses", "check-schedule-conflicts",
		"get-alert", "get-forecast", "start-notification-stream",
	} {
		_, ok := gw.Registry().Lookup(name)
		assert.True(t, ok, name)
	}
}

func TestGatewayManifestDisablesGroup(t *testing.T) {
	manifest := filepath.Join(t.TempDir(), "plugins.toml")
	require.NoError(t, os.WriteFile(manifest, []byte("[groups.weather]\nenabled = false\n"), 0o600))

	cfg := testConfig(t)
	cfg.Plugins.Manifest = manifest
	gw := newTestGateway(t, cfg)

	assert.Equal(t, 7, gw.Registry().Len())
	_, ok := gw.Registry().Lookup("get-alert")
	assert.False(t, ok)
}

func TestGatewayMissingManifest(t *testing.T) {
	cfg := testConfig(t)
	cfg.Plugins.Manifest = filepath.Join(t.TempDir(), "absent.toml")

	_, err := New(context.Background(), cfg, testLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "plugin manifest")
}

func TestHealthEndpoints(t *testing.T) {
	h := newTestGateway(t, testConfig(t)).Handler()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ready (9 commands)", w.Body.String())

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/health", w.Header().Get("Location"))
}

func TestAuthGate(t *testing.T) {
	h := newTestGateway(t, testConfig(t)).Handler()
	body := `{"command":"get-alert","arguments":{"state":"CA"}}`

	tests := []struct {
		name   string
		token  string
		status int
		kind   packs.ErrorKind
	}{
		{"missing token", "", http.StatusUnauthorized, packs.KindMissingCredential},
		{"wrong token", "nope", http.StatusUnauthorized, packs.KindInvalidCredential},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postCall(t, h, tt.token, body)
			assert.Equal(t, tt.status, w.Code)

			var resp mcp.ErrorBody
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.kind, resp.Error.Kind)
		})
	}

	t.Run("valid token", func(t *testing.T) {
		w := postCall(t, h, testSecret, body)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp mcp.CallResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, packs.TextResult(weather.MsgNoAlerts), resp.Content)
	})
}

func TestCustomAuthHeader(t *testing.T) {
	cfg := testConfig(t)
	cfg.Auth.Header = "X-Api-Key"
	h := newTestGateway(t, cfg).Handler()

	req := httptest.NewRequest(http.MethodGet, "/mcp/commands", nil)
	req.Header.Set("X-Api-Key", "Bearer "+testSecret)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// The default header is no longer consulted.
	req = httptest.NewRequest(http.MethodGet, "/mcp/commands", nil)
	req.Header.Set("Authorization", "Bearer "+testSecret)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	h := newTestGateway(t, testConfig(t)).Handler()

	req := httptest.NewRequest(http.MethodOptions, "/mcp", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), mcp.SessionHeader)
}

func TestLedgerRecordsCalls(t *testing.T) {
	cfg := testConfig(t)
	cfg.Database.Path = filepath.Join(t.TempDir(), "calls.db")
	gw := newTestGateway(t, cfg)
	require.NotNil(t, gw.Ledger())

	h := gw.Handler()
	require.Equal(t, http.StatusOK, postCall(t, h, testSecret, `{"command":"get-alert","arguments":{"state":"WA"}}`).Code)
	require.Equal(t, http.StatusNotFound, postCall(t, h, testSecret, `{"command":"no-such-command"}`).Code)

	calls, err := gw.Ledger().RecentCalls(context.Background(), store.CallFilter{}, 10)
	require.NoError(t, err)
	require.Len(t, calls, 2)
	assert.Equal(t, "no-such-command", calls[0].Command)
	assert.Equal(t, string(packs.KindUnknownCommand), calls[0].Outcome)
	assert.Equal(t, "get-alert", calls[1].Command)
	assert.Equal(t, store.OutcomeOK, calls[1].Outcome)
}

func TestRecoveryMiddleware(t *testing.T) {
	h := recoveryMiddleware(testLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/mcp/commands", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "InternalError")
}

func TestServeAndShutdown(t *testing.T) {
	gw, err := New(context.Background(), testConfig(t), testLogger())
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- gw.Serve(ctx, ln) }()

	client := &http.Client{Timeout: 2 * time.Second}
	require.Eventually(t, func() bool {
		resp, err := client.Get("http://" + ln.Addr().String() + "/health")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
