// ABOUTME: Tests for the CLI subcommands and the console log handler.
// ABOUTME: Commands run in-process with captured output and temp config files.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/course-gateway/internal/config"
	"github.com/2389/course-gateway/internal/packs"
	"github.com/2389/course-gateway/internal/store"
)

func init() {
	color.NoColor = true
}

// runCLI executes the root command with args and an empty dotenv file.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	envFile := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(envFile, nil, 0o600))

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--env-file", envFile}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCommandsJSON(t *testing.T) {
	out, err := runCLI(t, "commands", "--json")
	require.NoError(t, err)

	var descs []struct {
		Name        string         `json:"name"`
		InputSchema map[string]any `json:"inputSchema"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &descs))
	require.Len(t, descs, 9)

	names := make([]string, len(descs))
	for i, d := range descs {
		names[i] = d.Name
		assert.Equal(t, "object", d.InputSchema["type"], d.Name)
	}
	assert.Contains(t, names, "search-courses")
	assert.Contains(t, names, "get-alert")
	assert.Contains(t, names, "start-notification-stream")
}

func TestCommandsTable(t *testing.T) {
	out, err := runCLI(t, "commands")
	require.NoError(t, err)

	assert.Contains(t, out, "course_catalog")
	assert.Contains(t, out, "check-schedule-conflicts")
	assert.Contains(t, out, "9 commands")
}

func TestServeRequiresToken(t *testing.T) {
	t.Setenv("API_AUTH_TOKEN", "")

	_, err := runCLI(t, "serve")
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrMissingAuthToken)
}

func TestUsageRequiresLedger(t *testing.T) {
	t.Setenv("DATABASE_PATH", "")

	_, err := runCLI(t, "usage")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_PATH")
}

func TestUsageStats(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "calls.db")
	ledger, err := store.NewSQLiteStore(dbPath)
	require.NoError(t, err)

	ctx := context.Background()
	now := time.Now().UTC()
	require.NoError(t, ledger.RecordCall(ctx, packs.CallRecord{RequestID: "r1", Command: "get-course", Duration: 20 * time.Millisecond, At: now}))
	require.NoError(t, ledger.RecordCall(ctx, packs.CallRecord{RequestID: "r2", Command: "get-course", Kind: packs.KindInvalidArgument, At: now}))
	require.NoError(t, ledger.Close())

	t.Setenv("DATABASE_PATH", dbPath)

	out, err := runCLI(t, "usage")
	require.NoError(t, err)
	assert.Contains(t, out, "COMMAND")
	assert.Contains(t, out, "get-course")

	out, err = runCLI(t, "usage", "--recent", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "InvalidArgument")
	assert.Contains(t, out, "r1")

	out, err = runCLI(t, "usage", "--command", "list-schools")
	require.NoError(t, err)
	assert.Contains(t, out, "No calls recorded.")
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/health":
			_, _ = w.Write([]byte("OK"))
		case "/health/ready":
			_, _ = w.Write([]byte("ready (9 commands)"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	out, err := runCLI(t, "health", "--url", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "healthy ready (9 commands)")
}

func TestHealthUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := runCLI(t, "health", "--url", url)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "health check failed")
}

func TestColorHandler(t *testing.T) {
	var buf bytes.Buffer
	logger, err := setupLogger(&buf, config.LoggingConfig{Level: "info"})
	require.NoError(t, err)
	t.Cleanup(func() { slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil))) })

	logger.With("component", "router").WithGroup("call").Info("→ dispatching command", "command", "get-course")
	logger.Debug("hidden")

	line := buf.String()
	assert.Contains(t, line, "INF → dispatching command")
	assert.Contains(t, line, "component=router")
	assert.Contains(t, line, "call.command=get-course")
	assert.NotContains(t, line, "hidden")
}

func TestSetupLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := setupLogger(&buf, config.LoggingConfig{Level: "debug", Format: "json"})
	require.NoError(t, err)
	t.Cleanup(func() { slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil))) })

	logger.Debug("hello", "k", "v")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "hello", rec["msg"])
	assert.Equal(t, "v", rec["k"])

	_, err = setupLogger(&buf, config.LoggingConfig{Level: "loud"})
	assert.Error(t, err)
}
