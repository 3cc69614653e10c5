// ABOUTME: Tests for command dispatch covering unknown names, panics, timeouts and error normalization.
// ABOUTME: Also verifies the call recorder sees every outcome.

package packs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRecorder struct {
	mu      sync.Mutex
	records []CallRecord
	err     error
}

func (m *memoryRecorder) RecordCall(ctx context.Context, rec CallRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	return m.err
}

func newTestRouter(t *testing.T, rec Recorder) (*Registry, *Router) {
	t.Helper()
	registry := NewRegistry(slog.Default())
	router := NewRouter(RouterConfig{Registry: registry, Logger: slog.Default(), Recorder: rec})
	return registry, router
}

func TestDispatchUnknownCommand(t *testing.T) {
	registry, router := newTestRouter(t, nil)

	invoked := false
	require.NoError(t, registry.Register(testDescriptor("known"), func(ctx context.Context, call *CallContext, args json.RawMessage) (Result, error) {
		invoked = true
		return nil, nil
	}))

	result, err := router.Dispatch(context.Background(), "unknown", nil, nil)
	assert.Nil(t, result)
	require.ErrorIs(t, err, ErrUnknownCommand)
	assert.Equal(t, KindUnknownCommand, KindOf(err))
	assert.Contains(t, err.Error(), "unknown")
	assert.False(t, invoked)
}

func TestDispatchPassesResultVerbatim(t *testing.T) {
	registry, router := newTestRouter(t, nil)

	want := Result{Text("one"), Text("two"), {Type: "image", Data: "AAAA", MimeType: "image/png"}}
	require.NoError(t, registry.Register(testDescriptor("multi"), func(ctx context.Context, call *CallContext, args json.RawMessage) (Result, error) {
		return want, nil
	}))

	result, err := router.Dispatch(context.Background(), "multi", json.RawMessage(`{}`), &CallContext{RequestID: "r1"})
	require.NoError(t, err)
	assert.Equal(t, want, result)
}

func TestDispatchNilResultBecomesEmpty(t *testing.T) {
	registry, router := newTestRouter(t, nil)
	require.NoError(t, registry.Register(testDescriptor("nothing"), func(ctx context.Context, call *CallContext, args json.RawMessage) (Result, error) {
		return nil, nil
	}))

	result, err := router.Dispatch(context.Background(), "nothing", nil, nil)
	require.NoError(t, err)
	assert.NotNil(t, result)
	assert.Empty(t, result)
}

func TestDispatchPassesCallContextThrough(t *testing.T) {
	registry, router := newTestRouter(t, nil)

	call := &CallContext{SessionID: "s1", RequestID: "r1"}
	var seen *CallContext
	require.NoError(t, registry.Register(testDescriptor("ctx"), func(ctx context.Context, c *CallContext, args json.RawMessage) (Result, error) {
		seen = c
		return nil, nil
	}))

	_, err := router.Dispatch(context.Background(), "ctx", nil, call)
	require.NoError(t, err)
	assert.Same(t, call, seen)
}

func TestDispatchRecoversPanic(t *testing.T) {
	registry, router := newTestRouter(t, nil)
	require.NoError(t, registry.Register(testDescriptor("boom"), func(ctx context.Context, call *CallContext, args json.RawMessage) (Result, error) {
		panic("secret internal detail")
	}))

	result, err := router.Dispatch(context.Background(), "boom", nil, nil)
	assert.Nil(t, result)
	require.ErrorIs(t, err, ErrInternal)
	assert.NotContains(t, err.Error(), "secret internal detail")

	// The router keeps serving after a panic.
	require.NoError(t, registry.Register(testDescriptor("fine"), textHandler("ok")))
	result, err = router.Dispatch(context.Background(), "fine", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", result[0].Text)
}

func TestDispatchErrorNormalization(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind ErrorKind
		wantMsg  string
		hidden   string
	}{
		{
			name:     "invalid argument passes through",
			err:      InvalidArgument("course_id", "expected number, got string"),
			wantKind: KindInvalidArgument,
			wantMsg:  `invalid argument "course_id": expected number, got string`,
		},
		{
			name:     "wrapped typed error passes through",
			err:      errors.Join(errors.New("ctx"), Upstream(errors.New("dial tcp"), "Unable to fetch schools.")),
			wantKind: KindUpstreamUnavailable,
			wantMsg:  "Unable to fetch schools.",
		},
		{
			name:     "untyped error is hidden",
			err:      errors.New("pq: password authentication failed"),
			wantKind: KindInternalError,
			wantMsg:  `command "cmd" failed`,
			hidden:   "password",
		},
		{
			name:     "typed internal error is hidden",
			err:      &Error{Kind: KindInternalError, Message: "stack trace here"},
			wantKind: KindInternalError,
			wantMsg:  `command "cmd" failed`,
			hidden:   "stack trace",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry, router := newTestRouter(t, nil)
			require.NoError(t, registry.Register(testDescriptor("cmd"), func(ctx context.Context, call *CallContext, args json.RawMessage) (Result, error) {
				return nil, tt.err
			}))

			_, err := router.Dispatch(context.Background(), "cmd", nil, nil)
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, KindOf(err))
			assert.Equal(t, tt.wantMsg, err.Error())
			if tt.hidden != "" {
				assert.NotContains(t, err.Error(), tt.hidden)
			}
		})
	}
}

func TestDispatchTimeout(t *testing.T) {
	registry := NewRegistry(slog.Default())
	router := NewRouter(RouterConfig{Registry: registry, Timeout: time.Hour})

	desc := testDescriptor("slow")
	desc.Timeout = 20 * time.Millisecond
	require.NoError(t, registry.Register(desc, func(ctx context.Context, call *CallContext, args json.RawMessage) (Result, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}))

	start := time.Now()
	_, err := router.Dispatch(context.Background(), "slow", nil, nil)
	require.ErrorIs(t, err, ErrInternal)
	assert.Contains(t, err.Error(), "timed out")
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestDispatchConcurrentCalls(t *testing.T) {
	registry, router := newTestRouter(t, nil)

	release := make(chan struct{})
	var started sync.WaitGroup
	started.Add(2)
	require.NoError(t, registry.Register(testDescriptor("wait"), func(ctx context.Context, call *CallContext, args json.RawMessage) (Result, error) {
		started.Done()
		<-release
		return TextResult("done"), nil
	}))

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := router.Dispatch(context.Background(), "wait", nil, nil)
			assert.NoError(t, err)
		}()
	}

	// Both calls are in flight at the same time.
	started.Wait()
	close(release)
	wg.Wait()
}

func TestDispatchRecordsCalls(t *testing.T) {
	rec := &memoryRecorder{err: errors.New("disk full")}
	registry, router := newTestRouter(t, rec)
	require.NoError(t, registry.Register(testDescriptor("ok"), textHandler("fine")))

	_, err := router.Dispatch(context.Background(), "ok", nil, &CallContext{RequestID: "r1", SessionID: "s1"})
	require.NoError(t, err, "recorder failures never reach the caller")
	_, err = router.Dispatch(context.Background(), "nope", nil, nil)
	require.Error(t, err)

	require.Len(t, rec.records, 2)
	assert.Equal(t, "ok", rec.records[0].Command)
	assert.Equal(t, "r1", rec.records[0].RequestID)
	assert.Equal(t, "s1", rec.records[0].SessionID)
	assert.Equal(t, ErrorKind(""), rec.records[0].Kind)
	assert.Equal(t, KindUnknownCommand, rec.records[1].Kind)
}

func TestCallContextNotifyWithoutNotifier(t *testing.T) {
	var call *CallContext
	assert.NoError(t, call.Notify(context.Background(), "info", "test", "hello"))
	assert.NoError(t, (&CallContext{}).Notify(context.Background(), "info", "test", "hello"))
}
