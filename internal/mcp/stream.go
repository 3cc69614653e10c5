// ABOUTME: Server-sent event stream for a single tools/call response.
// ABOUTME: Opened on the first notification; the final JSON-RPC response closes it.

package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"sync"

	"github.com/2389/course-gateway/internal/packs"
)

// acceptsEventStream reports whether the client listed text/event-stream in Accept.
func acceptsEventStream(r *http.Request) bool {
	for _, v := range r.Header.Values("Accept") {
		for _, part := range strings.Split(v, ",") {
			mt, _, err := mime.ParseMediaType(strings.TrimSpace(part))
			if err == nil && mt == "text/event-stream" {
				return true
			}
		}
	}
	return false
}

// logMessageParams are the params of notifications/message.
type logMessageParams struct {
	Level  string `json:"level"`
	Logger string `json:"logger,omitempty"`
	Data   string `json:"data"`
}

// eventStream implements packs.Notifier over one HTTP response.
type eventStream struct {
	mu     sync.Mutex
	w      http.ResponseWriter
	logger *slog.Logger
	open   bool
	closed bool
}

var _ packs.Notifier = (*eventStream)(nil)

func newEventStream(w http.ResponseWriter, logger *slog.Logger) *eventStream {
	return &eventStream{w: w, logger: logger}
}

// Notify sends a notifications/message event, opening the stream if needed.
func (e *eventStream) Notify(ctx context.Context, level, logger, data string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.send(JSONRPCNotification{
		JSONRPC: "2.0",
		Method:  "notifications/message",
		Params:  logMessageParams{Level: level, Logger: logger, Data: data},
	})
}

func (e *eventStream) started() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.open
}

// finish writes the final response and closes the stream.
func (e *eventStream) finish(resp JSONRPCResponse) {
	if err := e.send(resp); err != nil {
		e.logger.Warn("failed to write final SSE event", "error", err)
	}
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
}

func (e *eventStream) send(msg any) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encoding event: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	if !e.open {
		h := e.w.Header()
		h.Set("Content-Type", "text/event-stream")
		h.Set("Cache-Control", "no-cache")
		h.Set("Connection", "keep-alive")
		e.w.WriteHeader(http.StatusOK)
		e.open = true
	}

	if _, err := fmt.Fprintf(e.w, "event: message\ndata: %s\n\n", payload); err != nil {
		return fmt.Errorf("writing event: %w", err)
	}
	if f, ok := e.w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}
