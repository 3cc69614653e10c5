// ABOUTME: Dispatches command calls to registered handlers with per-call fault isolation.
// ABOUTME: Applies timeouts, recovers panics and reduces failures to the caller-visible taxonomy.

package packs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"
)

// DefaultTimeout is the default timeout for command execution.
const DefaultTimeout = 30 * time.Second

// CallRecord describes a finished dispatch for the call ledger.
type CallRecord struct {
	RequestID string
	SessionID string
	Command   string
	Kind      ErrorKind // empty on success
	Duration  time.Duration
	At        time.Time
}

// Recorder receives a CallRecord for every dispatch.
type Recorder interface {
	RecordCall(ctx context.Context, rec CallRecord) error
}

// Router resolves command names and invokes their handlers.
type Router struct {
	registry *Registry
	logger   *slog.Logger
	timeout  time.Duration
	recorder Recorder
}

// RouterConfig contains configuration options for the Router.
type RouterConfig struct {
	Registry *Registry
	Logger   *slog.Logger
	Timeout  time.Duration
	Recorder Recorder
}

// NewRouter creates a new Router with the given configuration.
func NewRouter(cfg RouterConfig) *Router {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Router{
		registry: cfg.Registry,
		logger:   logger,
		timeout:  timeout,
		recorder: cfg.Recorder,
	}
}

// Registry returns the registry the router dispatches against.
func (r *Router) Registry() *Registry {
	return r.registry
}

// Dispatch runs the named command. Successful results pass through verbatim;
// every failure is an *Error whose message is safe to show the caller.
func (r *Router) Dispatch(ctx context.Context, name string, args json.RawMessage, call *CallContext) (Result, error) {
	start := time.Now()
	requestID := ""
	sessionID := ""
	if call != nil {
		requestID = call.RequestID
		sessionID = call.SessionID
	}

	result, err := r.dispatch(ctx, name, args, call, requestID)

	if r.recorder != nil {
		rec := CallRecord{
			RequestID: requestID,
			SessionID: sessionID,
			Command:   name,
			Kind:      KindOf(err),
			Duration:  time.Since(start),
			At:        start.UTC(),
		}
		if recErr := r.recorder.RecordCall(context.WithoutCancel(ctx), rec); recErr != nil {
			r.logger.Warn("failed to record call", "command", name, "request_id", requestID, "error", recErr)
		}
	}
	return result, err
}

func (r *Router) dispatch(ctx context.Context, name string, args json.RawMessage, call *CallContext, requestID string) (Result, error) {
	cmd, ok := r.registry.Lookup(name)
	if !ok {
		r.logger.Debug("command not found in registry", "command", name, "request_id", requestID)
		return nil, Errorf(KindUnknownCommand, "unknown command %q", name)
	}

	timeout := r.timeout
	if cmd.Descriptor.Timeout > 0 {
		timeout = cmd.Descriptor.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	r.logger.Info("→ dispatching command", "command", name, "request_id", requestID)

	result, err := r.invoke(ctx, cmd, call, args)
	if err != nil {
		return nil, r.normalize(ctx, name, requestID, timeout, err)
	}
	if result == nil {
		result = Result{}
	}

	r.logger.Info("← command responded", "command", name, "request_id", requestID, "items", len(result))
	return result, nil
}

// invoke calls the handler, converting a panic into an error.
func (r *Router) invoke(ctx context.Context, cmd Command, call *CallContext, args json.RawMessage) (result Result, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("command handler panicked",
				"command", cmd.Descriptor.Name,
				"panic", rec,
				"stack", string(debug.Stack()),
			)
			result = nil
			err = fmt.Errorf("%w: panic: %v", errHandlerPanic, rec)
		}
	}()
	return cmd.Handler(ctx, call, args)
}

var errHandlerPanic = errors.New("handler panicked")

// normalize keeps typed caller errors and hides everything else behind a generic failure.
func (r *Router) normalize(ctx context.Context, name, requestID string, timeout time.Duration, err error) error {
	var typed *Error
	if errors.As(err, &typed) && typed.Kind != KindInternalError {
		r.logger.Warn("command error",
			"command", name,
			"request_id", requestID,
			"kind", typed.Kind,
			"error", err,
		)
		return typed
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded) && ctx.Err() != nil:
		r.logger.Warn("command timed out", "command", name, "request_id", requestID, "timeout", timeout)
		return &Error{Kind: KindInternalError, Message: fmt.Sprintf("command %q timed out", name), Err: err}
	case errors.Is(err, context.Canceled):
		r.logger.Info("command cancelled", "command", name, "request_id", requestID)
		return &Error{Kind: KindInternalError, Message: fmt.Sprintf("command %q was cancelled", name), Err: err}
	}

	r.logger.Error("command failed", "command", name, "request_id", requestID, "error", err)
	return &Error{Kind: KindInternalError, Message: fmt.Sprintf("command %q failed", name), Err: err}
}
