// ABOUTME: HTTP middleware wrapped around the gateway mux: panic recovery and CORS.
// ABOUTME: Neither wraps the ResponseWriter, so SSE flushing still reaches the client.

package gateway

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime"

	"github.com/2389/course-gateway/internal/mcp"
)

// recoveryMiddleware catches panics in HTTP handlers, logs the stack trace, and returns 500.
func recoveryMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rv := recover()
				if rv == nil {
					return
				}
				if rv == http.ErrAbortHandler {
					panic(rv)
				}
				buf := make([]byte, 4096)
				n := runtime.Stack(buf, false)
				logger.Error("http handler panic",
					"panic", fmt.Sprintf("%v", rv),
					"path", r.URL.Path,
					"stack", string(buf[:n]),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"error":{"kind":"InternalError","message":"internal error"}}`))
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// corsMiddleware allows browser clients from any origin and answers preflights
// before they reach the auth gate.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "*")
		h.Set("Access-Control-Expose-Headers", mcp.SessionHeader+", "+mcp.RequestIDHeader)

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
