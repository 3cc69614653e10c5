// ABOUTME: Shared-secret bearer gate for the dispatch endpoint.
// ABOUTME: Check is a pure decision; Middleware applies it and writes JSON error bodies.

package auth

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/2389/course-gateway/internal/packs"
)

// DefaultHeader is the header inspected when none is configured.
const DefaultHeader = "Authorization"

// DefaultPrefix is the protected path prefix.
const DefaultPrefix = "/mcp"

// Config configures the gate.
type Config struct {
	// Secret is the shared token. Empty means the server is misconfigured.
	Secret string
	// Header names the header carrying the credential.
	Header string
	// Prefix is the protected path prefix.
	Prefix string
	Logger *slog.Logger
}

// Protected reports whether path falls under prefix, either exactly or as a sub-path.
func Protected(path, prefix string) bool {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	prefix = strings.TrimSuffix(prefix, "/")
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// extractBearerToken returns the token from a "Bearer <token>" value.
// The scheme is matched case-insensitively.
func extractBearerToken(value string) (string, bool) {
	const scheme = "bearer "
	if len(value) < len(scheme) || !strings.EqualFold(value[:len(scheme)], scheme) {
		return "", false
	}
	return value[len(scheme):], true
}

// Check decides whether a call carrying headerValue may proceed.
// It returns nil to forward the call, or an *packs.Error describing the rejection.
func Check(headerValue string, present bool, secret string) *packs.Error {
	if secret == "" {
		return packs.Errorf(packs.KindServerMisconfigured, "Server misconfigured: API_AUTH_TOKEN not set")
	}
	if !present {
		return packs.Errorf(packs.KindMissingCredential, "Missing bearer token")
	}
	token, ok := extractBearerToken(headerValue)
	if !ok {
		return packs.Errorf(packs.KindMissingCredential, "Missing bearer token")
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
		return packs.Errorf(packs.KindInvalidCredential, "Invalid token")
	}
	return nil
}

// Middleware gates requests under the protected prefix; other paths pass through.
func Middleware(cfg Config) func(http.Handler) http.Handler {
	header := cfg.Header
	if header == "" {
		header = DefaultHeader
	}
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "auth")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !Protected(r.URL.Path, prefix) {
				next.ServeHTTP(w, r)
				return
			}

			values, present := r.Header[http.CanonicalHeaderKey(header)]
			value := ""
			if present && len(values) > 0 {
				value = values[0]
			}

			if authErr := Check(value, present, cfg.Secret); authErr != nil {
				logger.Warn("request rejected",
					"path", r.URL.Path,
					"method", r.Method,
					"kind", authErr.Kind,
				)
				writeError(w, authErr)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeError(w http.ResponseWriter, e *packs.Error) {
	status := http.StatusUnauthorized
	if errors.Is(e, packs.ErrServerMisconfigured) {
		status = http.StatusInternalServerError
	} else {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{
			"kind":    string(e.Kind),
			"message": e.Message,
		},
	})
}
