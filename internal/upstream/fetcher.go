// ABOUTME: Breaker-protected HTTP GET helper shared by the catalog and weather clients.
// ABOUTME: One circuit breaker per host; successful bodies can be cached by URL.

package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/2389/course-gateway/internal/cache"
)

// DefaultTimeout bounds a single upstream request.
const DefaultTimeout = 30 * time.Second

// maxBodyBytes caps how much of a response is read.
const maxBodyBytes = 16 << 20

var (
	// ErrStatus indicates a non-2xx response.
	ErrStatus = errors.New("unexpected upstream status")
	// ErrCircuitOpen indicates the host's breaker is rejecting calls.
	ErrCircuitOpen = errors.New("upstream circuit open")
)

// Config configures a Fetcher.
type Config struct {
	Client    *http.Client
	UserAgent string
	Timeout   time.Duration
	Cache     cache.Cache
	Logger    *slog.Logger

	// FailureThreshold is the number of consecutive failures that opens a breaker.
	FailureThreshold uint32
	// OpenTimeout is how long a breaker stays open before probing again.
	OpenTimeout time.Duration
}

// Request describes one GET.
type Request struct {
	URL    string
	Accept string
	// Cacheable responses are served from and stored in the cache.
	Cacheable bool
}

// Fetcher performs upstream GETs.
type Fetcher struct {
	client    *http.Client
	userAgent string
	cache     cache.Cache
	logger    *slog.Logger
	threshold uint32
	open      time.Duration

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker[[]byte]
}

// New creates a Fetcher.
func New(cfg Config) *Fetcher {
	client := cfg.Client
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}
	open := cfg.OpenTimeout
	if open <= 0 {
		open = 30 * time.Second
	}

	return &Fetcher{
		client:    client,
		userAgent: cfg.UserAgent,
		cache:     cfg.Cache,
		logger:    logger.With("component", "upstream"),
		threshold: threshold,
		open:      open,
		breakers:  make(map[string]*gobreaker.CircuitBreaker[[]byte]),
	}
}

// breaker returns the circuit breaker for host, creating it if needed.
func (f *Fetcher) breaker(host string) *gobreaker.CircuitBreaker[[]byte] {
	f.mu.Lock()
	defer f.mu.Unlock()

	if b, ok := f.breakers[host]; ok {
		return b
	}

	settings := gobreaker.Settings{
		Name:        host,
		MaxRequests: 1,
		Timeout:     f.open,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= f.threshold
		},
		// Callers going away is not the upstream's fault.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			f.logger.Warn("circuit breaker state changed",
				"host", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}
	b := gobreaker.NewCircuitBreaker[[]byte](settings)
	f.breakers[host] = b
	return b
}

// Get fetches req.URL and returns the body of a 2xx response.
func (f *Fetcher) Get(ctx context.Context, req Request) ([]byte, error) {
	u, err := url.Parse(req.URL)
	if err != nil {
		return nil, fmt.Errorf("parse upstream url: %w", err)
	}

	if req.Cacheable && f.cache != nil {
		body, ok, err := f.cache.Get(ctx, req.URL)
		if err != nil {
			f.logger.Warn("cache read failed", "url", req.URL, "error", err)
		} else if ok {
			f.logger.Debug("cache hit", "url", req.URL)
			return body, nil
		}
	}

	body, err := f.breaker(u.Host).Execute(func() ([]byte, error) {
		return f.do(ctx, req)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %s", ErrCircuitOpen, u.Host)
	}
	if err != nil {
		return nil, err
	}

	if req.Cacheable && f.cache != nil {
		if err := f.cache.Set(ctx, req.URL, body); err != nil {
			f.logger.Warn("cache write failed", "url", req.URL, "error", err)
		}
	}
	return body, nil
}

func (f *Fetcher) do(ctx context.Context, req Request) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build upstream request: %w", err)
	}
	if f.userAgent != "" {
		httpReq.Header.Set("User-Agent", f.userAgent)
	}
	if req.Accept != "" {
		httpReq.Header.Set("Accept", req.Accept)
	}

	start := time.Now()
	resp, err := f.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("upstream request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read upstream body: %w", err)
	}

	f.logger.Debug("upstream responded",
		"url", req.URL,
		"status", resp.StatusCode,
		"bytes", len(body),
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %d from %s", ErrStatus, resp.StatusCode, req.URL)
	}
	return body, nil
}
