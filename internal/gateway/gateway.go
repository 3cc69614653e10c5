// ABOUTME: Gateway orchestrator that wires the command surface to the HTTP server.
// ABOUTME: Owns startup discovery, the optional call ledger, the response cache and the listener lifecycle.

package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/2389/course-gateway/internal/auth"
	"github.com/2389/course-gateway/internal/builtins"
	"github.com/2389/course-gateway/internal/cache"
	"github.com/2389/course-gateway/internal/catalog"
	"github.com/2389/course-gateway/internal/config"
	"github.com/2389/course-gateway/internal/mcp"
	"github.com/2389/course-gateway/internal/packs"
	"github.com/2389/course-gateway/internal/store"
	"github.com/2389/course-gateway/internal/upstream"
	"github.com/2389/course-gateway/internal/weather"
)

// Version is reported to MCP clients during initialize.
var Version = "dev"

// Gateway orchestrates the course-gateway server components.
type Gateway struct {
	config *config.Config
	logger *slog.Logger

	cache   cache.Cache
	catalog *catalog.Connection

	registry *packs.Registry
	router   *packs.Router
	reports  []packs.GroupReport

	// ledger is nil when DATABASE_PATH is unset
	ledger *store.SQLiteStore

	mcpServer  *mcp.Server
	httpServer *http.Server
}

// Surface is the discovered command set without any server attached.
type Surface struct {
	Registry *packs.Registry
	Reports  []packs.GroupReport
	Cache    cache.Cache
	Catalog  *catalog.Connection
}

// Close releases the cache and drops the catalog connection.
func (s *Surface) Close() error {
	if s.Catalog != nil {
		s.Catalog.Reset()
	}
	if s.Cache != nil {
		return s.Cache.Close()
	}
	return nil
}

// LoadSurface builds the upstream clients and runs discovery over the built-in groups.
// No network traffic happens here; the catalog client is built on first use.
func LoadSurface(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Surface, error) {
	respCache := cache.Open(ctx, cache.Config{
		RedisURL:   cfg.Cache.RedisURL,
		TTL:        cfg.Cache.TTL,
		MaxEntries: cfg.Cache.MaxEntries,
	}, logger.With("component", "cache"))

	catalogConn := catalog.NewConnection(func() (catalog.Catalog, error) {
		client, err := catalog.NewClient(catalog.ClientConfig{
			BaseURL:      cfg.Catalog.BaseURL,
			AcademicYear: cfg.Catalog.AcademicYear,
			Fetcher:      newFetcher(cfg, "course-gateway/"+Version, respCache, logger),
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	})

	weatherClient := weather.NewClient(weather.Config{
		BaseURL: cfg.Weather.BaseURL,
		Fetcher: newFetcher(cfg, cfg.Weather.UserAgent, respCache, logger),
		Logger:  logger.With("component", "weather"),
	})

	manifest, err := packs.LoadManifest(cfg.Plugins.Manifest)
	if err != nil {
		_ = respCache.Close()
		return nil, err
	}

	registry := packs.NewRegistry(logger.With("component", "registry"))
	reports := packs.Discover(registry, builtins.Groups(builtins.Deps{
		Catalog: catalogConn,
		Weather: weatherClient,
	}), manifest, logger.With("component", "discovery"))

	return &Surface{
		Registry: registry,
		Reports:  reports,
		Cache:    respCache,
		Catalog:  catalogConn,
	}, nil
}

func newFetcher(cfg *config.Config, userAgent string, c cache.Cache, logger *slog.Logger) *upstream.Fetcher {
	return upstream.New(upstream.Config{
		UserAgent:        userAgent,
		Timeout:          cfg.Upstream.Timeout,
		Cache:            c,
		Logger:           logger.With("component", "upstream"),
		FailureThreshold: cfg.Upstream.FailureThreshold,
		OpenTimeout:      cfg.Upstream.OpenTimeout,
	})
}

// New creates a Gateway. It does not bind a listener; call Run for that.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Gateway, error) {
	surface, err := LoadSurface(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	gw := &Gateway{
		config:   cfg,
		logger:   logger.With("component", "gateway"),
		cache:    surface.Cache,
		catalog:  surface.Catalog,
		registry: surface.Registry,
		reports:  surface.Reports,
	}

	var recorder packs.Recorder
	if cfg.Database.Path != "" {
		ledger, err := store.NewSQLiteStore(cfg.Database.Path)
		if err != nil {
			_ = surface.Close()
			return nil, fmt.Errorf("opening call ledger: %w", err)
		}
		gw.ledger = ledger
		recorder = ledger
		gw.logger.Info("call ledger enabled", "path", cfg.Database.Path)
	}

	gw.router = packs.NewRouter(packs.RouterConfig{
		Registry: surface.Registry,
		Logger:   logger.With("component", "router"),
		Timeout:  cfg.Server.CallTimeout,
		Recorder: recorder,
	})

	gw.mcpServer, err = mcp.NewServer(mcp.Config{
		Router:  gw.router,
		Logger:  logger.With("component", "mcp"),
		Version: Version,
	})
	if err != nil {
		_ = gw.closeComponents()
		return nil, fmt.Errorf("creating MCP server: %w", err)
	}

	gw.httpServer = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           gw.buildHandler(logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return gw, nil
}

// buildHandler assembles routes and wraps them as recovery, CORS, auth, mux.
func (g *Gateway) buildHandler(logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	// Health endpoints sit outside the protected prefix.
	mux.HandleFunc("/health", g.handleHealth)
	mux.HandleFunc("/health/ready", g.handleReady)
	mux.HandleFunc("/{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/health", http.StatusFound)
	})

	g.mcpServer.RegisterRoutes(mux)

	gate := auth.Middleware(auth.Config{
		Secret: g.config.Auth.Token,
		Header: g.config.Auth.Header,
		Logger: logger,
	})

	return recoveryMiddleware(logger.With("component", "http"))(corsMiddleware(gate(mux)))
}

// Handler returns the complete HTTP handler, middleware included.
func (g *Gateway) Handler() http.Handler {
	return g.httpServer.Handler
}

// Registry returns the command registry populated by discovery.
func (g *Gateway) Registry() *packs.Registry {
	return g.registry
}

// Reports returns the per-group discovery outcomes.
func (g *Gateway) Reports() []packs.GroupReport {
	return g.reports
}

// Ledger returns the call ledger, or nil when it is disabled.
func (g *Gateway) Ledger() *store.SQLiteStore {
	return g.ledger
}

// Run binds the listener and serves until ctx is canceled or the server fails.
// Returns nil on graceful shutdown.
func (g *Gateway) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", g.httpServer.Addr)
	if err != nil {
		_ = g.closeComponents()
		return fmt.Errorf("listening on HTTP address: %w", err)
	}
	return g.Serve(ctx, ln)
}

// Serve serves on ln until ctx is canceled or the server fails.
func (g *Gateway) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		g.logger.Info("HTTP server listening",
			"addr", ln.Addr().String(),
			"commands", g.registry.Len(),
		)
		if err := g.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	var serverErr error
	select {
	case <-ctx.Done():
		g.logger.Info("context canceled, initiating shutdown")
	case serverErr = <-errCh:
		g.logger.Error("server error", "error", serverErr)
	}

	shutdownErr := g.gracefulShutdown()
	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// gracefulShutdown uses a fresh context since the caller's is already canceled.
func (g *Gateway) gracefulShutdown() error {
	timeout := g.config.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return g.Shutdown(ctx)
}

// appendCloseError appends an error with label if err is non-nil.
func appendCloseError(errs []error, label string, err error) []error {
	if err != nil {
		return append(errs, fmt.Errorf("%s: %w", label, err))
	}
	return errs
}

func (g *Gateway) closeComponents() error {
	var errs []error
	if g.catalog != nil {
		g.catalog.Reset()
	}
	if g.cache != nil {
		errs = appendCloseError(errs, "cache close", g.cache.Close())
		g.cache = nil
	}
	if g.ledger != nil {
		errs = appendCloseError(errs, "ledger close", g.ledger.Close())
		g.ledger = nil
	}
	return errors.Join(errs...)
}

// Shutdown stops the HTTP server and releases the cache, catalog connection and ledger.
func (g *Gateway) Shutdown(ctx context.Context) error {
	g.logger.Info("shutting down gateway")

	var errs []error
	errs = appendCloseError(errs, "HTTP shutdown", g.httpServer.Shutdown(ctx))
	if err := g.closeComponents(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %w", errors.Join(errs...))
	}
	return nil
}

// handleHealth returns 200 OK if the server is alive.
func (g *Gateway) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleReady returns 200 OK once at least one command is registered.
func (g *Gateway) handleReady(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	n := g.registry.Len()
	if n == 0 {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("no commands registered"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "ready (%d commands)", n)
}
