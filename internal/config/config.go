// ABOUTME: Configuration loading for course-gateway from .env, YAML and the environment.
// ABOUTME: Defaults are overlaid by the YAML file, then by set environment variables, then validated.

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// PathEnvVar names the environment variable that points at a YAML config file.
const PathEnvVar = "COURSE_GATEWAY_CONFIG"

// DefaultEnvFile is read when present; its absence is not an error.
const DefaultEnvFile = ".env"

// ErrMissingAuthToken is returned by Validate when no bearer secret is configured.
var ErrMissingAuthToken = errors.New("API_AUTH_TOKEN must be set")

// Config is the complete gateway configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Auth     AuthConfig     `yaml:"auth"`
	Logging  LoggingConfig  `yaml:"logging"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Weather  WeatherConfig  `yaml:"weather"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Cache    CacheConfig    `yaml:"cache"`
	Database DatabaseConfig `yaml:"database"`
	Plugins  PluginsConfig  `yaml:"plugins"`
}

// ServerConfig configures the HTTP listener and dispatch.
type ServerConfig struct {
	Host            string        `yaml:"host" env:"HOST"`
	Port            int           `yaml:"port" env:"PORT"`
	CallTimeout     time.Duration `yaml:"call_timeout" env:"CALL_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
}

// AuthConfig configures the bearer gate.
type AuthConfig struct {
	Token  string `yaml:"token" env:"API_AUTH_TOKEN"`
	Header string `yaml:"header" env:"API_AUTH_HEADER"`
}

// LoggingConfig configures the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
}

// CatalogConfig points the course catalog client at its upstream.
type CatalogConfig struct {
	BaseURL      string `yaml:"base_url" env:"CATALOG_BASE_URL"`
	AcademicYear string `yaml:"academic_year" env:"ACADEMIC_YEAR"`
}

// WeatherConfig points the weather client at its upstream.
type WeatherConfig struct {
	BaseURL   string `yaml:"base_url" env:"WEATHER_BASE_URL"`
	UserAgent string `yaml:"user_agent" env:"WEATHER_USER_AGENT"`
}

// UpstreamConfig tunes outbound HTTP and the per-host circuit breakers.
type UpstreamConfig struct {
	Timeout          time.Duration `yaml:"timeout" env:"UPSTREAM_TIMEOUT"`
	FailureThreshold uint32        `yaml:"failure_threshold" env:"BREAKER_FAILURES"`
	OpenTimeout      time.Duration `yaml:"open_timeout" env:"BREAKER_OPEN_TIMEOUT"`
}

// CacheConfig sizes the upstream response cache.
type CacheConfig struct {
	TTL        time.Duration `yaml:"ttl" env:"CACHE_TTL"`
	MaxEntries int           `yaml:"max_entries" env:"CACHE_MAX_ENTRIES"`
	RedisURL   string        `yaml:"redis_url" env:"REDIS_URL"`
}

// DatabaseConfig locates the call ledger. An empty Path disables it.
type DatabaseConfig struct {
	Path string `yaml:"path" env:"DATABASE_PATH"`
}

// PluginsConfig locates the TOML discovery manifest.
type PluginsConfig struct {
	Manifest string `yaml:"manifest" env:"PLUGIN_MANIFEST"`
}

// Options controls where Load looks.
type Options struct {
	// EnvFile is a dotenv file. Empty means DefaultEnvFile, which may be absent.
	EnvFile string
	// ConfigPath is a YAML file. Empty means the value of COURSE_GATEWAY_CONFIG, if any.
	ConfigPath string
	// Environ replaces the process environment when non-nil.
	Environ map[string]string
	// SkipValidation returns the loaded values unchecked, for offline subcommands.
	SkipValidation bool
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8000,
			CallTimeout:     30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Auth: AuthConfig{
			Header: "Authorization",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Catalog: CatalogConfig{
			BaseURL:      "https://explorecourses.stanford.edu/",
			AcademicYear: "2025-2026",
		},
		Weather: WeatherConfig{
			BaseURL:   "https://api.weather.gov",
			UserAgent: "weather-app/1.0",
		},
		Upstream: UpstreamConfig{
			Timeout:          30 * time.Second,
			FailureThreshold: 5,
			OpenTimeout:      30 * time.Second,
		},
		Cache: CacheConfig{
			TTL:        10 * time.Minute,
			MaxEntries: 512,
		},
	}
}

// Load builds a validated Config. Process environment variables win over
// values from the dotenv file, which win over the YAML file.
func Load(opts Options) (*Config, error) {
	environ, err := environment(opts)
	if err != nil {
		return nil, err
	}

	cfg := Default()

	path := opts.ConfigPath
	if path == "" {
		path = environ[PathEnvVar]
	}
	if path != "" {
		if err := loadFile(cfg, path, environ); err != nil {
			return nil, err
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if opts.SkipValidation {
		return cfg, nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func processEnv() map[string]string {
	out := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			out[k] = v
		}
	}
	return out
}

// environment merges the dotenv file under the process (or supplied) environment.
func environment(opts Options) (map[string]string, error) {
	base := opts.Environ
	if base == nil {
		base = processEnv()
	}

	path := opts.EnvFile
	explicit := path != ""
	if !explicit {
		path = DefaultEnvFile
	}

	fromFile, err := godotenv.Read(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return base, nil
		}
		return nil, fmt.Errorf("reading env file: %w", err)
	}

	merged := make(map[string]string, len(base)+len(fromFile))
	for k, v := range fromFile {
		merged[k] = v
	}
	for k, v := range base {
		merged[k] = v
	}
	return merged, nil
}

func loadFile(cfg *Config, path string, environ map[string]string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	expanded := expandEnvVars(string(data), environ)
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	return nil
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR} references with values from environ.
func expandEnvVars(s string, environ map[string]string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		return environ[envVarPattern.FindStringSubmatch(match)[1]]
	})
}

var academicYearPattern = regexp.MustCompile(`^(\d{4})-(\d{4})$`)

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Auth.Token) == "" {
		return ErrMissingAuthToken
	}
	if strings.TrimSpace(c.Auth.Header) == "" {
		return errors.New("auth.header is required")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.CallTimeout <= 0 {
		return errors.New("server.call_timeout must be positive")
	}
	if _, err := ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}
	m := academicYearPattern.FindStringSubmatch(c.Catalog.AcademicYear)
	if m == nil {
		return fmt.Errorf("catalog.academic_year must look like 2025-2026, got %q", c.Catalog.AcademicYear)
	}
	first, _ := strconv.Atoi(m[1])
	second, _ := strconv.Atoi(m[2])
	if second != first+1 {
		return fmt.Errorf("catalog.academic_year must span consecutive years, got %q", c.Catalog.AcademicYear)
	}
	if c.Cache.MaxEntries < 0 {
		return errors.New("cache.max_entries must not be negative")
	}
	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// ParseLevel maps debug, info, warn or error (any case) to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("logging.level must be debug, info, warn or error, got %q", s)
	}
}
