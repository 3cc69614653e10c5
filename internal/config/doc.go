// Package config handles configuration loading for course-gateway.
//
// # Overview
//
// Values are layered, lowest precedence first:
//
//  1. Built-in defaults (Default)
//  2. An optional YAML file, from Options.ConfigPath or COURSE_GATEWAY_CONFIG
//  3. A dotenv file (.env by default; a missing default file is ignored)
//  4. The process environment
//
// Only variables that are actually set override earlier layers, so a YAML
// value survives unless its variable is exported.
//
// # Environment Variables
//
//	API_AUTH_TOKEN      bearer secret (required)
//	API_AUTH_HEADER     header carrying the credential (Authorization)
//	HOST, PORT          listen address (localhost:8000)
//	LOG_LEVEL           debug, info, warn or error (info)
//	LOG_FORMAT          text or json (text)
//	CALL_TIMEOUT        per-dispatch deadline (30s)
//	CATALOG_BASE_URL    course catalog endpoint
//	ACADEMIC_YEAR       catalog year, e.g. 2025-2026
//	WEATHER_BASE_URL    weather API endpoint
//	WEATHER_USER_AGENT  User-Agent sent to the weather API
//	UPSTREAM_TIMEOUT    outbound request timeout (30s)
//	BREAKER_FAILURES    consecutive failures that open a host breaker (5)
//	CACHE_TTL           upstream response cache TTL (10m)
//	CACHE_MAX_ENTRIES   in-process cache bound (512)
//	REDIS_URL           shared response cache; in-process when unset
//	DATABASE_PATH       SQLite call ledger; disabled when unset
//	PLUGIN_MANIFEST     TOML file enabling or disabling command groups
//
// # Configuration File
//
//	server:
//	  port: 8000
//	  call_timeout: "30s"
//	auth:
//	  token: "${API_AUTH_TOKEN}"
//
// ${VAR} references are expanded before parsing; unknown names expand to "".
// Durations use time.ParseDuration syntax.
//
// # Validation
//
// Load calls Validate, which fails with ErrMissingAuthToken when no bearer
// secret is configured so the process exits before binding a listener.
package config
