// Package store provides the gateway's call ledger using SQLite.
//
// # Architecture
//
// SQLiteStore implements packs.Recorder. When a database path is
// configured, the router hands it one CallRecord per dispatch, including
// unknown commands and failed calls. Recording failures are logged by the
// router and never reach callers.
//
// # Data Model
//
//   - calls: id, request_id, session_id, command, outcome, duration_ms, created_at
//
// outcome is "ok" for successful calls and the error kind otherwise
// (for example "InvalidArgument" or "UpstreamUnavailable").
//
// # Queries
//
//   - RecentCalls: newest calls first, optionally filtered by command and time range
//   - UsageStats: per-command call count, failure count, mean duration and last call
//
// # Usage
//
//	s, err := store.NewSQLiteStore("data/calls.db")
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	router := packs.NewRouter(packs.RouterConfig{Registry: reg, Recorder: s})
//
// Timestamps are stored as fixed-width UTC text so range filters compare
// lexically.
package store
