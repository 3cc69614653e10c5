// Package gateway assembles course-gateway from its parts and runs the HTTP server.
//
// # Startup
//
// New performs, in order:
//
//  1. Open the upstream response cache (Redis when REDIS_URL answers, else in-process)
//  2. Build circuit-broken fetchers for the catalog and weather APIs
//  3. Load the plugin manifest and discover the built-in command groups
//  4. Open the SQLite call ledger when DATABASE_PATH is set
//  5. Create the dispatch router and the MCP/REST server
//
// A group that fails to register is logged and skipped; the gateway still starts.
//
// # HTTP Surface
//
//	GET  /              redirect to /health
//	GET  /health        liveness, always "OK"
//	GET  /health/ready  503 until at least one command is registered
//	POST /mcp           MCP Streamable HTTP (JSON-RPC)
//	DELETE /mcp         end an MCP session
//	POST /mcp/call      plain JSON dispatch
//	GET  /mcp/commands  command catalog
//
// Everything under /mcp requires the configured bearer token. Requests pass
// through panic recovery, then CORS, then the auth gate.
//
// # Lifecycle
//
//	gw, err := gateway.New(ctx, cfg, logger)
//	if err != nil {
//	    return err
//	}
//	return gw.Run(ctx) // blocks until ctx is canceled
//
// Run and Serve shut down gracefully when ctx is canceled, closing the
// cache, the catalog connection and the ledger.
package gateway
