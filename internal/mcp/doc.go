// Package mcp implements the HTTP dispatch surfaces for the command registry.
//
// # Overview
//
// Two surfaces share one packs.Router:
//
//   - POST /mcp: MCP Streamable HTTP (JSON-RPC 2.0) for AI clients
//   - POST /mcp/call, GET /mcp/commands: plain JSON for scripts and tests
//
// Everything under /mcp is expected to sit behind the bearer gate in
// package auth; this package performs no authentication of its own.
//
// # Sessions
//
// initialize creates a session and returns its id in the Mcp-Session-Id
// header. Every later JSON-RPC request must carry that header. DELETE /mcp
// with the header ends the session. Notifications (requests without an id)
// are answered with 202 Accepted and no body.
//
// # Tool Discovery
//
//	{"jsonrpc": "2.0", "method": "tools/list", "id": 1}
//
// The result lists every registered command with its name, title,
// description and inputSchema.
//
// # Tool Execution
//
//	{
//	  "jsonrpc": "2.0",
//	  "method": "tools/call",
//	  "params": {
//	    "name": "search-courses",
//	    "arguments": {"query": "machine learning", "terms": ["Autumn"]}
//	  },
//	  "id": 2
//	}
//
// Failures are JSON-RPC errors whose data carries the error kind:
//
//	{"code": -32602, "message": "invalid argument \"terms\": ...", "data": {"kind": "InvalidArgument"}}
//
// When the client accepts text/event-stream, progress notifications sent by
// a command (notifications/message) are streamed as SSE events and the
// final response is the last event. Commands that send no notifications
// get a plain JSON response either way.
//
// # REST
//
//	POST /mcp/call {"command": "get-alert", "arguments": {"state": "CA"}}
//	200 {"content": [{"type": "text", "text": "..."}]}
//	400 {"error": {"kind": "InvalidArgument", "message": "..."}}
//
// Status codes follow packs.ErrorKind.HTTPStatus.
//
// # Usage
//
//	server, err := mcp.NewServer(mcp.Config{Router: router, Logger: logger})
//	if err != nil {
//	    return err
//	}
//	server.RegisterRoutes(mux)
package mcp
