// Package auth guards the dispatch endpoint with a single shared bearer secret.
//
// Requests under the protected prefix (default /mcp) are checked in order:
// missing server secret, missing or non-bearer credential, token mismatch.
// Anything else is forwarded unchanged. Paths outside the prefix are never
// inspected.
package auth
