// Package server provides the runtime context shared by the MCP tool
// handlers, plus the sidecar HTTP servers for health probes and Prometheus
// metrics.
//
// ServerContext manages Google Docs API clients with lazy initialization and
// per-account caching. Clients are built from a google.TokenProvider, so the
// stdio transport reads tokens from disk while tests inject static tokens or
// pre-built clients.
package server
