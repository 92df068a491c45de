// Package logging provides structured logging helpers built on log/slog.
//
// It defines the canonical attribute keys used across the codebase so that
// log lines from the tool layer, the docs client, and the server plumbing
// can be correlated.
//
// All log output goes to stderr: when the MCP server runs over the stdio
// transport, stdout carries the protocol stream and must stay clean.
package logging
