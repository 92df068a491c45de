// Package docs_tools registers the Google Docs MCP tools.
//
// Every tool returns a JSON envelope as its text content:
//
//	{"success": true, "data": {...}, "message": "..."}
//	{"success": false, "kind": "not_found", "error": "..."}
//
// Handlers never return a Go error for a failed document operation; failures
// are reported through the envelope with the result marked as an error, so
// MCP clients always receive a well-formed tool result.
package docs_tools
