// Package docs provides a client for the Google Docs and Drive APIs.
//
// The Client exposes the document operations the MCP tools need: fetching a
// document (optionally rendered as Markdown or plain text), creating a new
// document from Markdown content, updating a document's content in place, and
// reading Drive file metadata. All calls go through the narrow API interface
// so tests can substitute a fake without touching the network.
//
// Errors returned by the Client carry a Kind (validation, not_found, auth,
// transport) so callers can report failures uniformly without inspecting
// Google API error types themselves.
package docs
