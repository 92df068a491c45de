package docs_tools

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/gdocs-mcp/internal/docs"
)

// ToolResponse is the envelope every tool returns. Exactly one of Data and
// Error is populated, keyed by Success.
type ToolResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Kind    string `json:"kind,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// marshalResponse renders the envelope as the tool result's text content.
// Failed envelopes are also flagged via IsError so clients that only check
// the flag still see the failure.
func marshalResponse(resp ToolResponse) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		// Data contained something unmarshalable. Degrade to a plain error
		// result rather than failing the RPC.
		return mcp.NewToolResultError(fmt.Sprintf("failed to serialize response: %v", err)), nil
	}

	result := mcp.NewToolResultText(string(data))
	result.IsError = !resp.Success
	return result, nil
}

func successResult(data any, message string) (*mcp.CallToolResult, error) {
	return marshalResponse(ToolResponse{Success: true, Data: data, Message: message})
}

// errorResult maps a client error to a failure envelope, carrying the error
// kind so callers can distinguish bad input from missing documents from
// credential problems.
func errorResult(err error) (*mcp.CallToolResult, error) {
	return marshalResponse(ToolResponse{
		Success: false,
		Kind:    string(docs.ErrKind(err)),
		Error:   err.Error(),
	})
}

// errorResultf builds a failure envelope for errors raised at the tool
// boundary, before any client call.
func errorResultf(kind docs.Kind, format string, args ...any) (*mcp.CallToolResult, error) {
	return marshalResponse(ToolResponse{
		Success: false,
		Kind:    string(kind),
		Error:   fmt.Sprintf(format, args...),
	})
}
