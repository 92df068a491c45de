package docs_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/gdocs-mcp/internal/docs"
	"github.com/teemow/gdocs-mcp/internal/instrumentation"
	"github.com/teemow/gdocs-mcp/internal/server"
	"github.com/teemow/gdocs-mcp/internal/tools/common"
)

// RegisterDocsTools registers all Google Docs tools with the MCP server
func RegisterDocsTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	getDocumentTool := mcp.NewTool("get_document",
		mcp.WithDescription("Get a Google Doc by its ID"),
		mcp.WithString("document_id",
			mcp.Required(),
			mcp.Description("The ID of the document to retrieve"),
		),
		mcp.WithString("format",
			mcp.Description("Output format: 'markdown' (default), 'text', or 'json'"),
		),
		mcp.WithString("account",
			mcp.Description("Google account to use (default: 'default')"),
		),
	)

	s.AddTool(getDocumentTool, common.InstrumentedToolHandlerWithService(
		"get_document", instrumentation.ServiceDocs, instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetDocument(ctx, request, sc)
		}))

	createDocumentTool := mcp.NewTool("create_document",
		mcp.WithDescription("Create a new Google Doc with the specified title and content"),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("The title of the new document"),
		),
		mcp.WithString("content",
			mcp.Description("Optional initial content for the document, in Markdown"),
		),
		mcp.WithString("account",
			mcp.Description("Google account to use (default: 'default')"),
		),
	)

	s.AddTool(createDocumentTool, common.InstrumentedToolHandlerWithService(
		"create_document", instrumentation.ServiceDrive, instrumentation.OperationCreate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateDocument(ctx, request, sc)
		}))

	updateDocumentTool := mcp.NewTool("update_document_content",
		mcp.WithDescription("Replace a Google Doc's content, converting Markdown to styled text"),
		mcp.WithString("document_id",
			mcp.Required(),
			mcp.Description("The ID of the document to update"),
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("Markdown content to insert and style"),
		),
		mcp.WithString("account",
			mcp.Description("Google account to use (default: 'default')"),
		),
	)

	s.AddTool(updateDocumentTool, common.InstrumentedToolHandlerWithService(
		"update_document_content", instrumentation.ServiceDocs, instrumentation.OperationUpdate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleUpdateDocumentContent(ctx, request, sc)
		}))

	getMetadataTool := mcp.NewTool("get_document_metadata",
		mcp.WithDescription("Get Drive metadata for a Google Doc or any Drive file"),
		mcp.WithString("document_id",
			mcp.Required(),
			mcp.Description("The ID of the document or file"),
		),
		mcp.WithString("account",
			mcp.Description("Google account to use (default: 'default')"),
		),
	)

	s.AddTool(getMetadataTool, common.InstrumentedToolHandlerWithService(
		"get_document_metadata", instrumentation.ServiceDrive, instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetMetadata(ctx, request, sc)
		}))

	return nil
}

// clientForRequest resolves the Docs client for the account named in the
// request arguments.
func clientForRequest(sc *server.ServerContext, args map[string]interface{}) (*docs.Client, *mcp.CallToolResult, error) {
	account := common.GetAccountFromArgs(args)
	client := sc.DocsClientForAccount(account)
	if client == nil {
		result, err := errorResultf(docs.KindAuth,
			"no Google credentials for account %q: run 'gdocs-mcp auth --account %s' first", account, account)
		return nil, result, err
	}
	return client, nil, nil
}

// documentContent is the data payload for get_document in markdown and text
// formats.
type documentContent struct {
	DocumentID string `json:"document_id"`
	Format     string `json:"format"`
	Content    string `json:"content"`
}

// documentRaw is the data payload for get_document in json format. It
// mirrors the fields of the underlying Docs API document.
type documentRaw struct {
	DocumentID string `json:"document_id"`
	Title      string `json:"title"`
	RevisionID string `json:"revision_id,omitempty"`
	Body       any    `json:"body,omitempty"`
}

func handleGetDocument(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	documentID, ok := args["document_id"].(string)
	if !ok || documentID == "" {
		return errorResultf(docs.KindValidation, "document_id is required")
	}

	format := "markdown"
	if formatVal, ok := args["format"].(string); ok && formatVal != "" {
		format = formatVal
	}

	client, failure, err := clientForRequest(sc, args)
	if client == nil {
		return failure, err
	}

	switch format {
	case "markdown":
		content, err := client.GetDocumentAsMarkdown(ctx, documentID)
		if err != nil {
			return errorResult(err)
		}
		return successResult(documentContent{
			DocumentID: documentID,
			Format:     format,
			Content:    content,
		}, "")

	case "text":
		content, err := client.GetDocumentAsPlainText(ctx, documentID)
		if err != nil {
			return errorResult(err)
		}
		return successResult(documentContent{
			DocumentID: documentID,
			Format:     format,
			Content:    content,
		}, "")

	case "json":
		doc, err := client.GetDocument(ctx, documentID)
		if err != nil {
			return errorResult(err)
		}
		return successResult(documentRaw{
			DocumentID: doc.DocumentId,
			Title:      doc.Title,
			RevisionID: doc.RevisionId,
			Body:       doc.Body,
		}, "")

	default:
		return errorResultf(docs.KindValidation,
			"invalid format %q, must be 'markdown', 'text', or 'json'", format)
	}
}

func handleCreateDocument(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	title, ok := args["title"].(string)
	if !ok || title == "" {
		return errorResultf(docs.KindValidation, "title is required")
	}

	content := ""
	if contentVal, ok := args["content"].(string); ok {
		content = contentVal
	}

	client, failure, err := clientForRequest(sc, args)
	if client == nil {
		return failure, err
	}

	info, err := client.CreateDocument(ctx, title, content)
	if err != nil {
		return errorResult(err)
	}

	return successResult(info, "Document created successfully")
}

func handleUpdateDocumentContent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	documentID, ok := args["document_id"].(string)
	if !ok || documentID == "" {
		return errorResultf(docs.KindValidation, "document_id is required")
	}

	content, ok := args["content"].(string)
	if !ok {
		return errorResultf(docs.KindValidation, "content is required")
	}

	client, failure, err := clientForRequest(sc, args)
	if client == nil {
		return failure, err
	}

	result, err := client.UpdateDocumentContent(ctx, documentID, content)
	if err != nil {
		return errorResult(err)
	}

	return successResult(result, "Document updated successfully with styled content")
}

func handleGetMetadata(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	documentID, ok := args["document_id"].(string)
	if !ok || documentID == "" {
		return errorResultf(docs.KindValidation, "document_id is required")
	}

	client, failure, err := clientForRequest(sc, args)
	if client == nil {
		return failure, err
	}

	metadata, err := client.GetFileMetadata(ctx, documentID)
	if err != nil {
		return errorResult(err)
	}

	return successResult(metadata, fmt.Sprintf("Metadata for %s", metadata.Name))
}
