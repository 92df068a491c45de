package docs_tools

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	gdocs "google.golang.org/api/docs/v1"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"

	"github.com/teemow/gdocs-mcp/internal/docs"
	"github.com/teemow/gdocs-mcp/internal/server"
)

// fakeAPI implements docs.API with canned responses.
type fakeAPI struct {
	doc      *gdocs.Document
	fetchErr error

	file      *drive.File
	createErr error

	meta    *drive.File
	metaErr error

	batchErr   error
	batchCalls int
}

func (f *fakeAPI) FetchDocument(ctx context.Context, documentID string) (*gdocs.Document, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.doc, nil
}

func (f *fakeAPI) CreateFile(ctx context.Context, title string) (*drive.File, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.file, nil
}

func (f *fakeAPI) FetchFileMetadata(ctx context.Context, fileID string) (*drive.File, error) {
	if f.metaErr != nil {
		return nil, f.metaErr
	}
	return f.meta, nil
}

func (f *fakeAPI) BatchUpdate(ctx context.Context, documentID string, requests []*gdocs.Request) (*gdocs.BatchUpdateDocumentResponse, error) {
	f.batchCalls++
	if f.batchErr != nil {
		return nil, f.batchErr
	}
	return &gdocs.BatchUpdateDocumentResponse{DocumentId: documentID}, nil
}

func newTestContext(t *testing.T, api docs.API) *server.ServerContext {
	t.Helper()
	sc, err := server.NewServerContext(context.Background())
	if err != nil {
		t.Fatalf("Failed to create server context: %v", err)
	}
	t.Cleanup(func() { _ = sc.Shutdown() })
	if api != nil {
		sc.SetDocsClient(docs.NewClientWithAPI(api, "default"))
	}
	return sc
}

func request(args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{Arguments: args},
	}
}

// decodeEnvelope extracts and parses the JSON envelope from a tool result.
func decodeEnvelope(t *testing.T, result *mcp.CallToolResult) ToolResponse {
	t.Helper()
	if result == nil || len(result.Content) == 0 {
		t.Fatal("Expected a result with content")
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("Expected text content, got %T", result.Content[0])
	}
	var resp ToolResponse
	if err := json.Unmarshal([]byte(tc.Text), &resp); err != nil {
		t.Fatalf("Failed to parse envelope %q: %v", tc.Text, err)
	}
	return resp
}

func dataMap(t *testing.T, resp ToolResponse) map[string]interface{} {
	t.Helper()
	data, ok := resp.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("Expected object data, got %T", resp.Data)
	}
	return data
}

func sampleDocument() *gdocs.Document {
	return &gdocs.Document{
		DocumentId: "doc-1",
		Title:      "Meeting Notes",
		RevisionId: "rev-7",
		Body: &gdocs.Body{
			Content: []*gdocs.StructuralElement{
				{
					Paragraph: &gdocs.Paragraph{
						Elements: []*gdocs.ParagraphElement{
							{TextRun: &gdocs.TextRun{Content: "Agenda items\n"}},
						},
					},
				},
			},
		},
	}
}

func TestHandleGetDocumentMissingID(t *testing.T) {
	sc := newTestContext(t, &fakeAPI{})

	result, err := handleGetDocument(context.Background(), request(nil), sc)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !result.IsError {
		t.Error("Expected IsError for missing document_id")
	}

	resp := decodeEnvelope(t, result)
	if resp.Success {
		t.Error("Expected success=false")
	}
	if resp.Kind != string(docs.KindValidation) {
		t.Errorf("Kind = %q, want validation", resp.Kind)
	}
}

func TestHandleGetDocumentNoCredentials(t *testing.T) {
	// No client injected and no token on disk for this context.
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	sc := newTestContext(t, nil)

	result, err := handleGetDocument(context.Background(), request(map[string]interface{}{
		"document_id": "doc-1",
		"account":     "nosuchaccount",
	}), sc)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	resp := decodeEnvelope(t, result)
	if resp.Success {
		t.Fatal("Expected failure without credentials")
	}
	if resp.Kind != string(docs.KindAuth) {
		t.Errorf("Kind = %q, want auth", resp.Kind)
	}
}

func TestHandleGetDocumentMarkdown(t *testing.T) {
	sc := newTestContext(t, &fakeAPI{doc: sampleDocument()})

	result, err := handleGetDocument(context.Background(), request(map[string]interface{}{
		"document_id": "doc-1",
	}), sc)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatal("Expected a success result")
	}

	resp := decodeEnvelope(t, result)
	data := dataMap(t, resp)
	if data["format"] != "markdown" {
		t.Errorf("format = %v, want markdown", data["format"])
	}
	content, _ := data["content"].(string)
	if !strings.Contains(content, "# Meeting Notes") {
		t.Errorf("Markdown content missing title heading: %q", content)
	}
	if !strings.Contains(content, "Agenda items") {
		t.Errorf("Markdown content missing body text: %q", content)
	}
}

func TestHandleGetDocumentJSON(t *testing.T) {
	sc := newTestContext(t, &fakeAPI{doc: sampleDocument()})

	result, err := handleGetDocument(context.Background(), request(map[string]interface{}{
		"document_id": "doc-1",
		"format":      "json",
	}), sc)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	resp := decodeEnvelope(t, result)
	data := dataMap(t, resp)
	if data["document_id"] != "doc-1" || data["title"] != "Meeting Notes" {
		t.Errorf("Unexpected data: %v", data)
	}
	if data["revision_id"] != "rev-7" {
		t.Errorf("revision_id = %v, want rev-7", data["revision_id"])
	}
	if _, ok := data["body"]; !ok {
		t.Error("Expected body in json format data")
	}
}

func TestHandleGetDocumentInvalidFormat(t *testing.T) {
	sc := newTestContext(t, &fakeAPI{doc: sampleDocument()})

	result, err := handleGetDocument(context.Background(), request(map[string]interface{}{
		"document_id": "doc-1",
		"format":      "pdf",
	}), sc)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	resp := decodeEnvelope(t, result)
	if resp.Success || resp.Kind != string(docs.KindValidation) {
		t.Errorf("Expected validation failure, got %+v", resp)
	}
}

func TestHandleGetDocumentNotFound(t *testing.T) {
	sc := newTestContext(t, &fakeAPI{fetchErr: &googleapi.Error{Code: 404, Message: "not found"}})

	result, err := handleGetDocument(context.Background(), request(map[string]interface{}{
		"document_id": "missing",
	}), sc)
	if err != nil {
		t.Fatalf("Handler returned a transport error: %v", err)
	}
	if !result.IsError {
		t.Error("Expected IsError for a missing document")
	}

	resp := decodeEnvelope(t, result)
	if resp.Kind != string(docs.KindNotFound) {
		t.Errorf("Kind = %q, want not_found", resp.Kind)
	}
	if resp.Error == "" {
		t.Error("Expected a non-empty error string")
	}
}

func TestHandleCreateDocument(t *testing.T) {
	api := &fakeAPI{file: &drive.File{Id: "new-doc"}}
	sc := newTestContext(t, api)

	result, err := handleCreateDocument(context.Background(), request(map[string]interface{}{
		"title":   "Launch Plan",
		"content": "# Overview\n\nShip it.",
	}), sc)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	resp := decodeEnvelope(t, result)
	if !resp.Success {
		t.Fatalf("Expected success, got %+v", resp)
	}
	if resp.Message != "Document created successfully" {
		t.Errorf("Message = %q", resp.Message)
	}

	data := dataMap(t, resp)
	if data["document_id"] != "new-doc" || data["title"] != "Launch Plan" {
		t.Errorf("Unexpected data: %v", data)
	}
	url, _ := data["url"].(string)
	if !strings.Contains(url, "new-doc") {
		t.Errorf("URL %q does not reference the new document", url)
	}
	if api.batchCalls != 1 {
		t.Errorf("Expected one batch update for the content, got %d", api.batchCalls)
	}
}

func TestHandleCreateDocumentMissingTitle(t *testing.T) {
	sc := newTestContext(t, &fakeAPI{})

	result, err := handleCreateDocument(context.Background(), request(map[string]interface{}{
		"content": "text",
	}), sc)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	resp := decodeEnvelope(t, result)
	if resp.Success || resp.Kind != string(docs.KindValidation) {
		t.Errorf("Expected validation failure, got %+v", resp)
	}
}

func TestHandleUpdateDocumentContent(t *testing.T) {
	api := &fakeAPI{doc: sampleDocument()}
	sc := newTestContext(t, api)

	result, err := handleUpdateDocumentContent(context.Background(), request(map[string]interface{}{
		"document_id": "doc-1",
		"content":     "fresh content",
	}), sc)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	resp := decodeEnvelope(t, result)
	if !resp.Success {
		t.Fatalf("Expected success, got %+v", resp)
	}
	if resp.Message != "Document updated successfully with styled content" {
		t.Errorf("Message = %q", resp.Message)
	}
	if api.batchCalls != 1 {
		t.Errorf("Expected one batch update, got %d", api.batchCalls)
	}
}

func TestHandleUpdateDocumentContentMissingContent(t *testing.T) {
	sc := newTestContext(t, &fakeAPI{})

	result, err := handleUpdateDocumentContent(context.Background(), request(map[string]interface{}{
		"document_id": "doc-1",
	}), sc)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	resp := decodeEnvelope(t, result)
	if resp.Success || resp.Kind != string(docs.KindValidation) {
		t.Errorf("Expected validation failure, got %+v", resp)
	}
}

func TestHandleGetMetadata(t *testing.T) {
	sc := newTestContext(t, &fakeAPI{
		meta: &drive.File{
			Id:       "doc-1",
			Name:     "Meeting Notes",
			MimeType: "application/vnd.google-apps.document",
		},
	})

	result, err := handleGetMetadata(context.Background(), request(map[string]interface{}{
		"document_id": "doc-1",
	}), sc)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	resp := decodeEnvelope(t, result)
	if !resp.Success {
		t.Fatalf("Expected success, got %+v", resp)
	}

	data := dataMap(t, resp)
	if data["id"] != "doc-1" || data["name"] != "Meeting Notes" {
		t.Errorf("Unexpected data: %v", data)
	}
}

func TestRegisterDocsTools(t *testing.T) {
	sc := newTestContext(t, &fakeAPI{})
	s := mcpserver.NewMCPServer("test", "0.0.1")

	if err := RegisterDocsTools(s, sc); err != nil {
		t.Fatalf("RegisterDocsTools() error = %v", err)
	}
}
