package docs

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	docs "google.golang.org/api/docs/v1"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/teemow/gdocs-mcp/internal/google"
)

// API is the narrow surface of the Docs and Drive services the Client needs.
// Tests implement this interface instead of standing up HTTP fakes.
type API interface {
	// FetchDocument retrieves a document with all tabs included.
	FetchDocument(ctx context.Context, documentID string) (*docs.Document, error)

	// CreateFile creates an empty native Google Doc in Drive.
	CreateFile(ctx context.Context, title string) (*drive.File, error)

	// FetchFileMetadata retrieves Drive metadata for a file.
	FetchFileMetadata(ctx context.Context, fileID string) (*drive.File, error)

	// BatchUpdate applies a list of edit requests to a document.
	BatchUpdate(ctx context.Context, documentID string, requests []*docs.Request) (*docs.BatchUpdateDocumentResponse, error)
}

// googleAPI is the real API implementation backed by the generated services.
type googleAPI struct {
	docsService  *docs.Service
	driveService *drive.Service
}

func (g *googleAPI) FetchDocument(ctx context.Context, documentID string) (*docs.Document, error) {
	// includeTabsContent=true returns document.tabs populated for multi-tab
	// docs, or document.body for legacy docs
	return g.docsService.Documents.Get(documentID).
		IncludeTabsContent(true).
		Context(ctx).
		Do()
}

func (g *googleAPI) CreateFile(ctx context.Context, title string) (*drive.File, error) {
	return g.driveService.Files.Create(&drive.File{
		Name:     title,
		MimeType: docMimeType,
	}).Context(ctx).Do()
}

func (g *googleAPI) FetchFileMetadata(ctx context.Context, fileID string) (*drive.File, error) {
	return g.driveService.Files.Get(fileID).
		Fields("id, name, mimeType, createdTime, modifiedTime, size, owners").
		Context(ctx).
		Do()
}

func (g *googleAPI) BatchUpdate(ctx context.Context, documentID string, requests []*docs.Request) (*docs.BatchUpdateDocumentResponse, error) {
	return g.docsService.Documents.BatchUpdate(documentID, &docs.BatchUpdateDocumentRequest{
		Requests: requests,
	}).Context(ctx).Do()
}

// Client wraps the Google Docs and Drive API services
type Client struct {
	api     API
	account string // The account this client is associated with
}

// Account returns the account name this client is associated with
func (c *Client) Account() string {
	return c.account
}

// NewClientWithAPI creates a client over an explicit API implementation.
// Intended for tests and embedders that supply their own transport.
func NewClientWithAPI(api API, account string) *Client {
	return &Client{api: api, account: account}
}

// HasTokenForAccountWithProvider checks if a valid OAuth token exists for the specified account
func HasTokenForAccountWithProvider(account string, provider google.TokenProvider) bool {
	if provider == nil {
		return false
	}
	return provider.HasTokenForAccount(account)
}

// HasTokenForAccount checks if a valid OAuth token exists for the specified account
func HasTokenForAccount(account string) bool {
	return HasTokenForAccountWithProvider(account, google.NewFileTokenProvider())
}

// HasToken checks if a valid OAuth token exists for the default account
func HasToken() bool {
	return HasTokenForAccount("default")
}

// NewClientForAccountWithProvider creates a new Google Docs client with OAuth2
// authentication for a specific account. The OAuth token is retrieved from the
// provided token provider.
func NewClientForAccountWithProvider(ctx context.Context, account string, tokenProvider google.TokenProvider) (*Client, error) {
	if tokenProvider == nil {
		return nil, fmt.Errorf("token provider cannot be nil")
	}

	token, err := tokenProvider.GetTokenForAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("failed to get Google OAuth token for account %s: %w", account, err)
	}

	conf := google.GetOAuthConfig()
	tokenSource := conf.TokenSource(ctx, token)

	client := oauth2.NewClient(ctx, tokenSource)

	// Force HTTP/1.1 by disabling HTTP/2
	transport := client.Transport.(*oauth2.Transport)
	transport.Base = &http.Transport{
		ForceAttemptHTTP2: false,
	}

	docsService, err := docs.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create Docs service: %w", err)
	}

	driveService, err := drive.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service: %w", err)
	}

	return &Client{
		api: &googleAPI{
			docsService:  docsService,
			driveService: driveService,
		},
		account: account,
	}, nil
}

// NewClientForAccount creates a new Google Docs client for a specific account
// using the default file-based token provider.
func NewClientForAccount(ctx context.Context, account string) (*Client, error) {
	return NewClientForAccountWithProvider(ctx, account, google.NewFileTokenProvider())
}

// NewClientWithProvider creates a new Google Docs client for the default
// account using the provided token provider.
func NewClientWithProvider(ctx context.Context, provider google.TokenProvider) (*Client, error) {
	return NewClientForAccountWithProvider(ctx, "default", provider)
}

// NewClient creates a new Google Docs client for the default account.
// Returns an error if no valid token exists - use HasToken() to check first.
func NewClient(ctx context.Context) (*Client, error) {
	return NewClientForAccount(ctx, "default")
}

// GetDocument retrieves a Google Doc's content by document ID.
// This method automatically fetches all tabs to support documents with
// multiple tabs (introduced Oct 2024).
func (c *Client) GetDocument(ctx context.Context, documentID string) (*docs.Document, error) {
	if documentID == "" {
		return nil, validationErr("docs.get", "document_id is required")
	}

	doc, err := c.api.FetchDocument(ctx, documentID)
	if err != nil {
		return nil, classifyErr("docs.get", fmt.Sprintf("failed to get document %s", documentID), err)
	}

	return doc, nil
}

// GetDocumentAsMarkdown converts a Google Doc to Markdown format
func (c *Client) GetDocumentAsMarkdown(ctx context.Context, documentID string) (string, error) {
	doc, err := c.GetDocument(ctx, documentID)
	if err != nil {
		return "", err
	}

	return DocumentToMarkdown(doc)
}

// GetDocumentAsPlainText extracts plain text from a Google Doc
func (c *Client) GetDocumentAsPlainText(ctx context.Context, documentID string) (string, error) {
	doc, err := c.GetDocument(ctx, documentID)
	if err != nil {
		return "", err
	}

	return DocumentToPlainText(doc)
}

// CreateDocument creates a new native Google Doc with the given title. If
// content is non-empty it is interpreted as Markdown and inserted as styled
// text in a follow-up batch update.
func (c *Client) CreateDocument(ctx context.Context, title, content string) (*DocumentInfo, error) {
	if title == "" {
		return nil, validationErr("docs.create", "title is required")
	}

	file, err := c.api.CreateFile(ctx, title)
	if err != nil {
		return nil, classifyErr("docs.create", fmt.Sprintf("failed to create document %q", title), err)
	}

	if requests := MarkdownToRequests(content); len(requests) > 0 {
		if _, err := c.api.BatchUpdate(ctx, file.Id, requests); err != nil {
			// The document exists at this point. Report the styling failure
			// with the ID so the caller can recover the empty document.
			return nil, classifyErr("docs.create", fmt.Sprintf("created document %s but failed to insert content", file.Id), err)
		}
	}

	return &DocumentInfo{
		DocumentID: file.Id,
		Title:      title,
		URL:        DocumentURL(file.Id),
	}, nil
}

// UpdateDocumentContent replaces a document's body with the given Markdown
// content rendered as styled text. Existing content is deleted first, so the
// update is idempotent with respect to the document state.
func (c *Client) UpdateDocumentContent(ctx context.Context, documentID, content string) (*UpdateResult, error) {
	if documentID == "" {
		return nil, validationErr("docs.update", "document_id is required")
	}

	// Fetch the current document to determine whether it has content that
	// needs clearing before the insert.
	doc, err := c.api.FetchDocument(ctx, documentID)
	if err != nil {
		return nil, classifyErr("docs.update", fmt.Sprintf("failed to get document %s", documentID), err)
	}

	var requests []*docs.Request

	// A document always retains a trailing newline at the end of the body
	// segment, so the deletable range ends one short of the last EndIndex.
	if doc.Body != nil && len(doc.Body.Content) > 1 {
		last := doc.Body.Content[len(doc.Body.Content)-1]
		if last.EndIndex > 2 {
			requests = append(requests, &docs.Request{
				DeleteContentRange: &docs.DeleteContentRangeRequest{
					Range: &docs.Range{
						StartIndex: 1,
						EndIndex:   last.EndIndex - 1,
					},
				},
			})
		}
	}

	requests = append(requests, MarkdownToRequests(content)...)

	// The result deliberately omits anything derived from the request list:
	// reapplying the same content must confirm identically whether or not a
	// clearing delete was needed.
	result := &UpdateResult{
		DocumentID: documentID,
		Title:      doc.Title,
		URL:        DocumentURL(documentID),
	}

	if len(requests) == 0 {
		// Empty content against an already empty document. Nothing to send.
		return result, nil
	}

	if _, err := c.api.BatchUpdate(ctx, documentID, requests); err != nil {
		return nil, classifyErr("docs.update", fmt.Sprintf("failed to update document %s", documentID), err)
	}

	return result, nil
}

// GetFileMetadata retrieves metadata for any Google Drive file
func (c *Client) GetFileMetadata(ctx context.Context, fileID string) (*DocumentMetadata, error) {
	if fileID == "" {
		return nil, validationErr("drive.get", "file_id is required")
	}

	file, err := c.api.FetchFileMetadata(ctx, fileID)
	if err != nil {
		return nil, classifyErr("drive.get", fmt.Sprintf("failed to get file metadata %s", fileID), err)
	}

	metadata := &DocumentMetadata{
		ID:           file.Id,
		Name:         file.Name,
		MimeType:     file.MimeType,
		CreatedTime:  file.CreatedTime,
		ModifiedTime: file.ModifiedTime,
		Size:         file.Size,
	}

	for _, owner := range file.Owners {
		metadata.Owners = append(metadata.Owners, User{
			DisplayName:  owner.DisplayName,
			EmailAddress: owner.EmailAddress,
		})
	}

	return metadata, nil
}
