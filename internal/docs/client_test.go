package docs

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	docs "google.golang.org/api/docs/v1"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
)

// fakeAPI is a test double for the API interface. It records calls and
// returns canned responses.
type fakeAPI struct {
	doc      *docs.Document
	fetchErr error

	file      *drive.File
	createErr error

	meta    *drive.File
	metaErr error

	batchErr error

	createdTitles []string
	batchDocIDs   []string
	batchRequests [][]*docs.Request
}

func (f *fakeAPI) FetchDocument(ctx context.Context, documentID string) (*docs.Document, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.doc, nil
}

func (f *fakeAPI) CreateFile(ctx context.Context, title string) (*drive.File, error) {
	f.createdTitles = append(f.createdTitles, title)
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

func (f *fakeAPI) BatchUpdate(ctx context.Context, documentID string, requests []*docs.Request) (*docs.BatchUpdateDocumentResponse, error) {
	f.batchDocIDs = append(f.batchDocIDs, documentID)
	f.batchRequests = append(f.batchRequests, requests)
	if f.batchErr != nil {
		return nil, f.batchErr
	}
	return &docs.BatchUpdateDocumentResponse{DocumentId: documentID}, nil
}

func TestGetDocumentValidation(t *testing.T) {
	c := NewClientWithAPI(&fakeAPI{}, "default")

	_, err := c.GetDocument(context.Background(), "")
	if err == nil {
		t.Fatal("Expected error for empty document ID")
	}
	if !IsValidation(err) {
		t.Errorf("Expected validation error, got kind %v", ErrKind(err))
	}
}

func TestGetDocumentErrorClassification(t *testing.T) {
	tests := []struct {
		name     string
		fetchErr error
		want     Kind
	}{
		{"missing document", &googleapi.Error{Code: 404}, KindNotFound},
		{"expired credentials", &googleapi.Error{Code: 401}, KindAuth},
		{"insufficient scope", &googleapi.Error{Code: 403}, KindAuth},
		{"server error", &googleapi.Error{Code: 500}, KindTransport},
		{"network failure", errors.New("dial tcp: timeout"), KindTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClientWithAPI(&fakeAPI{fetchErr: tt.fetchErr}, "default")
			_, err := c.GetDocument(context.Background(), "doc-1")
			if err == nil {
				t.Fatal("Expected an error")
			}
			if ErrKind(err) != tt.want {
				t.Errorf("ErrKind() = %v, want %v", ErrKind(err), tt.want)
			}
		})
	}
}

func TestGetDocumentSuccess(t *testing.T) {
	want := &docs.Document{DocumentId: "doc-1", Title: "Notes"}
	c := NewClientWithAPI(&fakeAPI{doc: want}, "work")

	got, err := c.GetDocument(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("GetDocument() error = %v", err)
	}
	if got.DocumentId != "doc-1" || got.Title != "Notes" {
		t.Errorf("GetDocument() = %+v", got)
	}
	if c.Account() != "work" {
		t.Errorf("Account() = %q, want work", c.Account())
	}
}

func TestCreateDocumentValidation(t *testing.T) {
	api := &fakeAPI{}
	c := NewClientWithAPI(api, "default")

	_, err := c.CreateDocument(context.Background(), "", "content")
	if !IsValidation(err) {
		t.Fatalf("Expected validation error, got %v", err)
	}
	if len(api.createdTitles) != 0 {
		t.Error("Expected no Drive call for invalid input")
	}
}

func TestCreateDocumentWithoutContent(t *testing.T) {
	api := &fakeAPI{file: &drive.File{Id: "new-doc"}}
	c := NewClientWithAPI(api, "default")

	info, err := c.CreateDocument(context.Background(), "My Doc", "")
	if err != nil {
		t.Fatalf("CreateDocument() error = %v", err)
	}
	if info.DocumentID != "new-doc" || info.Title != "My Doc" {
		t.Errorf("CreateDocument() = %+v", info)
	}
	if !strings.Contains(info.URL, "new-doc") {
		t.Errorf("URL %q does not reference the document ID", info.URL)
	}
	if len(api.batchRequests) != 0 {
		t.Error("Expected no batch update for empty content")
	}
}

func TestCreateDocumentWithContent(t *testing.T) {
	api := &fakeAPI{file: &drive.File{Id: "new-doc"}}
	c := NewClientWithAPI(api, "default")

	_, err := c.CreateDocument(context.Background(), "My Doc", "# Hello")
	if err != nil {
		t.Fatalf("CreateDocument() error = %v", err)
	}
	if len(api.batchDocIDs) != 1 || api.batchDocIDs[0] != "new-doc" {
		t.Fatalf("Expected one batch update on new-doc, got %v", api.batchDocIDs)
	}
	if len(api.batchRequests[0]) == 0 {
		t.Error("Expected styled content requests")
	}
}

func TestCreateDocumentBatchFailure(t *testing.T) {
	api := &fakeAPI{
		file:     &drive.File{Id: "new-doc"},
		batchErr: &googleapi.Error{Code: 500},
	}
	c := NewClientWithAPI(api, "default")

	_, err := c.CreateDocument(context.Background(), "My Doc", "content")
	if err == nil {
		t.Fatal("Expected error when content insert fails")
	}
	if ErrKind(err) != KindTransport {
		t.Errorf("ErrKind() = %v, want %v", ErrKind(err), KindTransport)
	}
	// The orphaned document ID must be recoverable from the message.
	if !strings.Contains(err.Error(), "new-doc") {
		t.Errorf("Error %q does not mention the created document", err)
	}
}

func TestUpdateDocumentContentReplacesExistingBody(t *testing.T) {
	api := &fakeAPI{
		doc: &docs.Document{
			DocumentId: "doc-1",
			Body: &docs.Body{
				Content: []*docs.StructuralElement{
					{EndIndex: 1},
					{EndIndex: 42},
				},
			},
		},
	}
	c := NewClientWithAPI(api, "default")

	result, err := c.UpdateDocumentContent(context.Background(), "doc-1", "new text")
	if err != nil {
		t.Fatalf("UpdateDocumentContent() error = %v", err)
	}
	if result.DocumentID != "doc-1" || !strings.Contains(result.URL, "doc-1") {
		t.Errorf("UpdateDocumentContent() = %+v", result)
	}

	requests := api.batchRequests[0]
	del := requests[0].DeleteContentRange
	if del == nil {
		t.Fatal("Expected the first request to delete existing content")
	}
	// The final newline of the body segment cannot be deleted.
	if del.Range.StartIndex != 1 || del.Range.EndIndex != 41 {
		t.Errorf("Delete range = [%d, %d), want [1, 41)", del.Range.StartIndex, del.Range.EndIndex)
	}
	if requests[1].InsertText == nil {
		t.Error("Expected insert requests after the delete")
	}
}

func TestUpdateDocumentContentEmptyDocument(t *testing.T) {
	api := &fakeAPI{
		doc: &docs.Document{
			DocumentId: "doc-1",
			Body: &docs.Body{
				Content: []*docs.StructuralElement{{EndIndex: 2}},
			},
		},
	}
	c := NewClientWithAPI(api, "default")

	if _, err := c.UpdateDocumentContent(context.Background(), "doc-1", "text"); err != nil {
		t.Fatalf("UpdateDocumentContent() error = %v", err)
	}
	for _, r := range api.batchRequests[0] {
		if r.DeleteContentRange != nil {
			t.Error("Unexpected deleteContentRange request")
		}
	}
}

// replayAPI simulates the document state carrying over between calls: each
// batchUpdate grows or shrinks the body the way the real service would, so
// a second fetch sees what the first update wrote.
type replayAPI struct {
	fakeAPI
	bodyEnd int64
}

func (f *replayAPI) FetchDocument(ctx context.Context, documentID string) (*docs.Document, error) {
	doc := &docs.Document{DocumentId: documentID, Title: "Notes"}
	if f.bodyEnd > 2 {
		doc.Body = &docs.Body{Content: []*docs.StructuralElement{
			{EndIndex: 1},
			{EndIndex: f.bodyEnd},
		}}
	} else {
		doc.Body = &docs.Body{Content: []*docs.StructuralElement{{EndIndex: 2}}}
	}
	return doc, nil
}

func (f *replayAPI) BatchUpdate(ctx context.Context, documentID string, requests []*docs.Request) (*docs.BatchUpdateDocumentResponse, error) {
	for _, r := range requests {
		switch {
		case r.DeleteContentRange != nil:
			f.bodyEnd -= r.DeleteContentRange.Range.EndIndex - r.DeleteContentRange.Range.StartIndex
		case r.InsertText != nil:
			f.bodyEnd += textLen16(r.InsertText.Text)
		}
	}
	return f.fakeAPI.BatchUpdate(ctx, documentID, requests)
}

func TestUpdateDocumentContentIdempotent(t *testing.T) {
	api := &replayAPI{bodyEnd: 2}
	c := NewClientWithAPI(api, "default")
	content := "# Title\n\nBody text."

	first, err := c.UpdateDocumentContent(context.Background(), "doc-1", content)
	if err != nil {
		t.Fatalf("First UpdateDocumentContent() error = %v", err)
	}
	second, err := c.UpdateDocumentContent(context.Background(), "doc-1", content)
	if err != nil {
		t.Fatalf("Second UpdateDocumentContent() error = %v", err)
	}

	// The second apply clears what the first wrote, but the confirmation
	// returned to the caller must not differ between the two.
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Successive identical updates returned different confirmations:\nfirst  %+v\nsecond %+v", first, second)
	}
	if len(api.batchRequests) != 2 {
		t.Fatalf("Expected two batch updates, got %d", len(api.batchRequests))
	}
	if api.batchRequests[0][0].DeleteContentRange != nil {
		t.Error("First update against an empty document must not delete")
	}
	if api.batchRequests[1][0].DeleteContentRange == nil {
		t.Error("Second update must clear the first update's content")
	}
}

func TestUpdateDocumentContentEmptyContentEmptyDocument(t *testing.T) {
	api := &fakeAPI{
		doc: &docs.Document{
			DocumentId: "doc-1",
			Body: &docs.Body{
				Content: []*docs.StructuralElement{{EndIndex: 2}},
			},
		},
	}
	c := NewClientWithAPI(api, "default")

	result, err := c.UpdateDocumentContent(context.Background(), "doc-1", "")
	if err != nil {
		t.Fatalf("UpdateDocumentContent() error = %v", err)
	}
	if result.DocumentID != "doc-1" {
		t.Errorf("UpdateDocumentContent() = %+v", result)
	}
	if len(api.batchDocIDs) != 0 {
		t.Error("Expected no batch update when there is nothing to change")
	}
}

func TestUpdateDocumentContentValidation(t *testing.T) {
	c := NewClientWithAPI(&fakeAPI{}, "default")

	_, err := c.UpdateDocumentContent(context.Background(), "", "text")
	if !IsValidation(err) {
		t.Fatalf("Expected validation error, got %v", err)
	}
}

func TestUpdateDocumentContentNotFound(t *testing.T) {
	api := &fakeAPI{fetchErr: &googleapi.Error{Code: 404}}
	c := NewClientWithAPI(api, "default")

	_, err := c.UpdateDocumentContent(context.Background(), "missing", "text")
	if !IsNotFound(err) {
		t.Fatalf("Expected not-found error, got %v", err)
	}
	if len(api.batchDocIDs) != 0 {
		t.Error("Expected no batch update after a failed fetch")
	}
}

func TestGetFileMetadata(t *testing.T) {
	api := &fakeAPI{
		meta: &drive.File{
			Id:           "file-1",
			Name:         "Notes",
			MimeType:     docMimeType,
			CreatedTime:  "2026-01-02T03:04:05Z",
			ModifiedTime: "2026-01-03T00:00:00Z",
			Owners: []*drive.User{
				{DisplayName: "Ada", EmailAddress: "ada@example.com"},
			},
		},
	}
	c := NewClientWithAPI(api, "default")

	meta, err := c.GetFileMetadata(context.Background(), "file-1")
	if err != nil {
		t.Fatalf("GetFileMetadata() error = %v", err)
	}
	if meta.ID != "file-1" || meta.Name != "Notes" {
		t.Errorf("GetFileMetadata() = %+v", meta)
	}
	if len(meta.Owners) != 1 || meta.Owners[0].EmailAddress != "ada@example.com" {
		t.Errorf("Owners = %+v", meta.Owners)
	}
}

func TestGetFileMetadataValidation(t *testing.T) {
	c := NewClientWithAPI(&fakeAPI{}, "default")

	if _, err := c.GetFileMetadata(context.Background(), ""); !IsValidation(err) {
		t.Fatalf("Expected validation error, got %v", err)
	}
}
