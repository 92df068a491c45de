package docs

import "fmt"

// docMimeType is the Drive MIME type for native Google Docs files.
const docMimeType = "application/vnd.google-apps.document"

// DocumentMetadata represents metadata about a Google Drive file
type DocumentMetadata struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	MimeType     string `json:"mimeType"`
	CreatedTime  string `json:"createdTime"`
	ModifiedTime string `json:"modifiedTime"`
	Size         int64  `json:"size,omitempty"`
	Owners       []User `json:"owners,omitempty"`
}

// User represents a Google Drive user
type User struct {
	DisplayName  string `json:"displayName"`
	EmailAddress string `json:"emailAddress"`
}

// DocumentInfo describes a newly created document.
type DocumentInfo struct {
	DocumentID string `json:"document_id"`
	Title      string `json:"title"`
	URL        string `json:"url"`
}

// UpdateResult confirms a content update. It carries only state that is
// stable across repeated applies of the same content, so callers can treat
// the operation as idempotent.
type UpdateResult struct {
	DocumentID string `json:"document_id"`
	Title      string `json:"title"`
	URL        string `json:"url"`
}

// DocumentURL returns the editor URL for a document ID.
func DocumentURL(documentID string) string {
	return fmt.Sprintf("https://docs.google.com/document/d/%s/edit", documentID)
}
