package google

// DefaultOAuthScopes are the Google OAuth scopes required for the document
// tools. These scopes are used consistently for all OAuth configurations.
//
// The scopes provide access to:
//   - Google Docs: read and write document content
//   - Google Drive: create documents and read file metadata
var DefaultOAuthScopes = []string{
	// Google Docs scope
	"https://www.googleapis.com/auth/documents",

	// Google Drive scope
	"https://www.googleapis.com/auth/drive",
}
