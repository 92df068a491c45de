// Package google provides OAuth2 authentication plumbing for Google APIs.
//
// Tokens are stored per account under the user cache directory and exposed
// through the TokenProvider interface so the docs client can be constructed
// with a fake token source in tests. OAuth client credentials come from the
// GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET environment variables.
package google
