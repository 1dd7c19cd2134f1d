// Package google provides OAuth2 authentication and token storage for the
// Google Calendar and Sheets APIs.
//
// Tokens are kept per account in a TokenStore: one JSON file per account in
// the user cache directory, or a row per account in a SQLite database.
// HTTP clients returned by the Authenticator refresh tokens transparently
// and write refreshed tokens back to the store.
package google
