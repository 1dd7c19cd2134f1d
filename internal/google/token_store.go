package google

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/oauth2"
)

// Token store kinds accepted by NewTokenStore.
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

// ErrTokenNotFound is returned when no token is stored for an account.
var ErrTokenNotFound = errors.New("no token stored for account")

// TokenStore persists OAuth tokens per account.
type TokenStore interface {
	Load(ctx context.Context, account string) (*oauth2.Token, error)
	Save(ctx context.Context, account string, token *oauth2.Token) error
	Accounts(ctx context.Context) ([]string, error)
}

// NewTokenStore opens a store of the given kind. An empty path selects
// the default location in the user cache directory.
func NewTokenStore(kind, path string) (TokenStore, error) {
	if path == "" {
		dir, err := DefaultCacheDir()
		if err != nil {
			return nil, err
		}
		path = dir
		if kind == StoreSQLite {
			path = filepath.Join(dir, "tokens.db")
		}
	}
	switch kind {
	case "", StoreFile:
		return &FileTokenStore{Dir: path}, nil
	case StoreSQLite:
		return OpenSQLiteTokenStore(path)
	default:
		return nil, fmt.Errorf("unknown token store type %q", kind)
	}
}

// FileTokenStore keeps one JSON token file per account in Dir.
type FileTokenStore struct {
	Dir string
}

const tokenFilePrefix, tokenFileSuffix = "google-", ".token"

func (s *FileTokenStore) path(account string) string {
	return filepath.Join(s.Dir, tokenFilePrefix+account+tokenFileSuffix)
}

// Load reads the token of account.
func (s *FileTokenStore) Load(_ context.Context, account string) (*oauth2.Token, error) {
	if err := validateAccountName(account); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(s.path(account))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w %q", ErrTokenNotFound, account)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(b, &tok); err != nil {
		return nil, fmt.Errorf("invalid token file for account %q: %w", account, err)
	}
	return &tok, nil
}

// Save writes the token of account with owner-only permissions.
func (s *FileTokenStore) Save(_ context.Context, account string, token *oauth2.Token) error {
	if err := validateAccountName(account); err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0o700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	b, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := os.WriteFile(s.path(account), b, 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// Accounts lists the accounts with a stored token.
func (s *FileTokenStore) Accounts(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token directory: %w", err)
	}
	var accounts []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, tokenFilePrefix) || !strings.HasSuffix(name, tokenFileSuffix) {
			continue
		}
		accounts = append(accounts, strings.TrimSuffix(strings.TrimPrefix(name, tokenFilePrefix), tokenFileSuffix))
	}
	sort.Strings(accounts)
	return accounts, nil
}

// SQLiteTokenStore keeps tokens in a SQLite table keyed by account name.
type SQLiteTokenStore struct {
	db *sql.DB
}

// OpenSQLiteTokenStore opens (and if needed creates) the token database.
func OpenSQLiteTokenStore(path string) (*SQLiteTokenStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create token directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open token database: %w", err)
	}
	const schema = `CREATE TABLE IF NOT EXISTS tokens (
		account_name TEXT PRIMARY KEY,
		token TEXT NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tokens table: %w", err)
	}
	return &SQLiteTokenStore{db: db}, nil
}

// Load reads the token of account.
func (s *SQLiteTokenStore) Load(ctx context.Context, account string) (*oauth2.Token, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx, "SELECT token FROM tokens WHERE account_name = ?", account).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w %q", ErrTokenNotFound, account)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(raw, &tok); err != nil {
		return nil, fmt.Errorf("invalid stored token for account %q: %w", account, err)
	}
	return &tok, nil
}

// Save inserts or replaces the token of account.
func (s *SQLiteTokenStore) Save(ctx context.Context, account string, token *oauth2.Token) error {
	if err := validateAccountName(account); err != nil {
		return err
	}
	raw, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO tokens (account_name, token) VALUES (?, ?)", account, string(raw)); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// Accounts lists the accounts with a stored token.
func (s *SQLiteTokenStore) Accounts(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT account_name FROM tokens ORDER BY account_name")
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var accounts []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to list accounts: %w", err)
		}
		accounts = append(accounts, name)
	}
	return accounts, rows.Err()
}

// Close closes the database.
func (s *SQLiteTokenStore) Close() error {
	return s.db.Close()
}
