package internal

import (
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// Storage keys. They mirror the names the web client used in localStorage
// so exported backups stay recognisable.
const (
	KeyChatSessions     = "chat_sessions"
	KeyCurrentSession   = "current_session_id"
	KeyChatMessagesPfx  = "chat_messages:"
	KeyQueryHistory     = "query_history"
	KeyPinnedWidgets    = "pinned_widgets"
	KeySavedQueries     = "saved_queries"
	KeyConnectionURI    = "db_connection_uri"
	KeyConnectionConfig = "db_connection_config"
	KeySettings         = "settings"
	KeyEditorSQL        = "editor_sql"
	KeyEditorDatasets   = "editor_datasets"
	KeyUserToken        = "user_token"
	KeyUserInfo         = "user_info"
)

// Store is a small key/value store over SQLite, the CLI's stand-in for
// browser storage. Values are opaque strings, usually JSON.
type Store struct {
	db   *sql.DB
	path string
}

// OpenStore opens the store at path
func OpenStore(path string) (*Store, error) {
	db, err := OpenDatabase(path)
	if err != nil {
		return nil, &StorageError{Path: path, Op: "open", Err: err}
	}
	return &Store{db: db, path: path}, nil
}

// NewStore wraps an already opened database
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, path: "(db)"}
}

// Path returns the store location
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the raw value for key, or ErrNotFound
func (s *Store) Get(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM workbenchKV WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", &StorageError{Path: s.path, Op: "get " + key, Err: err}
	}
	return value, nil
}

// Set upserts a raw value
func (s *Store) Set(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO workbenchKV (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UnixMilli(),
	)
	if err != nil {
		return &StorageError{Path: s.path, Op: "set " + key, Err: err}
	}
	LogDebug("store: set %s (%d bytes)", key, len(value))
	return nil
}

// Delete removes a key. Deleting a missing key is not an error.
func (s *Store) Delete(keys ...string) error {
	for _, key := range keys {
		if _, err := s.db.Exec("DELETE FROM workbenchKV WHERE key = ?", key); err != nil {
			return &StorageError{Path: s.path, Op: "delete " + key, Err: err}
		}
	}
	return nil
}

// DeletePrefix removes every key starting with prefix
func (s *Store) DeletePrefix(prefix string) error {
	if _, err := s.db.Exec(`DELETE FROM workbenchKV WHERE key LIKE ? ESCAPE '\'`, escapeLike(prefix)+"%"); err != nil {
		return &StorageError{Path: s.path, Op: "delete " + prefix + "*", Err: err}
	}
	return nil
}

// Keys lists keys with the given prefix
func (s *Store) Keys(prefix string) ([]string, error) {
	pairs, err := QueryWorkbenchKV(s.db, escapeLike(prefix)+"%")
	if err != nil {
		return nil, &StorageError{Path: s.path, Op: "list " + prefix, Err: err}
	}
	keys := make([]string, 0, len(pairs))
	for _, p := range pairs {
		keys = append(keys, p.Key)
	}
	return keys, nil
}

// GetJSON decodes the value at key into v. Missing keys return ErrNotFound.
func (s *Store) GetJSON(key string, v interface{}) error {
	raw, err := s.Get(key)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return &ParseError{Source: "store", Key: key, Err: err}
	}
	return nil
}

// SetJSON encodes v and stores it at key
func (s *Store) SetJSON(key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return &ParseError{Source: "store", Key: key, Err: err}
	}
	return s.Set(key, string(data))
}

// loadList reads a JSON list, treating a missing or corrupt value as empty
func loadList[T any](s *Store, key string) ([]T, error) {
	var items []T
	err := s.GetJSON(key, &items)
	if errors.Is(err, ErrNotFound) {
		return []T{}, nil
	}
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		LogWarn("Failed to parse %s, starting empty: %v", key, err)
		return []T{}, nil
	}
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// GetString returns the value at key or def when absent
func (s *Store) GetString(key, def string) string {
	v, err := s.Get(key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			LogWarn("Failed to read %s: %v", key, err)
		}
		return def
	}
	return v
}

// escapeLike escapes LIKE wildcards; key names contain '_'.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)
	return r.Replace(s)
}
