package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

const createKVTableSQL = `
	CREATE TABLE IF NOT EXISTS workbenchKV (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	)`

// CreateInMemoryDB creates an in-memory SQLite database with the workbench table
func CreateInMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to create in-memory database: %v", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createKVTableSQL); err != nil {
		_ = db.Close()
		t.Fatalf("Failed to create workbenchKV table: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return db
}

// CreateTestDB creates an in-memory database seeded with a chat session,
// a history entry and settings.
func CreateTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db := CreateInMemoryDB(t)
	for key, value := range SampleKV() {
		if _, err := db.Exec("INSERT INTO workbenchKV (key, value, updated_at) VALUES (?, ?, 0)", key, value); err != nil {
			t.Fatalf("Failed to insert %s: %v", key, err)
		}
	}
	return db
}
