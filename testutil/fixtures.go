package testutil

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

// Identifiers used by SampleKV
const (
	SampleSessionID = "6f1c1b9e-0000-4000-8000-000000000001"
	SampleHistoryID = "6f1c1b9e-0000-4000-8000-000000000002"
)

// SampleKV returns stored values for a workbench with one chat exchange
func SampleKV() map[string]string {
	return map[string]string{
		"chat_sessions":      `[{"id":"` + SampleSessionID + `","name":"Top students","created_at":"2024-03-01T12:00:00Z"}]`,
		"current_session_id": SampleSessionID,
		"chat_messages:" + SampleSessionID: `[` +
			`{"role":"user","content":"Show the top students","timestamp":"2024-03-01T12:00:00Z"},` +
			`{"role":"assistant","content":"Here is the result:","sql":"SELECT name, marks FROM students",` +
			`"datasets":[{"type":"bar","sql":"SELECT name, marks FROM students","data":[{"name":"Alice","marks":91},{"name":"Bob","marks":78}]}],` +
			`"timestamp":"2024-03-01T12:00:01Z"}]`,
		"query_history": `[{"id":"` + SampleHistoryID + `","sql":"SELECT name, marks FROM students","timestamp":"2024-03-01T12:00:01Z","status":"success"}]`,
		"settings":      `{"fontSize":14,"rowLimit":50,"safeMode":true}`,
	}
}

// CreateStoreFixture writes a workbench database file at dbPath holding kv
func CreateStoreFixture(t *testing.T, dbPath string, kv map[string]string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		t.Fatalf("Failed to create fixture directory: %v", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.Exec(createKVTableSQL); err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}
	for key, value := range kv {
		if _, err := db.Exec("INSERT OR REPLACE INTO workbenchKV (key, value, updated_at) VALUES (?, ?, 0)", key, value); err != nil {
			t.Fatalf("Failed to insert %s: %v", key, err)
		}
	}
}
