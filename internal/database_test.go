package internal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/iksnae/datalk/testutil"
)

func TestOpenDatabase(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T) string
		wantErr bool
	}{
		{
			name: "existing database",
			setup: func(t *testing.T) string {
				dbPath := filepath.Join(testutil.CreateTempDir(t), "workbench.db")
				testutil.CreateStoreFixture(t, dbPath, testutil.SampleKV())
				return dbPath
			},
		},
		{
			name: "new database in missing directory",
			setup: func(t *testing.T) string {
				return filepath.Join(testutil.CreateTempDir(t), "nested", "dir", "workbench.db")
			},
		},
		{
			name: "in memory",
			setup: func(t *testing.T) string {
				return ":memory:"
			},
		},
		{
			name: "directory instead of file",
			setup: func(t *testing.T) string {
				return testutil.CreateTempDir(t)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, err := OpenDatabase(tt.setup(t))
			if (err != nil) != tt.wantErr {
				t.Fatalf("OpenDatabase() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			defer db.Close()

			if _, err := QueryWorkbenchKV(db, "%"); err != nil {
				t.Errorf("workbenchKV not queryable: %v", err)
			}
		})
	}
}

func TestOpenDatabase_Permissions(t *testing.T) {
	dir := filepath.Join(testutil.CreateTempDir(t), "home")
	dbPath := filepath.Join(dir, "workbench.db")

	db, err := OpenDatabase(dbPath)
	if err != nil {
		t.Fatalf("OpenDatabase() error = %v", err)
	}
	defer db.Close()

	for path, want := range map[string]os.FileMode{dir: 0700, dbPath: 0600} {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}
		if got := info.Mode().Perm(); got != want {
			t.Errorf("%s mode = %o, want %o", filepath.Base(path), got, want)
		}
	}
}

func TestQueryWorkbenchKV(t *testing.T) {
	db := testutil.CreateTestDB(t)

	tests := []struct {
		name    string
		pattern string
		want    int
	}{
		{name: "all keys", pattern: "%", want: len(testutil.SampleKV())},
		{name: "message keys", pattern: "chat\\_messages:%", want: 1},
		{name: "escaped underscore does not match other chars", pattern: "chat\\_sessions", want: 1},
		{name: "no match", pattern: "missing%", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pairs, err := QueryWorkbenchKV(db, tt.pattern)
			if err != nil {
				t.Fatalf("QueryWorkbenchKV() error = %v", err)
			}
			if len(pairs) != tt.want {
				t.Errorf("QueryWorkbenchKV(%q) returned %d pairs, want %d", tt.pattern, len(pairs), tt.want)
			}
		})
	}
}
