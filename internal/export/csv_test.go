package export

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/iksnae/datalk/internal"
)

func TestWriteCSV(t *testing.T) {
	tests := []struct {
		name    string
		dataset internal.Dataset
		want    string
		wantErr bool
	}{
		{
			name:    "table keeps column order",
			dataset: internal.CreateTestDataset("SELECT 1"),
			want:    "name,marks\nAlice,91\nBob,78\n",
		},
		{
			name: "quotes and nulls",
			dataset: internal.Dataset{Type: internal.DatasetTable, Data: []internal.Row{
				internal.NewRow("note", "a, b", "v", nil),
			}},
			want: "note,v\n\"a, b\",\n",
		},
		{
			name:    "no rows",
			dataset: internal.Dataset{Type: internal.DatasetTable},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := WriteCSV(tt.dataset, &buf)
			if (err != nil) != tt.wantErr {
				t.Fatalf("WriteCSV() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				var exportErr *internal.ExportError
				if !errors.As(err, &exportErr) {
					t.Errorf("error %T is not an ExportError", err)
				}
				return
			}
			if got := buf.String(); got != tt.want {
				t.Errorf("WriteCSV() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWriteBackup(t *testing.T) {
	backup := &internal.Backup{
		Settings: internal.DefaultSettings(),
		History:  []internal.HistoryEntry{{ID: "h1", SQL: "SELECT 1", Status: internal.StatusSuccess}},
		SQL:      "SELECT 2",
	}

	var buf bytes.Buffer
	if err := WriteBackup(backup, &buf); err != nil {
		t.Fatalf("WriteBackup() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{`"settings"`, `"rowLimit": 100`, `"history"`, `"SELECT 1"`, `"sql": "SELECT 2"`} {
		if !strings.Contains(out, want) {
			t.Errorf("backup missing %s\n%s", want, out)
		}
	}
}
