package export

import (
	"bufio"
	"bytes"
	"encoding/json"
	"testing"

	"github.com/iksnae/datalk/internal"
)

func TestJSONLExporter_Export(t *testing.T) {
	tests := []struct {
		name       string
		transcript *internal.SessionTranscript
		wantLines  int
	}{
		{
			name:       "basic transcript",
			transcript: internal.CreateTestTranscript("s1"),
			wantLines:  2,
		},
		{
			name:       "empty transcript",
			transcript: internal.CreateTestTranscriptWithMessages("s2", nil),
			wantLines:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := (&JSONLExporter{}).Export(tt.transcript, &buf); err != nil {
				t.Fatalf("Export() error = %v", err)
			}

			lines := 0
			scanner := bufio.NewScanner(&buf)
			for scanner.Scan() {
				lines++
				var obj map[string]interface{}
				if err := json.Unmarshal(scanner.Bytes(), &obj); err != nil {
					t.Fatalf("line %d is not valid JSON: %v", lines, err)
				}
				if obj["session"] != tt.transcript.Session.ID {
					t.Errorf("line %d session = %v", lines, obj["session"])
				}
				if _, ok := obj["role"]; !ok {
					t.Errorf("line %d has no role", lines)
				}
			}
			if lines != tt.wantLines {
				t.Errorf("got %d lines, want %d", lines, tt.wantLines)
			}
		})
	}
}

func TestJSONLExporter_OmitsEmptyFields(t *testing.T) {
	transcript := internal.CreateTestTranscriptWithMessages("s3", []internal.Message{
		{Role: internal.RoleUser, Content: "hi"},
	})

	var buf bytes.Buffer
	if err := (&JSONLExporter{}).Export(transcript, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	var obj map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &obj); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"timestamp", "sql", "datasets"} {
		if _, ok := obj[key]; ok {
			t.Errorf("unexpected %q in %v", key, obj)
		}
	}
}
