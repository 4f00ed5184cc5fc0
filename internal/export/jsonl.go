package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/iksnae/datalk/internal"
)

// JSONLExporter exports one message per line
type JSONLExporter struct{}

// Export writes every message of the transcript as a JSON object
func (e *JSONLExporter) Export(transcript *internal.SessionTranscript, w io.Writer) error {
	enc := json.NewEncoder(w)

	for _, msg := range transcript.Messages {
		obj := map[string]interface{}{
			"session": transcript.Session.ID,
			"role":    msg.Role,
			"content": msg.Content,
		}
		if !msg.Timestamp.IsZero() {
			obj["timestamp"] = msg.Timestamp
		}
		if msg.SQL != "" {
			obj["sql"] = msg.SQL
		}
		if len(msg.Datasets) > 0 {
			obj["datasets"] = msg.Datasets
		}

		if err := enc.Encode(obj); err != nil {
			return fmt.Errorf("failed to encode message: %w", err)
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
