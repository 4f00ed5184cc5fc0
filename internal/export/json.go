package export

import (
	"encoding/json"
	"io"

	"github.com/iksnae/datalk/internal"
)

// JSONExporter exports a transcript as one pretty-printed document
type JSONExporter struct{}

// Export writes the session and its messages
func (e *JSONExporter) Export(transcript *internal.SessionTranscript, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(transcript)
}

// Extension returns the file extension for this format
func (e *JSONExporter) Extension() string {
	return "json"
}
