package export

import (
	"io"

	"github.com/iksnae/datalk/internal"
	"gopkg.in/yaml.v3"
)

// YAMLExporter exports a transcript in YAML format
type YAMLExporter struct{}

// Export writes the session and its messages
func (e *YAMLExporter) Export(transcript *internal.SessionTranscript, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer func() { _ = enc.Close() }()

	return enc.Encode(transcript)
}

// Extension returns the file extension for this format
func (e *YAMLExporter) Extension() string {
	return "yaml"
}
