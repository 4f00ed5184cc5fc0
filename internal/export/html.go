package export

import (
	"bytes"
	"fmt"
	"html"
	"io"

	"github.com/iksnae/datalk/internal"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// HTMLExporter renders the Markdown transcript to a standalone HTML page
type HTMLExporter struct{}

var (
	markdown = goldmark.New(goldmark.WithExtensions(extension.Table))
	policy   = bluemonday.UGCPolicy()
)

// Export renders and sanitises the transcript
func (e *HTMLExporter) Export(transcript *internal.SessionTranscript, w io.Writer) error {
	var md bytes.Buffer
	if err := (&MarkdownExporter{}).Export(transcript, &md); err != nil {
		return err
	}

	var body bytes.Buffer
	if err := markdown.Convert(md.Bytes(), &body); err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}

	_, err := fmt.Fprintf(w, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n</head>\n<body>\n%s</body>\n</html>\n",
		html.EscapeString(transcript.Session.Name), policy.SanitizeBytes(body.Bytes()))
	return err
}

// Extension returns the file extension for this format
func (e *HTMLExporter) Extension() string {
	return "html"
}
