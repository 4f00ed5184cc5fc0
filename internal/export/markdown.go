package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/iksnae/datalk/internal"
)

// MarkdownExporter exports a transcript in Markdown format
type MarkdownExporter struct{}

// Export writes a header, then each message with its SQL and result tables
func (e *MarkdownExporter) Export(transcript *internal.SessionTranscript, w io.Writer) error {
	session := transcript.Session

	_, _ = fmt.Fprintf(w, "# %s\n\n", escapeMarkdown(session.Name))
	_, _ = fmt.Fprintf(w, "**Session:** %s  \n", session.ID)
	if !session.CreatedAt.IsZero() {
		_, _ = fmt.Fprintf(w, "**Created:** %s  \n", session.CreatedAt.Format(time.RFC3339))
	}
	_, _ = fmt.Fprintf(w, "**Messages:** %d\n\n", len(transcript.Messages))

	_, _ = fmt.Fprintf(w, "---\n\n")
	_, _ = fmt.Fprintf(w, "## Messages\n\n")

	for i, msg := range transcript.Messages {
		timestamp := ""
		if !msg.Timestamp.IsZero() {
			timestamp = fmt.Sprintf(" (%s)", msg.Timestamp.Format(time.RFC3339))
		}

		_, _ = fmt.Fprintf(w, "**%s:**%s\n\n%s\n\n", msg.Role, timestamp, escapeMarkdown(msg.Content))

		if msg.SQL != "" && len(msg.Datasets) == 0 {
			writeSQLBlock(w, msg.SQL)
		}
		if msg.Confirmation != "" {
			_, _ = fmt.Fprintf(w, "_Execution %s._\n\n", msg.Confirmation)
		}
		for _, ds := range msg.Datasets {
			if ds.SQL != "" {
				writeSQLBlock(w, ds.SQL)
			}
			writeDataset(w, ds)
		}

		if i < len(transcript.Messages)-1 {
			_, _ = fmt.Fprintf(w, "---\n\n")
		}
	}

	return nil
}

func writeSQLBlock(w io.Writer, sql string) {
	_, _ = fmt.Fprintf(w, "```sql\n%s\n```\n\n", strings.TrimSpace(sql))
}

func writeDataset(w io.Writer, ds internal.Dataset) {
	switch ds.Type {
	case internal.DatasetError:
		_, _ = fmt.Fprintf(w, "> **Error:** %s\n\n", escapeMarkdown(ds.ErrorText()))
		return
	case internal.DatasetMessage:
		msg, rows := ds.Summary()
		if rows != "" {
			_, _ = fmt.Fprintf(w, "> %s (%s rows affected)\n\n", escapeMarkdown(msg), rows)
		} else {
			_, _ = fmt.Fprintf(w, "> %s\n\n", escapeMarkdown(msg))
		}
		return
	}

	columns := internal.Columns(ds.Data)
	if len(columns) == 0 {
		_, _ = fmt.Fprintf(w, "_No rows._\n\n")
		return
	}

	header := make([]string, len(columns))
	rule := make([]string, len(columns))
	for i, col := range columns {
		header[i] = escapeCell(col)
		rule[i] = "---"
	}
	_, _ = fmt.Fprintf(w, "| %s |\n| %s |\n", strings.Join(header, " | "), strings.Join(rule, " | "))

	cells := make([]string, len(columns))
	for _, row := range ds.Data {
		for i, col := range columns {
			v, _ := row.Get(col)
			cells[i] = escapeCell(internal.Stringify(v))
		}
		_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(cells, " | "))
	}
	_, _ = fmt.Fprintln(w)
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}

// escapeMarkdown escapes emphasis markers outside fenced code blocks
func escapeMarkdown(text string) string {
	lines := strings.Split(text, "\n")
	var result []string
	inCodeBlock := false

	for _, line := range lines {
		if strings.HasPrefix(line, "```") {
			inCodeBlock = !inCodeBlock
			result = append(result, line)
		} else if inCodeBlock {
			result = append(result, line)
		} else {
			line = strings.ReplaceAll(line, "**", "\\*\\*")
			line = strings.ReplaceAll(line, "__", "\\_\\_")
			result = append(result, line)
		}
	}

	return strings.Join(result, "\n")
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
