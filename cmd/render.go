package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/datalk/internal"
)

const maxCellWidth = 40

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	userMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39")).
				Bold(true)

	assistantMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("135")).
				Bold(true)

	messageContentStyle = lipgloss.NewStyle().
				PaddingLeft(2)

	sqlStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			PaddingLeft(2)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)
)

func renderMessage(w io.Writer, index int, msg internal.Message, rowLimit int) {
	var header string
	switch msg.Role {
	case internal.RoleUser:
		header = userMessageStyle.Render("👤 You")
	case internal.RoleAssistant:
		header = assistantMessageStyle.Render("🤖 Agent")
	default:
		header = dateStyle.Render(msg.Role)
	}
	header += " " + idStyle.Render(fmt.Sprintf("[%d]", index))
	if !msg.Timestamp.IsZero() {
		header += " " + dateStyle.Render(msg.Timestamp.Local().Format("15:04:05"))
	}
	fmt.Fprintln(w, header)

	if content := strings.TrimSpace(msg.Content); content != "" {
		fmt.Fprintln(w, messageContentStyle.Render(wrapText(content, 80)))
	}
	if msg.SQL != "" && len(msg.Datasets) == 0 {
		fmt.Fprintln(w, sqlStyle.Render(msg.SQL))
	}

	switch {
	case msg.AwaitingConfirmation():
		fmt.Fprintln(w, warningStyle.Render("  ⚠ Awaiting confirmation: run `datalk confirm` to execute or `datalk confirm --cancel`"))
	case msg.Confirmation == internal.ConfirmationConfirmed:
		fmt.Fprintln(w, dateStyle.Render("  (execution confirmed)"))
	case msg.Confirmation == internal.ConfirmationCancelled:
		fmt.Fprintln(w, dateStyle.Render("  (execution cancelled)"))
	}

	for _, ds := range msg.Datasets {
		renderDataset(w, ds, rowLimit)
	}
	fmt.Fprintln(w)
}

func renderDataset(w io.Writer, ds internal.Dataset, rowLimit int) {
	if ds.SQL != "" {
		fmt.Fprintln(w, sqlStyle.Render("› "+ds.SQL))
	}
	switch ds.Type {
	case internal.DatasetError:
		fmt.Fprintln(w, errorStyle.Render("  ✗ "+ds.ErrorText()))
	case internal.DatasetMessage:
		msg, rows := ds.Summary()
		line := "  ✓ " + msg
		if rows != "" {
			line += fmt.Sprintf(" (%s rows affected)", rows)
		}
		fmt.Fprintln(w, successStyle.Render(line))
	default:
		if ds.Type != "" && ds.Type != internal.DatasetTable && len(ds.Data) > 0 {
			chart := internal.InferChartConfig(ds.Data)
			fmt.Fprintln(w, infoStyle.Render(fmt.Sprintf("  %s chart (x: %s, y: %s)", ds.Type, chart.XAxis, chart.YAxis)))
		}
		renderRows(w, ds.Data, rowLimit)
	}
}

// renderRows prints rows as an aligned table, at most limit of them
func renderRows(w io.Writer, rows []internal.Row, limit int) {
	if len(rows) == 0 {
		fmt.Fprintln(w, dateStyle.Render("  (no rows)"))
		return
	}
	columns := internal.Columns(rows)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	titles := make([]string, len(columns))
	for i, c := range columns {
		titles[i] = titleStyle.Render(c)
	}
	_, _ = fmt.Fprintln(tw, "  "+strings.Join(titles, "\t")+"\t")

	shown := rows
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}
	for _, row := range shown {
		cells := make([]string, len(columns))
		for i, c := range columns {
			v, ok := row.Get(c)
			if ok {
				cells[i] = truncate(internal.Stringify(v), maxCellWidth)
			}
		}
		_, _ = fmt.Fprintln(tw, "  "+strings.Join(cells, "\t")+"\t")
	}
	_ = tw.Flush()

	if remaining := len(rows) - len(shown); remaining > 0 {
		fmt.Fprintln(w, dateStyle.Italic(true).Render(fmt.Sprintf("  ... (%d more row(s))", remaining)))
	}
	fmt.Fprintln(w, countStyle.Render(fmt.Sprintf("  %d row(s)", len(rows))))
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func truncate(s string, width int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len([]rune(s)) <= width {
		return s
	}
	return string([]rune(s)[:width-3]) + "..."
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func wrapText(text string, width int) string {
	lines := strings.Split(text, "\n")
	var wrapped []string

	for _, line := range lines {
		if len(line) <= width {
			wrapped = append(wrapped, line)
			continue
		}

		words := strings.Fields(line)
		currentLine := ""
		for _, word := range words {
			if len(currentLine)+len(word)+1 > width && currentLine != "" {
				wrapped = append(wrapped, currentLine)
				currentLine = word
				continue
			}
			if currentLine == "" {
				currentLine = word
			} else {
				currentLine += " " + word
			}
		}
		if currentLine != "" {
			wrapped = append(wrapped, currentLine)
		}
	}
	return strings.Join(wrapped, "\n")
}
