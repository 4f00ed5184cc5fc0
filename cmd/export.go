package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/iksnae/datalk/internal"
	"github.com/iksnae/datalk/internal/export"
	"github.com/spf13/cobra"
)

var (
	format     string
	outputDir  string
	sessionID  string
	exportCurr bool
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export chat sessions to files",
	Long: fmt.Sprintf(`Export chat sessions with their SQL and result sets (formats: %s).

Exports every session by default; --session-id picks one (use
'datalk chat list' to see IDs) and --current the current one. Each
session is written to session_<id>.<ext> in the output directory.`, strings.Join(export.Formats, ", ")),
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		exporter, err := export.NewExporter(format)
		if err != nil {
			return err
		}
		w, err := workbench()
		if err != nil {
			return err
		}

		var transcripts []*internal.SessionTranscript
		switch {
		case sessionID != "" || exportCurr:
			ref := sessionID
			if ref == "" {
				current, err := w.Sessions.Current()
				if err != nil {
					return err
				}
				ref = current.ID
			}
			transcript, err := w.Sessions.Transcript(ref)
			if err != nil {
				return fmt.Errorf("%w (use 'datalk chat list' to see available sessions)", err)
			}
			transcripts = append(transcripts, transcript)
		default:
			transcripts, err = w.Sessions.Transcripts()
			if err != nil {
				return err
			}
		}
		if len(transcripts) == 0 {
			internal.PrintInfo(cmd.OutOrStdout(), "No sessions to export")
			return nil
		}

		// Ensure output directory exists
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return &internal.ExportError{Format: format, Err: fmt.Errorf("failed to create output directory: %w", err)}
		}

		written := 0
		err = internal.ShowProgress(cmd.Context(), fmt.Sprintf("Exporting %d session(s) to %s", len(transcripts), outputDir), func() error {
			for _, transcript := range transcripts {
				filename := fmt.Sprintf("session_%s.%s", transcript.Session.ID, exporter.Extension())
				path := filepath.Join(outputDir, filename)

				file, err := os.Create(path)
				if err != nil {
					internal.LogError("Failed to create file %s: %v", path, err)
					continue
				}

				if err := exporter.Export(transcript, file); err != nil {
					_ = file.Close()
					internal.LogError("Failed to export session %s: %v", transcript.Session.ID, err)
					continue
				}

				if err := file.Close(); err != nil {
					internal.LogWarn("Failed to close file %s: %v", path, err)
					continue
				}
				written++
			}
			return nil
		})
		if err != nil {
			return err
		}
		if written == 0 {
			return &internal.ExportError{Format: format, Err: fmt.Errorf("no session could be exported")}
		}

		internal.PrintSuccess(cmd.OutOrStdout(), fmt.Sprintf("Export complete: %d session(s) exported to %s", written, outputDir))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&format, "format", "f", "md", "Export format ("+strings.Join(export.Formats, ", ")+")")
	exportCmd.Flags().StringVarP(&outputDir, "out", "o", "./exports", "Output directory")
	exportCmd.Flags().StringVar(&sessionID, "session-id", "", "Export a specific session by ID or prefix")
	exportCmd.Flags().BoolVar(&exportCurr, "current", false, "Export only the current session")
}
