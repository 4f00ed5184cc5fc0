package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/iksnae/datalk/internal"
	"github.com/iksnae/datalk/internal/export"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	execFile string
	execYes  bool
	execCSV  string
	execLast bool
)

var execCmd = &cobra.Command{
	Use:   "exec [sql]",
	Short: "Run SQL directly against the active database",
	Long: `Run SQL from the command line, a file or standard input, the way the
editor pane does. With safe mode on, DROP/DELETE/UPDATE/ALTER statements
ask for confirmation first.`,
	Example: `  datalk exec "SELECT * FROM students LIMIT 5"
  datalk exec -f report.sql --csv report.csv
  datalk exec --last`,
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := loggedIn()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		rowLimit := w.Preferences.Load().RowLimit

		if execLast {
			sql, datasets := w.EditorState()
			if sql == "" {
				internal.PrintInfo(out, "The editor is empty")
				return nil
			}
			fmt.Fprintln(out, sqlStyle.Render(sql))
			for _, ds := range datasets {
				renderDataset(out, ds, rowLimit)
			}
			return nil
		}

		sql, err := readSQL(cmd, args)
		if err != nil {
			return err
		}

		p := newPrompter(cmd)
		confirm := func(stmt string) bool {
			if execYes {
				return true
			}
			internal.PrintWarning(cmd.ErrOrStderr(), "Safe mode: this statement changes data or schema")
			return p.confirm("Run it anyway?")
		}

		var result *internal.EditorResult
		err = internal.ShowProgress(cmd.Context(), "Executing...", func() error {
			var runErr error
			result, runErr = w.RunEditor(cmd.Context(), sql, confirm)
			return runErr
		})
		if errors.Is(err, internal.ErrConfirmationDeclined) {
			internal.PrintInfo(out, "Execution cancelled")
			return nil
		}
		if err != nil {
			return err
		}

		if len(result.Datasets) == 0 {
			internal.PrintSuccess(out, "Statement executed")
		}
		for _, ds := range result.Datasets {
			renderDataset(out, ds, rowLimit)
		}

		if execCSV != "" {
			return writeFirstTable(cmd, result.Datasets, execCSV)
		}
		return nil
	},
}

// readSQL takes SQL from the arguments, --file, or piped standard input
func readSQL(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	if execFile != "" {
		b, err := os.ReadFile(execFile)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", execFile, err)
		}
		return string(b), nil
	}
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return "", fmt.Errorf("no SQL given: pass it as an argument, with --file, or on stdin")
	}
	b, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	if strings.TrimSpace(string(b)) == "" {
		return "", fmt.Errorf("no SQL given: pass it as an argument, with --file, or on stdin")
	}
	return string(b), nil
}

// writeFirstTable saves the first result set with rows as CSV; "-" is stdout
func writeFirstTable(cmd *cobra.Command, datasets []internal.Dataset, path string) error {
	for _, ds := range datasets {
		if ds.Type == internal.DatasetError || ds.Type == internal.DatasetMessage || len(ds.Data) == 0 {
			continue
		}
		return writeCSV(cmd, ds, path)
	}
	return &internal.ExportError{Format: "csv", Err: fmt.Errorf("no rows to export")}
}

func writeCSV(cmd *cobra.Command, ds internal.Dataset, path string) error {
	if path == "-" {
		return export.WriteCSV(ds, cmd.OutOrStdout())
	}
	f, err := os.Create(path)
	if err != nil {
		return &internal.ExportError{Format: "csv", Err: err}
	}
	if err := export.WriteCSV(ds, f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return &internal.ExportError{Format: "csv", Err: err}
	}
	internal.PrintSuccess(cmd.OutOrStdout(), fmt.Sprintf("Wrote %d row(s) to %s", len(ds.Data), path))
	return nil
}

func init() {
	execCmd.Flags().StringVarP(&execFile, "file", "f", "", "Read SQL from a file")
	execCmd.Flags().BoolVarP(&execYes, "yes", "y", false, "Skip the safe-mode confirmation")
	execCmd.Flags().StringVar(&execCSV, "csv", "", "Also write the first result set as CSV to this file (- for stdout)")
	execCmd.Flags().BoolVar(&execLast, "last", false, "Show the last editor statement and its results")

	rootCmd.AddCommand(execCmd)
}
