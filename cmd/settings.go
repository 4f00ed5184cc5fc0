package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/iksnae/datalk/internal"
	"github.com/iksnae/datalk/internal/export"
	"github.com/spf13/cobra"
)

var (
	settingsYes  bool
	backupOutput string
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "View and change preferences",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current preferences",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := workbench()
		if err != nil {
			return err
		}
		printSettings(cmd, w.Preferences.Load())
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a preference",
	Long: fmt.Sprintf(`Change one preference. Keys: %s.

  font-size  editor font size, %d-%d
  row-limit  rows fetched by table previews, %d-%d
  safe-mode  confirm destructive SQL before running it (true/false)`,
		strings.Join(internal.SettingKeys, ", "),
		internal.MinFontSize, internal.MaxFontSize, internal.MinRowLimit, internal.MaxRowLimit),
	Example: `  datalk settings set safe-mode true
  datalk settings set row-limit 500`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := workbench()
		if err != nil {
			return err
		}
		s, err := w.Preferences.Set(args[0], args[1])
		if err != nil {
			return err
		}
		internal.PrintSuccess(cmd.OutOrStdout(), "Settings saved")
		printSettings(cmd, s)
		return nil
	},
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore defaults and clear local data",
	Long: `Restore default preferences and delete chat messages, the query history,
pinned widgets and the editor contents. Sessions, saved queries, the login
and the connection are kept.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := workbench()
		if err != nil {
			return err
		}
		if !settingsYes && !newPrompter(cmd).confirm("Reset settings and clear chat, history and dashboard?") {
			internal.PrintInfo(cmd.OutOrStdout(), "Nothing changed")
			return nil
		}
		if err := w.Preferences.Reset(); err != nil {
			return err
		}
		internal.PrintSuccess(cmd.OutOrStdout(), "Workbench reset to defaults")
		return nil
	},
}

var settingsBackupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Export settings, history, widgets and editor SQL as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := workbench()
		if err != nil {
			return err
		}
		backup, err := w.Preferences.Backup()
		if err != nil {
			return err
		}
		if backupOutput == "" || backupOutput == "-" {
			return export.WriteBackup(backup, cmd.OutOrStdout())
		}
		f, err := os.Create(backupOutput)
		if err != nil {
			return &internal.ExportError{Format: "json", Err: err}
		}
		if err := export.WriteBackup(backup, f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return &internal.ExportError{Format: "json", Err: err}
		}
		internal.PrintSuccess(cmd.OutOrStdout(), "Backup written to "+backupOutput)
		return nil
	},
}

func printSettings(cmd *cobra.Command, s internal.Settings) {
	out := cmd.OutOrStdout()
	safe := "off"
	if s.SafeMode {
		safe = "on"
	}
	fmt.Fprintf(out, "%s %d\n", titleStyle.Render("font-size:"), s.FontSize)
	fmt.Fprintf(out, "%s %d\n", titleStyle.Render("row-limit:"), s.RowLimit)
	fmt.Fprintf(out, "%s %s\n", titleStyle.Render("safe-mode:"), safe)
}

func init() {
	settingsResetCmd.Flags().BoolVarP(&settingsYes, "yes", "y", false, "Do not ask for confirmation")
	settingsBackupCmd.Flags().StringVarP(&backupOutput, "output", "o", "", "Write to this file instead of stdout")

	settingsCmd.AddCommand(settingsShowCmd, settingsSetCmd, settingsResetCmd, settingsBackupCmd)
	rootCmd.AddCommand(settingsCmd)
}
