package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/iksnae/datalk/internal"
	"github.com/spf13/cobra"
)

var (
	savedFile   string
	savedSearch string
	savedYes    bool
)

var savedCmd = &cobra.Command{
	Use:   "saved",
	Short: "Bookmark and rerun SQL",
}

var savedAddCmd = &cobra.Command{
	Use:     "add <name> [sql]",
	Short:   "Save a statement under a name",
	Long:    `Save SQL from the arguments, --file, or the last statement run in the editor.`,
	Example: `  datalk saved add "top students" "SELECT * FROM students ORDER BY marks DESC"`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := workbench()
		if err != nil {
			return err
		}
		var sql string
		switch {
		case len(args) > 1:
			sql = strings.Join(args[1:], " ")
		case savedFile != "":
			b, err := os.ReadFile(savedFile)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", savedFile, err)
			}
			sql = string(b)
		default:
			sql, _ = w.EditorState()
		}
		q, err := w.Saved.Save(args[0], sql)
		if err != nil {
			return err
		}
		internal.PrintSuccess(cmd.OutOrStdout(), fmt.Sprintf("Saved %q (%s)", q.Name, shortID(q.ID)))
		return nil
	},
}

var savedListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List saved queries, newest first",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := workbench()
		if err != nil {
			return err
		}
		queries, err := w.Saved.Search(savedSearch)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(queries) == 0 {
			fmt.Fprintln(out, headerStyle.Render("🔖 No saved queries"))
			return nil
		}
		fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("🔖 %d saved quer(ies)", len(queries))))
		tw := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
		_, _ = fmt.Fprintln(tw, titleStyle.Render("ID")+"\t"+titleStyle.Render("Name")+"\t"+titleStyle.Render("SQL")+"\t"+titleStyle.Render("Saved")+"\t")
		for _, q := range queries {
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n",
				idStyle.Render(shortID(q.ID)), q.Name, truncate(q.SQL, 50), dateStyle.Render(formatTime(q.CreatedAt)))
		}
		return tw.Flush()
	},
}

var savedDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a saved query",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := workbench()
		if err != nil {
			return err
		}
		if err := w.Saved.Delete(args[0]); err != nil {
			return err
		}
		internal.PrintSuccess(cmd.OutOrStdout(), "Saved query deleted")
		return nil
	},
}

var savedRunCmd = &cobra.Command{
	Use:   "run <name|id>",
	Short: "Run a saved query in the editor",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := loggedIn()
		if err != nil {
			return err
		}
		q, err := w.Saved.Get(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, sqlStyle.Render(q.SQL))

		p := newPrompter(cmd)
		var result *internal.EditorResult
		err = internal.ShowProgress(cmd.Context(), "Executing...", func() error {
			var runErr error
			result, runErr = w.RunEditor(cmd.Context(), q.SQL, func(string) bool {
				return savedYes || p.confirm("Safe mode: run this destructive statement?")
			})
			return runErr
		})
		if errors.Is(err, internal.ErrConfirmationDeclined) {
			internal.PrintInfo(out, "Execution cancelled")
			return nil
		}
		if err != nil {
			return err
		}
		rowLimit := w.Preferences.Load().RowLimit
		for _, ds := range result.Datasets {
			renderDataset(out, ds, rowLimit)
		}
		return nil
	},
}

func init() {
	savedAddCmd.Flags().StringVarP(&savedFile, "file", "f", "", "Read SQL from a file")
	savedListCmd.Flags().StringVar(&savedSearch, "search", "", "Only list queries whose name or SQL contains this text")
	savedRunCmd.Flags().BoolVarP(&savedYes, "yes", "y", false, "Skip the safe-mode confirmation")

	savedCmd.AddCommand(savedAddCmd, savedListCmd, savedDeleteCmd, savedRunCmd)
	rootCmd.AddCommand(savedCmd)
}
