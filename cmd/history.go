package cmd

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/iksnae/datalk/internal"
	"github.com/spf13/cobra"
)

var (
	historyLimit int
	historyYes   bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect the query log",
	Long:  `Every statement run from chat or the editor is logged with its outcome, newest first.`,
}

var historyListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List logged statements, newest first",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := workbench()
		if err != nil {
			return err
		}
		entries, err := w.History.List()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(entries) == 0 {
			fmt.Fprintln(out, headerStyle.Render("📜 No queries yet"))
			return nil
		}
		fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("📜 %d quer(ies)", len(entries))))

		shown := entries
		if historyLimit > 0 && len(shown) > historyLimit {
			shown = shown[:historyLimit]
		}
		tw := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
		_, _ = fmt.Fprintln(tw, titleStyle.Render("When")+"\t"+titleStyle.Render("Status")+"\t"+titleStyle.Render("SQL")+"\t")
		for _, e := range shown {
			status := successStyle.Render("✓")
			detail := truncate(e.SQL, 60)
			if e.Status == internal.StatusError {
				status = errorStyle.Render("✗")
				if e.Error != "" {
					detail += "  " + errorStyle.Render(truncate(e.Error, 40))
				}
			}
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t\n", dateStyle.Render(formatTime(e.Timestamp)), status, detail)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		if remaining := len(entries) - len(shown); remaining > 0 {
			fmt.Fprintln(out, dateStyle.Italic(true).Render(fmt.Sprintf("... (%d older)", remaining)))
		}
		return nil
	},
}

var historyTrimCmd = &cobra.Command{
	Use:   "trim <count>",
	Short: "Delete the oldest N entries",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid count %q", args[0])
		}
		w, err := workbench()
		if err != nil {
			return err
		}
		removed, err := w.History.Trim(n)
		if err != nil {
			return err
		}
		internal.PrintSuccess(cmd.OutOrStdout(), fmt.Sprintf("Deleted %d oldest entr(ies)", removed))
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the whole query log",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := workbench()
		if err != nil {
			return err
		}
		if !historyYes && !newPrompter(cmd).confirm("Delete the whole query history?") {
			internal.PrintInfo(cmd.OutOrStdout(), "Nothing deleted")
			return nil
		}
		if err := w.History.Clear(); err != nil {
			return err
		}
		internal.PrintSuccess(cmd.OutOrStdout(), "History cleared")
		return nil
	},
}

func init() {
	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Show at most N entries (0 for all)")
	historyClearCmd.Flags().BoolVarP(&historyYes, "yes", "y", false, "Do not ask for confirmation")

	historyCmd.AddCommand(historyListCmd, historyTrimCmd, historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}
