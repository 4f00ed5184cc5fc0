package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/datalk/internal"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

const widgetPreviewRows = 10

var (
	pinSQL    string
	pinChart  string
	pinEditor bool
	dashAll   bool
)

var pinCmd = &cobra.Command{
	Use:   "pin",
	Short: "Pin a result to the dashboard",
	Long: `Pin the newest result of the current chat session to the dashboard of the
active connection. --editor pins the last editor result instead, and --sql
pins a statement whose rows are fetched on the next refresh.`,
	Example: `  datalk pin --chart bar
  datalk pin --sql "SELECT city, COUNT(*) AS n FROM users GROUP BY city" --chart pie`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if pinChart != "" && !internal.IsChartType(pinChart) {
			return fmt.Errorf("unknown chart type %q (known: %s)", pinChart, strings.Join(internal.ChartTypes, ", "))
		}
		w, err := workbench()
		if err != nil {
			return err
		}

		var widget *internal.Widget
		switch {
		case pinSQL != "":
			widget, err = w.PinSQL(pinSQL, pinChart)
		case pinEditor:
			widget, err = pinEditorResult(w)
		default:
			widget, err = w.PinLatest(pinChart)
		}
		if err != nil {
			return err
		}
		internal.PrintSuccess(cmd.OutOrStdout(), fmt.Sprintf("Pinned %s widget %s", widget.ChartType, shortID(widget.ID)))
		if len(widget.Data) == 0 {
			internal.PrintInfo(cmd.OutOrStdout(), "Run `datalk dashboard refresh` to load its rows")
		}
		return nil
	},
}

func pinEditorResult(w *internal.Workbench) (*internal.Widget, error) {
	sql, datasets := w.EditorState()
	for _, ds := range datasets {
		if ds.Type == internal.DatasetError {
			continue
		}
		if ds.SQL == "" {
			ds.SQL = sql
		}
		return w.PinDataset(ds, pinChart)
	}
	return nil, fmt.Errorf("no editor result to pin; run `datalk exec` first")
}

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"dash"},
	Short:   "Show and maintain pinned widgets",
}

var dashboardListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "Show the widgets of the active connection",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := workbench()
		if err != nil {
			return err
		}
		var widgets []internal.Widget
		if dashAll {
			widgets, err = w.Dashboard.Widgets()
		} else {
			widgets, err = w.Dashboard.ForConnection(w.Connections.ActiveURI())
		}
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(widgets) == 0 {
			fmt.Fprintln(out, headerStyle.Render("📊 No widgets pinned"))
			fmt.Fprintln(out, dateStyle.Render("Pin a chat result with `datalk pin`."))
			return nil
		}
		fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("📊 %d widget(s)", len(widgets))))
		fmt.Fprintln(out)
		for _, widget := range widgets {
			renderWidget(out, widget, dashAll)
		}
		return nil
	},
}

var dashboardRefreshCmd = &cobra.Command{
	Use:   "refresh [widget-id]",
	Short: "Re-run pinned queries",
	Long:  `Re-run one widget, or every widget of the active connection. A failing widget does not stop the others.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := loggedIn()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if len(args) == 1 {
			var widget *internal.Widget
			err := internal.ShowProgress(cmd.Context(), "Refreshing...", func() error {
				var refreshErr error
				widget, refreshErr = w.RefreshWidget(cmd.Context(), args[0])
				return refreshErr
			})
			if err != nil {
				return err
			}
			renderWidget(out, *widget, false)
			return nil
		}

		pending, err := w.Dashboard.ForConnection(w.Connections.ActiveURI())
		if err != nil {
			return err
		}
		if len(pending) == 0 {
			internal.PrintInfo(out, "No widgets to refresh")
			return nil
		}

		bar := progressbar.NewOptions(len(pending),
			progressbar.OptionSetDescription("Refreshing widgets"),
			progressbar.OptionSetWriter(cmd.ErrOrStderr()),
			progressbar.OptionSetWidth(30),
			progressbar.OptionClearOnFinish(),
		)
		var failures []string
		widgets, err := w.RefreshDashboard(cmd.Context(), func(widget internal.Widget, refreshErr error) {
			_ = bar.Add(1)
			if refreshErr != nil {
				failures = append(failures, fmt.Sprintf("%s: %v", shortID(widget.ID), refreshErr))
			}
		})
		_ = bar.Finish()
		if err != nil {
			return err
		}

		internal.PrintSuccess(out, fmt.Sprintf("Refreshed %d of %d widget(s)", len(widgets)-len(failures), len(widgets)))
		for _, f := range failures {
			internal.PrintWarning(out, f)
		}
		return nil
	},
}

var dashboardRemoveCmd = &cobra.Command{
	Use:     "remove <widget-id>",
	Aliases: []string{"rm"},
	Short:   "Unpin a widget",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := workbench()
		if err != nil {
			return err
		}
		if err := w.Dashboard.Remove(args[0]); err != nil {
			return err
		}
		internal.PrintSuccess(cmd.OutOrStdout(), "Widget removed")
		return nil
	},
}

func renderWidget(out io.Writer, widget internal.Widget, showConnection bool) {
	fmt.Fprintf(out, "%s %s %s\n",
		titleStyle.Render(strings.ToUpper(widget.ChartType)),
		idStyle.Render(shortID(widget.ID)),
		dateStyle.Render("updated "+lastUpdated(widget)))
	fmt.Fprintln(out, sqlStyle.Render(widget.SQL))
	if showConnection {
		conn := "sandbox"
		if widget.ConnectionURI != "" {
			conn = internal.MaskURI(widget.ConnectionURI)
		}
		fmt.Fprintln(out, dateStyle.Render("  on "+conn))
	}
	if widget.ChartType != internal.DatasetTable && widget.ChartConfig.XAxis != "" {
		fmt.Fprintln(out, infoStyle.Render(fmt.Sprintf("  x: %s, y: %s", widget.ChartConfig.XAxis, widget.ChartConfig.YAxis)))
	}
	renderRows(out, widget.Data, widgetPreviewRows)
	fmt.Fprintln(out)
}

func lastUpdated(widget internal.Widget) string {
	if widget.LastUpdated != nil {
		return formatTime(*widget.LastUpdated)
	}
	return formatTime(widget.Timestamp)
}

func init() {
	pinCmd.Flags().StringVar(&pinSQL, "sql", "", "Pin this statement instead of a chat result")
	pinCmd.Flags().StringVar(&pinChart, "chart", "", "View mode: "+strings.Join(internal.ChartTypes, ", "))
	pinCmd.Flags().BoolVar(&pinEditor, "editor", false, "Pin the last editor result")
	dashboardListCmd.Flags().BoolVar(&dashAll, "all", false, "Include widgets pinned on other connections")

	dashboardCmd.AddCommand(dashboardListCmd, dashboardRefreshCmd, dashboardRemoveCmd)
	rootCmd.AddCommand(pinCmd, dashboardCmd)
}
