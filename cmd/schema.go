package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/iksnae/datalk/internal"
	"github.com/spf13/cobra"
)

var (
	schemaRefresh bool
	previewCSV    string
)

var schemaCmd = &cobra.Command{
	Use:   "schema [table]",
	Short: "List tables, or the columns of one table",
	Long: `Browse the schema of the active database (or your sandbox when no
connection is set). Listings are cached for a few minutes; --refresh
asks the backend again.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := loggedIn()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if len(args) == 1 {
			var columns []internal.Column
			err := internal.ShowProgress(cmd.Context(), "Loading columns...", func() error {
				var colErr error
				columns, colErr = w.Columns(cmd.Context(), args[0], schemaRefresh)
				return colErr
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("🗂  %s (%d column(s))", args[0], len(columns))))
			tw := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
			_, _ = fmt.Fprintln(tw, titleStyle.Render("Column")+"\t"+titleStyle.Render("Type")+"\t"+titleStyle.Render("Key")+"\t")
			for _, c := range columns {
				key := ""
				if c.PrimaryKey {
					key = countStyle.Render("PK")
				}
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t\n", c.Name, dateStyle.Render(c.Type), key)
			}
			return tw.Flush()
		}

		var tables []string
		err = internal.ShowProgress(cmd.Context(), "Loading tables...", func() error {
			var tablesErr error
			tables, tablesErr = w.Tables(cmd.Context(), schemaRefresh)
			return tablesErr
		})
		if err != nil {
			return err
		}
		source := "sandbox"
		if uri := w.Connections.ActiveURI(); uri != "" {
			source = internal.MaskURI(uri)
		}
		fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("🗄  %d table(s) in %s", len(tables), source)))
		if len(tables) == 0 {
			fmt.Fprintln(out, dateStyle.Render("No tables yet. Ask the agent to create one."))
			return nil
		}
		for _, t := range tables {
			fmt.Fprintf(out, "  %s\n", t)
		}
		return nil
	},
}

var schemaPreviewCmd = &cobra.Command{
	Use:   "preview <table>",
	Short: "Show the first rows of a table",
	Long:  `Fetch up to row-limit rows of a table (see 'datalk settings').`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := loggedIn()
		if err != nil {
			return err
		}
		var ds *internal.Dataset
		err = internal.ShowProgress(cmd.Context(), "Loading preview...", func() error {
			var previewErr error
			ds, previewErr = w.PreviewTable(cmd.Context(), args[0])
			return previewErr
		})
		if err != nil {
			return err
		}
		if previewCSV != "" {
			return writeCSV(cmd, *ds, previewCSV)
		}
		renderDataset(cmd.OutOrStdout(), *ds, 0)
		return nil
	},
}

func init() {
	schemaCmd.Flags().BoolVar(&schemaRefresh, "refresh", false, "Ignore the cached listing")
	schemaPreviewCmd.Flags().StringVar(&previewCSV, "csv", "", "Write the rows as CSV to this file (- for stdout)")

	schemaCmd.AddCommand(schemaPreviewCmd)
	rootCmd.AddCommand(schemaCmd)
}
