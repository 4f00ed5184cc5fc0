package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/iksnae/datalk/internal"
	"github.com/spf13/cobra"
)

var (
	healthWatch    bool
	healthInterval time.Duration
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the backend and database status",
	Long: `Check that the backend is reachable and report on the database behind it:
  • Status and backend message
  • Database address (masked) and engine
  • Table count and size
  • Round-trip latency

With --watch the check repeats until interrupted (Ctrl-C).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := workbench()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if !healthWatch {
			report, err := w.Health(cmd.Context())
			if err != nil {
				internal.PrintError(out, "Backend offline: "+err.Error())
				return err
			}
			renderHealth(out, report)
			if !report.Online() {
				return fmt.Errorf("backend reports an error: %s", report.Message)
			}
			return nil
		}

		interval := healthInterval
		if interval <= 0 {
			interval = cfg.HealthInterval
		}
		return watchHealth(cmd.Context(), out, w, interval)
	},
}

// watchHealth polls until ctx is cancelled, printing one line per check
func watchHealth(ctx context.Context, out io.Writer, w *internal.Workbench, interval time.Duration) error {
	fmt.Fprintln(out, sectionStyle.Render(fmt.Sprintf("🔍 Watching %s every %s", w.Client.BaseURL(), interval)))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		report, err := w.Health(ctx)
		stamp := dateStyle.Render(time.Now().Format("15:04:05"))
		switch {
		case ctx.Err() != nil:
			return nil
		case err != nil:
			fmt.Fprintf(out, "%s %s %s\n", stamp, errorStyle.Render("✗ offline"), err)
		case !report.Online():
			fmt.Fprintf(out, "%s %s %s\n", stamp, errorStyle.Render("✗ error"), report.Message)
		default:
			fmt.Fprintf(out, "%s %s %s • %d table(s) • %s\n", stamp, successStyle.Render("● online"),
				report.SystemDB, report.TableCount, report.Latency.Round(time.Millisecond))
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func renderHealth(out io.Writer, report *internal.HealthReport) {
	fmt.Fprintln(out, sectionStyle.Render("🔍 Backend Health"))
	fmt.Fprintln(out)
	if report.Online() {
		fmt.Fprintln(out, successStyle.Render("✅ Online"))
	} else {
		fmt.Fprintln(out, errorStyle.Render("❌ Error"))
	}
	if report.Message != "" {
		fmt.Fprintf(out, "   %s %s\n", infoStyle.Render("Message:"), report.Message)
	}
	if report.DBURLMasked != "" {
		fmt.Fprintf(out, "   %s %s\n", infoStyle.Render("Database:"), report.DBURLMasked)
	}
	if report.SystemDB != "" {
		fmt.Fprintf(out, "   %s %s\n", infoStyle.Render("Engine:"), report.SystemDB)
	}
	fmt.Fprintf(out, "   %s %d\n", infoStyle.Render("Tables:"), report.TableCount)
	if len(report.Tables) > 0 {
		fmt.Fprintf(out, "   %s\n", dateStyle.Render(truncate(strings.Join(report.Tables, ", "), 76)))
	}
	if report.DBSizeBytes > 0 {
		fmt.Fprintf(out, "   %s %s\n", infoStyle.Render("Size:"), humanize.Bytes(uint64(report.DBSizeBytes)))
	}
	fmt.Fprintf(out, "   %s %s\n", infoStyle.Render("Latency:"), report.Latency.Round(time.Millisecond))
	if report.Timestamp > 0 {
		sec := int64(report.Timestamp)
		fmt.Fprintf(out, "   %s %s\n", infoStyle.Render("Server time:"), time.Unix(sec, 0).Local().Format(time.RFC3339))
	}
}

func init() {
	healthCmd.Flags().BoolVarP(&healthWatch, "watch", "w", false, "Keep checking until interrupted")
	healthCmd.Flags().DurationVar(&healthInterval, "interval", 0, "Polling interval for --watch (default DATALK_HEALTH_INTERVAL)")

	rootCmd.AddCommand(healthCmd)
}
