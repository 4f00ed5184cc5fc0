package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/iksnae/datalk/internal"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	envFile string
	apiURL  string
	homeDir string
	version string = "dev"
	commit  string = "unknown"
	date    string = "unknown"
)

var (
	cfg *internal.Config
	wb  *internal.Workbench
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "datalk",
	Short: "Talk to your database in plain language",
	Long: `A terminal workbench for a natural-language-to-SQL backend.

Ask questions about your data in chat sessions, confirm the SQL the agent
proposes, run SQL by hand, browse the schema and pin results to a dashboard.

Quick Start:
  datalk login                              # Sign in to the backend
  datalk ask "top 5 students by marks"      # Ask a question
  datalk exec "SELECT * FROM students"      # Run SQL directly
  datalk schema                             # List tables

The backend address comes from DATALK_API_URL (or --api-url).`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		internal.SetVerbose(verbose)
		loaded, err := internal.LoadConfig(envFile)
		if err != nil {
			return err
		}
		if apiURL != "" {
			loaded.APIURL = apiURL
		}
		if homeDir != "" {
			loaded.Home = homeDir
		}
		cfg = loaded
		internal.LogDebug("Backend %s, home %s", cfg.APIURL, cfg.Home)
		return nil
	},
}

// workbench opens the local store on first use
func workbench() (*internal.Workbench, error) {
	if wb != nil {
		return wb, nil
	}
	if cfg == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}
	opened, err := internal.OpenWorkbench(cfg)
	if err != nil {
		return nil, err
	}
	wb = opened
	return wb, nil
}

// loggedIn opens the workbench and fails unless a user is signed in
func loggedIn() (*internal.Workbench, error) {
	w, err := workbench()
	if err != nil {
		return nil, err
	}
	if _, err := w.RequireUser(); err != nil {
		return nil, err
	}
	return w, nil
}

func closeWorkbench() {
	if wb == nil {
		return
	}
	if err := wb.Close(); err != nil {
		internal.LogWarn("Failed to close store: %v", err)
	}
	wb = nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	closeWorkbench()
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", "", "Load configuration from this .env file")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend address (overrides DATALK_API_URL)")
	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "Directory for local state (overrides DATALK_HOME)")

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}
