package cmd

import (
	"fmt"

	"github.com/iksnae/datalk/internal"
	"github.com/spf13/cobra"
)

var (
	connType     string
	connHost     string
	connPort     string
	connDatabase string
	connUser     string
	connPassword string
	connSkipTest bool
)

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Point the backend at an external database",
	Long: `By default the agent works in your personal sandbox. 'connect set' makes it
query a PostgreSQL or MySQL database instead; 'connect disconnect' returns
to the sandbox.

Flags not given fall back to the last saved connection form.`,
}

var connectSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Test and activate a database connection",
	Example: `  datalk connect set --type postgres --host db.local --database shop --user app --password secret
  datalk connect set --type mysql --host 10.0.0.5 --database crm --user root`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := loggedIn()
		if err != nil {
			return err
		}
		conn, err := connectionFromFlags(cmd, w)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if !connSkipTest {
			err := internal.ShowProgress(cmd.Context(), "Testing connection...", func() error {
				return w.TestConnection(cmd.Context(), conn)
			})
			if err != nil {
				return fmt.Errorf("connection test failed: %w", err)
			}
			internal.PrintSuccess(out, "Connection test passed")
		}
		uri, err := w.Connect(conn)
		if err != nil {
			return err
		}
		internal.PrintSuccess(out, "Connected to "+internal.MaskURI(uri))
		return nil
	},
}

var connectTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Check a connection without activating it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := loggedIn()
		if err != nil {
			return err
		}
		conn, err := connectionFromFlags(cmd, w)
		if err != nil {
			return err
		}
		err = internal.ShowProgress(cmd.Context(), "Testing connection...", func() error {
			return w.TestConnection(cmd.Context(), conn)
		})
		if err != nil {
			return fmt.Errorf("connection test failed: %w", err)
		}
		internal.PrintSuccess(cmd.OutOrStdout(), "Connection OK: "+internal.MaskURI(conn.URI()))
		return nil
	},
}

var connectShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the active connection and saved form",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := workbench()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if uri := w.Connections.ActiveURI(); uri != "" {
			fmt.Fprintf(out, "%s %s\n", titleStyle.Render("Active:"), internal.MaskURI(uri))
		} else {
			fmt.Fprintf(out, "%s %s\n", titleStyle.Render("Active:"), "personal sandbox")
		}
		saved, err := w.Connections.Config()
		if err != nil {
			return err
		}
		fmt.Fprintln(out, dateStyle.Render("Saved form:"))
		fmt.Fprintf(out, "  type:     %s\n", saved.Type)
		fmt.Fprintf(out, "  host:     %s\n", saved.Host)
		fmt.Fprintf(out, "  port:     %s\n", saved.Port)
		fmt.Fprintf(out, "  database: %s\n", saved.Database)
		fmt.Fprintf(out, "  user:     %s\n", saved.Username)
		return nil
	},
}

var connectDisconnectCmd = &cobra.Command{
	Use:   "disconnect",
	Short: "Go back to the personal sandbox",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := workbench()
		if err != nil {
			return err
		}
		if err := w.Disconnect(); err != nil {
			return err
		}
		internal.PrintSuccess(cmd.OutOrStdout(), "Disconnected; using the personal sandbox")
		return nil
	},
}

// connectionFromFlags overlays the flags that were given on the saved form
func connectionFromFlags(cmd *cobra.Command, w *internal.Workbench) (internal.ConnectionConfig, error) {
	conn, err := w.Connections.Config()
	if err != nil {
		return conn, err
	}
	flags := cmd.Flags()
	if flags.Changed("type") {
		conn.Type = connType
		if !flags.Changed("port") {
			conn.Port = internal.DefaultPort(connType)
		}
	}
	if flags.Changed("host") {
		conn.Host = connHost
	}
	if flags.Changed("port") {
		conn.Port = connPort
	}
	if flags.Changed("database") {
		conn.Database = connDatabase
	}
	if flags.Changed("user") {
		conn.Username = connUser
	}
	if flags.Changed("password") {
		conn.Password = connPassword
	}
	return conn, conn.Validate()
}

func init() {
	for _, c := range []*cobra.Command{connectSetCmd, connectTestCmd} {
		c.Flags().StringVar(&connType, "type", "", "Database type: postgres or mysql")
		c.Flags().StringVar(&connHost, "host", "", "Database host")
		c.Flags().StringVar(&connPort, "port", "", "Database port (default 5432 or 3306)")
		c.Flags().StringVar(&connDatabase, "database", "", "Database name")
		c.Flags().StringVar(&connUser, "user", "", "Database user")
		c.Flags().StringVar(&connPassword, "password", "", "Database password")
	}
	connectSetCmd.Flags().BoolVar(&connSkipTest, "skip-test", false, "Activate without testing first")

	connectCmd.AddCommand(connectSetCmd, connectTestCmd, connectShowCmd, connectDisconnectCmd)
	rootCmd.AddCommand(connectCmd)
}
