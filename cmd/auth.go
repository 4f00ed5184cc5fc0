package cmd

import (
	"fmt"

	"github.com/iksnae/datalk/internal"
	"github.com/spf13/cobra"
)

var (
	authEmail    string
	authPassword string
	authName     string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the backend",
	Long: `Sign in with email and password. Missing credentials are prompted for.

The token is kept in the local store and sent with every request.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := workbench()
		if err != nil {
			return err
		}
		email, password, err := credentials(newPrompter(cmd))
		if err != nil {
			return err
		}

		var user *internal.UserInfo
		err = internal.ShowProgress(cmd.Context(), "Signing in...", func() error {
			var loginErr error
			user, loginErr = w.Login(cmd.Context(), email, password)
			return loginErr
		})
		if err != nil {
			return err
		}
		internal.PrintSuccess(cmd.OutOrStdout(), fmt.Sprintf("Logged in as %s (%s)", user.Name, user.Email))
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := workbench()
		if err != nil {
			return err
		}
		p := newPrompter(cmd)
		name := authName
		if name == "" {
			if name, err = p.line("Name: "); err != nil {
				return err
			}
		}
		email, password, err := credentials(p)
		if err != nil {
			return err
		}

		var message string
		err = internal.ShowProgress(cmd.Context(), "Creating account...", func() error {
			var regErr error
			message, regErr = w.Register(cmd.Context(), name, email, password)
			return regErr
		})
		if err != nil {
			return err
		}
		internal.PrintSuccess(cmd.OutOrStdout(), message)
		internal.PrintInfo(cmd.OutOrStdout(), "Run `datalk login` to sign in")
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored login",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := workbench()
		if err != nil {
			return err
		}
		if err := w.Logout(); err != nil {
			return err
		}
		internal.PrintSuccess(cmd.OutOrStdout(), "Logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user and active connection",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := workbench()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		user, ok := w.User()
		if !ok {
			internal.PrintWarning(out, "Not logged in")
			return nil
		}
		fmt.Fprintf(out, "%s %s\n", titleStyle.Render("User:"), user.Name)
		fmt.Fprintf(out, "%s %s\n", titleStyle.Render("Email:"), user.Email)
		if uri := w.Connections.ActiveURI(); uri != "" {
			fmt.Fprintf(out, "%s %s\n", titleStyle.Render("Database:"), internal.MaskURI(uri))
		} else {
			fmt.Fprintf(out, "%s %s\n", titleStyle.Render("Database:"), "personal sandbox")
		}
		fmt.Fprintf(out, "%s %s\n", titleStyle.Render("Backend:"), w.Client.BaseURL())
		return nil
	},
}

func credentials(p *prompter) (string, string, error) {
	email, password := authEmail, authPassword
	var err error
	if email == "" {
		if email, err = p.line("Email: "); err != nil {
			return "", "", err
		}
	}
	if password == "" {
		if password, err = p.secret("Password: "); err != nil {
			return "", "", err
		}
	}
	if email == "" || password == "" {
		return "", "", fmt.Errorf("email and password are required")
	}
	return email, password, nil
}

func init() {
	for _, c := range []*cobra.Command{loginCmd, registerCmd} {
		c.Flags().StringVar(&authEmail, "email", "", "Account email")
		c.Flags().StringVar(&authPassword, "password", "", "Account password (prompted when omitted)")
	}
	registerCmd.Flags().StringVar(&authName, "name", "", "Display name")

	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd)
}
