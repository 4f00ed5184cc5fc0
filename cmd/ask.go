package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/iksnae/datalk/internal"
	"github.com/spf13/cobra"
)

var errReplyFailed = errors.New("the backend reported an error")

var (
	askNewSession bool
	askSession    string
	askYes        bool
	confirmCancel bool
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask the agent a question in the current chat session",
	Long: `Send a natural-language question to the agent. Earlier messages of the
session are sent along as context.

When the agent proposes a statement that changes data it waits for
confirmation. On a terminal you are asked right away; otherwise run
'datalk confirm' (or --yes to approve up front).`,
	Example: `  datalk ask "top 5 students by marks"
  datalk ask --new "how many orders per month?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := loggedIn()
		if err != nil {
			return err
		}
		if askNewSession {
			if _, err := w.Sessions.New(); err != nil {
				return err
			}
		} else if askSession != "" {
			if _, err := w.Sessions.Select(askSession); err != nil {
				return err
			}
		}

		prompt := strings.Join(args, " ")
		var reply *internal.Reply
		err = internal.ShowProgress(cmd.Context(), "Thinking...", func() error {
			var sendErr error
			reply, sendErr = w.SendMessage(cmd.Context(), prompt)
			return sendErr
		})
		if err != nil {
			return err
		}

		rowLimit := w.Preferences.Load().RowLimit
		out := cmd.OutOrStdout()
		renderMessage(out, reply.Index, reply.Message, rowLimit)
		if reply.Failed {
			return errReplyFailed
		}
		if !reply.Message.AwaitingConfirmation() {
			return nil
		}

		approve := askYes
		if !approve {
			if !interactive(cmd) {
				return nil
			}
			approve = newPrompter(cmd).confirm("Execute this statement?")
		}
		return settle(cmd, w, reply.Index, approve)
	},
}

var confirmCmd = &cobra.Command{
	Use:   "confirm [message-index]",
	Short: "Execute (or cancel) SQL the agent is waiting to run",
	Long: `Settle a statement the agent proposed but did not run. Without an index the
newest pending statement of the current session is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := loggedIn()
		if err != nil {
			return err
		}
		idx := -1
		if len(args) == 1 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 0 {
				return fmt.Errorf("invalid message index %q", args[0])
			}
			idx = n
		} else {
			pending, msg, err := w.PendingConfirmation()
			if err != nil {
				return err
			}
			if msg == nil {
				internal.PrintInfo(cmd.OutOrStdout(), "Nothing is waiting for confirmation")
				return nil
			}
			idx = pending
		}
		return settle(cmd, w, idx, !confirmCancel)
	},
}

func settle(cmd *cobra.Command, w *internal.Workbench, idx int, approve bool) error {
	out := cmd.OutOrStdout()
	if !approve {
		if _, err := w.ConfirmSQL(cmd.Context(), idx, false); err != nil {
			return err
		}
		internal.PrintInfo(out, "Execution cancelled")
		return nil
	}

	var reply *internal.Reply
	err := internal.ShowProgress(cmd.Context(), "Executing...", func() error {
		var confirmErr error
		reply, confirmErr = w.ConfirmSQL(cmd.Context(), idx, true)
		return confirmErr
	})
	if err != nil {
		return err
	}
	renderMessage(out, reply.Index, reply.Message, w.Preferences.Load().RowLimit)
	if reply.Failed {
		return errReplyFailed
	}
	return nil
}

func init() {
	askCmd.Flags().BoolVar(&askNewSession, "new", false, "Start a new chat session first")
	askCmd.Flags().StringVarP(&askSession, "session", "s", "", "Switch to this session (ID or prefix) first")
	askCmd.Flags().BoolVarP(&askYes, "yes", "y", false, "Execute proposed statements without asking")
	confirmCmd.Flags().BoolVar(&confirmCancel, "cancel", false, "Cancel instead of executing")

	rootCmd.AddCommand(askCmd, confirmCmd)
}
