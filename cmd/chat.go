package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/iksnae/datalk/internal"
	"github.com/spf13/cobra"
)

var chatShowLimit int

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Manage chat sessions",
	Long: `Chat sessions keep separate conversations with the agent. Exactly one
session is current; 'datalk ask' talks in it.`,
}

var chatNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Start a new chat session and make it current",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := workbench()
		if err != nil {
			return err
		}
		session, err := w.Sessions.New()
		if err != nil {
			return err
		}
		internal.PrintSuccess(cmd.OutOrStdout(), fmt.Sprintf("Started session %s", session.ID))
		return nil
	},
}

var chatListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List chat sessions, newest first",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := workbench()
		if err != nil {
			return err
		}
		current, err := w.Sessions.Current()
		if err != nil {
			return err
		}
		sessions, err := w.Sessions.List()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("💬 %d session(s)", len(sessions))))
		fmt.Fprintln(out)

		tw := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
		_, _ = fmt.Fprintln(tw, " \t"+titleStyle.Render("ID")+"\t"+titleStyle.Render("Name")+"\t"+titleStyle.Render("Messages")+"\t"+titleStyle.Render("Created")+"\t")
		for _, s := range sessions {
			marker := " "
			if s.ID == current.ID {
				marker = countStyle.Render("*")
			}
			messages, err := w.Sessions.Messages(s.ID)
			if err != nil {
				internal.LogWarn("Failed to load messages of %s: %v", s.ID, err)
			}
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n",
				marker,
				idStyle.Render(shortID(s.ID)),
				truncate(s.Name, 40),
				countStyle.Render(fmt.Sprintf("%d", len(messages))),
				dateStyle.Render(formatTime(s.CreatedAt)))
		}
		return tw.Flush()
	},
}

var chatUseCmd = &cobra.Command{
	Use:   "use <session-id>",
	Short: "Switch the current session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := workbench()
		if err != nil {
			return err
		}
		session, err := w.Sessions.Select(args[0])
		if err != nil {
			return err
		}
		internal.PrintSuccess(cmd.OutOrStdout(), fmt.Sprintf("Switched to %q (%s)", session.Name, shortID(session.ID)))
		return nil
	},
}

var chatRenameCmd = &cobra.Command{
	Use:   "rename <session-id> <name>",
	Short: "Rename a session",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := workbench()
		if err != nil {
			return err
		}
		name := strings.Join(args[1:], " ")
		if err := w.Sessions.Rename(args[0], name); err != nil {
			return err
		}
		internal.PrintSuccess(cmd.OutOrStdout(), fmt.Sprintf("Renamed to %q", strings.TrimSpace(name)))
		return nil
	},
}

var chatDeleteCmd = &cobra.Command{
	Use:     "delete <session-id>",
	Aliases: []string{"rm"},
	Short:   "Delete a session and its messages",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := workbench()
		if err != nil {
			return err
		}
		current, err := w.Sessions.Delete(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		internal.PrintSuccess(out, "Session deleted")
		internal.PrintInfo(out, fmt.Sprintf("Current session: %q (%s)", current.Name, shortID(current.ID)))
		return nil
	},
}

var chatShowCmd = &cobra.Command{
	Use:   "show [session-id]",
	Short: "Show the messages of a session",
	Long:  `Show a session's conversation. Without an ID the current session is shown.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := workbench()
		if err != nil {
			return err
		}
		ref := ""
		if len(args) == 1 {
			ref = args[0]
		} else {
			current, err := w.Sessions.Current()
			if err != nil {
				return err
			}
			ref = current.ID
		}
		transcript, err := w.Sessions.Transcript(ref)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, headerStyle.Render("💬 "+transcript.Session.Name))
		fmt.Fprintln(out, dateStyle.Render(fmt.Sprintf("%s • Created: %s • Messages: %d",
			transcript.Session.ID, formatTime(transcript.Session.CreatedAt), len(transcript.Messages))))
		fmt.Fprintln(out)

		if len(transcript.Messages) == 0 {
			fmt.Fprintln(out, dateStyle.Render("No messages yet. Use `datalk ask` to start."))
			return nil
		}

		start := 0
		if chatShowLimit > 0 && len(transcript.Messages) > chatShowLimit {
			start = len(transcript.Messages) - chatShowLimit
			fmt.Fprintln(out, dateStyle.Italic(true).Render(fmt.Sprintf("... (%d earlier message(s))", start)))
		}
		rowLimit := w.Preferences.Load().RowLimit
		for i := start; i < len(transcript.Messages); i++ {
			renderMessage(out, i, transcript.Messages[i], rowLimit)
		}
		return nil
	},
}

func init() {
	chatShowCmd.Flags().IntVarP(&chatShowLimit, "limit", "n", 0, "Show only the last N messages")

	chatCmd.AddCommand(chatNewCmd, chatListCmd, chatUseCmd, chatRenameCmd, chatDeleteCmd, chatShowCmd)
	rootCmd.AddCommand(chatCmd)
}
