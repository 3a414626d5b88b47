package cmd

import (
	"fmt"
	"strings"

	"github.com/iksnae/research-session/internal"
	"github.com/spf13/cobra"
)

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Start a new chat session",
	Long:  `Create an empty chat session and make it the active one.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		id, err := a.store.CreateSession()
		if err != nil {
			if id == "" {
				return err
			}
			internal.LogWarn("Session created but not saved: %v", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	},
}

var useCmd = &cobra.Command{
	Use:   "use <session-id>",
	Short: "Make a session the active one",
	Long:  `Select the session later commands act on. A unique id prefix is enough.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		session, err := a.resolveSession(args[0])
		if err != nil {
			return err
		}
		if err := a.store.SelectSession(session.ID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Active session: %s (%s)\n", session.Title, session.ID)
		return nil
	},
}

var renameCmd = &cobra.Command{
	Use:   "rename <session-id> <title...>",
	Short: "Rename a session",
	Long:  `Give a session a fixed title. Renamed sessions keep their title when messages are added.`,
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		title := strings.TrimSpace(strings.Join(args[1:], " "))
		if title == "" {
			return fmt.Errorf("title must not be empty")
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		session, err := a.resolveSession(args[0])
		if err != nil {
			return err
		}
		if err := a.store.RenameSession(session.ID, title); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %q\n", session.ID, title)
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:     "delete <session-id>",
	Aliases: []string{"rm"},
	Short:   "Delete a session",
	Long:    `Delete a session. If it was active, the most recently updated remaining session becomes active.`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		session, err := a.resolveSession(args[0])
		if err != nil {
			return err
		}
		if err := a.store.DeleteSession(session.ID); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Deleted %s\n", session.ID)
		if active := a.store.ActiveID(); active != "" {
			fmt.Fprintf(out, "Active session: %s\n", active)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(useCmd)
	rootCmd.AddCommand(renameCmd)
	rootCmd.AddCommand(deleteCmd)
}
