package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/research-session/internal"
	"github.com/spf13/cobra"
)

var (
	askSession string
	askNew     bool
)

var askCmd = &cobra.Command{
	Use:   "ask <query...>",
	Short: "Send a query to the research backend",
	Long: `Send a query and save the exchange in a chat session.

The active session is used unless --session or --new is given. When the
backend cannot be reached an apology is recorded in the session and the
command exits with an error.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		target := ""
		switch {
		case askNew:
			if target, err = a.store.CreateSession(); err != nil && target == "" {
				return err
			}
		case askSession != "":
			session, err := a.resolveSession(askSession)
			if err != nil {
				return err
			}
			target = session.ID
		}

		var outcome *internal.Outcome
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		err = internal.ShowProgress(ctx, "Researching", func() error {
			var dispatchErr error
			outcome, dispatchErr = a.dispatcher.Dispatch(ctx, target, query)
			return dispatchErr
		})
		if err != nil {
			return err
		}
		return displayOutcome(cmd.OutOrStdout(), outcome)
	},
}

// displayOutcome prints the reply of a dispatch and surfaces its failure
func displayOutcome(out io.Writer, outcome *internal.Outcome) error {
	if outcome == nil {
		return nil
	}

	switch outcome.State {
	case internal.DispatchSkipped:
		fmt.Fprintln(out, warningStyle.Render("Nothing to send"))
		return nil
	case internal.DispatchDiscarded:
		fmt.Fprintln(out, warningStyle.Render("Session was deleted before the reply arrived"))
		return nil
	}

	fmt.Fprintln(out, idStyle.Render("Session "+outcome.SessionID))
	fmt.Fprintln(out)
	if outcome.Reply != nil {
		displayMessage(out, 2, *outcome.Reply, 2)
	}
	if outcome.State == internal.DispatchFailed {
		return outcome.Err
	}
	return nil
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVarP(&askSession, "session", "s", "", "Session id or prefix to ask in")
	askCmd.Flags().BoolVar(&askNew, "new", false, "Ask in a new session")
	askCmd.MarkFlagsMutuallyExclusive("session", "new")
}
