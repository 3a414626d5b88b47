package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var openCmd = &cobra.Command{
	Use:   "open <url>",
	Short: "Open a research deep link",
	Long: `Open a link of the form /research?prompt=... . The prompt is sent as
the first message of a new session. Links without a prompt do nothing.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		return openLink(ctx, cmd, a, args[0])
	},
}

func openLink(ctx context.Context, cmd *cobra.Command, a *app, link string) error {
	outcome, err := a.bridge.FireURL(ctx, link)
	if err != nil {
		return err
	}
	if outcome == nil {
		fmt.Fprintln(cmd.OutOrStdout(), warningStyle.Render("No prompt in link"))
		return nil
	}
	return displayOutcome(cmd.OutOrStdout(), outcome)
}

func init() {
	rootCmd.AddCommand(openCmd)
}
