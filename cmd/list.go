package cmd

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/iksnae/research-session/internal"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List chat sessions",
	Long:  `List all chat sessions grouped by when they were last updated. The active session is marked with *.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		displaySessionGroups(cmd.OutOrStdout(), a.store.Sessions(), a.store.ActiveID(), time.Now())
		return nil
	},
}

func displaySessionGroups(out io.Writer, sessions []*internal.ChatSession, activeID string, now time.Time) {
	if len(sessions) == 0 {
		fmt.Fprintln(out, headerStyle.Render("📋 No sessions found"))
		return
	}

	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("📋 Found %d session(s)", len(sessions))))
	fmt.Fprintln(out)

	for _, group := range internal.GroupSessionsByDate(sessions, now) {
		fmt.Fprintln(out, groupStyle.Render(group.Label))

		w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
		for _, session := range group.Sessions {
			marker := " "
			if session.ID == activeID {
				marker = activeStyle.Render("*")
			}

			title := session.Title
			if r := []rune(title); len(r) > 50 {
				title = string(r[:47]) + "..."
			}

			_, _ = fmt.Fprintf(w, "%s %s\t%s\t%s\t%s\t\n",
				marker,
				idStyle.Render(shortID(session.ID)),
				title,
				countStyle.Render(strconv.Itoa(len(session.Messages))),
				dateStyle.Render(humanize.RelTime(session.GetUpdatedAt(), now, "ago", "from now")),
			)
		}
		_ = w.Flush()
		fmt.Fprintln(out)
	}

	fmt.Fprintln(out, idStyle.Render("💡 Tip: Use an id prefix (e.g., ")+
		titleStyle.Render(shortID(sessions[0].ID))+
		idStyle.Render(") with `research-session show <id>`"))
}

// shortID shows the first 8 characters of an id
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func init() {
	rootCmd.AddCommand(listCmd)
}
