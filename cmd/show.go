package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/research-session/internal"
	"github.com/spf13/cobra"
)

var (
	limit int
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show [session-id]",
	Short: "Show messages for a session",
	Long:  `Display messages from a chat session. Without an id the active session is shown.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ref := ""
		if len(args) > 0 {
			ref = args[0]
		}
		session, err := a.resolveSession(ref)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		displaySessionHeader(out, session, session.ID == a.store.ActiveID())

		messages := session.Messages
		total := len(messages)
		if limit > 0 && limit < total {
			messages = messages[total-limit:]
		}
		offset := total - len(messages)
		for i, msg := range messages {
			displayMessage(out, offset+i+1, msg, total)
		}

		if offset > 0 {
			fmt.Fprintln(out, timestampStyle.Render(fmt.Sprintf("... (%d earlier message(s))", offset)))
		}
		return nil
	},
}

func displaySessionHeader(out io.Writer, session *internal.ChatSession, active bool) {
	if session == nil {
		return
	}
	fmt.Fprintln(out, sessionHeaderStyle.Render(fmt.Sprintf("💬 %s", session.Title)))

	metaParts := []string{
		fmt.Sprintf("ID: %s", session.ID),
		fmt.Sprintf("Created: %s", session.GetCreatedAt().Format("2006-01-02 15:04")),
		fmt.Sprintf("Messages: %d", len(session.Messages)),
	}
	if active {
		metaParts = append(metaParts, "Active")
	}
	fmt.Fprintln(out, sessionMetaStyle.Render(strings.Join(metaParts, " • ")))
	fmt.Fprintln(out)
}

func displayMessage(out io.Writer, index int, msg internal.ChatMessage, total int) {
	var actorStyle = assistantMessageStyle
	actorLabel := "🤖 Assistant"
	if msg.Role == internal.RoleUser {
		actorStyle = userMessageStyle
		actorLabel = "👤 User"
	}

	header := actorStyle.Render(actorLabel) + " " + timestampStyle.Render(fmt.Sprintf("[%d/%d]", index, total))
	if ts := internal.MessageTime(msg.ID); !ts.IsZero() {
		header += " " + timestampStyle.Render(ts.Format("15:04:05"))
	}
	fmt.Fprintln(out, header)

	content := strings.TrimSpace(msg.Content)
	if content != "" {
		fmt.Fprintln(out, messageContentStyle.Render(wrapText(content, 80)))
	} else {
		fmt.Fprintln(out, messageContentStyle.Foreground(timestampStyle.GetForeground()).Render("(empty message)"))
	}

	if msg.Metadata != nil {
		payload, err := msg.Metadata.Payload()
		if err != nil {
			internal.LogDebug("Unreadable results on message %s: %v", msg.ID, err)
		} else if lines := payloadLines(payload); len(lines) > 0 {
			fmt.Fprintln(out, resultStyle.Render(strings.Join(lines, "\n")))
		}
	}

	fmt.Fprintln(out)
}

func wrapText(text string, width int) string {
	lines := strings.Split(text, "\n")
	var wrapped []string

	for _, line := range lines {
		if len(line) <= width {
			wrapped = append(wrapped, line)
			continue
		}

		words := strings.Fields(line)
		currentLine := ""
		for _, word := range words {
			if len(currentLine)+len(word)+1 > width {
				if currentLine != "" {
					wrapped = append(wrapped, currentLine)
					currentLine = word
				} else {
					wrapped = append(wrapped, word)
					currentLine = ""
				}
			} else {
				if currentLine == "" {
					currentLine = word
				} else {
					currentLine += " " + word
				}
			}
		}
		if currentLine != "" {
			wrapped = append(wrapped, currentLine)
		}
	}

	return strings.Join(wrapped, "\n")
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show only the last n messages")
}
