package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/iksnae/research-session/internal"
)

// MarkdownExporter exports sessions in Markdown format
type MarkdownExporter struct{}

// Export exports a session to Markdown format
func (e *MarkdownExporter) Export(session *internal.ChatSession, w io.Writer) error {
	// Header
	_, _ = fmt.Fprintf(w, "# %s\n\n", session.Title)
	_, _ = fmt.Fprintf(w, "**Session:** %s  \n", session.ID)
	if created := session.GetCreatedAt(); !created.IsZero() {
		_, _ = fmt.Fprintf(w, "**Created:** %s  \n", formatTime(created))
	}
	if updated := session.GetUpdatedAt(); !updated.IsZero() {
		_, _ = fmt.Fprintf(w, "**Updated:** %s  \n", formatTime(updated))
	}
	_, _ = fmt.Fprintf(w, "**Messages:** %d\n\n", len(session.Messages))

	_, _ = fmt.Fprintf(w, "---\n\n")
	_, _ = fmt.Fprintf(w, "## Messages\n\n")

	for i, msg := range session.Messages {
		timestamp := ""
		if ts := internal.MessageTime(msg.ID); !ts.IsZero() {
			timestamp = fmt.Sprintf(" (%s)", formatTime(ts))
		}

		content := escapeMarkdown(msg.Content)
		_, _ = fmt.Fprintf(w, "**%s:**%s\n\n%s\n\n", msg.Role, timestamp, content)

		if msg.Metadata != nil {
			writePayload(w, msg.Metadata)
		}

		if i < len(session.Messages)-1 {
			_, _ = fmt.Fprintf(w, "---\n\n")
		}
	}

	return nil
}

// writePayload renders the structured result under an assistant message
func writePayload(w io.Writer, md *internal.Metadata) {
	payload, err := md.Payload()
	if err != nil || payload == nil {
		return
	}

	switch p := payload.(type) {
	case internal.LegalSearchResults:
		_, _ = fmt.Fprintf(w, "_Legal search: %d result(s)_\n\n", len(p))
		for _, doc := range p {
			title := doc.Title
			if doc.URL != "" {
				title = fmt.Sprintf("[%s](%s)", doc.Title, doc.URL)
			}
			_, _ = fmt.Fprintf(w, "- %s", title)
			if doc.Citation != "" {
				_, _ = fmt.Fprintf(w, " (%s)", doc.Citation)
			}
			_, _ = fmt.Fprintln(w)
		}
		_, _ = fmt.Fprintln(w)
	case internal.WebSearchResults:
		_, _ = fmt.Fprintf(w, "_Web search: %d result(s)_\n\n", len(p))
		for _, r := range p {
			_, _ = fmt.Fprintf(w, "- [%s](%s)\n", r.Title, r.Link)
		}
		_, _ = fmt.Fprintln(w)
	case internal.GeneralChatAnswer:
		for _, c := range p.Citations {
			_, _ = fmt.Fprintf(w, "> %s\n", c.Reference)
		}
		if len(p.Citations) > 0 {
			_, _ = fmt.Fprintln(w)
		}
	case internal.DraftReview:
		for _, issue := range p.FlaggedIssues {
			_, _ = fmt.Fprintf(w, "- **%s**: %s\n", issue.Type, issue.Recommendation)
		}
		if len(p.FlaggedIssues) > 0 {
			_, _ = fmt.Fprintln(w)
		}
	case internal.ProceduralTimeline:
		_, _ = fmt.Fprintf(w, "- Current stage: %s\n- Next step: %s (%d days)\n\n",
			p.CurrentStage, p.NextProceduralStep, p.TimelineDays)
	case internal.DocumentDigest:
		for _, ev := range p.Timeline {
			_, _ = fmt.Fprintf(w, "- %s: %s\n", ev.Date, ev.Event)
		}
		if len(p.Timeline) > 0 {
			_, _ = fmt.Fprintln(w)
		}
	}
}

// escapeMarkdown escapes markdown special characters
func escapeMarkdown(text string) string {
	// Basic escaping - preserve code blocks
	lines := strings.Split(text, "\n")
	var result []string
	inCodeBlock := false

	for _, line := range lines {
		if strings.HasPrefix(line, "```") {
			inCodeBlock = !inCodeBlock
			result = append(result, line)
		} else if inCodeBlock {
			result = append(result, line)
		} else {
			line = strings.ReplaceAll(line, "**", "\\*\\*")
			line = strings.ReplaceAll(line, "__", "\\_\\_")
			result = append(result, line)
		}
	}

	return strings.Join(result, "\n")
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
