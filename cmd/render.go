package cmd

import (
	"fmt"
	"strings"

	"github.com/iksnae/research-session/internal"
)

// payloadLines summarises structured results for the terminal
func payloadLines(p internal.Payload) []string {
	var lines []string
	switch v := p.(type) {
	case internal.LegalSearchResults:
		for i, doc := range v {
			line := fmt.Sprintf("%d. %s", i+1, doc.Title)
			if doc.Citation != "" {
				line += " (" + string(doc.Citation) + ")"
			}
			lines = append(lines, line)
			if doc.URL != "" {
				lines = append(lines, "   "+doc.URL)
			}
		}
	case internal.WebSearchResults:
		for i, r := range v {
			lines = append(lines, fmt.Sprintf("%d. %s", i+1, r.Title))
			if r.Link != "" {
				lines = append(lines, "   "+r.Link)
			}
		}
	case internal.GeneralChatAnswer:
		lines = append(lines, wrapText(v.Answer, 76))
		for _, c := range v.Citations {
			lines = append(lines, "• "+c.Reference)
		}
		if v.Confidence != "" {
			lines = append(lines, "Confidence: "+string(v.Confidence))
		}
		lines = appendAbstentions(lines, v.Abstentions)
	case internal.DraftReview:
		if v.Status != "" {
			lines = append(lines, fmt.Sprintf("Status: %s %s", v.Status, v.Message))
		}
		if v.ConfidenceScore > 0 {
			lines = append(lines, fmt.Sprintf("Confidence: %.0f%%", v.ConfidenceScore*100))
		}
		for _, issue := range v.FlaggedIssues {
			lines = append(lines, fmt.Sprintf("⚠ %s: %s", issue.Type, issue.LineSnippet))
			if issue.Recommendation != "" {
				lines = append(lines, "   → "+issue.Recommendation)
			}
		}
		lines = appendAbstentions(lines, v.Abstentions)
	case internal.ProceduralTimeline:
		lines = append(lines,
			"Current stage: "+v.CurrentStage,
			"Next step: "+v.NextProceduralStep,
			fmt.Sprintf("Timeline: %d day(s), extendable by %d", v.TimelineDays, v.MaxExtensionDays),
		)
		if v.StatutoryReference != "" {
			lines = append(lines, "Reference: "+v.StatutoryReference)
		}
	case internal.DocumentDigest:
		lines = append(lines, wrapText(v.Summary, 76))
		for _, ev := range v.Timeline {
			lines = append(lines, fmt.Sprintf("%s  %s", ev.Date, ev.Event))
		}
		lines = appendAbstentions(lines, v.Abstentions)
	case internal.RawPayload:
		raw := string(v.Data)
		if r := []rune(raw); len(r) > 200 {
			raw = string(r[:200]) + "..."
		}
		lines = append(lines, fmt.Sprintf("[%s] %s", v.Kind, raw))
	}
	return lines
}

func appendAbstentions(lines, abstentions []string) []string {
	if len(abstentions) == 0 {
		return lines
	}
	return append(lines, "Not covered: "+strings.Join(abstentions, "; "))
}
