package internal

import (
	"time"
)

// CreateTestSession creates a session with one question and one answer
func CreateTestSession(id string) *ChatSession {
	now := time.Now().UnixMilli()
	return &ChatSession{
		ID:    id,
		Title: "Limitation period for civil suits",
		Messages: []ChatMessage{
			NewUserMessage("What is the limitation period for a civil suit?"),
			NewAssistantMessage("It depends on the nature of the suit.", &Metadata{
				Type:    string(RouteGeneralChat),
				Results: []byte(`{"answer":"It depends on the nature of the suit.","confidence":"medium"}`),
			}),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CreateTestSessionWithMessages creates a session with custom messages
func CreateTestSessionWithMessages(id string, messages []ChatMessage) *ChatSession {
	now := time.Now().UnixMilli()
	return &ChatSession{
		ID:        id,
		Title:     DefaultSessionTitle,
		Messages:  messages,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CreateTestSessionAt creates an empty session last updated at updatedAt
func CreateTestSessionAt(id, title string, updatedAt time.Time) *ChatSession {
	ms := updatedAt.UnixMilli()
	return &ChatSession{
		ID:        id,
		Title:     title,
		Messages:  []ChatMessage{},
		CreatedAt: ms,
		UpdatedAt: ms,
	}
}

// CreateTestNewsItem creates a news item with its analyse prompt filled in
func CreateTestNewsItem(title, summary string) NewsItem {
	return NewsItem{
		ID:            "news-test",
		Title:         title,
		Summary:       summary,
		Date:          "February 2, 2026",
		Link:          "https://news.example/item",
		AnalysePrompt: AnalysePrompt(title, summary),
	}
}
