package internal

import (
	"context"
	"net/url"
	"strings"
	"sync/atomic"
)

// PromptParam is the deep-link query parameter carrying a prompt
const PromptParam = "prompt"

// Bridge states
const (
	PromptNotFired int32 = iota
	PromptFiring
	PromptFired
)

// PromptBridge forwards a deep-link prompt to the dispatcher at most once
type PromptBridge struct {
	store      *SessionStore
	dispatcher *QueryDispatcher
	state      atomic.Int32
}

// NewPromptBridge creates a bridge in the not-fired state
func NewPromptBridge(store *SessionStore, dispatcher *QueryDispatcher) *PromptBridge {
	return &PromptBridge{store: store, dispatcher: dispatcher}
}

// State returns the current bridge state
func (b *PromptBridge) State() int32 {
	return b.state.Load()
}

// PromptFromURL extracts the decoded prompt parameter from a raw URL
func PromptFromURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	return u.Query().Get(PromptParam), nil
}

// ResearchLink builds a research page deep link carrying prompt
func ResearchLink(base, prompt string) string {
	u, err := url.Parse(base)
	if err != nil || (u.Scheme == "" && u.Path == "") {
		u = &url.URL{Path: "/research"}
	}
	q := u.Query()
	q.Set(PromptParam, prompt)
	u.RawQuery = q.Encode()
	return u.String()
}

// FireURL is Fire for a raw deep-link URL
func (b *PromptBridge) FireURL(ctx context.Context, rawURL string) (*Outcome, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &ParseError{Source: "deeplink", Key: rawURL, Err: err}
	}
	return b.Fire(ctx, u.Query())
}

// Fire dispatches the prompt parameter as the first message of a new
// session. It waits for the store to finish loading. Only the first call
// on a bridge does anything; later calls return (nil, nil).
func (b *PromptBridge) Fire(ctx context.Context, params url.Values) (*Outcome, error) {
	if !b.state.CompareAndSwap(PromptNotFired, PromptFiring) {
		return nil, nil
	}
	defer b.state.Store(PromptFired)

	prompt := params.Get(PromptParam)
	if strings.TrimSpace(prompt) == "" {
		return nil, nil
	}

	select {
	case <-b.store.Loaded():
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	id, err := b.store.CreateSession()
	if err != nil && id == "" {
		return nil, err
	}
	LogDebug("Deep-link prompt opened session %s", id)
	return b.dispatcher.Dispatch(ctx, id, prompt)
}
