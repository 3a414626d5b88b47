package internal

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultResultsMessage is used when the backend sends no message text
	DefaultResultsMessage = "Here are your results:"
	// DispatchErrorMessage is appended when a query could not be answered
	DispatchErrorMessage = "Sorry, I encountered an error communicating with the research backend. Please make sure the server is running and try again."
)

// DispatchState is where a single dispatch ended up
type DispatchState int

const (
	DispatchIdle DispatchState = iota
	DispatchSending
	DispatchSucceeded
	DispatchFailed
	// DispatchSkipped means the query was blank; nothing happened
	DispatchSkipped
	// DispatchDiscarded means the target session was deleted mid-flight
	DispatchDiscarded
)

func (s DispatchState) String() string {
	switch s {
	case DispatchIdle:
		return "idle"
	case DispatchSending:
		return "sending"
	case DispatchSucceeded:
		return "succeeded"
	case DispatchFailed:
		return "failed"
	case DispatchSkipped:
		return "skipped"
	case DispatchDiscarded:
		return "discarded"
	default:
		return "unknown"
	}
}

// Outcome describes a finished dispatch
type Outcome struct {
	State     DispatchState
	SessionID string
	User      *ChatMessage
	Reply     *ChatMessage
	Response  *QueryResponse
	// Err is the underlying failure for DispatchFailed
	Err error
}

// QueryDispatcher sends queries and folds the answers into sessions
type QueryDispatcher struct {
	store   *SessionStore
	client  QueryClient
	timeout time.Duration

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewQueryDispatcher creates a dispatcher writing into store. Each query
// is bounded by timeout; zero means DefaultTimeout.
func NewQueryDispatcher(store *SessionStore, client QueryClient, timeout time.Duration) *QueryDispatcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &QueryDispatcher{
		store:    store,
		client:   client,
		timeout:  timeout,
		inFlight: make(map[string]struct{}),
	}
}

// InFlight reports whether sessionID has a dispatch outstanding
func (d *QueryDispatcher) InFlight(sessionID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.inFlight[sessionID]
	return ok
}

func (d *QueryDispatcher) begin(sessionID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.inFlight[sessionID]; ok {
		return false
	}
	d.inFlight[sessionID] = struct{}{}
	return true
}

func (d *QueryDispatcher) end(sessionID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.inFlight, sessionID)
}

// Dispatch sends query on behalf of sessionID. An empty sessionID targets
// the active session, creating one when none is active. The returned
// error is reserved for local problems (storage, re-entrant dispatch);
// backend failures are reported through Outcome.
func (d *QueryDispatcher) Dispatch(ctx context.Context, sessionID, query string) (*Outcome, error) {
	if strings.TrimSpace(query) == "" {
		return &Outcome{State: DispatchSkipped, SessionID: sessionID}, nil
	}
	if err := d.store.LoadErr(); err != nil {
		return nil, err
	}

	if sessionID == "" {
		sessionID = d.store.ActiveID()
	}
	if sessionID == "" {
		id, err := d.store.CreateSession()
		if err != nil && id == "" {
			return nil, err
		}
		if err != nil {
			LogWarn("Session %s created but not persisted: %v", id, err)
		}
		sessionID = id
	} else if !d.store.Has(sessionID) {
		return nil, ErrSessionNotFound
	}

	if !d.begin(sessionID) {
		return nil, ErrDispatchInFlight
	}
	defer d.end(sessionID)

	outcome := &Outcome{State: DispatchSending, SessionID: sessionID}

	user := NewUserMessage(query)
	if err := d.store.AppendMessage(sessionID, user); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, err
		}
		LogWarn("User message not persisted: %v", err)
	}
	outcome.User = &user

	LogDebug("Dispatching query for session %s", sessionID)
	qctx, cancel := context.WithTimeout(ctx, d.timeout)
	resp, err := d.client.Query(qctx, query)
	cancel()

	var reply ChatMessage
	if err != nil {
		outcome.State = DispatchFailed
		outcome.Err = &DispatchError{SessionID: sessionID, Status: statusCode(err), Err: err}
		LogWarn("Query failed: %v", outcome.Err)
		reply = NewAssistantMessage(DispatchErrorMessage, nil)
	} else {
		outcome.State = DispatchSucceeded
		outcome.Response = resp
		reply = NewAssistantMessage(replyContent(resp), replyMetadata(resp))
	}

	// The response targets the session captured above, not whatever is active now
	if !d.store.Has(sessionID) {
		LogDebug("Session %s deleted while query was in flight; discarding reply", sessionID)
		outcome.State = DispatchDiscarded
		return outcome, nil
	}
	if err := d.store.AppendMessage(sessionID, reply); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			outcome.State = DispatchDiscarded
			return outcome, nil
		}
		LogWarn("Reply not persisted: %v", err)
	}
	outcome.Reply = &reply
	return outcome, nil
}

func replyContent(resp *QueryResponse) string {
	switch {
	case resp.Message != "":
		return resp.Message
	case resp.Error != "":
		return resp.Error
	default:
		return DefaultResultsMessage
	}
}

func replyMetadata(resp *QueryResponse) *Metadata {
	if resp.Route == "" && len(resp.Results) == 0 {
		return nil
	}
	return &Metadata{Type: string(resp.Route), Results: resp.Results}
}

func statusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return 0
}
