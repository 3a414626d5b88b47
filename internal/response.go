package internal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Route names the backend tool that produced a result
type Route string

const (
	RouteLegalSearch         Route = "legal_search"
	RouteWebSearch           Route = "web_search"
	RouteGeneralChat         Route = "general_chat"
	RouteAdversarialEngine   Route = "adversarial_engine"
	RouteProceduralNavigator Route = "procedural_navigator"
	RouteDocumentProcessor   Route = "document_processor"
	RouteUnknown             Route = "unknown"
)

// QueryRequest is the body of POST /api/query
type QueryRequest struct {
	Query string `json:"query"`
}

// QueryResponse is the decoded body of POST /api/query
type QueryResponse struct {
	Message string          `json:"message,omitempty"`
	Route   Route           `json:"route,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   string          `json:"error,omitempty"`

	// Results is Result.results when present, otherwise Result itself
	Results json.RawMessage `json:"-"`
	// Payload is Results decoded for Route
	Payload Payload `json:"-"`
}

// ParseQueryResponse decodes and validates a response body
func ParseQueryResponse(body []byte) (*QueryResponse, error) {
	var resp QueryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &ParseError{Source: "response", Key: "body", Err: err}
	}

	resp.Results = extractResults(resp.Result)
	payload, err := DecodePayload(resp.Route, resp.Results)
	if err != nil {
		return nil, err
	}
	resp.Payload = payload
	return &resp, nil
}

// extractResults prefers a nested "results" field over the flat result
func extractResults(result json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(result)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if trimmed[0] == '{' {
		var nested struct {
			Results json.RawMessage `json:"results"`
		}
		if json.Unmarshal(trimmed, &nested) == nil {
			r := bytes.TrimSpace(nested.Results)
			if len(r) > 0 && !bytes.Equal(r, []byte("null")) {
				return nested.Results
			}
		}
	}
	return result
}

// Text is a display field that may arrive as a string, number or boolean.
// null decodes to "". Objects and arrays are rejected.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*t = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
	case data[0] == '{' || data[0] == '[':
		return fmt.Errorf("expected a scalar, got %s", data[:1])
	default:
		*t = Text(data)
	}
	return nil
}

// Score is a 0..1 confidence that may arrive as a number or as a string
// such as "0.85" or "85%". Text that is not a number decodes to 0.
type Score float64

func (s *Score) UnmarshalJSON(data []byte) error {
	var t Text
	if err := t.UnmarshalJSON(data); err != nil {
		return err
	}
	text := strings.TrimSpace(string(t))
	percent := strings.HasSuffix(text, "%")
	f, err := strconv.ParseFloat(strings.TrimSuffix(text, "%"), 64)
	if err != nil {
		*s = 0
		return nil
	}
	if percent {
		f /= 100
	}
	*s = Score(f)
	return nil
}

// Count is a whole number that may arrive as a number or numeric string.
// Fractions are truncated and anything else decodes to 0.
type Count int

func (c *Count) UnmarshalJSON(data []byte) error {
	var t Text
	if err := t.UnmarshalJSON(data); err != nil {
		return err
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(string(t)), 64)
	if err != nil {
		*c = 0
		return nil
	}
	*c = Count(f)
	return nil
}

// Payload is the validated, route-specific result of a query
type Payload interface {
	Route() Route
}

// LegalDocument is one Indian Kanoon search hit
type LegalDocument struct {
	Title     string `json:"title"`
	DocID     Text   `json:"doc_id,omitempty"`
	Snippet   string `json:"snippet,omitempty"`
	URL       string `json:"url,omitempty"`
	Citation  Text   `json:"citation,omitempty"`
	DocSource Text   `json:"docsource,omitempty"`
}

// LegalSearchResults is the legal_search payload
type LegalSearchResults []LegalDocument

func (LegalSearchResults) Route() Route { return RouteLegalSearch }

// WebResult is one web search hit
type WebResult struct {
	Title   string `json:"title"`
	Link    string `json:"link,omitempty"`
	Snippet string `json:"snippet,omitempty"`
}

// WebSearchResults is the web_search payload
type WebSearchResults []WebResult

func (WebSearchResults) Route() Route { return RouteWebSearch }

// Citation backs a statement in a general chat answer
type Citation struct {
	Reference string `json:"reference"`
	Relevance Text   `json:"relevance,omitempty"`
}

// GeneralChatAnswer is the general_chat payload
type GeneralChatAnswer struct {
	Answer      string     `json:"answer"`
	Citations   []Citation `json:"citations,omitempty"`
	Confidence  Text       `json:"confidence,omitempty"`
	Abstentions []string   `json:"abstentions,omitempty"`
}

func (GeneralChatAnswer) Route() Route { return RouteGeneralChat }

// FlaggedIssue is one problem the adversarial engine found in a draft
type FlaggedIssue struct {
	Type           string `json:"type"`
	LineSnippet    string `json:"line_snippet,omitempty"`
	Recommendation string `json:"recommendation,omitempty"`
}

// DraftReview is the adversarial_engine payload. Status and Message are
// set when the engine rejected the draft.
type DraftReview struct {
	ConfidenceScore Score          `json:"confidence_score,omitempty"`
	FlaggedIssues   []FlaggedIssue `json:"flagged_issues,omitempty"`
	Abstentions     []string       `json:"abstentions,omitempty"`
	Status          Text           `json:"status,omitempty"`
	Message         string         `json:"message,omitempty"`
}

func (DraftReview) Route() Route { return RouteAdversarialEngine }

// ProceduralTimeline is the procedural_navigator payload
type ProceduralTimeline struct {
	CurrentStage       string `json:"current_stage"`
	NextProceduralStep string `json:"next_procedural_step"`
	TimelineDays       Count  `json:"timeline_days"`
	MaxExtensionDays   Count  `json:"max_extension_days"`
	StatutoryReference string `json:"statutory_reference,omitempty"`
	Confidence         Text   `json:"confidence,omitempty"`
}

func (ProceduralTimeline) Route() Route { return RouteProceduralNavigator }

// TimelineEvent is one dated event extracted from a document
type TimelineEvent struct {
	Date       string `json:"date"`
	Event      string `json:"event"`
	ExactQuote string `json:"exact_quote,omitempty"`
}

// DocumentDigest is the document_processor payload
type DocumentDigest struct {
	Summary         string          `json:"summary"`
	Timeline        []TimelineEvent `json:"timeline,omitempty"`
	ConfidenceScore Score           `json:"confidence_score,omitempty"`
	Abstentions     []string        `json:"abstentions,omitempty"`
}

func (DocumentDigest) Route() Route { return RouteDocumentProcessor }

// RawPayload holds results for routes without a dedicated shape
type RawPayload struct {
	Kind Route
	Data json.RawMessage
}

func (p RawPayload) Route() Route { return p.Kind }

// DecodePayload validates results against the shape expected for route.
// Only the shape is strict: scalar display fields accept loose types.
// Empty results decode to nil.
func DecodePayload(route Route, results json.RawMessage) (Payload, error) {
	trimmed := bytes.TrimSpace(results)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	var (
		payload Payload
		err     error
	)
	switch route {
	case RouteLegalSearch:
		var p LegalSearchResults
		err = json.Unmarshal(trimmed, &p)
		payload = p
	case RouteWebSearch:
		var p WebSearchResults
		err = json.Unmarshal(trimmed, &p)
		payload = p
	case RouteGeneralChat:
		var p GeneralChatAnswer
		err = json.Unmarshal(trimmed, &p)
		payload = p
	case RouteAdversarialEngine:
		var p DraftReview
		err = json.Unmarshal(trimmed, &p)
		payload = p
	case RouteProceduralNavigator:
		var p ProceduralTimeline
		err = json.Unmarshal(trimmed, &p)
		payload = p
	case RouteDocumentProcessor:
		var p DocumentDigest
		err = json.Unmarshal(trimmed, &p)
		payload = p
	default:
		if !json.Valid(trimmed) {
			err = fmt.Errorf("invalid JSON")
		}
		payload = RawPayload{Kind: route, Data: append(json.RawMessage(nil), trimmed...)}
	}
	if err != nil {
		return nil, &ParseError{Source: "response", Key: string(route), Err: err}
	}
	return payload, nil
}

// ResultCount returns the number of items in list-shaped payloads
func ResultCount(p Payload) int {
	switch v := p.(type) {
	case LegalSearchResults:
		return len(v)
	case WebSearchResults:
		return len(v)
	case DraftReview:
		return len(v.FlaggedIssues)
	case DocumentDigest:
		return len(v.Timeline)
	default:
		return 0
	}
}
