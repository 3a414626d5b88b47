package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultTimeout bounds every backend request
const DefaultTimeout = 30 * time.Second

// StatusError is returned for non-2xx backend responses
type StatusError struct {
	Code   int
	Status string
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("HTTP %d: %s", e.Code, e.Detail)
	}
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Status)
}

// QueryClient is what the dispatcher needs from the backend
type QueryClient interface {
	Query(ctx context.Context, query string) (*QueryResponse, error)
}

// ResearchClient talks to the research backend over HTTP
type ResearchClient struct {
	http    *resty.Client
	baseURL string
}

// HealthStatus is the body of GET /
type HealthStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewResearchClient creates a client for baseURL with the given timeout
func NewResearchClient(baseURL string, timeout time.Duration) *ResearchClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	baseURL = strings.TrimRight(baseURL, "/")
	rc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "research-session/1.0")
	return &ResearchClient{http: rc, baseURL: baseURL}
}

// SetTransport swaps the underlying round tripper
func (c *ResearchClient) SetTransport(rt http.RoundTripper) {
	c.http.SetTransport(rt)
}

// BaseURL returns the backend base URL
func (c *ResearchClient) BaseURL() string {
	return c.baseURL
}

// Query sends one query to POST /api/query
func (c *ResearchClient) Query(ctx context.Context, query string) (*QueryResponse, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(QueryRequest{Query: query}).
		Post("/api/query")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.IsError() || resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return nil, statusError(resp)
	}

	LogDebug("POST /api/query -> %d in %s", resp.StatusCode(), resp.Time())
	return ParseQueryResponse(resp.Body())
}

// Health probes GET /
func (c *ResearchClient) Health(ctx context.Context) (*HealthStatus, error) {
	resp, err := c.http.R().SetContext(ctx).Get("/")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.IsError() {
		return nil, statusError(resp)
	}
	var status HealthStatus
	if err := json.Unmarshal(resp.Body(), &status); err != nil {
		return nil, &ParseError{Source: "response", Key: "/", Err: err}
	}
	return &status, nil
}

// Get fetches an absolute URL and returns the body
func (c *ResearchClient) Get(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "*/*").
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.IsError() {
		return nil, statusError(resp)
	}
	return resp.Body(), nil
}

func statusError(resp *resty.Response) error {
	se := &StatusError{Code: resp.StatusCode(), Status: resp.Status()}
	// FastAPI reports failures as {"detail": "..."}
	var body struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(resp.Body(), &body) == nil {
		se.Detail = body.Detail
	}
	return se
}
