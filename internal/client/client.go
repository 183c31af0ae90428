// Package client talks to a running dashboard over its HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/iammorganparry/pof-dashboard/internal/events"
	"github.com/iammorganparry/pof-dashboard/internal/models"
)

// DefaultURL is where the dashboard listens unless configured otherwise.
const DefaultURL = "http://localhost:3456"

// APIError is a non-2xx response from the dashboard.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("dashboard: HTTP %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the dashboard.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Client is a dashboard API client
type Client struct {
	baseURL    string
	httpClient *http.Client
	// streamClient has no timeout; event streams stay open indefinitely.
	streamClient *http.Client
}

// New creates a client for the dashboard at baseURL.
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		streamClient: &http.Client{},
	}
}

// BaseURL returns the dashboard address the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// do sends a request and unmarshals a 2xx JSON body into result.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, result any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, respBody)
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}

func newAPIError(status int, body []byte) *APIError {
	var errResp models.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &APIError{StatusCode: status, Message: errResp.Error}
	}
	return &APIError{StatusCode: status, Message: strings.TrimSpace(string(body))}
}

func sessionQuery(session string) url.Values {
	if session == "" {
		return nil
	}
	return url.Values{"session": {session}}
}

// Health returns the liveness probe.
func (c *Client) Health(ctx context.Context) (models.HealthResponse, error) {
	var h models.HealthResponse
	err := c.do(ctx, http.MethodGet, "/health", nil, nil, &h)
	return h, err
}

// PostStatus reports an agent's status.
func (c *Client) PostStatus(ctx context.Context, update models.StatusUpdate) error {
	return c.do(ctx, http.MethodPost, "/api/status", nil, update, nil)
}

// Ask posts a question and returns its id.
func (c *Client) Ask(ctx context.Context, req models.QuestionRequest) (string, error) {
	var resp models.QuestionResponse
	if err := c.do(ctx, http.MethodPost, "/api/question", nil, req, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// Answer answers a pending question.
func (c *Client) Answer(ctx context.Context, req models.AnswerRequest) error {
	return c.do(ctx, http.MethodPost, "/api/answer", nil, req, nil)
}

// Answers lists answered questions, optionally scoped to one session.
func (c *Client) Answers(ctx context.Context, session string) ([]models.Question, error) {
	var qs []models.Question
	err := c.do(ctx, http.MethodGet, "/api/answers", sessionQuery(session), nil, &qs)
	return qs, err
}

// Sessions lists session summaries.
func (c *Client) Sessions(ctx context.Context) ([]models.SessionSummary, error) {
	var list []models.SessionSummary
	err := c.do(ctx, http.MethodGet, "/api/sessions", nil, nil, &list)
	return list, err
}

// SessionState returns one session's full projection.
func (c *Client) SessionState(ctx context.Context, session string) (models.SessionState, error) {
	var st models.SessionState
	err := c.do(ctx, http.MethodGet, "/api/state", sessionQuery(session), nil, &st)
	return st, err
}

// Snapshot returns every session.
func (c *Client) Snapshot(ctx context.Context) (models.Snapshot, error) {
	var snap models.Snapshot
	err := c.do(ctx, http.MethodGet, "/api/state", nil, nil, &snap)
	return snap, err
}

// Reset clears one session, or all of them when session is empty.
func (c *Client) Reset(ctx context.Context, session string) error {
	return c.do(ctx, http.MethodPost, "/api/reset", sessionQuery(session), nil, nil)
}

// Shutdown asks the dashboard to stop.
func (c *Client) Shutdown(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/shutdown", nil, nil, nil)
}

// WaitForAnswer polls the answered list until question id shows up, then
// returns it. It stops when ctx ends.
func (c *Client) WaitForAnswer(ctx context.Context, id, session string, interval time.Duration) (models.Question, error) {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		answered, err := c.Answers(ctx, session)
		if err != nil {
			return models.Question{}, err
		}
		for _, q := range answered {
			if q.ID == id {
				return q, nil
			}
		}

		select {
		case <-ctx.Done():
			return models.Question{}, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Stream is an open event stream.
type Stream struct {
	body   io.ReadCloser
	reader *events.Reader
}

// Next blocks for the next event. It returns io.EOF when the server
// closes the stream.
func (s *Stream) Next() (events.Event, error) {
	return s.reader.Next()
}

// Close ends the stream.
func (s *Stream) Close() error {
	return s.body.Close()
}

// Events opens the event stream. The first event is always init. The
// stream closes when ctx ends.
func (c *Client) Events(ctx context.Context) (*Stream, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/events", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.streamClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("open event stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return nil, newAPIError(resp.StatusCode, body)
	}

	return &Stream{body: resp.Body, reader: events.NewReader(resp.Body)}, nil
}
