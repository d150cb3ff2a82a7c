// Package sqlsvc implements the query boundary over HTTP. The remote
// service receives a natural-language instruction and answers with the
// SQL it ran plus the result rows.
package sqlsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/payflowkr/payflow/pkg/domain"
)

const defaultTimeout = 60 * time.Second

// Client calls a remote SQL execution service.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// New creates a client for the service at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type runRequest struct {
	Instruction string `json:"instruction"`
}

type runResponse struct {
	SQL   string  `json:"sql,omitempty"`
	Raw   string  `json:"raw,omitempty"`
	Rows  [][]any `json:"rows,omitempty"`
	Error string  `json:"error,omitempty"`
}

// Run sends the instruction and decodes the outcome. A non-2xx status
// or an undecodable body is a plumbing failure; an error field in a
// well-formed response is a domain failure carried in the result.
func (c *Client) Run(ctx context.Context, instruction string) (*domain.QueryResult, error) {
	payload, err := json.Marshal(runRequest{Instruction: instruction})
	if err != nil {
		return nil, fmt.Errorf("encoding query request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/run", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building query request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling query service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("query service returned %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	var out runResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding query response: %w", err)
	}

	return &domain.QueryResult{
		SQL:  out.SQL,
		Raw:  out.Raw,
		Rows: out.Rows,
		Err:  out.Error,
	}, nil
}
