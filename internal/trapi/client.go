package trapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"onehop/internal/logging"
)

// maxResponseBytes bounds how much of a TRAPI response is read into memory.
// Production KP responses for one-hop queries run to a few MB; 256MB is a
// misbehaving server.
const maxResponseBytes = 256 << 20

// ErrUndecodable marks a 200 response whose body was not valid TRAPI JSON.
var ErrUndecodable = errors.New("undecodable TRAPI response")

// ClientConfig configures a TRAPI HTTP client.
type ClientConfig struct {
	Timeout        time.Duration
	MaxConcurrent  int           // bounded concurrent requests; 0 disables the bound
	RequestSpacing time.Duration // minimum gap between request starts
	UserAgent      string
}

// DefaultClientConfig returns sensible defaults for public Translator services.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Timeout:        10 * time.Minute,
		MaxConcurrent:  4,
		RequestSpacing: 100 * time.Millisecond,
		UserAgent:      "onehop",
	}
}

// Client posts TRAPI queries. Concurrency is bounded with a semaphore and
// request starts are spaced out, since the public endpoints rate-limit.
type Client struct {
	httpClient  *http.Client
	sem         chan struct{}
	mu          sync.Mutex
	lastRequest time.Time
	spacing     time.Duration
	userAgent   string
}

// NewClient creates a client with default config.
func NewClient() *Client {
	return NewClientWithConfig(DefaultClientConfig())
}

// NewClientWithConfig creates a client with custom config.
func NewClientWithConfig(cfg ClientConfig) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Minute
	}
	c := &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		spacing:    cfg.RequestSpacing,
		userAgent:  cfg.UserAgent,
	}
	if cfg.MaxConcurrent > 0 {
		c.sem = make(chan struct{}, cfg.MaxConcurrent)
	}
	return c
}

// CallResult is the outcome of a TRAPI POST. A non-200 status is data for the
// / validator, not a Go error: Response is nil and StatusCode carries the code.
type CallResult struct {
	StatusCode int
	Response   *Response
	Raw        json.RawMessage
}

// PostQuery posts a TRAPI query to the given endpoint and decodes the
// response envelope. Transport failures return an error; HTTP-level failures
// return a CallResult with the status code.
func (c *Client) PostQuery(ctx context.Context, url string, query *Query) (*CallResult, error) {
	if c.sem != nil {
		select {
		case c.sem <- struct{}{}:
			defer func() { <-c.sem }()
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	c.pace()

	body, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("failed to encode TRAPI query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", url, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	timer := logging.StartTimer(logging.CategoryAPI, "POST "+url)
	resp, err := c.httpClient.Do(req)
	timer.Stop()
	if err != nil {
		return nil, fmt.Errorf("TRAPI POST to %s failed: %w", url, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read TRAPI response from %s: %w", url, err)
	}

	result := &CallResult{StatusCode: resp.StatusCode, Raw: raw}
	if resp.StatusCode != http.StatusOK {
		logging.API("POST %s returned HTTP %d", url, resp.StatusCode)
		return result, nil
	}

	var envelope Response
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("%w from %s: %v", ErrUndecodable, url, err)
	}
	result.Response = &envelope
	logging.APIDebug("POST %s returned %d bytes", url, len(raw))
	return result, nil
}

// Get fetches a raw JSON document, for ARS response retrieval.
func (c *Client) Get(ctx context.Context, url string) (int, json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to build request for %s: %w", url, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("GET %s failed: %w", url, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response from %s: %w", url, err)
	}
	return resp.StatusCode, raw, nil
}

// pace enforces the minimum spacing between request starts.
func (c *Client) pace() {
	if c.spacing <= 0 {
		return
	}
	c.mu.Lock()
	elapsed := time.Since(c.lastRequest)
	if elapsed < c.spacing {
		time.Sleep(c.spacing - elapsed)
	}
	c.lastRequest = time.Now()
	c.mu.Unlock()
}
