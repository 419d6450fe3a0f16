// Package emobuddy provides the companion chat backend adapter.
// All session state lives on the server; the opaque session ID returned
// by start is the only correlation between calls.
package emobuddy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mindline-labs/mindline-cli/internal/core/domain"
	"github.com/mindline-labs/mindline-cli/internal/core/ports/driven"
)

// Ensure Client implements the interface.
var _ driven.SessionService = (*Client)(nil)

// Default configuration values.
const (
	DefaultTimeout = 60 * time.Second

	availabilityEndpoint = "/emo-buddy/availability"
	startEndpoint        = "/emo-buddy/start"
	continueEndpoint     = "/emo-buddy/continue"
	endEndpoint          = "/emo-buddy/end"
)

// Config holds configuration for the companion chat client.
type Config struct {
	// BaseURL is the API base URL (required).
	BaseURL string

	// APIKey is the optional API key sent as X-API-Key.
	APIKey string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration
}

// Client calls the companion chat backend.
type Client struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// availabilityResponse is the GET /emo-buddy/availability response format.
type availabilityResponse struct {
	Available bool `json:"available"`
}

// startRequest is the POST /emo-buddy/start request format. The seed is
// the per-source success payloads of a completed analysis.
type startRequest struct {
	RequestID string                     `json:"request_id,omitempty"`
	Seed      map[string]json.RawMessage `json:"seed"`
}

// startResponse is the POST /emo-buddy/start response format.
type startResponse struct {
	SessionID string `json:"sessionId"`
	Response  string `json:"response"`
}

// continueRequest is the POST /emo-buddy/continue request format.
type continueRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

// continueResponse is the POST /emo-buddy/continue response format.
type continueResponse struct {
	Response       string `json:"response"`
	ShouldContinue bool   `json:"shouldContinue"`
}

// endRequest is the POST /emo-buddy/end request format.
type endRequest struct {
	SessionID string `json:"sessionId"`
}

// endResponse is the POST /emo-buddy/end response format.
type endResponse struct {
	OK bool `json:"ok"`
}

// NewClient creates a new companion chat client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("emobuddy: base URL is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Client{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
	}, nil
}

// Availability probes whether the companion service can accept a new
// session.
func (c *Client) Availability(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+availabilityEndpoint, http.NoBody)
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return false, classifyTransportErr(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusServiceUnavailable {
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var parsed availabilityResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return false, fmt.Errorf("decode response: %w", err)
	}
	return parsed.Available, nil
}

// Start opens a session seeded by a completed analysis.
func (c *Client) Start(ctx context.Context, seed domain.AnalysisAggregate) (driven.StartResult, error) {
	payload := startRequest{
		RequestID: seed.RequestID,
		Seed:      make(map[string]json.RawMessage),
	}
	for name, result := range seed.Results {
		if result.Succeeded() {
			payload.Seed[name] = result.Payload
		}
	}

	body, err := c.post(ctx, startEndpoint, payload)
	if err != nil {
		return driven.StartResult{}, err
	}

	var parsed startResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return driven.StartResult{}, fmt.Errorf("decode response: %w", err)
	}
	if parsed.SessionID == "" {
		return driven.StartResult{}, fmt.Errorf("start: no session ID returned")
	}
	return driven.StartResult{
		SessionID: parsed.SessionID,
		Response:  parsed.Response,
	}, nil
}

// Continue sends one user message and returns the assistant's reply.
func (c *Client) Continue(ctx context.Context, sessionID, message string) (driven.ContinueResult, error) {
	body, err := c.post(ctx, continueEndpoint, continueRequest{
		SessionID: sessionID,
		Message:   message,
	})
	if err != nil {
		return driven.ContinueResult{}, err
	}

	var parsed continueResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return driven.ContinueResult{}, fmt.Errorf("decode response: %w", err)
	}
	return driven.ContinueResult{
		Response:       parsed.Response,
		ShouldContinue: parsed.ShouldContinue,
	}, nil
}

// End closes the session on the server.
func (c *Client) End(ctx context.Context, sessionID string) error {
	body, err := c.post(ctx, endEndpoint, endRequest{SessionID: sessionID})
	if err != nil {
		return err
	}

	var parsed endResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if !parsed.OK {
		return fmt.Errorf("end: server declined to close session")
	}
	return nil
}

// post sends a JSON request and classifies failures into the domain
// taxonomy. A 404 means the server no longer recognises the session.
func (c *Client) post(ctx context.Context, endpoint string, payload any) (json.RawMessage, error) {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, classifyTransportErr(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return json.RawMessage(body), nil
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: status 404", domain.ErrSessionNotFound)
	case http.StatusServiceUnavailable:
		return nil, fmt.Errorf("%w: status 503", domain.ErrServiceUnavailable)
	default:
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}
}

// classifyTransportErr maps a transport failure onto the domain taxonomy.
func classifyTransportErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domain.ErrTimeout, err)
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", domain.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", domain.ErrNetworkFailure, err)
}
