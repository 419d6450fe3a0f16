// Package surveyscore provides the survey heuristic scorer source
// adapter for the Mindline backend.
package surveyscore

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
var _ driven.AnalysisSource = (*Client)(nil)

// Default configuration values.
const (
	DefaultTimeout = 30 * time.Second

	endpoint = "/analyze-survey-questions"
)

// Config holds configuration for the survey scorer client.
type Config struct {
	// BaseURL is the API base URL (required).
	BaseURL string

	// APIKey is the optional API key sent as X-API-Key.
	APIKey string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// Client calls the backend survey heuristic scorer.
type Client struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// analyzeRequest is the /analyze-survey-questions request format.
type analyzeRequest struct {
	Answers    []int  `json:"answers"`
	ExternalID string `json:"external_id,omitempty"`
}

// NewClient creates a new survey scorer client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("surveyscore: base URL is required")
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

// Name returns the source's aggregate key.
func (c *Client) Name() string {
	return domain.SourceSurvey
}

// Analyze submits the Likert answers and returns the raw risk payload
// ({riskLevel, method, questionCount, timestamp}).
func (c *Client) Analyze(ctx context.Context, req domain.AnalysisRequest) (json.RawMessage, error) {
	body := analyzeRequest{
		Answers:    req.CloneAnswers(),
		ExternalID: req.ExternalID,
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", domain.ErrTimeout, err)
		}
		var netErr interface{ Timeout() bool }
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, fmt.Errorf("%w: %v", domain.ErrTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrNetworkFailure, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusServiceUnavailable:
		return nil, fmt.Errorf("%w: status 503", domain.ErrServiceUnavailable)
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrInvalidInput, resp.StatusCode, string(respBody))
	default:
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	if !json.Valid(respBody) {
		return nil, fmt.Errorf("decode response: body is not valid JSON")
	}
	return json.RawMessage(respBody), nil
}
