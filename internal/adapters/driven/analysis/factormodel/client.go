// Package factormodel provides the employee factor-model scorer source
// adapter for the Mindline backend.
package factormodel

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

	endpoint = "/analyze-employee"
)

// Config holds configuration for the factor-model scorer client.
type Config struct {
	// BaseURL is the API base URL (required).
	BaseURL string

	// APIKey is the optional API key sent as X-API-Key.
	APIKey string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// Client calls the backend factor-model scorer.
type Client struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// analyzeRequest is the /analyze-employee request format.
type analyzeRequest struct {
	Designation        int     `json:"designation"`
	ResourceAllocation int     `json:"resource_allocation"`
	MentalFatigueScore float64 `json:"mental_fatigue_score"`
	CompanyType        string  `json:"company_type"`
	WFHSetupAvailable  string  `json:"wfh_setup_available"`
	Gender             string  `json:"gender"`
	ExternalID         string  `json:"external_id,omitempty"`
}

// NewClient creates a new factor-model scorer client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("factormodel: base URL is required")
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
	return domain.SourceFactorModel
}

// Analyze submits the employee factors and returns the raw score payload
// ({score, label, confidence, timestamp}).
func (c *Client) Analyze(ctx context.Context, req domain.AnalysisRequest) (json.RawMessage, error) {
	body := analyzeRequest{
		Designation:        req.Factors.Designation,
		ResourceAllocation: req.Factors.ResourceAllocation,
		MentalFatigueScore: req.Factors.MentalFatigueScore,
		CompanyType:        req.Factors.CompanyType,
		WFHSetupAvailable:  req.Factors.WFH,
		Gender:             req.Factors.Gender,
		ExternalID:         req.ExternalID,
	}
	return postJSON(ctx, c.client, c.baseURL+endpoint, c.apiKey, body)
}

// postJSON sends a JSON request and classifies transport and status
// failures into the domain error taxonomy.
func postJSON(ctx context.Context, client *http.Client, url, apiKey string, payload any) (json.RawMessage, error) {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, classifyTransportErr(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusServiceUnavailable:
		return nil, fmt.Errorf("%w: status 503", domain.ErrServiceUnavailable)
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrInvalidInput, resp.StatusCode, string(body))
	default:
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("decode response: body is not valid JSON")
	}
	return json.RawMessage(body), nil
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
