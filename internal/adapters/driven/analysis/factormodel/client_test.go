package factormodel

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindline-labs/mindline-cli/internal/core/domain"
)

func testRequest() domain.AnalysisRequest {
	return domain.AnalysisRequest{
		ID: "req-1",
		Factors: domain.EmployeeFactors{
			Designation:        3,
			ResourceAllocation: 7,
			MentalFatigueScore: 6,
			CompanyType:        domain.CompanyTypeService,
			WFH:                "Yes",
			Gender:             "Male",
		},
		SurveyAnswers: []int{3, 3, 3},
	}
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	_, err := NewClient(Config{})
	assert.Error(t, err)
}

func TestClient_Analyze_Success(t *testing.T) {
	var gotPath, gotKey string
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-API-Key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"score":0.71,"label":"at risk","confidence":0.9,"timestamp":"2025-06-01T12:00:00Z"}`))
	}))
	defer server.Close()

	client, err := NewClient(Config{BaseURL: server.URL, APIKey: "secret"})
	require.NoError(t, err)

	payload, err := client.Analyze(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Equal(t, "/analyze-employee", gotPath)
	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, float64(3), gotBody["designation"])
	assert.Equal(t, float64(7), gotBody["resource_allocation"])
	assert.Equal(t, "Service", gotBody["company_type"])
	assert.Equal(t, "Yes", gotBody["wfh_setup_available"])

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(payload, &parsed))
	assert.Equal(t, "at risk", parsed["label"])
}

func TestClient_Analyze_ServiceUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client, err := NewClient(Config{BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.Analyze(context.Background(), testRequest())
	assert.ErrorIs(t, err, domain.ErrServiceUnavailable)
}

func TestClient_Analyze_BadRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad designation", http.StatusBadRequest)
	}))
	defer server.Close()

	client, err := NewClient(Config{BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.Analyze(context.Background(), testRequest())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestClient_Analyze_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(100 * time.Millisecond)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client, err := NewClient(Config{BaseURL: server.URL, Timeout: 10 * time.Millisecond})
	require.NoError(t, err)

	_, err = client.Analyze(context.Background(), testRequest())
	assert.ErrorIs(t, err, domain.ErrTimeout)
}

func TestClient_Analyze_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	server.Close() // refuse all connections

	client, err := NewClient(Config{BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.Analyze(context.Background(), testRequest())
	assert.ErrorIs(t, err, domain.ErrNetworkFailure)
}

func TestClient_Analyze_InvalidJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	client, err := NewClient(Config{BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.Analyze(context.Background(), testRequest())
	assert.Error(t, err)
}
