// Package e2e drives black-box scenarios against a running lexseal server.
// Point LEXSEAL_E2E_BASE_URL at the instance under test; the default targets
// a local development server.
package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// TestContext carries state across the steps of one scenario: the HTTP
// client, the bearer token and the last response received.
type TestContext struct {
	baseURL string
	client  *http.Client
	token   string

	lastStatus int
	lastBody   map[string]any

	savedRunID string
	savedRoot  string
}

// NewTestContext builds a context for a single scenario.
func NewTestContext() *TestContext {
	base := os.Getenv("LEXSEAL_E2E_BASE_URL")
	if base == "" {
		base = "http://localhost:8080"
	}
	return &TestContext{
		baseURL: base,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Reset clears per-scenario state.
func (tc *TestContext) Reset() {
	tc.token = ""
	tc.lastStatus = 0
	tc.lastBody = nil
	tc.savedRunID = ""
	tc.savedRoot = ""
}

// SetToken sets the bearer token used by subsequent requests.
func (tc *TestContext) SetToken(token string) { tc.token = token }

// POST sends a JSON request and records the response.
func (tc *TestContext) POST(path string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request body: %w", err)
	}
	req, err := http.NewRequest(http.MethodPost, tc.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if tc.token != "" {
		req.Header.Set("Authorization", "Bearer "+tc.token)
	}
	return tc.do(req)
}

// GET sends a request and records the response.
func (tc *TestContext) GET(path string) error {
	req, err := http.NewRequest(http.MethodGet, tc.baseURL+path, nil)
	if err != nil {
		return err
	}
	if tc.token != "" {
		req.Header.Set("Authorization", "Bearer "+tc.token)
	}
	return tc.do(req)
}

func (tc *TestContext) do(req *http.Request) error {
	resp, err := tc.client.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	tc.lastStatus = resp.StatusCode
	tc.lastBody = nil
	if len(raw) > 0 {
		var body map[string]any
		if err := json.Unmarshal(raw, &body); err != nil {
			return fmt.Errorf("decode response body: %w", err)
		}
		tc.lastBody = body
	}
	return nil
}

// LastStatus returns the status code of the most recent response.
func (tc *TestContext) LastStatus() int { return tc.lastStatus }

// GetResponseField reads a field from the most recent JSON response.
func (tc *TestContext) GetResponseField(field string) (any, error) {
	if tc.lastBody == nil {
		return nil, fmt.Errorf("no response recorded")
	}
	value, ok := tc.lastBody[field]
	if !ok {
		return nil, fmt.Errorf("field %q not present in response", field)
	}
	return value, nil
}

// SaveRun remembers the run identity from a notarize response.
func (tc *TestContext) SaveRun(runID, root string) {
	tc.savedRunID = runID
	tc.savedRoot = root
}

// SavedRunID returns the remembered run ID.
func (tc *TestContext) SavedRunID() string { return tc.savedRunID }

// SavedRoot returns the remembered Merkle root.
func (tc *TestContext) SavedRoot() string { return tc.savedRoot }
