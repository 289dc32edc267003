package facematch

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/nhisverify/nhisverify/internal/platform/httperr"
)

// HTTPScorer calls an external similarity service. The service accepts a
// reference photo URL plus a base64-encoded sample and responds with a match
// flag and confidence score.
type HTTPScorer struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPScorer creates an HTTPScorer against the given service base URL.
func NewHTTPScorer(baseURL, apiKey string, timeout time.Duration) *HTTPScorer {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPScorer{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type compareRequest struct {
	ReferenceURL string `json:"reference_url"`
	SampleB64    string `json:"sample_b64"`
}

func (s *HTTPScorer) Compare(ctx context.Context, referenceURL string, sample []byte) (Result, error) {
	body, err := json.Marshal(compareRequest{
		ReferenceURL: referenceURL,
		SampleB64:    base64.StdEncoding.EncodeToString(sample),
	})
	if err != nil {
		return Result{}, fmt.Errorf("marshal compare request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/compare", bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("build compare request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("similarity service: %w: %v", httperr.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("similarity service returned %d: %w", resp.StatusCode, httperr.ErrUpstream)
	}

	var out Result
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Result{}, fmt.Errorf("decode similarity response: %w: %v", httperr.ErrUpstream, err)
	}
	if out.Confidence < 0 || out.Confidence > 1 {
		return Result{}, fmt.Errorf("similarity confidence %f out of range: %w", out.Confidence, httperr.ErrUpstream)
	}
	return out, nil
}
