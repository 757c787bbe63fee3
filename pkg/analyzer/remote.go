package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxResponseBody caps how much of the detector's reply is read.
const maxResponseBody = 1 << 20

// RemoteAnalyzer posts images to an external crack detection service and
// expects a Result encoded as JSON in return.
type RemoteAnalyzer struct {
	client   *http.Client
	endpoint string
	apiKey   string
	limiter  *ConcurrencyLimiter
}

// NewRemoteAnalyzer creates a client for endpoint. At most maxConcurrent
// requests are in flight; further callers wait for a slot or their context.
func NewRemoteAnalyzer(endpoint, apiKey string, timeout time.Duration, maxConcurrent int) *RemoteAnalyzer {
	return &RemoteAnalyzer{
		client: &http.Client{
			Timeout: timeout,
		},
		endpoint: endpoint,
		apiKey:   apiKey,
		limiter:  NewConcurrencyLimiter(maxConcurrent),
	}
}

// Analyze sends the raw image bytes with their content type.
func (ra *RemoteAnalyzer) Analyze(ctx context.Context, image []byte, contentType string) (*Result, error) {
	if err := ra.limiter.Acquire(ctx); err != nil {
		return nil, fmt.Errorf("failed to acquire analyzer slot: %w", err)
	}
	defer ra.limiter.Release()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ra.endpoint, bytes.NewReader(image))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	if ra.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+ra.apiKey)
	}

	resp, err := ra.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("analyzer returned error: status=%d, body=%s", resp.StatusCode, string(body))
	}

	var result Result
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if err := result.Validate(); err != nil {
		return nil, err
	}

	return &result, nil
}

// ConcurrencyLimiter is an in-process counting semaphore.
type ConcurrencyLimiter struct {
	semaphore chan struct{}
}

// NewConcurrencyLimiter allows maxConcurrent holders; values below 1 mean 1.
func NewConcurrencyLimiter(maxConcurrent int) *ConcurrencyLimiter {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &ConcurrencyLimiter{
		semaphore: make(chan struct{}, maxConcurrent),
	}
}

// Acquire blocks until a slot is free or ctx is done.
func (cl *ConcurrencyLimiter) Acquire(ctx context.Context) error {
	select {
	case cl.semaphore <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees a slot.
func (cl *ConcurrencyLimiter) Release() {
	select {
	case <-cl.semaphore:
	default:
	}
}
