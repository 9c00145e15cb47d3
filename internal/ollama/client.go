// internal/ollama/client.go
// Package ollama issues generate requests against an Ollama-compatible HTTP
// endpoint and reports end-to-end latency for each response.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/mwiater/krino/internal/appconfig"
	"github.com/mwiater/krino/internal/logging"
)

const (
	// maxTimeoutRetries is the number of additional attempts after a timed-out request.
	maxTimeoutRetries = 2
	// initialBackoff is the wait before the first retry; it doubles per attempt.
	initialBackoff = 1 * time.Second
)

// Client talks to a single Ollama-compatible endpoint.
type Client struct {
	client  *http.Client
	baseURL string
	timeout time.Duration
}

// New constructs a Client configured with the application's request timeout.
func New(cfg *appconfig.Config) *Client {
	timeout := cfg.RequestTimeout()
	return &Client{
		client: &http.Client{
			Timeout:   timeout,
			Transport: &http.Transport{ForceAttemptHTTP2: false},
		},
		baseURL: cfg.Endpoint(),
		timeout: timeout,
	}
}

// GenerateResult holds the generated text and the measured wall-clock latency.
type GenerateResult struct {
	OutputText string
	LatencyMs  int
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	System  string          `json:"system"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
}

type generateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Generate sends one non-streaming generate request. Timeouts are retried up
// to maxTimeoutRetries with doubling backoff; any other transport or status
// failure returns immediately. Latency is measured around the full HTTP
// exchange, not taken from server-reported timings.
func (c *Client) Generate(ctx context.Context, model, prompt, system string, temperature float64) (GenerateResult, error) {
	payload := generateRequest{
		Model:   model,
		Prompt:  prompt,
		System:  system,
		Stream:  false,
		Options: generateOptions{Temperature: temperature},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return GenerateResult{}, err
	}

	backoff := initialBackoff
	for attempt := 0; ; attempt++ {
		result, err := c.generateOnce(ctx, model, body)
		if err == nil {
			return result, nil
		}
		if !isTimeout(err) {
			return GenerateResult{}, err
		}
		if attempt >= maxTimeoutRetries {
			return GenerateResult{}, fmt.Errorf("ollama: request timed out after %d attempts: %w", attempt+1, err)
		}
		logging.LogEvent("request to %s timed out, retrying in %s (attempt %d/%d)", model, backoff, attempt+1, maxTimeoutRetries)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return GenerateResult{}, ctx.Err()
		}
		backoff *= 2
	}
}

func (c *Client) generateOnce(ctx context.Context, model string, body []byte) (GenerateResult, error) {
	endpoint := c.baseURL + "/api/generate"
	logging.LogRequest("KRINO->LLM", endpoint, model, body)

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return GenerateResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return GenerateResult{}, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	elapsed := time.Since(start)
	if err != nil {
		return GenerateResult{}, err
	}
	logging.LogRequest("LLM->KRINO", endpoint, model, respBody)

	if resp.StatusCode != http.StatusOK {
		return GenerateResult{}, fmt.Errorf("ollama: /api/generate returned %s: %s", resp.Status, strings.TrimSpace(string(respBody)))
	}

	var result generateResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return GenerateResult{}, fmt.Errorf("ollama: invalid generate response: %w", err)
	}

	return GenerateResult{
		OutputText: result.Response,
		LatencyMs:  int(elapsed.Milliseconds()),
	}, nil
}

// isTimeout reports whether an error came from a request deadline rather than
// a transport or status failure.
func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "context deadline exceeded")
}
