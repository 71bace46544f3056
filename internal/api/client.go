// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the completion client.
type ClientError struct {
	Type    ErrorType
	Status  int // HTTP status code, for ErrTypeHTTP
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeTimeout
	ErrTypeConnection
	ErrTypeHTTP
	ErrTypeInvalidResponse
	ErrTypeThrottled
)

// Sentinel errors for easy checking.
var (
	ErrTimeout     = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrUnreachable = &ClientError{Type: ErrTypeConnection, Message: "completion endpoint is unreachable"}
	ErrThrottled   = &ClientError{Type: ErrTypeThrottled, Message: "too many requests in flight"}
)

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeTimeout
	}
	return errors.Is(err, ErrTimeout)
}

// IsUnreachable checks if an error indicates the endpoint could not be
// reached at all.
func IsUnreachable(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeConnection
	}
	return errors.Is(err, ErrUnreachable)
}

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the completion client.
type ClientConfig struct {
	// Endpoint is the completion URL (default: http://127.0.0.1:8000/generate)
	Endpoint string

	// Timeout bounds each completion request end to end (default: 25s).
	// This is the request deadline, independent of any transport timeout.
	Timeout time.Duration

	// MaxNewTokens caps the generated reply length (default: 200)
	MaxNewTokens int

	// Temperature for sampling (default: 0.7)
	Temperature float64

	// TopP nucleus sampling cutoff (default: 0.9)
	TopP float64

	// SubmitsPerSecond rate-limits outgoing requests (default: 2).
	// A burst of one means rapid repeat submits queue behind the limiter
	// rather than piling onto the endpoint.
	SubmitsPerSecond float64
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		Endpoint:         "http://127.0.0.1:8000/generate",
		Timeout:          25 * time.Second,
		MaxNewTokens:     200,
		Temperature:      0.7,
		TopP:             0.9,
		SubmitsPerSecond: 2,
	}
}

// =============================================================================
// REQUEST / RESPONSE TYPES
// =============================================================================

// completionRequest is the wire format of a completion call.
type completionRequest struct {
	Prompt       string  `json:"prompt"`
	MaxNewTokens int     `json:"max_new_tokens"`
	Temperature  float64 `json:"temperature"`
	TopP         float64 `json:"top_p"`
	DoSample     bool    `json:"do_sample"`
}

// completionResponse is the expected reply shape.
type completionResponse struct {
	Response string `json:"response"`
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the completion endpoint.
//
// The Client is safe for concurrent use. It never retries: a completion is
// interactive, and the user resubmitting is the retry.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a completion client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a completion client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}

	// Fill in defaults for any zero values
	if config.Endpoint == "" {
		config.Endpoint = "http://127.0.0.1:8000/generate"
	}
	if config.Timeout == 0 {
		config.Timeout = 25 * time.Second
	}
	if config.MaxNewTokens == 0 {
		config.MaxNewTokens = 200
	}
	if config.Temperature == 0 {
		config.Temperature = 0.7
	}
	if config.TopP == 0 {
		config.TopP = 0.9
	}
	if config.SubmitsPerSecond == 0 {
		config.SubmitsPerSecond = 2
	}

	return &Client{
		config: config,
		// No transport-level timeout; the per-request deadline governs.
		httpClient: &http.Client{},
		limiter:    rate.NewLimiter(rate.Limit(config.SubmitsPerSecond), 1),
	}
}

// GetConfig returns the client configuration.
func (c *Client) GetConfig() *ClientConfig {
	return c.config
}

// =============================================================================
// COMPLETION
// =============================================================================

// Complete sends a prompt to the completion endpoint and returns the reply
// text. The call blocks until the endpoint answers, the configured deadline
// expires, or ctx is cancelled.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", ErrTimeout
		}
		return "", &ClientError{Type: ErrTypeThrottled, Message: "cancelled while throttled", Cause: err}
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	reqBody := completionRequest{
		Prompt:       prompt,
		MaxNewTokens: c.config.MaxNewTokens,
		Temperature:  c.config.Temperature,
		TopP:         c.config.TopP,
		DoSample:     true,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			return "", ErrTimeout
		}
		return "", &ClientError{Type: ErrTypeConnection, Message: "completion endpoint is unreachable", Cause: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to read response", Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &ClientError{
			Type:    ErrTypeHTTP,
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("completion request failed: HTTP %d", resp.StatusCode),
		}
	}

	return extractReply(raw), nil
}

// extractReply pulls the reply text out of the endpoint's response body.
// The expected shape is {"response": "..."}; anything else falls back to
// the raw JSON pretty-printed, and an unparseable body to a placeholder,
// so the user always sees what came back.
func extractReply(raw []byte) string {
	var parsed completionResponse
	if err := json.Unmarshal(raw, &parsed); err == nil && parsed.Response != "" {
		return parsed.Response
	}

	var generic any
	if err := json.Unmarshal(raw, &generic); err == nil {
		if pretty, err := json.MarshalIndent(generic, "", "  "); err == nil {
			return string(pretty)
		}
	}

	return "No response received"
}
