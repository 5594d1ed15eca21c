// Package provider implements the upstream LLM client.
//
// This package contains:
//   - Client: OpenAI-compatible chat-completions client over HTTP
//   - APIError / ValidationError: structured error surface for the
//     failure classifier
//   - Monitor: latency and throttle tracking for the admin surface
package provider

import (
	"context"
	"fmt"
)

// APIError is a non-2xx response from the upstream API. Status codes are
// the structured category the classifier maps from.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("upstream API error (status %d, code %s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("upstream API error (status %d): %s", e.Status, e.Message)
}

// ValidationError reports a 2xx response whose body does not conform to
// the expected shape (unparseable JSON, no choices, empty content).
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid upstream response: " + e.Reason
}

// ChatRequest is a single chat-completion call.
type ChatRequest struct {
	Model       string
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// ChatResponse is the rendered result of a chat-completion call.
type ChatResponse struct {
	Content    string
	Model      string
	TokensUsed int
}

// ChatFunc is the operation shape the facade injects a credential into.
type ChatFunc func(ctx context.Context, apiKey string, req ChatRequest) (*ChatResponse, error)
