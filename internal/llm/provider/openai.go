package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"adpilot/internal/infra/metrics"
)

// Client speaks the OpenAI-compatible chat-completions API.
type Client struct {
	baseURL    string
	httpClient *http.Client

	Monitor *Monitor
}

// NewClient creates a Client for the given API base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		Monitor: NewMonitor(),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatCompletionResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// Chat executes one chat-completion call with the given API key.
// Transport failures surface as the underlying *url.Error; non-2xx
// statuses surface as *APIError; malformed bodies as *ValidationError.
func (c *Client) Chat(ctx context.Context, apiKey string, creq ChatRequest) (*ChatResponse, error) {
	start := time.Now()

	messages := make([]chatMessage, 0, 2)
	if creq.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: creq.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: creq.Prompt})

	body, err := json.Marshal(chatCompletionRequest{
		Model:       creq.Model,
		Messages:    messages,
		MaxTokens:   creq.MaxTokens,
		Temperature: creq.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	latency := time.Since(start)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusTooManyRequests {
			c.Monitor.RecordThrottle(resp.StatusCode, resp.Header.Get("Retry-After"))
		}
		return nil, apiErrorFromBody(resp.StatusCode, respBody)
	}

	var parsed chatCompletionResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, &ValidationError{Reason: "unparseable body"}
	}
	if len(parsed.Choices) == 0 {
		return nil, &ValidationError{Reason: "no choices returned"}
	}
	content := parsed.Choices[0].Message.Content
	if content == "" {
		return nil, &ValidationError{Reason: "empty completion content"}
	}

	c.Monitor.RecordRequest(latency)
	metrics.CallLatency.WithLabelValues(creq.Model).Observe(latency.Seconds())

	model := parsed.Model
	if model == "" {
		model = creq.Model
	}
	return &ChatResponse{
		Content:    content,
		Model:      model,
		TokensUsed: parsed.Usage.TotalTokens,
	}, nil
}

// apiErrorFromBody extracts the structured error object when present,
// falling back to the raw status.
func apiErrorFromBody(status int, body []byte) *APIError {
	var parsed struct {
		Error struct {
			Message string `json:"message"`
			Code    string `json:"code"`
		} `json:"error"`
	}
	apiErr := &APIError{Status: status, Message: http.StatusText(status)}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		apiErr.Message = parsed.Error.Message
		apiErr.Code = parsed.Error.Code
	}
	return apiErr
}
