package retry

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"testing"

	"adpilot/internal/llm/provider"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantKind      Kind
		wantRetryable bool
	}{
		{
			name:          "429 is rate limited",
			err:           &provider.APIError{Status: 429, Message: "rate limit reached"},
			wantKind:      KindRateLimited,
			wantRetryable: true,
		},
		{
			name:          "401 is auth failure",
			err:           &provider.APIError{Status: 401, Code: "invalid_api_key"},
			wantKind:      KindAuthenticationFailure,
			wantRetryable: false,
		},
		{
			name:          "403 is auth failure",
			err:           &provider.APIError{Status: 403},
			wantKind:      KindAuthenticationFailure,
			wantRetryable: false,
		},
		{
			name:          "400 is invalid request",
			err:           &provider.APIError{Status: 400},
			wantKind:      KindInvalidRequest,
			wantRetryable: false,
		},
		{
			name:          "422 is invalid request",
			err:           &provider.APIError{Status: 422},
			wantKind:      KindInvalidRequest,
			wantRetryable: false,
		},
		{
			name:          "408 is timeout",
			err:           &provider.APIError{Status: 408},
			wantKind:      KindTimeout,
			wantRetryable: true,
		},
		{
			name:          "500 is transient connection failure",
			err:           &provider.APIError{Status: 500},
			wantKind:      KindConnectionFailure,
			wantRetryable: true,
		},
		{
			name:          "wrapped API error still classifies",
			err:           fmt.Errorf("calling upstream: %w", &provider.APIError{Status: 429}),
			wantKind:      KindRateLimited,
			wantRetryable: true,
		},
		{
			name:          "validation error",
			err:           &provider.ValidationError{Reason: "no choices"},
			wantKind:      KindResponseValidation,
			wantRetryable: true,
		},
		{
			name:          "deadline exceeded is timeout",
			err:           context.DeadlineExceeded,
			wantKind:      KindTimeout,
			wantRetryable: true,
		},
		{
			name:          "url error is connection failure",
			err:           &url.Error{Op: "Post", URL: "https://api", Err: errors.New("connection refused")},
			wantKind:      KindConnectionFailure,
			wantRetryable: true,
		},
		{
			name:          "url timeout is timeout",
			err:           &url.Error{Op: "Post", URL: "https://api", Err: os.ErrDeadlineExceeded},
			wantKind:      KindTimeout,
			wantRetryable: true,
		},
		{
			name:          "canceled is its own kind",
			err:           context.Canceled,
			wantKind:      KindCanceled,
			wantRetryable: false,
		},
		{
			name:          "arbitrary error is unknown",
			err:           errors.New("something odd"),
			wantKind:      KindUnknown,
			wantRetryable: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			if got.Kind != tt.wantKind {
				t.Errorf("Kind = %s, want %s", got.Kind, tt.wantKind)
			}
			if got.Retryable != tt.wantRetryable {
				t.Errorf("Retryable = %v, want %v", got.Retryable, tt.wantRetryable)
			}
			if got.Title == "" || got.Message == "" || got.Icon == "" {
				t.Errorf("presentation triple incomplete: %+v", got)
			}
		})
	}
}

func TestClassifiedError_Unwrap(t *testing.T) {
	cause := &provider.APIError{Status: 401}
	err := &ClassifiedError{Classification: Classify(cause), Err: cause}

	var apiErr *provider.APIError
	if !errors.As(err, &apiErr) {
		t.Error("ClassifiedError does not unwrap to the cause")
	}
	if err.Classification.Kind != KindAuthenticationFailure {
		t.Errorf("Kind = %s, want authentication_failure", err.Classification.Kind)
	}
}
