// Package retry classifies upstream failures and orchestrates retries
// with exponential backoff.
package retry

import (
	"context"
	"errors"
	"net"

	"adpilot/internal/llm/provider"
)

// Kind is the closed set of failure classifications.
type Kind int

const (
	KindRateLimited Kind = iota
	KindConnectionFailure
	KindTimeout
	KindAuthenticationFailure
	KindInvalidRequest
	KindResponseValidation
	KindUnknown

	// Never produced by Classify; the facade returns it directly.
	KindCredentialsExhausted
	// Terminal outcome for caller cancellation, never retried.
	KindCanceled
)

func (k Kind) String() string {
	switch k {
	case KindRateLimited:
		return "rate_limited"
	case KindConnectionFailure:
		return "connection_failure"
	case KindTimeout:
		return "timeout"
	case KindAuthenticationFailure:
		return "authentication_failure"
	case KindInvalidRequest:
		return "invalid_request"
	case KindResponseValidation:
		return "response_validation"
	case KindCredentialsExhausted:
		return "credentials_exhausted"
	case KindCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Classification is the verdict for one failure: whether it is worth
// retrying, plus the presentation triple the caller renders.
type Classification struct {
	Kind      Kind
	Retryable bool
	Icon      string
	Title     string
	Message   string
}

var classifications = map[Kind]Classification{
	KindRateLimited: {
		Kind: KindRateLimited, Retryable: true,
		Icon: "⏳", Title: "API quota limit",
		Message: "The API request limit has been reached, please try again later",
	},
	KindConnectionFailure: {
		Kind: KindConnectionFailure, Retryable: true,
		Icon: "🔌", Title: "Connection problem",
		Message: "Unable to reach the AI service, please check the network connection",
	},
	KindTimeout: {
		Kind: KindTimeout, Retryable: true,
		Icon: "⏱️", Title: "Request timed out",
		Message: "The AI service took too long to respond, please retry",
	},
	KindAuthenticationFailure: {
		Kind: KindAuthenticationFailure, Retryable: false,
		Icon: "🔑", Title: "API key error",
		Message: "The API key is invalid or expired, please check the configuration",
	},
	KindInvalidRequest: {
		Kind: KindInvalidRequest, Retryable: false,
		Icon: "❌", Title: "Invalid request",
		Message: "The request was malformed, please check the input parameters",
	},
	KindResponseValidation: {
		Kind: KindResponseValidation, Retryable: true,
		Icon: "⚠️", Title: "Response validation failed",
		Message: "The AI output did not match the expected format, please retry",
	},
	KindUnknown: {
		Kind: KindUnknown, Retryable: false,
		Icon: "🐛", Title: "Unexpected error",
		Message: "An unknown error occurred, please contact support",
	},
	KindCredentialsExhausted: {
		Kind: KindCredentialsExhausted, Retryable: false,
		Icon: "🔒", Title: "No API keys available",
		Message: "Every configured API key is disabled or missing, please reset the key pool",
	},
	KindCanceled: {
		Kind: KindCanceled, Retryable: false,
		Icon: "🚫", Title: "Request canceled",
		Message: "The request was canceled before completion",
	},
}

// ClassificationFor returns the fixed verdict for a kind.
func ClassificationFor(kind Kind) Classification {
	return classifications[kind]
}

// Classify maps an arbitrary upstream error onto the closed
// classification set. The mapping reads the client's structured status
// information; anything unrecognized falls back to Unknown rather than
// message sniffing.
func Classify(err error) Classification {
	var apiErr *provider.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Status == 429:
			return classifications[KindRateLimited]
		case apiErr.Status == 401 || apiErr.Status == 403:
			return classifications[KindAuthenticationFailure]
		case apiErr.Status == 408:
			return classifications[KindTimeout]
		case apiErr.Status >= 400 && apiErr.Status < 500:
			return classifications[KindInvalidRequest]
		case apiErr.Status >= 500:
			// Upstream fault, transient from our side
			return classifications[KindConnectionFailure]
		default:
			return classifications[KindUnknown]
		}
	}

	var vErr *provider.ValidationError
	if errors.As(err, &vErr) {
		return classifications[KindResponseValidation]
	}

	if errors.Is(err, context.Canceled) {
		return classifications[KindCanceled]
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return classifications[KindTimeout]
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return classifications[KindTimeout]
		}
		return classifications[KindConnectionFailure]
	}

	return classifications[KindUnknown]
}

// ClassifiedError pairs the original error with its classification so
// the presentation layer can render the icon/title/message triple plus
// the raw detail.
type ClassifiedError struct {
	Classification Classification
	Err            error
}

func (e *ClassifiedError) Error() string {
	return e.Classification.Title + ": " + e.Err.Error()
}

func (e *ClassifiedError) Unwrap() error {
	return e.Err
}
