// Package llm is the resilient call facade in front of the upstream LLM
// provider. It composes the result cache, the API key rotator and the
// retry orchestrator so call sites get one Invoke entry point.
package llm

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"adpilot/internal/core/domain"
	"adpilot/internal/infra/metrics"
	"adpilot/internal/infra/storage"
	"adpilot/internal/llm/budget"
	"adpilot/internal/llm/cache"
	"adpilot/internal/llm/keys"
	"adpilot/internal/llm/provider"
	"adpilot/internal/llm/retry"
)

var (
	// ErrNoCredentials is returned when every configured API key is
	// disabled or the pool is empty. It is never retried: retrying
	// cannot manufacture a credential.
	ErrNoCredentials = errors.New("no API keys available")

	// ErrDailyLimit is returned when the configured daily call cap is
	// reached.
	ErrDailyLimit = errors.New("daily LLM call limit reached")
)

// Request describes one named LLM operation.
type Request struct {
	// Operation names the call site (e.g. "CopyGen") and addresses the
	// cache together with Params.
	Operation string
	// Params are the operation inputs that determine the result.
	Params map[string]string
	// Feature is the metering label; defaults to Operation.
	Feature string
	// Task selects a model via the configured task map when Model is
	// empty.
	Task  domain.TaskKind
	Model string

	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// Result is a completed invocation.
type Result struct {
	Content string
	Model   string
	Tokens  int
	Cost    float64
	Cached  bool
}

// Config assembles a Client.
type Config struct {
	Chat           provider.ChatFunc
	APIKeys        []string
	MaxKeyFailures int

	CacheEnabled bool
	CacheTTL     time.Duration
	// Coalesce folds concurrent identical cache-missing requests into
	// one upstream call.
	Coalesce bool

	Policy retry.Policy

	DefaultModel string
	Models       map[string]string
	Rates        map[string]float64

	DailyCallLimit int

	// Usage receives one event per invocation; nil disables metering.
	Usage storage.UsageRepository
}

// Client is the composition point used by call sites.
type Client struct {
	chat     provider.ChatFunc
	cache    *cache.Cache
	rotator  *keys.Rotator
	selector *Selector
	budget   *budget.Tracker
	usage    storage.UsageRepository
	policy   retry.Policy
	rates    map[string]float64

	coalesce bool
	group    singleflight.Group
}

// New creates a Client from the configuration.
func New(cfg Config) *Client {
	policy := cfg.Policy
	if policy.MaxAttempts == 0 {
		policy = retry.DefaultPolicy
	}
	return &Client{
		chat:     cfg.Chat,
		cache:    cache.New(cfg.CacheEnabled, cfg.CacheTTL),
		rotator:  keys.New(cfg.APIKeys, cfg.MaxKeyFailures),
		selector: NewSelector(cfg.DefaultModel, cfg.Models),
		budget:   budget.New(cfg.DailyCallLimit),
		usage:    cfg.Usage,
		policy:   policy,
		rates:    cfg.Rates,
		coalesce: cfg.Coalesce,
	}
}

// Cache exposes the result cache for the admin surface.
func (c *Client) Cache() *cache.Cache { return c.cache }

// Rotator exposes the key pool for the admin surface.
func (c *Client) Rotator() *keys.Rotator { return c.rotator }

// Budget exposes the spend tracker for the admin surface.
func (c *Client) Budget() *budget.Tracker { return c.budget }

// Invoke executes a named operation through cache, key rotation and
// retry. On a cache hit it returns immediately without acquiring a
// credential; on a miss it runs the upstream call retry-wrapped with an
// injected key, reports the key outcome, and stores a successful result.
func (c *Client) Invoke(ctx context.Context, req Request) (*Result, error) {
	if req.Feature == "" {
		req.Feature = req.Operation
	}
	if req.Model == "" {
		req.Model = c.selector.ModelFor(req.Task)
	}

	fp := cache.Fingerprint(req.Operation, fingerprintParams(req))

	if content, ok := c.cache.Get(fp); ok {
		metrics.CacheEventsTotal.WithLabelValues("hit").Inc()
		c.budget.RecordCacheHit(req.Feature)
		c.recordUsage(ctx, req, 0, 0, true)
		slog.Debug("LLM cache hit", "operation", req.Operation, "feature", req.Feature)
		return &Result{Content: content, Model: req.Model, Cached: true}, nil
	}
	metrics.CacheEventsTotal.WithLabelValues("miss").Inc()

	if !c.coalesce {
		return c.invokeUpstream(ctx, fp, req)
	}

	// Coalesced path: late arrivals for the same fingerprint await the
	// leader's result instead of issuing their own upstream call.
	v, err, _ := c.group.Do(fp, func() (interface{}, error) {
		return c.invokeUpstream(ctx, fp, req)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Result), nil
}

func (c *Client) invokeUpstream(ctx context.Context, fp string, req Request) (*Result, error) {
	if !c.budget.CanMakeCall() {
		metrics.LLMCallsTotal.WithLabelValues(req.Feature, req.Model, "limited").Inc()
		return nil, ErrDailyLimit
	}

	key, ok := c.rotator.Acquire()
	if !ok {
		metrics.LLMCallsTotal.WithLabelValues(req.Feature, req.Model, "no_credentials").Inc()
		return nil, &retry.ClassifiedError{
			Classification: retry.ClassificationFor(retry.KindCredentialsExhausted),
			Err:            ErrNoCredentials,
		}
	}

	var lastResp *provider.ChatResponse
	content, err := retry.Do(ctx, c.withContext(req), func(ctx context.Context) (string, error) {
		resp, err := c.chat(ctx, key, provider.ChatRequest{
			Model:       req.Model,
			System:      req.System,
			Prompt:      req.Prompt,
			MaxTokens:   req.MaxTokens,
			Temperature: req.Temperature,
		})
		if err != nil {
			return "", err
		}
		lastResp = resp
		return resp.Content, nil
	})

	if err != nil {
		// Caller cancellation is a distinct outcome: the key did
		// nothing wrong, so it is not penalized.
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			metrics.LLMCallsTotal.WithLabelValues(req.Feature, req.Model, "canceled").Inc()
			return nil, err
		}

		c.rotator.ReportFailure(key)
		metrics.LLMCallsTotal.WithLabelValues(req.Feature, req.Model, "failure").Inc()

		var aErr *retry.AttemptsError
		if errors.As(err, &aErr) {
			slog.Warn("LLM call failed",
				"operation", req.Operation,
				"kind", aErr.Classification.Kind.String(),
				"attempts", aErr.Attempts,
				"exhausted", aErr.Exhausted)
			return nil, &retry.ClassifiedError{Classification: aErr.Classification, Err: err}
		}
		return nil, err
	}

	c.rotator.ReportSuccess(key)
	c.cache.Set(fp, content)

	tokens := 0
	model := req.Model
	if lastResp != nil {
		tokens = lastResp.TokensUsed
		if lastResp.Model != "" {
			model = lastResp.Model
		}
	}
	cost := estimateCost(c.rates, model, tokens)

	c.budget.RecordCall(req.Feature, tokens, cost)
	c.recordUsage(ctx, req, tokens, cost, false)
	metrics.LLMCallsTotal.WithLabelValues(req.Feature, model, "success").Inc()
	metrics.TokensTotal.WithLabelValues(model).Add(float64(tokens))
	metrics.CostTotal.WithLabelValues(model).Add(cost)

	return &Result{Content: content, Model: model, Tokens: tokens, Cost: cost}, nil
}

func (c *Client) withContext(req Request) retry.Policy {
	policy := c.policy
	if policy.Context == "" {
		policy.Context = req.Operation
	}
	return policy
}

func (c *Client) recordUsage(ctx context.Context, req Request, tokens int, cost float64, cached bool) {
	if c.usage == nil {
		return
	}
	err := c.usage.Record(ctx, &domain.UsageEvent{
		Feature: req.Feature,
		Model:   req.Model,
		Tokens:  tokens,
		Cost:    cost,
		Cached:  cached,
	})
	if err != nil {
		slog.Warn("Failed to record usage event", "feature", req.Feature, "error", err)
	}
}

// fingerprintParams folds the effective model into the fingerprint so a
// model change never serves a stale cached result.
func fingerprintParams(req Request) map[string]string {
	params := make(map[string]string, len(req.Params)+1)
	for k, v := range req.Params {
		params[k] = v
	}
	params["__model"] = req.Model
	return params
}
