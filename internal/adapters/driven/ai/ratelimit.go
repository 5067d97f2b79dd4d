package ai

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/pagelens/internal/core/domain"
	"github.com/custodia-labs/pagelens/internal/core/ports/driven"
	"github.com/custodia-labs/pagelens/internal/logger"
)

// Rate limiting defaults.
const (
	// DefaultBackoff applies when a provider answers 429 without Retry-After.
	DefaultBackoff = 10 * time.Second

	// maxRateLimitRetries bounds how often one embedding call is retried
	// after a 429. Generation calls are never retried.
	maxRateLimitRetries = 2
)

// RateLimiter spaces provider calls with a token bucket and pauses all
// callers after a 429 until the provider's retry window has passed.
type RateLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
	now     func() time.Time
}

// NewRateLimiter creates a limiter allowing requestsPerSecond sustained calls.
// A burst of at least one call is always allowed.
func NewRateLimiter(requestsPerSecond float64) *RateLimiter {
	burst := int(requestsPerSecond)
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
		now:     time.Now,
	}
}

// Wait blocks until a request can be made without exceeding the rate limit.
// It also respects any backoff period set by RecordRateLimitError.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if d := retryAt.Sub(r.now()); d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	return r.limiter.Wait(ctx)
}

// RecordRateLimitError pushes the shared backoff window out by retryAfter.
// A zero or negative value uses DefaultBackoff.
func (r *RateLimiter) RecordRateLimitError(retryAfter time.Duration) {
	if retryAfter <= 0 {
		retryAfter = DefaultBackoff
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if at := r.now().Add(retryAfter); at.After(r.retryAt) {
		r.retryAt = at
	}
}

// Allow checks if a request can be made immediately without blocking.
func (r *RateLimiter) Allow() bool {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if r.now().Before(retryAt) {
		return false
	}
	return r.limiter.Allow()
}

// call runs fn under the limiter, retrying up to retries times after 429
// responses. Every 429 pushes out the shared backoff window, so later
// callers wait even when this one gives up.
func call[T any](ctx context.Context, r *RateLimiter, retries int, fn func() (T, error)) (T, error) {
	var zero T
	for attempt := 0; ; attempt++ {
		if err := r.Wait(ctx); err != nil {
			return zero, err
		}

		result, err := fn()
		var rl *domain.RateLimitError
		if err == nil || !errors.As(err, &rl) {
			return result, err
		}
		r.RecordRateLimitError(rl.RetryAfter)
		if attempt >= retries {
			return result, err
		}

		logger.Warn("%s rate limited, backing off (attempt %d/%d)", rl.Provider, attempt+1, retries)
	}
}

// Ensure the rate limited wrappers implement the interfaces.
var (
	_ driven.EmbeddingService  = (*rateLimitedEmbedder)(nil)
	_ driven.GenerationService = (*rateLimitedGenerator)(nil)
)

type rateLimitedEmbedder struct {
	driven.EmbeddingService
	limiter *RateLimiter
}

// WithEmbeddingRateLimit wraps svc so every Embed call goes through limiter.
func WithEmbeddingRateLimit(svc driven.EmbeddingService, limiter *RateLimiter) driven.EmbeddingService {
	if svc == nil || limiter == nil {
		return svc
	}
	return &rateLimitedEmbedder{EmbeddingService: svc, limiter: limiter}
}

func (e *rateLimitedEmbedder) Embed(
	ctx context.Context,
	mode driven.EmbedMode,
	items []driven.ContentItem,
) ([][]float32, error) {
	return call(ctx, e.limiter, maxRateLimitRetries, func() ([][]float32, error) {
		return e.EmbeddingService.Embed(ctx, mode, items)
	})
}

type rateLimitedGenerator struct {
	driven.GenerationService
	limiter *RateLimiter
}

// WithGenerationRateLimit wraps svc so every Generate call goes through
// limiter. Each Generate makes exactly one provider call; a 429 is returned
// to the caller.
func WithGenerationRateLimit(svc driven.GenerationService, limiter *RateLimiter) driven.GenerationService {
	if svc == nil || limiter == nil {
		return svc
	}
	return &rateLimitedGenerator{GenerationService: svc, limiter: limiter}
}

func (g *rateLimitedGenerator) Generate(
	ctx context.Context,
	prompt string,
	images []driven.Image,
	opts driven.GenerateOptions,
) (string, error) {
	return call(ctx, g.limiter, 0, func() (string, error) {
		return g.GenerationService.Generate(ctx, prompt, images, opts)
	})
}
