// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	cohereembed "github.com/custodia-labs/pagelens/internal/adapters/driven/embedding/cohere"
	anthropicllm "github.com/custodia-labs/pagelens/internal/adapters/driven/llm/anthropic"
	geminillm "github.com/custodia-labs/pagelens/internal/adapters/driven/llm/gemini"
	ollamallm "github.com/custodia-labs/pagelens/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/pagelens/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/pagelens/internal/core/domain"
	"github.com/custodia-labs/pagelens/internal/core/ports/driven"
	"github.com/custodia-labs/pagelens/internal/logger"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// InitResult contains the result of AI service initialisation.
type InitResult struct {
	EmbeddingService  driven.EmbeddingService
	GenerationService driven.GenerationService

	// Availability records which providers are live. Cache is left for the caller.
	Availability domain.ProviderAvailability
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
	if r.GenerationService != nil {
		r.GenerationService.Close()
	}
}

// Initialise creates and validates both providers. It never fails: a provider
// that is missing credentials or unreachable is left nil, its problem is
// recorded as a warning, and the pipeline runs that stage in demo mode.
// When limiter is non-nil both services share it.
func Initialise(ctx context.Context, settings domain.AppSettings, limiter *RateLimiter) *InitResult {
	logger.Section("AI providers")
	result := &InitResult{}

	embedder, err := CreateAndValidateEmbeddingService(ctx, &settings.Embedding)
	result.Availability.EmbeddingStatus = providerStatus(embedder != nil, err)
	if err != nil {
		result.Availability.Warnings = append(result.Availability.Warnings, err.Error())
		logger.Warn("%v", err)
	} else if embedder != nil {
		result.EmbeddingService = WithEmbeddingRateLimit(embedder, limiter)
		result.Availability.Embedding = true
		result.Availability.EmbeddingModel = embedder.DisplayName()
		logger.Info("embedding provider ready: %s", embedder.DisplayName())
	}

	generator, err := CreateAndValidateGenerationService(ctx, &settings.Generation)
	result.Availability.GenerationStatus = providerStatus(generator != nil, err)
	if err != nil {
		result.Availability.Warnings = append(result.Availability.Warnings, err.Error())
		logger.Warn("%v", err)
	} else if generator != nil {
		result.GenerationService = WithGenerationRateLimit(generator, limiter)
		result.Availability.Generation = true
		result.Availability.GenerationModel = generator.DisplayName()
		logger.Info("generation provider ready: %s", generator.DisplayName())
	}

	if result.Availability.DemoMode() {
		logger.Warn("running in demo mode without API keys")
	}
	return result
}

// providerStatus classifies the outcome of a create-and-validate call.
func providerStatus(live bool, err error) domain.ProviderStatus {
	switch {
	case errors.Is(err, domain.ErrProviderUnreachable):
		return domain.ProviderUnreachable
	case live && err == nil:
		return domain.ProviderReady
	default:
		return domain.ProviderUnconfigured
	}
}

// missingKey reports a provider selected without its API key.
func missingKey(provider domain.AIProvider) error {
	return &domain.ConfigurationError{
		Provider: provider.String(),
		Reason:   fmt.Sprintf("no API key found (set %s)", provider.APIKeyEnv()),
	}
}

// CreateAndValidateEmbeddingService creates an embedding service and validates connectivity.
// Returns nil, nil when no provider is selected.
func CreateAndValidateEmbeddingService(
	ctx context.Context,
	settings *domain.EmbeddingSettings,
) (driven.EmbeddingService, error) {
	if settings == nil || settings.Provider == "" {
		return nil, nil
	}
	if !settings.IsConfigured() {
		if settings.Provider.IsValid() && settings.Provider.RequiresAPIKey() && settings.APIKey == "" {
			return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, missingKey(settings.Provider))
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, &domain.ConfigurationError{
			Provider: settings.Provider.String(),
			Reason:   "unsupported embedding provider",
		})
	}

	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'pagelens settings set embedding.provider' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: %w (%w)", domain.ErrEmbeddingUnavailable, domain.ErrProviderUnreachable,
			&domain.ConfigurationError{Provider: settings.Provider.String(), Reason: err.Error()})
	}

	return svc, nil
}

// CreateAndValidateGenerationService creates a generation service and validates connectivity.
// Returns nil, nil when no provider is selected.
func CreateAndValidateGenerationService(
	ctx context.Context,
	settings *domain.GenerationSettings,
) (driven.GenerationService, error) {
	if settings == nil || settings.Provider == "" {
		return nil, nil
	}
	if !settings.IsConfigured() {
		if settings.Provider.IsValid() && settings.Provider.RequiresAPIKey() && settings.APIKey == "" {
			return nil, fmt.Errorf("%w: %w", domain.ErrGenerationUnavailable, missingKey(settings.Provider))
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrGenerationUnavailable, &domain.ConfigurationError{
			Provider: settings.Provider.String(),
			Reason:   "unsupported generation provider",
		})
	}

	svc, err := CreateGenerationService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'pagelens settings set generation.provider' to fix",
			domain.ErrGenerationUnavailable, err)
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: %w (%w)", domain.ErrGenerationUnavailable, domain.ErrProviderUnreachable,
			&domain.ConfigurationError{Provider: settings.Provider.String(), Reason: err.Error()})
	}

	return svc, nil
}

// ValidateEmbeddingConfig validates an embedding configuration by creating a service and pinging it.
// An unset provider is not an error.
func ValidateEmbeddingConfig(settings *domain.EmbeddingSettings) error {
	svc, err := CreateAndValidateEmbeddingService(context.Background(), settings)
	if svc != nil {
		svc.Close()
	}
	return err
}

// ValidateGenerationConfig validates a generation configuration by creating a service and pinging it.
// An unset provider is not an error.
func ValidateGenerationConfig(settings *domain.GenerationSettings) error {
	svc, err := CreateAndValidateGenerationService(context.Background(), settings)
	if svc != nil {
		svc.Close()
	}
	return err
}

// errNoImageEmbeddings is returned for providers that only embed text.
var errNoImageEmbeddings = errors.New("provider cannot embed images")

// CreateEmbeddingService creates the appropriate embedding service based on settings.
// Returns nil if the provider is not configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderCohere:
		return cohereembed.NewEmbeddingService(cohereembed.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderGemini, domain.AIProviderOpenAI, domain.AIProviderAnthropic, domain.AIProviderOllama:
		return nil, fmt.Errorf("%s: %w, use cohere", settings.Provider, errNoImageEmbeddings)

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateGenerationService creates the appropriate generation service based on settings.
// Returns nil if the provider is not configured.
func CreateGenerationService(settings *domain.GenerationSettings) (driven.GenerationService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderGemini:
		return geminillm.NewGenerationService(geminillm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderOpenAI:
		return openaillm.NewGenerationService(openaillm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderAnthropic:
		return anthropicllm.NewGenerationService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderOllama:
		return ollamallm.NewGenerationService(ollamallm.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	default:
		return nil, fmt.Errorf("unsupported generation provider: %s", settings.Provider)
	}
}
