package ai

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pagelens/internal/core/domain"
)

func TestInitResult_Close(t *testing.T) {
	t.Run("close with nil services", func(t *testing.T) {
		result := &InitResult{}
		// Should not panic
		result.Close()
	})
}

// okServer answers every request with 200 so Ping succeeds.
func okServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(server.Close)
	return server
}

func failServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestCreateEmbeddingService(t *testing.T) {
	tests := []struct {
		name        string
		settings    *domain.EmbeddingSettings
		wantNil     bool
		errContains string
	}{
		{"nil settings returns nil", nil, true, ""},
		{"unconfigured settings returns nil", &domain.EmbeddingSettings{}, true, ""},
		{
			name:     "cohere provider creates service",
			settings: &domain.EmbeddingSettings{Provider: domain.AIProviderCohere, APIKey: "test-key"},
		},
		{
			name:        "gemini cannot embed images",
			settings:    &domain.EmbeddingSettings{Provider: domain.AIProviderGemini, APIKey: "test-key"},
			wantNil:     true,
			errContains: "provider cannot embed images",
		},
		{
			name:        "ollama cannot embed images",
			settings:    &domain.EmbeddingSettings{Provider: domain.AIProviderOllama},
			wantNil:     true,
			errContains: "use cohere",
		},
		{
			name:     "unknown provider returns nil (not configured)",
			settings: &domain.EmbeddingSettings{Provider: "unknown", APIKey: "test-key"},
			wantNil:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateEmbeddingService(tt.settings)

			if tt.errContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, svc)
				return
			}
			require.NotNil(t, svc)
			assert.Equal(t, "embed-v4.0", svc.ModelName())
			svc.Close()
		})
	}
}

func TestCreateGenerationService(t *testing.T) {
	tests := []struct {
		name     string
		settings *domain.GenerationSettings
		wantNil  bool
		model    string
	}{
		{"nil settings returns nil", nil, true, ""},
		{"unconfigured settings returns nil", &domain.GenerationSettings{}, true, ""},
		{"cohere cannot generate", &domain.GenerationSettings{Provider: domain.AIProviderCohere, APIKey: "k"}, true, ""},
		{"gemini", &domain.GenerationSettings{Provider: domain.AIProviderGemini, APIKey: "k"}, false, "gemini-2.5-flash"},
		{"openai", &domain.GenerationSettings{Provider: domain.AIProviderOpenAI, APIKey: "k"}, false, "gpt-4o-mini"},
		{"anthropic", &domain.GenerationSettings{Provider: domain.AIProviderAnthropic, APIKey: "k"}, false, "claude-3-5-sonnet-latest"},
		{"ollama", &domain.GenerationSettings{Provider: domain.AIProviderOllama, Model: "llava:13b"}, false, "llava:13b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateGenerationService(tt.settings)
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, svc)
				return
			}
			require.NotNil(t, svc)
			assert.Equal(t, tt.model, svc.ModelName())
			svc.Close()
		})
	}
}

func TestCreateAndValidateEmbeddingService(t *testing.T) {
	ctx := context.Background()

	t.Run("unset provider", func(t *testing.T) {
		svc, err := CreateAndValidateEmbeddingService(ctx, &domain.EmbeddingSettings{})
		assert.NoError(t, err)
		assert.Nil(t, svc)
	})

	t.Run("missing key is a configuration error", func(t *testing.T) {
		svc, err := CreateAndValidateEmbeddingService(ctx, &domain.EmbeddingSettings{Provider: domain.AIProviderCohere})
		assert.Nil(t, svc)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
		assert.ErrorIs(t, err, domain.ErrConfiguration)
		assert.Contains(t, err.Error(), "COHERE_API_KEY")
	})

	t.Run("reachable", func(t *testing.T) {
		server := okServer(t)
		svc, err := CreateAndValidateEmbeddingService(ctx, &domain.EmbeddingSettings{
			Provider: domain.AIProviderCohere, APIKey: "k", BaseURL: server.URL,
		})
		require.NoError(t, err)
		require.NotNil(t, svc)
		svc.Close()
	})

	t.Run("unreachable", func(t *testing.T) {
		server := failServer(t)
		svc, err := CreateAndValidateEmbeddingService(ctx, &domain.EmbeddingSettings{
			Provider: domain.AIProviderCohere, APIKey: "k", BaseURL: server.URL,
		})
		assert.Nil(t, svc)
		assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
		assert.ErrorIs(t, err, domain.ErrConfiguration)
		assert.ErrorIs(t, err, domain.ErrProviderUnreachable)
		assert.Contains(t, err.Error(), "service unreachable")
	})
}

func TestCreateAndValidateGenerationService(t *testing.T) {
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		_, err := CreateAndValidateGenerationService(ctx, &domain.GenerationSettings{Provider: domain.AIProviderGemini})
		assert.ErrorIs(t, err, domain.ErrGenerationUnavailable)
		assert.Contains(t, err.Error(), "GOOGLE_API_KEY")
	})

	t.Run("cohere is not a generation provider", func(t *testing.T) {
		_, err := CreateAndValidateGenerationService(ctx, &domain.GenerationSettings{
			Provider: domain.AIProviderCohere, APIKey: "k",
		})
		assert.ErrorIs(t, err, domain.ErrConfiguration)
		assert.Contains(t, err.Error(), "unsupported generation provider")
	})

	t.Run("reachable", func(t *testing.T) {
		server := okServer(t)
		svc, err := CreateAndValidateGenerationService(ctx, &domain.GenerationSettings{
			Provider: domain.AIProviderOllama, BaseURL: server.URL,
		})
		require.NoError(t, err)
		require.NotNil(t, svc)
		assert.Equal(t, "Ollama llava", svc.DisplayName())
	})
}

func TestInitialise(t *testing.T) {
	t.Run("both live", func(t *testing.T) {
		server := okServer(t)
		settings := domain.DefaultAppSettings()
		settings.Embedding.APIKey = "k"
		settings.Embedding.BaseURL = server.URL
		settings.Generation.APIKey = "k"
		settings.Generation.BaseURL = server.URL

		result := Initialise(context.Background(), settings, NewRateLimiter(100))
		defer result.Close()

		assert.True(t, result.Availability.Embedding)
		assert.True(t, result.Availability.Generation)
		assert.False(t, result.Availability.DemoMode())
		assert.Equal(t, "Cohere Embed-4", result.Availability.EmbeddingModelName())
		assert.Equal(t, "Gemini 2.5 Flash", result.Availability.GenerationModelName())
		assert.Empty(t, result.Availability.Warnings)
		assert.Equal(t, domain.ProviderReady, result.Availability.EmbeddingStatus)
		assert.Equal(t, domain.ProviderReady, result.Availability.GenerationStatus)
		assert.IsType(t, &rateLimitedEmbedder{}, result.EmbeddingService)
		assert.IsType(t, &rateLimitedGenerator{}, result.GenerationService)
	})

	t.Run("no keys falls back to demo mode", func(t *testing.T) {
		result := Initialise(context.Background(), domain.DefaultAppSettings(), nil)

		assert.Nil(t, result.EmbeddingService)
		assert.Nil(t, result.GenerationService)
		assert.True(t, result.Availability.DemoMode())
		assert.Equal(t, domain.DemoModelName, result.Availability.EmbeddingModelName())
		assert.Equal(t, domain.ProviderUnconfigured, result.Availability.EmbeddingStatus)
		assert.Equal(t, domain.ProviderUnconfigured, result.Availability.GenerationStatus)
		require.Len(t, result.Availability.Warnings, 2)
		assert.Contains(t, result.Availability.Warnings[0], "COHERE_API_KEY")
		assert.Contains(t, result.Availability.Warnings[1], "GOOGLE_API_KEY")
	})

	t.Run("one provider unreachable", func(t *testing.T) {
		ok := okServer(t)
		bad := failServer(t)
		settings := domain.DefaultAppSettings()
		settings.Embedding.APIKey = "k"
		settings.Embedding.BaseURL = ok.URL
		settings.Generation.APIKey = "k"
		settings.Generation.BaseURL = bad.URL

		result := Initialise(context.Background(), settings, nil)
		defer result.Close()

		assert.True(t, result.Availability.Embedding)
		assert.False(t, result.Availability.Generation)
		assert.True(t, result.Availability.DemoMode())
		require.Len(t, result.Availability.Warnings, 1)
		assert.Contains(t, result.Availability.Warnings[0], "service unreachable")
		assert.Equal(t, domain.ProviderReady, result.Availability.EmbeddingStatus)
		assert.Equal(t, domain.ProviderUnreachable, result.Availability.GenerationStatus,
			"configured but failing provider is reported as unreachable, not unconfigured")
	})
}

func TestProviderStatus(t *testing.T) {
	unreachable := fmt.Errorf("%w: %w", domain.ErrGenerationUnavailable, domain.ErrProviderUnreachable)
	assert.Equal(t, domain.ProviderReady, providerStatus(true, nil))
	assert.Equal(t, domain.ProviderUnconfigured, providerStatus(false, nil))
	assert.Equal(t, domain.ProviderUnconfigured, providerStatus(false, domain.ErrConfiguration))
	assert.Equal(t, domain.ProviderUnreachable, providerStatus(false, unreachable))
}
