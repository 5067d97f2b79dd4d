package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAIProvider_IsValid(t *testing.T) {
	for _, p := range []AIProvider{
		AIProviderCohere, AIProviderGemini, AIProviderOpenAI, AIProviderAnthropic, AIProviderOllama,
	} {
		assert.True(t, p.IsValid(), p)
		assert.NotEqual(t, unknownDescription, p.Description())
	}
	assert.False(t, AIProvider("voyage").IsValid())
	assert.Equal(t, unknownDescription, AIProvider("voyage").Description())
}

func TestAIProvider_RequiresAPIKey(t *testing.T) {
	assert.True(t, AIProviderCohere.RequiresAPIKey())
	assert.True(t, AIProviderGemini.RequiresAPIKey())
	assert.False(t, AIProviderOllama.RequiresAPIKey())
	assert.True(t, AIProviderOllama.IsLocal())
}

func TestAIProvider_APIKeyEnv(t *testing.T) {
	assert.Equal(t, "COHERE_API_KEY", AIProviderCohere.APIKeyEnv())
	assert.Equal(t, "GOOGLE_API_KEY", AIProviderGemini.APIKeyEnv())
	assert.Equal(t, "", AIProviderOllama.APIKeyEnv())
}

func TestEmbeddingSettings_IsConfigured(t *testing.T) {
	tests := []struct {
		name     string
		settings EmbeddingSettings
		want     bool
	}{
		{"cohere with key", EmbeddingSettings{Provider: AIProviderCohere, APIKey: "k"}, true},
		{"cohere without key", EmbeddingSettings{Provider: AIProviderCohere}, false},
		{"no provider", EmbeddingSettings{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.settings.IsConfigured())
		})
	}
}

func TestGenerationSettings_IsConfigured(t *testing.T) {
	tests := []struct {
		name     string
		settings GenerationSettings
		want     bool
	}{
		{"gemini with key", GenerationSettings{Provider: AIProviderGemini, APIKey: "k"}, true},
		{"gemini without key", GenerationSettings{Provider: AIProviderGemini}, false},
		{"ollama without key", GenerationSettings{Provider: AIProviderOllama}, true},
		{"cohere cannot generate", GenerationSettings{Provider: AIProviderCohere, APIKey: "k"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.settings.IsConfigured())
		})
	}
}

func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()

	assert.Equal(t, AIProviderCohere, s.Embedding.Provider)
	assert.Equal(t, "embed-v4.0", s.Embedding.Model)
	assert.Equal(t, AIProviderGemini, s.Generation.Provider)
	assert.Equal(t, "gemini-2.5-flash", s.Generation.Model)
	assert.False(t, s.Embedding.IsConfigured())
	assert.False(t, s.Generation.IsConfigured())
	assert.Equal(t, CacheBackendMemory, s.Cache.Backend)
	assert.Equal(t, DefaultCacheTTL, s.Cache.TTL)
	assert.Equal(t, 300, s.Ingest.DPI)
	assert.Equal(t, 1568*1568, s.Ingest.MaxPixels)
	assert.Equal(t, DefaultMaxConcurrency, s.Workers.MaxConcurrency)
}

func TestCacheBackend_IsValid(t *testing.T) {
	assert.True(t, CacheBackendRedis.IsValid())
	assert.True(t, CacheBackendNone.IsValid())
	assert.False(t, CacheBackend("memcached").IsValid())
}
