package cli

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pagelens/internal/core/domain"
)

func TestSettingsCmd_Show(t *testing.T) {
	ts := setupTestServices(t)
	ts.settings.settings.Generation.APIKey = "AIzaSyExampleKey1234"

	out, err := execute(t, "settings")
	require.NoError(t, err)

	assert.Contains(t, out, "[Embedding]")
	assert.Contains(t, out, "API Key: (not set, reads COHERE_API_KEY)")
	assert.Contains(t, out, "Status: demo mode")
	assert.Contains(t, out, "API Key: AIza...1234")
	assert.NotContains(t, out, "AIzaSyExampleKey1234")
	assert.Contains(t, out, "[Cache]")
	assert.Contains(t, out, "Address: :8000")
	assert.Contains(t, out, "pagelens settings wizard")
}

func TestSettingsCmd_Set(t *testing.T) {
	ts := setupTestServices(t)

	out, err := execute(t, "settings", "set", "cache.backend", "redis")
	require.NoError(t, err)
	assert.Equal(t, "redis", ts.settings.values["cache.backend"])
	assert.Contains(t, out, "Set cache.backend = redis")

	_, err = execute(t, "settings", "set", "bogus", "x")
	assert.Error(t, err)
}

func TestSettingsCmd_SetReadsSecretFromInput(t *testing.T) {
	ts := setupTestServices(t)
	rootCmd.SetIn(strings.NewReader("co-secret-key-9876\n"))

	out, err := execute(t, "settings", "set", "embedding.api_key")
	require.NoError(t, err)
	assert.Equal(t, "co-secret-key-9876", ts.settings.values["embedding.api_key"])
	assert.Contains(t, out, "Set embedding.api_key = co-s...9876")
}

func TestSettingsCmd_Keys(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "settings", "keys")
	require.NoError(t, err)
	assert.Equal(t, "embedding.provider\ncache.backend\n", out)
}

func TestSettingsCmd_Wizard(t *testing.T) {
	ts := setupTestServices(t)
	rootCmd.SetIn(strings.NewReader("1\n\nco-key-123456789\n4\nllava:13b\n"))

	out, err := execute(t, "settings", "wizard")
	require.NoError(t, err)

	assert.Equal(t, domain.AIProviderCohere, ts.settings.settings.Embedding.Provider)
	assert.Equal(t, "embed-v4.0", ts.settings.settings.Embedding.Model)
	assert.Equal(t, "co-key-123456789", ts.settings.settings.Embedding.APIKey)
	assert.Equal(t, domain.AIProviderOllama, ts.settings.settings.Generation.Provider)
	assert.Equal(t, "llava:13b", ts.settings.settings.Generation.Model)
	assert.Contains(t, out, "Configuration Complete!")
}

func TestSettingsCmd_GenerationValidationFails(t *testing.T) {
	ts := setupTestServices(t)
	ts.settings.validateErr = errors.New("api key rejected")
	rootCmd.SetIn(strings.NewReader("2\n\nsk-test-000000000\n"))

	out, err := execute(t, "settings", "llm")
	require.Error(t, err)
	assert.Contains(t, out, "FAILED: api key rejected")
	assert.Equal(t, domain.AIProviderOpenAI, ts.settings.settings.Generation.Provider)
	assert.Equal(t, "gpt-4o-mini", ts.settings.settings.Generation.Model)
}

func TestParseChoice(t *testing.T) {
	assert.Equal(t, 1, parseChoice("", 3, 1))
	assert.Equal(t, 2, parseChoice("2", 3, 1))
	assert.Equal(t, 1, parseChoice("9", 3, 1))
	assert.Equal(t, 1, parseChoice("x", 3, 1))
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "****", maskAPIKey("short"))
	assert.Equal(t, "abcd...wxyz", maskAPIKey("abcdefghijklmnopqrstuvwxyz"))
}
