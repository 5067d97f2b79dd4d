package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_CreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "cfg")

	store, err := NewConfigStore(dir)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.toml"), store.Path())
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestNewConfigStore_DefaultDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot determine home directory")
	}
	dir, err := DefaultDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".pagelens"), dir)
}

func TestConfigStore_TypedValues(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("generation.provider", "gemini"))
	require.NoError(t, store.Set("ingest.dpi", 300))
	require.NoError(t, store.Set("debug.enabled", true))
	require.NoError(t, store.Set("server.allowed_origins", []string{"http://a"}))

	assert.Equal(t, "gemini", store.GetString("generation.provider"))
	assert.Equal(t, 300, store.GetInt("ingest.dpi"))
	assert.True(t, store.GetBool("debug.enabled"))
	assert.Equal(t, []string{"http://a"}, store.GetStringSlice("server.allowed_origins"))

	assert.Equal(t, "", store.GetString("ingest.dpi"))
	assert.Equal(t, 0, store.GetInt("generation.provider"))
	assert.False(t, store.GetBool("missing"))
	assert.Nil(t, store.GetStringSlice("missing"))
}

func TestConfigStore_PersistsNestedTables(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set("cache.backend", "redis"))
	require.NoError(t, store.Set("cache.ttl_seconds", 600))
	require.NoError(t, store.Set("server.allowed_origins", []string{"http://a", "http://b"}))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[cache]")
	assert.Regexp(t, `backend = ['"]redis['"]`, string(raw))

	reopened, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "redis", reopened.GetString("cache.backend"))
	assert.Equal(t, 600, reopened.GetInt("cache.ttl_seconds"))
	assert.Equal(t, []string{"http://a", "http://b"}, reopened.GetStringSlice("server.allowed_origins"))
}

func TestConfigStore_ReadsHandWrittenFile(t *testing.T) {
	dir := t.TempDir()
	content := `
[embedding]
provider = "cohere"
model = "embed-v4.0"

[workers]
max_concurrency = 8
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o600))

	store, err := NewConfigStore(dir)

	require.NoError(t, err)
	assert.Equal(t, "cohere", store.GetString("embedding.provider"))
	assert.Equal(t, 8, store.GetInt("workers.max_concurrency"))
}

func TestConfigStore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[[not toml"), 0o600))

	_, err := NewConfigStore(dir)

	assert.Error(t, err)
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("k", "v"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = store.Set("workers.max_concurrency", i)
		}(i)
		go func() {
			defer wg.Done()
			_ = store.GetInt("workers.max_concurrency")
		}()
	}
	wg.Wait()
}

func TestNestMap_RoundTrip(t *testing.T) {
	flat := map[string]any{"a.b.c": 1, "a.d": "x", "top": true}

	nested := nestMap(flat)

	assert.Equal(t, map[string]any{
		"a":   map[string]any{"b": map[string]any{"c": 1}, "d": "x"},
		"top": true,
	}, nested)
	assert.Equal(t, flat, flattenMap(nested, ""))
}
