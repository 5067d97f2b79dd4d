package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pagelens/internal/core/ports/driven"
)

func TestNewGenerationService_Defaults(t *testing.T) {
	svc := NewGenerationService(Config{})

	assert.Equal(t, DefaultModel, svc.ModelName())
	assert.Equal(t, DefaultBaseURL, svc.baseURL)
	assert.Equal(t, "Ollama llava", svc.DisplayName())
	assert.NoError(t, svc.Close())
}

func TestGenerate(t *testing.T) {
	var got generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"response":"A diagram.","done":true}`))
	}))
	defer server.Close()

	svc := NewGenerationService(Config{BaseURL: server.URL, Model: "llava:13b"})
	imgs := []driven.Image{
		{MIMEType: "image/png", Data: []byte("one")},
		{MIMEType: "image/png", Data: []byte("two")},
	}

	answer, err := svc.Generate(context.Background(), "prompt", imgs, driven.GenerateOptions{Temperature: 0.1})
	require.NoError(t, err)

	assert.Equal(t, "A diagram.", answer)
	assert.Equal(t, "llava:13b", got.Model)
	assert.False(t, got.Stream)
	assert.Equal(t, []string{imgs[0].Base64(), imgs[1].Base64()}, got.Images)
	require.NotNil(t, got.Options)
	assert.InDelta(t, 0.1, got.Options.Temperature, 1e-9)
}

func TestGenerate_Errors(t *testing.T) {
	t.Run("model missing", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"model 'llava' not found"}`))
		}))
		defer server.Close()

		_, err := NewGenerationService(Config{BaseURL: server.URL}).
			Generate(context.Background(), "p", nil, driven.GenerateOptions{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 404")
	})

	t.Run("error field", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"error":"out of memory"}`))
		}))
		defer server.Close()

		_, err := NewGenerationService(Config{BaseURL: server.URL}).
			Generate(context.Background(), "p", nil, driven.GenerateOptions{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "out of memory")
	})
}

func TestPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	assert.NoError(t, NewGenerationService(Config{BaseURL: server.URL}).Ping(context.Background()))

	server.Close()
	assert.Error(t, NewGenerationService(Config{BaseURL: server.URL}).Ping(context.Background()))
}
