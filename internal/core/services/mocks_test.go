package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/custodia-labs/pagelens/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbedder implements driven.EmbeddingService for testing.
// Document items are resolved by the base name of the loaded path; query
// items use the text.
type mockEmbedder struct {
	docs    map[string][]float32
	queries map[string][]float32
	err     error
	calls   atomic.Int32
}

func (m *mockEmbedder) Embed(_ context.Context, mode driven.EmbedMode, items []driven.ContentItem) ([][]float32, error) {
	m.calls.Add(1)
	if m.err != nil {
		return nil, m.err
	}
	out := make([][]float32, len(items))
	for i, item := range items {
		var (
			vec []float32
			ok  bool
		)
		if mode == driven.EmbedModeDocument {
			vec, ok = m.docs[filepath.Base(pathFromDataURL(item.ImageDataURL))]
		} else {
			vec, ok = m.queries[item.Text]
		}
		if !ok {
			return nil, errors.New("no vector for item")
		}
		out[i] = append([]float32(nil), vec...)
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int              { return 3 }
func (m *mockEmbedder) ModelName() string            { return "mock-embed" }
func (m *mockEmbedder) DisplayName() string          { return "Mock Embed" }
func (m *mockEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockEmbedder) Close() error                 { return nil }

func pathFromDataURL(u string) string {
	_, b64, _ := strings.Cut(u, ";base64,")
	data, _ := base64.StdEncoding.DecodeString(b64)
	return string(data)
}

// mockGenerator implements driven.GenerationService for testing.
type mockGenerator struct {
	mu      sync.Mutex
	answer  string
	err     error
	prompts []string
	images  [][]driven.Image
	delay   time.Duration
	hook    func()
}

func (m *mockGenerator) Generate(
	ctx context.Context, prompt string, images []driven.Image, _ driven.GenerateOptions,
) (string, error) {
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if m.hook != nil {
		m.hook()
	}
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.images = append(m.images, images)
	m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	return m.answer, nil
}

func (m *mockGenerator) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

func (m *mockGenerator) ModelName() string            { return "mock-gen" }
func (m *mockGenerator) DisplayName() string          { return "Mock Gen" }
func (m *mockGenerator) Ping(_ context.Context) error { return nil }
func (m *mockGenerator) Close() error                 { return nil }

// fakeClock is a settable time source.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// mockLoader implements driven.ImageLoader. The "image" bytes are the path.
// With readFiles set it also requires the file to be readable.
type mockLoader struct {
	fail      map[string]bool
	readFiles bool
}

func (m *mockLoader) Load(_ context.Context, path string) (driven.Image, error) {
	if m.fail[path] {
		return driven.Image{}, errors.New("corrupt image")
	}
	if m.readFiles {
		if _, err := os.ReadFile(path); err != nil {
			return driven.Image{}, err
		}
	}
	return driven.Image{MIMEType: "image/png", Data: []byte(path)}, nil
}

// mockRasterizer implements driven.Rasterizer by writing placeholder pages.
type mockRasterizer struct {
	pages int
	err   error
}

func (m *mockRasterizer) Rasterize(_ context.Context, _, outDir string, _ int) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}
	paths := make([]string, m.pages)
	for i := range paths {
		paths[i] = filepath.Join(outDir, pageName(i+1))
		if err := os.WriteFile(paths[i], []byte("png"), 0o644); err != nil {
			return nil, err
		}
	}
	return paths, nil
}

func pageName(n int) string {
	return fmt.Sprintf("page_%d.png", n)
}

// mockPromptStore implements driven.PromptStore.
type mockPromptStore struct {
	prompt string
	err    error
}

func (m *mockPromptStore) Load(_ string) (string, error) { return m.prompt, m.err }
func (m *mockPromptStore) Reload()                       {}

// mockCacheStore implements driven.CacheStore with failure injection.
type mockCacheStore struct {
	mu      sync.Mutex
	values  map[string]string
	ttls    map[string]time.Duration
	getErr  error
	setErr  error
	pingErr error
}

func newMockCacheStore() *mockCacheStore {
	return &mockCacheStore{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *mockCacheStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *mockCacheStore) SetWithExpiry(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *mockCacheStore) Ping(_ context.Context) error { return m.pingErr }
func (m *mockCacheStore) Close() error                 { return nil }

// recordingMetrics implements driven.MetricsRecorder and counts calls.
type recordingMetrics struct {
	mu           sync.Mutex
	statuses     map[string]int
	durations    int
	cacheHits    int
	errors       int
	embeddings   int
	similarities []float64
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{statuses: map[string]int{}}
}

func (r *recordingMetrics) QueryStatus(_, status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses[status]++
}

func (r *recordingMetrics) ObserveRequestDuration(time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.durations++
}

func (r *recordingMetrics) CacheHit() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cacheHits++
}

func (r *recordingMetrics) Error() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors++
}

func (r *recordingMetrics) EmbeddingsCreated(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.embeddings += n
}

func (r *recordingMetrics) ObserveSimilarity(score float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.similarities = append(r.similarities, score)
}
