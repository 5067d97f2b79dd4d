package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pagelens/internal/core/domain"
)

// writeFiles creates the named files under dir and returns their paths.
func writeFiles(t *testing.T, dir string, names ...string) []string {
	t.Helper()
	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(paths[i], []byte("content of "+name), 0o644))
	}
	return paths
}

func TestIngestor_Images(t *testing.T) {
	src := t.TempDir()
	root := t.TempDir()
	paths := writeFiles(t, src, "b.png", "a.JPG", "c.bmp")

	ing := NewIngestor(&mockRasterizer{}, root, 0)
	res, err := ing.Ingest(context.Background(), paths, "docs")

	require.NoError(t, err)
	require.Equal(t, 3, res.TotalPages)
	assert.Equal(t, filepath.Join(root, "docs"), filepath.Dir(res.Dir))
	assert.True(t, strings.HasPrefix(filepath.Base(res.Dir), versionPrefix))
	assert.Equal(t, domain.ItemRef(filepath.Join(res.Dir, "b.png")), res.Items[0])
	assert.Equal(t, domain.ItemRef(filepath.Join(res.Dir, "a.JPG")), res.Items[1])
	assert.Equal(t, domain.ItemRef(filepath.Join(res.Dir, "c.bmp")), res.Items[2])

	data, err := os.ReadFile(res.Items[0].Path())
	require.NoError(t, err)
	assert.Equal(t, "content of b.png", string(data))
}

func TestIngestor_PreservesModTime(t *testing.T) {
	src := t.TempDir()
	paths := writeFiles(t, src, "scan.png")
	old := time.Date(2020, 5, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(paths[0], old, old))

	res, err := NewIngestor(nil, t.TempDir(), 0).Ingest(context.Background(), paths, "docs")
	require.NoError(t, err)

	info, err := os.Stat(res.Items[0].Path())
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(old))
}

func TestIngestor_PDF(t *testing.T) {
	src := t.TempDir()
	root := t.TempDir()
	paths := writeFiles(t, src, "report.PDF", "cover.png")

	ing := NewIngestor(&mockRasterizer{pages: 3}, root, 150)
	res, err := ing.Ingest(context.Background(), paths, "docs")

	require.NoError(t, err)
	require.Equal(t, 4, res.TotalPages)
	for i := 0; i < 3; i++ {
		assert.Equal(t, domain.ItemRef(filepath.Join(res.Dir, "report", pageName(i+1))), res.Items[i])
	}
	assert.Equal(t, "cover.png", res.Items[3].Filename())
}

func TestIngestor_NoPaths(t *testing.T) {
	res, err := NewIngestor(nil, t.TempDir(), 0).Ingest(context.Background(), nil, "docs")

	require.NoError(t, err)
	assert.Empty(t, res.Items)
	assert.Equal(t, 0, res.TotalPages)
	assert.Empty(t, res.Dir)
}

func TestIngestor_Failures(t *testing.T) {
	tests := []struct {
		name       string
		files      []string
		extra      []string
		rasterizer *mockRasterizer
	}{
		{"unsupported extension", []string{"a.png", "notes.txt"}, nil, &mockRasterizer{}},
		{"missing file", []string{"a.png"}, []string{"missing.png"}, &mockRasterizer{}},
		{"rasterizer failure", []string{"a.png", "doc.pdf"}, nil, &mockRasterizer{err: errors.New("corrupt pdf")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := t.TempDir()
			root := t.TempDir()
			paths := writeFiles(t, src, tt.files...)
			for _, e := range tt.extra {
				paths = append(paths, filepath.Join(src, e))
			}

			_, err := NewIngestor(tt.rasterizer, root, 0).Ingest(context.Background(), paths, "docs")

			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrIngestion)
			var ie *domain.IngestionError
			require.ErrorAs(t, err, &ie)
			assert.Equal(t, paths[len(paths)-1], ie.Path)

			_, statErr := os.Stat(filepath.Join(root, "docs"))
			assert.True(t, os.IsNotExist(statErr), "partial output removed")
		})
	}
}

func TestIngestor_FailureKeepsEarlierVersion(t *testing.T) {
	root := t.TempDir()
	ing := NewIngestor(&mockRasterizer{}, root, 0)

	first, err := ing.Ingest(context.Background(), writeFiles(t, t.TempDir(), "a.png"), "docs")
	require.NoError(t, err)

	src := t.TempDir()
	second := []string{filepath.Join(src, "a.png"), filepath.Join(src, "b.png")}
	require.NoError(t, os.WriteFile(second[0], []byte("NEW CONTENT"), 0o644))
	require.NoError(t, os.WriteFile(second[1], []byte("other"), 0o644))
	second = append(second, writeFiles(t, src, "bad.txt")...)

	_, err = ing.Ingest(context.Background(), second, "docs")
	require.Error(t, err)

	data, err := os.ReadFile(first.Items[0].Path())
	require.NoError(t, err)
	assert.Equal(t, "content of a.png", string(data), "earlier version is never overwritten")

	entries, err := os.ReadDir(filepath.Join(root, "docs"))
	require.NoError(t, err)
	require.Len(t, entries, 1, "aborted version removed")
	assert.Equal(t, filepath.Base(first.Dir), entries[0].Name())
}

func TestIngestor_EachCallGetsItsOwnVersion(t *testing.T) {
	root := t.TempDir()
	ing := NewIngestor(nil, root, 0)

	first, err := ing.Ingest(context.Background(), writeFiles(t, t.TempDir(), "a.png"), "docs")
	require.NoError(t, err)

	src := t.TempDir()
	path := filepath.Join(src, "a.png")
	require.NoError(t, os.WriteFile(path, []byte("NEW CONTENT"), 0o644))
	second, err := ing.Ingest(context.Background(), []string{path}, "docs")
	require.NoError(t, err)

	assert.NotEqual(t, first.Dir, second.Dir)
	old, err := os.ReadFile(first.Items[0].Path())
	require.NoError(t, err)
	assert.Equal(t, "content of a.png", string(old))
	latest, err := os.ReadFile(second.Items[0].Path())
	require.NoError(t, err)
	assert.Equal(t, "NEW CONTENT", string(latest))
}

func TestIngestor_InvalidCollectionName(t *testing.T) {
	_, err := NewIngestor(nil, t.TempDir(), 0).Ingest(context.Background(), nil, "../escape")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIngestor_SourceInsideCollection(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "docs")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	paths := writeFiles(t, dir, "in-place.png")

	res, err := NewIngestor(nil, root, 0).Ingest(context.Background(), paths, "docs")

	require.NoError(t, err)
	assert.Equal(t, domain.ItemRef(filepath.Join(res.Dir, "in-place.png")), res.Items[0])
	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Equal(t, "content of in-place.png", string(data), "source left as is")
}

func TestIngestResult_Discard(t *testing.T) {
	root := t.TempDir()
	res, err := NewIngestor(nil, root, 0).Ingest(context.Background(), writeFiles(t, t.TempDir(), "a.png"), "docs")
	require.NoError(t, err)

	res.Discard()

	_, err = os.Stat(filepath.Join(root, "docs"))
	assert.True(t, os.IsNotExist(err), "collection dir created by the call removed")
	res.Discard()
}
