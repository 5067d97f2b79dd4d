// Package watcher re-indexes a directory into a collection whenever the
// PDFs or images in it change.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/pagelens/internal/core/domain"
	"github.com/custodia-labs/pagelens/internal/logger"
)

// DefaultDebounce is how long the directory must be quiet before re-indexing.
const DefaultDebounce = 2 * time.Second

// Indexer rebuilds a collection from a list of files.
type Indexer interface {
	Index(ctx context.Context, paths []string, collection string) (*domain.IndexResult, error)
}

// Watcher watches one directory (not recursively) for supported files.
type Watcher struct {
	dir        string
	collection string
	indexer    Indexer
	debounce   time.Duration

	// OnIndexed, when set, is called after every successful re-index.
	OnIndexed func(*domain.IndexResult)
}

// New creates a watcher for dir that rebuilds collection.
func New(dir, collection string, indexer Indexer) *Watcher {
	if collection == "" {
		collection = domain.DefaultCollection
	}
	return &Watcher{
		dir:        dir,
		collection: collection,
		indexer:    indexer,
		debounce:   DefaultDebounce,
	}
}

// SetDebounce overrides the quiet period before a re-index.
func (w *Watcher) SetDebounce(d time.Duration) {
	if d > 0 {
		w.debounce = d
	}
}

// Scan returns the supported, non-hidden files directly inside dir, sorted by name.
func Scan(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || isHidden(e.Name()) || !domain.IsSupportedFile(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// Run indexes the directory once, then re-indexes after each burst of
// relevant changes. It blocks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	logger.Info("Watching %s for collection %q", w.dir, w.collection)

	if err := w.reindex(ctx); err != nil {
		return err
	}

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	pending := false

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}
			logger.Debug("Change detected: %s %s", event.Op, event.Name)
			pending = true
			timer.Reset(w.debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)

		case <-timer.C:
			if !pending {
				continue
			}
			pending = false
			if err := w.reindex(ctx); err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				// A bad file should not stop the watch; the next change retries.
				logger.Error("Re-index of %s failed: %v", w.dir, err)
			}
		}
	}
}

func (w *Watcher) reindex(ctx context.Context) error {
	paths, err := Scan(w.dir)
	if err != nil {
		return err
	}
	result, err := w.indexer.Index(ctx, paths, w.collection)
	if err != nil {
		return fmt.Errorf("index %s: %w", w.dir, err)
	}
	logger.Info("Indexed %d file(s), %d page(s) into %q", len(paths), result.TotalPages, w.collection)
	if w.OnIndexed != nil {
		w.OnIndexed(result)
	}
	return nil
}

// relevant reports whether an event can change the indexed file set.
func relevant(event fsnotify.Event) bool {
	if isHidden(filepath.Base(event.Name)) || !domain.IsSupportedFile(event.Name) {
		return false
	}
	return event.Has(fsnotify.Create) || event.Has(fsnotify.Write) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}

// isHidden reports whether name is a dotfile. "." and ".." are not hidden.
func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}
