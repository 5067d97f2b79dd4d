package services

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/custodia-labs/pagelens/internal/logger"
)

// fileVersions counts the queries reading each collection version directory.
// A retired directory is removed once its last reader releases it and can
// never be acquired again.
type fileVersions struct {
	mu      sync.Mutex
	readers map[string]int
	retired map[string]bool
}

func newFileVersions() *fileVersions {
	return &fileVersions{
		readers: make(map[string]int),
		retired: make(map[string]bool),
	}
}

// acquire registers one more reader of dir. It reports false when dir has
// already been retired.
func (v *fileVersions) acquire(dir string) bool {
	if dir == "" {
		return true
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.retired[dir] {
		return false
	}
	v.readers[dir]++
	return true
}

// release drops one reader of dir, removing it when it was retired meanwhile.
func (v *fileVersions) release(dir string) {
	if dir == "" {
		return
	}
	v.mu.Lock()
	v.readers[dir]--
	idle := v.readers[dir] <= 0
	if idle {
		delete(v.readers, dir)
	}
	remove := idle && v.retired[dir]
	v.mu.Unlock()

	if remove {
		removeVersionDir(dir)
	}
}

// retire marks dir as no longer registered. It is removed now when nobody
// reads it, otherwise by the last release.
func (v *fileVersions) retire(dir string) {
	if dir == "" {
		return
	}
	v.mu.Lock()
	v.retired[dir] = true
	busy := v.readers[dir] > 0
	v.mu.Unlock()

	if !busy {
		removeVersionDir(dir)
	}
}

// removeVersionDir deletes a version directory and its collection directory
// once that is empty.
func removeVersionDir(dir string) {
	if err := os.RemoveAll(dir); err != nil {
		logger.Warn("remove %s: %v", dir, err)
		return
	}
	logger.Debug("Removed retired version %s", dir)
	_ = os.Remove(filepath.Dir(dir))
}
