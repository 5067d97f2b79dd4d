package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/pagelens/internal/core/domain"
	"github.com/custodia-labs/pagelens/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads generation prompts from user-editable files, falling
// back to the built-in defaults. The prompt directory is created on first Load.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// defaultPrompts are written to disk on first use and served when a file is missing.
var defaultPrompts = map[string]string{
	driven.PromptAnswer: domain.DefaultAnswerPrompt,
}

const promptsReadme = `# pagelens prompts

Files in this directory override the prompts sent to the generation provider.

- answer.txt: answers a question from the retrieved page images.
  Keep exactly one %s where the question should go.

Changes are picked up the next time pagelens starts.
`

// NewPromptStore creates a file-based prompt store.
// If promptDir is empty, defaults to ~/.pagelens/prompts.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(dir, "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the prompt template for name.
func (s *PromptStore) Load(name string) (string, error) {
	s.initOnce.Do(s.initialise)

	s.mu.RLock()
	prompt, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return prompt, nil
	}

	prompt, err := s.loadFromFile(name)
	if err != nil {
		def, ok := defaultPrompts[name]
		if !ok {
			return "", fmt.Errorf("load prompt %q: %w", name, err)
		}
		prompt = def
	}

	s.mu.Lock()
	if cached, ok := s.cache[name]; ok {
		prompt = cached
	} else {
		s.cache[name] = prompt
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// InitErr reports why the prompt directory could not be prepared, if it failed.
func (s *PromptStore) InitErr() error {
	return s.initErr
}

// initialise writes the default prompt files that do not exist yet.
// Failure is recorded but not fatal: Load still serves built-in defaults.
func (s *PromptStore) initialise() {
	if err := os.MkdirAll(s.promptDir, 0o700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	files := map[string]string{"README.md": promptsReadme}
	for name, content := range defaultPrompts {
		files[name+".txt"] = content
	}
	for name, content := range files {
		path := filepath.Join(s.promptDir, name)
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			continue
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			s.initErr = fmt.Errorf("create %s: %w", name, err)
			return
		}
	}
}

func (s *PromptStore) loadFromFile(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.promptDir, name+".txt"))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
