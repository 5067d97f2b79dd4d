package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/pagelens/internal/core/domain"
	"github.com/custodia-labs/pagelens/internal/core/ports/driven"
	"github.com/custodia-labs/pagelens/internal/logger"
)

// AnswerGenerator asks the generation provider to answer from page images.
type AnswerGenerator struct {
	generator driven.GenerationService
	loader    driven.ImageLoader
	prompts   driven.PromptStore
	pool      *WorkerPool
}

// NewAnswerGenerator creates an answer generator. The generator is optional
// (can be nil): without it answers are templated placeholders.
func NewAnswerGenerator(
	generator driven.GenerationService,
	loader driven.ImageLoader,
	prompts driven.PromptStore,
	pool *WorkerPool,
) *AnswerGenerator {
	return &AnswerGenerator{
		generator: generator,
		loader:    loader,
		prompts:   prompts,
		pool:      pool,
	}
}

// Answer returns the provider's answer to text, grounded in best and up to
// domain.MaxContextImages extra context items.
func (a *AnswerGenerator) Answer(
	ctx context.Context, text string, best domain.ItemRef, extra []domain.ItemRef,
) (string, error) {
	if a.generator == nil {
		return fmt.Sprintf("Demo answer for: %s (based on %s)", text, best.Filename()), nil
	}

	if len(extra) > domain.MaxContextImages {
		extra = extra[:domain.MaxContextImages]
	}

	refs := append([]domain.ItemRef{best}, extra...)
	images := make([]driven.Image, 0, len(refs))
	for _, ref := range refs {
		img, err := a.loader.Load(ctx, ref.Path())
		if err != nil {
			return "", fmt.Errorf("load image %s: %w", ref.Filename(), err)
		}
		images = append(images, img)
	}

	prompt := a.buildPrompt(text)
	logger.Debug("Generating answer from %d image(s)", len(images))

	answer, err := Do(ctx, a.pool, func(ctx context.Context) (string, error) {
		return a.generator.Generate(ctx, prompt, images, driven.GenerateOptions{})
	})
	if err != nil {
		return "", &domain.ProviderError{Provider: a.generator.ModelName(), Op: "generate", Err: err}
	}
	return answer, nil
}

// buildPrompt fills the answer template, falling back to the built-in prompt
// when the store is missing, fails, or returns a template without %s.
func (a *AnswerGenerator) buildPrompt(text string) string {
	tmpl := domain.DefaultAnswerPrompt
	if a.prompts != nil {
		loaded, err := a.prompts.Load(driven.PromptAnswer)
		switch {
		case err != nil:
			logger.Warn("load answer prompt: %v", err)
		case strings.Count(loaded, "%s") != 1:
			logger.Warn("answer prompt must contain exactly one %%s, using default")
		default:
			tmpl = loaded
		}
	}
	return fmt.Sprintf(tmpl, text)
}
