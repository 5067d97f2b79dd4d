// Package poppler renders PDF pages to PNG files with poppler's pdftoppm.
package poppler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/pagelens/internal/core/ports/driven"
	"github.com/custodia-labs/pagelens/internal/logger"
)

// Ensure Rasterizer implements the interface.
var _ driven.Rasterizer = (*Rasterizer)(nil)

const toolName = "pdftoppm"

// ErrPDFToolNotFound is returned when pdftoppm is not on PATH.
var ErrPDFToolNotFound = errors.New("pdftoppm not found: install poppler to ingest PDF files")

// InstallInstructions returns platform hints for installing pdftoppm.
func InstallInstructions() string {
	return `pdftoppm is required to ingest PDF files. Install poppler:
  macOS:         brew install poppler
  Debian/Ubuntu: apt install poppler-utils
  Fedora:        dnf install poppler-utils
  Windows:       choco install poppler`
}

// CheckAvailable reports whether pdftoppm can be found.
func CheckAvailable() error {
	if _, err := exec.LookPath(toolName); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// execRunner runs commands on the host.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if _, err := exec.LookPath(name); err != nil {
		return nil, ErrPDFToolNotFound
	}
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Rasterizer shells out to pdftoppm.
type Rasterizer struct {
	runner driven.CommandRunner
}

// New creates a rasterizer that runs the host's pdftoppm.
func New() *Rasterizer {
	return &Rasterizer{runner: execRunner{}}
}

// NewWithRunner creates a rasterizer with an injected command runner.
func NewWithRunner(runner driven.CommandRunner) *Rasterizer {
	return &Rasterizer{runner: runner}
}

// Rasterize renders every page of pdfPath into outDir as page_N.png.
// pdftoppm zero-pads page numbers by page count, so output is written under a
// unique prefix and renamed once the page numbers are parsed.
func (r *Rasterizer) Rasterize(ctx context.Context, pdfPath, outDir string, dpi int) ([]string, error) {
	if dpi <= 0 {
		return nil, fmt.Errorf("rasterize %s: dpi must be positive, got %d", pdfPath, dpi)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	prefix := "render-" + uuid.NewString()
	args := []string{"-png", "-r", strconv.Itoa(dpi), pdfPath, filepath.Join(outDir, prefix)}

	logger.Debug("rasterizing %s at %d dpi", pdfPath, dpi)
	output, err := r.runner.Run(ctx, toolName, args...)
	if err != nil {
		removeRendered(outDir, prefix)
		if errors.Is(err, ErrPDFToolNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("pdftoppm %s: %w: %s", pdfPath, err, strings.TrimSpace(string(output)))
	}

	pages, err := renderedPages(outDir, prefix)
	if err != nil {
		removeRendered(outDir, prefix)
		return nil, err
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("pdftoppm %s: no pages rendered", pdfPath)
	}

	paths := make([]string, len(pages))
	for i, p := range pages {
		dst := filepath.Join(outDir, fmt.Sprintf("page_%d.png", p.number))
		if err := os.Rename(p.path, dst); err != nil {
			removeRendered(outDir, prefix)
			return nil, fmt.Errorf("rename page %d: %w", p.number, err)
		}
		paths[i] = dst
	}

	logger.Debug("rasterized %d pages from %s", len(paths), pdfPath)
	return paths, nil
}

type renderedPage struct {
	number int
	path   string
}

// renderedPages lists prefix-N.png files in outDir sorted by page number.
func renderedPages(outDir, prefix string) ([]renderedPage, error) {
	matches, err := filepath.Glob(filepath.Join(outDir, prefix+"-*.png"))
	if err != nil {
		return nil, fmt.Errorf("list rendered pages: %w", err)
	}

	pages := make([]renderedPage, 0, len(matches))
	for _, m := range matches {
		num := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(m), prefix+"-"), ".png")
		n, err := strconv.Atoi(num)
		if err != nil {
			continue
		}
		pages = append(pages, renderedPage{number: n, path: m})
	}

	sort.Slice(pages, func(i, j int) bool { return pages[i].number < pages[j].number })
	return pages, nil
}

func removeRendered(outDir, prefix string) {
	matches, _ := filepath.Glob(filepath.Join(outDir, prefix+"-*.png"))
	for _, m := range matches {
		_ = os.Remove(m)
	}
}
