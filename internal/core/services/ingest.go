package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/pagelens/internal/core/domain"
	"github.com/custodia-labs/pagelens/internal/core/ports/driven"
	"github.com/custodia-labs/pagelens/internal/logger"
)

// versionPrefix names the per-call directories under a collection directory.
const versionPrefix = "v-"

// errUnsupportedType is wrapped in an IngestionError for unknown extensions.
var errUnsupportedType = errors.New("unsupported file type")

// IngestResult lists the items produced by one ingestion call.
type IngestResult struct {
	// Items holds one reference per page or image, in input order.
	Items []domain.ItemRef

	// TotalPages is len(Items).
	TotalPages int

	// Dir is the version directory every item was written under.
	// Empty when the call stored nothing.
	Dir string

	// createdParent is the collection directory when this call created it.
	createdParent string
}

// Discard removes the version directory written by the call.
func (r *IngestResult) Discard() {
	if r.Dir != "" {
		if err := os.RemoveAll(r.Dir); err != nil {
			logger.Warn("remove %s: %v", r.Dir, err)
		}
		r.Dir = ""
	}
	if r.createdParent != "" {
		// Fails harmlessly when another version landed there meanwhile.
		_ = os.Remove(r.createdParent)
		r.createdParent = ""
	}
}

// Ingestor turns input files into stored page images.
type Ingestor struct {
	rasterizer driven.Rasterizer
	storageDir string
	dpi        int
}

// NewIngestor creates an ingestor writing under storageDir.
func NewIngestor(rasterizer driven.Rasterizer, storageDir string, dpi int) *Ingestor {
	if storageDir == "" {
		storageDir = domain.DefaultStorageDir
	}
	if dpi <= 0 {
		dpi = domain.DefaultDPI
	}
	return &Ingestor{
		rasterizer: rasterizer,
		storageDir: storageDir,
		dpi:        dpi,
	}
}

// CollectionDir returns the directory holding a collection's versions.
func (g *Ingestor) CollectionDir(collection string) string {
	return filepath.Join(g.storageDir, collection)
}

// Ingest stores every input in a fresh version directory under the
// collection directory, so files of an already registered version are never
// touched. Any failure aborts the call, removes the version directory and
// returns an IngestionError.
func (g *Ingestor) Ingest(ctx context.Context, paths []string, collection string) (*IngestResult, error) {
	if err := domain.ValidateCollectionName(collection); err != nil {
		return nil, err
	}

	res := &IngestResult{}
	if len(paths) == 0 {
		return res, nil
	}

	parent := g.CollectionDir(collection)
	if _, err := os.Stat(parent); errors.Is(err, os.ErrNotExist) {
		res.createdParent = parent
	}
	dir := filepath.Join(parent, versionPrefix+uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		res.Discard()
		return nil, &domain.IngestionError{Path: dir, Err: err}
	}
	res.Dir = dir

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			res.Discard()
			return nil, &domain.IngestionError{Path: path, Err: err}
		}

		var err error
		switch {
		case domain.IsPDFFile(path):
			err = g.ingestPDF(ctx, path, dir, res)
		case domain.IsImageFile(path):
			err = g.ingestImage(path, dir, res)
		default:
			err = fmt.Errorf("%w: %s", errUnsupportedType, filepath.Ext(path))
		}
		if err != nil {
			res.Discard()
			return nil, &domain.IngestionError{Path: path, Err: err}
		}
	}

	res.TotalPages = len(res.Items)
	logger.Debug("Ingested %d file(s) into %s: %d page(s)", len(paths), dir, res.TotalPages)
	return res, nil
}

func (g *Ingestor) ingestPDF(ctx context.Context, path, dir string, res *IngestResult) error {
	if g.rasterizer == nil {
		return errors.New("no PDF rasterizer configured")
	}
	if _, err := os.Stat(path); err != nil {
		return err
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	outDir := filepath.Join(dir, stem)

	pages, err := g.rasterizer.Rasterize(ctx, path, outDir, g.dpi)
	if err != nil {
		return fmt.Errorf("rasterize: %w", err)
	}
	for _, p := range pages {
		res.Items = append(res.Items, domain.ItemRef(p))
	}
	logger.Debug("Rasterized %s: %d page(s)", path, len(pages))
	return nil
}

func (g *Ingestor) ingestImage(path, dir string, res *IngestResult) error {
	dst := filepath.Join(dir, filepath.Base(path))
	if err := copyFile(path, dst); err != nil {
		return fmt.Errorf("copy: %w", err)
	}
	res.Items = append(res.Items, domain.ItemRef(dst))
	return nil
}

// copyFile copies src to dst byte for byte and preserves the modification time.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}
