// Package imaging loads page images and shrinks them for provider requests.
package imaging

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"math"
	"os"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"

	"github.com/custodia-labs/pagelens/internal/core/domain"
	"github.com/custodia-labs/pagelens/internal/core/ports/driven"
)

// Ensure Loader implements the interface.
var _ driven.ImageLoader = (*Loader)(nil)

// jpegQuality is used when a resized JPEG is re-encoded.
const jpegQuality = 90

// Loader decodes images from disk and downsizes any whose pixel area exceeds maxPixels.
type Loader struct {
	maxPixels int
}

// NewLoader creates a loader. A non-positive maxPixels uses domain.DefaultMaxPixels.
func NewLoader(maxPixels int) *Loader {
	if maxPixels <= 0 {
		maxPixels = domain.DefaultMaxPixels
	}
	return &Loader{maxPixels: maxPixels}
}

// MaxPixels returns the pixel area ceiling.
func (l *Loader) MaxPixels() int {
	return l.maxPixels
}

// Load reads path and returns it re-encoded in its source format.
// Images within the pixel ceiling are returned byte for byte.
func (l *Loader) Load(ctx context.Context, path string) (driven.Image, error) {
	if err := ctx.Err(); err != nil {
		return driven.Image{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return driven.Image{}, fmt.Errorf("read image: %w", err)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return driven.Image{}, fmt.Errorf("decode image %s: %w", path, err)
	}
	mime := "image/" + format

	w, h := FitPixels(cfg.Width, cfg.Height, l.maxPixels)
	if w == cfg.Width && h == cfg.Height {
		return driven.Image{MIMEType: mime, Data: data}, nil
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return driven.Image{}, fmt.Errorf("decode image %s: %w", path, err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	encoded, err := encode(dst, format)
	if err != nil {
		return driven.Image{}, fmt.Errorf("encode image %s: %w", path, err)
	}
	return driven.Image{MIMEType: mime, Data: encoded}, nil
}

// FitPixels scales width and height by a common factor so their product does
// not exceed maxPixels. Dimensions already within the limit are unchanged.
func FitPixels(width, height, maxPixels int) (int, int) {
	area := width * height
	if maxPixels <= 0 || area <= maxPixels {
		return width, height
	}
	scale := math.Sqrt(float64(maxPixels) / float64(area))
	w := max(int(float64(width)*scale), 1)
	h := max(int(float64(height)*scale), 1)
	return w, h
}

func encode(img image.Image, format string) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case "jpeg":
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality})
	case "gif":
		err = gif.Encode(&buf, img, nil)
	case "bmp":
		err = bmp.Encode(&buf, img)
	default:
		err = png.Encode(&buf, img)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
