package driven

import "context"

// ImageLoader reads an image file and prepares it for a provider request.
type ImageLoader interface {
	// Load decodes the file at path, downscales it so its pixel area does not
	// exceed the loader's ceiling, and re-encodes it in its source format.
	Load(ctx context.Context, path string) (Image, error)
}
