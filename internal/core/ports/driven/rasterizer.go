package driven

import "context"

// Rasterizer renders every page of a PDF to an image file.
type Rasterizer interface {
	// Rasterize writes outDir/page_N.png for N = 1..pages at the given DPI
	// and returns the paths in page order.
	Rasterize(ctx context.Context, pdfPath, outDir string, dpi int) ([]string, error)
}

// CommandRunner executes external commands.
// It is injectable so adapters that shell out can be tested without the tool.
type CommandRunner interface {
	// Run executes name with args and returns combined output.
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}
