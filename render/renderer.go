// Package render turns template PDF pages into working raster images for the
// degradation pipeline.
package render

import (
	"image"
	"log/slog"
)

// Logger is global since we will need it everywhere
var Logger *slog.Logger

// Renderer defines the interface for PDF to image conversion
type Renderer interface {
	// RenderPDF converts all pages of a PDF file to images
	// Returns a slice of images, one per page
	RenderPDF(filename string) ([]image.Image, error)

	// RenderPage converts a single zero-based page to an image
	RenderPage(filename string, page int) (image.Image, error)

	// Close cleans up any resources used by the renderer
	Close() error
}

// NewRenderer creates the default Fitz-based renderer (requires CGo and MuPDF)
func NewRenderer() (Renderer, error) {
	return NewFitzRenderer()
}
