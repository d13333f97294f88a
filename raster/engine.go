package raster

import (
	"fmt"
	"image"
	"log/slog"
	"os"

	"github.com/disintegration/imaging"
)

// Logger is global since we will need it everywhere
var Logger *slog.Logger

// Engine is the narrow raster capability set every effect is written against:
// geometric transforms, color transforms, compositing, draw-scripts and
// dithering. Every call writes exactly one output file and never deletes its
// input; intermediate-file ownership stays with the caller.
type Engine interface {
	// Size returns the pixel dimensions of the image at path.
	Size(path string) (int, int, error)
	// Load reads the image at path into memory.
	Load(path string) (image.Image, error)
	// Save writes img to path (format chosen by extension).
	Save(img image.Image, path string) error
	// Transform applies ops in order to the image at src and writes dst.
	Transform(src, dst string, ops ...Op) error
	// Draw renders a draw-script over the image at src and writes dst.
	Draw(src, dst string, script *DrawScript) error
	// Dither quantizes the image at src per spec and writes dst.
	Dither(src, dst string, spec DitherSpec) error
}

// ImagingEngine is the in-process Engine implementation built on
// disintegration/imaging. It replaces the external raster process the design
// was originally built around; swapping engines never touches effect logic.
type ImagingEngine struct{}

// NewImagingEngine creates the in-process raster engine.
func NewImagingEngine() *ImagingEngine {
	return &ImagingEngine{}
}

// Size returns the pixel dimensions of the image at path.
func (e *ImagingEngine) Size(path string) (int, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("unable to open image %s: %w", path, err)
	}
	defer file.Close()

	cfg, _, err := image.DecodeConfig(file)
	if err != nil {
		return 0, 0, fmt.Errorf("unable to read image header %s: %w", path, err)
	}
	return cfg.Width, cfg.Height, nil
}

// Load reads the image at path into memory.
func (e *ImagingEngine) Load(path string) (image.Image, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open image %s: %w", path, err)
	}
	return img, nil
}

// Save writes img to path.
func (e *ImagingEngine) Save(img image.Image, path string) error {
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("unable to save image %s: %w", path, err)
	}
	return nil
}

// Transform applies ops in order to the image at src and writes the result to
// dst. Any op failure aborts the whole call; no partial output is written.
func (e *ImagingEngine) Transform(src, dst string, ops ...Op) error {
	img, err := e.Load(src)
	if err != nil {
		return err
	}
	for _, op := range ops {
		img, err = op(img)
		if err != nil {
			return fmt.Errorf("transform failed for %s: %w", src, err)
		}
	}
	return e.Save(img, dst)
}
