package pipeline

import (
	"fmt"
	"os"

	"github.com/disintegration/imaging"
	"github.com/scanforge/scanforge/raster"
	"golang.org/x/image/tiff"
)

// Output compression modes. No Go encoder exists for CCITT group fax
// compression, so the fax-style output is a bilevel-thresholded TIFF with
// Deflate, with an uncompressed fallback.
const (
	CompressionDeflate = "deflate"
	CompressionNone    = "none"
)

// Compress thresholds the final working image to black and white and encodes
// it as a grayscale TIFF at outPath. The input file is left in place; the
// caller owns its cleanup.
func Compress(engine raster.Engine, src, outPath, mode string) error {
	img, err := engine.Load(src)
	if err != nil {
		return err
	}

	// Bilevel output regardless of what the dither stages left behind.
	bw := imaging.Grayscale(img)
	gray := imaging.Clone(bw)
	for i := 0; i < len(gray.Pix); i += 4 {
		v := uint8(0)
		if gray.Pix[i] >= 128 {
			v = 255
		}
		gray.Pix[i], gray.Pix[i+1], gray.Pix[i+2] = v, v, v
	}

	compression := tiff.Deflate
	switch mode {
	case CompressionNone:
		compression = tiff.Uncompressed
	case CompressionDeflate, "":
	default:
		return fmt.Errorf("unknown compression mode %q", mode)
	}

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("unable to create output %s: %w", outPath, err)
	}
	defer out.Close()

	if err := tiff.Encode(out, gray, &tiff.Options{Compression: compression, Predictor: true}); err != nil {
		os.Remove(outPath)
		return fmt.Errorf("unable to encode TIFF %s: %w", outPath, err)
	}
	return nil
}
