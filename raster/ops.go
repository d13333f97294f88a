package raster

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Op is a single named operation applied to an in-memory image. Ops are pure:
// they never touch the filesystem and carry any randomness already baked in by
// the caller.
type Op func(image.Image) (image.Image, error)

// Rotate rotates about the image center, filling exposed background with bg.
// The canvas grows to hold the rotated content; pair with FitCanvas to restore
// the original dimensions.
func Rotate(angle float64, bg color.Color) Op {
	return func(img image.Image) (image.Image, error) {
		return imaging.Rotate(img, angle, bg), nil
	}
}

// FitCanvas forces the image onto a w×h canvas: larger images are
// center-cropped, smaller ones centered over a bg fill. Output dimensions are
// always exactly w×h.
func FitCanvas(w, h int, bg color.Color) Op {
	return func(img image.Image) (image.Image, error) {
		b := img.Bounds()
		if b.Dx() == w && b.Dy() == h {
			return img, nil
		}
		if b.Dx() >= w && b.Dy() >= h {
			return imaging.CropCenter(img, w, h), nil
		}
		canvas := imaging.New(w, h, bg)
		pos := image.Pt((w-b.Dx())/2, (h-b.Dy())/2)
		return imaging.Paste(canvas, img, pos), nil
	}
}

// FlipH mirrors the image horizontally (left-right).
func FlipH() Op {
	return func(img image.Image) (image.Image, error) {
		return imaging.FlipH(img), nil
	}
}

// FlipV mirrors the image vertically (top-bottom).
func FlipV() Op {
	return func(img image.Image) (image.Image, error) {
		return imaging.FlipV(img), nil
	}
}

// Rotate180 turns the image upside down.
func Rotate180() Op {
	return func(img image.Image) (image.Image, error) {
		return imaging.Rotate180(img), nil
	}
}

// Grayscale converts to grayscale.
func Grayscale() Op {
	return func(img image.Image) (image.Image, error) {
		return imaging.Grayscale(img), nil
	}
}

// Blur applies a gaussian blur.
func Blur(sigma float64) Op {
	return func(img image.Image) (image.Image, error) {
		if sigma <= 0 {
			return img, nil
		}
		return imaging.Blur(img, sigma), nil
	}
}

// Brightness adjusts brightness by a percentage in [-100, 100].
func Brightness(percent float64) Op {
	return func(img image.Image) (image.Image, error) {
		return imaging.AdjustBrightness(img, percent), nil
	}
}

// EnsureAlpha guarantees the image carries an alpha channel so later composite
// ops behave predictably.
func EnsureAlpha() Op {
	return func(img image.Image) (image.Image, error) {
		if _, ok := img.(*image.NRGBA); ok {
			return img, nil
		}
		return imaging.Clone(img), nil
	}
}

// Flatten composites the image over a solid bg, discarding transparency.
func Flatten(bg color.Color) Op {
	return func(img image.Image) (image.Image, error) {
		b := img.Bounds()
		canvas := imaging.New(b.Dx(), b.Dy(), bg)
		return imaging.Overlay(canvas, img, image.Pt(0, 0), 1.0), nil
	}
}

// OverlayImage composites overlay onto the current image at pos with the
// given opacity.
func OverlayImage(overlay image.Image, pos image.Point, opacity float64) Op {
	return func(img image.Image) (image.Image, error) {
		return imaging.Overlay(img, overlay, pos, opacity), nil
	}
}

// PasteRegion crops rect out of the current image and pastes the tile back at
// pos. Used by the tile-shift effect; the paste is opaque.
func PasteRegion(rect image.Rectangle, pos image.Point) Op {
	return func(img image.Image) (image.Image, error) {
		tile := imaging.Crop(img, rect)
		return imaging.Paste(img, tile, pos), nil
	}
}

// Levels remaps the black and white points: values at or below black map to 0,
// values at or above white map to 255, the rest stretch linearly.
func Levels(black, white uint8) Op {
	return func(img image.Image) (image.Image, error) {
		src := imaging.Clone(img)
		span := float64(white) - float64(black)
		if span < 1 {
			span = 1
		}
		for i := 0; i < len(src.Pix); i += 4 {
			for c := 0; c < 3; c++ {
				v := float64(src.Pix[i+c])
				v = (v - float64(black)) / span * 255
				if v < 0 {
					v = 0
				} else if v > 255 {
					v = 255
				}
				src.Pix[i+c] = uint8(v + 0.5)
			}
		}
		return src, nil
	}
}

// Threshold converts to pure black and white at the given level.
func Threshold(level uint8) Op {
	return func(img image.Image) (image.Image, error) {
		gray := imaging.Grayscale(img)
		for i := 0; i < len(gray.Pix); i += 4 {
			v := uint8(0)
			if gray.Pix[i] >= level {
				v = 255
			}
			gray.Pix[i], gray.Pix[i+1], gray.Pix[i+2] = v, v, v
		}
		return gray, nil
	}
}
