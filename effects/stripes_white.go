package effects

import (
	"image"
	"image/color"
	"math/rand"

	"github.com/disintegration/imaging"
	"github.com/scanforge/scanforge/raster"
)

// Stripe axes.
const (
	AxisHorizontal = "horizontal"
	AxisVertical   = "vertical"
)

// StripesWhiteConfig parametrizes the white fade-band effect.
type StripesWhiteConfig struct {
	Probability float64
	Axis        string // horizontal bands run across the page
	Thickness   Range  // band thickness in pixels
	Spacing     Range  // gap between bands in pixels
	NoiseBlur   float64 // sigma of the patch-forming blur on the noise mask
}

// Validate checks the stripes-white parameter set.
func (c StripesWhiteConfig) Validate() error {
	if err := ValidateProbability("stripeswhite.probability", c.Probability); err != nil {
		return err
	}
	if c.Axis != AxisHorizontal && c.Axis != AxisVertical && c.Axis != "" {
		return ValidateProbability("stripeswhite.axis", -1)
	}
	if err := c.Thickness.Validate("stripeswhite.thickness"); err != nil {
		return err
	}
	return c.Spacing.Validate("stripeswhite.spacing")
}

// StripesWhite fades bands of the page to white where a stripe-band mask and
// an independent binary noise mask agree. The combined mask becomes the alpha
// channel of a solid-white overlay composited over the source.
func StripesWhite(env *Env, src string, cfg StripesWhiteConfig) (string, error) {
	if env.Skip(cfg.Probability) {
		return src, nil
	}

	w, h, err := env.Engine.Size(src)
	if err != nil {
		return "", err
	}

	bands := BuildStripeMask(env.Rand, w, h, cfg)
	noise := BuildNoiseMask(env.Rand, w, h, cfg.NoiseBlur)
	overlay := CombineMasks(bands, noise)

	dst := env.StagePath("stripeswhite")
	if err := env.Engine.Transform(src, dst,
		raster.EnsureAlpha(),
		raster.OverlayImage(overlay, image.Pt(0, 0), 1.0),
	); err != nil {
		return "", err
	}
	Logger.Debug("White stripes applied", "doc", env.DocBase, "axis", cfg.Axis)
	return env.swap(src, dst)
}

// BuildStripeMask generates the binary band mask: bands of random thickness
// and spacing along one axis, each jittered by up to half its spacing.
func BuildStripeMask(rng *rand.Rand, w, h int, cfg StripesWhiteConfig) *image.Gray {
	mask := image.NewGray(image.Rect(0, 0, w, h))
	extent := h
	if cfg.Axis == AxisVertical {
		extent = w
	}

	pos := 0
	for pos < extent {
		thickness := cfg.Thickness.SampleInt(rng)
		if thickness < 1 {
			thickness = 1
		}
		spacing := cfg.Spacing.SampleInt(rng)
		if spacing < 1 {
			spacing = 1
		}
		// Position jitter proportional to the spacing.
		jitter := 0
		if spacing > 1 {
			jitter = rng.Intn(spacing) - spacing/2
		}
		start := pos + jitter
		for line := start; line < start+thickness && line < extent; line++ {
			if line < 0 {
				continue
			}
			fillLine(mask, line, cfg.Axis == AxisVertical)
		}
		pos += thickness + spacing
	}
	return mask
}

// BuildNoiseMask generates an independent binary noise mask: a uniform binary
// field blurred into patches, then re-thresholded at the midpoint so it stays
// binary.
func BuildNoiseMask(rng *rand.Rand, w, h int, blurSigma float64) *image.Gray {
	field := image.NewGray(image.Rect(0, 0, w, h))
	for i := range field.Pix {
		if rng.Intn(2) == 1 {
			field.Pix[i] = 255
		}
	}
	if blurSigma <= 0 {
		return field
	}
	blurred := imaging.Blur(field, blurSigma)

	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, _, _, _ := blurred.At(x, y).RGBA()
			if uint8(r>>8) >= 128 {
				out.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return out
}

// CombineMasks ANDs the two masks and returns a white overlay whose alpha is
// non-zero exactly where both are on.
func CombineMasks(bands, noise *image.Gray) *image.NRGBA {
	b := bands.Bounds()
	overlay := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if bands.GrayAt(x, y).Y >= 128 && noise.GrayAt(x, y).Y >= 128 {
				i := overlay.PixOffset(x, y)
				overlay.Pix[i], overlay.Pix[i+1], overlay.Pix[i+2], overlay.Pix[i+3] = 255, 255, 255, 255
			}
		}
	}
	return overlay
}

func fillLine(mask *image.Gray, line int, vertical bool) {
	b := mask.Bounds()
	if vertical {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			mask.SetGray(line, y, color.Gray{Y: 255})
		}
		return
	}
	for x := b.Min.X; x < b.Max.X; x++ {
		mask.SetGray(x, line, color.Gray{Y: 255})
	}
}
