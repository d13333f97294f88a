package raster

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/makeworld-the-better-one/dither/v2"
)

// DitherSpec names the quantization method and target depth for a Dither call.
// Ordered methods: bayer2, bayer4, bayer8. Diffusion methods: floydsteinberg,
// atkinson, stucki, burkes, sierra, jarvisjudiceninke.
type DitherSpec struct {
	Method string
	Levels int // gray levels in the target palette; <2 means bilevel
}

// grayPalette builds an evenly spaced grayscale palette of n levels.
func grayPalette(n int) []color.Color {
	if n < 2 {
		n = 2
	}
	pal := make([]color.Color, n)
	for i := 0; i < n; i++ {
		v := uint8(i * 255 / (n - 1))
		pal[i] = color.Gray{Y: v}
	}
	return pal
}

// Dither quantizes the image at src down to a grayscale palette using the
// named ordered or error-diffusion method, writing the result to dst.
func (e *ImagingEngine) Dither(src, dst string, spec DitherSpec) error {
	img, err := e.Load(src)
	if err != nil {
		return err
	}

	d := dither.NewDitherer(grayPalette(spec.Levels))
	switch strings.ToLower(spec.Method) {
	case "bayer2":
		d.Mapper = dither.Bayer(2, 2, 1.0)
	case "bayer4", "ordered", "":
		d.Mapper = dither.Bayer(4, 4, 1.0)
	case "bayer8":
		d.Mapper = dither.Bayer(8, 8, 1.0)
	case "floydsteinberg":
		d.Matrix = dither.FloydSteinberg
	case "atkinson":
		d.Matrix = dither.Atkinson
	case "stucki":
		d.Matrix = dither.Stucki
	case "burkes":
		d.Matrix = dither.Burkes
	case "sierra":
		d.Matrix = dither.Sierra
	case "jarvisjudiceninke":
		d.Matrix = dither.JarvisJudiceNinke
	default:
		return fmt.Errorf("unknown dither method %q", spec.Method)
	}

	if out := d.Dither(img); out != nil {
		img = out
	}
	return e.Save(img, dst)
}
