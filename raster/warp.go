package raster

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// CornerOffsets holds the per-corner displacement of a pinch warp, in pixels,
// positive values pulling the corner toward the image center. Order: top-left,
// top-right, bottom-right, bottom-left.
type CornerOffsets [4]float64

// Pinch applies a four-corner pinch distortion and guarantees the output has
// exactly the input dimensions:
//
//  1. pad the canvas by the image diagonal so no corner pull can clip content,
//  2. displace each corner toward/away from center by its clamped offset and
//     warp with a smooth corner-interpolated displacement field,
//  3. crop to the distorted content's bounding box,
//  4. scale to fit inside the original w×h (aspect preserved), apply the final
//     scale multiplier, and center on a bg-filled canvas of the original size.
func Pinch(offsets CornerOffsets, finalScale float64, bg color.Color) Op {
	return func(img image.Image) (image.Image, error) {
		b := img.Bounds()
		w, h := b.Dx(), b.Dy()

		// Corner pulls beyond half the short edge fold the image over itself.
		limit := float64(minInt(w, h))/2 - 1
		for i := range offsets {
			if offsets[i] > limit {
				offsets[i] = limit
			}
			if offsets[i] < -limit {
				offsets[i] = -limit
			}
		}

		pad := int(math.Ceil(math.Hypot(float64(w), float64(h))))
		canvas := imaging.New(w+2*pad, h+2*pad, bg)
		canvas = imaging.Paste(canvas, img, image.Pt(pad, pad))

		warped := warpCorners(canvas, image.Rect(pad, pad, pad+w, pad+h), offsets, bg)

		content := ContentBounds(warped, bg)
		if content.Empty() {
			content = warped.Bounds()
		}
		cropped := imaging.Crop(warped, content)

		fitted := imaging.Fit(cropped, w, h, imaging.Lanczos)
		if finalScale > 0 && finalScale != 1 {
			fb := fitted.Bounds()
			fitted = imaging.Resize(fitted,
				int(float64(fb.Dx())*finalScale), int(float64(fb.Dy())*finalScale), imaging.Lanczos)
		}

		out := imaging.New(w, h, bg)
		fb := fitted.Bounds()
		pos := image.Pt((w-fb.Dx())/2, (h-fb.Dy())/2)
		return imaging.Paste(out, fitted, pos), nil
	}
}

// warpCorners displaces the four corners of rect by offsets (toward center for
// positive values) and warps the whole canvas with a displacement field
// bilinearly interpolated between the corners. Inverse mapping with nearest
// sampling; pixels mapped from outside the canvas read bg.
func warpCorners(src *image.NRGBA, rect image.Rectangle, offsets CornerOffsets, bg color.Color) *image.NRGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := imaging.New(w, h, bg)

	cx := float64(rect.Min.X+rect.Max.X) / 2
	cy := float64(rect.Min.Y+rect.Max.Y) / 2

	// Displacement vector for each corner, pointing toward the rect center.
	corners := [4][2]float64{
		{float64(rect.Min.X), float64(rect.Min.Y)},
		{float64(rect.Max.X), float64(rect.Min.Y)},
		{float64(rect.Max.X), float64(rect.Max.Y)},
		{float64(rect.Min.X), float64(rect.Max.Y)},
	}
	var disp [4][2]float64
	for i, c := range corners {
		dx, dy := cx-c[0], cy-c[1]
		norm := math.Hypot(dx, dy)
		if norm == 0 {
			continue
		}
		disp[i][0] = dx / norm * offsets[i]
		disp[i][1] = dy / norm * offsets[i]
	}

	rw := float64(rect.Dx())
	rh := float64(rect.Dy())
	for y := 0; y < h; y++ {
		fy := (float64(y) - float64(rect.Min.Y)) / rh
		wy := clamp01(fy)
		for x := 0; x < w; x++ {
			fx := (float64(x) - float64(rect.Min.X)) / rw
			wx := clamp01(fx)

			// Bilinear blend of the four corner displacements.
			ddx := (1-wx)*(1-wy)*disp[0][0] + wx*(1-wy)*disp[1][0] +
				wx*wy*disp[2][0] + (1-wx)*wy*disp[3][0]
			ddy := (1-wx)*(1-wy)*disp[0][1] + wx*(1-wy)*disp[1][1] +
				wx*wy*disp[2][1] + (1-wx)*wy*disp[3][1]

			sx := int(math.Round(float64(x) - ddx))
			sy := int(math.Round(float64(y) - ddy))
			if sx < 0 || sy < 0 || sx >= w || sy >= h {
				continue
			}
			si := sy*src.Stride + sx*4
			di := y*dst.Stride + x*4
			copy(dst.Pix[di:di+4], src.Pix[si:si+4])
		}
	}
	return dst
}

// ContentBounds returns the bounding box of all pixels that differ from bg.
func ContentBounds(img image.Image, bg color.Color) image.Rectangle {
	br, bgG, bb, _ := bg.RGBA()
	b := img.Bounds()
	minX, minY := b.Max.X, b.Max.Y
	maxX, maxY := b.Min.X-1, b.Min.Y-1
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			if r != br || g != bgG || bl != bb {
				if x < minX {
					minX = x
				}
				if x > maxX {
					maxX = x
				}
				if y < minY {
					minY = y
				}
				if y > maxY {
					maxY = y
				}
			}
		}
	}
	if maxX < minX || maxY < minY {
		return image.Rectangle{}
	}
	return image.Rect(minX, minY, maxX+1, maxY+1)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
