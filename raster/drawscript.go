package raster

import (
	"image/color"

	"github.com/fogleman/gg"
)

// CmdKind selects the draw primitive.
type CmdKind int

const (
	CmdPoint CmdKind = iota
	CmdRect
)

// DrawCmd is one declarative drawing primitive. Rect commands use W/H;
// point commands plot a single pixel at X,Y.
type DrawCmd struct {
	Kind    CmdKind
	X, Y    int
	W, H    int
	Color   color.Color
	Opacity float64 // 0 defaults to fully opaque
}

// DrawScript is an ordered list of drawing primitives rendered onto a canvas
// in one pass.
type DrawScript struct {
	Cmds []DrawCmd
}

// Point appends a single-pixel mark.
func (s *DrawScript) Point(x, y int, c color.Color) {
	s.Cmds = append(s.Cmds, DrawCmd{Kind: CmdPoint, X: x, Y: y, Color: c})
}

// Rect appends a filled axis-aligned rectangle.
func (s *DrawScript) Rect(x, y, w, h int, c color.Color) {
	s.Cmds = append(s.Cmds, DrawCmd{Kind: CmdRect, X: x, Y: y, W: w, H: h, Color: c})
}

// RectOpacity appends a filled rectangle with explicit opacity in [0,1].
func (s *DrawScript) RectOpacity(x, y, w, h int, c color.Color, opacity float64) {
	s.Cmds = append(s.Cmds, DrawCmd{Kind: CmdRect, X: x, Y: y, W: w, H: h, Color: c, Opacity: opacity})
}

// Len reports the number of primitives in the script.
func (s *DrawScript) Len() int {
	return len(s.Cmds)
}

// Draw renders the script onto the image at src and writes dst. An empty
// script still round-trips the file so callers get a fresh output handle.
func (e *ImagingEngine) Draw(src, dst string, script *DrawScript) error {
	img, err := e.Load(src)
	if err != nil {
		return err
	}

	dc := gg.NewContextForImage(img)
	for _, cmd := range script.Cmds {
		opacity := cmd.Opacity
		if opacity <= 0 {
			opacity = 1
		}
		r, g, b, _ := cmd.Color.RGBA()
		dc.SetRGBA(float64(r)/0xffff, float64(g)/0xffff, float64(b)/0xffff, opacity)
		switch cmd.Kind {
		case CmdPoint:
			dc.SetPixel(cmd.X, cmd.Y)
		case CmdRect:
			dc.DrawRectangle(float64(cmd.X), float64(cmd.Y), float64(cmd.W), float64(cmd.H))
			dc.Fill()
		}
	}

	return e.Save(dc.Image(), dst)
}
