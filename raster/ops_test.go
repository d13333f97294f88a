package raster

import (
	"image"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
)

func TestMain(m *testing.M) {
	Logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
	os.Exit(m.Run())
}

func apply(t *testing.T, op Op, img image.Image) image.Image {
	t.Helper()
	out, err := op(img)
	if err != nil {
		t.Fatalf("Op failed: %v", err)
	}
	return out
}

func grayAt(img image.Image, x, y int) uint8 {
	r, _, _, _ := img.At(x, y).RGBA()
	return uint8(r >> 8)
}

func TestFitCanvas_PadsSmallerImage(t *testing.T) {
	small := imaging.New(40, 30, color.Black)
	out := apply(t, FitCanvas(100, 80, color.White), small)
	b := out.Bounds()
	if b.Dx() != 100 || b.Dy() != 80 {
		t.Fatalf("Expected 100x80, got %dx%d", b.Dx(), b.Dy())
	}
	if grayAt(out, 0, 0) != 255 {
		t.Error("Expected white fill in the padded corner")
	}
	if grayAt(out, 50, 40) != 0 {
		t.Error("Expected original content centered on the canvas")
	}
}

func TestFitCanvas_CropsLargerImage(t *testing.T) {
	big := imaging.New(200, 160, color.Black)
	out := apply(t, FitCanvas(100, 80, color.White), big)
	b := out.Bounds()
	if b.Dx() != 100 || b.Dy() != 80 {
		t.Fatalf("Expected 100x80, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestRotateThenFitCanvas_RestoresDimensions(t *testing.T) {
	src := imaging.New(120, 90, color.White)
	rotated := apply(t, Rotate(7.5, color.White), src)
	if rb := rotated.Bounds(); rb.Dx() <= 120 || rb.Dy() <= 90 {
		t.Fatalf("Expected rotation to grow the canvas, got %dx%d", rb.Dx(), rb.Dy())
	}
	out := apply(t, FitCanvas(120, 90, color.White), rotated)
	if b := out.Bounds(); b.Dx() != 120 || b.Dy() != 90 {
		t.Errorf("Expected 120x90 after refit, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestThreshold_ProducesBilevel(t *testing.T) {
	src := imaging.New(10, 10, color.Gray{Y: 128})
	for y := 0; y < 10; y++ {
		src.Set(0, y, color.Gray{Y: 40})
	}
	out := apply(t, Threshold(100), src)
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			v := grayAt(out, x, y)
			if v != 0 && v != 255 {
				t.Fatalf("Pixel (%d,%d) is %d, expected pure black or white", x, y, v)
			}
		}
	}
	if grayAt(out, 0, 0) != 0 {
		t.Error("Dark column should threshold to black")
	}
	if grayAt(out, 5, 5) != 255 {
		t.Error("Mid gray above level should threshold to white")
	}
}

func TestLevels_RemapsEndpoints(t *testing.T) {
	src := imaging.New(3, 1, color.White)
	src.Set(0, 0, color.Gray{Y: 20})  // at or below black point
	src.Set(1, 0, color.Gray{Y: 128}) // stretches linearly
	src.Set(2, 0, color.Gray{Y: 240}) // at or above white point

	out := apply(t, Levels(20, 240), src)
	if v := grayAt(out, 0, 0); v != 0 {
		t.Errorf("Black point pixel is %d, expected 0", v)
	}
	if v := grayAt(out, 2, 0); v != 255 {
		t.Errorf("White point pixel is %d, expected 255", v)
	}
	if v := grayAt(out, 1, 0); v <= 100 || v >= 160 {
		t.Errorf("Midtone pixel is %d, expected a linear stretch near 125", v)
	}
}

func TestPinch_PreservesDimensions(t *testing.T) {
	src := imaging.New(90, 120, color.White)
	for y := 30; y < 90; y++ {
		for x := 20; x < 70; x++ {
			src.Set(x, y, color.Black)
		}
	}
	out := apply(t, Pinch(CornerOffsets{10, 4, 8, 6}, 0.97, color.White), src)
	if b := out.Bounds(); b.Dx() != 90 || b.Dy() != 120 {
		t.Errorf("Expected 90x120, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestContentBounds_FindsInk(t *testing.T) {
	src := imaging.New(50, 50, color.White)
	src.Set(10, 12, color.Black)
	src.Set(30, 40, color.Black)

	bounds := ContentBounds(src, color.White)
	if bounds.Min.X > 10 || bounds.Min.Y > 12 {
		t.Errorf("Bounds %v exclude the first mark", bounds)
	}
	if bounds.Max.X < 31 || bounds.Max.Y < 41 {
		t.Errorf("Bounds %v exclude the second mark", bounds)
	}
}

func TestContentBounds_BlankPageIsEmpty(t *testing.T) {
	src := imaging.New(20, 20, color.White)
	if bounds := ContentBounds(src, color.White); !bounds.Empty() {
		t.Errorf("Expected empty bounds for a blank page, got %v", bounds)
	}
}

func TestDrawScript_Primitives(t *testing.T) {
	var script DrawScript
	script.Point(3, 4, color.Black)
	script.Rect(10, 10, 5, 5, color.Black)
	script.RectOpacity(20, 20, 4, 4, color.White, 0.5)
	if script.Len() != 3 {
		t.Fatalf("Expected 3 commands, got %d", script.Len())
	}
	if script.Cmds[2].Opacity != 0.5 {
		t.Errorf("Expected opacity 0.5, got %v", script.Cmds[2].Opacity)
	}
}

func TestDraw_AppliesScript(t *testing.T) {
	engine := NewImagingEngine()
	dir := t.TempDir()
	src := filepath.Join(dir, "src.png")
	dst := filepath.Join(dir, "dst.png")
	if err := engine.Save(imaging.New(30, 30, color.White), src); err != nil {
		t.Fatalf("Failed to write source image: %v", err)
	}

	var script DrawScript
	script.Rect(5, 5, 10, 10, color.Black)
	if err := engine.Draw(src, dst, &script); err != nil {
		t.Fatalf("Draw failed: %v", err)
	}

	out, err := engine.Load(dst)
	if err != nil {
		t.Fatalf("Failed to load output: %v", err)
	}
	if v := grayAt(out, 8, 8); v != 0 {
		t.Errorf("Expected black inside the rectangle, got %d", v)
	}
	if v := grayAt(out, 25, 25); v != 255 {
		t.Errorf("Expected untouched white outside the rectangle, got %d", v)
	}
}

func TestTransform_RoundTripsFile(t *testing.T) {
	engine := NewImagingEngine()
	dir := t.TempDir()
	src := filepath.Join(dir, "src.png")
	dst := filepath.Join(dir, "dst.png")
	if err := engine.Save(imaging.New(64, 48, color.Gray{Y: 200}), src); err != nil {
		t.Fatalf("Failed to write source image: %v", err)
	}

	if err := engine.Transform(src, dst, Grayscale(), Threshold(128)); err != nil {
		t.Fatalf("Transform failed: %v", err)
	}

	w, h, err := engine.Size(dst)
	if err != nil {
		t.Fatalf("Size failed: %v", err)
	}
	if w != 64 || h != 48 {
		t.Errorf("Expected 64x48 output, got %dx%d", w, h)
	}
}

func TestTransform_MissingSourceFails(t *testing.T) {
	engine := NewImagingEngine()
	dst := filepath.Join(t.TempDir(), "dst.png")
	if err := engine.Transform(filepath.Join(t.TempDir(), "nope.png"), dst, Grayscale()); err == nil {
		t.Error("Expected error for missing source image")
	}
	if _, err := os.Stat(dst); !os.IsNotExist(err) {
		t.Error("Expected no partial output on failure")
	}
}

func TestDither_UnknownMethodFails(t *testing.T) {
	engine := NewImagingEngine()
	dir := t.TempDir()
	src := filepath.Join(dir, "src.png")
	if err := engine.Save(imaging.New(8, 8, color.Gray{Y: 128}), src); err != nil {
		t.Fatalf("Failed to write source image: %v", err)
	}
	if err := engine.Dither(src, filepath.Join(dir, "dst.png"), DitherSpec{Method: "halftone"}); err == nil {
		t.Error("Expected error for unknown dither method")
	}
}
