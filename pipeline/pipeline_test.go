package pipeline

import (
	"image/color"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/scanforge/scanforge/effects"
	"github.com/scanforge/scanforge/raster"
)

func TestMain(m *testing.M) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
	Logger = logger
	effects.Logger = logger
	raster.Logger = logger
	os.Exit(m.Run())
}

// minimalConfig enables only the always-on structural stages so tests can
// switch individual effects on deliberately.
func minimalConfig() Config {
	return Config{
		AlphaFlatten:   Toggle{Enabled: true},
		Grayscale:      Toggle{Enabled: true},
		FinalThreshold: Toggle{Enabled: true},
		ThresholdLevel: 128,
		Compression:    CompressionNone,
	}
}

func writeWorkingImage(t *testing.T, tempDir, docBase string, w, h int, fill color.Color) string {
	t.Helper()
	path := filepath.Join(tempDir, docBase+"_"+StageRender+".png")
	if err := imaging.Save(imaging.New(w, h, fill), path); err != nil {
		t.Fatalf("Failed to write working image: %v", err)
	}
	return path
}

func newTestPipeline(t *testing.T, cfg Config, seed int64) (*Pipeline, string, string) {
	t.Helper()
	tempDir := t.TempDir()
	outDir := t.TempDir()
	pl := New(raster.NewImagingEngine(), rand.New(rand.NewSource(seed)), cfg, tempDir, outDir)
	return pl, tempDir, outDir
}

func TestProcess_ProducesOutputAndCleansTemp(t *testing.T) {
	pl, tempDir, outDir := newTestPipeline(t, minimalConfig(), 1)
	working := writeWorkingImage(t, tempDir, "claim_A", 100, 120, color.White)

	outPath, err := pl.Process(working, "claim_A", RunContext{})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if outPath != filepath.Join(outDir, "claim_A.tif") {
		t.Errorf("Unexpected output path %s", outPath)
	}
	if _, err := os.Stat(outPath); err != nil {
		t.Errorf("Output artifact missing: %v", err)
	}

	// Every intermediate including the render handle must be gone.
	entries, err := os.ReadDir(tempDir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected empty temp dir after Process, found %d entries", len(entries))
	}
}

func TestProcess_MissingInputFails(t *testing.T) {
	pl, tempDir, _ := newTestPipeline(t, minimalConfig(), 1)

	_, err := pl.Process(filepath.Join(tempDir, "claim_missing_render.png"), "claim_missing", RunContext{})
	if err == nil {
		t.Fatal("Expected error for missing working image")
	}
}

func TestProcess_StageErrorSweepsIntermediates(t *testing.T) {
	cfg := minimalConfig()
	cfg.RasterDither = Toggle{Enabled: true}
	cfg.RasterDitherCfg = effects.DitherConfig{Probability: 1, Method: "nosuchmethod"}

	pl, tempDir, _ := newTestPipeline(t, cfg, 1)
	working := writeWorkingImage(t, tempDir, "claim_B", 60, 60, color.White)

	_, err := pl.Process(working, "claim_B", RunContext{})
	if err == nil {
		t.Fatal("Expected stage error to surface")
	}

	entries, readErr := os.ReadDir(tempDir)
	if readErr != nil {
		t.Fatalf("ReadDir failed: %v", readErr)
	}
	if len(entries) != 0 {
		t.Errorf("Expected abandoned document's intermediates swept, found %d entries", len(entries))
	}
}

func TestProcess_FixedSeedIsIdempotent(t *testing.T) {
	cfg := minimalConfig()
	cfg.Rotate = Toggle{Enabled: true}
	cfg.RotateCfg = effects.RotateConfig{Probability: 1, Angle: effects.Range{Min: -3, Max: 3}}
	cfg.Dropout = Toggle{Enabled: true}
	cfg.DropoutCfg = effects.DropoutConfig{Probability: 1, Coverage: 0.02, BlockSize: effects.Range{Min: 5, Max: 5}}
	cfg.WhiteNoise = Toggle{Enabled: true}
	cfg.WhiteNoiseCfg = effects.NoiseConfig{Probability: 1, Density: effects.Range{Min: 0.003, Max: 0.003}, Color: "black"}

	run := func(seed int64) []byte {
		pl, tempDir, _ := newTestPipeline(t, cfg, seed)
		working := writeWorkingImage(t, tempDir, "claim_C", 90, 90, color.White)
		outPath, err := pl.Process(working, "claim_C", RunContext{})
		if err != nil {
			t.Fatalf("Process failed: %v", err)
		}
		data, err := os.ReadFile(outPath)
		if err != nil {
			t.Fatalf("ReadFile failed: %v", err)
		}
		return data
	}

	first := run(42)
	second := run(42)
	if len(first) != len(second) {
		t.Fatalf("Same seed produced different output sizes: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("Same seed produced different output bytes at offset %d", i)
		}
	}
}

func TestProcess_DebugSnapshotsWritten(t *testing.T) {
	pl, tempDir, _ := newTestPipeline(t, minimalConfig(), 1)
	debugDir := t.TempDir()
	working := writeWorkingImage(t, tempDir, "claim_D", 50, 50, color.White)

	run := RunContext{Debug: true, Excluded: ParseExclusions(StageGrayscale), DebugDir: debugDir}
	if _, err := pl.Process(working, "claim_D", run); err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	entries, err := os.ReadDir(debugDir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("Expected debug snapshots, found none")
	}
	for _, entry := range entries {
		if strings.Contains(entry.Name(), "_"+StageGrayscale+"_") {
			t.Errorf("Excluded stage snapshot written: %s", entry.Name())
		}
	}
}

func TestParseExclusions(t *testing.T) {
	excluded := ParseExclusions(" Rotate, blur ,,NOISE ")
	for _, want := range []string{"rotate", "blur", "noise"} {
		if !excluded[want] {
			t.Errorf("Expected %q excluded", want)
		}
	}
	if len(excluded) != 3 {
		t.Errorf("Expected 3 exclusions, got %d", len(excluded))
	}
}

func TestConfig_EnabledStagesOrder(t *testing.T) {
	cfg := minimalConfig()
	cfg.Warp = Toggle{Enabled: true}
	cfg.TileShift = Toggle{Enabled: true}

	stages := cfg.EnabledStages()
	if len(stages) == 0 || stages[0] != StageWarp {
		t.Errorf("Expected warp first, got %v", stages)
	}
	if stages[len(stages)-1] != StageTileShift {
		t.Errorf("Expected tileshift last, got %v", stages)
	}
}

func TestConfig_ValidateCollectsAllErrors(t *testing.T) {
	cfg := Config{
		Warp:        Toggle{Enabled: true},
		WarpCfg:     effects.WarpConfig{Probability: 2},
		Dropout:     Toggle{Enabled: true},
		DropoutCfg:  effects.DropoutConfig{Probability: -1},
		Compression: "gzip",
	}

	errs := cfg.Validate()
	if len(errs) < 3 {
		t.Errorf("Expected at least 3 validation errors, got %d: %v", len(errs), errs)
	}
}

func TestConfig_DisabledStagesNotValidated(t *testing.T) {
	cfg := Config{
		Warp:        Toggle{Enabled: false},
		WarpCfg:     effects.WarpConfig{Probability: 2},
		Compression: CompressionDeflate,
	}

	if errs := cfg.Validate(); len(errs) != 0 {
		t.Errorf("Expected disabled stage to skip validation, got: %v", errs)
	}
}
