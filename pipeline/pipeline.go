// Package pipeline sequences the visual degradation effects over one filled
// page image at a time. The orchestrator owns the single mutable working
// handle, never gates probabilities itself (each stage's probability is
// consumed exactly once, inside the effect), and instruments the first
// document of every batch with per-stage snapshots.
package pipeline

import (
	"fmt"
	"image/color"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/scanforge/scanforge/effects"
	"github.com/scanforge/scanforge/raster"
)

// Logger is global since we will need it everywhere
var Logger *slog.Logger

// Stage names, used for temp-file suffixes and the debug exclusion list.
const (
	StageRender           = "render"
	StageWarp             = "warp"
	StageRotate           = "rotate"
	StageStripesWhite     = "stripeswhite"
	StageAlphaFlatten     = "flatten"
	StageGrayscale        = "grayscale"
	StageBrightness       = "brightness"
	StageBlur             = "blur"
	StageStripesBlack     = "stripesblack"
	StageRasterDither     = "rasterdither"
	StageDiffusionDither  = "diffusiondither"
	StageWhiteNoise       = "noise"
	StageStandaloneRaster = "standaloneraster"
	StageFinalThreshold   = "threshold"
	StageDropout          = "dropout"
	StageTileShift        = "tileshift"
	StageCompress         = "compress"
)

// Toggle pairs a stage enable flag with its effect probability.
type Toggle struct {
	Enabled bool
}

// Config is the full stage configuration for one run. Every stage is
// independently togglable; the per-effect configs carry their own batch
// probabilities and parameter ranges.
type Config struct {
	Warp             Toggle
	WarpCfg          effects.WarpConfig
	Rotate           Toggle
	RotateCfg        effects.RotateConfig
	StripesWhite     Toggle
	StripesWhiteCfg  effects.StripesWhiteConfig
	AlphaFlatten     Toggle
	Grayscale        Toggle
	Brightness       Toggle
	BrightnessCfg    effects.BrightnessConfig
	Blur             Toggle
	BlurSigma        effects.Range
	BlurProb         float64
	StripesBlack     Toggle
	StripesBlackCfg  effects.StripesBlackConfig
	RasterDither     Toggle
	RasterDitherCfg  effects.DitherConfig
	DiffusionDither  Toggle
	DiffusionCfg     effects.DitherConfig
	WhiteNoise       Toggle
	WhiteNoiseCfg    effects.NoiseConfig
	StandaloneRaster Toggle
	StandaloneCfg    effects.DitherConfig
	FinalThreshold   Toggle
	ThresholdLevel   int
	Dropout          Toggle
	DropoutCfg       effects.DropoutConfig
	TileShift        Toggle
	TileShiftCfg     effects.TileShiftConfig

	Compression string // "deflate" or "none"
}

// EnabledStages lists the enabled stage names in execution order.
func (c Config) EnabledStages() []string {
	pairs := []struct {
		name string
		on   Toggle
	}{
		{StageWarp, c.Warp},
		{StageRotate, c.Rotate},
		{StageStripesWhite, c.StripesWhite},
		{StageAlphaFlatten, c.AlphaFlatten},
		{StageGrayscale, c.Grayscale},
		{StageBrightness, c.Brightness},
		{StageBlur, c.Blur},
		{StageStripesBlack, c.StripesBlack},
		{StageRasterDither, c.RasterDither},
		{StageDiffusionDither, c.DiffusionDither},
		{StageWhiteNoise, c.WhiteNoise},
		{StageStandaloneRaster, c.StandaloneRaster},
		{StageFinalThreshold, c.FinalThreshold},
		{StageDropout, c.Dropout},
		{StageTileShift, c.TileShift},
	}
	var names []string
	for _, p := range pairs {
		if p.on.Enabled {
			names = append(names, p.name)
		}
	}
	return names
}

// Validate checks every enabled stage's parameter set and returns all
// problems at once so a misconfigured run fails fast with the full list.
func (c Config) Validate() []error {
	var errs []error
	check := func(on Toggle, err error) {
		if on.Enabled && err != nil {
			errs = append(errs, err)
		}
	}
	check(c.Warp, c.WarpCfg.Validate())
	check(c.Rotate, c.RotateCfg.Validate())
	check(c.StripesWhite, c.StripesWhiteCfg.Validate())
	check(c.Brightness, c.BrightnessCfg.Validate())
	if c.Blur.Enabled {
		if err := c.BlurSigma.Validate("blur.sigma"); err != nil {
			errs = append(errs, err)
		}
		if err := effects.ValidateProbability("blur.probability", c.BlurProb); err != nil {
			errs = append(errs, err)
		}
	}
	check(c.StripesBlack, c.StripesBlackCfg.Validate())
	check(c.RasterDither, c.RasterDitherCfg.Validate())
	check(c.DiffusionDither, c.DiffusionCfg.Validate())
	check(c.WhiteNoise, c.WhiteNoiseCfg.Validate())
	check(c.StandaloneRaster, c.StandaloneCfg.Validate())
	if c.FinalThreshold.Enabled && (c.ThresholdLevel < 0 || c.ThresholdLevel > 255) {
		errs = append(errs, fmt.Errorf("threshold.level: %d outside [0,255]", c.ThresholdLevel))
	}
	check(c.Dropout, c.DropoutCfg.Validate())
	check(c.TileShift, c.TileShiftCfg.Validate())
	if c.Compression != "" && c.Compression != CompressionDeflate && c.Compression != CompressionNone {
		errs = append(errs, fmt.Errorf("output.compression: unknown mode %q", c.Compression))
	}
	return errs
}

// RunContext replaces the old process-wide debug flag: it travels with one
// document through the pipeline and says whether this is the instrumented
// first document of the batch and which stages are excluded from snapshots.
type RunContext struct {
	Debug    bool
	Excluded map[string]bool
	DebugDir string
}

// ParseExclusions turns the comma-separated stage token list into a set.
func ParseExclusions(list string) map[string]bool {
	excluded := make(map[string]bool)
	for _, token := range strings.Split(list, ",") {
		token = strings.TrimSpace(strings.ToLower(token))
		if token != "" {
			excluded[token] = true
		}
	}
	return excluded
}

// Pipeline threads a working image handle through the fixed effect sequence.
type Pipeline struct {
	Engine  raster.Engine
	Rand    *rand.Rand
	Config  Config
	TempDir string
	OutDir  string
}

// New builds a pipeline with an injected seedable random source.
func New(engine raster.Engine, rng *rand.Rand, cfg Config, tempDir, outDir string) *Pipeline {
	return &Pipeline{Engine: engine, Rand: rng, Config: cfg, TempDir: tempDir, OutDir: outDir}
}

// stage is one resolved pipeline step.
type stage struct {
	name    string
	enabled bool
	apply   func(env *effects.Env, src string) (string, error)
}

func (p *Pipeline) stages() []stage {
	c := p.Config
	return []stage{
		{StageWarp, c.Warp.Enabled, func(env *effects.Env, src string) (string, error) {
			return effects.Warp(env, src, c.WarpCfg)
		}},
		{StageRotate, c.Rotate.Enabled, func(env *effects.Env, src string) (string, error) {
			return effects.Rotate(env, src, c.RotateCfg)
		}},
		{StageStripesWhite, c.StripesWhite.Enabled, func(env *effects.Env, src string) (string, error) {
			return effects.StripesWhite(env, src, c.StripesWhiteCfg)
		}},
		{StageAlphaFlatten, c.AlphaFlatten.Enabled, func(env *effects.Env, src string) (string, error) {
			return p.transformStage(env, src, StageAlphaFlatten, raster.Flatten(color.White))
		}},
		{StageGrayscale, c.Grayscale.Enabled, func(env *effects.Env, src string) (string, error) {
			return p.transformStage(env, src, StageGrayscale, raster.Grayscale())
		}},
		{StageBrightness, c.Brightness.Enabled, func(env *effects.Env, src string) (string, error) {
			return effects.Brighten(env, src, c.BrightnessCfg)
		}},
		{StageBlur, c.Blur.Enabled, func(env *effects.Env, src string) (string, error) {
			if env.Skip(c.BlurProb) {
				return src, nil
			}
			return p.transformStage(env, src, StageBlur, raster.Blur(c.BlurSigma.Sample(p.Rand)))
		}},
		{StageStripesBlack, c.StripesBlack.Enabled, func(env *effects.Env, src string) (string, error) {
			return effects.StripesBlack(env, src, c.StripesBlackCfg)
		}},
		{StageRasterDither, c.RasterDither.Enabled, func(env *effects.Env, src string) (string, error) {
			return effects.Dither(env, src, StageRasterDither, c.RasterDitherCfg)
		}},
		{StageDiffusionDither, c.DiffusionDither.Enabled, func(env *effects.Env, src string) (string, error) {
			return effects.Dither(env, src, StageDiffusionDither, c.DiffusionCfg)
		}},
		{StageWhiteNoise, c.WhiteNoise.Enabled, func(env *effects.Env, src string) (string, error) {
			return effects.Noise(env, src, c.WhiteNoiseCfg)
		}},
		{StageStandaloneRaster, c.StandaloneRaster.Enabled, func(env *effects.Env, src string) (string, error) {
			return effects.Dither(env, src, StageStandaloneRaster, c.StandaloneCfg)
		}},
		{StageFinalThreshold, c.FinalThreshold.Enabled, func(env *effects.Env, src string) (string, error) {
			return p.transformStage(env, src, StageFinalThreshold, raster.Threshold(uint8(c.ThresholdLevel)))
		}},
		{StageDropout, c.Dropout.Enabled, func(env *effects.Env, src string) (string, error) {
			return effects.Dropout(env, src, c.DropoutCfg)
		}},
		{StageTileShift, c.TileShift.Enabled, func(env *effects.Env, src string) (string, error) {
			return effects.TileShift(env, src, c.TileShiftCfg)
		}},
	}
}

// transformStage runs an unconditional engine transform as a pipeline stage
// with the usual handle replacement.
func (p *Pipeline) transformStage(env *effects.Env, src, name string, ops ...raster.Op) (string, error) {
	dst := env.StagePath(name)
	if err := p.Engine.Transform(src, dst, ops...); err != nil {
		return "", err
	}
	if err := env.Files.Replace(src, dst); err != nil {
		return "", err
	}
	return dst, nil
}

// Process runs one rendered page image through the full effect sequence and
// compresses the result into the output directory. workingImage must already
// be the <docbase>_render.png intermediate in the temp dir; the pipeline
// takes ownership of it. Any stage failure abandons the document and sweeps
// its intermediates.
func (p *Pipeline) Process(workingImage, docBase string, run RunContext) (string, error) {
	arena := effects.NewArena()
	arena.Track(workingImage)
	defer arena.Close()

	env := &effects.Env{
		Engine:  p.Engine,
		Rand:    p.Rand,
		TempDir: p.TempDir,
		DocBase: docBase,
		Files:   arena,
	}

	current := workingImage
	p.snapshot(run, StageRender, current)

	for _, st := range p.stages() {
		if !st.enabled {
			continue
		}
		next, err := st.apply(env, current)
		if err != nil {
			return "", fmt.Errorf("stage %s: %w", st.name, err)
		}
		if next != current {
			Logger.Debug("Stage produced new handle", "doc", docBase, "stage", st.name)
		}
		current = next
		p.snapshot(run, st.name, current)
	}

	outPath := filepath.Join(p.OutDir, docBase+".tif")
	if err := Compress(p.Engine, current, outPath, p.Config.Compression); err != nil {
		return "", fmt.Errorf("stage %s: %w", StageCompress, err)
	}
	p.snapshot(run, StageCompress, outPath)

	// Compression succeeded; drop the last intermediate immediately.
	if err := arena.Release(current); err != nil {
		return "", err
	}
	return outPath, nil
}

// snapshot copies the current working image into the debug directory for the
// instrumented document, unless the stage is excluded. Excluded stages still
// execute; only the snapshot and log line are suppressed.
func (p *Pipeline) snapshot(run RunContext, stageName, path string) {
	if !run.Debug || run.Excluded[stageName] {
		return
	}
	name := fmt.Sprintf("%s_%s_%s", time.Now().Format("20060102T150405.000"), stageName, filepath.Base(path))
	dst := filepath.Join(run.DebugDir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		Logger.Warn("Unable to read working image for debug snapshot", "stage", stageName, "error", err)
		return
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		Logger.Warn("Unable to write debug snapshot", "stage", stageName, "error", err)
		return
	}
	Logger.Info("Debug snapshot written", "stage", stageName, "snapshot", dst)
}
