package effects

import (
	"image/color"

	"github.com/scanforge/scanforge/raster"
)

// WarpConfig parametrizes the four-corner pinch warp.
type WarpConfig struct {
	Probability float64
	Offset      Range   // per-corner pull in pixels, sampled per corner
	FinalScale  float64 // multiplier applied after fit, 0 or 1 disables
}

// Validate checks the warp parameter set.
func (c WarpConfig) Validate() error {
	if err := ValidateProbability("warp.probability", c.Probability); err != nil {
		return err
	}
	return c.Offset.Validate("warp.offset")
}

// Warp simulates lens/physical distortion with a four-corner pinch. Each
// corner's pull is sampled independently from the offset range; the raster op
// guarantees the result keeps the input dimensions regardless of warp
// strength.
func Warp(env *Env, src string, cfg WarpConfig) (string, error) {
	if env.Skip(cfg.Probability) {
		return src, nil
	}

	var offsets raster.CornerOffsets
	for i := range offsets {
		offsets[i] = cfg.Offset.Sample(env.Rand)
	}

	dst := env.StagePath("warp")
	if err := env.Engine.Transform(src, dst, raster.Pinch(offsets, cfg.FinalScale, color.White)); err != nil {
		return "", err
	}
	Logger.Debug("Warped page", "doc", env.DocBase, "offsets", offsets)
	return env.swap(src, dst)
}
