package effects

import (
	"github.com/scanforge/scanforge/raster"
)

// DitherConfig parametrizes a dithering stage. Both the ordered-raster stages
// and the error-diffusion stage use this shape; only the method differs.
type DitherConfig struct {
	Probability float64
	Method      string // see raster.DitherSpec
	Levels      int    // target gray levels; 0 means bilevel
}

// Validate checks the dither parameter set.
func (c DitherConfig) Validate() error {
	return ValidateProbability("dither.probability", c.Probability)
}

// Dither delegates straight to the engine's built-in quantizers; there is no
// per-pixel logic here beyond parameter passing. stage names the intermediate
// so the raster and diffusion passes keep distinct handles.
func Dither(env *Env, src, stage string, cfg DitherConfig) (string, error) {
	if env.Skip(cfg.Probability) {
		return src, nil
	}

	dst := env.StagePath(stage)
	if err := env.Engine.Dither(src, dst, raster.DitherSpec{Method: cfg.Method, Levels: cfg.Levels}); err != nil {
		return "", err
	}
	Logger.Debug("Dither applied", "doc", env.DocBase, "stage", stage, "method", cfg.Method)
	return env.swap(src, dst)
}
