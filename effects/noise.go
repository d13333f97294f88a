package effects

import (
	"image/color"

	"github.com/scanforge/scanforge/raster"
)

// NoiseConfig parametrizes the single-pixel speckle effect.
type NoiseConfig struct {
	Probability float64
	Density     Range  // fraction of pixels to mark
	Color       string // "white" or "black"
}

// Validate checks the noise parameter set.
func (c NoiseConfig) Validate() error {
	if err := ValidateProbability("noise.probability", c.Probability); err != nil {
		return err
	}
	return c.Density.Validate("noise.density")
}

// Noise plots exactly floor(W*H*density) single-pixel marks at independent
// uniform positions via a draw-script. The count is deterministic given the
// dimensions and density; only positions consume randomness.
func Noise(env *Env, src string, cfg NoiseConfig) (string, error) {
	if env.Skip(cfg.Probability) {
		return src, nil
	}

	w, h, err := env.Engine.Size(src)
	if err != nil {
		return "", err
	}
	density := cfg.Density.Sample(env.Rand)
	count := int(float64(w*h) * density)
	if count < 1 {
		return src, nil
	}

	mark := color.Color(color.White)
	if cfg.Color == "black" {
		mark = color.Black
	}
	script := &raster.DrawScript{}
	for i := 0; i < count; i++ {
		script.Point(env.Rand.Intn(w), env.Rand.Intn(h), mark)
	}

	dst := env.StagePath("noise")
	if err := env.Engine.Draw(src, dst, script); err != nil {
		return "", err
	}
	Logger.Debug("Speckle noise applied", "doc", env.DocBase, "points", count)
	return env.swap(src, dst)
}
