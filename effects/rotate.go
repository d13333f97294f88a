package effects

import (
	"fmt"
	"image/color"

	"github.com/scanforge/scanforge/raster"
)

// Mirror modes accepted in MirrorConfig.Modes.
const (
	MirrorVertical   = "vertical"
	MirrorHorizontal = "horizontal"
	MirrorBoth       = "both"
	MirrorRotate180  = "rotate180"
)

// MirrorConfig is the optional mirror sub-effect applied after rotation, with
// its own independent batch probability and a mode picked uniformly from
// Modes.
type MirrorConfig struct {
	Enabled     bool
	Probability float64
	Modes       []string
}

// RotateConfig parametrizes the rotate effect.
type RotateConfig struct {
	Probability float64
	Angle       Range // degrees
	Mirror      MirrorConfig
}

// Validate checks the rotate parameter set.
func (c RotateConfig) Validate() error {
	if err := ValidateProbability("rotate.probability", c.Probability); err != nil {
		return err
	}
	if err := c.Angle.Validate("rotate.angle"); err != nil {
		return err
	}
	if c.Mirror.Enabled {
		if err := ValidateProbability("rotate.mirror.probability", c.Mirror.Probability); err != nil {
			return err
		}
		for _, m := range c.Mirror.Modes {
			switch m {
			case MirrorVertical, MirrorHorizontal, MirrorBoth, MirrorRotate180:
			default:
				return fmt.Errorf("rotate.mirror.modes: unknown mode %q", m)
			}
		}
	}
	return nil
}

// Rotate rotates the page by an angle sampled uniformly from the configured
// range, about the image center with white background fill, and re-extends
// the canvas so output dimensions always equal the input's. The optional
// mirror sub-effect is gated independently and folded into the same transform
// call.
func Rotate(env *Env, src string, cfg RotateConfig) (string, error) {
	if env.Skip(cfg.Probability) {
		return src, nil
	}

	w, h, err := env.Engine.Size(src)
	if err != nil {
		return "", err
	}
	angle := cfg.Angle.Sample(env.Rand)

	ops := []raster.Op{
		raster.Rotate(angle, color.White),
		raster.FitCanvas(w, h, color.White),
	}

	if cfg.Mirror.Enabled && len(cfg.Mirror.Modes) > 0 && !env.Skip(cfg.Mirror.Probability) {
		mode := cfg.Mirror.Modes[env.Rand.Intn(len(cfg.Mirror.Modes))]
		switch mode {
		case MirrorVertical:
			ops = append(ops, raster.FlipV())
		case MirrorHorizontal:
			ops = append(ops, raster.FlipH())
		case MirrorBoth:
			ops = append(ops, raster.FlipH(), raster.FlipV())
		case MirrorRotate180:
			ops = append(ops, raster.Rotate180())
		}
		Logger.Debug("Mirroring page", "doc", env.DocBase, "mode", mode)
	}

	dst := env.StagePath("rotate")
	if err := env.Engine.Transform(src, dst, ops...); err != nil {
		return "", err
	}
	Logger.Debug("Rotated page", "doc", env.DocBase, "angle", angle)
	return env.swap(src, dst)
}
