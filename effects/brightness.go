package effects

import (
	"fmt"
	"image/color"

	"github.com/scanforge/scanforge/raster"
)

// Brightness modes.
const (
	BrightnessPercent = "percent" // midtone modulation by a percentage
	BrightnessLevels  = "levels"  // black/white level-point remap
	BrightnessOverlay = "overlay" // semi-transparent white wash
)

// BrightnessConfig parametrizes the brightness effect. The three modes are
// mutually exclusive and selected by Mode.
type BrightnessConfig struct {
	Probability float64
	Mode        string
	Percent     Range // percent mode: brightness delta in [-100,100]
	BlackPoint  int   // levels mode
	WhitePoint  int   // levels mode
	Opacity     Range // overlay mode: white wash opacity in [0,1]
}

// Validate checks the brightness parameter set.
func (c BrightnessConfig) Validate() error {
	if err := ValidateProbability("brightness.probability", c.Probability); err != nil {
		return err
	}
	switch c.Mode {
	case BrightnessPercent:
		return c.Percent.Validate("brightness.percent")
	case BrightnessLevels:
		if c.BlackPoint < 0 || c.WhitePoint > 255 || c.BlackPoint >= c.WhitePoint {
			return fmt.Errorf("brightness.levels: invalid points %d/%d", c.BlackPoint, c.WhitePoint)
		}
		return nil
	case BrightnessOverlay:
		if err := c.Opacity.Validate("brightness.opacity"); err != nil {
			return err
		}
		if c.Opacity.Min < 0 || c.Opacity.Max > 1 {
			return fmt.Errorf("brightness.opacity: range [%v,%v] outside [0,1]", c.Opacity.Min, c.Opacity.Max)
		}
		return nil
	default:
		return fmt.Errorf("brightness.mode: unknown mode %q", c.Mode)
	}
}

// Brighten lightens the page in one of three mutually exclusive ways: percent
// modulation, level-point remapping, or compositing a semi-transparent white
// rectangle whose opacity is sampled from the configured range.
func Brighten(env *Env, src string, cfg BrightnessConfig) (string, error) {
	if env.Skip(cfg.Probability) {
		return src, nil
	}

	var op raster.Op
	switch cfg.Mode {
	case BrightnessPercent:
		op = raster.Brightness(cfg.Percent.Sample(env.Rand))
	case BrightnessLevels:
		op = raster.Levels(uint8(cfg.BlackPoint), uint8(cfg.WhitePoint))
	case BrightnessOverlay:
		w, h, err := env.Engine.Size(src)
		if err != nil {
			return "", err
		}
		opacity := cfg.Opacity.Sample(env.Rand)
		dst := env.StagePath("brightness")
		script := &raster.DrawScript{}
		script.RectOpacity(0, 0, w, h, color.White, opacity)
		if err := env.Engine.Draw(src, dst, script); err != nil {
			return "", err
		}
		Logger.Debug("Brightness wash applied", "doc", env.DocBase, "opacity", opacity)
		return env.swap(src, dst)
	default:
		return "", fmt.Errorf("brightness: unknown mode %q", cfg.Mode)
	}

	dst := env.StagePath("brightness")
	if err := env.Engine.Transform(src, dst, op); err != nil {
		return "", err
	}
	Logger.Debug("Brightness applied", "doc", env.DocBase, "mode", cfg.Mode)
	return env.swap(src, dst)
}
