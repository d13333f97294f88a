package effects

import (
	"image/color"

	"github.com/scanforge/scanforge/raster"
)

// DropoutConfig parametrizes the white-block dropout effect.
type DropoutConfig struct {
	Probability float64
	Coverage    float64 // fraction of the page area to blank out
	BlockSize   Range   // square block edge in pixels
}

// Validate checks the dropout parameter set.
func (c DropoutConfig) Validate() error {
	if err := ValidateProbability("dropout.probability", c.Probability); err != nil {
		return err
	}
	if c.Coverage < 0 || c.Coverage > 1 {
		return ValidateProbability("dropout.coverage", c.Coverage)
	}
	return c.BlockSize.Validate("dropout.blocksize")
}

// Dropout blanks floor(W*H*coverage / blockArea) opaque white squares at
// independent uniform positions. Overlap is accepted, not prevented. A
// computed count below one is a defined no-op: the input handle is returned
// unchanged and not deleted.
func Dropout(env *Env, src string, cfg DropoutConfig) (string, error) {
	if env.Skip(cfg.Probability) {
		return src, nil
	}

	w, h, err := env.Engine.Size(src)
	if err != nil {
		return "", err
	}
	size := cfg.BlockSize.SampleInt(env.Rand)
	if size < 1 {
		size = 1
	}
	count := int(float64(w*h) * cfg.Coverage / float64(size*size))
	if count < 1 {
		return src, nil
	}

	script := &raster.DrawScript{}
	for i := 0; i < count; i++ {
		x := env.Rand.Intn(maxInt(1, w-size+1))
		y := env.Rand.Intn(maxInt(1, h-size+1))
		script.Rect(x, y, size, size, color.White)
	}

	dst := env.StagePath("dropout")
	if err := env.Engine.Draw(src, dst, script); err != nil {
		return "", err
	}
	Logger.Debug("Dropout applied", "doc", env.DocBase, "blocks", count, "size", size)
	return env.swap(src, dst)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
