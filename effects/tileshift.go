package effects

import (
	"image"

	"github.com/scanforge/scanforge/raster"
)

// TileShiftConfig parametrizes the tile displacement effect.
type TileShiftConfig struct {
	Probability  float64
	Count        Range // number of tiles
	SizeBase     int   // minimum tile edge in pixels
	SizeVar      int   // extra edge pixels, uniform in [0, SizeVar]
	OffsetBase   int   // minimum displacement
	OffsetJitter int   // extra displacement, uniform in [0, OffsetJitter]
}

// Validate checks the tile-shift parameter set.
func (c TileShiftConfig) Validate() error {
	if err := ValidateProbability("tileshift.probability", c.Probability); err != nil {
		return err
	}
	return c.Count.Validate("tileshift.count")
}

// TileShift copies random square tiles and pastes each back displaced from
// its source position, clamped so the paste never exceeds canvas bounds. The
// pastes composite sequentially over the accumulating image; an alpha channel
// is ensured first.
func TileShift(env *Env, src string, cfg TileShiftConfig) (string, error) {
	if env.Skip(cfg.Probability) {
		return src, nil
	}

	w, h, err := env.Engine.Size(src)
	if err != nil {
		return "", err
	}
	count := cfg.Count.SampleInt(env.Rand)
	if count < 1 {
		return src, nil
	}

	ops := []raster.Op{raster.EnsureAlpha()}
	for i := 0; i < count; i++ {
		size := cfg.SizeBase
		if cfg.SizeVar > 0 {
			size += env.Rand.Intn(cfg.SizeVar + 1)
		}
		if size >= w || size >= h {
			size = minInt(w, h) - 1
		}
		if size < 1 {
			continue
		}

		sx := env.Rand.Intn(w - size)
		sy := env.Rand.Intn(h - size)

		dx := cfg.OffsetBase
		dy := cfg.OffsetBase
		if cfg.OffsetJitter > 0 {
			dx += env.Rand.Intn(cfg.OffsetJitter + 1)
			dy += env.Rand.Intn(cfg.OffsetJitter + 1)
		}
		if env.Rand.Intn(2) == 0 {
			dx = -dx
		}
		if env.Rand.Intn(2) == 0 {
			dy = -dy
		}

		px := clampInt(sx+dx, 0, w-size)
		py := clampInt(sy+dy, 0, h-size)

		ops = append(ops, raster.PasteRegion(
			image.Rect(sx, sy, sx+size, sy+size),
			image.Pt(px, py),
		))
	}
	if len(ops) == 1 {
		return src, nil
	}

	dst := env.StagePath("tileshift")
	if err := env.Engine.Transform(src, dst, ops...); err != nil {
		return "", err
	}
	Logger.Debug("Tile shift applied", "doc", env.DocBase, "tiles", count)
	return env.swap(src, dst)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
