package effects

import (
	"image"
	"math"

	"github.com/scanforge/scanforge/raster"
)

// StripesBlackConfig parametrizes the black speckle-cluster effect.
type StripesBlackConfig struct {
	Probability  float64
	Clusters     Range   // number of clusters
	RegionSize   Range   // cluster region edge in pixels
	Points       Range   // candidate points per cluster
	Keep         float64 // stochastic keep probability per candidate
	ScanlineStep int     // keep only every Nth row; <2 disables
	Smear        bool    // directional motion-blur smear
	SmearLen     Range   // smear length bounds in pixels
}

// Validate checks the stripes-black parameter set.
func (c StripesBlackConfig) Validate() error {
	if err := ValidateProbability("stripesblack.probability", c.Probability); err != nil {
		return err
	}
	if err := ValidateProbability("stripesblack.keep", c.Keep); err != nil {
		return err
	}
	for name, r := range map[string]Range{
		"stripesblack.clusters":   c.Clusters,
		"stripesblack.regionsize": c.RegionSize,
		"stripesblack.points":     c.Points,
		"stripesblack.smearlen":   c.SmearLen,
	} {
		if err := r.Validate(name); err != nil {
			return err
		}
	}
	return nil
}

// StripesBlack scatters toner-band style speckle clusters over the page. Each
// cluster is a Box-Muller gaussian cloud inside a rectangular region with
// edge-fade weighting, optional scan-line masking and an optional directional
// smear whose length grows as the cluster nears the image center. Clusters
// composite sequentially onto the accumulating image.
func StripesBlack(env *Env, src string, cfg StripesBlackConfig) (string, error) {
	if env.Skip(cfg.Probability) {
		return src, nil
	}

	w, h, err := env.Engine.Size(src)
	if err != nil {
		return "", err
	}
	clusters := cfg.Clusters.SampleInt(env.Rand)
	if clusters < 1 {
		return src, nil
	}

	ops := make([]raster.Op, 0, clusters+1)
	ops = append(ops, raster.EnsureAlpha())
	for i := 0; i < clusters; i++ {
		region := cfg.RegionSize.SampleInt(env.Rand)
		if region < 4 {
			region = 4
		}
		if region > minInt(w, h) {
			region = minInt(w, h)
		}
		rx := env.Rand.Intn(maxInt(1, w-region+1))
		ry := env.Rand.Intn(maxInt(1, h-region+1))

		smear := 0
		if cfg.Smear {
			smear = smearLength(env, rx+region/2, ry+region/2, w, h, cfg.SmearLen)
		}

		overlay := buildCluster(env, region, cfg, smear)
		ops = append(ops, raster.OverlayImage(overlay, image.Pt(rx, ry), 1.0))
	}

	dst := env.StagePath("stripesblack")
	if err := env.Engine.Transform(src, dst, ops...); err != nil {
		return "", err
	}
	Logger.Debug("Black stripes applied", "doc", env.DocBase, "clusters", clusters)
	return env.swap(src, dst)
}

// buildCluster renders one speckle cloud into a transparent region-sized
// overlay. Candidates are gaussian-distributed about the region center;
// each survives the edge-fade weight (1-max(|dx|,|dy|))^2 times the keep
// probability, and optionally only on every Nth scanline.
func buildCluster(env *Env, region int, cfg StripesBlackConfig, smear int) *image.NRGBA {
	overlay := image.NewNRGBA(image.Rect(0, 0, region, region))
	points := cfg.Points.SampleInt(env.Rand)
	half := float64(region) / 2

	for p := 0; p < points; p++ {
		gx, gy := boxMuller(env)
		x := int(half + gx*half/2)
		y := int(half + gy*half/2)
		if x < 0 || y < 0 || x >= region || y >= region {
			continue
		}
		if cfg.ScanlineStep > 1 && y%cfg.ScanlineStep != 0 {
			continue
		}

		// Edge fade: normalized distance from center on the dominant axis.
		dx := math.Abs(float64(x)-half) / half
		dy := math.Abs(float64(y)-half) / half
		weight := 1 - math.Max(dx, dy)
		weight *= weight
		if env.Rand.Float64() > weight*cfg.Keep {
			continue
		}

		setBlack(overlay, x, y, 255)
		for s := 1; s <= smear; s++ {
			if x+s >= region {
				break
			}
			// Alpha decays along the smear tail.
			setBlack(overlay, x+s, y, uint8(255*(smear-s)/smear))
		}
	}
	return overlay
}

// smearLength maps a cluster center to a smear length inversely related to
// its distance from the image center: closer to center means a longer smear,
// clamped to the configured bounds.
func smearLength(env *Env, cx, cy, w, h int, bounds Range) int {
	maxDist := math.Hypot(float64(w)/2, float64(h)/2)
	dist := math.Hypot(float64(cx)-float64(w)/2, float64(cy)-float64(h)/2)
	frac := 1 - dist/maxDist
	length := bounds.Min + frac*(bounds.Max-bounds.Min)
	if length < bounds.Min {
		length = bounds.Min
	}
	if length > bounds.Max {
		length = bounds.Max
	}
	return int(length)
}

// boxMuller draws one standard gaussian pair via the Box-Muller transform.
func boxMuller(env *Env) (float64, float64) {
	u1 := env.Rand.Float64()
	for u1 == 0 {
		u1 = env.Rand.Float64()
	}
	u2 := env.Rand.Float64()
	r := math.Sqrt(-2 * math.Log(u1))
	return r * math.Cos(2*math.Pi*u2), r * math.Sin(2*math.Pi*u2)
}

func setBlack(img *image.NRGBA, x, y int, alpha uint8) {
	i := img.PixOffset(x, y)
	if existing := img.Pix[i+3]; existing >= alpha {
		return
	}
	img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 0, 0, 0, alpha
}
