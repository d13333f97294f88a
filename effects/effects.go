// Package effects holds the per-effect modules of the degradation pipeline.
// Every effect follows the same contract: gate once on its batch probability,
// resolve ranged parameters with one uniform draw each, write a new
// stage-suffixed intermediate on success and release the consumed input
// through the arena. A skipped or no-op invocation returns the input handle
// untouched with no filesystem activity.
package effects

import (
	"fmt"
	"log/slog"
	"math/rand"
	"path/filepath"

	"github.com/scanforge/scanforge/raster"
)

// Logger is global since we will need it everywhere
var Logger *slog.Logger

// Env carries everything an effect invocation needs: the raster engine, the
// injected random source, the temp directory, the document base name used for
// stage-suffixed filenames, and the arena owning intermediate files.
type Env struct {
	Engine  raster.Engine
	Rand    *rand.Rand
	TempDir string
	DocBase string
	Files   *Arena
}

// StagePath builds the intermediate path for a stage. The
// <docbase>_<stage>.png convention is load-bearing: the arena and the cleanup
// pass both rely on it.
func (e *Env) StagePath(stage string) string {
	return filepath.Join(e.TempDir, e.DocBase+"_"+stage+".png")
}

// Skip draws the batch-gating sample: one uniform draw, skip when it exceeds
// the probability. A probability >= 1 always runs, <= 0 never runs.
func (e *Env) Skip(probability float64) bool {
	if probability >= 1 {
		return false
	}
	if probability <= 0 {
		return true
	}
	return e.Rand.Float64() > probability
}

// swap commits a completed stage: the new intermediate is tracked and the
// consumed input released exactly once through the arena.
func (e *Env) swap(old, new string) (string, error) {
	if err := e.Files.Replace(old, new); err != nil {
		return "", fmt.Errorf("releasing %s: %w", old, err)
	}
	return new, nil
}

// Range is a numeric parameter supplied either fixed (Min == Max) or as a
// min/max pair resolved with one uniform sample per invocation.
type Range struct {
	Min, Max float64
}

// Fixed reports whether the range collapses to a single value.
func (r Range) Fixed() bool {
	return r.Min == r.Max
}

// Sample draws one continuous uniform value from the range.
func (r Range) Sample(rng *rand.Rand) float64 {
	if r.Fixed() {
		return r.Min
	}
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

// SampleInt draws one integer uniform value from [Min, Max], floored.
func (r Range) SampleInt(rng *rand.Rand) int {
	lo, hi := int(r.Min), int(r.Max)
	if hi <= lo {
		return lo
	}
	return lo + rng.Intn(hi-lo+1)
}

// Validate checks the min <= max invariant, naming the parameter on failure.
func (r Range) Validate(name string) error {
	if r.Min > r.Max {
		return fmt.Errorf("%s: min %v exceeds max %v", name, r.Min, r.Max)
	}
	return nil
}

// ValidateProbability checks a probability-typed parameter lies in [0,1].
func ValidateProbability(name string, p float64) error {
	if p < 0 || p > 1 {
		return fmt.Errorf("%s: probability %v outside [0,1]", name, p)
	}
	return nil
}
