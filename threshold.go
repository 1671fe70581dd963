package inview

import (
	"math"
	"slices"
	"sync"

	"go.uber.org/zap"
)

const DefaultRootMargin = "0px"

// DefaultThreshold fires as soon as a single pixel is visible.
var DefaultThreshold = []float64{0}

var (
	defaultsMu sync.RWMutex
	defaults   = Defaults{RootMargin: DefaultRootMargin, Threshold: DefaultThreshold}
)

// Defaults fill in options a caller leaves empty.
type Defaults struct {
	RootMargin string
	Threshold  []float64
}

// SetDefaults replaces the process-wide defaults. Empty fields fall back to
// DefaultRootMargin and DefaultThreshold.
func SetDefaults(d Defaults) {
	if d.RootMargin == "" {
		d.RootMargin = DefaultRootMargin
	}
	d.Threshold = NormalizeThresholds(d.Threshold)

	defaultsMu.Lock()
	defaults = d
	defaultsMu.Unlock()
}

func CurrentDefaults() Defaults {
	defaultsMu.RLock()
	defer defaultsMu.RUnlock()

	return Defaults{
		RootMargin: defaults.RootMargin,
		Threshold:  slices.Clone(defaults.Threshold),
	}
}

// NormalizeThresholds sorts and de-duplicates the thresholds, dropping NaN and
// anything outside [0,1]. An empty result becomes DefaultThreshold.
func NormalizeThresholds(thresholds []float64) []float64 {
	out := make([]float64, 0, len(thresholds))

	for _, t := range thresholds {
		if math.IsNaN(t) || t < 0 || t > 1 {
			logger().Warn("inview: threshold out of range, ignoring", zap.Float64("threshold", t))
			continue
		}
		out = append(out, t)
	}

	if len(out) == 0 {
		return slices.Clone(DefaultThreshold)
	}

	slices.Sort(out)
	return slices.Compact(out)
}

// crossed reports whether the ratio reaches at least one threshold.
func crossed(ratio float64, thresholds []float64) bool {
	if len(thresholds) == 0 {
		thresholds = DefaultThreshold
	}

	return slices.ContainsFunc(thresholds, func(t float64) bool {
		return ratio >= t
	})
}
