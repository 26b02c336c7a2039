package prediction

import (
	"math"
	"time"

	"RugPull/internal/domain/models"
)

// FeatureEngine maintains per-round streaming statistics over the tick
// feed. Every update is O(1): rolling return moments come from a fixed
// ring buffer with running sums, trend state from exponential averages.
type FeatureEngine struct {
	params Params

	roundID  string
	tick     int
	lastPx   float64
	peak     float64
	peakTick int

	emaFast float64
	emaSlow float64

	rets   []float64
	retPos int
	retLen int
	sum    float64
	sumSq  float64

	upStreak   int
	downStreak int

	lastMean float64
	lastStd  float64
}

func NewFeatureEngine(params Params) *FeatureEngine {
	return &FeatureEngine{
		params: params,
		rets:   make([]float64, params.ReturnWindow),
	}
}

// Reset clears all rolling state for a new round.
func (f *FeatureEngine) Reset(roundID string) {
	f.roundID = roundID
	f.tick = 0
	f.lastPx = 0
	f.peak = 0
	f.peakTick = 0
	f.emaFast = 0
	f.emaSlow = 0
	f.retPos = 0
	f.retLen = 0
	f.sum = 0
	f.sumSq = 0
	f.upStreak = 0
	f.downStreak = 0
	f.lastMean = 0
	f.lastStd = 0
}

// Update folds one tick into the rolling state and returns the snapshot
// used by the hazard model. Prices at or below zero are clamped to the
// previous price so a malformed tick cannot poison the log returns.
func (f *FeatureEngine) Update(tick int, price float64) models.TickSnapshot {
	start := time.Now()

	if price <= 0 {
		if f.lastPx > 0 {
			price = f.lastPx
		} else {
			price = 1.0
		}
	}

	if f.lastPx == 0 {
		f.emaFast = price
		f.emaSlow = price
	} else {
		f.emaFast += f.params.EMAFastAlpha * (price - f.emaFast)
		f.emaSlow += f.params.EMASlowAlpha * (price - f.emaSlow)

		r := math.Log(price / f.lastPx)
		f.pushReturn(r)

		switch {
		case r > 0:
			f.upStreak++
			f.downStreak = 0
		case r < 0:
			f.downStreak++
			f.upStreak = 0
		}
	}

	if price > f.peak {
		f.peak = price
		f.peakTick = tick
	}

	f.lastPx = price
	f.tick = tick

	// The return moments are the optional tail of the feature set.
	// When the core updates have already exhausted this tick's budget,
	// reuse the last computed moments instead of recomputing; the flag
	// is per tick, so the next tick starts clean.
	degraded := time.Since(start) > f.params.FeatureBudget
	mean, std := f.lastMean, f.lastStd
	if !degraded {
		mean, std = f.retStats()
		f.lastMean, f.lastStd = mean, std
	}

	drawdown := 0.0
	distToPeak := 0.0
	if f.peak > 0 {
		drawdown = (f.peak - price) / f.peak
		distToPeak = price / f.peak
	}

	return models.TickSnapshot{
		RoundID:     f.roundID,
		Tick:        tick,
		Price:       price,
		Peak:        f.peak,
		EMAFast:     f.emaFast,
		EMASlow:     f.emaSlow,
		RetMean:     mean,
		RetStd:      std,
		UpStreak:    f.upStreak,
		DownStreak:  f.downStreak,
		Drawdown:    drawdown,
		DistToPeak:  distToPeak,
		SincePeak:   tick - f.peakTick,
		HazardScale: f.hazardScale(drawdown, distToPeak),
		Degraded:    degraded,
	}
}

func (f *FeatureEngine) pushReturn(r float64) {
	if f.retLen == len(f.rets) {
		old := f.rets[f.retPos]
		f.sum -= old
		f.sumSq -= old * old
	} else {
		f.retLen++
	}
	f.rets[f.retPos] = r
	f.sum += r
	f.sumSq += r * r
	f.retPos = (f.retPos + 1) % len(f.rets)
}

func (f *FeatureEngine) retStats() (mean, std float64) {
	if f.retLen == 0 {
		return 0, 0
	}
	n := float64(f.retLen)
	mean = f.sum / n
	variance := f.sumSq/n - mean*mean
	if variance > 0 {
		std = math.Sqrt(variance)
	}
	return mean, std
}

// hazardScale is a multiplicative adjustment applied to the baseline
// hazard. Sustained upward momentum and proximity to the running peak
// suppress the hazard, drawdowns and long down streaks raise it. The
// result is always clipped to the configured band.
func (f *FeatureEngine) hazardScale(drawdown, distToPeak float64) float64 {
	scale := 1.0
	if f.emaSlow > 0 && f.emaFast > f.emaSlow {
		scale *= 0.90
	}
	if f.upStreak >= 5 {
		scale *= 0.92
	}
	if distToPeak >= 0.97 && f.tick > 0 {
		scale *= 0.95
	}
	if f.downStreak >= 5 {
		scale *= 1.08
	}
	if drawdown > 0.25 {
		scale *= 1.15
	}
	return clamp(scale, f.params.HazardScaleMin, f.params.HazardScaleMax)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
