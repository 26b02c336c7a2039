package prediction

import (
	"math"
	"testing"
)

func TestFeatureEngineRollingStats(t *testing.T) {
	params := DefaultParams()
	params.ReturnWindow = 4
	f := NewFeatureEngine(params)
	f.Reset("r1")

	prices := []float64{1.0, 1.1, 1.3, 1.2, 1.5, 1.4, 1.6, 1.7}
	var snapMean, snapStd float64
	for i, p := range prices {
		snap := f.Update(i, p)
		snapMean, snapStd = snap.RetMean, snap.RetStd
	}

	// Naive recomputation over the last window of log returns.
	var rets []float64
	for i := len(prices) - 4; i < len(prices); i++ {
		rets = append(rets, math.Log(prices[i]/prices[i-1]))
	}
	var sum float64
	for _, r := range rets {
		sum += r
	}
	mean := sum / 4
	var variance float64
	for _, r := range rets {
		variance += (r - mean) * (r - mean)
	}
	std := math.Sqrt(variance / 4)

	if math.Abs(snapMean-mean) > 1e-12 {
		t.Fatalf("rolling mean %v, naive %v", snapMean, mean)
	}
	if math.Abs(snapStd-std) > 1e-9 {
		t.Fatalf("rolling std %v, naive %v", snapStd, std)
	}
}

func TestFeatureEngineStreaks(t *testing.T) {
	f := NewFeatureEngine(DefaultParams())
	f.Reset("r1")

	prices := []float64{1.0, 1.1, 1.2, 1.3, 1.2, 1.1}
	var last = f.Update(0, prices[0])
	for i := 1; i < len(prices); i++ {
		last = f.Update(i, prices[i])
	}
	if last.UpStreak != 0 || last.DownStreak != 2 {
		t.Fatalf("streaks up=%d down=%d, want 0/2", last.UpStreak, last.DownStreak)
	}
}

func TestFeatureEnginePeakAndDrawdown(t *testing.T) {
	f := NewFeatureEngine(DefaultParams())
	f.Reset("r1")

	f.Update(0, 1.0)
	f.Update(1, 2.0)
	snap := f.Update(2, 1.5)

	if snap.Peak != 2.0 {
		t.Fatalf("peak %v, want 2.0", snap.Peak)
	}
	if math.Abs(snap.Drawdown-0.25) > 1e-12 {
		t.Fatalf("drawdown %v, want 0.25", snap.Drawdown)
	}
	if snap.SincePeak != 1 {
		t.Fatalf("since peak %d, want 1", snap.SincePeak)
	}
}

func TestFeatureEngineHazardScaleBounds(t *testing.T) {
	params := DefaultParams()
	f := NewFeatureEngine(params)
	f.Reset("r1")

	// Long decline drives every raising factor at once.
	price := 100.0
	var snap = f.Update(0, price)
	for i := 1; i < 30; i++ {
		price *= 0.9
		snap = f.Update(i, price)
	}
	if snap.HazardScale > params.HazardScaleMax || snap.HazardScale < params.HazardScaleMin {
		t.Fatalf("hazard scale %v escaped [%v,%v]", snap.HazardScale, params.HazardScaleMin, params.HazardScaleMax)
	}
	if snap.HazardScale <= 1.0 {
		t.Fatalf("sustained decline should raise hazard scale, got %v", snap.HazardScale)
	}
}

func TestFeatureEngineMalformedPrice(t *testing.T) {
	f := NewFeatureEngine(DefaultParams())
	f.Reset("r1")

	f.Update(0, 1.5)
	snap := f.Update(1, -3.0)
	if snap.Price != 1.5 {
		t.Fatalf("non-positive price should clamp to previous, got %v", snap.Price)
	}
	if snap.RetStd != 0 {
		t.Fatalf("clamped tick should contribute a zero return, std %v", snap.RetStd)
	}
}

func TestFeatureEngineBudgetSkipsReturnMoments(t *testing.T) {
	params := DefaultParams()
	f := NewFeatureEngine(params)
	f.Reset("r1")

	prices := []float64{1.0, 1.2, 1.5, 1.3, 1.8}
	var mean, std float64
	for i, px := range prices {
		snap := f.Update(i, px)
		if snap.Degraded {
			t.Fatalf("tick %d degraded under the default budget", i)
		}
		mean, std = snap.RetMean, snap.RetStd
	}

	// A negative budget makes every tick overrun, so the moments stay
	// frozen at their last computed values.
	f.params.FeatureBudget = -1
	snap := f.Update(len(prices), 2.5)
	if !snap.Degraded {
		t.Fatalf("expected degraded snapshot when over budget")
	}
	if snap.RetMean != mean || snap.RetStd != std {
		t.Fatalf("degraded tick recomputed moments: got (%v, %v), want (%v, %v)", snap.RetMean, snap.RetStd, mean, std)
	}
	if snap.Peak != 2.5 {
		t.Fatalf("core features must still update when degraded, peak %v", snap.Peak)
	}

	// The flag is per tick: restoring the budget clears it and the
	// moments pick up the returns folded while degraded.
	f.params.FeatureBudget = params.FeatureBudget
	snap = f.Update(len(prices)+1, 2.6)
	if snap.Degraded {
		t.Fatalf("degraded flag latched past the over-budget tick")
	}
	if snap.RetMean == mean && snap.RetStd == std {
		t.Fatalf("recovered tick should recompute the return moments")
	}
}

func TestFeatureEngineReset(t *testing.T) {
	f := NewFeatureEngine(DefaultParams())
	f.Reset("r1")
	for i := 0; i < 20; i++ {
		f.Update(i, 1.0+float64(i)*0.1)
	}

	f.Reset("r2")
	snap := f.Update(0, 5.0)
	if snap.RoundID != "r2" {
		t.Fatalf("round id %q, want r2", snap.RoundID)
	}
	if snap.Peak != 5.0 || snap.UpStreak != 0 || snap.RetStd != 0 {
		t.Fatalf("reset left state behind: %+v", snap)
	}
}
