package prediction

import "testing"

func TestConformalWarmupUsesDefaultWidth(t *testing.T) {
	params := DefaultParams()
	c := NewConformalCalibrator(params)

	lower, upper := c.Interval(0, 200)
	if upper-lower != 2*int(params.DefaultHalfWidth) {
		t.Fatalf("warm-up width %d, want %d", upper-lower, 2*int(params.DefaultHalfWidth))
	}
}

func TestConformalLowerBoundNeverBehindCurrentTick(t *testing.T) {
	c := NewConformalCalibrator(DefaultParams())

	lower, upper := c.Interval(180, 200)
	if lower <= 180 {
		t.Fatalf("lower bound %d not ahead of current tick 180", lower)
	}
	if upper < lower {
		t.Fatalf("inverted interval [%d,%d]", lower, upper)
	}
}

func TestConformalWidthFollowsScores(t *testing.T) {
	params := DefaultParams()
	c := NewConformalCalibrator(params)

	// Tight errors: all scores 10.
	for i := 0; i < params.CalibrationWindow; i++ {
		c.Interval(0, 200)
		c.RecordOutcome(200, 210)
	}
	lower, upper := c.Interval(0, 200)
	if upper-lower >= 2*int(params.DefaultHalfWidth) {
		t.Fatalf("tight scores should shrink the interval, width %d", upper-lower)
	}
	if upper-lower < 10 {
		t.Fatalf("interval narrower than its own scores: width %d", upper-lower)
	}
}

func TestConformalCoverageTracking(t *testing.T) {
	params := DefaultParams()
	c := NewConformalCalibrator(params)

	if got := c.RealizedCoverage(); got != params.TargetCoverage {
		t.Fatalf("empty coverage %v, want target %v", got, params.TargetCoverage)
	}

	// Every outcome within the default width counts as a hit.
	for i := 0; i < 10; i++ {
		c.Interval(0, 200)
		c.RecordOutcome(200, 220)
	}
	if got := c.RealizedCoverage(); got != 1.0 {
		t.Fatalf("all-hit coverage %v, want 1.0", got)
	}

	// A burst of far misses drags it down.
	for i := 0; i < 10; i++ {
		c.Interval(0, 200)
		c.RecordOutcome(200, 600)
	}
	if got := c.RealizedCoverage(); got >= 1.0 {
		t.Fatalf("misses not reflected in coverage: %v", got)
	}
}

func TestConformalRecalibrateWidens(t *testing.T) {
	params := DefaultParams()
	c := NewConformalCalibrator(params)

	for i := 0; i < params.CalibrationWindow; i++ {
		c.Interval(0, 200)
		c.RecordOutcome(200, 205)
	}
	lower, upper := c.Interval(0, 200)
	narrow := upper - lower

	c.Recalibrate()
	lower, upper = c.Interval(0, 200)
	widened := upper - lower

	if widened <= narrow {
		t.Fatalf("recalibration should fall back to a wide interval: %d -> %d", narrow, widened)
	}
	if widened <= 2*int(params.DefaultHalfWidth) {
		t.Fatalf("post-drift warm-up should widen past the default, width %d", widened)
	}
}

func TestConformalUndercoverageWidens(t *testing.T) {
	params := DefaultParams()
	c := NewConformalCalibrator(params)

	// Calibrate on small scores, then miss repeatedly; the PID term
	// should push the quantile level, and with it the width, upward.
	for i := 0; i < params.CalibrationWarmup; i++ {
		c.Interval(0, 200)
		c.RecordOutcome(200, 205)
	}
	lower, upper := c.Interval(0, 200)
	before := upper - lower

	for i := 0; i < 20; i++ {
		c.Interval(0, 200)
		c.RecordOutcome(200, 400)
	}
	lower, upper = c.Interval(0, 200)
	after := upper - lower

	if after <= before {
		t.Fatalf("sustained misses should widen the interval: %d -> %d", before, after)
	}
}
