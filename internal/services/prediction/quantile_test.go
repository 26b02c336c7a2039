package prediction

import (
	"math"
	"testing"
)

func TestQuantileStartsAtBase(t *testing.T) {
	q := NewQuantileCorrector(DefaultParams())
	if q.Quantile() != 0.5 {
		t.Fatalf("fresh corrector quantile %v, want 0.5", q.Quantile())
	}
}

func TestQuantileDeadZoneHoldsBase(t *testing.T) {
	params := DefaultParams()
	q := NewQuantileCorrector(params)

	// Normalized error 2/40 = 0.05, inside the dead zone.
	for i := 0; i < 20; i++ {
		q.RecordOutcome(100, 102)
	}
	if q.Quantile() != 0.5 {
		t.Fatalf("dead-zone errors moved the quantile to %v", q.Quantile())
	}
}

func TestQuantileShiftsUpOnUnderPrediction(t *testing.T) {
	params := DefaultParams()
	q := NewQuantileCorrector(params)

	// Rounds consistently outlive the prediction by a full window:
	// normalized error 1.0, clipped to the median cap.
	for i := 0; i < 10; i++ {
		q.RecordOutcome(100, 140)
	}
	want := 0.5 + params.QuantileMedianClip*params.QuantileAlpha
	if math.Abs(q.Quantile()-want) > 1e-12 {
		t.Fatalf("quantile %v, want %v", q.Quantile(), want)
	}
}

func TestQuantileShiftsDownOnOverPrediction(t *testing.T) {
	params := DefaultParams()
	q := NewQuantileCorrector(params)

	for i := 0; i < 10; i++ {
		q.RecordOutcome(140, 100)
	}
	want := 0.5 - params.QuantileMedianClip*params.QuantileAlpha
	if math.Abs(q.Quantile()-want) > 1e-12 {
		t.Fatalf("quantile %v, want %v", q.Quantile(), want)
	}
}

func TestQuantileShiftProportionalToMedian(t *testing.T) {
	params := DefaultParams()
	q := NewQuantileCorrector(params)

	// Normalized error 8/40 = 0.2: below the clip, so the shift is
	// alpha times the median itself.
	for i := 0; i < 10; i++ {
		q.RecordOutcome(100, 108)
	}
	want := 0.5 + 0.2*params.QuantileAlpha
	if math.Abs(q.Quantile()-want) > 1e-12 {
		t.Fatalf("quantile %v, want %v", q.Quantile(), want)
	}
}

func TestQuantileRevertsWhenBiasClears(t *testing.T) {
	params := DefaultParams()
	q := NewQuantileCorrector(params)

	for i := 0; i < 10; i++ {
		q.RecordOutcome(100, 140)
	}
	if q.Quantile() == 0.5 {
		t.Fatalf("expected a shifted quantile before the bias clears")
	}

	// Enough small errors push the window's median back inside the
	// dead zone, and the quantile returns to base rather than keeping
	// the stale correction.
	for i := 0; i < 30; i++ {
		q.RecordOutcome(100, 102)
	}
	if q.Quantile() != 0.5 {
		t.Fatalf("quantile %v after bias cleared, want 0.5", q.Quantile())
	}
}

func TestQuantileClampedToBounds(t *testing.T) {
	params := DefaultParams()
	params.QuantileAlpha = 2.0
	q := NewQuantileCorrector(params)

	for i := 0; i < 10; i++ {
		q.RecordOutcome(100, 140)
	}
	if q.Quantile() != params.QuantileMax {
		t.Fatalf("quantile %v, want upper bound %v", q.Quantile(), params.QuantileMax)
	}

	for i := 0; i < 60; i++ {
		q.RecordOutcome(140, 100)
	}
	if q.Quantile() != params.QuantileMin {
		t.Fatalf("quantile %v, want lower bound %v", q.Quantile(), params.QuantileMin)
	}
}

func TestQuantileDisabled(t *testing.T) {
	params := DefaultParams()
	params.QuantileAdjustmentEnabled = false
	q := NewQuantileCorrector(params)

	for i := 0; i < 20; i++ {
		q.RecordOutcome(100, 400)
	}
	if q.Quantile() != 0.5 {
		t.Fatalf("disabled corrector moved to %v", q.Quantile())
	}
}

func TestMedian(t *testing.T) {
	if got := median(nil); got != 0 {
		t.Fatalf("median of empty slice %v, want 0", got)
	}
	if got := median([]float64{3, 1, 2}); got != 2 {
		t.Fatalf("odd median %v, want 2", got)
	}
	if got := median([]float64{4, 1, 3, 2}); got != 2.5 {
		t.Fatalf("even median %v, want 2.5", got)
	}
}
