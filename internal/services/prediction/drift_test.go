package prediction

import (
	"math"
	"testing"
)

func TestDriftStationaryNeverFires(t *testing.T) {
	d := NewDriftDetector(DefaultParams())

	// Stationary errors oscillating around a fixed level.
	for i := 0; i < 5000; i++ {
		e := 30.0 + 5.0*math.Sin(float64(i))
		if d.Observe(e) {
			t.Fatalf("drift fired on stationary errors at round %d", i)
		}
	}
	if d.Events() != 0 {
		t.Fatalf("events %d, want 0", d.Events())
	}
}

func TestDriftFiresOnStepShift(t *testing.T) {
	d := NewDriftDetector(DefaultParams())

	for i := 0; i < 500; i++ {
		d.Observe(30.0)
	}

	fired := false
	for i := 0; i < 200; i++ {
		if d.Observe(120.0) {
			fired = true
			break
		}
	}
	if !fired {
		t.Fatalf("step shift did not trigger drift within 200 rounds")
	}
	if d.Events() != 1 {
		t.Fatalf("events %d, want 1", d.Events())
	}
}

func TestDriftResetsAfterFiring(t *testing.T) {
	d := NewDriftDetector(DefaultParams())
	for i := 0; i < 500; i++ {
		d.Observe(30.0)
	}
	for i := 0; i < 200; i++ {
		if d.Observe(120.0) {
			break
		}
	}

	// Immediately after firing the statistic starts over.
	if d.Statistic() != 0 {
		t.Fatalf("statistic %v after firing, want 0", d.Statistic())
	}
	if d.Observe(120.0) {
		t.Fatalf("refired without fresh accumulated evidence")
	}
}

func TestDriftStatisticNonNegative(t *testing.T) {
	d := NewDriftDetector(DefaultParams())
	for i := 0; i < 100; i++ {
		d.Observe(float64(i % 7))
		if d.Statistic() < 0 {
			t.Fatalf("statistic went negative: %v", d.Statistic())
		}
	}
}
