package prediction

import (
	"testing"

	"RugPull/internal/domain/models"
)

func regimeTick(tick int, price, peak float64) models.TickSnapshot {
	return models.TickSnapshot{Tick: tick, Price: price, Peak: peak}
}

// feedClimb drives the detector with flat ticks followed by a
// multiplicative climb, returning the multiplier observed at the tick
// the regime latched (0 if it never did) and the final price reached.
func feedClimb(d *RegimeDetector, flat, climb int, factor float64) (latchMult, price float64) {
	price = 1.0
	peak := price
	tick := 0
	for i := 0; i < flat; i++ {
		d.Observe(regimeTick(tick, price, peak))
		tick++
	}
	for i := 0; i < climb; i++ {
		price *= factor
		if price > peak {
			peak = price
		}
		mult := d.Observe(regimeTick(tick, price, peak))
		if latchMult == 0 && d.Active() {
			latchMult = mult
		}
		tick++
	}
	return latchMult, price
}

func TestRegimeLatchesOnSustainedClimbInFirstRound(t *testing.T) {
	d := NewRegimeDetector(DefaultParams())
	d.Reset()

	latchMult, _ := feedClimb(d, 5, 25, 1.5)
	if !d.Active() {
		t.Fatalf("sustained climb in the first round should latch the regime")
	}
	if latchMult != 1.0 {
		t.Fatalf("multiplier at activation %v, want 1.0", latchMult)
	}
}

func TestRegimeMultiplierDecaysTowardScale(t *testing.T) {
	params := DefaultParams()
	d := NewRegimeDetector(params)
	d.Reset()

	_, price := feedClimb(d, 5, 25, 1.5)
	if !d.Active() {
		t.Fatalf("expected latch")
	}
	tick := 5 + 25

	first := d.Observe(regimeTick(tick, price, price))
	later := d.Observe(regimeTick(tick+500, price, price))
	if !d.Active() {
		t.Fatalf("regime unlatched within the round")
	}
	if first >= 1.0 {
		t.Fatalf("suppression should deepen after activation, multiplier %v", first)
	}
	if later >= first {
		t.Fatalf("multiplier should decay toward the scale floor: first %v later %v", first, later)
	}
	if later < params.RegimeHazardScale || later > params.RegimeHazardScale+0.01 {
		t.Fatalf("multiplier %v should settle at the scale floor %v", later, params.RegimeHazardScale)
	}
}

func TestRegimeStaticSpikeDoesNotLatch(t *testing.T) {
	d := NewRegimeDetector(DefaultParams())
	d.Reset()

	// A jump to a plateau: the baseline converges onto the new level
	// and the ratio collapses before the sustain period completes.
	for i := 0; i < 10; i++ {
		d.Observe(regimeTick(i, 1.0, 1.0))
	}
	for i := 10; i < 50; i++ {
		if mult := d.Observe(regimeTick(i, 5.0, 5.0)); d.Active() || mult != 1.0 {
			t.Fatalf("static spike latched at tick %d (mult %v)", i, mult)
		}
	}
}

func TestRegimeIgnoresLatePeaks(t *testing.T) {
	params := DefaultParams()
	d := NewRegimeDetector(params)
	d.Reset()

	price := 1.0
	for i := 0; i < params.RegimeEarlyWindow; i++ {
		d.Observe(regimeTick(i, price, price))
	}
	peak := price
	for i := params.RegimeEarlyWindow; i < params.RegimeEarlyWindow+30; i++ {
		price *= 1.5
		if price > peak {
			peak = price
		}
		d.Observe(regimeTick(i, price, peak))
	}
	if d.Active() {
		t.Fatalf("climb after the early window must not trigger the regime")
	}
}

func TestRegimeBaselineTracksPrice(t *testing.T) {
	params := DefaultParams()
	d := NewRegimeDetector(params)
	d.Reset()

	for i := 0; i < 10; i++ {
		d.Observe(regimeTick(i, 2.0, 2.0))
	}
	if d.baseline != 2.0 {
		t.Fatalf("flat feed baseline %v, want 2.0", d.baseline)
	}

	d.Observe(regimeTick(10, 4.0, 4.0))
	want := 2.0 + params.RegimeBaselineAlpha*(4.0-2.0)
	if d.baseline != want {
		t.Fatalf("baseline %v, want %v", d.baseline, want)
	}
}

func TestRegimeResetClearsState(t *testing.T) {
	d := NewRegimeDetector(DefaultParams())
	d.Reset()

	feedClimb(d, 5, 25, 1.5)
	if !d.Active() {
		t.Fatalf("expected latch before reset")
	}

	d.Reset()
	if d.Active() {
		t.Fatalf("reset kept the regime latched")
	}
	if mult := d.Observe(regimeTick(0, 1.0, 1.0)); mult != 1.0 {
		t.Fatalf("fresh round multiplier %v, want 1.0", mult)
	}
}
