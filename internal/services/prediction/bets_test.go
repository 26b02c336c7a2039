package prediction

import (
	"math"
	"testing"

	"RugPull/internal/domain/models"
)

// statsWithWindowProb builds a forecast whose termination probability
// within the bet window is exactly p.
func statsWithWindowProb(params Params, p float64) models.HazardStats {
	h := params.HorizonTicks
	stats := models.HazardStats{
		PMF: make([]float64, h),
		CDF: make([]float64, h),
	}
	stats.PMF[params.BetWindowTicks-1] = p
	for i := params.BetWindowTicks - 1; i < h; i++ {
		stats.CDF[i] = p
	}
	stats.Tail = 1 - p
	stats.TailHazard = 0.005
	return stats
}

func TestBetPlaceAboveThreshold(t *testing.T) {
	params := DefaultParams()
	b := NewBetEngine(params)

	rec := b.Decide(0, statsWithWindowProb(params, 0.25))
	if rec.Action != models.BetPlace {
		t.Fatalf("p=0.25 should place, got %s", rec.Action)
	}
	if rec.CoverageEndTick != params.BetWindowTicks {
		t.Fatalf("coverage end %d, want %d", rec.CoverageEndTick, params.BetWindowTicks)
	}
}

func TestBetWaitAtThreshold(t *testing.T) {
	params := DefaultParams()
	b := NewBetEngine(params)

	// The threshold is strict: exactly 0.20 does not place.
	rec := b.Decide(0, statsWithWindowProb(params, params.BetProbabilityThreshold))
	if rec.Action != models.BetWait {
		t.Fatalf("p at threshold should wait, got %s", rec.Action)
	}
}

func TestBetExpectedValue(t *testing.T) {
	params := DefaultParams()
	b := NewBetEngine(params)

	p := 0.25
	rec := b.Decide(0, statsWithWindowProb(params, p))
	want := params.PayoutMultiplier*p - (1 - p)
	if math.Abs(rec.ExpectedValue-want) > 1e-12 {
		t.Fatalf("ev %v, want %v", rec.ExpectedValue, want)
	}
}

func TestBetCooldownWindow(t *testing.T) {
	params := DefaultParams()
	b := NewBetEngine(params)
	stats := statsWithWindowProb(params, 0.3)

	rec := b.Decide(100, stats)
	if rec.Action != models.BetPlace {
		t.Fatalf("expected initial place")
	}
	wantEligible := 100 + params.BetWindowTicks + params.BetCooldownTicks
	if rec.NextEligibleTick != wantEligible {
		t.Fatalf("next eligible %d, want %d", rec.NextEligibleTick, wantEligible)
	}

	// Ineligible through the window-plus-cooldown span, inclusive.
	for tick := 101; tick <= wantEligible; tick++ {
		if got := b.Decide(tick, stats); got.Action != models.BetWait {
			t.Fatalf("placed at tick %d inside cooldown", tick)
		}
	}
	if got := b.Decide(wantEligible+1, stats); got.Action != models.BetPlace {
		t.Fatalf("expected place at tick %d", wantEligible+1)
	}
}

func TestBetFirstTickEligible(t *testing.T) {
	params := DefaultParams()
	b := NewBetEngine(params)

	if rec := b.Decide(0, statsWithWindowProb(params, 0.5)); rec.Action != models.BetPlace {
		t.Fatalf("tick 0 should be eligible on a fresh round")
	}
}

func TestBetGatePersistsAcrossRounds(t *testing.T) {
	params := DefaultParams()
	b := NewBetEngine(params)
	stats := statsWithWindowProb(params, 0.5)

	if rec := b.Decide(100, stats); rec.Action != models.BetPlace {
		t.Fatalf("expected initial place")
	}

	// The round ends mid-cooldown: the unserved remainder carries into
	// the next round's tick frame.
	b.AdvanceRound(120)
	wantEligible := 100 + params.BetWindowTicks + params.BetCooldownTicks - 121
	if b.NextEligibleTick() != wantEligible {
		t.Fatalf("next eligible %d, want %d", b.NextEligibleTick(), wantEligible)
	}
	if b.LastBetTick() != -1 {
		t.Fatalf("last bet tick %d, want -1 after round advance", b.LastBetTick())
	}
	if rec := b.Decide(wantEligible, stats); rec.Action != models.BetWait {
		t.Fatalf("placed at tick %d while carried cooldown still open", wantEligible)
	}
	if rec := b.Decide(wantEligible+1, stats); rec.Action != models.BetPlace {
		t.Fatalf("expected place at tick %d", wantEligible+1)
	}
}

func TestBetGateResetsWhenCooldownElapsed(t *testing.T) {
	params := DefaultParams()
	b := NewBetEngine(params)
	stats := statsWithWindowProb(params, 0.5)

	b.Decide(100, stats)
	b.AdvanceRound(150)
	if b.NextEligibleTick() != -1 {
		t.Fatalf("next eligible %d, want -1", b.NextEligibleTick())
	}
	if rec := b.Decide(0, stats); rec.Action != models.BetPlace {
		t.Fatalf("tick 0 should be eligible once the cooldown elapsed")
	}
}
