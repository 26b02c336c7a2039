package prediction

import (
	"testing"

	"RugPull/internal/domain/models"
)

func outcome(finalTick int, endPrice, peak float64) models.RoundOutcome {
	return models.RoundOutcome{FinalTick: finalTick, EndPrice: endPrice, PeakPrice: peak}
}

func normalOutcome() models.RoundOutcome { return outcome(200, 0.01, 3.0) }

func TestUltraShortPriors(t *testing.T) {
	p := NewPatternTracker()

	if got := p.UltraShortProbability(); got != ultraShortBaseProb {
		t.Fatalf("base prior %v, want %v", got, ultraShortBaseProb)
	}

	p.RecordOutcome(outcome(150, 0.02, 3.0)) // max payout
	if got := p.UltraShortProbability(); got != ultraShortPostPayoutProb {
		t.Fatalf("post-payout prior %v, want %v", got, ultraShortPostPayoutProb)
	}

	p.RecordOutcome(outcome(5, 0.01, 1.2))
	p.RecordOutcome(outcome(8, 0.01, 1.1))
	if got := p.UltraShortProbability(); got != ultraShortClusterProb {
		t.Fatalf("clustering prior %v, want %v", got, ultraShortClusterProb)
	}
}

func TestClusteringWindowSlides(t *testing.T) {
	p := NewPatternTracker()
	p.RecordOutcome(outcome(5, 0.01, 1.2))
	p.RecordOutcome(outcome(8, 0.01, 1.1))
	if !p.clustering() {
		t.Fatalf("two recent ultra-shorts should cluster")
	}

	for i := 0; i < 10; i++ {
		p.RecordOutcome(normalOutcome())
	}
	if p.clustering() {
		t.Fatalf("ultra-shorts outside the window still clustering")
	}
}

func TestDroughtMultiplierThresholds(t *testing.T) {
	cases := []struct {
		rounds int
		want   float64
	}{
		{0, 1.0}, {41, 1.0}, {42, 1.2}, {62, 1.2}, {63, 1.5}, {83, 1.5}, {84, 2.0}, {200, 2.0},
	}
	for _, tc := range cases {
		p := NewPatternTracker()
		for i := 0; i < tc.rounds; i++ {
			p.RecordOutcome(normalOutcome())
		}
		if got := p.DroughtMultiplier(); got != tc.want {
			t.Fatalf("after %d rounds multiplier %v, want %v", tc.rounds, got, tc.want)
		}
	}
}

func TestDroughtResetsOnMoonshot(t *testing.T) {
	p := NewPatternTracker()
	for i := 0; i < 100; i++ {
		p.RecordOutcome(normalOutcome())
	}
	if p.DroughtMultiplier() != 2.0 {
		t.Fatalf("expected deep drought")
	}

	p.RecordOutcome(outcome(400, 0.01, 60.0))
	if got := p.DroughtMultiplier(); got != 1.0 {
		t.Fatalf("moonshot should clear the drought, got %v", got)
	}
}

func TestMomentumRatchet(t *testing.T) {
	p := NewPatternTracker()

	p.ObservePeak(9.0)
	if p.momentumLevel != 8 {
		t.Fatalf("level %d, want 8", p.momentumLevel)
	}
	p.ObservePeak(13.0)
	if p.momentumLevel != 12 {
		t.Fatalf("level %d, want 12", p.momentumLevel)
	}
	// Peaks never fall within a round, but a lower observation must
	// not lower the ratchet either.
	p.ObservePeak(9.0)
	if p.momentumLevel != 12 {
		t.Fatalf("ratchet slipped to %d", p.momentumLevel)
	}
	p.ObservePeak(25.0)
	if p.momentumLevel != 20 {
		t.Fatalf("level %d, want 20", p.momentumLevel)
	}

	p.RecordOutcome(normalOutcome())
	if p.momentumLevel != 0 {
		t.Fatalf("momentum survived the round boundary")
	}
}

func TestLogitAdjustBounded(t *testing.T) {
	p := NewPatternTracker()
	p.RecordOutcome(outcome(5, 0.02, 1.2))
	p.RecordOutcome(outcome(8, 0.01, 1.1))
	p.ObservePeak(25.0)

	adj := p.LogitAdjust()
	if adj < -0.5 || adj > 0.5 {
		t.Fatalf("adjustment %v escaped [-0.5,0.5]", adj)
	}
}

func TestLogitAdjustDirections(t *testing.T) {
	clusterTracker := NewPatternTracker()
	clusterTracker.RecordOutcome(outcome(5, 0.01, 1.2))
	clusterTracker.RecordOutcome(outcome(8, 0.01, 1.1))
	if clusterTracker.LogitAdjust() <= 0 {
		t.Fatalf("clustering should raise the hazard logit")
	}

	momentumTracker := NewPatternTracker()
	momentumTracker.ObservePeak(25.0)
	if momentumTracker.LogitAdjust() >= 0 {
		t.Fatalf("sustained momentum should lower the hazard logit")
	}
}

func TestSignalsNamed(t *testing.T) {
	p := NewPatternTracker()
	p.RecordOutcome(outcome(5, 0.02, 1.2))
	p.RecordOutcome(outcome(8, 0.01, 1.1))
	p.ObservePeak(25.0)

	tags := map[string]bool{}
	for _, s := range p.Signals() {
		tags[s] = true
	}
	for _, want := range []string{"ultra_short_clustering", "momentum_20x"} {
		if !tags[want] {
			t.Fatalf("missing signal %q in %v", want, p.Signals())
		}
	}
}
