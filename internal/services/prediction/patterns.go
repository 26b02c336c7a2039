package prediction

import (
	"math"

	"RugPull/internal/domain/models"
)

// Empirical cross-round frequencies, measured over recorded feed
// history. Ultra-short rounds cluster, and their base rate roughly
// doubles inside a cluster.
const (
	ultraShortBaseProb       = 0.064
	ultraShortPostPayoutProb = 0.081
	ultraShortClusterProb    = 0.096

	momentum8xProb  = 0.244
	momentum12xProb = 0.230
	momentum20xProb = 0.500

	medianRoundTicks = 205
	meanRoundTicks   = 225
)

// PatternTracker carries the cross-round memory the per-round engines
// deliberately lack: ultra-short clustering, payout recovery windows,
// moonshot droughts and intra-round momentum levels. It contributes a
// bounded additive shift to the hazard logit and the contextual inputs
// of the short-round scorer.
type PatternTracker struct {
	rounds            int
	recentUltraShorts []bool
	lastWasMaxPayout  bool
	sinceMoonshot     int
	momentumLevel     int
}

func NewPatternTracker() *PatternTracker {
	return &PatternTracker{}
}

// ObservePeak updates the intra-round momentum level from the running
// peak multiplier. Levels only ratchet upward within a round.
func (p *PatternTracker) ObservePeak(peak float64) {
	switch {
	case peak >= 20 && p.momentumLevel < 20:
		p.momentumLevel = 20
	case peak >= 12 && p.momentumLevel < 12:
		p.momentumLevel = 12
	case peak >= 8 && p.momentumLevel < 8:
		p.momentumLevel = 8
	}
}

// RecordOutcome folds one finished round into the cross-round state.
func (p *PatternTracker) RecordOutcome(outcome models.RoundOutcome) {
	p.rounds++
	p.momentumLevel = 0

	p.recentUltraShorts = append(p.recentUltraShorts, outcome.UltraShort())
	if len(p.recentUltraShorts) > 10 {
		p.recentUltraShorts = p.recentUltraShorts[1:]
	}

	p.lastWasMaxPayout = outcome.MaxPayout()

	if outcome.Moonshot() {
		p.sinceMoonshot = 0
	} else {
		p.sinceMoonshot++
	}
}

// UltraShortProbability is the prior that the next (or current, while
// young) round ends ultra-short, conditioned on the recent history.
func (p *PatternTracker) UltraShortProbability() float64 {
	if p.clustering() {
		return ultraShortClusterProb
	}
	if p.lastWasMaxPayout {
		return ultraShortPostPayoutProb
	}
	return ultraShortBaseProb
}

// DroughtMultiplier scales the prior for an imminent long-round event
// by how overdue a moonshot is.
func (p *PatternTracker) DroughtMultiplier() float64 {
	switch {
	case p.sinceMoonshot >= 84:
		return 2.0
	case p.sinceMoonshot >= 63:
		return 1.5
	case p.sinceMoonshot >= 42:
		return 1.2
	default:
		return 1.0
	}
}

// LogitAdjust is the additive hazard-logit shift contributed by the
// cross-round patterns, bounded to keep any single pattern from
// dominating the per-round features.
func (p *PatternTracker) LogitAdjust() float64 {
	adjust := 0.0

	// Elevated ultra-short prior pulls the hazard up early.
	adjust += math.Log(p.UltraShortProbability() / ultraShortBaseProb)

	// Sustained momentum argues for continuation.
	switch p.momentumLevel {
	case 8:
		adjust -= 0.3 * momentum8xProb
	case 12:
		adjust -= 0.3 * momentum12xProb
	case 20:
		adjust -= 0.3 * momentum20xProb
	}

	return clamp(adjust, -0.5, 0.5)
}

// Signals names the active patterns for the emitted prediction record.
func (p *PatternTracker) Signals() []string {
	var tags []string
	if p.clustering() {
		tags = append(tags, "ultra_short_clustering")
	}
	if p.lastWasMaxPayout {
		tags = append(tags, "post_max_payout")
	}
	if mult := p.DroughtMultiplier(); mult > 1 {
		tags = append(tags, "moonshot_drought")
	}
	switch p.momentumLevel {
	case 8:
		tags = append(tags, "momentum_8x")
	case 12:
		tags = append(tags, "momentum_12x")
	case 20:
		tags = append(tags, "momentum_20x")
	}
	return tags
}

// ShortRoundContext supplies the cross-round inputs of the short-round
// scorer.
func (p *PatternTracker) ShortRoundContext() (clusterFactor, droughtPhase float64) {
	clusterFactor = p.UltraShortProbability() / ultraShortBaseProb
	droughtPhase = (p.DroughtMultiplier() - 1.0) / 1.0
	return clusterFactor, droughtPhase
}

// Snapshot exposes the tracker state for the status endpoint.
func (p *PatternTracker) Snapshot() map[string]float64 {
	return map[string]float64{
		"rounds_observed":       float64(p.rounds),
		"ultra_short_prob":      p.UltraShortProbability(),
		"drought_multiplier":    p.DroughtMultiplier(),
		"rounds_since_moonshot": float64(p.sinceMoonshot),
		"momentum_level":        float64(p.momentumLevel),
		"median_round_ticks":    medianRoundTicks,
		"mean_round_ticks":      meanRoundTicks,
	}
}

func (p *PatternTracker) clustering() bool {
	n := 0
	for _, u := range p.recentUltraShorts {
		if u {
			n++
		}
	}
	return n >= 2
}
