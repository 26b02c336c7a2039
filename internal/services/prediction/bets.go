package prediction

import "RugPull/internal/domain/models"

// BetEngine turns the survival forecast into a fixed-window betting
// recommendation. A bet wins when the round ends within the window; a
// cooldown after each placement keeps recommendations from overlapping
// a still-open bet.
type BetEngine struct {
	params Params

	lastBetTick  int
	nextEligible int
}

func NewBetEngine(params Params) *BetEngine {
	return &BetEngine{
		params:       params,
		lastBetTick:  -1,
		nextEligible: -1,
	}
}

// AdvanceRound rebases the eligibility gate into the next round's tick
// frame. Cooldown left over at the final tick carries across the round
// boundary; a gate that already reopened resets to fresh eligibility.
func (b *BetEngine) AdvanceRound(finalTick int) {
	if b.nextEligible > finalTick {
		b.nextEligible -= finalTick + 1
	} else {
		b.nextEligible = -1
	}
	b.lastBetTick = -1
}

// Decide evaluates the forecast at the current tick. Every tick gets a
// recommendation; PLACE requires both the probability threshold and
// eligibility, and advances the eligibility gate past the window plus
// cooldown.
func (b *BetEngine) Decide(tick int, stats models.HazardStats) models.BetRecommendation {
	p := stats.WindowProbability(b.params.BetWindowTicks)
	ev := b.params.PayoutMultiplier*p - (1 - p)

	rec := models.BetRecommendation{
		Action:           models.BetWait,
		WinProbability:   p,
		ExpectedValue:    ev,
		CoverageEndTick:  tick + b.params.BetWindowTicks,
		NextEligibleTick: b.nextEligible,
	}

	if p > b.params.BetProbabilityThreshold && tick > b.nextEligible {
		b.lastBetTick = tick
		b.nextEligible = tick + b.params.BetWindowTicks + b.params.BetCooldownTicks
		rec.Action = models.BetPlace
		rec.NextEligibleTick = b.nextEligible
	}
	return rec
}

// LastBetTick returns the tick of the most recent placement this
// round, or -1.
func (b *BetEngine) LastBetTick() int { return b.lastBetTick }

// NextEligibleTick returns the first tick strictly after which a new
// placement may fire.
func (b *BetEngine) NextEligibleTick() int { return b.nextEligible }
