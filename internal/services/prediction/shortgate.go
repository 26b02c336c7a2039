package prediction

import (
	"context"

	"RugPull/internal/domain/models"
	"RugPull/internal/domain/service"
)

// ShortRoundGate overrides the survival forecast when an injected
// scorer says the current round is likely to end almost immediately.
// The hazard model needs tens of ticks of history to sharpen; the gate
// exists precisely for the rounds that never get that far. It only
// consults the scorer inside the early window, and it fails open: a
// scorer error leaves the prediction untouched.
type ShortRoundGate struct {
	params Params
	scorer service.ShortRoundScorer
}

func NewShortRoundGate(params Params, scorer service.ShortRoundScorer) *ShortRoundGate {
	return &ShortRoundGate{params: params, scorer: scorer}
}

// GateResult reports what the gate decided for one tick.
type GateResult struct {
	Applied     bool
	Probability float64
	CappedTick  int
}

// Evaluate scores the current tick. When the gate applies, CappedTick
// is the ceiling the point prediction must not exceed.
func (g *ShortRoundGate) Evaluate(ctx context.Context, snap models.TickSnapshot, clusterFactor, droughtPhase float64) (GateResult, error) {
	if g.scorer == nil || snap.Tick > g.params.ShortRoundEarlyWindow {
		return GateResult{}, nil
	}

	accel := 0.0
	if snap.EMASlow > 0 {
		accel = (snap.EMAFast - snap.EMASlow) / snap.EMASlow
	}

	prob, err := g.scorer.Score(ctx, models.ShortRoundSignals{
		Velocity:      snap.RetMean,
		Acceleration:  accel,
		ClusterFactor: clusterFactor,
		DroughtPhase:  droughtPhase,
	})
	if err != nil {
		return GateResult{}, err
	}

	if prob <= g.params.ShortRoundThreshold {
		return GateResult{Probability: prob}, nil
	}
	return GateResult{
		Applied:     true,
		Probability: prob,
		CappedTick:  snap.Tick + g.params.ShortRoundCeiling,
	}, nil
}
