package prediction

import (
	"math"

	"RugPull/internal/domain/models"
)

type regimeState int

const (
	regimeInactive regimeState = iota
	regimeSustaining
	regimeActive
)

// RegimeDetector flags rounds whose early price peak dwarfs the
// round's own baseline. Such rounds historically run long, so while
// the regime is active the hazard is suppressed by a multiplier that
// eases in from neutral toward the configured scale. Activation uses
// hysteresis: the peak-to-baseline ratio must hold above threshold for
// a sustain period before the regime latches, and once latched it
// never unlatches within the same round.
type RegimeDetector struct {
	params Params

	baseline float64

	state        regimeState
	sustainTicks int
	activatedAt  int
}

func NewRegimeDetector(params Params) *RegimeDetector {
	return &RegimeDetector{params: params}
}

// Reset prepares the detector for a new round.
func (d *RegimeDetector) Reset() {
	d.baseline = 0
	d.state = regimeInactive
	d.sustainTicks = 0
	d.activatedAt = 0
}

// Observe folds one snapshot and returns the hazard multiplier to apply
// at this tick. A neutral detector returns 1.0.
//
// The baseline price EMA updates every tick regardless of state. A
// static spike never latches: the baseline converges onto the plateau
// and the ratio collapses before the sustain period completes, so only
// a climb that keeps outrunning its own baseline activates the regime.
func (d *RegimeDetector) Observe(snap models.TickSnapshot) float64 {
	if d.baseline == 0 {
		d.baseline = snap.Price
	} else {
		d.baseline += d.params.RegimeBaselineAlpha * (snap.Price - d.baseline)
	}

	switch d.state {
	case regimeInactive:
		if snap.Tick < d.params.RegimeEarlyWindow && d.exceedsBaseline(snap.Peak) {
			d.state = regimeSustaining
			d.sustainTicks = 1
		}
	case regimeSustaining:
		if d.exceedsBaseline(snap.Peak) {
			d.sustainTicks++
			if d.sustainTicks >= d.params.RegimeSustainTicks {
				d.state = regimeActive
				d.activatedAt = snap.Tick
			}
		} else {
			d.state = regimeInactive
			d.sustainTicks = 0
		}
	}

	if d.state != regimeActive {
		return 1.0
	}

	// 1.0 at activation, decaying toward the scale floor.
	elapsed := float64(snap.Tick - d.activatedAt)
	scale := d.params.RegimeHazardScale
	return scale + (1.0-scale)*math.Exp(-elapsed/d.params.RegimeDecayTau)
}

// Active reports whether the regime has latched for the current round.
func (d *RegimeDetector) Active() bool {
	return d.state == regimeActive
}

func (d *RegimeDetector) exceedsBaseline(peak float64) bool {
	if d.baseline <= 0 {
		return false
	}
	return peak/d.baseline > d.params.RegimeRatioThreshold
}
