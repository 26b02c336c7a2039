package prediction

import (
	"math"

	"RugPull/internal/domain/models"
)

// HazardModel folds per-tick termination hazards into a discrete
// survival forecast over a bounded horizon. Each horizon step gets a
// logit built from the baseline rate, the snapshot features, and the
// multiplicative adjustments supplied by the regime detector and the
// pattern tracker; the sigmoid of the logit is the conditional hazard
// at that step.
type HazardModel struct {
	params Params
}

func NewHazardModel(params Params) *HazardModel {
	return &HazardModel{params: params}
}

// Forecast computes PMF, CDF, tail mass and the tail-corrected expected
// termination offset. regimeMult and patternAdjust come from the regime
// detector (multiplier, neutral 1.0) and the pattern tracker (additive
// logit shift, neutral 0).
func (m *HazardModel) Forecast(snap models.TickSnapshot, regimeMult, patternAdjust float64) models.HazardStats {
	h := m.params.HorizonTicks
	stats := models.HazardStats{
		PMF: make([]float64, h),
		CDF: make([]float64, h),
	}

	base := logit(m.params.BaseHazardRate)
	w := m.params.Weights

	momentum := 0.0
	if snap.EMASlow > 0 {
		momentum = snap.EMAFast/snap.EMASlow - 1
	}
	streak := float64(snap.DownStreak - snap.UpStreak)

	featureShift := w.Volatility*snap.RetStd + w.Momentum*momentum + w.Streak*streak
	scaleShift := math.Log(clamp(snap.HazardScale, 1e-6, 10)) + math.Log(clamp(regimeMult, 1e-6, 10))
	shift := featureShift + scaleShift + clamp(patternAdjust, -0.5, 0.5)

	survival := 1.0
	var expected float64
	var hazard float64
	for i := 0; i < h; i++ {
		decay := w.TimeDecay * float64(i) / float64(h)
		z := clamp(base+shift+decay, -12, 12)
		hazard = sigmoid(z)

		p := hazard * survival
		stats.PMF[i] = p
		survival *= 1 - hazard
		if i == 0 {
			stats.CDF[i] = p
		} else {
			stats.CDF[i] = stats.CDF[i-1] + p
		}
		expected += float64(i+1) * p
	}

	stats.Tail = survival
	stats.TailHazard = hazard
	// Geometric tail correction: mass past the horizon terminates with
	// mean residual 1/hazard at the terminal rate.
	if hazard > 0 {
		expected += survival * (float64(h) + 1/hazard)
	}
	stats.Expected = expected
	return stats
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

func logit(p float64) float64 {
	p = clamp(p, 1e-9, 1-1e-9)
	return math.Log(p / (1 - p))
}
