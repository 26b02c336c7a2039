package prediction

import "sort"

// QuantileCorrector nudges the quantile used for the point prediction
// to cancel persistent signed bias. Errors are normalized by the bet
// window so one moonshot round cannot swamp the window; corrections
// only fire when the median normalized error escapes the dead zone.
type QuantileCorrector struct {
	params Params

	quantile float64
	errors   []float64
}

func NewQuantileCorrector(params Params) *QuantileCorrector {
	return &QuantileCorrector{
		params:   params,
		quantile: 0.5,
	}
}

// Quantile returns the quantile currently in use.
func (q *QuantileCorrector) Quantile() float64 {
	return q.quantile
}

// RecordOutcome folds one finished round's signed error (actual minus
// predicted, in ticks) and re-derives the quantile.
func (q *QuantileCorrector) RecordOutcome(predicted, actual int) {
	if !q.params.QuantileAdjustmentEnabled {
		return
	}

	norm := float64(actual-predicted) / float64(q.params.BetWindowTicks)
	q.errors = append(q.errors, norm)
	if len(q.errors) > q.params.ErrorWindow {
		q.errors = q.errors[1:]
	}

	// The correction is recomputed from the base quantile every time,
	// so the adjustment stays proportional to the current bias and
	// reverts once the median settles back inside the dead zone.
	med := median(q.errors)
	if med > q.params.QuantileDeadZone || med < -q.params.QuantileDeadZone {
		shift := clamp(med, -q.params.QuantileMedianClip, q.params.QuantileMedianClip) * q.params.QuantileAlpha
		q.quantile = clamp(0.5+shift, q.params.QuantileMin, q.params.QuantileMax)
	} else {
		q.quantile = 0.5
	}
}

func median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
