package prediction

import "sort"

// ConformalCalibrator turns the point prediction into a coverage
// interval. Half-widths come from the empirical quantile of recent
// nonconformity scores; a PID term on the realized-vs-target coverage
// gap keeps the interval honest when the score distribution shifts
// faster than the window turns over.
type ConformalCalibrator struct {
	params Params

	scores []float64
	hits   []bool

	integral float64
	gap      float64
	prevGap  float64
	widen    float64

	lastHalfWidth float64
}

func NewConformalCalibrator(params Params) *ConformalCalibrator {
	return &ConformalCalibrator{
		params: params,
		widen:  1.0,
	}
}

// Interval returns the coverage band around a point prediction. The
// lower bound never precedes the current tick: a round still alive
// cannot have ended already.
func (c *ConformalCalibrator) Interval(currentTick, predicted int) (lower, upper int) {
	hw := c.halfWidth()
	c.lastHalfWidth = hw

	lower = predicted - int(hw)
	upper = predicted + int(hw)
	if lower <= currentTick {
		lower = currentTick + 1
	}
	if upper < lower {
		upper = lower
	}
	return lower, upper
}

// RecordOutcome folds a finished round: the nonconformity score joins
// the calibration window, and the hit/miss outcome drives the PID
// correction toward the coverage target.
func (c *ConformalCalibrator) RecordOutcome(predicted, actual int) {
	score := float64(actual - predicted)
	if score < 0 {
		score = -score
	}
	c.fold(score, score <= c.lastHalfWidth)
}

// RestoreOutcome replays a persisted score with the coverage outcome
// recorded when the round actually finished, so a restart does not
// re-derive hits against an interval that no longer exists.
func (c *ConformalCalibrator) RestoreOutcome(score float64, covered bool) {
	if score < 0 {
		score = -score
	}
	c.fold(score, covered)
}

func (c *ConformalCalibrator) fold(score float64, hit bool) {
	c.hits = append(c.hits, hit)
	if len(c.hits) > c.params.CoverageWindow {
		c.hits = c.hits[1:]
	}

	c.scores = append(c.scores, score)
	if len(c.scores) > c.params.CalibrationWindow {
		c.scores = c.scores[1:]
	}
	if len(c.scores) >= c.params.CalibrationWarmup {
		c.widen = 1.0
	}

	c.prevGap = c.gap
	c.gap = c.params.TargetCoverage - c.RealizedCoverage()
	c.integral = clamp(c.integral+c.gap, -2, 2)
}

// RealizedCoverage is the hit rate over the recent coverage window.
// Before any outcome arrives it reports the target, so the PID gap
// starts at zero instead of jerking the interval on round one.
func (c *ConformalCalibrator) RealizedCoverage() float64 {
	if len(c.hits) == 0 {
		return c.params.TargetCoverage
	}
	n := 0
	for _, h := range c.hits {
		if h {
			n++
		}
	}
	return float64(n) / float64(len(c.hits))
}

// Recalibrate discards the score window after confirmed drift and
// widens the warm-up interval until fresh scores accumulate.
func (c *ConformalCalibrator) Recalibrate() {
	c.scores = c.scores[:0]
	c.integral = 0
	c.gap = 0
	c.prevGap = 0
	c.widen = 1.5
}

func (c *ConformalCalibrator) halfWidth() float64 {
	if len(c.scores) < c.params.CalibrationWarmup {
		return c.params.DefaultHalfWidth * c.widen
	}

	level := c.params.TargetCoverage + c.correction()
	level = clamp(level, 0.5, 0.99)

	sorted := make([]float64, len(c.scores))
	copy(sorted, c.scores)
	sort.Float64s(sorted)

	idx := int(level * float64(len(sorted)))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx] * c.widen
}

func (c *ConformalCalibrator) correction() float64 {
	return c.params.PIDKp*c.gap + c.params.PIDKi*c.integral + c.params.PIDKd*(c.gap-c.prevGap)
}
