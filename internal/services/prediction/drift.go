package prediction

// DriftDetector runs a Page-Hinkley test over per-round absolute
// prediction errors. The adaptive mean tracks the error level slowly;
// a sustained upward departure accumulates in the cumulative sum until
// the gap to its running minimum crosses the threshold.
type DriftDetector struct {
	params Params

	mean    float64
	sum     float64
	minSum  float64
	samples int
	events  int
}

func NewDriftDetector(params Params) *DriftDetector {
	return &DriftDetector{params: params}
}

// Observe folds one absolute error and reports whether drift fired.
// Firing resets the test so the next event needs fresh evidence.
func (d *DriftDetector) Observe(absError float64) bool {
	if d.samples == 0 {
		d.mean = absError
	} else {
		d.mean += d.params.DriftMeanRate * (absError - d.mean)
	}
	d.samples++

	d.sum += absError - d.mean - d.params.DriftDelta
	if d.sum < d.minSum {
		d.minSum = d.sum
	}

	if d.sum-d.minSum > d.params.DriftLambda {
		d.reset()
		d.events++
		return true
	}
	return false
}

// Statistic returns the current test statistic, the distance of the
// cumulative sum from its running minimum.
func (d *DriftDetector) Statistic() float64 {
	return d.sum - d.minSum
}

// Events returns the number of drift events detected so far.
func (d *DriftDetector) Events() int {
	return d.events
}

// reset clears the test and re-seeds the adaptive mean from the next
// sample, so the detector re-anchors at the post-shift error level
// instead of refiring on every round of a persistent shift.
func (d *DriftDetector) reset() {
	d.sum = 0
	d.minSum = 0
	d.samples = 0
}
