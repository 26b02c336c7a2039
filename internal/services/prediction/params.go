package prediction

import "time"

// HazardWeights is the linear blend applied to snapshot features when
// building per-tick hazard logits. The values are a tunable parameter
// set calibrated by backtesting, not constants of the model.
type HazardWeights struct {
	Volatility float64
	Momentum   float64
	Streak     float64
	TimeDecay  float64
}

// Params collects every tunable of the prediction core. Zero values are
// never valid; construct via DefaultParams and override from config.
type Params struct {
	// hazard model
	HorizonTicks   int
	BaseHazardRate float64
	Weights        HazardWeights

	// feature engine
	ReturnWindow   int
	EMAFastAlpha   float64
	EMASlowAlpha   float64
	HazardScaleMin float64
	HazardScaleMax float64
	FeatureBudget  time.Duration

	// early-peak regime detector
	RegimeRatioThreshold float64
	RegimeSustainTicks   int
	RegimeEarlyWindow    int
	RegimeHazardScale    float64
	RegimeDecayTau       float64
	RegimeBaselineAlpha  float64

	// quantile bias corrector
	QuantileAdjustmentEnabled bool
	QuantileDeadZone          float64
	QuantileAlpha             float64
	QuantileMedianClip        float64
	QuantileMin               float64
	QuantileMax               float64
	ErrorWindow               int

	// conformal calibrator
	TargetCoverage    float64
	CalibrationWindow int
	CalibrationWarmup int
	DefaultHalfWidth  float64
	CoverageWindow    int
	PIDKp             float64
	PIDKi             float64
	PIDKd             float64

	// drift detector
	DriftDelta    float64
	DriftLambda   float64
	DriftMeanRate float64

	// short-round gate
	ShortRoundEarlyWindow       int
	ShortRoundThreshold         float64
	ShortRoundCeiling           int
	ShortRoundConfidencePenalty float64

	// bet decision engine
	BetWindowTicks          int
	BetCooldownTicks        int
	BetProbabilityThreshold float64
	PayoutMultiplier        float64

	// accuracy tracking
	AccuracyTolerance float64
	AccuracyWindow    int
}

// DefaultParams returns the calibrated defaults. BaseHazardRate 0.005
// anchors the implied mean round length near 200 ticks.
func DefaultParams() Params {
	return Params{
		HorizonTicks:   80,
		BaseHazardRate: 0.005,
		Weights: HazardWeights{
			Volatility: 6.0,
			Momentum:   -1.5,
			Streak:     0.04,
			TimeDecay:  0.1,
		},

		ReturnWindow:   40,
		EMAFastAlpha:   0.2,
		EMASlowAlpha:   0.05,
		HazardScaleMin: 0.6,
		HazardScaleMax: 1.5,
		FeatureBudget:  10 * time.Millisecond,

		RegimeRatioThreshold: 2.8,
		RegimeSustainTicks:   10,
		RegimeEarlyWindow:    100,
		RegimeHazardScale:    0.55,
		RegimeDecayTau:       60,
		RegimeBaselineAlpha:  0.1,

		QuantileAdjustmentEnabled: true,
		QuantileDeadZone:          0.1,
		QuantileAlpha:             0.3,
		QuantileMedianClip:        0.3,
		QuantileMin:               0.3,
		QuantileMax:               0.8,
		ErrorWindow:               50,

		TargetCoverage:    0.85,
		CalibrationWindow: 100,
		CalibrationWarmup: 20,
		DefaultHalfWidth:  75,
		CoverageWindow:    50,
		PIDKp:             0.6,
		PIDKi:             0.05,
		PIDKd:             0.1,

		DriftDelta:    0.005,
		DriftLambda:   50,
		DriftMeanRate: 0.01,

		ShortRoundEarlyWindow:       25,
		ShortRoundThreshold:         0.6,
		ShortRoundCeiling:           10,
		ShortRoundConfidencePenalty: 0.8,

		BetWindowTicks:          40,
		BetCooldownTicks:        4,
		BetProbabilityThreshold: 0.20,
		PayoutMultiplier:        4.0,

		AccuracyTolerance: 50,
		AccuracyWindow:    50,
	}
}
