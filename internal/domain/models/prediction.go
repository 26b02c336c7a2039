package models

import (
	"math"
	"time"
)

// HazardStats is the folded survival forecast over a bounded horizon.
// PMF[i] and CDF[i] describe termination at horizon offset i+1 from the
// current tick; Tail is the survival probability past the horizon.
type HazardStats struct {
	PMF        []float64
	CDF        []float64
	Tail       float64
	TailHazard float64 // terminal per-tick hazard, used to extend quantiles past the horizon
	Expected   float64 // mass-weighted horizon offset, tail-corrected
}

// Quantile returns the smallest horizon offset (1-based) whose CDF
// reaches alpha. When the in-horizon mass never gets there the tail is
// extrapolated geometrically at the terminal hazard, so the estimate
// keeps moving instead of saturating at the horizon edge.
func (h *HazardStats) Quantile(alpha float64) int {
	for i, f := range h.CDF {
		if f >= alpha {
			return i + 1
		}
	}
	n := len(h.CDF)
	if h.Tail <= 0 || h.TailHazard <= 0 || h.TailHazard >= 1 || alpha >= 1 {
		return n
	}
	// Solve Tail*(1-hazard)^k <= 1-alpha for the smallest integer k.
	k := math.Log((1-alpha)/h.Tail) / math.Log(1-h.TailHazard)
	if k <= 0 {
		return n
	}
	return n + int(math.Ceil(k))
}

// WindowProbability returns the probability of termination within the
// next w ticks.
func (h *HazardStats) WindowProbability(w int) float64 {
	if len(h.CDF) == 0 || w <= 0 {
		return 0
	}
	if w > len(h.CDF) {
		w = len(h.CDF)
	}
	return h.CDF[w-1]
}

// BetAction is the recommendation verb.
type BetAction string

const (
	BetPlace BetAction = "PLACE"
	BetWait  BetAction = "WAIT"
)

// PredictionRecord is the externally visible prediction for one
// processed observation. Immutable once emitted; a fresh record
// replaces it each tick.
type PredictionRecord struct {
	RoundID         string    `json:"round_id"`
	Tick            int       `json:"tick"`
	PredictedTick   int       `json:"predicted_tick"`
	CoverageLower   int       `json:"coverage_lower"`
	CoverageUpper   int       `json:"coverage_upper"`
	Windows         int       `json:"windows"`
	Confidence      float64   `json:"confidence"`
	QuantileUsed    float64   `json:"quantile_used"`
	Signals         []string  `json:"signals"`
	ShortRoundGated bool      `json:"short_round_gated"`
	Degraded        bool      `json:"degraded"`
	CreatedAt       time.Time `json:"created_at"`
}

// BetRecommendation is the bounded-horizon betting decision emitted
// alongside every prediction, whether or not the threshold is met.
type BetRecommendation struct {
	Action           BetAction `json:"action"`
	WinProbability   float64   `json:"win_probability"`
	ExpectedValue    float64   `json:"expected_value"`
	CoverageEndTick  int       `json:"coverage_end_tick"`
	NextEligibleTick int       `json:"next_eligible_tick"`
}

// EngineStatus is the operator-facing snapshot served by the API.
type EngineStatus struct {
	ActiveRounds     int                `json:"active_rounds"`
	RoundsCompleted  int                `json:"rounds_completed"`
	Accuracy         float64            `json:"accuracy"`
	RealizedCoverage float64            `json:"realized_coverage"`
	TargetCoverage   float64            `json:"target_coverage"`
	DriftStatistic   float64            `json:"drift_statistic"`
	DriftEvents      int                `json:"drift_events"`
	QuantileUsed     float64            `json:"quantile_used"`
	LastBetTick      int                `json:"last_bet_tick"`
	NextEligibleTick int                `json:"next_eligible_tick"`
	Patterns         map[string]float64 `json:"patterns"`
}
