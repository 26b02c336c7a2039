package models

// TickSnapshot is the per-tick derived feature set. A new snapshot
// supersedes the previous one each tick; snapshots are never mutated
// after they are produced.
type TickSnapshot struct {
	RoundID      string  `json:"round_id"`
	Tick         int     `json:"tick"`
	Price        float64 `json:"price"`
	Peak         float64 `json:"peak"`
	EMAFast      float64 `json:"ema_fast"`
	EMASlow      float64 `json:"ema_slow"`
	RetMean      float64 `json:"ret_mean"`
	RetStd       float64 `json:"ret_std"`
	UpStreak     int     `json:"up_streak"`
	DownStreak   int     `json:"down_streak"`
	Drawdown     float64 `json:"drawdown"`
	DistToPeak   float64 `json:"dist_to_peak"`
	SincePeak    int     `json:"since_peak"`
	HazardScale  float64 `json:"hazard_scale"`
	RegimeActive bool    `json:"regime_active"`
	Degraded     bool    `json:"degraded"`
}

// ShortRoundSignals are the inputs handed to the short-round scorer.
// The scorer itself is an injected capability; these are the only
// features it is promised.
type ShortRoundSignals struct {
	Velocity      float64 `json:"velocity"`
	Acceleration  float64 `json:"acceleration"`
	ClusterFactor float64 `json:"cluster_factor"`
	DroughtPhase  float64 `json:"drought_phase"`
}
