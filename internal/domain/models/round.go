package models

import "time"

// EventType classifies feed events for a round lifecycle.
type EventType string

const (
	EventRoundStart EventType = "round_start"
	EventTick       EventType = "tick"
	EventRoundEnd   EventType = "round_end"
)

// RoundEvent is a single message from the game feed.
// Tick events carry tick/price/peak; end events carry the terminal tick
// and final price.
type RoundEvent struct {
	Type       EventType `json:"type"`
	RoundID    string    `json:"round_id"`
	Tick       int       `json:"tick"`
	Price      float64   `json:"price"`
	PeakPrice  float64   `json:"peak_price"`
	FinalTick  int       `json:"final_tick,omitempty"`
	FinalPrice float64   `json:"final_price,omitempty"`
	ReceivedAt time.Time `json:"-"`
}

// Round is the live state of one episode, owned by the tracker for the
// round's lifetime and discarded once the terminal event is processed.
type Round struct {
	ID           string
	StartTick    int
	CurrentTick  int
	CurrentPrice float64
	PeakPrice    float64
	PeakTick     int
	Ended        bool
	FinalTick    int
	FinalPrice   float64
	StartedAt    time.Time
}

// RoundOutcome is the completed-round record fed back into calibration
// and persisted for history queries.
type RoundOutcome struct {
	RoundID       string    `json:"round_id"`
	FinalTick     int       `json:"final_tick"`
	EndPrice      float64   `json:"end_price"`
	PeakPrice     float64   `json:"peak_price"`
	PeakTick      int       `json:"peak_tick"`
	PredictedTick int       `json:"predicted_tick"`
	AbsError      float64   `json:"abs_error"`
	Covered       bool      `json:"covered"`
	EndedAt       time.Time `json:"ended_at"`
}

// UltraShort reports whether the round ended at or below the
// ultra-short threshold (10 ticks).
func (o *RoundOutcome) UltraShort() bool { return o.FinalTick <= 10 }

// MaxPayout reports whether the round paid out at or above the maximum
// payout price level.
func (o *RoundOutcome) MaxPayout() bool { return o.EndPrice >= 0.019 }

// Moonshot reports whether the round peaked at 50x or above.
func (o *RoundOutcome) Moonshot() bool { return o.PeakPrice >= 50.0 }
