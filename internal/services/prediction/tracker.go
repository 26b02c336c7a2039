package prediction

import (
	"context"
	"fmt"
	"sync"

	"RugPull/internal/domain/models"
	"RugPull/internal/domain/service"
	"RugPull/pkg/logger"
)

// Engine wires the per-round components into one tick pipeline and
// owns the round lifecycle. A single goroutine feeds it events; the
// read-side accessors take the lock so the API can observe state while
// the feed is live.
type Engine struct {
	params Params
	log    *logger.Logger

	features  *FeatureEngine
	regime    *RegimeDetector
	hazard    *HazardModel
	quantile  *QuantileCorrector
	conformal *ConformalCalibrator
	drift     *DriftDetector
	patterns  *PatternTracker
	gate      *ShortRoundGate
	bets      *BetEngine

	mu              sync.RWMutex
	round           *models.Round
	roundsCompleted int
	lastPrediction  *models.PredictionRecord
	lastRecommend   *models.BetRecommendation
	accuracyHits    []bool
}

func NewEngine(params Params, scorer service.ShortRoundScorer, log *logger.Logger) *Engine {
	return &Engine{
		params:    params,
		log:       log,
		features:  NewFeatureEngine(params),
		regime:    NewRegimeDetector(params),
		hazard:    NewHazardModel(params),
		quantile:  NewQuantileCorrector(params),
		conformal: NewConformalCalibrator(params),
		drift:     NewDriftDetector(params),
		patterns:  NewPatternTracker(),
		gate:      NewShortRoundGate(params, scorer),
		bets:      NewBetEngine(params),
	}
}

// StartRound resets all per-round state. Cross-round calibration
// (conformal scores, quantile errors, pattern memory) survives.
func (e *Engine) StartRound(roundID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.startRoundLocked(roundID)
}

func (e *Engine) startRoundLocked(roundID string) {
	e.round = &models.Round{ID: roundID}
	e.features.Reset(roundID)
	e.regime.Reset()
	e.lastPrediction = nil
	e.lastRecommend = nil
	e.log.Debug("round started", logger.String("round_id", roundID))
}

// ProcessTick folds one tick event and emits the prediction and the
// betting recommendation for it. A tick for an unknown round starts
// that round implicitly, so joining a feed mid-round still works.
func (e *Engine) ProcessTick(ctx context.Context, ev models.RoundEvent) (models.PredictionRecord, models.BetRecommendation, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.round == nil || e.round.ID != ev.RoundID {
		e.startRoundLocked(ev.RoundID)
	}
	if ev.Tick < e.round.CurrentTick {
		return models.PredictionRecord{}, models.BetRecommendation{},
			fmt.Errorf("out-of-order tick %d for round %s at tick %d", ev.Tick, ev.RoundID, e.round.CurrentTick)
	}
	e.round.CurrentTick = ev.Tick
	e.round.CurrentPrice = ev.Price
	if ev.Price > e.round.PeakPrice {
		e.round.PeakPrice = ev.Price
		e.round.PeakTick = ev.Tick
	}

	snap := e.features.Update(ev.Tick, ev.Price)
	e.patterns.ObservePeak(snap.Peak)
	regimeMult := e.regime.Observe(snap)
	snap.RegimeActive = e.regime.Active()

	stats := e.hazard.Forecast(snap, regimeMult, e.patterns.LogitAdjust())

	q := e.quantile.Quantile()
	predicted := ev.Tick + stats.Quantile(q)

	clusterFactor, droughtPhase := e.patterns.ShortRoundContext()
	gate, err := e.gate.Evaluate(ctx, snap, clusterFactor, droughtPhase)
	if err != nil {
		// Fail open: a scorer outage degrades, never blocks.
		e.log.Warn("short-round scorer unavailable",
			logger.String("round_id", ev.RoundID), logger.Error(err))
		gate = GateResult{}
	}
	if gate.Applied && gate.CappedTick < predicted {
		predicted = gate.CappedTick
	}

	lower, upper := e.conformal.Interval(ev.Tick, predicted)
	// quantize the interval to whole betting windows
	windows := 1
	if wlen := e.params.BetWindowTicks; wlen > 0 {
		windows = (upper - lower + wlen - 1) / wlen
		if windows < 1 {
			windows = 1
		}
		upper = lower + windows*wlen
	}
	rec := e.bets.Decide(ev.Tick, stats)

	signals := e.patterns.Signals()
	if snap.RegimeActive {
		signals = append(signals, "early_peak_regime")
	}

	record := models.PredictionRecord{
		RoundID:         ev.RoundID,
		Tick:            ev.Tick,
		PredictedTick:   predicted,
		CoverageLower:   lower,
		CoverageUpper:   upper,
		Windows:         windows,
		Confidence:      e.confidenceLocked(snap, gate.Applied),
		QuantileUsed:    q,
		Signals:         signals,
		ShortRoundGated: gate.Applied,
		Degraded:        snap.Degraded,
		CreatedAt:       ev.ReceivedAt,
	}

	e.lastPrediction = &record
	e.lastRecommend = &rec
	return record, rec, nil
}

// EndRound folds the terminal event, feeds every calibration loop, and
// returns the outcome record for persistence. Drift confirmation
// triggers conformal recalibration.
func (e *Engine) EndRound(ctx context.Context, ev models.RoundEvent) models.RoundOutcome {
	e.mu.Lock()
	defer e.mu.Unlock()

	outcome := models.RoundOutcome{
		RoundID:   ev.RoundID,
		FinalTick: ev.FinalTick,
		EndPrice:  ev.FinalPrice,
		EndedAt:   ev.ReceivedAt,
	}
	if e.round != nil && e.round.ID == ev.RoundID {
		outcome.PeakPrice = e.round.PeakPrice
		outcome.PeakTick = e.round.PeakTick
	}

	if e.lastPrediction != nil {
		outcome.PredictedTick = e.lastPrediction.PredictedTick
		absErr := float64(ev.FinalTick - e.lastPrediction.PredictedTick)
		if absErr < 0 {
			absErr = -absErr
		}
		outcome.AbsError = absErr
		outcome.Covered = ev.FinalTick >= e.lastPrediction.CoverageLower &&
			ev.FinalTick <= e.lastPrediction.CoverageUpper

		e.quantile.RecordOutcome(e.lastPrediction.PredictedTick, ev.FinalTick)
		e.conformal.RecordOutcome(e.lastPrediction.PredictedTick, ev.FinalTick)
		if e.drift.Observe(absErr) {
			e.conformal.Recalibrate()
			e.log.Warn("prediction drift confirmed, recalibrating intervals",
				logger.String("round_id", ev.RoundID),
				logger.Int("drift_events", e.drift.Events()))
		}

		e.accuracyHits = append(e.accuracyHits, absErr <= e.params.AccuracyTolerance)
		if len(e.accuracyHits) > e.params.AccuracyWindow {
			e.accuracyHits = e.accuracyHits[1:]
		}
	}

	e.patterns.RecordOutcome(outcome)
	e.bets.AdvanceRound(ev.FinalTick)

	e.roundsCompleted++
	e.round = nil
	e.log.Info("round ended",
		logger.String("round_id", ev.RoundID),
		logger.Int("final_tick", ev.FinalTick),
		logger.Int("predicted_tick", outcome.PredictedTick),
		logger.Bool("covered", outcome.Covered))
	return outcome
}

// WarmStart replays persisted round outcomes into the calibration
// loops so a restart does not reset interval coverage or pattern
// memory. Outcomes must be ordered oldest first. Returns the number
// of outcomes with a usable prediction.
func (e *Engine) WarmStart(outcomes []*models.RoundOutcome) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	n := 0
	for _, o := range outcomes {
		if o == nil {
			continue
		}
		if o.PredictedTick > 0 {
			e.quantile.RecordOutcome(o.PredictedTick, o.FinalTick)
			e.conformal.RestoreOutcome(o.AbsError, o.Covered)
			e.accuracyHits = append(e.accuracyHits, o.AbsError <= e.params.AccuracyTolerance)
			if len(e.accuracyHits) > e.params.AccuracyWindow {
				e.accuracyHits = e.accuracyHits[1:]
			}
			n++
		}
		e.patterns.RecordOutcome(*o)
		e.roundsCompleted++
	}
	return n
}

// Status assembles the operator snapshot.
func (e *Engine) Status() models.EngineStatus {
	e.mu.RLock()
	defer e.mu.RUnlock()

	active := 0
	if e.round != nil {
		active = 1
	}
	return models.EngineStatus{
		ActiveRounds:     active,
		RoundsCompleted:  e.roundsCompleted,
		Accuracy:         e.accuracyLocked(),
		RealizedCoverage: e.conformal.RealizedCoverage(),
		TargetCoverage:   e.params.TargetCoverage,
		DriftStatistic:   e.drift.Statistic(),
		DriftEvents:      e.drift.Events(),
		QuantileUsed:     e.quantile.Quantile(),
		LastBetTick:      e.bets.LastBetTick(),
		NextEligibleTick: e.bets.NextEligibleTick(),
		Patterns:         e.patterns.Snapshot(),
	}
}

// LastPrediction returns the most recent emitted prediction, if any.
func (e *Engine) LastPrediction() (models.PredictionRecord, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.lastPrediction == nil {
		return models.PredictionRecord{}, false
	}
	return *e.lastPrediction, true
}

// LastRecommendation returns the most recent betting recommendation.
func (e *Engine) LastRecommendation() (models.BetRecommendation, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.lastRecommend == nil {
		return models.BetRecommendation{}, false
	}
	return *e.lastRecommend, true
}

// confidenceLocked blends the base confidence with pattern strength
// and realized accuracy once enough rounds have completed.
func (e *Engine) confidenceLocked(snap models.TickSnapshot, gated bool) float64 {
	conf := 0.5
	if snap.RegimeActive {
		conf += 0.2
	}
	if e.roundsCompleted >= 20 {
		conf += 0.3 * (e.accuracyLocked() - 0.5)
	}
	if gated {
		conf *= e.params.ShortRoundConfidencePenalty
	}
	return clamp(conf, 0.1, 0.95)
}

func (e *Engine) accuracyLocked() float64 {
	if len(e.accuracyHits) == 0 {
		return 0
	}
	n := 0
	for _, h := range e.accuracyHits {
		if h {
			n++
		}
	}
	return float64(n) / float64(len(e.accuracyHits))
}
