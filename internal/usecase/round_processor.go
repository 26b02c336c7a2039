package usecase

import (
	"context"
	"fmt"
	"time"

	"RugPull/internal/domain/models"
	drepo "RugPull/internal/domain/repository"
	"RugPull/internal/services/prediction"
	"RugPull/pkg/logger"
	"RugPull/pkg/queue"
)

// RoundProcessor routes validated feed events into the prediction
// engine and fans the results out: predictions to the broker, finished
// rounds to the archival queue. Publishing is best-effort; a broker
// outage never blocks the tick path.
type RoundProcessor struct {
	engine  *prediction.Engine
	pub     drepo.Publisher
	queue   queue.QueueService
	store   drepo.RoundStore
	metrics drepo.Metrics
	log     *logger.Logger
}

// NewRoundProcessor creates a new RoundProcessor instance. The store
// is the synchronous fallback used when no archival queue is wired.
func NewRoundProcessor(
	engine *prediction.Engine,
	pub drepo.Publisher,
	q queue.QueueService,
	store drepo.RoundStore,
	metrics drepo.Metrics,
	log *logger.Logger,
) *RoundProcessor {
	return &RoundProcessor{
		engine:  engine,
		pub:     pub,
		queue:   q,
		store:   store,
		metrics: metrics,
		log:     log,
	}
}

// Process handles a single round event.
func (p *RoundProcessor) Process(ctx context.Context, ev *models.RoundEvent) error {
	if ev == nil {
		return fmt.Errorf("event is nil")
	}

	switch ev.Type {
	case models.EventRoundStart:
		p.engine.StartRound(ev.RoundID)
		p.metrics.RecordEvent("round_start")
		return nil
	case models.EventTick:
		return p.processTick(ctx, ev)
	case models.EventRoundEnd:
		return p.processEnd(ctx, ev)
	default:
		p.metrics.RecordError("unknown_event")
		return fmt.Errorf("unknown event type: %s", ev.Type)
	}
}

func (p *RoundProcessor) processTick(ctx context.Context, ev *models.RoundEvent) error {
	start := time.Now()

	record, rec, err := p.engine.ProcessTick(ctx, *ev)
	if err != nil {
		p.metrics.RecordError("process_tick")
		return fmt.Errorf("process tick: %w", err)
	}

	p.metrics.RecordEvent("tick")
	p.metrics.RecordPrediction(float64(record.PredictedTick), record.Confidence)
	p.metrics.RecordLatency("process_tick", time.Since(start).Seconds())

	if p.pub != nil {
		if err := p.pub.PublishPrediction(ctx, &record, &rec); err != nil {
			p.metrics.RecordError("publish_prediction")
			p.log.Warn("prediction publish failed",
				logger.String("round_id", record.RoundID),
				logger.Int("tick", record.Tick),
				logger.Error(err))
		}
	}
	return nil
}

func (p *RoundProcessor) processEnd(ctx context.Context, ev *models.RoundEvent) error {
	outcome := p.engine.EndRound(ctx, *ev)
	p.metrics.RecordEvent("round_end")

	status := p.engine.Status()
	p.metrics.RecordCoverage(status.RealizedCoverage)
	p.metrics.RecordDriftStatistic(status.DriftStatistic)

	if p.queue != nil {
		if err := p.queue.PublishMessage(ctx, RoundArchiveType, outcome); err != nil {
			p.metrics.RecordError("archive_enqueue")
			p.log.Error("round archive enqueue failed",
				logger.String("round_id", outcome.RoundID),
				logger.Error(err))
		}
		return nil
	}
	if p.store != nil {
		if err := p.store.StoreOutcome(ctx, &outcome); err != nil {
			p.metrics.RecordError("archive_store")
			p.log.Error("round store failed",
				logger.String("round_id", outcome.RoundID),
				logger.Error(err))
		}
	}
	return nil
}
