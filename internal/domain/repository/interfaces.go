package repository

import (
	"context"

	"RugPull/internal/domain/models"
)

// EventStream is the ingestion collaborator delivering round lifecycle
// events from the game feed.
type EventStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.RoundEvent, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// Publisher broadcasts prediction output to downstream consumers.
type Publisher interface {
	PublishPrediction(ctx context.Context, rec *models.PredictionRecord, bet *models.BetRecommendation) error
	Close() error
}

// RoundStore persists completed rounds and serves history queries.
type RoundStore interface {
	Init(ctx context.Context) error
	StoreOutcome(ctx context.Context, o *models.RoundOutcome) error
	RecentOutcomes(ctx context.Context, limit int) ([]*models.RoundOutcome, error)
	Health(ctx context.Context) error
	Close() error
}

// Metrics records operational measurements.
type Metrics interface {
	RecordEvent(kind string)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
	RecordPrediction(predictedTick float64, confidence float64)
	RecordCoverage(rate float64)
	RecordDriftStatistic(stat float64)
}
