package repository

import (
	"context"

	"RugPull/internal/domain/models"
	"RugPull/internal/domain/repository"
	pkgkafka "RugPull/pkg/kafka"
)

// KafkaPublisher implements Publisher for Kafka. Each tick's prediction
// and betting recommendation go out as one message keyed by round id,
// so a partition preserves per-round order.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaPublisher creates a Kafka publisher.
func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) repository.Publisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) PublishPrediction(ctx context.Context, rec *models.PredictionRecord, bet *models.BetRecommendation) error {
	return p.producer.Publish(ctx, p.topic, []byte(rec.RoundID), map[string]interface{}{
		"prediction":     rec,
		"recommendation": bet,
	})
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
