package usecase

import (
	"context"
	"encoding/json"
	"time"

	"RugPull/internal/domain/models"
	domrepo "RugPull/internal/domain/repository"
	mid "RugPull/internal/middleware"
	pkgkafka "RugPull/pkg/kafka"
)

// KafkaEventsHandler consumes round events replayed through Kafka and
// feeds them into the same pipeline as the live feed. This is the
// ingest path for backfills and for running the engine off a recorded
// topic instead of the websocket.
type KafkaEventsHandler struct {
	topic   string
	pipe    *mid.RealtimePipeline
	metrics domrepo.Metrics
}

func NewKafkaEventsHandler(topic string, pipe *mid.RealtimePipeline, metrics domrepo.Metrics) *KafkaEventsHandler {
	return &KafkaEventsHandler{topic: topic, pipe: pipe, metrics: metrics}
}

func (h *KafkaEventsHandler) Topic() string { return h.topic }

func (h *KafkaEventsHandler) Handle(ctx context.Context, b []byte) error {
	var ev models.RoundEvent
	if err := json.Unmarshal(b, &ev); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	if ev.ReceivedAt.IsZero() {
		ev.ReceivedAt = time.Now()
	}

	start := time.Now()
	err := h.pipe.Process(ctx, &ev)
	h.metrics.RecordLatency("consumer_process_seconds", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_process")
		return err
	}
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaEventsHandler)(nil)
