package logger

import (
	"context"
	"sync"
	"testing"
	"time"
)

type capturePublisher struct {
	mu      sync.Mutex
	topics  []string
	batches [][]AggregatedLogEntry
}

func (p *capturePublisher) PublishMessage(_ context.Context, topic string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	if logs, ok := payload.([]AggregatedLogEntry); ok {
		p.batches = append(p.batches, logs)
	}
	return nil
}

func (p *capturePublisher) waitForBatch(t *testing.T) []AggregatedLogEntry {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		p.mu.Lock()
		if len(p.batches) > 0 {
			batch := p.batches[0]
			p.mu.Unlock()
			return batch
		}
		p.mu.Unlock()
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("no log batch published before deadline")
	return nil
}

func TestCollectorFlushesAtCountThreshold(t *testing.T) {
	pub := &capturePublisher{}
	c := NewLogCollector(&CollectionConfig{
		TimeInterval:   time.Hour,
		CountThreshold: 2,
		Topic:          "logs.test",
		Publisher:      pub,
	})
	defer c.Close()

	c.AddLog("error", "store write failed", map[string]interface{}{"round": "r1"}, "repo.go:10")
	c.AddLog("error", "feed disconnected", nil, "client.go:44")

	batch := pub.waitForBatch(t)
	if len(batch) != 2 {
		t.Fatalf("batch size %d, want 2", len(batch))
	}
	pub.mu.Lock()
	topic := pub.topics[0]
	pub.mu.Unlock()
	if topic != "logs.test" {
		t.Fatalf("published to %q, want logs.test", topic)
	}
}

func TestCollectorAggregatesDuplicates(t *testing.T) {
	pub := &capturePublisher{}
	c := NewLogCollector(&CollectionConfig{
		TimeInterval:   time.Hour,
		CountThreshold: 2,
		Topic:          "logs.test",
		Publisher:      pub,
	})
	defer c.Close()

	// Identical entries collapse into one aggregate, so the count
	// threshold tracks unique entries only.
	for i := 0; i < 3; i++ {
		c.AddLog("error", "store write failed", nil, "repo.go:10")
	}
	c.AddLog("error", "feed disconnected", nil, "client.go:44")

	batch := pub.waitForBatch(t)
	if len(batch) != 2 {
		t.Fatalf("batch size %d, want 2", len(batch))
	}
	counts := map[string]int{}
	for _, e := range batch {
		counts[e.Message] = e.Count
	}
	if counts["store write failed"] != 3 {
		t.Fatalf("duplicate count %d, want 3", counts["store write failed"])
	}
	if counts["feed disconnected"] != 1 {
		t.Fatalf("unique count %d, want 1", counts["feed disconnected"])
	}
}

func TestCollectorFinalFlushOnClose(t *testing.T) {
	pub := &capturePublisher{}
	c := NewLogCollector(&CollectionConfig{
		TimeInterval:   time.Hour,
		CountThreshold: 100,
		Topic:          "logs.test",
		Publisher:      pub,
	})

	c.AddLog("error", "store write failed", nil, "repo.go:10")
	c.Close()

	batch := pub.waitForBatch(t)
	if len(batch) != 1 {
		t.Fatalf("final flush batch size %d, want 1", len(batch))
	}
}

func TestLoggerErrorFeedsCollector(t *testing.T) {
	pub := &capturePublisher{}
	lg, err := New(&Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	lg.AddCollector(&CollectionConfig{
		TimeInterval:   time.Hour,
		CountThreshold: 1,
		Topic:          "logs.test",
		Publisher:      pub,
	})
	defer lg.RemoveCollector()

	lg.Error("archive enqueue failed", String("round", "r7"))

	batch := pub.waitForBatch(t)
	if len(batch) != 1 {
		t.Fatalf("batch size %d, want 1", len(batch))
	}
	e := batch[0]
	if e.Level != "error" || e.Message != "archive enqueue failed" {
		t.Fatalf("unexpected entry %+v", e)
	}
	if e.Fields["round"] != "r7" {
		t.Fatalf("field round = %v, want r7", e.Fields["round"])
	}
}
