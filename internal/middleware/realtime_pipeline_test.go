package middleware

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"RugPull/internal/domain/models"
)

type stubProc struct {
	mu     sync.Mutex
	events []*models.RoundEvent
	err    error
}

func (s *stubProc) Process(_ context.Context, ev *models.RoundEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, ev)
	return nil
}

func (s *stubProc) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

type stubMetrics struct {
	mu     sync.Mutex
	errors map[string]int
}

func newStubMetrics() *stubMetrics {
	return &stubMetrics{errors: make(map[string]int)}
}

func (m *stubMetrics) RecordEvent(string) {}
func (m *stubMetrics) RecordError(kind string) {
	m.mu.Lock()
	m.errors[kind]++
	m.mu.Unlock()
}
func (m *stubMetrics) RecordLatency(string, float64)     {}
func (m *stubMetrics) RecordPrediction(float64, float64) {}
func (m *stubMetrics) RecordCoverage(float64)            {}
func (m *stubMetrics) RecordDriftStatistic(float64)      {}

func (m *stubMetrics) errCount(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errors[kind]
}

func tick(round string, n int, price float64) *models.RoundEvent {
	return &models.RoundEvent{Type: models.EventTick, RoundID: round, Tick: n, Price: price}
}

func TestPipelineRejectsInvalidEvents(t *testing.T) {
	proc := &stubProc{}
	p := NewRealtimePipeline(proc, newStubMetrics())
	ctx := context.Background()

	cases := []*models.RoundEvent{
		nil,
		{Type: models.EventTick, RoundID: "", Tick: 1, Price: 1.0},
		{Type: models.EventTick, RoundID: "r1", Tick: -1, Price: 1.0},
		{Type: models.EventTick, RoundID: "r1", Tick: 1, Price: 0},
		{Type: "bogus", RoundID: "r1"},
		{Type: models.EventRoundEnd, RoundID: "r1", FinalTick: -5},
	}
	for i, ev := range cases {
		if err := p.Process(ctx, ev); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
	if proc.count() != 0 {
		t.Fatalf("invalid events reached processor: %d", proc.count())
	}
}

func TestPipelineDropsStaleTicks(t *testing.T) {
	proc := &stubProc{}
	m := newStubMetrics()
	p := NewRealtimePipeline(proc, m, WithMaxRPS(0))
	ctx := context.Background()

	if err := p.Process(ctx, &models.RoundEvent{Type: models.EventRoundStart, RoundID: "r1"}); err != nil {
		t.Fatalf("round start: %v", err)
	}
	if err := p.Process(ctx, tick("r1", 5, 1.2)); err != nil {
		t.Fatalf("tick 5: %v", err)
	}
	// replayed and out-of-order ticks are dropped without error
	if err := p.Process(ctx, tick("r1", 5, 1.2)); err != nil {
		t.Fatalf("duplicate tick: %v", err)
	}
	if err := p.Process(ctx, tick("r1", 3, 1.1)); err != nil {
		t.Fatalf("stale tick: %v", err)
	}
	if err := p.Process(ctx, tick("r1", 6, 1.3)); err != nil {
		t.Fatalf("tick 6: %v", err)
	}

	if got := proc.count(); got != 3 {
		t.Fatalf("processor saw %d events, want 3", got)
	}
	if m.errCount("pipeline_stale_tick") != 2 {
		t.Fatalf("stale drops = %d, want 2", m.errCount("pipeline_stale_tick"))
	}
}

func TestPipelineWatermarkClearedAtRoundEnd(t *testing.T) {
	proc := &stubProc{}
	p := NewRealtimePipeline(proc, newStubMetrics(), WithMaxRPS(0))
	ctx := context.Background()

	if err := p.Process(ctx, tick("r1", 50, 2.0)); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if err := p.Process(ctx, &models.RoundEvent{Type: models.EventRoundEnd, RoundID: "r1", FinalTick: 50, FinalPrice: 2.0}); err != nil {
		t.Fatalf("round end: %v", err)
	}
	// a reused round id starts from a clean watermark
	if err := p.Process(ctx, tick("r1", 1, 1.0)); err != nil {
		t.Fatalf("tick after reset: %v", err)
	}
	if got := proc.count(); got != 3 {
		t.Fatalf("processor saw %d events, want 3", got)
	}
}

func TestPipelineThrottlesBursts(t *testing.T) {
	proc := &stubProc{}
	m := newStubMetrics()
	p := NewRealtimePipeline(proc, m, WithMaxRPS(10))
	ctx := context.Background()

	// a same-instant burst only lets the first tick through
	for i := 1; i <= 5; i++ {
		if err := p.Process(ctx, tick("r1", i, 1.0)); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
	}
	if got := proc.count(); got != 1 {
		t.Fatalf("processor saw %d events, want 1", got)
	}
	if m.errCount("pipeline_throttle") != 4 {
		t.Fatalf("throttle drops = %d, want 4", m.errCount("pipeline_throttle"))
	}

	// round boundary events are never throttled
	if err := p.Process(ctx, &models.RoundEvent{Type: models.EventRoundEnd, RoundID: "r1", FinalTick: 5, FinalPrice: 1.0}); err != nil {
		t.Fatalf("round end: %v", err)
	}
	if got := proc.count(); got != 2 {
		t.Fatalf("processor saw %d events, want 2", got)
	}
}

func TestPipelineThrottleDisabled(t *testing.T) {
	proc := &stubProc{}
	m := newStubMetrics()
	p := NewRealtimePipeline(proc, m, WithMaxRPS(0))
	ctx := context.Background()

	// with the throttle off a same-instant burst passes intact
	for i := 1; i <= 5; i++ {
		if err := p.Process(ctx, tick("r1", i, 1.0)); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
	}
	if got := proc.count(); got != 5 {
		t.Fatalf("processor saw %d events, want 5", got)
	}
	if m.errCount("pipeline_throttle") != 0 {
		t.Fatalf("throttle drops = %d, want 0", m.errCount("pipeline_throttle"))
	}
}

func TestPipelineBuffersOnDownstreamError(t *testing.T) {
	proc := &stubProc{err: fmt.Errorf("store unavailable")}
	m := newStubMetrics()
	p := NewRealtimePipeline(proc, m, WithMaxRPS(0), WithBufferSize(10))
	ctx := context.Background()

	if err := p.Process(ctx, tick("r1", 1, 1.0)); err == nil {
		t.Fatalf("expected downstream error")
	}
	if m.errCount("pipeline_process") != 1 {
		t.Fatalf("process errors = %d, want 1", m.errCount("pipeline_process"))
	}

	// downstream recovers; the background flusher replays the buffered tick
	proc.mu.Lock()
	proc.err = nil
	proc.mu.Unlock()

	p.Start(ctx)
	defer p.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for proc.count() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("buffered event never flushed")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestPipelineTransformHook(t *testing.T) {
	proc := &stubProc{}
	p := NewRealtimePipeline(proc, newStubMetrics(), WithMaxRPS(0), WithTransform(func(ev *models.RoundEvent) *models.RoundEvent {
		if ev.ReceivedAt.IsZero() {
			ev.ReceivedAt = time.Unix(100, 0)
		}
		return ev
	}))
	if err := p.Process(context.Background(), tick("r1", 1, 1.0)); err != nil {
		t.Fatalf("process: %v", err)
	}
	if proc.events[0].ReceivedAt != time.Unix(100, 0) {
		t.Fatalf("transform not applied")
	}
}
