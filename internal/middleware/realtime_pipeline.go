package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"RugPull/internal/domain/models"
	domrepo "RugPull/internal/domain/repository"
)

// Proc is the minimal processor interface the pipeline needs.
type Proc interface {
	Process(ctx context.Context, ev *models.RoundEvent) error
}

// RealtimePipeline sits between the game feed and the prediction
// engine. It validates events, discards stale ticks, throttles noisy
// rounds, and buffers when the downstream processor is unavailable.
type RealtimePipeline struct {
	proc    Proc
	metrics domrepo.Metrics
	maxRPS  int
	bufSize int
	bufCh   chan *models.RoundEvent
	stopCh  chan struct{}
	started bool
	mu      sync.Mutex

	lastSeen  map[string]time.Time // per-round last accepted time
	watermark map[string]int       // per-round highest accepted tick

	// simple format transform hook (optional)
	transform func(*models.RoundEvent) *models.RoundEvent
	// metrics
	bufDepthGauge func(int)
	throttleWarn  func(string)
}

type PipelineOption func(*RealtimePipeline)

// WithMaxRPS sets the max events per second per round. Zero disables
// the throttle.
func WithMaxRPS(n int) PipelineOption {
	return func(p *RealtimePipeline) {
		if n >= 0 {
			p.maxRPS = n
		}
	}
}

// WithBufferSize sets the temporary buffer size when downstream is unavailable.
func WithBufferSize(n int) PipelineOption {
	return func(p *RealtimePipeline) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

// WithTransform sets a transformation hook to modify event format.
func WithTransform(fn func(*models.RoundEvent) *models.RoundEvent) PipelineOption {
	return func(p *RealtimePipeline) { p.transform = fn }
}

// NewRealtimePipeline creates a new pipeline.
func NewRealtimePipeline(proc Proc, metrics domrepo.Metrics, opts ...PipelineOption) *RealtimePipeline {
	p := &RealtimePipeline{
		proc:      proc,
		metrics:   metrics,
		maxRPS:    20,   // default throttle per round; feed ticks arrive at 4/s
		bufSize:   1000, // default buffer
		bufCh:     make(chan *models.RoundEvent, 1000),
		stopCh:    make(chan struct{}),
		lastSeen:  make(map[string]time.Time),
		watermark: make(map[string]int),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.bufSize != cap(p.bufCh) {
		p.bufCh = make(chan *models.RoundEvent, p.bufSize)
	}
	p.bufDepthGauge = func(n int) { p.metrics.RecordLatency("pipeline_buffer_depth", float64(n)) }
	p.throttleWarn = func(round string) { p.metrics.RecordError("pipeline_throttle_" + round) }
	return p
}

// Start launches background flushing of buffered events.
func (p *RealtimePipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go func() {
		backoff := 50 * time.Millisecond
		for {
			select {
			case <-p.stopCh:
				return
			case ev := <-p.bufCh:
				if ev == nil {
					continue
				}
				if err := p.proc.Process(ctx, ev); err != nil {
					// exponential backoff with cap
					if backoff < 2*time.Second {
						backoff *= 2
					}
					p.metrics.RecordError("pipeline_flush")
					time.Sleep(backoff)
					// requeue if space; drop otherwise
					select {
					case p.bufCh <- ev:
					default:
						p.metrics.RecordError("pipeline_buffer_drop")
					}
				} else {
					backoff = 50 * time.Millisecond
				}
			}
		}
	}()
}

// Stop stops the background flushing.
func (p *RealtimePipeline) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	p.mu.Unlock()
	close(p.stopCh)
}

// Process validates, deduplicates, throttles, and forwards an event to
// the downstream processor, buffering on errors. Stale and duplicate
// ticks are dropped without error: the feed replays on reconnect and
// replays must not poison the rolling features.
func (p *RealtimePipeline) Process(ctx context.Context, ev *models.RoundEvent) error {
	start := time.Now()
	if err := validateEvent(ev); err != nil {
		p.metrics.RecordError("pipeline_validate")
		return err
	}
	if p.transform != nil {
		ev = p.transform(ev)
		if err := validateEvent(ev); err != nil {
			p.metrics.RecordError("pipeline_transform_invalid")
			return err
		}
	}
	if !p.advanceWatermark(ev) {
		p.metrics.RecordError("pipeline_stale_tick")
		return nil
	}
	if ev.Type == models.EventTick && !p.allow(ev.RoundID, start) {
		// throttled; record and drop silently
		p.metrics.RecordError("pipeline_throttle")
		if p.throttleWarn != nil {
			p.throttleWarn(ev.RoundID)
		}
		return nil
	}

	if err := p.proc.Process(ctx, ev); err != nil {
		p.metrics.RecordError("pipeline_process")
		// buffer non-blocking
		select {
		case p.bufCh <- ev:
			if p.bufDepthGauge != nil {
				p.bufDepthGauge(len(p.bufCh))
			}
		default:
			p.metrics.RecordError("pipeline_buffer_full")
		}
		return fmt.Errorf("pipeline downstream: %w", err)
	}
	p.metrics.RecordLatency("pipeline_process", time.Since(start).Seconds())
	return nil
}

func validateEvent(ev *models.RoundEvent) error {
	if ev == nil {
		return fmt.Errorf("event nil")
	}
	if ev.RoundID == "" {
		return fmt.Errorf("round id empty")
	}
	switch ev.Type {
	case models.EventRoundStart:
		return nil
	case models.EventTick:
		if ev.Tick < 0 {
			return fmt.Errorf("tick negative")
		}
		if ev.Price <= 0 {
			return fmt.Errorf("price not positive")
		}
		return nil
	case models.EventRoundEnd:
		if ev.FinalTick < 0 {
			return fmt.Errorf("final tick negative")
		}
		return nil
	default:
		return fmt.Errorf("unknown event type %q", ev.Type)
	}
}

// advanceWatermark tracks the highest accepted tick per round and
// rejects anything at or below it. Round boundaries clear the entry so
// the map cannot grow without bound.
func (p *RealtimePipeline) advanceWatermark(ev *models.RoundEvent) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch ev.Type {
	case models.EventRoundStart:
		p.watermark[ev.RoundID] = -1
		return true
	case models.EventRoundEnd:
		delete(p.watermark, ev.RoundID)
		delete(p.lastSeen, ev.RoundID)
		return true
	}

	wm, seen := p.watermark[ev.RoundID]
	if seen && ev.Tick <= wm {
		return false
	}
	p.watermark[ev.RoundID] = ev.Tick
	return true
}

func (p *RealtimePipeline) allow(round string, now time.Time) bool {
	if p.maxRPS <= 0 {
		return true
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	// simple throttle: ensure at most maxRPS per second
	last := p.lastSeen[round]
	if last.IsZero() {
		p.lastSeen[round] = now
		return true
	}
	if now.Sub(last) < time.Second/time.Duration(p.maxRPS) {
		return false
	}
	p.lastSeen[round] = now
	return true
}
