package usecase

import (
	"context"

	"RugPull/internal/domain/models"
	drepo "RugPull/internal/domain/repository"
	mid "RugPull/internal/middleware"
)

// EventCollector collects round events from the game feed and processes them.
type EventCollector struct {
	stream  drepo.EventStream
	proc    *RoundProcessor
	metrics drepo.Metrics
	pipe    *mid.RealtimePipeline
}

// NewEventCollector creates a new EventCollector instance.
func NewEventCollector(stream drepo.EventStream, proc *RoundProcessor, metrics drepo.Metrics, pipe *mid.RealtimePipeline) *EventCollector {
	return &EventCollector{stream: stream, proc: proc, metrics: metrics, pipe: pipe}
}

// IsConnected returns true if the feed stream is connected.
func (c *EventCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

func (c *EventCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	if c.pipe != nil {
		c.pipe.Start(ctx)
	}
	evCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, evCh, errCh)
	return nil
}

func (c *EventCollector) consume(ctx context.Context, evCh <-chan *models.RoundEvent, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-errCh:
			if err != nil {
				c.metrics.RecordError("stream")
				_ = c.stream.Reconnect(ctx)
			}
		case ev := <-evCh:
			if ev == nil {
				continue
			}
			if c.pipe != nil {
				_ = c.pipe.Process(ctx, ev)
			} else {
				_ = c.proc.Process(ctx, ev)
			}
		}
	}
}

func (c *EventCollector) Stop() error { return c.stream.Close() }

// Processor returns the underlying RoundProcessor for lifecycle management.
func (c *EventCollector) Processor() *RoundProcessor { return c.proc }

// Shutdown stops pipeline and closes stream.
func (c *EventCollector) Shutdown(ctx context.Context) error {
	if c.pipe != nil {
		c.pipe.Stop()
	}
	return c.stream.Close()
}
