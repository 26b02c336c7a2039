package usecase

import (
	"context"
	"testing"
	"time"

	"RugPull/internal/domain/models"
)

func TestArchiveJobStoresOutcome(t *testing.T) {
	store := &stubStore{}
	job := NewRoundArchiveJob(store, testLogger(t))

	outcome := models.RoundOutcome{
		RoundID:   "r9",
		FinalTick: 142,
		EndPrice:  0.02,
		PeakPrice: 3.4,
		EndedAt:   time.Unix(1700000000, 0),
	}
	if err := job.Handle(context.Background(), outcome); err != nil {
		t.Fatalf("handle: %v", err)
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	if len(store.outcomes) != 1 {
		t.Fatalf("stored %d outcomes, want 1", len(store.outcomes))
	}
	if store.outcomes[0].RoundID != "r9" || store.outcomes[0].FinalTick != 142 {
		t.Fatalf("unexpected outcome %+v", store.outcomes[0])
	}
}

func TestArchiveJobParsesMapPayload(t *testing.T) {
	store := &stubStore{}
	job := NewRoundArchiveJob(store, testLogger(t))

	// redis delivery round-trips payloads through JSON
	payload := map[string]interface{}{
		"round_id":   "r10",
		"final_tick": float64(88),
		"peak_price": 12.5,
	}
	if err := job.Handle(context.Background(), payload); err != nil {
		t.Fatalf("handle: %v", err)
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	if store.outcomes[0].RoundID != "r10" || store.outcomes[0].FinalTick != 88 {
		t.Fatalf("unexpected outcome %+v", store.outcomes[0])
	}
}

func TestArchiveJobRejectsBadPayload(t *testing.T) {
	job := NewRoundArchiveJob(&stubStore{}, testLogger(t))
	if err := job.Handle(context.Background(), 42); err == nil {
		t.Fatalf("expected parse error")
	}
}
