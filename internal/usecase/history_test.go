package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"RugPull/internal/domain/models"
	"RugPull/internal/service/cache"
)

type countingStore struct {
	stubStore
	queries int
}

func (s *countingStore) RecentOutcomes(ctx context.Context, limit int) ([]*models.RoundOutcome, error) {
	s.queries++
	return s.stubStore.RecentOutcomes(ctx, limit)
}

func seededStore(n int) *countingStore {
	s := &countingStore{}
	for i := 0; i < n; i++ {
		s.outcomes = append(s.outcomes, &models.RoundOutcome{
			RoundID:   fmt.Sprintf("r%d", i),
			FinalTick: 100 + i,
			EndedAt:   time.Unix(int64(1000+i), 0),
		})
	}
	return s
}

func TestHistoryServesFromStore(t *testing.T) {
	store := seededStore(5)
	svc := NewHistoryService(store, cache.NewTTLCache(), time.Minute)

	got, err := svc.RecentOutcomes(context.Background(), 3)
	if err != nil {
		t.Fatalf("recent outcomes: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d outcomes, want 3", len(got))
	}
	if got[0].RoundID != "r0" {
		t.Fatalf("unexpected first outcome %q", got[0].RoundID)
	}
}

func TestHistoryCachesRepeatedQueries(t *testing.T) {
	store := seededStore(5)
	svc := NewHistoryService(store, cache.NewTTLCache(), time.Minute)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		if _, err := svc.RecentOutcomes(ctx, 3); err != nil {
			t.Fatalf("query %d: %v", i, err)
		}
	}
	if store.queries != 1 {
		t.Fatalf("store queried %d times, want 1", store.queries)
	}

	// a different limit is a different cache key
	if _, err := svc.RecentOutcomes(ctx, 5); err != nil {
		t.Fatalf("limit 5: %v", err)
	}
	if store.queries != 2 {
		t.Fatalf("store queried %d times, want 2", store.queries)
	}
}

func TestHistoryWorksWithoutCache(t *testing.T) {
	store := seededStore(2)
	svc := NewHistoryService(store, nil, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := svc.RecentOutcomes(ctx, 2); err != nil {
			t.Fatalf("query %d: %v", i, err)
		}
	}
	if store.queries != 3 {
		t.Fatalf("store queried %d times, want 3", store.queries)
	}
}

func TestHistoryPropagatesStoreError(t *testing.T) {
	store := seededStore(0)
	store.err = fmt.Errorf("clickhouse unavailable")
	svc := NewHistoryService(store, cache.NewTTLCache(), time.Minute)

	if _, err := svc.RecentOutcomes(context.Background(), 10); err == nil {
		t.Fatalf("expected store error")
	}
}
