package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"RugPull/internal/domain/models"
	drepo "RugPull/internal/domain/repository"
	"RugPull/internal/service/cache"
)

// HistoryService serves completed-round history with a short TTL cache
// in front of the store. History is append-only, so a few seconds of
// staleness is invisible to callers while insulating the store from
// polling dashboards.
type HistoryService struct {
	store drepo.RoundStore
	cache cache.BytesCache
	ttl   time.Duration
}

func NewHistoryService(store drepo.RoundStore, c cache.BytesCache, ttl time.Duration) *HistoryService {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return &HistoryService{store: store, cache: c, ttl: ttl}
}

// RecentOutcomes returns the newest completed rounds, newest first.
func (s *HistoryService) RecentOutcomes(ctx context.Context, limit int) ([]*models.RoundOutcome, error) {
	key := fmt.Sprintf("history:%d", limit)
	if s.cache != nil {
		if b, ok, err := s.cache.GetBytes(key); err == nil && ok {
			var outcomes []*models.RoundOutcome
			if err := json.Unmarshal(b, &outcomes); err == nil {
				return outcomes, nil
			}
		}
	}

	outcomes, err := s.store.RecentOutcomes(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("recent outcomes: %w", err)
	}

	if s.cache != nil {
		if b, err := json.Marshal(outcomes); err == nil {
			_ = s.cache.SetBytes(key, b, s.ttl)
		}
	}
	return outcomes, nil
}
