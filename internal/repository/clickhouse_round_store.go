package repository

import (
	"context"
	"fmt"

	"RugPull/internal/domain/models"
	"RugPull/internal/domain/repository"
	pkgch "RugPull/pkg/clickhouse"
)

// ClickHouseRoundStore implements RoundStore for ClickHouse. Finished
// rounds are append-only and queried newest-first, which maps directly
// onto a MergeTree ordered by end time.
type ClickHouseRoundStore struct {
	ch    *pkgch.Client
	table string
}

// NewClickHouseRoundStore creates a ClickHouse round store.
func NewClickHouseRoundStore(ch *pkgch.Client, table string) repository.RoundStore {
	if table == "" {
		table = "rounds"
	}
	return &ClickHouseRoundStore{ch: ch, table: table}
}

func (s *ClickHouseRoundStore) Init(ctx context.Context) error {
	stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		round_id       String,
		final_tick     Int32,
		end_price      Float64,
		peak_price     Float64,
		peak_tick      Int32,
		predicted_tick Int32,
		abs_error      Float64,
		covered        UInt8,
		ended_at       DateTime64(3)
	) ENGINE = MergeTree()
	ORDER BY (ended_at, round_id)`, s.table)
	return s.ch.InitSchema(ctx, []string{stmt})
}

func (s *ClickHouseRoundStore) StoreOutcome(ctx context.Context, o *models.RoundOutcome) error {
	if o == nil || o.RoundID == "" {
		return fmt.Errorf("round outcome invalid")
	}
	covered := uint8(0)
	if o.Covered {
		covered = 1
	}
	q := fmt.Sprintf("INSERT INTO %s (round_id, final_tick, end_price, peak_price, peak_tick, predicted_tick, abs_error, covered, ended_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)", s.table)
	_, err := s.ch.DB().ExecContext(ctx, q,
		o.RoundID,
		int32(o.FinalTick),
		o.EndPrice,
		o.PeakPrice,
		int32(o.PeakTick),
		int32(o.PredictedTick),
		o.AbsError,
		covered,
		o.EndedAt,
	)
	return err
}

func (s *ClickHouseRoundStore) RecentOutcomes(ctx context.Context, limit int) ([]*models.RoundOutcome, error) {
	if limit <= 0 {
		limit = 100
	}
	q := fmt.Sprintf("SELECT round_id, final_tick, end_price, peak_price, peak_tick, predicted_tick, abs_error, covered, ended_at FROM %s ORDER BY ended_at DESC LIMIT ?", s.table)
	rows, err := s.ch.DB().QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var outcomes []*models.RoundOutcome
	for rows.Next() {
		var o models.RoundOutcome
		var finalTick, peakTick, predictedTick int32
		var covered uint8
		if err := rows.Scan(&o.RoundID, &finalTick, &o.EndPrice, &o.PeakPrice, &peakTick, &predictedTick, &o.AbsError, &covered, &o.EndedAt); err != nil {
			return nil, err
		}
		o.FinalTick = int(finalTick)
		o.PeakTick = int(peakTick)
		o.PredictedTick = int(predictedTick)
		o.Covered = covered == 1
		outcomes = append(outcomes, &o)
	}
	return outcomes, rows.Err()
}

func (s *ClickHouseRoundStore) Health(ctx context.Context) error {
	return s.ch.Health(ctx)
}

func (s *ClickHouseRoundStore) Close() error {
	return nil // Managed by pkg
}
