package usecase

import (
	"context"
	"fmt"

	"RugPull/internal/domain/models"
	drepo "RugPull/internal/domain/repository"
	"RugPull/pkg/logger"
	"RugPull/pkg/queue"
)

// RoundArchiveType is the queue message type for finished rounds.
const RoundArchiveType = "round_archive"

// RoundArchiveJob drains finished rounds off the queue into the round
// store. Archival runs out of band so a slow insert cannot stall the
// tick path.
type RoundArchiveJob struct {
	store drepo.RoundStore
	log   *logger.Logger
}

var _ queue.Job = (*RoundArchiveJob)(nil)

func NewRoundArchiveJob(store drepo.RoundStore, log *logger.Logger) *RoundArchiveJob {
	return &RoundArchiveJob{store: store, log: log}
}

func (j *RoundArchiveJob) Name() string { return "round_archive_job" }

func (j *RoundArchiveJob) Type() string { return RoundArchiveType }

func (j *RoundArchiveJob) Handle(ctx context.Context, payload interface{}) error {
	outcome, err := queue.ParsePayload[models.RoundOutcome](payload)
	if err != nil {
		return fmt.Errorf("parse round outcome: %w", err)
	}
	if err := j.store.StoreOutcome(ctx, outcome); err != nil {
		return fmt.Errorf("store round outcome: %w", err)
	}
	j.log.Debug("round archived",
		logger.String("round_id", outcome.RoundID),
		logger.Int("final_tick", outcome.FinalTick))
	return nil
}
