package service

import (
	"context"

	"RugPull/internal/domain/models"
)

// ShortRoundScorer estimates the probability that the current round
// terminates at or below the ultra-short ceiling. The scorer is an
// opaque capability: implementations may be a local linear model or a
// remote pre-trained classifier, and the gate treats them identically.
type ShortRoundScorer interface {
	Score(ctx context.Context, sig models.ShortRoundSignals) (float64, error)
}
