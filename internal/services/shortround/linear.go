package shortround

import (
	"context"
	"math"

	"RugPull/internal/domain/models"
	"RugPull/internal/domain/service"
)

// LinearScorer is a logistic model over the short-round signals. The
// coefficients come from an offline fit against recorded feed history
// and are deliberately small in number: with only a handful of ticks
// available, anything richer overfits.
type LinearScorer struct {
	intercept float64
	wVelocity float64
	wAccel    float64
	wCluster  float64
	wDrought  float64
}

var _ service.ShortRoundScorer = (*LinearScorer)(nil)

func NewLinearScorer() *LinearScorer {
	return &LinearScorer{
		intercept: -1.5,
		wVelocity: 1.2,
		wAccel:    0.8,
		wCluster:  1.0,
		wDrought:  -0.4,
	}
}

func (s *LinearScorer) Score(_ context.Context, sig models.ShortRoundSignals) (float64, error) {
	z := s.intercept +
		s.wVelocity*sig.Velocity +
		s.wAccel*sig.Acceleration +
		s.wCluster*sig.ClusterFactor +
		s.wDrought*sig.DroughtPhase
	return 1 / (1 + math.Exp(-z)), nil
}
