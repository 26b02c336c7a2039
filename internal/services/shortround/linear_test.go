package shortround

import (
	"context"
	"testing"

	"RugPull/internal/domain/models"
)

func TestLinearScorerRange(t *testing.T) {
	s := NewLinearScorer()
	sigs := []models.ShortRoundSignals{
		{},
		{Velocity: -0.5, Acceleration: -0.3},
		{Velocity: 2.0, Acceleration: 1.0, ClusterFactor: 1.5},
		{DroughtPhase: 1.0},
	}
	for _, sig := range sigs {
		p, err := s.Score(context.Background(), sig)
		if err != nil {
			t.Fatalf("score: %v", err)
		}
		if p < 0 || p > 1 {
			t.Fatalf("probability %v out of range for %+v", p, sig)
		}
	}
}

func TestLinearScorerMonotoneInCluster(t *testing.T) {
	s := NewLinearScorer()
	base := models.ShortRoundSignals{Velocity: 0.1, ClusterFactor: 1.0}
	clustered := base
	clustered.ClusterFactor = 1.5

	pBase, _ := s.Score(context.Background(), base)
	pClustered, _ := s.Score(context.Background(), clustered)
	if pClustered <= pBase {
		t.Fatalf("clustering should raise the score: %v <= %v", pClustered, pBase)
	}
}

func TestLinearScorerDroughtSuppresses(t *testing.T) {
	s := NewLinearScorer()
	base := models.ShortRoundSignals{ClusterFactor: 1.0}
	drought := base
	drought.DroughtPhase = 1.0

	pBase, _ := s.Score(context.Background(), base)
	pDrought, _ := s.Score(context.Background(), drought)
	if pDrought >= pBase {
		t.Fatalf("drought should lower the score: %v >= %v", pDrought, pBase)
	}
}
