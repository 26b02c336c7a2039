package shortround

import (
	"context"
	"fmt"
	"time"

	"RugPull/internal/domain/models"
	"RugPull/internal/domain/service"
	xhttp "RugPull/pkg/http"
)

// RemoteScorer delegates scoring to an external classifier service
// over HTTP. It is wired in when a pre-trained model runs out of
// process; the gate falls back gracefully when the service is down.
type RemoteScorer struct {
	baseURL string
	client  *xhttp.Client
}

var _ service.ShortRoundScorer = (*RemoteScorer)(nil)

func NewRemoteScorer(baseURL string, timeout time.Duration) *RemoteScorer {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &RemoteScorer{
		baseURL: baseURL,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

type scoreResponse struct {
	Probability float64 `json:"probability"`
}

func (s *RemoteScorer) Score(ctx context.Context, sig models.ShortRoundSignals) (float64, error) {
	if s.baseURL == "" {
		return 0, fmt.Errorf("remote scorer not configured")
	}

	var resp scoreResponse
	err := s.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    s.baseURL + "/score",
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
		Body: sig,
	}, &resp)
	if err != nil {
		return 0, fmt.Errorf("score request: %w", err)
	}
	if resp.Probability < 0 || resp.Probability > 1 {
		return 0, fmt.Errorf("score out of range: %v", resp.Probability)
	}
	return resp.Probability, nil
}
