package models

// Requests for the prediction API. Defined in domain for consistency and reuse.

type HistoryRequest struct {
	Limit int `query:"limit" json:"limit" default:"100" validate:"gte=1,lte=500"`
}

type PredictionRequest struct {
	RoundID string `query:"round_id" json:"round_id"`
}
