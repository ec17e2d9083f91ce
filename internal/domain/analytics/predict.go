package analytics

import (
	"fmt"

	"github.com/okian/statboard/internal/domain/model"
	"github.com/okian/statboard/internal/domain/regression"
)

// Prediction is the fitted points model and its per-row estimates.
type Prediction struct {
	Model regression.Model      `json:"model"`
	Rows  []model.PredictionRow `json:"rows"`
}

// Predict fits Points ~ a + b*Assists + c*Rebounds on records and estimates
// points for every record. The model is refit on each call.
func Predict(records []model.Record) (Prediction, error) {
	assists := make([]float64, len(records))
	rebounds := make([]float64, len(records))
	points := make([]float64, len(records))
	for i, r := range records {
		assists[i] = r.Assists
		rebounds[i] = r.Rebounds
		points[i] = r.Points
	}

	fit, err := regression.Fit(assists, rebounds, points)
	if err != nil {
		return Prediction{}, fmt.Errorf("%w: %w", ErrInsufficientData, err)
	}

	rows := make([]model.PredictionRow, len(records))
	for i, r := range records {
		rows[i] = model.PredictionRow{
			Player:    r.Player,
			Actual:    r.Points,
			Predicted: fit.Predict(r.Assists, r.Rebounds),
		}
	}
	return Prediction{Model: fit, Rows: rows}, nil
}
