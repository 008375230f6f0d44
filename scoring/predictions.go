package scoring

import (
	"sort"

	etldomain "github.com/skywardair/customer-analytics/etl/domain"
	"github.com/skywardair/customer-analytics/scoring/domain"
)

// AttachPredictions merges classifier output back onto the feature table and
// returns scored rows ordered by churn score descending (the retention
// team's work queue). Probabilities are clamped to [0,1] before the
// dollar-weighted score is derived; customers the classifier did not cover
// get probability 0 and rank last.
func AttachPredictions(
	rows []etldomain.CustomerFeatureRow,
	predictions []domain.Prediction,
) ([]etldomain.ScoredCustomerRow, error) {
	if len(rows) == 0 {
		return nil, domain.ErrNoFeatureRows
	}

	if len(predictions) == 0 {
		return nil, domain.ErrNoPredictions
	}

	byCustomer := make(map[int64]float64, len(predictions))
	for _, p := range predictions {
		if _, ok := byCustomer[p.LoyaltyNumber]; ok {
			continue
		}

		byCustomer[p.LoyaltyNumber] = clampProbability(p.ChurnProbability)
	}

	scored := make([]etldomain.ScoredCustomerRow, len(rows))
	for i, row := range rows {
		probability := byCustomer[row.LoyaltyNumber]

		scored[i] = etldomain.ScoredCustomerRow{
			CustomerFeatureRow: row,
			ChurnProbability:   probability,
			ChurnScore:         probability * row.CLV,
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].ChurnScore > scored[j].ChurnScore
	})

	return scored, nil
}

func clampProbability(p float64) float64 {
	switch {
	case p != p || p < 0: // NaN or negative
		return 0
	case p > 1:
		return 1
	default:
		return p
	}
}
