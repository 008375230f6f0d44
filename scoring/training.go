// Package scoring implements the contract with the external churn
// classifier: the labeled training input it consumes, the job trigger, and
// how its predictions attach back onto the feature table.
package scoring

import (
	etldomain "github.com/skywardair/customer-analytics/etl/domain"
	"github.com/skywardair/customer-analytics/scoring/domain"
)

// ChurnLabel derives the binary training label for one customer. A customer
// counts as churned if the membership was cancelled or the last qualifying
// activity is at least threshold months old.
func ChurnLabel(row etldomain.CustomerFeatureRow, threshold int) int {
	if row.IsCancelled || row.Recency >= threshold {
		return 1
	}

	return 0
}

// BuildTrainingInput labels every feature row. The classifier reads its
// numeric predictors (frequency, monetary, tenure_months, clv) and
// categorical predictors (province, city, gender, education, loyalty_card)
// straight off the feature columns, so the rows pass through unmodified.
func BuildTrainingInput(rows []etldomain.CustomerFeatureRow, threshold int) ([]domain.TrainingInputRow, error) {
	if len(rows) == 0 {
		return nil, domain.ErrNoFeatureRows
	}

	input := make([]domain.TrainingInputRow, len(rows))
	for i, row := range rows {
		input[i] = domain.TrainingInputRow{
			CustomerFeatureRow: row,
			ChurnLabel:         ChurnLabel(row, threshold),
		}
	}

	return input, nil
}

// ChurnRate is the labeled-churner share of a training input set.
func ChurnRate(input []domain.TrainingInputRow) float64 {
	if len(input) == 0 {
		return 0
	}

	churned := 0
	for _, row := range input {
		churned += row.ChurnLabel
	}

	return float64(churned) / float64(len(input))
}
