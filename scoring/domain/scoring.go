// Package domain holds the contract types shared with the external churn
// classifier job.
package domain

import (
	"errors"
	"time"

	etldomain "github.com/skywardair/customer-analytics/etl/domain"
)

var (
	// ErrNoFeatureRows is returned when the feature table is empty.
	ErrNoFeatureRows = errors.New("no feature rows to score")

	// ErrNoPredictions is returned when a scoring run carries no predictions.
	ErrNoPredictions = errors.New("scoring run contains no predictions")
)

// TrainingInputRow is a feature row with the binary churn label attached.
// The label is is_cancelled OR recency at or beyond the configured threshold.
type TrainingInputRow struct {
	etldomain.CustomerFeatureRow
	ChurnLabel int `json:"churn_label" bigquery:"churn_label"`
}

// Prediction is the classifier's output for one customer.
type Prediction struct {
	LoyaltyNumber    int64   `json:"loyalty_number"`
	ChurnProbability float64 `json:"churn_probability"`
}

// RunMetrics is the training job's quality report for one scoring run.
type RunMetrics struct {
	RunID            string    `json:"runId" firestore:"runId"`
	ROCAUC           float64   `json:"rocAuc" firestore:"rocAuc"`
	PRAUC            float64   `json:"prAuc" firestore:"prAuc"`
	ChurnRate        float64   `json:"churnRate" firestore:"churnRate"`
	RecencyThreshold int       `json:"recencyThreshold" firestore:"recencyThreshold"`
	Customers        int       `json:"customers" firestore:"customers"`
	Timestamp        time.Time `json:"timestamp" firestore:"timestamp"`
}

// JobMessage is the Pub/Sub payload that kicks off the external classifier.
type JobMessage struct {
	Dataset          string `json:"dataset"`
	TrainingTable    string `json:"trainingTable"`
	RecencyThreshold int    `json:"recencyThreshold"`
}
