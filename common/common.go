package common

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
)

var (
	// ProjectID is the GCP project this service runs in.
	ProjectID string

	// DataBucket is the landing bucket for raw loyalty files.
	DataBucket string

	// Dataset is the BigQuery dataset holding the derived tables.
	Dataset string

	GAEService string

	GAEVersion string

	// Production flag indicating if app is running the production backend
	Production bool

	// IsLocalhost flag indicating if app is running on localhost
	IsLocalhost bool

	// AssistantBaseURL is the base URL of the planning/narration service.
	AssistantBaseURL string

	// ScoringTopic is the Pub/Sub topic that triggers the churn classifier job.
	ScoringTopic string

	// RecencyThreshold is the churn-label recency cutoff in months.
	RecencyThreshold int
)

const (
	productionProject = "skywardair-analytics"

	// Raw object names in the landing bucket.
	RawFlightActivityObject = "raw/customer_flight_activity.csv"
	RawLoyaltyHistoryObject = "raw/customer_loyalty_history.csv"

	// Derived tables.
	FeatureTableName       = "customer_features"
	ScoredTableName        = "customer_scored"
	PredictionsTableName   = "churn_predictions"
	TrainingInputTableName = "churn_training_input"

	defaultDataset          = "airline_analytics"
	defaultScoringTopic     = "churn-scoring-jobs"
	defaultRecencyThreshold = 3
	defaultAssistantBaseURL = "http://localhost:8091"
)

func init() {
	ProjectID = GetEnv("GOOGLE_CLOUD_PROJECT", "")
	if ProjectID == "" {
		log.Fatalln("missing GOOGLE_CLOUD_PROJECT environment variable")
	}

	IsLocalhost = gin.Mode() != gin.ReleaseMode
	Production = ProjectID == productionProject && !IsLocalhost

	GAEService = GetEnv("GAE_SERVICE", "analytics-api")
	GAEVersion = GetEnv("GAE_VERSION", "localhost")

	DataBucket = GetEnv("DATA_BUCKET", fmt.Sprintf("%s-loyalty-data", ProjectID))
	Dataset = GetEnv("ANALYTICS_DATASET", defaultDataset)
	ScoringTopic = GetEnv("SCORING_TOPIC", defaultScoringTopic)
	AssistantBaseURL = GetEnv("ASSISTANT_BASE_URL", defaultAssistantBaseURL)

	threshold, err := strconv.Atoi(GetEnv("RECENCY_THRESHOLD_MONTHS", strconv.Itoa(defaultRecencyThreshold)))
	if err != nil || threshold < 1 {
		threshold = defaultRecencyThreshold
	}

	RecencyThreshold = threshold
}

// GetEnv returns the value of the environment variable named by key,
// or fallback if the variable is not present.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}

	return fallback
}
