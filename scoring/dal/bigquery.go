package dal

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/storage"

	"github.com/skywardair/customer-analytics/common"
	"github.com/skywardair/customer-analytics/scoring/domain"
)

// ScoringBigQueryDAL owns the classifier's training-input table.
type ScoringBigQueryDAL struct {
	bq  *bigquery.Client
	gcs *storage.Client
}

func NewScoringBigQueryDAL(bq *bigquery.Client, gcs *storage.Client) *ScoringBigQueryDAL {
	return &ScoringBigQueryDAL{
		bq:  bq,
		gcs: gcs,
	}
}

var trainingInputSchema = bigquery.Schema{
	{Name: "loyalty_number", Type: bigquery.IntegerFieldType, Required: true},
	{Name: "province", Type: bigquery.StringFieldType},
	{Name: "city", Type: bigquery.StringFieldType},
	{Name: "gender", Type: bigquery.StringFieldType},
	{Name: "education", Type: bigquery.StringFieldType},
	{Name: "loyalty_card", Type: bigquery.StringFieldType},
	{Name: "clv", Type: bigquery.FloatFieldType},
	{Name: "is_cancelled", Type: bigquery.BooleanFieldType},
	{Name: "tenure_months", Type: bigquery.IntegerFieldType},
	{Name: "recency", Type: bigquery.IntegerFieldType},
	{Name: "frequency", Type: bigquery.IntegerFieldType},
	{Name: "monetary", Type: bigquery.FloatFieldType},
	{Name: "r_score", Type: bigquery.IntegerFieldType},
	{Name: "f_score", Type: bigquery.IntegerFieldType},
	{Name: "m_score", Type: bigquery.IntegerFieldType},
	{Name: "rfm_segment", Type: bigquery.StringFieldType},
	{Name: "churn_label", Type: bigquery.IntegerFieldType, Required: true},
}

// SaveTrainingInput replaces the training-input table with rows, staged as
// gzipped newline-delimited JSON on the data bucket.
func (d *ScoringBigQueryDAL) SaveTrainingInput(ctx context.Context, rows []domain.TrainingInputRow) error {
	nl := []byte("\n")
	objectName := fmt.Sprintf("bq-load-jobs/%s/%s.gzip",
		common.TrainingInputTableName, time.Now().UTC().Format(time.RFC3339Nano))
	obj := d.gcs.Bucket(common.DataBucket).Object(objectName)
	objWriter := obj.NewWriter(ctx)
	gzipWriter := gzip.NewWriter(objWriter)

	for _, row := range rows {
		jsonData, err := json.Marshal(row)
		if err != nil {
			return err
		}

		jsonData = append(jsonData, nl...)
		if _, err := gzipWriter.Write(jsonData); err != nil {
			return err
		}
	}

	if err := gzipWriter.Close(); err != nil {
		return err
	}

	if err := objWriter.Close(); err != nil {
		return err
	}

	if _, err := obj.Update(ctx, storage.ObjectAttrsToUpdate{
		ContentType:     "application/json",
		ContentEncoding: "gzip",
	}); err != nil {
		return err
	}

	gcsRef := bigquery.NewGCSReference(fmt.Sprintf("gs://%s/%s", common.DataBucket, objectName))
	gcsRef.Schema = trainingInputSchema
	gcsRef.SourceFormat = bigquery.JSON
	gcsRef.AutoDetect = false
	gcsRef.IgnoreUnknownValues = true

	loader := d.bq.Dataset(common.Dataset).Table(common.TrainingInputTableName).LoaderFrom(gcsRef)
	loader.WriteDisposition = bigquery.WriteTruncate
	loader.CreateDisposition = bigquery.CreateIfNeeded
	loader.JobIDConfig = bigquery.JobIDConfig{
		JobID:          fmt.Sprintf("load-%s", common.TrainingInputTableName),
		AddJobIDSuffix: true,
	}

	job, err := loader.Run(ctx)
	if err != nil {
		return fmt.Errorf("failed to run loader job: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("failed to wait loader job: %w", err)
	}

	if err := status.Err(); err != nil {
		return fmt.Errorf("error in job status: %w", err)
	}

	return nil
}
