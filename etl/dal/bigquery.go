package dal

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"

	"github.com/skywardair/customer-analytics/common"
	"github.com/skywardair/customer-analytics/etl/domain"
)

// AnalyticsBigQueryDAL owns the derived tables in the analytics dataset.
type AnalyticsBigQueryDAL struct {
	bq  *bigquery.Client
	gcs *storage.Client
}

func NewAnalyticsBigQueryDAL(bq *bigquery.Client, gcs *storage.Client) *AnalyticsBigQueryDAL {
	return &AnalyticsBigQueryDAL{
		bq:  bq,
		gcs: gcs,
	}
}

var featureSchema = bigquery.Schema{
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
}

var scoredSchema = append(featureSchema[:len(featureSchema):len(featureSchema)],
	&bigquery.FieldSchema{Name: "churn_probability", Type: bigquery.FloatFieldType},
	&bigquery.FieldSchema{Name: "churn_score", Type: bigquery.FloatFieldType},
)

// SaveFeatureRows replaces the feature table with rows. A full truncate-write
// keeps the table byte-equivalent to the builder's output.
func (d *AnalyticsBigQueryDAL) SaveFeatureRows(ctx context.Context, rows []domain.CustomerFeatureRow) error {
	jsonRows := make([]interface{}, len(rows))
	for i, row := range rows {
		jsonRows[i] = row
	}

	return d.loadRows(ctx, common.FeatureTableName, featureSchema, jsonRows)
}

// SaveScoredRows replaces the scored table with rows.
func (d *AnalyticsBigQueryDAL) SaveScoredRows(ctx context.Context, rows []domain.ScoredCustomerRow) error {
	jsonRows := make([]interface{}, len(rows))
	for i, row := range rows {
		jsonRows[i] = row
	}

	return d.loadRows(ctx, common.ScoredTableName, scoredSchema, jsonRows)
}

// loadRows stages rows as gzipped newline-delimited JSON on the data bucket
// and runs a truncating load job into the target table.
func (d *AnalyticsBigQueryDAL) loadRows(ctx context.Context, tableName string, schema bigquery.Schema, rows []interface{}) error {
	nl := []byte("\n")
	objectName := fmt.Sprintf("bq-load-jobs/%s/%s.gzip", tableName, time.Now().UTC().Format(time.RFC3339Nano))
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
	gcsRef.SkipLeadingRows = 0
	gcsRef.MaxBadRecords = 0
	gcsRef.Schema = schema
	gcsRef.SourceFormat = bigquery.JSON
	gcsRef.AutoDetect = false
	gcsRef.IgnoreUnknownValues = true

	loader := d.bq.Dataset(common.Dataset).Table(tableName).LoaderFrom(gcsRef)
	loader.WriteDisposition = bigquery.WriteTruncate
	loader.CreateDisposition = bigquery.CreateIfNeeded
	loader.JobIDConfig = bigquery.JobIDConfig{
		JobID:          fmt.Sprintf("load-%s", tableName),
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

// GetFeatureRows reads the full feature table ordered by loyalty number.
func (d *AnalyticsBigQueryDAL) GetFeatureRows(ctx context.Context) ([]domain.CustomerFeatureRow, error) {
	query := d.bq.Query(fmt.Sprintf(
		"SELECT * FROM `%s.%s.%s` ORDER BY loyalty_number",
		common.ProjectID, common.Dataset, common.FeatureTableName,
	))

	it, err := query.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read feature table: %w", err)
	}

	var rows []domain.CustomerFeatureRow

	for {
		var row domain.CustomerFeatureRow

		err := it.Next(&row)
		if errors.Is(err, iterator.Done) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("failed to iterate feature table: %w", err)
		}

		rows = append(rows, row)
	}

	return rows, nil
}

// GetScoredRows reads the full scored table ordered by loyalty number.
func (d *AnalyticsBigQueryDAL) GetScoredRows(ctx context.Context) ([]domain.ScoredCustomerRow, error) {
	query := d.bq.Query(fmt.Sprintf(
		"SELECT * FROM `%s.%s.%s` ORDER BY loyalty_number",
		common.ProjectID, common.Dataset, common.ScoredTableName,
	))

	it, err := query.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read scored table: %w", err)
	}

	var rows []domain.ScoredCustomerRow

	for {
		var row domain.ScoredCustomerRow

		err := it.Next(&row)
		if errors.Is(err, iterator.Done) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("failed to iterate scored table: %w", err)
		}

		rows = append(rows, row)
	}

	return rows, nil
}

// TableExists reports whether a table is present in the analytics dataset.
func (d *AnalyticsBigQueryDAL) TableExists(ctx context.Context, tableName string) (bool, error) {
	_, err := d.bq.Dataset(common.Dataset).Table(tableName).Metadata(ctx)
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound {
			return false, nil
		}

		return false, fmt.Errorf("failed to get table metadata: %w", err)
	}

	return true, nil
}
