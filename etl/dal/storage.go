package dal

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"

	"github.com/skywardair/customer-analytics/common"
)

// LoyaltyStorageDAL reads and lands raw loyalty files on the data bucket.
type LoyaltyStorageDAL struct {
	gcs *storage.Client
}

func NewLoyaltyStorageDAL(gcs *storage.Client) *LoyaltyStorageDAL {
	return &LoyaltyStorageDAL{gcs: gcs}
}

// ReadCSVObject reads a CSV object from the data bucket and returns its rows,
// header row included. Rows may be ragged; the normalizer validates widths.
func (d *LoyaltyStorageDAL) ReadCSVObject(ctx context.Context, objectName string) ([][]string, error) {
	reader, err := d.gcs.Bucket(common.DataBucket).Object(objectName).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open gs://%s/%s: %w", common.DataBucket, objectName, err)
	}

	defer reader.Close()

	csvReader := csv.NewReader(reader)
	csvReader.FieldsPerRecord = -1

	var rows [][]string

	for {
		row, err := csvReader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("failed to read gs://%s/%s: %w", common.DataBucket, objectName, err)
		}

		rows = append(rows, row)
	}

	return rows, nil
}

// UploadObjectIfAbsent writes body to the data bucket unless the object is
// already there. Returns true if an upload happened.
func (d *LoyaltyStorageDAL) UploadObjectIfAbsent(ctx context.Context, objectName, contentType string, body io.Reader) (bool, error) {
	obj := d.gcs.Bucket(common.DataBucket).Object(objectName)

	if _, err := obj.Attrs(ctx); err == nil {
		return false, nil
	} else if !errors.Is(err, storage.ErrObjectNotExist) {
		return false, fmt.Errorf("failed to stat gs://%s/%s: %w", common.DataBucket, objectName, err)
	}

	// DoesNotExist guards against a concurrent uploader winning the race
	// between the stat above and this write.
	writer := obj.If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	writer.ContentType = contentType

	if _, err := io.Copy(writer, body); err != nil {
		writer.Close()
		return false, fmt.Errorf("failed to write gs://%s/%s: %w", common.DataBucket, objectName, err)
	}

	if err := writer.Close(); err != nil {
		return false, fmt.Errorf("failed to finalize gs://%s/%s: %w", common.DataBucket, objectName, err)
	}

	return true, nil
}
