// Package archive ships department metric snapshots to object storage.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/spec-kit/patient-flow/internal/domain"
)

// ObjectPutter is the slice of the S3 client the archiver needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Archiver writes each snapshot batch as one JSON object.
type S3Archiver struct {
	client ObjectPutter
	bucket string
	prefix string
}

// NewS3Archiver builds an archiver for bucket/prefix.
func NewS3Archiver(client ObjectPutter, bucket, prefix string) *S3Archiver {
	return &S3Archiver{client: client, bucket: bucket, prefix: prefix}
}

type archivedMetrics struct {
	Department            string `json:"department"`
	Timestamp             int64  `json:"timestamp"`
	PatientsWaiting       int    `json:"patientsWaiting"`
	AverageWaitTime       int    `json:"averageWaitTime"`
	PatientsServedPerHour int    `json:"patientsServedPerHour"`
	OccupancyRate         int    `json:"occupancyRate"`
	StaffUtilization      int    `json:"staffUtilization"`
	CongestionLevel       string `json:"congestionLevel"`
}

// Key returns the object key for a capture instant: prefix/YYYY/MM/DD/<epochMillis>.json.
func (a *S3Archiver) Key(capturedAt time.Time) string {
	utc := capturedAt.UTC()
	return path.Join(a.prefix, utc.Format("2006/01/02"), fmt.Sprintf("%d.json", utc.UnixMilli()))
}

// Archive uploads the batch and returns its key.
func (a *S3Archiver) Archive(ctx context.Context, capturedAt time.Time, batch []domain.DepartmentMetrics) (string, error) {
	records := make([]archivedMetrics, 0, len(batch))
	for _, m := range batch {
		records = append(records, archivedMetrics{
			Department:            string(m.Department),
			Timestamp:             m.Timestamp.UnixMilli(),
			PatientsWaiting:       m.PatientsWaiting,
			AverageWaitTime:       m.AverageWaitTime,
			PatientsServedPerHour: m.PatientsServedPerHour,
			OccupancyRate:         m.OccupancyRate,
			StaffUtilization:      m.StaffUtilization,
			CongestionLevel:       string(m.CongestionLevel),
		})
	}
	body, err := json.Marshal(records)
	if err != nil {
		return "", err
	}

	key := a.Key(capturedAt)
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("put s3://%s/%s: %w", a.bucket, key, err)
	}
	return key, nil
}
