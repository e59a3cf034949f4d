package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const s3Prefix = "cache-audit"

// Uploader is the part of manager.Uploader the sink uses.
type Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3Sink archives each entry as one JSON object under
// cache-audit/YYYY/MM/DD/<uuid>.json.
type S3Sink struct {
	uploader Uploader
	bucket   string
}

func NewS3Sink(client *s3.Client, bucket string) *S3Sink {
	return &S3Sink{uploader: manager.NewUploader(client), bucket: bucket}
}

func NewS3SinkWithUploader(u Uploader, bucket string) *S3Sink {
	return &S3Sink{uploader: u, bucket: bucket}
}

func ObjectKey(e Entry, id uuid.UUID) string {
	ts := e.Timestamp.UTC()
	return path.Join(s3Prefix, ts.Format("2006"), ts.Format("01"), ts.Format("02"), id.String()+".json")
}

func (s *S3Sink) Record(ctx context.Context, e Entry) error {
	body, err := json.Marshal(e)
	if err != nil {
		return err
	}
	key := ObjectKey(e, uuid.New())
	_, err = s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("upload audit entry %s: %w", key, err)
	}
	return nil
}
