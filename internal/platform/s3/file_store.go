// Package s3 implements the object-storage collaborator on top of the AWS
// S3 batch-delete API.
package s3

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"

	"github.com/codequest/codequest-api/internal/store"
)

// S3FileStore implements the store.FileStore interface against a single
// S3 bucket.
type S3FileStore struct {
	client s3iface.S3API
	bucket string
	logger *slog.Logger
}

// NewS3FileStore creates a new S3-backed FileStore for the given bucket.
// The client is accepted through the s3iface interface so tests can
// substitute a double.
func NewS3FileStore(client s3iface.S3API, bucket string, logger *slog.Logger) *S3FileStore {
	if client == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("client cannot be nil")
	}
	if bucket == "" {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("bucket cannot be empty")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &S3FileStore{
		client: client,
		bucket: bucket,
		logger: logger.With(slog.String("component", "file_store")),
	}
}

// Ensure S3FileStore implements store.FileStore interface
var _ store.FileStore = (*S3FileStore)(nil)

// DeleteFiles implements store.FileStore.DeleteFiles
// It removes the objects with the given keys in a single DeleteObjects
// call. An empty key list is a no-op.
func (s *S3FileStore) DeleteFiles(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	objects := make([]*s3.ObjectIdentifier, 0, len(keys))
	for _, key := range keys {
		objects = append(objects, &s3.ObjectIdentifier{Key: aws.String(key)})
	}

	out, err := s.client.DeleteObjectsWithContext(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(s.bucket),
		Delete: &s3.Delete{
			Objects: objects,
			Quiet:   aws.Bool(true),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete objects from bucket %s: %w", s.bucket, err)
	}

	if len(out.Errors) > 0 {
		first := out.Errors[0]
		return fmt.Errorf(
			"failed to delete %d object(s) from bucket %s: %s: %s",
			len(out.Errors),
			s.bucket,
			aws.StringValue(first.Key),
			aws.StringValue(first.Message),
		)
	}

	s.logger.Debug("deleted objects from bucket",
		slog.Int("count", len(keys)),
		slog.String("bucket", s.bucket))
	return nil
}
