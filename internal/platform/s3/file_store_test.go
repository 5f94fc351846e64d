package s3

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	awsrequest "github.com/aws/aws-sdk-go/aws/request"
	awss3 "github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 records DeleteObjects calls and returns canned results.
type fakeS3 struct {
	s3iface.S3API

	lastInput *awss3.DeleteObjectsInput
	calls     int
	output    *awss3.DeleteObjectsOutput
	err       error
}

func (f *fakeS3) DeleteObjectsWithContext(
	ctx aws.Context,
	input *awss3.DeleteObjectsInput,
	opts ...awsrequest.Option,
) (*awss3.DeleteObjectsOutput, error) {
	f.calls++
	f.lastInput = input
	if f.err != nil {
		return nil, f.err
	}
	if f.output != nil {
		return f.output, nil
	}
	return &awss3.DeleteObjectsOutput{}, nil
}

func TestS3FileStore_DeleteFiles(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes keys in one batch call", func(t *testing.T) {
		fake := &fakeS3{}
		fs := NewS3FileStore(fake, "task-files", nil)

		err := fs.DeleteFiles(ctx, []string{"tasks/a.txt", "tasks/b.txt"})
		require.NoError(t, err)

		assert.Equal(t, 1, fake.calls)
		require.NotNil(t, fake.lastInput)
		assert.Equal(t, "task-files", aws.StringValue(fake.lastInput.Bucket))
		require.Len(t, fake.lastInput.Delete.Objects, 2)
		assert.Equal(t, "tasks/a.txt", aws.StringValue(fake.lastInput.Delete.Objects[0].Key))
		assert.Equal(t, "tasks/b.txt", aws.StringValue(fake.lastInput.Delete.Objects[1].Key))
	})

	t.Run("empty key list is a no-op", func(t *testing.T) {
		fake := &fakeS3{}
		fs := NewS3FileStore(fake, "task-files", nil)

		err := fs.DeleteFiles(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, 0, fake.calls)
	})

	t.Run("transport failure is surfaced", func(t *testing.T) {
		fake := &fakeS3{err: errors.New("dial tcp: timeout")}
		fs := NewS3FileStore(fake, "task-files", nil)

		err := fs.DeleteFiles(ctx, []string{"tasks/a.txt"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "task-files")
	})

	t.Run("per-object failures become an error", func(t *testing.T) {
		fake := &fakeS3{
			output: &awss3.DeleteObjectsOutput{
				Errors: []*awss3.Error{
					{
						Key:     aws.String("tasks/a.txt"),
						Message: aws.String("Access Denied"),
					},
				},
			},
		}
		fs := NewS3FileStore(fake, "task-files", nil)

		err := fs.DeleteFiles(ctx, []string{"tasks/a.txt"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "tasks/a.txt")
		assert.Contains(t, err.Error(), "Access Denied")
	})
}

func TestNewS3FileStore(t *testing.T) {
	t.Run("nil client panics", func(t *testing.T) {
		assert.Panics(t, func() {
			NewS3FileStore(nil, "task-files", nil)
		})
	})

	t.Run("empty bucket panics", func(t *testing.T) {
		assert.Panics(t, func() {
			NewS3FileStore(&fakeS3{}, "", nil)
		})
	})
}
