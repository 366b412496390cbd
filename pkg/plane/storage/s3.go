// Package storage stages datasets and artifacts on an S3 bucket.
package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Bucket is the object-storage surface of the plane.
type Bucket interface {
	// Upload streams body to the given key.
	Upload(ctx context.Context, key string, body io.Reader) error

	// LocationOf returns the URI a job or endpoint can read the key
	// from.
	LocationOf(key string) string
}

type s3Bucket struct {
	client *s3.Client
	bucket string
}

var _ Bucket = &s3Bucket{}

// Connect loads the default AWS configuration and opens the bucket.
func Connect(ctx context.Context, bucket string) (Bucket, error) {
	sdkConfig, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config: %w", err)
	}
	return &s3Bucket{
		client: s3.NewFromConfig(sdkConfig),
		bucket: bucket,
	}, nil
}

// New wraps an existing client. For tests.
func New(client *s3.Client, bucket string) Bucket {
	return &s3Bucket{client: client, bucket: bucket}
}

func (b *s3Bucket) Upload(ctx context.Context, key string, body io.Reader) error {
	if _, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
		Body:   body,
	}); err != nil {
		return fmt.Errorf("failed to upload %s to bucket %s: %w", key, b.bucket, err)
	}
	return nil
}

func (b *s3Bucket) LocationOf(key string) string {
	return fmt.Sprintf("s3://%s/%s", b.bucket, key)
}
