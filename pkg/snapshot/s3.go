package snapshot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/ec2/imds"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/devA2C3/cloudvisor-test/internal/models"
)

// S3Scheme prefixes S3 snapshot locations
const S3Scheme = "s3://"

// S3API is the part of the S3 API used by S3Store
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store keeps snapshots as objects under a bucket prefix
type S3Store struct {
	client S3API
	bucket string
	prefix string
}

// NewS3Store creates an S3Store using the default AWS config. usePathStyle
// selects path-style addressing, which S3-compatible endpoints usually need.
func NewS3Store(ctx context.Context, bucket, prefix string, usePathStyle bool) (*S3Store, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRetryMode(aws.RetryModeStandard),
		config.WithEC2IMDSClientEnableState(imds.ClientEnabled),
	)
	if err != nil {
		return nil, fmt.Errorf("error loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, withPathStyle(usePathStyle))
	return NewS3StoreWithAPI(client, bucket, prefix), nil
}

func withPathStyle(enabled bool) func(*s3.Options) {
	return func(o *s3.Options) {
		o.UsePathStyle = enabled
	}
}

// NewS3StoreWithAPI creates an S3Store around an existing API implementation
func NewS3StoreWithAPI(client S3API, bucket, prefix string) *S3Store {
	return &S3Store{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}
}

// ParseS3URI splits "s3://bucket/prefix" into bucket and prefix
func ParseS3URI(uri string) (string, string, error) {
	rest, ok := strings.CutPrefix(uri, S3Scheme)
	if !ok {
		return "", "", fmt.Errorf("invalid S3 URI %q: missing %s scheme", uri, S3Scheme)
	}
	bucket, prefix, _ := strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("invalid S3 URI %q: missing bucket", uri)
	}
	return bucket, strings.Trim(prefix, "/"), nil
}

// ObjectKey returns the object key of a region's snapshot
func (s *S3Store) ObjectKey(region string) string {
	if s.prefix == "" {
		return Key(region)
	}
	return path.Join(s.prefix, Key(region))
}

// Write uploads the snapshot, replacing any existing object
func (s *S3Store) Write(ctx context.Context, region string, snap models.Snapshot) (int64, error) {
	var buf bytes.Buffer
	if err := encode(&buf, snap); err != nil {
		return 0, fmt.Errorf("error encoding snapshot: %w", err)
	}
	size := int64(buf.Len())

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.ObjectKey(region)),
		Body:          bytes.NewReader(buf.Bytes()),
		ContentLength: aws.Int64(size),
		ContentType:   aws.String("application/json"),
	})
	if err != nil {
		return 0, fmt.Errorf("error uploading snapshot to s3://%s/%s: %w", s.bucket, s.ObjectKey(region), err)
	}

	return size, nil
}

// Read downloads and decodes the region's snapshot
func (s *S3Store) Read(ctx context.Context, region string) (models.Snapshot, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.ObjectKey(region)),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, fmt.Errorf("%w: s3://%s/%s", ErrNotFound, s.bucket, s.ObjectKey(region))
		}
		return nil, fmt.Errorf("error downloading snapshot: %w", err)
	}
	defer out.Body.Close()

	return decode(out.Body)
}

// Delete removes the region's object. S3 treats deleting a missing key as success.
func (s *S3Store) Delete(ctx context.Context, region string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.ObjectKey(region)),
	})
	if err != nil {
		return fmt.Errorf("error deleting snapshot object: %w", err)
	}
	return nil
}
