package snapshot

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	objects map[string][]byte
	putErr  error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte)}
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestParseS3URI(t *testing.T) {
	tests := []struct {
		uri    string
		bucket string
		prefix string
		ok     bool
	}{
		{"s3://inventory", "inventory", "", true},
		{"s3://inventory/ec2/daily/", "inventory", "ec2/daily", true},
		{"s3:///ec2", "", "", false},
		{"inventory/ec2", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			bucket, prefix, err := ParseS3URI(tt.uri)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.bucket, bucket)
			assert.Equal(t, tt.prefix, prefix)
		})
	}
}

func TestS3StoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	api := newFakeS3()
	store := NewS3StoreWithAPI(api, "inventory", "/ec2/")

	n, err := store.Write(ctx, "us-east-1", testSnapshot())
	require.NoError(t, err)
	assert.Contains(t, api.objects, "inventory/ec2/us-east-1.json")
	assert.Equal(t, int64(len(api.objects["inventory/ec2/us-east-1.json"])), n)

	got, err := store.Read(ctx, "us-east-1")
	require.NoError(t, err)
	assert.Equal(t, testSnapshot(), got)

	require.NoError(t, store.Delete(ctx, "us-east-1"))
	_, err = store.Read(ctx, "us-east-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestS3StoreWriteError(t *testing.T) {
	api := newFakeS3()
	api.putErr = errors.New("access denied")
	store := NewS3StoreWithAPI(api, "inventory", "")

	assert.Equal(t, "us-east-1.json", store.ObjectKey("us-east-1"))
	_, err := store.Write(context.Background(), "us-east-1", testSnapshot())
	assert.ErrorContains(t, err, "access denied")
}

func TestWithPathStyle(t *testing.T) {
	var o s3.Options
	withPathStyle(false)(&o)
	assert.False(t, o.UsePathStyle)

	withPathStyle(true)(&o)
	assert.True(t, o.UsePathStyle)
}
