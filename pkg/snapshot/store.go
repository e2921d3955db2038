// Package snapshot persists per-region instance snapshots.
//
// Every region owns exactly one artifact, addressed as Key(region). Writes fully
// overwrite the previous artifact; Delete removes it and is used to clean up
// after a failed write.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/devA2C3/cloudvisor-test/internal/models"
)

// Extension is appended to the region identifier to form the artifact key
const Extension = ".json"

// ErrNotFound is returned by Read when a region has no snapshot
var ErrNotFound = errors.New("snapshot not found")

// Store reads and writes regional snapshots
type Store interface {
	// Write replaces the region's snapshot and returns the number of bytes written.
	Write(ctx context.Context, region string, snap models.Snapshot) (int64, error)
	Read(ctx context.Context, region string) (models.Snapshot, error)
	Delete(ctx context.Context, region string) error
}

// Key returns the artifact name for a region
func Key(region string) string {
	return region + Extension
}

// Options tune the backend chosen by New
type Options struct {
	// S3PathStyle addresses buckets as endpoint/bucket instead of bucket.endpoint.
	S3PathStyle bool
}

// New returns a Store for a location: "s3://bucket/prefix" selects S3, anything
// else is treated as a local directory.
func New(ctx context.Context, location string, opts Options) (Store, error) {
	if strings.HasPrefix(location, S3Scheme) {
		bucket, prefix, err := ParseS3URI(location)
		if err != nil {
			return nil, err
		}
		return NewS3Store(ctx, bucket, prefix, opts.S3PathStyle)
	}
	return NewFileStore(location), nil
}

// encode writes snap as a JSON array
func encode(w io.Writer, snap models.Snapshot) error {
	if snap == nil {
		snap = models.Snapshot{}
	}
	return json.NewEncoder(w).Encode(snap)
}

// decode reads a JSON array of instance records
func decode(r io.Reader) (models.Snapshot, error) {
	var snap models.Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("error parsing snapshot: %w", err)
	}
	if snap == nil {
		return nil, fmt.Errorf("error parsing snapshot: not a JSON array")
	}
	return snap, nil
}

// countingWriter tracks the number of bytes written through it
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
