// Package etl drives the per-region Extract, Transform, Load cycle.
package etl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/devA2C3/cloudvisor-test/internal/models"
	"github.com/devA2C3/cloudvisor-test/pkg/etlerr"
	"github.com/devA2C3/cloudvisor-test/pkg/snapshot"
	"github.com/devA2C3/cloudvisor-test/pkg/transform"
	"github.com/devA2C3/cloudvisor-test/pkg/utils"
)

// Extractor fetches the raw inventory of one region
type Extractor interface {
	Extract(ctx context.Context, region string) (*ec2.DescribeInstancesOutput, error)
}

// Transformer turns a raw inventory into a sorted snapshot
type Transformer interface {
	Transform(raw *ec2.DescribeInstancesOutput, region string) (models.Snapshot, error)
}

// ProgressFunc is called before each region starts
type ProgressFunc func(region string, index, total int)

// Runner executes regional ETL cycles one after another
type Runner struct {
	Extractor   Extractor
	Transformer Transformer
	Store       snapshot.Store
	Logger      *slog.Logger

	// Metrics is optional.
	Metrics *Metrics
	// RegionTimeout bounds a single region's cycle when positive.
	RegionTimeout time.Duration
	// Progress is optional.
	Progress ProgressFunc
}

// Run processes regions sequentially. A failed region is logged and the loop
// moves on; the returned slice holds one result per region, in order.
func (r *Runner) Run(ctx context.Context, regions []string) []models.RegionResult {
	results := make([]models.RegionResult, 0, len(regions))

	for i, region := range regions {
		if r.Progress != nil {
			r.Progress(region, i, len(regions))
		}

		r.logger().Info("Listing EC2 instances", "region", region)
		result, err := r.RunRegion(ctx, region)
		if err != nil {
			r.logger().Warn("Continuing with next region", "region", region)
		}
		results = append(results, result)
	}

	return results
}

// RunRegion runs Extracting, Transforming and Loading for one region. Any
// failure is logged with its kind and cause and reported as
// etlerr.ErrRegionFailed. A failed write removes the region's snapshot.
func (r *Runner) RunRegion(ctx context.Context, region string) (result models.RegionResult, err error) {
	logger := r.logger().With("region", region)
	result = models.RegionResult{
		Region:    region,
		StartedAt: time.Now(),
	}
	defer func() {
		result.Duration = time.Since(result.StartedAt)
		r.observe(result)
	}()

	if r.RegionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.RegionTimeout)
		defer cancel()
	}

	fail := func(stage models.Stage, cause error) (models.RegionResult, error) {
		result.Stage = models.StageFailed
		result.FailedAt = stage
		result.ErrorKind = string(etlerr.KindOf(cause))
		result.Err = cause
		return result, etlerr.ErrRegionFailed
	}

	result.Stage = models.StageExtracting
	logger.Debug("Extracting region EC2 data")
	raw, err := r.Extractor.Extract(ctx, region)
	if err != nil {
		r.logFailure(logger, result.Stage, err)
		return fail(result.Stage, err)
	}

	result.Stage = models.StageTransforming
	logger.Debug("Transforming region EC2 data")
	snap, err := r.transform(raw, region)
	if errors.Is(err, transform.ErrNoInstances) {
		result.Stage = models.StageDone
		result.Skipped = true
		logger.Info("Region EC2 ETL task done, nothing to load")
		return result, nil
	}
	if err != nil {
		r.logFailure(logger, result.Stage, err)
		return fail(result.Stage, err)
	}
	result.Instances = len(snap)
	result.OldestLaunch = oldestLaunch(snap)

	result.Stage = models.StageLoading
	logger.Debug("Loading region EC2 data")
	n, err := r.Store.Write(ctx, region, snap)
	if err != nil {
		err = etlerr.Persistence(region, "write snapshot "+snapshot.Key(region), err)
		r.logFailure(logger, result.Stage, err)
		if delErr := r.Store.Delete(context.WithoutCancel(ctx), region); delErr != nil {
			logger.Error("Failed to remove partial snapshot", "error", delErr)
		}
		return fail(result.Stage, err)
	}
	result.SnapshotBytes = n

	result.Stage = models.StageDone
	logger.Info("Region EC2 ETL task done", "instances", result.Instances, "bytes", n)
	return result, nil
}

// transform runs the Transformer, reporting a panic as an internal error
func (r *Runner) transform(raw *ec2.DescribeInstancesOutput, region string) (snap models.Snapshot, err error) {
	defer func() {
		if p := recover(); p != nil {
			snap = nil
			err = etlerr.Internal(region, "transform instances", fmt.Errorf("panic: %v", p))
		}
	}()
	return r.Transformer.Transform(raw, region)
}

// logFailure writes the one error record for a failed cycle
func (r *Runner) logFailure(logger *slog.Logger, stage models.Stage, err error) {
	kind := etlerr.KindOf(err)
	msg := "Internal error handling AWS response"
	switch kind {
	case etlerr.KindRegionResolution:
		msg = "Cannot resolve AWS endpoint for region"
	case etlerr.KindExtraction:
		msg = "Error querying AWS inventory"
	case etlerr.KindParsing:
		msg = "Error parsing AWS response"
	case etlerr.KindPersistence:
		msg = "Failed to load region data, removing its snapshot to avoid partial results"
	}

	logger.Error(msg,
		"stage", string(stage),
		"kind", string(kind),
		"error", err,
	)
}

func (r *Runner) observe(result models.RegionResult) {
	if r.Metrics == nil {
		return
	}

	status := "done"
	switch {
	case !result.Succeeded():
		status = "failed"
	case result.Skipped:
		status = "skipped"
	}

	m := r.Metrics
	m.regionRuns.WithLabelValues(result.Region, status, result.ErrorKind).Inc()
	m.regionDuration.WithLabelValues(result.Region).Observe(result.Duration.Seconds())
	if result.Succeeded() {
		m.lastSuccessTime.WithLabelValues(result.Region).Set(float64(result.StartedAt.Add(result.Duration).Unix()))
		if !result.Skipped {
			m.instances.WithLabelValues(result.Region).Set(float64(result.Instances))
			m.snapshotBytes.WithLabelValues(result.Region).Set(float64(result.SnapshotBytes))
		}
	}
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

// oldestLaunch returns the launch time of the first record of a sorted snapshot
func oldestLaunch(snap models.Snapshot) *time.Time {
	if len(snap) == 0 {
		return nil
	}
	t, err := time.Parse(utils.SanitizedTimeLayout, snap[0].LaunchTime)
	if err != nil {
		return nil
	}
	return &t
}

// Summary counts results by outcome
func Summary(results []models.RegionResult) (done, skipped, failed int) {
	for _, res := range results {
		switch {
		case !res.Succeeded():
			failed++
		case res.Skipped:
			skipped++
		default:
			done++
		}
	}
	return done, skipped, failed
}
