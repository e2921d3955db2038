// Package transform turns a raw DescribeInstances result into a sorted snapshot.
package transform

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/devA2C3/cloudvisor-test/internal/models"
	"github.com/devA2C3/cloudvisor-test/pkg/etlerr"
	"github.com/devA2C3/cloudvisor-test/pkg/utils"
)

// ErrNoInstances signals a region without reservations. Nothing should be written.
var ErrNoInstances = errors.New("no EC2 instances found")

// Nested timestamps replaced with their sanitized form
var (
	networkAttachPath = []interface{}{"NetworkInterfaces", 0, "Attachment", "AttachTime"}
	volumeAttachPath  = []interface{}{"BlockDeviceMappings", 0, "Ebs", "AttachTime"}
)

// Transformer builds sorted snapshots from raw inventory results
type Transformer struct {
	// Location is used to read launch wall clocks when computing epoch seconds.
	// Defaults to time.Local.
	Location *time.Location
	Logger   *slog.Logger
}

// New creates a Transformer using the machine's local timezone
func New(logger *slog.Logger) *Transformer {
	return &Transformer{Location: time.Local, Logger: logger}
}

// Transform validates raw, converts every instance to an InstanceRecord and
// returns them stable-sorted by launch epoch. It returns ErrNoInstances when
// raw has no reservations, an etlerr.KindParsing error for malformed input and
// an etlerr.KindInternal error for faults while building records.
func (t *Transformer) Transform(raw *ec2.DescribeInstancesOutput, region string) (models.Snapshot, error) {
	logger := t.logger().With("region", region)

	if raw == nil {
		return nil, etlerr.Parsing(region, "read reservations", errors.New("inventory result is nil"))
	}
	if len(raw.Reservations) == 0 {
		logger.Warn("No EC2 instances found in region")
		return nil, ErrNoInstances
	}

	snapshot := models.Snapshot{}
	names := make(map[string]string)
	for r, reservation := range raw.Reservations {
		for i, instance := range reservation.Instances {
			logger.Debug("Transforming instance", "reservation", r, "index", i)

			record, err := t.buildRecord(instance, region)
			if err != nil {
				return nil, err
			}
			snapshot = append(snapshot, record)
			names[record.InstanceID] = utils.GetName(instance.Tags)
		}
	}

	sort.SliceStable(snapshot, func(i, j int) bool {
		return snapshot[i].EpochSeconds < snapshot[j].EpochSeconds
	})

	for _, record := range snapshot {
		logger.Info("Sorted instance",
			"instance_id", record.InstanceID,
			"name", names[record.InstanceID],
			"launch_time", record.LaunchTime,
		)
	}

	return snapshot, nil
}

// buildRecord creates a new InstanceRecord from one SDK instance
func (t *Transformer) buildRecord(instance types.Instance, region string) (models.InstanceRecord, error) {
	if instance.InstanceId == nil || *instance.InstanceId == "" {
		return models.InstanceRecord{}, etlerr.Parsing(region, "read instance", errors.New("instance has no InstanceId"))
	}
	id := *instance.InstanceId

	if instance.LaunchTime == nil {
		return models.InstanceRecord{}, etlerr.Parsing(region, "read instance "+id, errors.New("instance has no LaunchTime"))
	}

	epoch, err := utils.LaunchTimeToEpoch(*instance.LaunchTime, t.location())
	if err != nil {
		return models.InstanceRecord{}, etlerr.Parsing(region, "convert launch time of "+id, err)
	}

	fields, err := utils.ToMap(instance)
	if err != nil {
		return models.InstanceRecord{}, etlerr.Internal(region, "copy instance "+id, err)
	}
	utils.PruneNulls(fields)
	utils.PruneUnsetEnums(instance, fields)
	delete(fields, models.KeyInstanceID)
	delete(fields, models.KeyLaunchTime)

	if err := sanitizeAttachTimes(instance, fields); err != nil {
		return models.InstanceRecord{}, etlerr.Internal(region, "sanitize attach times of "+id, err)
	}

	return models.InstanceRecord{
		InstanceID:   id,
		LaunchTime:   utils.SanitizeTime(*instance.LaunchTime),
		EpochSeconds: epoch,
		Fields:       fields,
	}, nil
}

// sanitizeAttachTimes replaces the first network interface and first block device
// attach times in fields. Each path is optional on its own.
func sanitizeAttachTimes(instance types.Instance, fields map[string]interface{}) error {
	if len(instance.NetworkInterfaces) > 0 {
		if att := instance.NetworkInterfaces[0].Attachment; att != nil && att.AttachTime != nil {
			if err := replace(fields, utils.SanitizeTime(*att.AttachTime), networkAttachPath); err != nil {
				return err
			}
		}
	}

	if len(instance.BlockDeviceMappings) > 0 {
		if ebs := instance.BlockDeviceMappings[0].Ebs; ebs != nil && ebs.AttachTime != nil {
			if err := replace(fields, utils.SanitizeTime(*ebs.AttachTime), volumeAttachPath); err != nil {
				return err
			}
		}
	}

	return nil
}

func replace(fields map[string]interface{}, value string, path []interface{}) error {
	found, err := utils.SetNested(fields, value, path...)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("path %v missing from copied instance", path)
	}
	return nil
}

func (t *Transformer) location() *time.Location {
	if t.Location == nil {
		return time.Local
	}
	return t.Location
}

func (t *Transformer) logger() *slog.Logger {
	if t.Logger == nil {
		return slog.Default()
	}
	return t.Logger
}
