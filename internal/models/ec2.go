package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// JSON keys of the typed InstanceRecord fields
const (
	KeyInstanceID   = "InstanceId"
	KeyLaunchTime   = "LaunchTime"
	KeyEpochSeconds = "epoch_seconds"
)

// InstanceRecord represents one transformed EC2 instance
type InstanceRecord struct {
	InstanceID   string
	LaunchTime   string // sanitized, e.g. "05-Mar-2024 (14:02:11.000000)"
	EpochSeconds int64

	// Fields holds every other attribute of the provider record, passed through
	// as decoded JSON values.
	Fields map[string]any
}

// Snapshot is the sorted list of instances persisted for one region
type Snapshot []InstanceRecord

// MarshalJSON flattens Fields next to the typed keys
func (r InstanceRecord) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Fields)+3)
	for k, v := range r.Fields {
		out[k] = v
	}
	out[KeyInstanceID] = r.InstanceID
	out[KeyLaunchTime] = r.LaunchTime
	out[KeyEpochSeconds] = r.EpochSeconds
	return json.Marshal(out)
}

// UnmarshalJSON splits a flat snapshot object back into typed keys and Fields
func (r *InstanceRecord) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	if raw == nil {
		return fmt.Errorf("instance record is null")
	}

	id, ok := raw[KeyInstanceID].(string)
	if !ok {
		return fmt.Errorf("key %s is not a string", KeyInstanceID)
	}
	launch, ok := raw[KeyLaunchTime].(string)
	if !ok {
		return fmt.Errorf("key %s is not a string", KeyLaunchTime)
	}
	num, ok := raw[KeyEpochSeconds].(json.Number)
	if !ok {
		return fmt.Errorf("key %s is not a number", KeyEpochSeconds)
	}
	epoch, err := num.Int64()
	if err != nil {
		return fmt.Errorf("key %s is not an integer: %w", KeyEpochSeconds, err)
	}

	delete(raw, KeyInstanceID)
	delete(raw, KeyLaunchTime)
	delete(raw, KeyEpochSeconds)

	r.InstanceID = id
	r.LaunchTime = launch
	r.EpochSeconds = epoch
	r.Fields = raw
	return nil
}
