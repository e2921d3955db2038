package models

import "time"

// Stage is a step of the regional ETL state machine
type Stage string

const (
	StageExtracting   Stage = "Extracting"
	StageTransforming Stage = "Transforming"
	StageLoading      Stage = "Loading"
	StageDone         Stage = "Done"
	StageFailed       Stage = "Failed"
)

// RegionResult holds the outcome of one regional ETL cycle
type RegionResult struct {
	Region    string
	Stage     Stage  // StageDone or StageFailed once the cycle ends
	FailedAt  Stage  // stage that was running when the cycle failed
	ErrorKind string // etlerr kind, empty on success
	Err       error  // original cause, kept for reporting only

	Instances     int
	SnapshotBytes int64
	Skipped       bool // no reservations, nothing written
	OldestLaunch  *time.Time
	StartedAt     time.Time
	Duration      time.Duration
}

// Succeeded reports whether the cycle reached StageDone
func (r RegionResult) Succeeded() bool {
	return r.Stage == StageDone
}
