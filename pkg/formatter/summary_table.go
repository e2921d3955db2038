package formatter

import (
	"fmt"
	"io"
	"time"

	"github.com/devA2C3/cloudvisor-test/internal/models"
	"github.com/devA2C3/cloudvisor-test/pkg/utils"
	"github.com/dustin/go-humanize"
)

// Region status labels
const (
	StatusOK      = "OK"
	StatusSkipped = "SKIPPED"
	StatusFailed  = "FAILED"
)

// RegionStatus returns the summary label for a regional result
func RegionStatus(result models.RegionResult) string {
	switch {
	case !result.Succeeded():
		return StatusFailed
	case result.Skipped:
		return StatusSkipped
	default:
		return StatusOK
	}
}

// PrintRunSummary prints one row per region followed by the totals
func PrintRunSummary(out io.Writer, results []models.RegionResult, startTime time.Time, duration time.Duration) {
	if len(results) == 0 {
		fmt.Fprintln(out, "No regions processed.")
		return
	}

	w := newTableWriter(out)

	printTimestamp(w, startTime, duration)

	fmt.Fprintln(w, "REGION\tLOCATION\tSTATUS\tINSTANCES\tSIZE\tOLDEST LAUNCH\tDURATION\tERROR")

	var ok, skipped, failed, instances int
	var totalBytes int64
	for _, result := range results {
		status := RegionStatus(result)
		switch status {
		case StatusOK:
			ok++
		case StatusSkipped:
			skipped++
		case StatusFailed:
			failed++
		}
		instances += result.Instances
		totalBytes += result.SnapshotBytes

		size := "-"
		if result.SnapshotBytes > 0 {
			size = humanize.Bytes(uint64(result.SnapshotBytes))
		}

		oldest := "-"
		if result.OldestLaunch != nil {
			oldest = humanize.RelTime(*result.OldestLaunch, startTime.Add(duration), "ago", "from now")
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\t%.2fs\t%s\n",
			result.Region,
			utils.GetRegionDescriptiveName(result.Region),
			status,
			result.Instances,
			size,
			oldest,
			result.Duration.Seconds(),
			failureLabel(result),
		)
	}

	fmt.Fprintf(w, "Total:\t\t%d ok, %d skipped, %d failed\t%d\t%s\t\t\t\n",
		ok, skipped, failed, instances, humanize.Bytes(uint64(totalBytes)))

	w.Flush()
}

// failureLabel renders "kind (stage)" for failed regions
func failureLabel(result models.RegionResult) string {
	if result.Succeeded() {
		return "-"
	}
	return fmt.Sprintf("%s (%s)", orDash(result.ErrorKind), orDash(string(result.FailedAt)))
}
