package formatter

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/devA2C3/cloudvisor-test/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegionStatus(t *testing.T) {
	assert.Equal(t, StatusOK, RegionStatus(models.RegionResult{Stage: models.StageDone}))
	assert.Equal(t, StatusSkipped, RegionStatus(models.RegionResult{Stage: models.StageDone, Skipped: true}))
	assert.Equal(t, StatusFailed, RegionStatus(models.RegionResult{Stage: models.StageFailed}))
}

func TestPrintRunSummary(t *testing.T) {
	start := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	oldest := start.Add(-72 * time.Hour)

	results := []models.RegionResult{
		{
			Region:        "us-east-1",
			Stage:         models.StageDone,
			Instances:     3,
			SnapshotBytes: 2048,
			OldestLaunch:  &oldest,
			Duration:      1500 * time.Millisecond,
		},
		{Region: "eu-west-1", Stage: models.StageDone, Skipped: true},
		{
			Region:    "ap-northeast-2",
			Stage:     models.StageFailed,
			FailedAt:  models.StageLoading,
			ErrorKind: "persistence",
			Err:       errors.New("disk full"),
		},
	}

	var buf bytes.Buffer
	PrintRunSummary(&buf, results, start, 0)
	out := buf.String()

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 6)
	assert.Contains(t, lines[0], "Run completed at 2024-05-10 12:00:00")
	assert.Equal(t, []string{"REGION", "LOCATION", "STATUS", "INSTANCES", "SIZE", "OLDEST", "LAUNCH", "DURATION", "ERROR"}, strings.Fields(lines[1]))

	assert.Contains(t, lines[2], "us-east-1")
	assert.Contains(t, lines[2], "N. Virginia")
	assert.Contains(t, lines[2], StatusOK)
	assert.Contains(t, lines[2], "2.0 kB")
	assert.Contains(t, lines[2], "3 days ago")
	assert.Contains(t, lines[2], "1.50s")

	assert.Contains(t, lines[3], StatusSkipped)
	assert.Contains(t, lines[4], StatusFailed)
	assert.Contains(t, lines[4], "persistence (Loading)")

	assert.Contains(t, lines[5], "1 ok, 1 skipped, 1 failed")
}

func TestPrintRunSummaryEmpty(t *testing.T) {
	var buf bytes.Buffer
	PrintRunSummary(&buf, nil, time.Now(), 0)
	assert.Equal(t, "No regions processed.\n", buf.String())
}

func TestPrintSnapshotTable(t *testing.T) {
	snap := models.Snapshot{
		{
			InstanceID:   "i-0aaa",
			LaunchTime:   "01-Mar-2023 (08:00:00.000000)",
			EpochSeconds: 1677657600,
			Fields: map[string]interface{}{
				"InstanceType": "t3.micro",
				"State":        map[string]interface{}{"Name": "running"},
				"Tags": []interface{}{
					map[string]interface{}{"Key": "Name", "Value": "web-1"},
				},
			},
		},
		{
			InstanceID:   "i-0bbb",
			LaunchTime:   "02-Mar-2023 (08:00:00.000000)",
			EpochSeconds: 1677744000,
		},
	}

	var buf bytes.Buffer
	PrintSnapshotTable(&buf, "us-west-2", snap)
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")

	require.Len(t, lines, 5)
	assert.Equal(t, "Region: us-west-2 (US West (Oregon))", strings.TrimSpace(lines[0]))
	assert.Equal(t, []string{"i-0aaa", "web-1", "t3.micro", "running", "01-Mar-2023", "(08:00:00.000000)", "1677657600"}, strings.Fields(lines[2]))
	assert.Equal(t, []string{"i-0bbb", "<unnamed>", "-", "-", "02-Mar-2023", "(08:00:00.000000)", "1677744000"}, strings.Fields(lines[3]))
	assert.Contains(t, lines[4], "2 instances")
}

func TestPrintSnapshotTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	PrintSnapshotTable(&buf, "us-west-2", nil)
	assert.Equal(t, "No instances in snapshot for us-west-2.\n", buf.String())
}

func TestTruncateWidth(t *testing.T) {
	assert.Equal(t, "short", TruncateWidth("short", 10))
	assert.Equal(t, "abcdefgh..", TruncateWidth("abcdefghijklmnop", 10))
	assert.Equal(t, "한글..", TruncateWidth("한글이름입니다", 6))
	assert.Equal(t, 4, StringWidth("한글"))
}
