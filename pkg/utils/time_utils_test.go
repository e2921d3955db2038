package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeTime(t *testing.T) {
	ts := time.Date(2024, time.March, 5, 14, 2, 11, 123456000, time.UTC)
	assert.Equal(t, "05-Mar-2024 (14:02:11.123456)", SanitizeTime(ts))

	ts = time.Date(2019, time.November, 30, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, "30-Nov-2019 (01:00:00.000000)", SanitizeTime(ts))
}

func TestISOFormat(t *testing.T) {
	assert.Equal(t, "2024-03-05T14:02:11+00:00",
		ISOFormat(time.Date(2024, time.March, 5, 14, 2, 11, 0, time.UTC)))
	assert.Equal(t, "2024-03-05T14:02:11.000500+00:00",
		ISOFormat(time.Date(2024, time.March, 5, 14, 2, 11, 500000, time.UTC)))

	est := time.FixedZone("EST", -5*3600)
	assert.Equal(t, "2024-03-05T14:02:11-05:00",
		ISOFormat(time.Date(2024, time.March, 5, 14, 2, 11, 0, est)))
}

func TestLaunchTimeToEpochUsesLocation(t *testing.T) {
	ts := time.Date(2024, time.March, 5, 14, 2, 11, 0, time.UTC)

	utc, err := LaunchTimeToEpoch(ts, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, ts.Unix(), utc)

	// The UTC wall clock is read as Tokyo local time, nine hours earlier.
	tokyo := time.FixedZone("JST", 9*3600)
	jst, err := LaunchTimeToEpoch(ts, tokyo)
	require.NoError(t, err)
	assert.Equal(t, utc-9*3600, jst)
}

func TestLaunchTimeToEpochDropsFraction(t *testing.T) {
	ts := time.Date(2024, time.March, 5, 14, 2, 11, 999999000, time.UTC)

	epoch, err := LaunchTimeToEpoch(ts, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, int64(1709647331), epoch)
}

func TestLaunchTimeToEpochRejectsNegativeOffset(t *testing.T) {
	ts := time.Date(2024, time.March, 5, 14, 2, 11, 0, time.FixedZone("EST", -5*3600))

	_, err := LaunchTimeToEpoch(ts, time.UTC)
	assert.Error(t, err)
}
