package utils

import (
	"strings"
	"time"
)

const (
	// SanitizedTimeLayout renders timestamps as "dd-Mon-YYYY (HH:MM:SS.ffffff)"
	SanitizedTimeLayout = "02-Jan-2006 (15:04:05.000000)"

	// naiveTimeLayout is the ISO-8601 local time without fraction or offset
	naiveTimeLayout = "2006-01-02T15:04:05"
)

// SanitizeTime formats a timestamp in its own location using SanitizedTimeLayout
func SanitizeTime(t time.Time) string {
	return t.Format(SanitizedTimeLayout)
}

// ISOFormat renders t as ISO-8601 with a numeric offset ("+00:00", never "Z").
// Microseconds are only included when non-zero.
func ISOFormat(t time.Time) string {
	layout := naiveTimeLayout
	if t.Nanosecond()/int(time.Microsecond) != 0 {
		layout += ".000000"
	}
	return t.Format(layout + "-07:00")
}

// LaunchTimeToEpoch converts a launch timestamp to Unix seconds.
//
// The offset suffix (everything from the first '+') is dropped and the remaining
// wall clock is interpreted in loc, so the result depends on loc. Timestamps with
// a negative offset keep their suffix and fail to parse.
func LaunchTimeToEpoch(t time.Time, loc *time.Location) (int64, error) {
	naive, _, _ := strings.Cut(ISOFormat(t), "+")

	parsed, err := time.ParseInLocation(naiveTimeLayout, naive, loc)
	if err != nil {
		return 0, err
	}

	return parsed.Unix(), nil
}
