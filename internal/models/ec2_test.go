package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstanceRecordJSONIsFlat(t *testing.T) {
	rec := InstanceRecord{
		InstanceID:   "i-0abc",
		LaunchTime:   "05-Mar-2024 (14:02:11.000000)",
		EpochSeconds: 1709647331,
		Fields: map[string]any{
			"InstanceType": "t3.micro",
		},
	}

	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var flat map[string]any
	require.NoError(t, json.Unmarshal(data, &flat))
	assert.Equal(t, "i-0abc", flat["InstanceId"])
	assert.Equal(t, "05-Mar-2024 (14:02:11.000000)", flat["LaunchTime"])
	assert.EqualValues(t, 1709647331, flat["epoch_seconds"])
	assert.Equal(t, "t3.micro", flat["InstanceType"])

	var back InstanceRecord
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, rec.InstanceID, back.InstanceID)
	assert.Equal(t, rec.LaunchTime, back.LaunchTime)
	assert.Equal(t, rec.EpochSeconds, back.EpochSeconds)
	assert.Equal(t, map[string]any{"InstanceType": "t3.micro"}, back.Fields)
}

func TestInstanceRecordUnmarshalRejectsMissingKeys(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"null", `null`},
		{"no id", `{"LaunchTime":"x","epoch_seconds":1}`},
		{"no launch time", `{"InstanceId":"i-1","epoch_seconds":1}`},
		{"epoch not a number", `{"InstanceId":"i-1","LaunchTime":"x","epoch_seconds":"1"}`},
		{"epoch not an integer", `{"InstanceId":"i-1","LaunchTime":"x","epoch_seconds":1.5}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rec InstanceRecord
			assert.Error(t, json.Unmarshal([]byte(tt.in), &rec))
		})
	}
}
