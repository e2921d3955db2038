package utils

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/stretchr/testify/assert"
)

func TestGetName(t *testing.T) {
	tags := []types.Tag{
		{Key: aws.String("env"), Value: aws.String("prod")},
		{Key: aws.String("Name"), Value: aws.String("web-1")},
	}
	assert.Equal(t, "web-1", GetName(tags))
	assert.Equal(t, "prod", GetTagValue(tags, "env"))
	assert.Equal(t, "", GetTagValue(tags, "team"))
	assert.Equal(t, "", GetName([]types.Tag{{Key: aws.String("Name")}}))
}

func TestGetTagValueFromFields(t *testing.T) {
	fields := map[string]interface{}{
		"Tags": []interface{}{
			map[string]interface{}{"Key": "env", "Value": "prod"},
			"not-a-tag",
			map[string]interface{}{"Key": "Name", "Value": "web-1"},
		},
	}
	assert.Equal(t, "web-1", GetTagValueFromFields(fields, "Name"))
	assert.Equal(t, "prod", GetTagValueFromFields(fields, "env"))
	assert.Equal(t, "", GetTagValueFromFields(fields, "team"))
	assert.Equal(t, "", GetTagValueFromFields(map[string]interface{}{}, "Name"))
}
