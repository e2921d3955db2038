package utils

import (
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

// GetTagValue returns the value of a tag with the given key
func GetTagValue(tags []types.Tag, key string) string {
	for _, tag := range tags {
		if tag.Key != nil && *tag.Key == key {
			if tag.Value != nil {
				return *tag.Value
			}
			return ""
		}
	}
	return ""
}

// GetName returns the value of the Name tag
func GetName(tags []types.Tag) string {
	return GetTagValue(tags, "Name")
}

// GetTagValueFromFields looks up a tag in decoded snapshot fields, where
// Tags is a list of {"Key": ..., "Value": ...} objects
func GetTagValueFromFields(fields map[string]interface{}, key string) string {
	tags, ok := fields["Tags"].([]interface{})
	if !ok {
		return ""
	}
	for _, t := range tags {
		tag, ok := t.(map[string]interface{})
		if !ok {
			continue
		}
		if k, _ := tag["Key"].(string); k == key {
			v, _ := tag["Value"].(string)
			return v
		}
	}
	return ""
}
