package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// ToMap converts a struct into a freshly allocated JSON object map.
// Numbers are decoded as json.Number so integers survive unchanged.
func ToMap(v interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("error encoding JSON: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var result map[string]interface{}
	if err := dec.Decode(&result); err != nil {
		return nil, fmt.Errorf("error parsing JSON: %w", err)
	}
	if result == nil {
		return nil, fmt.Errorf("value is not a JSON object")
	}
	return result, nil
}

// PruneNulls removes null members from objects, recursing into nested objects and arrays
func PruneNulls(data map[string]interface{}) {
	for k, v := range data {
		if v == nil {
			delete(data, k)
			continue
		}
		pruneValue(v)
	}
}

func pruneValue(v interface{}) {
	switch t := v.(type) {
	case map[string]interface{}:
		PruneNulls(t)
	case []interface{}:
		for _, item := range t {
			pruneValue(item)
		}
	}
}

// PruneUnsetEnums removes members of data that were encoded from empty
// non-pointer string fields of v. The AWS SDK models enums as plain strings, so
// "" means the provider never sent the field. Pointer fields are left alone:
// a set *string holding "" is a real value. data must be the JSON object
// encoded from v.
func PruneUnsetEnums(v interface{}, data map[string]interface{}) {
	pruneUnset(reflect.ValueOf(v), data)
}

func pruneUnset(rv reflect.Value, data map[string]interface{}) {
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return
	}

	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		name, ok := jsonName(field)
		if !ok {
			continue
		}

		fv := rv.Field(i)
		switch fv.Kind() {
		case reflect.String:
			if fv.Len() == 0 {
				if _, isString := data[name].(string); isString {
					delete(data, name)
				}
			}
		case reflect.Pointer, reflect.Struct, reflect.Interface:
			if nested, ok := data[name].(map[string]interface{}); ok {
				pruneUnset(fv, nested)
			}
		case reflect.Slice, reflect.Array:
			list, ok := data[name].([]interface{})
			if !ok {
				continue
			}
			for j := 0; j < fv.Len() && j < len(list); j++ {
				if nested, ok := list[j].(map[string]interface{}); ok {
					pruneUnset(fv.Index(j), nested)
				}
			}
		}
	}
}

// jsonName returns the object key encoding/json uses for an exported field
func jsonName(field reflect.StructField) (string, bool) {
	if !field.IsExported() {
		return "", false
	}
	tag := field.Tag.Get("json")
	if tag == "-" {
		return "", false
	}
	if name, _, _ := strings.Cut(tag, ","); name != "" {
		return name, true
	}
	return field.Name, true
}

// SetNested replaces the value found by walking path, where each element is a
// string object key or an int array index. It returns false without error when
// any step of the path is absent, null or out of range, and an error when a step
// has an unexpected type.
func SetNested(data map[string]interface{}, value interface{}, path ...interface{}) (bool, error) {
	if len(path) == 0 {
		return false, fmt.Errorf("invalid keys")
	}

	var current interface{} = data
	for i, step := range path {
		last := i == len(path)-1

		switch key := step.(type) {
		case string:
			m, ok := current.(map[string]interface{})
			if !ok {
				return false, fmt.Errorf("value before key %s is not a map", key)
			}
			next, exists := m[key]
			if !exists || next == nil {
				return false, nil
			}
			if last {
				m[key] = value
				return true, nil
			}
			current = next

		case int:
			list, ok := current.([]interface{})
			if !ok {
				return false, fmt.Errorf("value before index %d is not a list", key)
			}
			if key < 0 || key >= len(list) || list[key] == nil {
				return false, nil
			}
			if last {
				list[key] = value
				return true, nil
			}
			current = list[key]

		default:
			return false, fmt.Errorf("unsupported path element %v", step)
		}
	}

	return false, nil
}

// FormatJSON formats a value as JSON with indentation
func FormatJSON(data interface{}) (string, error) {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("error formatting JSON: %w", err)
	}
	return string(bytes), nil
}
