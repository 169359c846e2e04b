package common

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	fenceRe          = regexp.MustCompile("(?s)```(?:json)?\\s*")
	trailingComma    = regexp.MustCompile(`,\s*\]`)
	trailingCommaObj = regexp.MustCompile(`,\s*\}`)
)

// StripFences removes markdown code fences that models wrap around
// JSON payloads.
func StripFences(s string) string {
	return strings.TrimSpace(fenceRe.ReplaceAllString(s, ""))
}

// FixTrailingCommas removes the trailing commas models habitually
// leave before closing brackets.
func FixTrailingCommas(s string) string {
	s = trailingComma.ReplaceAllString(s, "]")
	return trailingCommaObj.ReplaceAllString(s, "}")
}

// ParseJSON cleans and unmarshals a JSON object embedded in free-form
// model output into a type T. It scans for the outermost braces, so
// surrounding prose and markdown are tolerated.
func ParseJSON[T any](response string) (T, error) {
	var zero T
	jsonStr := StripFences(response)

	start := strings.Index(jsonStr, "{")
	end := strings.LastIndex(jsonStr, "}")
	if start == -1 || end == -1 || end <= start {
		return zero, fmt.Errorf("no JSON object found in response")
	}
	jsonStr = FixTrailingCommas(jsonStr[start : end+1])

	var result T
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return zero, fmt.Errorf("failed to unmarshal JSON: %w\nData: %s", err, jsonStr)
	}

	return result, nil
}

// ParseJSONArray is the array counterpart of ParseJSON: it locates the
// outermost brackets and unmarshals the slice.
func ParseJSONArray[T any](response string) ([]T, error) {
	jsonStr := StripFences(response)

	start := strings.Index(jsonStr, "[")
	end := strings.LastIndex(jsonStr, "]")
	if start == -1 || end == -1 || end <= start {
		return nil, fmt.Errorf("no JSON array found in response")
	}
	jsonStr = FixTrailingCommas(jsonStr[start : end+1])

	var result []T
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON array: %w", err)
	}

	return result, nil
}
