package common

import (
	"encoding/json"
	"fmt"
)

// ParseJSON cleans and unmarshals a JSON object string into a type T.
// It handles common LLM quirks like surrounding markdown or extra text.
func ParseJSON[T any](response string) (T, error) {
	var zero T
	jsonStr, err := extractDelimited(response, '{', '}')
	if err != nil {
		return zero, err
	}

	var result T
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return zero, fmt.Errorf("failed to unmarshal JSON: %w\nData: %s", err, jsonStr)
	}

	return result, nil
}

// ParseJSONArray is the list-shaped variant for prompts that ask for a bare
// JSON array.
func ParseJSONArray[T any](response string) ([]T, error) {
	jsonStr, err := extractDelimited(response, '[', ']')
	if err != nil {
		return nil, err
	}

	var result []T
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON array: %w\nData: %s", err, jsonStr)
	}

	return result, nil
}

// extractDelimited slices out the first opener..last closer span of the response.
func extractDelimited(s string, opener, closer byte) (string, error) {
	start := -1
	end := -1

	for i := 0; i < len(s); i++ {
		if s[i] == opener {
			start = i
			break
		}
	}
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == closer {
			end = i + 1
			break
		}
	}

	if start == -1 || end == -1 || start >= end {
		return "", fmt.Errorf("no JSON found in response (missing '%c')", opener)
	}
	return s[start:end], nil
}
