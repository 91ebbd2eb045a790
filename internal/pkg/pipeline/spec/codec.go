// Copyright 2026 Arcentra Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package spec

import (
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
)

// stripFences removes a surrounding markdown code fence, which models emit
// even when told to return bare JSON.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// extractArray narrows raw model output to its outermost JSON array. A single
// object is wrapped into a one-element array.
func extractArray(raw string) (string, error) {
	s := stripFences(raw)
	if start := strings.Index(s, "["); start >= 0 {
		if end := strings.LastIndex(s, "]"); end > start {
			return s[start : end+1], nil
		}
	}
	if start := strings.Index(s, "{"); start >= 0 {
		if end := strings.LastIndex(s, "}"); end > start {
			return "[" + s[start:end+1] + "]", nil
		}
	}
	return "", fmt.Errorf("no JSON array found in model output")
}

// DecodeTestCases parses model output into candidate test cases. Candidates
// keep whatever field values the model produced; schema validation happens in
// the validation package.
func DecodeTestCases(raw string) ([]TestCase, error) {
	arr, err := extractArray(raw)
	if err != nil {
		return nil, err
	}
	var cases []TestCase
	if err := sonic.Unmarshal([]byte(arr), &cases); err != nil {
		return nil, fmt.Errorf("decode test cases: %w", err)
	}
	return cases, nil
}

// DecodeFeatures parses model output into extracted features.
func DecodeFeatures(raw string) ([]Feature, error) {
	arr, err := extractArray(raw)
	if err != nil {
		return nil, err
	}
	var features []Feature
	if err := sonic.Unmarshal([]byte(arr), &features); err != nil {
		return nil, fmt.Errorf("decode features: %w", err)
	}
	return features, nil
}

// EncodeJSON marshals v with two-space indentation, the format used for all
// JSON artifacts.
func EncodeJSON(v any) ([]byte, error) {
	return sonic.ConfigStd.MarshalIndent(v, "", "  ")
}

// DecodeJSON unmarshals persisted stage output.
func DecodeJSON(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return sonic.Unmarshal(data, v)
}
