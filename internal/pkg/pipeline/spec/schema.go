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

// Package spec defines the wire-format types flowing between pipeline stages:
// requirement segments, extracted features, and generated test cases.
package spec

// Document is one extracted requirement document held on the run.
type Document struct {
	Filename string `json:"filename"`
	Text     string `json:"text"`
}

// Segment is one bounded chunk of requirement text, ordered by Index.
type Segment struct {
	Index          int    `json:"segment_index"`
	Text           string `json:"text"`
	SourceDocument string `json:"source_document"`
}

// Feature is a discrete requirement extracted from the segments.
// Identifiers are unique within a run and stable for unchanged content.
type Feature struct {
	RequirementId     string `json:"requirement_id"`
	Description       string `json:"description"`
	SourceSegmentRefs []int  `json:"source_segment_refs"`
}

// Test case priorities.
const (
	PriorityHigh   = "High"
	PriorityMedium = "Medium"
	PriorityLow    = "Low"
)

// Test case types.
const (
	TypeFunctional  = "Functional"
	TypeNegative    = "Negative"
	TypeEdge        = "Edge"
	TypeSecurity    = "Security"
	TypePerformance = "Performance"
)

var (
	// Priorities holds the closed priority vocabulary.
	Priorities = []string{PriorityHigh, PriorityMedium, PriorityLow}
	// Types holds the closed test case type vocabulary.
	Types = []string{TypeFunctional, TypeNegative, TypeEdge, TypeSecurity, TypePerformance}
)

// ValidPriority reports membership in the priority vocabulary.
func ValidPriority(p string) bool {
	for _, v := range Priorities {
		if v == p {
			return true
		}
	}
	return false
}

// ValidType reports membership in the type vocabulary.
func ValidType(t string) bool {
	for _, v := range Types {
		if v == t {
			return true
		}
	}
	return false
}

// TestCase is a structured test scenario. Field order here fixes the key order
// of exported JSON artifacts.
type TestCase struct {
	Id             string   `json:"id"`
	Title          string   `json:"title"`
	RequirementIds []string `json:"requirement_ids"`
	Preconditions  []string `json:"preconditions"`
	Steps          []string `json:"steps"`
	ExpectedResult string   `json:"expected_result"`
	Priority       string   `json:"priority"`
	Type           string   `json:"type"`
}

// TraceEntry is one test case summary inside the traceability matrix.
type TraceEntry struct {
	TestCaseId string `json:"test_case_id"`
	Title      string `json:"title"`
	Type       string `json:"type"`
	Priority   string `json:"priority"`
}

// Traceability maps every requirement id of a run to its covering test cases.
// Uncovered requirements appear with an empty list.
type Traceability map[string][]TraceEntry

// Diagnostics records non-fatal findings accumulated across a run: repaired or
// dropped candidates, tolerated segment failures, residual coverage gaps.
type Diagnostics struct {
	ValidationIssues []string `json:"validation_issues,omitempty"`
	DroppedCases     []string `json:"dropped_cases,omitempty"`
	CoverageGaps     []string `json:"coverage_gaps,omitempty"`
}
