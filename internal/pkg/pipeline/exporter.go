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

package pipeline

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"

	"github.com/arcentrix/caseforge/internal/pkg/pipeline/spec"
	"github.com/pkg/errors"
)

// Artifact kinds of a completed run.
const (
	ArtifactTestCasesJSON = "testcases.json"
	ArtifactTestCasesCSV  = "testcases.csv"
	ArtifactTraceability  = "traceability.json"
)

// listDelimiter joins list fields in CSV rows.
const listDelimiter = "; "

// runExporting builds the traceability matrix and writes the three artifacts.
// All writes happen before the engine marks the run completed, so a completed
// status always implies all three artifacts exist.
func (e *Engine) runExporting(ctx context.Context, exec *execution) error {
	trace := BuildTraceability(exec.features, exec.cases)

	casesJSON, err := spec.EncodeJSON(exec.cases)
	if err != nil {
		return errors.Wrap(err, "encode test cases")
	}
	traceJSON, err := spec.EncodeJSON(trace)
	if err != nil {
		return errors.Wrap(err, "encode traceability")
	}
	casesCSV, err := EncodeCasesCSV(exec.cases)
	if err != nil {
		return errors.Wrap(err, "encode csv")
	}

	runId := exec.run.RunId
	for name, data := range map[string][]byte{
		ArtifactTestCasesJSON: casesJSON,
		ArtifactTestCasesCSV:  casesCSV,
		ArtifactTraceability:  traceJSON,
	} {
		if err := e.store.Put(ctx, runId, name, data); err != nil {
			return errors.Wrapf(err, "write artifact %s", name)
		}
	}
	return nil
}

// BuildTraceability maps every feature id to its covering test cases. Every
// feature appears as a key, uncovered ones with an empty list.
func BuildTraceability(features []spec.Feature, cases []spec.TestCase) spec.Traceability {
	trace := make(spec.Traceability, len(features))
	for _, f := range features {
		trace[f.RequirementId] = []spec.TraceEntry{}
	}
	for _, tc := range cases {
		for _, rid := range tc.RequirementIds {
			if _, known := trace[rid]; !known {
				continue
			}
			trace[rid] = append(trace[rid], spec.TraceEntry{
				TestCaseId: tc.Id,
				Title:      tc.Title,
				Type:       tc.Type,
				Priority:   tc.Priority,
			})
		}
	}
	return trace
}

// EncodeCasesCSV renders one row per test case, flattening list fields with a
// fixed delimiter.
func EncodeCasesCSV(cases []spec.TestCase) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := []string{"id", "title", "requirement_ids", "preconditions", "steps", "expected_result", "priority", "type"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, tc := range cases {
		row := []string{
			tc.Id,
			tc.Title,
			strings.Join(tc.RequirementIds, listDelimiter),
			strings.Join(tc.Preconditions, listDelimiter),
			strings.Join(tc.Steps, listDelimiter),
			tc.ExpectedResult,
			tc.Priority,
			tc.Type,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
