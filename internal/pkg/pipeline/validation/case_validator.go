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

package validation

import (
	"fmt"
	"strings"

	"github.com/arcentrix/caseforge/internal/pkg/pipeline/spec"
)

// ICaseValidator validates candidate test cases against the schema.
type ICaseValidator interface {
	// Validate returns nil for a well-formed candidate, or an error whose text
	// describes every violation. The error text is fed back to the repair agent.
	Validate(tc *spec.TestCase) error
}

// CaseValidator checks schema shape plus referential integrity against the
// run's feature set.
type CaseValidator struct {
	knownRequirements map[string]struct{}
}

var _ ICaseValidator = (*CaseValidator)(nil)

// NewCaseValidator creates a validator bound to the features of one run.
func NewCaseValidator(features []spec.Feature) *CaseValidator {
	known := make(map[string]struct{}, len(features))
	for _, f := range features {
		known[f.RequirementId] = struct{}{}
	}
	return &CaseValidator{knownRequirements: known}
}

// Validate checks one candidate.
func (v *CaseValidator) Validate(tc *spec.TestCase) error {
	if tc == nil {
		return fmt.Errorf("test case is nil")
	}

	var issues []string
	if strings.TrimSpace(tc.Id) == "" {
		issues = append(issues, "id must be non-empty (format TC-NNN)")
	}
	if strings.TrimSpace(tc.Title) == "" {
		issues = append(issues, "title must be non-empty")
	}
	if len(tc.RequirementIds) == 0 {
		issues = append(issues, "requirement_ids must reference at least one requirement")
	}
	for _, rid := range tc.RequirementIds {
		if _, ok := v.knownRequirements[rid]; !ok {
			issues = append(issues, fmt.Sprintf("requirement_ids references unknown requirement %q", rid))
		}
	}
	if len(tc.Steps) == 0 {
		issues = append(issues, "steps must contain at least one step")
	}
	for i, step := range tc.Steps {
		if strings.TrimSpace(step) == "" {
			issues = append(issues, fmt.Sprintf("steps[%d] must be non-empty", i))
		}
	}
	if strings.TrimSpace(tc.ExpectedResult) == "" {
		issues = append(issues, "expected_result must be non-empty")
	}
	if !spec.ValidPriority(tc.Priority) {
		issues = append(issues, fmt.Sprintf("priority %q is not one of %s", tc.Priority, strings.Join(spec.Priorities, "|")))
	}
	if !spec.ValidType(tc.Type) {
		issues = append(issues, fmt.Sprintf("type %q is not one of %s", tc.Type, strings.Join(spec.Types, "|")))
	}

	if len(issues) > 0 {
		return fmt.Errorf("%s", strings.Join(issues, "; "))
	}
	return nil
}
