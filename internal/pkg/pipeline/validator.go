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
	"context"
	"fmt"
	"strings"

	"github.com/arcentrix/caseforge/internal/pkg/llm"
	"github.com/arcentrix/caseforge/internal/pkg/pipeline/spec"
	"github.com/arcentrix/caseforge/internal/pkg/pipeline/validation"
	"github.com/arcentrix/caseforge/pkg/log"
)

// runValidating schema-validates every candidate and repairs invalid ones
// through bounded LLM resubmission. Candidates exceeding their repair budget
// are dropped and recorded, never surfaced invalid. Dropping is not fatal to
// the run.
func (e *Engine) runValidating(ctx context.Context, exec *execution) error {
	exec.cases = e.validateCases(ctx, exec, exec.cases)
	return nil
}

// validateCases filters candidates down to the schema-valid subset, repairing
// where the budget allows. Reused by the auditing stage for supplements.
func (e *Engine) validateCases(ctx context.Context, exec *execution, candidates []spec.TestCase) []spec.TestCase {
	validator := validation.NewCaseValidator(exec.features)
	knownIds := requirementIds(exec.features)

	valid := make([]spec.TestCase, 0, len(candidates))
	for _, candidate := range candidates {
		verr := validator.Validate(&candidate)
		attempts := 0
		for verr != nil && attempts < exec.run.RepairAttempts {
			attempts++
			repaired, err := e.repairCase(ctx, exec.client, candidate, verr.Error(), knownIds)
			if err != nil {
				log.Warnw("candidate repair call failed", "runId", exec.run.RunId, "case", candidate.Id, "attempt", attempts, "err", err)
				continue
			}
			// Preserve the orchestrator-assigned id across repair.
			repaired.Id = candidate.Id
			candidate = repaired
			verr = validator.Validate(&candidate)
		}

		if verr != nil {
			exec.diags.DroppedCases = append(exec.diags.DroppedCases, candidate.Id)
			exec.diags.ValidationIssues = append(exec.diags.ValidationIssues,
				fmt.Sprintf("validation: %s dropped after %d repair attempts: %v", candidate.Id, attempts, verr))
			continue
		}
		if attempts > 0 {
			exec.diags.ValidationIssues = append(exec.diags.ValidationIssues,
				fmt.Sprintf("validation: %s repaired after %d attempts", candidate.Id, attempts))
		}
		valid = append(valid, candidate)
	}
	return valid
}

// repairCase resubmits one invalid candidate with its violation description.
func (e *Engine) repairCase(ctx context.Context, client llm.IClient, candidate spec.TestCase, violations string, knownIds []string) (spec.TestCase, error) {
	encoded, err := spec.EncodeJSON(candidate)
	if err != nil {
		return spec.TestCase{}, err
	}

	var repaired []spec.TestCase
	err = llm.Retry(ctx, e.cfg.LLMAttempts, e.cfg.backoff(), func(ctx context.Context) error {
		raw, err := client.Complete(ctx, []llm.Message{
			{Role: "system", Content: repairSystemPrompt},
			{Role: "user", Content: repairUserPrompt(string(encoded), violations, strings.Join(knownIds, ", "))},
		})
		if err != nil {
			return err
		}
		repaired, err = spec.DecodeTestCases(raw)
		if err != nil {
			return err
		}
		if len(repaired) == 0 {
			return fmt.Errorf("repair returned no candidate")
		}
		return nil
	})
	if err != nil {
		return spec.TestCase{}, err
	}
	return repaired[0], nil
}

func requirementIds(features []spec.Feature) []string {
	ids := make([]string, 0, len(features))
	for _, f := range features {
		ids = append(ids, f.RequirementId)
	}
	return ids
}
