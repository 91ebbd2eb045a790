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

	"github.com/arcentrix/caseforge/internal/pkg/llm"
	"github.com/arcentrix/caseforge/internal/pkg/pipeline/spec"
	"github.com/arcentrix/caseforge/pkg/log"
	"github.com/pkg/errors"
)

// runGenerating produces candidate test cases per feature. The max_cases
// budget is apportioned so no single feature's share exceeds the fair ceiling
// of ceil(max_cases / feature_count), keeping coverage broad.
func (e *Engine) runGenerating(ctx context.Context, exec *execution) error {
	budget := exec.run.MaxCases
	ceiling := fairCeiling(budget, len(exec.features))

	var (
		candidates []spec.TestCase
		failures   int
	)
	for _, feature := range exec.features {
		remaining := budget - len(candidates)
		if remaining <= 0 {
			break
		}
		share := min(ceiling, remaining)

		cases, err := e.generateForFeature(ctx, exec.client, feature, share)
		if err != nil {
			failures++
			log.Warnw("feature generation failed", "runId", exec.run.RunId, "requirement", feature.RequirementId, "err", err)
			exec.diags.ValidationIssues = append(exec.diags.ValidationIssues,
				fmt.Sprintf("generation: %s: %v", feature.RequirementId, err))
			continue
		}
		if len(cases) > share {
			cases = cases[:share]
		}
		candidates = append(candidates, cases...)
	}

	if failures == len(exec.features) {
		return errors.Wrapf(ErrGenerationFailed, "all %d feature calls failed", failures)
	}
	if len(candidates) == 0 {
		return ErrGenerationFailed
	}

	renumberCases(candidates, 1)
	exec.cases = candidates
	return nil
}

// generateForFeature requests up to budget cases for one feature. Candidates
// missing requirement references inherit the feature's id; the validator still
// judges everything else.
func (e *Engine) generateForFeature(ctx context.Context, client llm.IClient, feature spec.Feature, budget int) ([]spec.TestCase, error) {
	var cases []spec.TestCase
	err := llm.Retry(ctx, e.cfg.LLMAttempts, e.cfg.backoff(), func(ctx context.Context) error {
		raw, err := client.Complete(ctx, []llm.Message{
			{Role: "system", Content: generatorSystemPrompt},
			{Role: "user", Content: generatorUserPrompt(feature.RequirementId, feature.Description, budget)},
		})
		if err != nil {
			return err
		}
		cases, err = spec.DecodeTestCases(raw)
		return err
	})
	if err != nil {
		return nil, err
	}
	for i := range cases {
		if len(cases[i].RequirementIds) == 0 {
			cases[i].RequirementIds = []string{feature.RequirementId}
		}
	}
	return cases, nil
}

// fairCeiling is ceil(budget / features).
func fairCeiling(budget, features int) int {
	if features <= 0 {
		return budget
	}
	return (budget + features - 1) / features
}

// renumberCases reassigns sequential TC-NNN identifiers starting at from,
// making ids unique within the run regardless of what each model call emitted.
func renumberCases(cases []spec.TestCase, from int) {
	for i := range cases {
		cases[i].Id = fmt.Sprintf("TC-%03d", from+i)
	}
}
