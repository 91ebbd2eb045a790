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
)

// coverageGap describes one under-covered feature.
type coverageGap struct {
	feature spec.Feature
	reason  string
}

// runAuditing finds features with no or insufficiently varied test cases and
// issues bounded supplemental generation passes. Residual gaps after the
// configured passes are recorded in diagnostics and visible through the
// traceability matrix, never retried indefinitely.
func (e *Engine) runAuditing(ctx context.Context, exec *execution) error {
	for pass := 0; pass < e.cfg.AuditPasses; pass++ {
		gaps := findCoverageGaps(exec.features, exec.cases)
		if len(gaps) == 0 {
			return nil
		}
		remaining := exec.run.MaxCases - len(exec.cases)
		if remaining <= 0 {
			break
		}

		ceiling := fairCeiling(remaining, len(gaps))
		var supplements []spec.TestCase
		for _, gap := range gaps {
			budget := min(ceiling, remaining-len(supplements))
			if budget <= 0 {
				break
			}
			cases, err := e.generateForGap(ctx, exec.client, gap, budget)
			if err != nil {
				log.Warnw("gap generation failed", "runId", exec.run.RunId, "requirement", gap.feature.RequirementId, "err", err)
				continue
			}
			if len(cases) > budget {
				cases = cases[:budget]
			}
			supplements = append(supplements, cases...)
		}
		if len(supplements) == 0 {
			break
		}

		renumberCases(supplements, highestCaseNumber(exec.cases)+1)
		exec.cases = append(exec.cases, e.validateCases(ctx, exec, supplements)...)
	}

	for _, gap := range findCoverageGaps(exec.features, exec.cases) {
		exec.diags.CoverageGaps = append(exec.diags.CoverageGaps,
			fmt.Sprintf("%s: %s", gap.feature.RequirementId, gap.reason))
	}
	return nil
}

// generateForGap requests supplemental cases for one under-covered feature.
func (e *Engine) generateForGap(ctx context.Context, client llm.IClient, gap coverageGap, budget int) ([]spec.TestCase, error) {
	var cases []spec.TestCase
	err := llm.Retry(ctx, e.cfg.LLMAttempts, e.cfg.backoff(), func(ctx context.Context) error {
		raw, err := client.Complete(ctx, []llm.Message{
			{Role: "system", Content: gapGeneratorSystemPrompt},
			{Role: "user", Content: gapGeneratorUserPrompt(gap.feature.RequirementId, gap.feature.Description, gap.reason, budget)},
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
			cases[i].RequirementIds = []string{gap.feature.RequirementId}
		}
	}
	return cases, nil
}

// findCoverageGaps reports features with zero cases or without a single
// non-Functional representative.
func findCoverageGaps(features []spec.Feature, cases []spec.TestCase) []coverageGap {
	covered := make(map[string]int)
	varied := make(map[string]bool)
	for _, tc := range cases {
		for _, rid := range tc.RequirementIds {
			covered[rid]++
			if tc.Type != spec.TypeFunctional {
				varied[rid] = true
			}
		}
	}

	var gaps []coverageGap
	for _, f := range features {
		switch {
		case covered[f.RequirementId] == 0:
			gaps = append(gaps, coverageGap{feature: f, reason: "no test cases"})
		case !varied[f.RequirementId]:
			gaps = append(gaps, coverageGap{feature: f, reason: "no negative, edge or security case"})
		}
	}
	return gaps
}

// highestCaseNumber returns the largest TC-NNN suffix among the cases.
func highestCaseNumber(cases []spec.TestCase) int {
	highest := 0
	for _, tc := range cases {
		var n int
		if _, err := fmt.Sscanf(tc.Id, "TC-%d", &n); err == nil && n > highest {
			highest = n
		}
	}
	return highest
}
