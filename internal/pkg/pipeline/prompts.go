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

import "fmt"

// Prompt templates for the stage agents. Every agent that expects structured
// output asks for a bare JSON array; the spec codec still tolerates fences.

const analyzerSystemPrompt = `You are a senior QA analyst. From requirement text, extract the discrete requirements/features that a test designer would target. Prefer the document's own requirement identifiers (REQ-1, FR-12, NFR-3, R-4) when present; otherwise leave requirement_id empty.

Output JSON ONLY: an array of objects with fields:
- requirement_id: string (the explicit identifier from the text, or "")
- description: string (one concise sentence describing the requirement)

Do not invent requirements that are not in the text. No prose or markdown.`

func analyzerUserPrompt(segment string) string {
	return fmt.Sprintf(`Extract the discrete requirements from the following text. Return ONLY a JSON array of {requirement_id, description} objects.

Text:
%s`, segment)
}

const generatorSystemPrompt = `You are a QA test designer. Generate thorough but deduplicated test cases. Output JSON ONLY as a list of objects matching the schema fields: id, title, requirement_ids[], preconditions[], steps[], expected_result, priority(High|Medium|Low), type(Functional|Negative|Edge|Security|Performance). Keep steps actionable and clear.

Requirements:
- Use IDs like TC-001, TC-002, etc.
- Every case must reference the given requirement id in requirement_ids
- The first case must be a positive Functional case; add Negative, Edge and Security cases after it when the budget allows
- Make steps specific and actionable
- Avoid duplicate test cases`

func generatorUserPrompt(requirementId, description string, budget int) string {
	return fmt.Sprintf(`Create at most %d test cases for this requirement. The first must be a positive Functional case.

Requirement %s: %s

Return ONLY a valid JSON array of test case objects.`, budget, requirementId, description)
}

const repairSystemPrompt = `You strictly repair invalid JSON to match the required fields. Return JSON only. No prose or markdown.

Required schema fields:
- id: string (format: TC-XXX)
- title: string
- requirement_ids: array of strings
- preconditions: array of strings
- steps: array of strings (non-empty)
- expected_result: string
- priority: "High" | "Medium" | "Low"
- type: "Functional" | "Negative" | "Edge" | "Security" | "Performance"

Return ONLY the corrected JSON array.`

func repairUserPrompt(candidate, violations, knownRequirements string) string {
	return fmt.Sprintf(`The following test case is invalid: %s
Known requirement ids: %s
Repair it into a valid JSON array containing exactly one corrected object:
%s`, violations, knownRequirements, candidate)
}

const gapGeneratorSystemPrompt = `You generate only the missing test cases to cover the identified coverage gaps. Output JSON ONLY following the schema fields: id, title, requirement_ids[], preconditions[], steps[], expected_result, priority(High|Medium|Low), type(Functional|Negative|Edge|Security|Performance).

Requirements:
- Focus only on the identified gaps
- Every case must reference the given requirement id in requirement_ids
- Return ONLY a valid JSON array`

func gapGeneratorUserPrompt(requirementId, description, gap string, budget int) string {
	return fmt.Sprintf(`Requirement %s: %s

Coverage gap: %s

Create at most %d additional test cases closing this gap. Return ONLY a JSON array.`, requirementId, description, gap, budget)
}
