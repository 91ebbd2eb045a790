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
	"strings"
	"testing"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare", `[{"id":"TC-001"}]`, `[{"id":"TC-001"}]`},
		{"json fence", "```json\n[1,2]\n```", "[1,2]"},
		{"plain fence", "```\n[1,2]\n```", "[1,2]"},
		{"surrounding whitespace", "  \n```json\n{}\n```\n ", "{}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripFences(tt.in); got != tt.want {
				t.Errorf("stripFences() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractArray(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"array", `[{"a":1}]`, `[{"a":1}]`, false},
		{"array with prose", `Here are the cases: [{"a":1}] hope that helps`, `[{"a":1}]`, false},
		{"single object wrapped", `{"a":1}`, `[{"a":1}]`, false},
		{"no json", `sorry, I cannot do that`, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractArray(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("extractArray() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("extractArray() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeTestCases(t *testing.T) {
	raw := "```json\n" + `[
  {
    "id": "TC-001",
    "title": "Login succeeds",
    "requirement_ids": ["REQ-1"],
    "steps": ["open login page", "submit valid credentials"],
    "expected_result": "user is logged in",
    "priority": "High",
    "type": "Functional"
  }
]` + "\n```"

	cases, err := DecodeTestCases(raw)
	if err != nil {
		t.Fatal(err)
	}
	if len(cases) != 1 {
		t.Fatalf("len(cases) = %d, want 1", len(cases))
	}
	tc := cases[0]
	if tc.Id != "TC-001" || tc.Title != "Login succeeds" || tc.Priority != "High" {
		t.Errorf("decoded case mismatch: %+v", tc)
	}
	if len(tc.Steps) != 2 {
		t.Errorf("len(Steps) = %d, want 2", len(tc.Steps))
	}
}

func TestDecodeTestCases_Invalid(t *testing.T) {
	if _, err := DecodeTestCases("no json here"); err == nil {
		t.Fatal("expected error for output without JSON")
	}
	if _, err := DecodeTestCases(`["not-an-object"]`); err == nil {
		t.Fatal("expected error for mistyped array elements")
	}
}

func TestDecodeFeatures(t *testing.T) {
	features, err := DecodeFeatures(`[{"requirement_id":"REQ-1","description":"user login"}]`)
	if err != nil {
		t.Fatal(err)
	}
	if len(features) != 1 || features[0].RequirementId != "REQ-1" {
		t.Errorf("decoded features mismatch: %+v", features)
	}
}

func TestEncodeJSON_Indented(t *testing.T) {
	out, err := EncodeJSON([]TestCase{{Id: "TC-001"}})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), "\n  ") {
		t.Errorf("EncodeJSON output not indented: %s", out)
	}
}

func TestDecodeJSON_EmptyIsNoop(t *testing.T) {
	var cases []TestCase
	if err := DecodeJSON(nil, &cases); err != nil {
		t.Fatal(err)
	}
	if cases != nil {
		t.Errorf("cases = %v, want nil", cases)
	}
}

func TestValidVocabulary(t *testing.T) {
	for _, p := range Priorities {
		if !ValidPriority(p) {
			t.Errorf("ValidPriority(%q) = false", p)
		}
	}
	if ValidPriority("Critical") {
		t.Error("ValidPriority(Critical) = true, want false")
	}
	for _, typ := range Types {
		if !ValidType(typ) {
			t.Errorf("ValidType(%q) = false", typ)
		}
	}
	if ValidType("Smoke") {
		t.Error("ValidType(Smoke) = true, want false")
	}
}
