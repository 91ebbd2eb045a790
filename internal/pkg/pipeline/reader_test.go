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
	"strings"
	"testing"

	"github.com/arcentrix/caseforge/internal/engine/model"
	"github.com/arcentrix/caseforge/internal/pkg/pipeline/spec"
	"github.com/pkg/errors"
)

func TestChunkText_ShortTextSingleChunk(t *testing.T) {
	chunks := chunkText("The system shall log in users.", 8000, 200)
	if len(chunks) != 1 {
		t.Fatalf("len(chunks) = %d, want 1", len(chunks))
	}
	if chunks[0] != "The system shall log in users." {
		t.Errorf("chunk = %q", chunks[0])
	}
}

func TestChunkText_Empty(t *testing.T) {
	if chunks := chunkText("   \n ", 8000, 200); chunks != nil {
		t.Errorf("chunkText(blank) = %v, want nil", chunks)
	}
}

func TestChunkText_BreaksAtSentence(t *testing.T) {
	// Two sentences; the window ends mid second sentence, so the split should
	// land right after the first period.
	text := "First sentence about login." + " " + strings.Repeat("x", 100)
	chunks := chunkText(text, 60, 10)
	if len(chunks) < 2 {
		t.Fatalf("len(chunks) = %d, want >= 2", len(chunks))
	}
	if !strings.HasSuffix(chunks[0], ".") {
		t.Errorf("first chunk does not end at sentence: %q", chunks[0])
	}
}

func TestChunkText_CoversFullText(t *testing.T) {
	text := strings.Repeat("The system shall validate input. ", 400)
	chunks := chunkText(text, 1000, 100)
	if len(chunks) < 2 {
		t.Fatalf("len(chunks) = %d, want >= 2", len(chunks))
	}
	for i, c := range chunks {
		if len(c) > 1000 {
			t.Errorf("chunks[%d] length %d exceeds size", i, len(c))
		}
	}
	// The last chunk must reach the end of the input.
	tail := strings.TrimSpace(text)
	if !strings.HasSuffix(tail, strings.TrimSpace(chunks[len(chunks)-1])) {
		t.Error("last chunk does not cover the end of the text")
	}
}

func TestChunkText_OverlapCarriesContext(t *testing.T) {
	text := strings.Repeat("Requirement sentence number one. ", 100)
	chunks := chunkText(text, 500, 100)
	if len(chunks) < 2 {
		t.Fatalf("len(chunks) = %d, want >= 2", len(chunks))
	}
	// Consecutive chunks share the overlap region.
	head := chunks[1][:40]
	if !strings.Contains(chunks[0], head) {
		t.Errorf("second chunk head %q not found in first chunk", head)
	}
}

func TestConfigOverlapClampedBelowChunkSize(t *testing.T) {
	cfg := Config{ChunkSize: 100, ChunkOverlap: 200}
	cfg.SetDefaults()
	if cfg.ChunkOverlap >= cfg.ChunkSize {
		t.Fatalf("ChunkOverlap = %d, want < ChunkSize %d", cfg.ChunkOverlap, cfg.ChunkSize)
	}

	// A small chunk size with an oversized configured overlap must still step
	// through the text in chunk-sized strides, not one character at a time.
	text := strings.Repeat("x", 1000)
	chunks := chunkText(text, cfg.ChunkSize, cfg.ChunkOverlap)
	if len(chunks) > 20 {
		t.Errorf("len(chunks) = %d for 1000 chars at size 100, want <= 20", len(chunks))
	}

	cfg = Config{}
	cfg.SetDefaults()
	if cfg.ChunkSize != 8000 || cfg.ChunkOverlap != 200 {
		t.Errorf("defaults = %d/%d, want 8000/200", cfg.ChunkSize, cfg.ChunkOverlap)
	}
}

func TestRunReading_GlobalIndexAcrossDocuments(t *testing.T) {
	e := &Engine{cfg: testConfig()}
	exec := &execution{
		run: &model.Run{},
		docs: []spec.Document{
			{Filename: "a.txt", Text: "Requirements for module A."},
			{Filename: "b.txt", Text: "Requirements for module B."},
		},
	}
	if err := e.runReading(exec); err != nil {
		t.Fatal(err)
	}
	if len(exec.segments) != 2 {
		t.Fatalf("len(segments) = %d, want 2", len(exec.segments))
	}
	for i, seg := range exec.segments {
		if seg.Index != i {
			t.Errorf("segments[%d].Index = %d", i, seg.Index)
		}
	}
	if exec.segments[0].SourceDocument != "a.txt" || exec.segments[1].SourceDocument != "b.txt" {
		t.Errorf("source documents = %q, %q", exec.segments[0].SourceDocument, exec.segments[1].SourceDocument)
	}
}

func TestRunReading_EmptyInput(t *testing.T) {
	e := &Engine{cfg: testConfig()}
	exec := &execution{
		run:  &model.Run{},
		docs: []spec.Document{{Filename: "empty.txt", Text: "   "}},
	}
	err := e.runReading(exec)
	if !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("runReading() error = %v, want ErrEmptyInput", err)
	}
}
