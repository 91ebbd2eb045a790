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

	"github.com/arcentrix/caseforge/internal/pkg/pipeline/spec"
)

// runReading chunks the extracted document texts into ordered, bounded
// segments with overlap between consecutive segments. Indexes are global
// across all documents of the run.
func (e *Engine) runReading(exec *execution) error {
	exec.segments = exec.segments[:0]
	index := 0
	for _, doc := range exec.docs {
		for _, chunk := range chunkText(doc.Text, e.cfg.ChunkSize, e.cfg.ChunkOverlap) {
			exec.segments = append(exec.segments, spec.Segment{
				Index:          index,
				Text:           chunk,
				SourceDocument: doc.Filename,
			})
			index++
		}
	}
	if len(exec.segments) == 0 {
		return ErrEmptyInput
	}
	return nil
}

// chunkText splits text into chunks of at most size characters, preferring to
// break at a sentence end or paragraph break near the limit, and re-including
// the trailing overlap of the previous chunk to preserve cross-boundary
// context.
func chunkText(text string, size, overlap int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= size {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(text) {
		end := start + size
		if end < len(text) {
			// Prefer a boundary within the last 200 characters of the window.
			searchStart := max(start+size-200, start)
			if dot := strings.LastIndex(text[searchStart:end], "."); dot >= 0 {
				end = searchStart + dot + 1
			} else if para := strings.LastIndex(text[searchStart:end], "\n\n"); para >= 0 {
				end = searchStart + para + 2
			}
		} else {
			end = len(text)
		}

		if chunk := strings.TrimSpace(text[start:end]); chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end >= len(text) {
			break
		}
		start = max(start+1, end-overlap)
	}
	return chunks
}
