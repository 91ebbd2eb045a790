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
	"crypto/sha1"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/arcentrix/caseforge/internal/pkg/llm"
	"github.com/arcentrix/caseforge/internal/pkg/pipeline/spec"
	"github.com/arcentrix/caseforge/pkg/log"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// explicitIdPattern matches requirement identifiers carried by the documents
// themselves (REQ-1, FR-12, NFR-3, R-4, REQ_5).
var explicitIdPattern = regexp.MustCompile(`(?i)^(REQ|FR|NFR|R)[-_]\d+$`)

// runAnalyzing extracts features from the segments, one LLM call per segment,
// fanned out with bounded concurrency. Individual segment failures are
// tolerated as long as at least one feature is produced.
func (e *Engine) runAnalyzing(ctx context.Context, exec *execution) error {
	type segmentResult struct {
		segment  int
		features []spec.Feature
	}

	var (
		mu      sync.Mutex
		results []segmentResult
		failed  []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.AnalyzeConcurrency)
	for _, seg := range exec.segments {
		g.Go(func() error {
			features, err := e.analyzeSegment(gctx, exec.client, seg)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Warnw("segment analysis failed", "runId", exec.run.RunId, "segment", seg.Index, "err", err)
				failed = append(failed, fmt.Sprintf("segment %d: %v", seg.Index, err))
				return nil
			}
			results = append(results, segmentResult{segment: seg.Index, features: features})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// Deterministic merge order regardless of goroutine completion order.
	sort.Slice(results, func(i, j int) bool { return results[i].segment < results[j].segment })

	merged := newFeatureSet()
	for _, res := range results {
		for _, f := range res.features {
			merged.add(f, res.segment)
		}
	}

	for _, msg := range failed {
		exec.diags.ValidationIssues = append(exec.diags.ValidationIssues, "analysis: "+msg)
	}
	if len(results) == 0 && len(failed) > 0 {
		return errors.Wrapf(ErrAnalysisFailed, "all %d segment calls failed", len(failed))
	}

	exec.features = merged.list()
	if len(exec.features) == 0 {
		return ErrAnalysisFailed
	}
	return nil
}

// analyzeSegment asks the model for the requirements of one segment.
func (e *Engine) analyzeSegment(ctx context.Context, client llm.IClient, seg spec.Segment) ([]spec.Feature, error) {
	var features []spec.Feature
	err := llm.Retry(ctx, e.cfg.LLMAttempts, e.cfg.backoff(), func(ctx context.Context) error {
		raw, err := client.Complete(ctx, []llm.Message{
			{Role: "system", Content: analyzerSystemPrompt},
			{Role: "user", Content: analyzerUserPrompt(seg.Text)},
		})
		if err != nil {
			return err
		}
		features, err = spec.DecodeFeatures(raw)
		return err
	})
	return features, err
}

// featureSet merges per-segment extractions, deduplicating by normalized
// description and assigning stable identifiers.
type featureSet struct {
	order []string
	byKey map[string]*spec.Feature
	ids   map[string]struct{}
}

func newFeatureSet() *featureSet {
	return &featureSet{
		byKey: make(map[string]*spec.Feature),
		ids:   make(map[string]struct{}),
	}
}

// add merges one extracted feature from the given segment.
func (s *featureSet) add(f spec.Feature, segmentIndex int) {
	desc := strings.TrimSpace(f.Description)
	if desc == "" {
		return
	}
	key := normalizeDescription(desc)
	if existing, ok := s.byKey[key]; ok {
		existing.SourceSegmentRefs = appendRef(existing.SourceSegmentRefs, segmentIndex)
		return
	}

	id := s.assignId(f.RequirementId, key)
	s.byKey[key] = &spec.Feature{
		RequirementId:     id,
		Description:       desc,
		SourceSegmentRefs: []int{segmentIndex},
	}
	s.order = append(s.order, key)
}

// assignId keeps explicit document identifiers as-is and otherwise derives a
// content-hash identifier, so unchanged content keeps its id across re-runs
// and segment reorderings.
func (s *featureSet) assignId(explicit, key string) string {
	id := strings.ToUpper(strings.TrimSpace(explicit))
	if !explicitIdPattern.MatchString(id) {
		sum := sha1.Sum([]byte(key))
		id = fmt.Sprintf("F-%x", sum[:3])
	}
	base := id
	for n := 2; ; n++ {
		if _, taken := s.ids[id]; !taken {
			break
		}
		id = fmt.Sprintf("%s-%d", base, n)
	}
	s.ids[id] = struct{}{}
	return id
}

func (s *featureSet) list() []spec.Feature {
	out := make([]spec.Feature, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, *s.byKey[key])
	}
	return out
}

func normalizeDescription(desc string) string {
	return strings.Join(strings.Fields(strings.ToLower(desc)), " ")
}

func appendRef(refs []int, idx int) []int {
	for _, r := range refs {
		if r == idx {
			return refs
		}
	}
	refs = append(refs, idx)
	sort.Ints(refs)
	return refs
}
