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
	"github.com/arcentrix/caseforge/internal/engine/model"
	"github.com/arcentrix/caseforge/internal/pkg/llm"
	"github.com/arcentrix/caseforge/internal/pkg/pipeline/spec"
	"github.com/pkg/errors"
	"gorm.io/datatypes"
)

// execution is the working memory of one run: the stage outputs flowing
// between handlers. It is rebuilt from the run record's JSON columns on
// resume, so a restarted stage sees the same inputs it saw originally.
type execution struct {
	run    *model.Run
	client llm.IClient

	docs     []spec.Document
	segments []spec.Segment
	features []spec.Feature
	cases    []spec.TestCase
	diags    spec.Diagnostics
}

func newExecution(run *model.Run) (*execution, error) {
	exec := &execution{run: run}
	if err := spec.DecodeJSON(run.Documents, &exec.docs); err != nil {
		return nil, errors.Wrap(err, "decode documents")
	}
	if err := spec.DecodeJSON(run.Segments, &exec.segments); err != nil {
		return nil, errors.Wrap(err, "decode segments")
	}
	if err := spec.DecodeJSON(run.Features, &exec.features); err != nil {
		return nil, errors.Wrap(err, "decode features")
	}
	if err := spec.DecodeJSON(run.TestCases, &exec.cases); err != nil {
		return nil, errors.Wrap(err, "decode test cases")
	}
	if err := spec.DecodeJSON(run.Diagnostics, &exec.diags); err != nil {
		return nil, errors.Wrap(err, "decode diagnostics")
	}
	return exec, nil
}

func (x *execution) marshalSegments() (datatypes.JSON, error) {
	return marshalColumn(x.segments)
}

func (x *execution) marshalFeatures() (datatypes.JSON, error) {
	return marshalColumn(x.features)
}

func (x *execution) marshalCases() (datatypes.JSON, error) {
	return marshalColumn(x.cases)
}

func (x *execution) marshalDiagnostics() (datatypes.JSON, error) {
	return marshalColumn(x.diags)
}

func marshalColumn(v any) (datatypes.JSON, error) {
	data, err := spec.EncodeJSON(v)
	if err != nil {
		return nil, errors.Wrap(err, "marshal stage output")
	}
	return datatypes.JSON(data), nil
}
