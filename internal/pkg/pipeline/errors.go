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

import "github.com/pkg/errors"

// Stage-fatal sentinels. A stage returning one of these exhausted its
// tolerance; the engine records it on the run and sets status failed.
var (
	ErrEmptyInput       = errors.New("no document yielded any text")
	ErrAnalysisFailed   = errors.New("feature analysis produced no features")
	ErrGenerationFailed = errors.New("test case generation produced no candidates")
)
