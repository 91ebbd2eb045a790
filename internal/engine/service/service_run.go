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

package service

import (
	"context"
	"sync"
	"time"

	"github.com/arcentrix/caseforge/internal/engine/model"
	"github.com/arcentrix/caseforge/internal/engine/repo"
	"github.com/arcentrix/caseforge/internal/pkg/extractor"
	"github.com/arcentrix/caseforge/internal/pkg/pipeline"
	"github.com/arcentrix/caseforge/internal/pkg/pipeline/spec"
	"github.com/arcentrix/caseforge/internal/pkg/storage"
	"github.com/arcentrix/caseforge/pkg/log"
	"github.com/arcentrix/caseforge/pkg/safe"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/datatypes"
)

// Run config bounds and defaults.
const (
	MaxCasesFloor   = 1
	MaxCasesCeiling = 100
	defaultMaxCases = 50

	RepairAttemptsCeiling = 3
	defaultRepairAttempts = 1
)

// Service-level sentinels mapped to client errors by the router.
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrArtifactNotReady = errors.New("artifacts not ready")
	ErrUnknownArtifact  = errors.New("unknown artifact kind")
)

// IngestFile is one uploaded document.
type IngestFile struct {
	Filename string
	Data     []byte
}

// CreateRunOptions is the generation config snapshot taken at run creation.
// Nil pointers take the documented defaults.
type CreateRunOptions struct {
	LlmProvider           string
	Model                 string
	MaxCases              int
	RepairAttempts        *int
	EnableCoverageAuditor *bool
}

// AdvanceResult reports the outcome of an advance call.
type AdvanceResult struct {
	Run     *model.Run
	Message string
}

// RunService owns the run lifecycle: creation, advancement through the
// pipeline engine, status reads, artifact access and deletion. It guarantees
// at-most-one active execution per run id and bounds total concurrency with a
// worker pool; executions past the limit queue rather than fail.
type RunService struct {
	runRepo repo.IRunRepository
	engine  *pipeline.Engine
	store   storage.IStorage
	extract extractor.IExtractor

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	slots   chan struct{}

	mu      sync.Mutex
	running map[string]struct{}
}

// NewRunService creates the run service.
func NewRunService(
	cfg pipeline.Config,
	runRepo repo.IRunRepository,
	engine *pipeline.Engine,
	store storage.IStorage,
	extract extractor.IExtractor,
) *RunService {
	cfg.SetDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	return &RunService{
		runRepo: runRepo,
		engine:  engine,
		store:   store,
		extract: extract,
		baseCtx: ctx,
		cancel:  cancel,
		slots:   make(chan struct{}, cfg.Workers),
		running: make(map[string]struct{}),
	}
}

// CreateRun validates the upload and config, extracts document text and
// persists a pending run. Stage execution starts only on Advance.
func (s *RunService) CreateRun(ctx context.Context, files []IngestFile, opts CreateRunOptions) (*model.Run, error) {
	maxCases := opts.MaxCases
	if maxCases == 0 {
		maxCases = defaultMaxCases
	}
	if maxCases < MaxCasesFloor || maxCases > MaxCasesCeiling {
		return nil, errors.Wrapf(ErrInvalidInput, "max_cases must be between %d and %d", MaxCasesFloor, MaxCasesCeiling)
	}
	repairAttempts := defaultRepairAttempts
	if opts.RepairAttempts != nil {
		repairAttempts = *opts.RepairAttempts
	}
	if repairAttempts < 0 || repairAttempts > RepairAttemptsCeiling {
		return nil, errors.Wrapf(ErrInvalidInput, "repair_attempts must be between 0 and %d", RepairAttemptsCeiling)
	}
	enableAuditor := true
	if opts.EnableCoverageAuditor != nil {
		enableAuditor = *opts.EnableCoverageAuditor
	}
	if len(files) == 0 {
		return nil, errors.Wrap(ErrInvalidInput, "no files uploaded")
	}

	var (
		docs      []spec.Document
		totalSize int64
	)
	for _, file := range files {
		text, err := s.extract.Extract(ctx, file.Filename, file.Data)
		if err != nil {
			// Rejected uploads keep their extractor sentinel so the transport
			// can answer with the matching status code.
			if errors.Is(err, extractor.ErrUnsupportedFormat) || errors.Is(err, extractor.ErrFileTooLarge) {
				return nil, err
			}
			return nil, errors.Wrapf(ErrInvalidInput, "read %s: %v", file.Filename, err)
		}
		if text == "" {
			return nil, errors.Wrapf(ErrInvalidInput, "%s contains no text", file.Filename)
		}
		docs = append(docs, spec.Document{Filename: file.Filename, Text: text})
		totalSize += int64(len(file.Data))
	}

	docsJSON, err := spec.EncodeJSON(docs)
	if err != nil {
		return nil, errors.Wrap(err, "encode documents")
	}

	run := &model.Run{
		RunId:                 uuid.NewString(),
		Filename:              files[0].Filename,
		FileSize:              totalSize,
		Status:                model.RunStatusPending,
		LlmProvider:           opts.LlmProvider,
		Model:                 opts.Model,
		MaxCases:              maxCases,
		RepairAttempts:        repairAttempts,
		EnableCoverageAuditor: enableAuditor,
		Documents:             datatypes.JSON(docsJSON),
	}
	if err := s.runRepo.Create(ctx, run); err != nil {
		return nil, errors.Wrap(err, "create run")
	}
	log.Infow("run created", "runId", run.RunId, "files", len(files), "maxCases", maxCases)
	return run, nil
}

// Advance triggers or continues stage execution for a run. A terminal run is
// only re-entered with forceRestart; a run already executing is a no-op.
func (s *RunService) Advance(ctx context.Context, runId string, forceRestart bool) (*AdvanceResult, error) {
	run, err := s.runRepo.Get(ctx, runId)
	if err != nil {
		return nil, err
	}

	if s.isRunning(runId) {
		return &AdvanceResult{Run: run, Message: "generation already in progress"}, nil
	}

	if model.Terminal(run.Status) {
		if !forceRestart {
			if run.Status == model.RunStatusCompleted {
				return &AdvanceResult{Run: run, Message: "run already completed"}, nil
			}
			return &AdvanceResult{Run: run, Message: "run failed; use force_restart to retry"}, nil
		}
		reset, err := s.resetRun(ctx, runId)
		if err != nil {
			return nil, err
		}
		if !reset {
			run, _ = s.runRepo.Get(ctx, runId)
			return &AdvanceResult{Run: run, Message: "generation already in progress"}, nil
		}
		run, err = s.runRepo.Get(ctx, runId)
		if err != nil {
			return nil, err
		}
	}

	if !s.claim(runId) {
		return &AdvanceResult{Run: run, Message: "generation already in progress"}, nil
	}

	s.wg.Add(1)
	safe.Go(func() {
		defer s.wg.Done()
		defer s.release(runId)

		select {
		case s.slots <- struct{}{}:
		case <-s.baseCtx.Done():
			return
		}
		defer func() { <-s.slots }()

		if err := s.engine.Execute(s.baseCtx, runId); err != nil {
			log.Errorw("run execution finished with error", "runId", runId, "err", err)
		}
	})

	return &AdvanceResult{Run: run, Message: "generation started"}, nil
}

// resetRun flips a terminal run back to pending, clearing progress and every
// stage output. The status precondition makes concurrent restarts race-safe.
func (s *RunService) resetRun(ctx context.Context, runId string) (bool, error) {
	return s.runRepo.UpdateWhereStatus(ctx, runId,
		[]string{model.RunStatusCompleted, model.RunStatusFailed},
		map[string]any{
			"status":          model.RunStatusPending,
			"current_stage":   "",
			"progress":        0,
			"error_message":   "",
			"segments":        nil,
			"features":        nil,
			"test_cases":      nil,
			"diagnostics":     nil,
			"test_case_count": 0,
			"completed_at":    nil,
		})
}

// GetStatus returns the last persisted run snapshot. It never blocks on stage
// execution.
func (s *RunService) GetStatus(ctx context.Context, runId string) (*model.Run, error) {
	return s.runRepo.Get(ctx, runId)
}

// History returns recent runs, most recent first.
func (s *RunService) History(ctx context.Context, limit int) ([]*model.Run, error) {
	return s.runRepo.List(ctx, &repo.RunQuery{Limit: limit})
}

// Artifact returns one exported artifact of a completed run.
func (s *RunService) Artifact(ctx context.Context, runId, kind string) ([]byte, error) {
	switch kind {
	case pipeline.ArtifactTestCasesJSON, pipeline.ArtifactTestCasesCSV, pipeline.ArtifactTraceability:
	default:
		return nil, errors.Wrapf(ErrUnknownArtifact, "%s", kind)
	}

	run, err := s.runRepo.Get(ctx, runId)
	if err != nil {
		return nil, err
	}
	if run.Status != model.RunStatusCompleted {
		return nil, errors.Wrapf(ErrArtifactNotReady, "run status is %s", run.Status)
	}
	return s.store.Get(ctx, runId, kind)
}

// Delete removes the run record and its artifacts. A second delete of the
// same id reports not found.
func (s *RunService) Delete(ctx context.Context, runId string) error {
	if err := s.runRepo.Delete(ctx, runId); err != nil {
		return err
	}
	if err := s.store.DeleteRun(ctx, runId); err != nil {
		log.Warnw("purge run artifacts failed", "runId", runId, "err", err)
	}
	return nil
}

// Health reports service capabilities for the health endpoint.
func (s *RunService) Health() map[string]any {
	return map[string]any{
		"status": "healthy",
		"features": map[string]any{
			"coverage_auditor": true,
			"multi_file":       true,
			"formats":          []string{".pdf", ".docx", ".txt"},
			"max_file_size":    extractor.DefaultMaxFileSize,
		},
	}
}

// Stop cancels in-flight executions and waits briefly for workers to exit.
func (s *RunService) Stop() {
	s.cancel()
	done := make(chan struct{})
	safe.Go(func() {
		s.wg.Wait()
		close(done)
	})
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		log.Warnw("timed out waiting for run workers to stop")
	}
}

func (s *RunService) isRunning(runId string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.running[runId]
	return ok
}

// claim marks the run as executing; it fails if another caller holds it.
func (s *RunService) claim(runId string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.running[runId]; ok {
		return false
	}
	s.running[runId] = struct{}{}
	return true
}

func (s *RunService) release(runId string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.running, runId)
}
