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

// Package pipeline drives a generation run through its ordered stages:
// reading, analyzing, generating, validating, auditing, exporting. The engine
// owns every run record mutation; stages return results and never write.
package pipeline

import (
	"context"
	"time"

	"github.com/arcentrix/caseforge/internal/engine/model"
	"github.com/arcentrix/caseforge/internal/engine/repo"
	"github.com/arcentrix/caseforge/internal/pkg/llm"
	"github.com/arcentrix/caseforge/internal/pkg/storage"
	"github.com/arcentrix/caseforge/pkg/log"
	"github.com/google/wire"
	"github.com/pkg/errors"
)

// ProviderSet is the Wire provider set for the pipeline package.
var ProviderSet = wire.NewSet(NewEngine, NewMetrics)

// Config defines pipeline tuning knobs.
type Config struct {
	ChunkSize          int `mapstructure:"chunkSize"`
	ChunkOverlap       int `mapstructure:"chunkOverlap"`
	AnalyzeConcurrency int `mapstructure:"analyzeConcurrency"`
	LLMAttempts        int `mapstructure:"llmAttempts"`
	LLMBackoff         int `mapstructure:"llmBackoff"` // seconds between retries
	AuditPasses        int `mapstructure:"auditPasses"`
	Workers            int `mapstructure:"workers"`
}

func (c *Config) SetDefaults() {
	if c.ChunkSize <= 0 {
		c.ChunkSize = 8000
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		// The fallback must stay below the chunk size or chunking degenerates
		// into single-character steps.
		c.ChunkOverlap = min(200, c.ChunkSize/4)
	}
	if c.AnalyzeConcurrency <= 0 {
		c.AnalyzeConcurrency = 4
	}
	if c.LLMAttempts <= 0 {
		c.LLMAttempts = 3
	}
	if c.LLMBackoff <= 0 {
		c.LLMBackoff = 2
	}
	if c.AuditPasses <= 0 {
		c.AuditPasses = 1
	}
	if c.Workers <= 0 {
		c.Workers = 4
	}
}

func (c *Config) backoff() time.Duration {
	return time.Duration(c.LLMBackoff) * time.Second
}

// Stage is one ordered pipeline step. The engine matches it exhaustively, so
// adding a stage is a compile-time-checked change.
type Stage int

const (
	StageReading Stage = iota
	StageAnalyzing
	StageGenerating
	StageValidating
	StageAuditing
	StageExporting
)

// Status returns the run status label recorded while the stage executes.
func (s Stage) Status() string {
	switch s {
	case StageReading:
		return model.RunStatusReading
	case StageAnalyzing:
		return model.RunStatusAnalyzing
	case StageGenerating:
		return model.RunStatusGenerating
	case StageValidating:
		return model.RunStatusValidating
	case StageAuditing:
		return model.RunStatusAuditing
	case StageExporting:
		return model.RunStatusExporting
	}
	return ""
}

// Engine is the pipeline orchestrator state machine.
type Engine struct {
	cfg     Config
	runRepo repo.IRunRepository
	store   storage.IStorage
	llm     llm.IFactory
	metrics *Metrics
}

// NewEngine creates the orchestrator.
func NewEngine(cfg Config, runRepo repo.IRunRepository, store storage.IStorage, factory llm.IFactory, metrics *Metrics) *Engine {
	cfg.SetDefaults()
	return &Engine{
		cfg:     cfg,
		runRepo: runRepo,
		store:   store,
		llm:     factory,
		metrics: metrics,
	}
}

// stagesFor returns the enabled stage sequence for a run.
func (e *Engine) stagesFor(run *model.Run) []Stage {
	stages := []Stage{StageReading, StageAnalyzing, StageGenerating, StageValidating}
	if run.EnableCoverageAuditor {
		stages = append(stages, StageAuditing)
	}
	return append(stages, StageExporting)
}

// Execute drives the run from its current state to a terminal one. The caller
// guarantees at-most-one concurrent execution per run id; resumption restarts
// the persisted current stage from its last persisted inputs.
func (e *Engine) Execute(ctx context.Context, runId string) error {
	run, err := e.runRepo.Get(ctx, runId)
	if err != nil {
		return err
	}
	if model.Terminal(run.Status) {
		return nil
	}

	exec, err := newExecution(run)
	if err != nil {
		return e.fail(ctx, run, errors.Wrap(err, "load persisted stage outputs"))
	}
	exec.client, err = e.llm.Client(run.Model)
	if err != nil {
		return e.fail(ctx, run, err)
	}

	stages := e.stagesFor(run)
	start := 0
	for i, st := range stages {
		if st.Status() == run.Status {
			start = i
			break
		}
	}

	total := len(stages)
	for i := start; i < total; i++ {
		st := stages[i]
		if err := e.enterStage(ctx, run, st); err != nil {
			return err
		}

		began := time.Now()
		err := e.runStage(ctx, exec, st)
		e.metrics.ObserveStage(st.Status(), time.Since(began), err == nil)
		if err != nil {
			return e.fail(ctx, run, err)
		}

		progress := 100 * (i + 1) / total
		if err := e.persistStageOutput(ctx, exec, st, progress); err != nil {
			return err
		}
		run.Progress = progress
	}

	return e.complete(ctx, run, exec)
}

// enterStage records the stage about to execute.
func (e *Engine) enterStage(ctx context.Context, run *model.Run, st Stage) error {
	status := st.Status()
	if err := e.runRepo.Update(ctx, run.RunId, map[string]any{
		"status":        status,
		"current_stage": status,
	}); err != nil {
		return errors.Wrapf(err, "enter stage %s", status)
	}
	run.Status = status
	run.CurrentStage = status
	log.Infow("stage started", "runId", run.RunId, "stage", status)
	return nil
}

// runStage dispatches one stage to its handler.
func (e *Engine) runStage(ctx context.Context, exec *execution, st Stage) error {
	switch st {
	case StageReading:
		return e.runReading(exec)
	case StageAnalyzing:
		return e.runAnalyzing(ctx, exec)
	case StageGenerating:
		return e.runGenerating(ctx, exec)
	case StageValidating:
		return e.runValidating(ctx, exec)
	case StageAuditing:
		return e.runAuditing(ctx, exec)
	case StageExporting:
		return e.runExporting(ctx, exec)
	}
	return errors.Errorf("unknown stage %d", st)
}

// persistStageOutput writes the stage's results and the new progress to the
// run record, so a crash never loses a completed stage.
func (e *Engine) persistStageOutput(ctx context.Context, exec *execution, st Stage, progress int) error {
	updates := map[string]any{"progress": progress}
	switch st {
	case StageReading:
		data, err := exec.marshalSegments()
		if err != nil {
			return err
		}
		updates["segments"] = data
	case StageAnalyzing:
		data, err := exec.marshalFeatures()
		if err != nil {
			return err
		}
		updates["features"] = data
	case StageGenerating, StageValidating, StageAuditing:
		data, err := exec.marshalCases()
		if err != nil {
			return err
		}
		diag, err := exec.marshalDiagnostics()
		if err != nil {
			return err
		}
		updates["test_cases"] = data
		updates["diagnostics"] = diag
		updates["test_case_count"] = len(exec.cases)
	case StageExporting:
		diag, err := exec.marshalDiagnostics()
		if err != nil {
			return err
		}
		updates["diagnostics"] = diag
	}
	if err := e.runRepo.Update(ctx, exec.run.RunId, updates); err != nil {
		return errors.Wrapf(err, "persist %s output", st.Status())
	}
	return nil
}

// complete marks the run finished. Artifacts are already in the store, so a
// completed status always implies downloadable artifacts.
func (e *Engine) complete(ctx context.Context, run *model.Run, exec *execution) error {
	now := time.Now()
	if err := e.runRepo.Update(ctx, run.RunId, map[string]any{
		"status":        model.RunStatusCompleted,
		"current_stage": "",
		"progress":      100,
		"completed_at":  now,
	}); err != nil {
		return errors.Wrap(err, "mark run completed")
	}
	e.metrics.ObserveRun(model.RunStatusCompleted)
	log.Infow("run completed", "runId", run.RunId, "testCases", len(exec.cases))
	return nil
}

// fail records the stage-fatal error. Only the engine sets status failed.
func (e *Engine) fail(ctx context.Context, run *model.Run, cause error) error {
	if err := e.runRepo.Update(ctx, run.RunId, map[string]any{
		"status":        model.RunStatusFailed,
		"current_stage": "",
		"error_message": cause.Error(),
	}); err != nil {
		log.Errorw("record run failure", "runId", run.RunId, "err", err)
	}
	e.metrics.ObserveRun(model.RunStatusFailed)
	log.Errorw("run failed", "runId", run.RunId, "err", cause)
	return cause
}
