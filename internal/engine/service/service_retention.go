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
	"time"

	"github.com/arcentrix/caseforge/internal/engine/repo"
	"github.com/arcentrix/caseforge/internal/pkg/storage"
	"github.com/arcentrix/caseforge/pkg/log"
	"github.com/robfig/cron"
)

// RetentionConfig defines the periodic purge of expired terminal runs.
type RetentionConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Schedule  string `mapstructure:"schedule"`
	MaxAgeDay int    `mapstructure:"maxAgeDay"`
}

func (c *RetentionConfig) SetDefaults() {
	if c.Schedule == "" {
		c.Schedule = "@every 1h"
	}
	if c.MaxAgeDay <= 0 {
		c.MaxAgeDay = 30
	}
}

// RetentionSweeper deletes terminal runs older than the retention window,
// together with their artifacts.
type RetentionSweeper struct {
	cfg     RetentionConfig
	runRepo repo.IRunRepository
	store   storage.IStorage
	cron    *cron.Cron
}

// NewRetentionSweeper creates the sweeper.
func NewRetentionSweeper(cfg RetentionConfig, runRepo repo.IRunRepository, store storage.IStorage) *RetentionSweeper {
	cfg.SetDefaults()
	return &RetentionSweeper{
		cfg:     cfg,
		runRepo: runRepo,
		store:   store,
		cron:    cron.New(),
	}
}

// Start schedules the periodic sweep. No-op when retention is disabled.
func (s *RetentionSweeper) Start() error {
	if !s.cfg.Enabled {
		return nil
	}
	if err := s.cron.AddFunc(s.cfg.Schedule, s.Sweep); err != nil {
		return err
	}
	s.cron.Start()
	log.Infow("retention sweeper started", "schedule", s.cfg.Schedule, "maxAgeDay", s.cfg.MaxAgeDay)
	return nil
}

// Stop halts the schedule; an in-flight sweep finishes on its own.
func (s *RetentionSweeper) Stop() {
	s.cron.Stop()
}

// Sweep deletes one batch of expired runs.
func (s *RetentionSweeper) Sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cutoff := time.Now().AddDate(0, 0, -s.cfg.MaxAgeDay)
	expired, err := s.runRepo.ListTerminalBefore(ctx, cutoff, 100)
	if err != nil {
		log.Errorw("list expired runs failed", "err", err)
		return
	}
	for _, run := range expired {
		if err := s.runRepo.Delete(ctx, run.RunId); err != nil {
			log.Errorw("delete expired run failed", "runId", run.RunId, "err", err)
			continue
		}
		if err := s.store.DeleteRun(ctx, run.RunId); err != nil {
			log.Warnw("purge expired run artifacts failed", "runId", run.RunId, "err", err)
		}
	}
	if len(expired) > 0 {
		log.Infow("retention sweep done", "purged", len(expired), "cutoff", cutoff)
	}
}
