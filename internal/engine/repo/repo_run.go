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

package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/arcentrix/caseforge/internal/engine/model"
	"github.com/arcentrix/caseforge/pkg/database"
	"gorm.io/gorm"
)

// ErrRunNotFound is returned when no run record matches the given run id.
var ErrRunNotFound = errors.New("run not found")

// RunQuery defines query parameters for listing runs.
type RunQuery struct {
	Status string
	Limit  int
}

// IRunRepository defines persistence methods for generation runs.
type IRunRepository interface {
	Create(ctx context.Context, run *model.Run) error
	Get(ctx context.Context, runId string) (*model.Run, error)
	Update(ctx context.Context, runId string, updates map[string]any) error
	// UpdateWhereStatus applies updates only when the run's current status is one
	// of fromStatuses; it reports whether a row was changed. This is the
	// compare-and-swap used to claim a run for execution.
	UpdateWhereStatus(ctx context.Context, runId string, fromStatuses []string, updates map[string]any) (bool, error)
	Delete(ctx context.Context, runId string) error
	List(ctx context.Context, query *RunQuery) ([]*model.Run, error)
	// ListTerminalBefore returns completed or failed runs last touched before
	// cutoff, oldest first. Used by the retention sweeper.
	ListTerminalBefore(ctx context.Context, cutoff time.Time, limit int) ([]*model.Run, error)
}

type RunRepo struct {
	database.IDatabase
}

// NewRunRepo creates the run repository and migrates its schema.
func NewRunRepo(db database.IDatabase) (IRunRepository, error) {
	if err := db.Database().AutoMigrate(&model.Run{}); err != nil {
		return nil, err
	}
	return &RunRepo{IDatabase: db}, nil
}

// Create inserts a new run record.
func (r *RunRepo) Create(ctx context.Context, run *model.Run) error {
	return r.Database().WithContext(ctx).Create(run).Error
}

// Get returns the run by runId.
func (r *RunRepo) Get(ctx context.Context, runId string) (*model.Run, error) {
	var one model.Run
	if err := r.Database().WithContext(ctx).
		Where("run_id = ?", runId).
		First(&one).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRunNotFound
		}
		return nil, err
	}
	return &one, nil
}

// Update applies updates to the run by runId.
func (r *RunRepo) Update(ctx context.Context, runId string, updates map[string]any) error {
	tx := r.Database().WithContext(ctx).
		Model(&model.Run{}).
		Where("run_id = ?", runId).
		Updates(updates)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrRunNotFound
	}
	return nil
}

// UpdateWhereStatus applies updates with a status precondition.
func (r *RunRepo) UpdateWhereStatus(ctx context.Context, runId string, fromStatuses []string, updates map[string]any) (bool, error) {
	tx := r.Database().WithContext(ctx).
		Model(&model.Run{}).
		Where("run_id = ? AND status IN ?", runId, fromStatuses).
		Updates(updates)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// Delete removes the run record by runId.
func (r *RunRepo) Delete(ctx context.Context, runId string) error {
	tx := r.Database().WithContext(ctx).
		Where("run_id = ?", runId).
		Delete(&model.Run{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrRunNotFound
	}
	return nil
}

// ListTerminalBefore returns terminal runs last touched before cutoff.
func (r *RunRepo) ListTerminalBefore(ctx context.Context, cutoff time.Time, limit int) ([]*model.Run, error) {
	if limit <= 0 {
		limit = 100
	}
	var list []*model.Run
	err := r.Database().WithContext(ctx).
		Model(&model.Run{}).
		Where("status IN ? AND updated_at < ?", []string{model.RunStatusCompleted, model.RunStatusFailed}, cutoff).
		Order("updated_at ASC").
		Limit(limit).
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

// List returns runs most recent first.
func (r *RunRepo) List(ctx context.Context, query *RunQuery) ([]*model.Run, error) {
	if query == nil {
		query = &RunQuery{}
	}
	if query.Limit <= 0 {
		query.Limit = 50
	}
	if query.Limit > 200 {
		query.Limit = 200
	}

	tx := r.Database().WithContext(ctx).Model(&model.Run{})
	if strings.TrimSpace(query.Status) != "" {
		tx = tx.Where("status = ?", strings.TrimSpace(query.Status))
	}

	var list []*model.Run
	err := tx.Order("created_at DESC").
		Limit(query.Limit).
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}
