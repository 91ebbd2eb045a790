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
	"path/filepath"
	"testing"
	"time"

	"github.com/arcentrix/caseforge/internal/engine/model"
	"github.com/arcentrix/caseforge/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func newTestRepo(t *testing.T) (IRunRepository, database.Manager) {
	t.Helper()
	mgr, err := database.NewManager(database.Database{
		Driver: "sqlite",
		SQLite: database.SQLiteConfig{Path: filepath.Join(t.TempDir(), "test.db")},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = mgr.Close() })

	r, err := NewRunRepo(database.NewDatabaseAdapter(mgr))
	require.NoError(t, err)
	return r, mgr
}

func TestRunRepo_CreateGet(t *testing.T) {
	r, _ := newTestRepo(t)
	ctx := context.Background()

	run := &model.Run{
		RunId:                 "run-1",
		Filename:              "requirements.txt",
		FileSize:              128,
		Status:                model.RunStatusPending,
		MaxCases:              50,
		RepairAttempts:        1,
		EnableCoverageAuditor: true,
		Documents:             datatypes.JSON(`[{"filename":"requirements.txt","text":"REQ-1"}]`),
	}
	require.NoError(t, r.Create(ctx, run))

	got, err := r.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", got.RunId)
	assert.Equal(t, model.RunStatusPending, got.Status)
	assert.Equal(t, 50, got.MaxCases)
	assert.True(t, got.EnableCoverageAuditor)
	assert.JSONEq(t, `[{"filename":"requirements.txt","text":"REQ-1"}]`, string(got.Documents))
}

func TestRunRepo_GetMissing(t *testing.T) {
	r, _ := newTestRepo(t)
	_, err := r.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestRunRepo_Update(t *testing.T) {
	r, _ := newTestRepo(t)
	ctx := context.Background()
	require.NoError(t, r.Create(ctx, &model.Run{RunId: "run-1", Status: model.RunStatusPending}))

	now := time.Now()
	require.NoError(t, r.Update(ctx, "run-1", map[string]any{
		"status":          model.RunStatusCompleted,
		"progress":        100,
		"test_case_count": 7,
		"completed_at":    now,
	}))

	got, err := r.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusCompleted, got.Status)
	assert.Equal(t, 100, got.Progress)
	assert.Equal(t, 7, got.TestCaseCount)
	require.NotNil(t, got.CompletedAt)

	assert.ErrorIs(t, r.Update(ctx, "missing", map[string]any{"progress": 1}), ErrRunNotFound)
}

func TestRunRepo_UpdateWhereStatus(t *testing.T) {
	r, _ := newTestRepo(t)
	ctx := context.Background()
	require.NoError(t, r.Create(ctx, &model.Run{RunId: "run-1", Status: model.RunStatusFailed}))

	// Status matches the precondition: the swap applies.
	changed, err := r.UpdateWhereStatus(ctx, "run-1",
		[]string{model.RunStatusCompleted, model.RunStatusFailed},
		map[string]any{"status": model.RunStatusPending, "error_message": ""})
	require.NoError(t, err)
	assert.True(t, changed)

	got, err := r.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusPending, got.Status)

	// Second caller loses the race: the run is no longer terminal.
	changed, err = r.UpdateWhereStatus(ctx, "run-1",
		[]string{model.RunStatusCompleted, model.RunStatusFailed},
		map[string]any{"status": model.RunStatusPending})
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestRunRepo_Delete(t *testing.T) {
	r, _ := newTestRepo(t)
	ctx := context.Background()
	require.NoError(t, r.Create(ctx, &model.Run{RunId: "run-1", Status: model.RunStatusCompleted}))

	require.NoError(t, r.Delete(ctx, "run-1"))
	_, err := r.Get(ctx, "run-1")
	assert.ErrorIs(t, err, ErrRunNotFound)
	assert.ErrorIs(t, r.Delete(ctx, "run-1"), ErrRunNotFound)
}

func TestRunRepo_List(t *testing.T) {
	r, _ := newTestRepo(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i, status := range []string{model.RunStatusCompleted, model.RunStatusFailed, model.RunStatusPending} {
		run := &model.Run{RunId: "run-" + string(rune('a'+i)), Status: status}
		run.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, r.Create(ctx, run))
	}

	list, err := r.List(ctx, &RunQuery{Limit: 3})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "run-c", list[0].RunId, "most recent first")
	assert.Equal(t, "run-a", list[2].RunId)

	limited, err := r.List(ctx, &RunQuery{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	failed, err := r.List(ctx, &RunQuery{Status: model.RunStatusFailed})
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, "run-b", failed[0].RunId)
}

func TestRunRepo_ListTerminalBefore(t *testing.T) {
	r, mgr := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, &model.Run{RunId: "old-done", Status: model.RunStatusCompleted}))
	require.NoError(t, r.Create(ctx, &model.Run{RunId: "old-active", Status: model.RunStatusGenerating}))
	require.NoError(t, r.Create(ctx, &model.Run{RunId: "fresh-done", Status: model.RunStatusCompleted}))

	stale := time.Now().AddDate(0, 0, -40)
	for _, runId := range []string{"old-done", "old-active"} {
		require.NoError(t, mgr.DB().Model(&model.Run{}).
			Where("run_id = ?", runId).
			UpdateColumn("updated_at", stale).Error)
	}

	cutoff := time.Now().AddDate(0, 0, -30)
	expired, err := r.ListTerminalBefore(ctx, cutoff, 100)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, "old-done", expired[0].RunId)
}
