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

package model

import (
	"time"

	"gorm.io/datatypes"
)

// Run 测试用例生成任务执行记录表
//
// The run record is the single source of truth for status and progress. Stage
// outputs are persisted as JSON columns after every stage so an interrupted run
// can resume by restarting its current stage from the last persisted inputs.
type Run struct {
	BaseModel
	RunId                 string         `gorm:"column:run_id;uniqueIndex" json:"run_id"`
	Filename              string         `gorm:"column:filename" json:"filename"`
	FileSize              int64          `gorm:"column:file_size" json:"file_size"`
	Status                string         `gorm:"column:status;index" json:"status"`
	CurrentStage          string         `gorm:"column:current_stage" json:"current_stage"`
	Progress              int            `gorm:"column:progress" json:"progress"`
	LlmProvider           string         `gorm:"column:llm_provider" json:"llm_provider"`
	Model                 string         `gorm:"column:model" json:"model"`
	MaxCases              int            `gorm:"column:max_cases" json:"max_cases"`
	RepairAttempts        int            `gorm:"column:repair_attempts" json:"repair_attempts"`
	EnableCoverageAuditor bool           `gorm:"column:enable_coverage_auditor" json:"enable_coverage_auditor"`
	Documents             datatypes.JSON `gorm:"column:documents" json:"-"`
	Segments              datatypes.JSON `gorm:"column:segments" json:"-"`
	Features              datatypes.JSON `gorm:"column:features" json:"-"`
	TestCases             datatypes.JSON `gorm:"column:test_cases" json:"-"`
	Diagnostics           datatypes.JSON `gorm:"column:diagnostics" json:"-"`
	TestCaseCount         int            `gorm:"column:test_case_count" json:"test_case_count"`
	ErrorMessage          string         `gorm:"column:error_message" json:"error_message,omitempty"`
	CompletedAt           *time.Time     `gorm:"column:completed_at" json:"completed_at,omitempty"`
}

func (Run) TableName() string {
	return "t_run"
}

// Run statuses. pending is re-entered only through force restart; completed and
// failed are terminal.
const (
	RunStatusPending    = "pending"
	RunStatusReading    = "reading"
	RunStatusAnalyzing  = "analyzing"
	RunStatusGenerating = "generating"
	RunStatusValidating = "validating"
	RunStatusAuditing   = "auditing"
	RunStatusExporting  = "exporting"
	RunStatusCompleted  = "completed"
	RunStatusFailed     = "failed"
)

// Terminal reports whether the status admits no further transitions.
func Terminal(status string) bool {
	return status == RunStatusCompleted || status == RunStatusFailed
}

// Active reports whether a stage execution currently owns the run.
func Active(status string) bool {
	switch status {
	case RunStatusReading, RunStatusAnalyzing, RunStatusGenerating,
		RunStatusValidating, RunStatusAuditing, RunStatusExporting:
		return true
	}
	return false
}
