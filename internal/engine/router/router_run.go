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

package router

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/arcentrix/caseforge/internal/engine/model"
	"github.com/arcentrix/caseforge/internal/engine/repo"
	"github.com/arcentrix/caseforge/internal/engine/service"
	"github.com/arcentrix/caseforge/internal/pkg/extractor"
	"github.com/arcentrix/caseforge/internal/pkg/pipeline"
	"github.com/arcentrix/caseforge/internal/pkg/storage"
	"github.com/arcentrix/caseforge/pkg/http"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
)

func (rt *Router) runRouter(r fiber.Router) {
	r.Post("/ingest", rt.ingest)
	r.Post("/generate/:runId", rt.generate)
	r.Get("/status/:runId", rt.status)
	r.Get("/artifacts/:runId/:artifact", rt.artifact)
	r.Get("/history", rt.history)
	r.Delete("/runs/:runId", rt.deleteRun)
	r.Get("/health", rt.health)
}

// runStatusResp is the run snapshot DTO shared by status and history.
type runStatusResp struct {
	RunId              string     `json:"run_id"`
	Status             string     `json:"status"`
	CurrentNode        string     `json:"current_node,omitempty"`
	ProgressPercentage int        `json:"progress_percentage"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
	TestCaseCount      int        `json:"test_case_count"`
	ErrorMessage       string     `json:"error_message,omitempty"`
	Filename           string     `json:"filename,omitempty"`
}

func toStatusResp(run *model.Run) *runStatusResp {
	return &runStatusResp{
		RunId:              run.RunId,
		Status:             run.Status,
		CurrentNode:        run.CurrentStage,
		ProgressPercentage: run.Progress,
		CreatedAt:          run.CreatedAt,
		UpdatedAt:          run.UpdatedAt,
		CompletedAt:        run.CompletedAt,
		TestCaseCount:      run.TestCaseCount,
		ErrorMessage:       run.ErrorMessage,
		Filename:           run.Filename,
	}
}

// replyServiceError maps service sentinels to response codes.
func replyServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, repo.ErrRunNotFound):
		return http.WithRepErrMsg(c, http.NotFound.Code, "run not found", c.Path())
	case errors.Is(err, service.ErrInvalidInput):
		return http.WithRepErrMsg(c, http.BadRequest.Code, err.Error(), c.Path())
	case errors.Is(err, extractor.ErrFileTooLarge):
		return http.WithRepErrMsg(c, http.PayloadTooLarge.Code, err.Error(), c.Path())
	case errors.Is(err, extractor.ErrUnsupportedFormat):
		return http.WithRepErrMsg(c, http.UnsupportedMedia.Code, err.Error(), c.Path())
	case errors.Is(err, service.ErrArtifactNotReady):
		return http.WithRepErrMsg(c, http.ArtifactNotReady.Code, err.Error(), c.Path())
	case errors.Is(err, service.ErrUnknownArtifact), errors.Is(err, storage.ErrArtifactNotFound):
		return http.WithRepErrMsg(c, http.NotFound.Code, err.Error(), c.Path())
	default:
		return http.WithRepErrMsg(c, http.Failed.Code, err.Error(), c.Path())
	}
}

// ingest accepts multipart requirement documents plus generation options and
// creates a pending run.
func (rt *Router) ingest(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return http.WithRepErrMsg(c, http.RequestParameterParsingFailed.Code, http.RequestParameterParsingFailed.Msg, c.Path())
	}

	headers := form.File["files"]
	if len(headers) == 0 {
		return http.WithRepErrMsg(c, http.BadRequest.Code, "no files uploaded", c.Path())
	}
	var files []service.IngestFile
	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			return http.WithRepErrMsg(c, http.BadRequest.Code, "read upload "+header.Filename, c.Path())
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			return http.WithRepErrMsg(c, http.BadRequest.Code, "read upload "+header.Filename, c.Path())
		}
		files = append(files, service.IngestFile{Filename: header.Filename, Data: data})
	}

	opts := service.CreateRunOptions{
		LlmProvider: formValue(form.Value, "llm_provider"),
		Model:       formValue(form.Value, "model"),
	}
	if v := formValue(form.Value, "max_cases"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return http.WithRepErrMsg(c, http.BadRequest.Code, "max_cases must be an integer", c.Path())
		}
		opts.MaxCases = n
	}
	if v := formValue(form.Value, "repair_attempts"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return http.WithRepErrMsg(c, http.BadRequest.Code, "repair_attempts must be an integer", c.Path())
		}
		opts.RepairAttempts = &n
	}
	if v := formValue(form.Value, "enable_coverage_auditor"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return http.WithRepErrMsg(c, http.BadRequest.Code, "enable_coverage_auditor must be a boolean", c.Path())
		}
		opts.EnableCoverageAuditor = &b
	}

	run, err := rt.runSvc.CreateRun(c.Context(), files, opts)
	if err != nil {
		return replyServiceError(c, err)
	}
	return http.WithRepJSON(c, fiber.Map{
		"run_id":  run.RunId,
		"message": "run created; trigger generation to start",
	})
}

// generate triggers or continues pipeline execution.
func (rt *Router) generate(c *fiber.Ctx) error {
	runId := strings.TrimSpace(c.Params("runId"))
	if runId == "" {
		return http.WithRepErrMsg(c, http.BadRequest.Code, "run id is required", c.Path())
	}

	var req struct {
		ForceRestart bool `json:"force_restart"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return http.WithRepErrMsg(c, http.RequestParameterParsingFailed.Code, http.RequestParameterParsingFailed.Msg, c.Path())
		}
	}

	result, err := rt.runSvc.Advance(c.Context(), runId, req.ForceRestart)
	if err != nil {
		return replyServiceError(c, err)
	}
	return http.WithRepJSON(c, fiber.Map{
		"run_id":  result.Run.RunId,
		"status":  result.Run.Status,
		"message": result.Message,
	})
}

// status returns the last persisted run snapshot.
func (rt *Router) status(c *fiber.Ctx) error {
	runId := strings.TrimSpace(c.Params("runId"))
	run, err := rt.runSvc.GetStatus(c.Context(), runId)
	if err != nil {
		return replyServiceError(c, err)
	}
	return http.WithRepJSON(c, toStatusResp(run))
}

// artifact streams one exported artifact of a completed run.
func (rt *Router) artifact(c *fiber.Ctx) error {
	runId := strings.TrimSpace(c.Params("runId"))
	kind := strings.TrimSpace(c.Params("artifact"))

	data, err := rt.runSvc.Artifact(c.Context(), runId, kind)
	if err != nil {
		return replyServiceError(c, err)
	}

	contentType := fiber.MIMEApplicationJSON
	if kind == pipeline.ArtifactTestCasesCSV {
		contentType = "text/csv"
	}
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+kind+`"`)
	return c.Send(data)
}

// history lists recent runs, most recent first.
func (rt *Router) history(c *fiber.Ctx) error {
	limit := rt.conf.Http.QueryInt(c, "limit")
	runs, err := rt.runSvc.History(c.Context(), limit)
	if err != nil {
		return replyServiceError(c, err)
	}
	resp := make([]*runStatusResp, 0, len(runs))
	for _, run := range runs {
		resp = append(resp, toStatusResp(run))
	}
	return http.WithRepJSON(c, resp)
}

// deleteRun removes a run and its artifacts.
func (rt *Router) deleteRun(c *fiber.Ctx) error {
	runId := strings.TrimSpace(c.Params("runId"))
	if err := rt.runSvc.Delete(c.Context(), runId); err != nil {
		return replyServiceError(c, err)
	}
	return http.WithRepJSON(c, fiber.Map{
		"run_id":  runId,
		"message": "run deleted",
	})
}

// health reports liveness and service capabilities.
func (rt *Router) health(c *fiber.Ctx) error {
	return http.WithRepJSON(c, rt.runSvc.Health())
}

func formValue(values map[string][]string, key string) string {
	if v, ok := values[key]; ok && len(v) > 0 {
		return strings.TrimSpace(v[0])
	}
	return ""
}
