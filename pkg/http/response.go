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

package http

import (
	"github.com/gofiber/fiber/v2"
)

// Errno pairs a business code with a default message.
type Errno struct {
	Code int
	Msg  string
}

var (
	OK                            = Errno{Code: 0, Msg: "ok"}
	Failed                        = Errno{Code: 10001, Msg: "internal error"}
	BadRequest                    = Errno{Code: 10400, Msg: "bad request"}
	RequestParameterParsingFailed = Errno{Code: 10401, Msg: "failed to parse request parameters"}
	NotFound                      = Errno{Code: 10404, Msg: "resource not found"}
	ArtifactNotReady              = Errno{Code: 10412, Msg: "artifact not ready"}
	PayloadTooLarge               = Errno{Code: 10413, Msg: "payload too large"}
	UnsupportedMedia              = Errno{Code: 10415, Msg: "unsupported file type"}
)

// ErrResponse is the uniform error body.
type ErrResponse struct {
	Code  int    `json:"code"`
	Error string `json:"error"`
	Path  string `json:"path,omitempty"`
}

func statusOf(code int) int {
	switch code {
	case BadRequest.Code, RequestParameterParsingFailed.Code, ArtifactNotReady.Code:
		return fiber.StatusBadRequest
	case NotFound.Code:
		return fiber.StatusNotFound
	case PayloadTooLarge.Code:
		return fiber.StatusRequestEntityTooLarge
	case UnsupportedMedia.Code:
		return fiber.StatusUnsupportedMediaType
	default:
		return fiber.StatusInternalServerError
	}
}

// WithRepErrMsg writes an error response with the given business code and message.
func WithRepErrMsg(c *fiber.Ctx, code int, msg string, path string) error {
	return c.Status(statusOf(code)).JSON(ErrResponse{Code: code, Error: msg, Path: path})
}

// WithRepJSON writes a success payload as-is.
func WithRepJSON(c *fiber.Ctx, payload any) error {
	return c.JSON(payload)
}
