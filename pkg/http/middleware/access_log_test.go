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

package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestAccessLogMiddlewarePassesThrough(t *testing.T) {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(AccessLogMiddleware())
	app.Get("/api/health", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/bad", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusBadRequest) })
	app.Get("/boom", func(c *fiber.Ctx) error { return fiber.ErrInternalServerError })

	tests := []struct {
		path   string
		status int
	}{
		{"/api/health", fiber.StatusOK},
		{"/bad", fiber.StatusBadRequest},
		{"/boom", fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, tt.path, nil), -1)
		if err != nil {
			t.Fatalf("request %s: %v", tt.path, err)
		}
		if resp.StatusCode != tt.status {
			t.Errorf("%s status = %d, want %d", tt.path, resp.StatusCode, tt.status)
		}
		_ = resp.Body.Close()
	}
}
