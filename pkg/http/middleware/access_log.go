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
	"time"

	"github.com/arcentrix/caseforge/pkg/log"
	"github.com/gofiber/fiber/v2"
)

// slowRequestThreshold marks successful requests still worth logging. Status
// polling is expected to finish well under it.
const slowRequestThreshold = 300 * time.Millisecond

// AccessLogMiddleware logs failed and slow requests. Healthy fast traffic and
// liveness probes stay quiet; server faults log at error level.
func AccessLogMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		latency := time.Since(start)
		status := c.Response().StatusCode()
		path := c.Path()

		if status < 400 && path == "/api/health" {
			return err
		}

		switch {
		case status >= fiber.StatusInternalServerError:
			log.Errorw("http access", "ip", c.IP(), "method", c.Method(), "path", path, "status", status, "latency", latency, "error", err)
		case status >= fiber.StatusBadRequest || latency >= slowRequestThreshold:
			log.Warnw("http access", "ip", c.IP(), "method", c.Method(), "path", path, "status", status, "latency", latency, "error", err)
		}

		return err
	}
}
