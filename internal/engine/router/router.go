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
	"time"

	"github.com/arcentrix/caseforge/internal/engine/config"
	"github.com/arcentrix/caseforge/internal/engine/service"
	"github.com/arcentrix/caseforge/pkg/http/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/google/wire"
)

// ProviderSet is the Wire provider set for the router.
var ProviderSet = wire.NewSet(NewRouter)

// Router wires HTTP routes to the run service.
type Router struct {
	conf   *config.AppConfig
	runSvc *service.RunService
}

// NewRouter creates the router.
func NewRouter(conf *config.AppConfig, runSvc *service.RunService) *Router {
	return &Router{
		conf:   conf,
		runSvc: runSvc,
	}
}

// Router builds the fiber application with middleware and all routes mounted.
func (rt *Router) Router() *fiber.App {
	httpConf := rt.conf.Http
	app := fiber.New(fiber.Config{
		BodyLimit:             httpConf.BodyLimit,
		ReadTimeout:           time.Duration(httpConf.ReadTimeout) * time.Second,
		WriteTimeout:          time.Duration(httpConf.WriteTimeout) * time.Second,
		IdleTimeout:           time.Duration(httpConf.IdleTimeout) * time.Second,
		DisableStartupMessage: true,
	})

	app.Use(middleware.CorsMiddleware())
	app.Use(middleware.HttpMetricsMiddleware())
	if httpConf.AccessLog {
		app.Use(middleware.AccessLogMiddleware())
	}

	api := app.Group("/api")
	rt.runRouter(api)
	return app
}
