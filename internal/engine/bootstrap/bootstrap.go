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

package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arcentrix/caseforge/internal/engine/config"
	"github.com/arcentrix/caseforge/internal/engine/router"
	"github.com/arcentrix/caseforge/internal/engine/service"
	"github.com/arcentrix/caseforge/pkg/database"
	"github.com/arcentrix/caseforge/pkg/log"
	"github.com/arcentrix/caseforge/pkg/metrics"
	"github.com/arcentrix/caseforge/pkg/safe"
	"github.com/arcentrix/caseforge/pkg/shutdown"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type App struct {
	HttpApp       *fiber.App
	MetricsServer *metrics.Server
	Logger        *log.Logger
	AppConf       *config.AppConfig
	RunSvc        *service.RunService
	Sweeper       *service.RetentionSweeper
	ShutdownMgr   *shutdown.Manager
}

// InitAppFunc init app function type
type InitAppFunc func(configPath string) (*App, func(), error)

func NewApp(
	rt *router.Router,
	logger *log.Logger,
	metricsServer *metrics.Server,
	appConf *config.AppConfig,
	db database.Manager,
	runSvc *service.RunService,
	sweeper *service.RetentionSweeper,
	shutdownMgr *shutdown.Manager,
) (*App, func(), error) {
	app := &App{
		HttpApp:       rt.Router(),
		MetricsServer: metricsServer,
		Logger:        logger,
		AppConf:       appConf,
		RunSvc:        runSvc,
		Sweeper:       sweeper,
		ShutdownMgr:   shutdownMgr,
	}

	cleanup := func() {
		// stop metrics server
		if metricsServer != nil {
			log.Info("Shutting down metrics server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := metricsServer.Stop(shutdownCtx); err != nil {
				log.Errorw("Failed to stop metrics server", zap.Error(err))
			}
		}

		// stop retention sweeper
		if sweeper != nil {
			sweeper.Stop()
		}

		// stop in-flight run executions
		if runSvc != nil {
			log.Info("Shutting down run workers...")
			runSvc.Stop()
		}

		// close database connections
		if err := db.Close(); err != nil {
			log.Errorw("Failed to close database", zap.Error(err))
		}

		_ = log.Sync()
	}

	return app, cleanup, nil
}

// Bootstrap init app, return App instance and cleanup function
func Bootstrap(configFile string, initApp InitAppFunc) (*App, func(), *config.AppConfig, error) {
	// Wire build App (所有依赖都由 wire 自动注入)
	app, cleanup, err := initApp(configFile)
	if err != nil {
		return nil, nil, nil, err
	}
	return app, cleanup, app.AppConf, nil
}

// Run start app and wait for exit signal, then gracefully shutdown
func Run(app *App, cleanup func()) {
	appConf := app.AppConf

	// start metrics server
	if app.MetricsServer != nil {
		if err := app.MetricsServer.Start(); err != nil {
			log.Errorw("Metrics server failed", zap.Error(err))
		}
	}

	// start retention sweeper
	if app.Sweeper != nil {
		if err := app.Sweeper.Start(); err != nil {
			log.Errorw("Retention sweeper failed", zap.Error(err))
		}
	}

	// set signal listener (graceful shutdown)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// start HTTP server (async)
	safe.Go(func() {
		addr := appConf.Http.Host + ":" + fmt.Sprintf("%d", appConf.Http.Port)
		log.Infow("HTTP listener started",
			"address", addr,
		)
		if err := app.HttpApp.Listen(addr); err != nil {
			log.Errorw("HTTP listener failed",
				"address", addr,
				zap.Error(err),
			)
		}
	})

	// wait for exit signal
	select {
	case sig := <-quit:
		log.Infow("Received OS signal, shutting down gracefully...", "signal", sig)
		if app.ShutdownMgr != nil {
			app.ShutdownMgr.Shutdown()
		}
	case <-app.ShutdownMgr.Wait():
		log.Info("Received shutdown request, shutting down gracefully...")
	}

	// close HTTP server first so no new runs arrive while workers drain
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := app.HttpApp.ShutdownWithContext(shutdownCtx); err != nil {
		log.Errorw("HTTP server shutdown error", zap.Error(err))
	} else {
		log.Info("HTTP server shut down gracefully")
	}

	cleanup()

	log.Info("Server shutdown complete")
}
