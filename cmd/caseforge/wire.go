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

//go:build wireinject
// +build wireinject

package main

import (
	"github.com/arcentrix/caseforge/internal/engine/bootstrap"
	"github.com/arcentrix/caseforge/internal/engine/config"
	"github.com/arcentrix/caseforge/internal/engine/repo"
	"github.com/arcentrix/caseforge/internal/engine/router"
	"github.com/arcentrix/caseforge/internal/engine/service"
	"github.com/arcentrix/caseforge/internal/pkg/extractor"
	"github.com/arcentrix/caseforge/internal/pkg/llm"
	"github.com/arcentrix/caseforge/internal/pkg/pipeline"
	"github.com/arcentrix/caseforge/internal/pkg/storage"
	"github.com/arcentrix/caseforge/pkg/database"
	"github.com/arcentrix/caseforge/pkg/log"
	"github.com/arcentrix/caseforge/pkg/metrics"
	"github.com/arcentrix/caseforge/pkg/shutdown"
	"github.com/google/wire"
)

func initApp(configPath string) (*bootstrap.App, func(), error) {
	panic(wire.Build(
		// 配置层
		config.ProviderSet,
		// 日志层（依赖 config）
		log.ProviderSet,
		// 数据库层（依赖 config, log）
		database.ProviderSet,
		// 指标层（依赖 config）
		metrics.ProviderSet,
		// 仓储层（依赖 database）
		repo.ProviderSet,
		// 存储层（依赖 config）
		storage.ProviderSet,
		// 文档抽取层（依赖 config）
		extractor.ProviderSet,
		// LLM 客户端层（依赖 config）
		llm.ProviderSet,
		// 流水线引擎层（依赖 repo, storage, llm, metrics）
		pipeline.ProviderSet,
		// 服务层（依赖 repo, pipeline, storage, extractor）
		service.ProviderSet,
		// 路由层（依赖 config, service）
		router.ProviderSet,
		// 关停协调
		shutdown.ProviderSet,
		// 应用层
		bootstrap.NewApp,
	))
}
