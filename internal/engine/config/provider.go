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

package config

import (
	"github.com/arcentrix/caseforge/internal/engine/service"
	"github.com/arcentrix/caseforge/internal/pkg/extractor"
	"github.com/arcentrix/caseforge/internal/pkg/llm"
	"github.com/arcentrix/caseforge/internal/pkg/pipeline"
	"github.com/arcentrix/caseforge/internal/pkg/storage"
	"github.com/arcentrix/caseforge/pkg/database"
	"github.com/arcentrix/caseforge/pkg/log"
	"github.com/arcentrix/caseforge/pkg/metrics"
	"github.com/google/wire"
)

// ProviderSet 提供配置层相关的依赖
var ProviderSet = wire.NewSet(
	NewConf,
	ProvideLogConf,
	ProvideDatabaseConf,
	ProvideStorageConf,
	ProvideExtractorConf,
	ProvideLLMConf,
	ProvidePipelineConf,
	ProvideMetricsConf,
	ProvideRetentionConf,
)

func ProvideLogConf(c *AppConfig) *log.Conf {
	return &c.Log
}

func ProvideDatabaseConf(c *AppConfig) database.Database {
	return c.Database
}

func ProvideStorageConf(c *AppConfig) storage.Config {
	return c.Storage
}

func ProvideExtractorConf(c *AppConfig) extractor.Config {
	return c.Extractor
}

func ProvideLLMConf(c *AppConfig) llm.Config {
	return c.LLM
}

func ProvidePipelineConf(c *AppConfig) pipeline.Config {
	return c.Pipeline
}

func ProvideMetricsConf(c *AppConfig) metrics.MetricsConfig {
	return c.Metrics
}

func ProvideRetentionConf(c *AppConfig) service.RetentionConfig {
	return c.Retention
}
