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
	"fmt"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/arcentrix/caseforge/internal/engine/service"
	"github.com/arcentrix/caseforge/internal/pkg/extractor"
	"github.com/arcentrix/caseforge/internal/pkg/llm"
	"github.com/arcentrix/caseforge/internal/pkg/pipeline"
	"github.com/arcentrix/caseforge/internal/pkg/storage"
	"github.com/arcentrix/caseforge/pkg/database"
	"github.com/arcentrix/caseforge/pkg/http"
	"github.com/arcentrix/caseforge/pkg/log"
	"github.com/arcentrix/caseforge/pkg/metrics"
)

type AppConfig struct {
	Log       log.Conf                `mapstructure:"log"`
	Http      http.Http               `mapstructure:"http"`
	Database  database.Database       `mapstructure:"database"`
	Storage   storage.Config          `mapstructure:"storage"`
	Extractor extractor.Config        `mapstructure:"extractor"`
	LLM       llm.Config              `mapstructure:"llm"`
	Pipeline  pipeline.Config         `mapstructure:"pipeline"`
	Metrics   metrics.MetricsConfig   `mapstructure:"metrics"`
	Retention service.RetentionConfig `mapstructure:"retention"`
}

func (c *AppConfig) setDefaults() {
	c.Http.SetDefaults()
	c.Storage.SetDefaults()
	c.Extractor.SetDefaults()
	c.LLM.SetDefaults()
	c.Pipeline.SetDefaults()
	c.Metrics.SetDefaults()
	c.Retention.SetDefaults()
}

var (
	cfg  AppConfig
	mu   sync.RWMutex // 保护配置的读写
	once sync.Once
)

func NewConf(confDir string) *AppConfig {
	once.Do(func() {
		var err error
		cfg, err = LoadConfigFile(confDir)
		if err != nil {
			panic(fmt.Sprintf("load config file error: %s", err))
		}
	})
	mu.RLock()
	defer mu.RUnlock()
	return &cfg
}

// GetConfig 获取当前配置（用于热重载场景）
func GetConfig() AppConfig {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}

// LoadConfigFile load config file
func LoadConfigFile(confDir string) (AppConfig, error) {
	config := viper.New()
	config.SetConfigFile(confDir)
	if err := config.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("failed to read configuration file: %v", err)
	}

	config.WatchConfig()
	config.OnConfigChange(func(e fsnotify.Event) {
		log.Infow("The configuration changes, re-analyze the configuration file", "file", e.Name)
		if err := config.ReadInConfig(); err != nil {
			log.Errorw("failed to re-read configuration file", "error", err, "file", e.Name)
			return
		}
		// 使用写锁保护配置更新
		mu.Lock()
		if err := config.Unmarshal(&cfg); err != nil {
			mu.Unlock()
			log.Errorw("failed to unmarshal configuration file", "error", err, "file", e.Name)
			return
		}
		cfg.setDefaults()
		mu.Unlock()
		log.Infow("configuration reloaded successfully", "file", e.Name)
	})
	if err := config.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to unmarshal configuration file: %v", err)
	}
	cfg.setDefaults()
	log.Infow("config file loaded",
		"path", confDir,
	)

	return cfg, nil
}
