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

// Package storage persists run artifacts. Artifacts are addressed by run id
// and artifact name, and downloads return the stored bytes unchanged.
package storage

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/google/wire"
	"github.com/pkg/errors"
)

// ProviderSet is the Wire provider set for the storage package.
var ProviderSet = wire.NewSet(ProvideStorage)

// Storage provider constants.
const (
	Local = "local"
	Minio = "minio"
	S3    = "s3"
)

// ErrArtifactNotFound is returned when the requested artifact does not exist.
var ErrArtifactNotFound = errors.New("artifact not found")

// Config defines artifact storage settings.
type Config struct {
	Provider  string `mapstructure:"provider"`
	AccessKey string `mapstructure:"accessKey"`
	SecretKey string `mapstructure:"secretKey"`
	Endpoint  string `mapstructure:"endpoint"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	UseTLS    bool   `mapstructure:"useTls"`
	BasePath  string `mapstructure:"basePath"`
	// LocalPath is the artifact root for the local provider.
	LocalPath string `mapstructure:"localPath"`
}

func (c *Config) SetDefaults() {
	if c.Provider == "" {
		c.Provider = Local
	}
	if c.LocalPath == "" {
		c.LocalPath = "./data/artifacts"
	}
}

// IStorage stores and retrieves run artifacts.
type IStorage interface {
	// Put stores an artifact, replacing any previous content.
	Put(ctx context.Context, runId, name string, data []byte) error
	// Get returns the stored artifact bytes, or ErrArtifactNotFound.
	Get(ctx context.Context, runId, name string) ([]byte, error)
	// DeleteRun removes every artifact of a run. Missing artifacts are not an
	// error.
	DeleteRun(ctx context.Context, runId string) error
}

// NewStorage creates a storage provider from config.
func NewStorage(cfg *Config) (IStorage, error) {
	cfg.SetDefaults()
	switch cfg.Provider {
	case Local:
		return newLocal(cfg)
	case Minio:
		return newMinio(cfg)
	case S3:
		return newS3(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage provider: %s", cfg.Provider)
	}
}

// ProvideStorage creates the storage provider for Wire.
func ProvideStorage(cfg Config) (IStorage, error) {
	return NewStorage(&cfg)
}

// objectKey combines base path, run id and artifact name into an object key.
func objectKey(basePath, runId, name string) string {
	basePath = strings.Trim(basePath, "/")
	if basePath == "" {
		return path.Join(runId, name)
	}
	return path.Join(basePath, runId, name)
}

// contentTypeOf maps an artifact name to its MIME type for object stores.
func contentTypeOf(name string) string {
	switch path.Ext(name) {
	case ".json":
		return "application/json"
	case ".csv":
		return "text/csv"
	default:
		return "application/octet-stream"
	}
}
