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

package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// localStorage keeps artifacts on the local filesystem under
// <root>/<runId>/<name>.
type localStorage struct {
	root string
}

var _ IStorage = (*localStorage)(nil)

func newLocal(cfg *Config) (*localStorage, error) {
	root := cfg.LocalPath
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errors.Wrap(err, "create artifact root")
	}
	return &localStorage{root: root}, nil
}

// artifactPath resolves the on-disk path, rejecting names that escape the run
// directory.
func (s *localStorage) artifactPath(runId, name string) (string, error) {
	if strings.Contains(runId, "..") || strings.Contains(name, "..") {
		return "", fmt.Errorf("invalid artifact path %s/%s", runId, name)
	}
	return filepath.Join(s.root, runId, filepath.Base(name)), nil
}

func (s *localStorage) Put(_ context.Context, runId, name string, data []byte) error {
	p, err := s.artifactPath(runId, name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return errors.Wrap(err, "create run directory")
	}
	// Write then rename so a concurrent download never sees a partial file.
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrap(err, "write artifact")
	}
	if err := os.Rename(tmp, p); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrap(err, "publish artifact")
	}
	return nil
}

func (s *localStorage) Get(_ context.Context, runId, name string) ([]byte, error) {
	p, err := s.artifactPath(runId, name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if os.IsNotExist(err) {
		return nil, errors.Wrapf(ErrArtifactNotFound, "%s/%s", runId, name)
	}
	if err != nil {
		return nil, errors.Wrap(err, "read artifact")
	}
	return data, nil
}

func (s *localStorage) DeleteRun(_ context.Context, runId string) error {
	if strings.Contains(runId, "..") || runId == "" {
		return fmt.Errorf("invalid run id %q", runId)
	}
	if err := os.RemoveAll(filepath.Join(s.root, runId)); err != nil {
		return errors.Wrap(err, "delete run artifacts")
	}
	return nil
}
