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

package repo

import (
	"github.com/arcentrix/caseforge/pkg/database"
	"github.com/google/wire"
)

// ProviderSet provides repository-layer dependencies.
var ProviderSet = wire.NewSet(ProvideRepositories, ProvideRunRepository)

// Repositories bundles all repositories for injection.
type Repositories struct {
	Run IRunRepository
}

// ProvideRepositories creates the repository bundle.
func ProvideRepositories(db database.IDatabase) (*Repositories, error) {
	runRepo, err := NewRunRepo(db)
	if err != nil {
		return nil, err
	}
	return &Repositories{Run: runRepo}, nil
}

// ProvideRunRepository exposes the run repository from the bundle.
func ProvideRunRepository(repos *Repositories) IRunRepository {
	return repos.Run
}
