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

package shutdown

import (
	"sync"

	"github.com/google/wire"
)

// ProviderSet is the Wire provider set for the shutdown package.
var ProviderSet = wire.NewSet(NewManager)

// Manager coordinates graceful shutdown across components.
type Manager struct {
	once sync.Once
	ch   chan struct{}
}

// NewManager creates a shutdown manager.
func NewManager() *Manager {
	return &Manager{ch: make(chan struct{})}
}

// Shutdown marks the process as shutting down. Safe to call multiple times.
func (m *Manager) Shutdown() {
	m.once.Do(func() { close(m.ch) })
}

// Wait returns a channel closed once shutdown has been requested.
func (m *Manager) Wait() <-chan struct{} {
	return m.ch
}

// ShuttingDown reports whether shutdown has been requested.
func (m *Manager) ShuttingDown() bool {
	select {
	case <-m.ch:
		return true
	default:
		return false
	}
}
