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

package metrics

import (
	"github.com/arcentrix/caseforge/pkg/http/middleware"
	"github.com/arcentrix/caseforge/pkg/log"
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
)

// ProviderSet is the Wire provider set for metrics.
var ProviderSet = wire.NewSet(NewMetricsServer, ProvideRegistry)

// ProvideRegistry exposes the server's registry for component metrics.
func ProvideRegistry(s *Server) *prometheus.Registry {
	return s.Registry()
}

// NewMetricsServer creates the metrics server and registers HTTP metrics.
func NewMetricsServer(config MetricsConfig) *Server {
	server := NewServer(config)
	if err := middleware.RegisterHttpMetrics(server.Registry()); err != nil {
		log.Warnw("failed to register HTTP metrics", "error", err)
	}
	return server
}
