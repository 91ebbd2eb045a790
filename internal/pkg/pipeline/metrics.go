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

package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks stage executions and run outcomes.
type Metrics struct {
	stageDuration *prometheus.HistogramVec
	stageTotal    *prometheus.CounterVec
	runTotal      *prometheus.CounterVec
}

// NewMetrics registers pipeline metrics on the given registry.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "caseforge_pipeline_stage_duration_seconds",
			Help:    "Duration of pipeline stage executions.",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		}, []string{"stage"}),
		stageTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "caseforge_pipeline_stage_total",
			Help: "Pipeline stage executions by outcome.",
		}, []string{"stage", "outcome"}),
		runTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "caseforge_runs_total",
			Help: "Terminal run outcomes.",
		}, []string{"status"}),
	}
	if registry != nil {
		registry.MustRegister(m.stageDuration, m.stageTotal, m.runTotal)
	}
	return m
}

// ObserveStage records one stage execution.
func (m *Metrics) ObserveStage(stage string, d time.Duration, ok bool) {
	if m == nil {
		return
	}
	outcome := "success"
	if !ok {
		outcome = "failure"
	}
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
	m.stageTotal.WithLabelValues(stage, outcome).Inc()
}

// ObserveRun records one terminal run outcome.
func (m *Metrics) ObserveRun(status string) {
	if m == nil {
		return
	}
	m.runTotal.WithLabelValues(status).Inc()
}
