// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Created: October 2025
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package core

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	metricsProbeDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "domainsearch_probe_duration_seconds",
		Help:    "Duration of an HTTP probe, labeled by outcome.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})

	metricsDNSPrefilterRejected = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "domainsearch_dns_prefilter_rejected_total",
		Help: "Total number of candidates rejected by the DNS prefilter before an HTTP probe was attempted.",
	})

	metricsStoreAppendErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "domainsearch_store_append_errors_total",
		Help: "Total number of failed attempts to append a found domain to its TLD file.",
	})

	metricsResumeSaveErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "domainsearch_resume_save_errors_total",
		Help: "Total number of failed attempts to persist resume state.",
	})

	registerOnce sync.Once
)

// RegisterMetrics registers every collector defined in this package with
// reg. It is safe to call more than once; only the first call has effect.
// Mirrors the one-time registration style of etalazz-vsa's
// telemetry/churn/prom_counters.go.
func RegisterMetrics(reg prometheus.Registerer) {
	registerOnce.Do(func() {
		reg.MustRegister(
			metricsCandidatesEnqueued,
			metricsCandidatesChecked,
			metricsCandidatesFound,
			metricsProbeDuration,
			metricsDNSPrefilterRejected,
			metricsStoreAppendErrors,
			metricsResumeSaveErrors,
		)
	})
}

func observeProbeDuration(outcome string, seconds float64) {
	metricsProbeDuration.WithLabelValues(outcome).Observe(seconds)
}

func incDNSPrefilterRejected() {
	metricsDNSPrefilterRejected.Inc()
}

func incStoreAppendErrors() {
	metricsStoreAppendErrors.Inc()
}

func incResumeSaveErrors() {
	metricsResumeSaveErrors.Inc()
}
