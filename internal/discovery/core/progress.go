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

// Package core implements the domain discovery pipeline: candidate
// generation, DNS/HTTP probing, progress tracking, the on-disk store, and
// resume state.
package core

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Progress tracks the monotonic counters for a single run: how many
// candidates have been enqueued, checked, and found reachable, plus the
// planned total (0 means unbounded).
type Progress struct {
	start        time.Time
	enqueued     atomic.Int64
	checked      atomic.Int64
	found        atomic.Int64
	totalPlanned atomic.Int64
}

// NewProgress creates a Progress with the given planned total (<=0 means
// unbounded).
func NewProgress(totalPlanned int64) *Progress {
	p := &Progress{start: time.Now()}
	if totalPlanned > 0 {
		p.totalPlanned.Store(totalPlanned)
	}
	return p
}

// IncEnqueued records one more candidate admitted to the queue.
func (p *Progress) IncEnqueued() {
	p.enqueued.Add(1)
	metricsCandidatesEnqueued.Inc()
}

// IncChecked records one more candidate that finished probing, regardless
// of outcome.
func (p *Progress) IncChecked() {
	p.checked.Add(1)
	metricsCandidatesChecked.Inc()
}

// IncFound records one more candidate that proved reachable.
func (p *Progress) IncFound() {
	p.found.Add(1)
	metricsCandidatesFound.Inc()
}

// Snapshot returns (enqueued, checked, found, elapsed) atomically enough
// for reporting purposes: each counter is read independently, matching the
// relaxed-ordering semantics of the Rust original this pipeline was ported
// from.
func (p *Progress) Snapshot() (enqueued, checked, found int64, elapsed time.Duration) {
	return p.enqueued.Load(), p.checked.Load(), p.found.Load(), time.Since(p.start)
}

// TotalPlanned returns the configured planned total, or 0 if unbounded.
func (p *Progress) TotalPlanned() int64 {
	return p.totalPlanned.Load()
}

// SetInitial seeds the counters from a previously persisted resume state.
// Called at most once, before the pipeline starts accepting new candidates.
// It never touches the Prometheus counters: those are monotonic for the
// life of the process and must never be rewound by a resumed run.
func (p *Progress) SetInitial(enqueued, checked, found, totalPlanned int64) {
	p.enqueued.Store(enqueued)
	p.checked.Store(checked)
	p.found.Store(found)
	if totalPlanned < 0 {
		totalPlanned = 0
	}
	p.totalPlanned.Store(totalPlanned)
}

var (
	metricsCandidatesEnqueued = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "domainsearch_candidates_enqueued_total",
		Help: "Total number of candidates admitted to the pipeline queue.",
	})
	metricsCandidatesChecked = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "domainsearch_candidates_checked_total",
		Help: "Total number of candidates that finished probing.",
	})
	metricsCandidatesFound = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "domainsearch_candidates_found_total",
		Help: "Total number of candidates that proved reachable.",
	})
)
