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
	"context"
	"sync"
	"time"

	"domainsearch/internal/discovery/config"
	"domainsearch/internal/discovery/log"
)

// Pipeline wires the generator, rate limiter, concurrency semaphore,
// prober, store, progress, and resume cursor together. It has no
// package-level state: every field the original service kept in a global
// OnceCell lives on this value instead, so multiple pipelines could run in
// the same process without interfering.
type Pipeline struct {
	cfg    *config.Config
	store  *Store
	prog   *Progress
	resume *Resume
	prober *Prober
}

// NewPipeline assembles a Pipeline from its already-constructed
// collaborators.
func NewPipeline(cfg *config.Config, store *Store, prog *Progress, resume *Resume, prober *Prober) *Pipeline {
	return &Pipeline{cfg: cfg, store: store, prog: prog, resume: resume, prober: prober}
}

// Run starts the rate limiter refill loop, the dispatcher, and the
// generator driver, and blocks until generation ends (after one pass when
// cfg.Run.Loop is false, otherwise when ctx is cancelled) and every
// in-flight probe has drained. It mirrors the original's tokio::select! race between
// generation and shutdown, translated to goroutines, channels, and
// context cancellation.
func (pl *Pipeline) Run(ctx context.Context) error {
	concurrency := pl.cfg.Limits.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	rps := pl.cfg.Limits.RatePerSecond
	if rps < 1 {
		rps = 1
	}

	queue := make(chan string, concurrency*2)
	rateTokens := make(chan struct{}, rps)
	sem := make(chan struct{}, concurrency)

	var workers sync.WaitGroup

	log.Info(map[string]any{"concurrency": concurrency, "rate_per_second": rps}, "pipeline starting")

	go pl.refillRate(ctx, rateTokens, rps)
	dispatchDone := make(chan struct{})
	go func() {
		pl.dispatch(ctx, queue, rateTokens, sem, &workers)
		close(dispatchDone)
	}()

	pl.runGeneratorLoop(ctx, queue)

	close(queue)
	<-dispatchDone
	workers.Wait()

	log.Info(nil, "pipeline stopped")
	return ctx.Err()
}

// refillRate adds up to rps tokens to the bucket every second. Sends are
// non-blocking: if the bucket is already full, the refill for that tick is
// simply dropped, matching the original's Semaphore::add_permits call
// which has the same saturating behavior under a full bucket.
func (pl *Pipeline) refillRate(ctx context.Context, tokens chan<- struct{}, rps int) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for i := 0; i < rps; i++ {
				select {
				case tokens <- struct{}{}:
				default:
				}
			}
		}
	}
}

// dispatch reads candidates off queue and spawns one goroutine per
// candidate, gated by the concurrency semaphore and the rate-limit token
// bucket, exactly as the original's single consumer task did with
// tokio::spawn + Semaphore::acquire_owned.
func (pl *Pipeline) dispatch(ctx context.Context, queue <-chan string, tokens <-chan struct{}, sem chan struct{}, workers *sync.WaitGroup) {
	for domain := range queue {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			return
		}

		workers.Add(1)
		go func(domain string) {
			defer workers.Done()
			defer func() { <-sem }()

			select {
			case <-tokens:
			case <-ctx.Done():
				return
			}

			if pl.prober.Probe(ctx, domain) {
				pl.store.Add(ctx, domain)
				pl.prog.IncFound()
			}
			pl.prog.IncChecked()
			pl.resume.Observe(domain)
		}(domain)
	}
}

// runGeneratorLoop drives GenerateCandidates against the current resume
// cursor, once or repeatedly depending on cfg.Run.Loop, stopping
// immediately if ctx is cancelled.
func (pl *Pipeline) runGeneratorLoop(ctx context.Context, queue chan<- string) {
	for {
		if ctx.Err() != nil {
			return
		}

		resumeFrom := pl.resume.Cursor()
		log.Info(map[string]any{"resume_from": resumeFrom}, "generator: starting pass")

		var sent int64
		err := GenerateCandidates(ctx, pl.cfg.Generator, resumeFrom, func(domain string) bool {
			select {
			case queue <- domain:
				sent++
				pl.prog.IncEnqueued()
			case <-ctx.Done():
				return false
			}
			if pl.cfg.Limits.MaxCandidates > 0 && sent >= int64(pl.cfg.Limits.MaxCandidates) {
				log.Info(map[string]any{"max_candidates": pl.cfg.Limits.MaxCandidates}, "generator: reached max_candidates, stopping pass")
				return false
			}
			return true
		})
		if err != nil {
			log.Error(map[string]any{"error": err.Error()}, "generator: pass failed")
		} else {
			log.Info(map[string]any{"enqueued_sent": sent}, "generator: pass finished")
		}

		if !pl.cfg.Run.Loop {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(250 * time.Millisecond):
		}
	}
}
