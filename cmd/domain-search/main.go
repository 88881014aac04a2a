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

// Command domain-search runs the domain discovery engine: it enumerates
// candidate domains, resolves and HTTP-probes them, persists reachable
// domains grouped by TLD, and serves a read-only HTTP API over progress
// and results.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	flag "github.com/spf13/pflag"

	"domainsearch/internal/discovery/api"
	"domainsearch/internal/discovery/cliview"
	"domainsearch/internal/discovery/config"
	"domainsearch/internal/discovery/core"
	"domainsearch/internal/discovery/log"
	"domainsearch/internal/discovery/sink"
)

const resumeSaveInterval = 1 * time.Second

func main() {
	var (
		configPath = flag.String("config", "domain_search.config.yaml", "Path to the YAML config file")
		addr       = flag.String("addr", ":8080", "Listen address, e.g. :8080 or 0.0.0.0:8080")
		reset      = flag.Bool("reset", false, "Delete stored domains and resume state, then exit")
		quiet      = flag.Bool("quiet", false, "Suppress the interactive live progress view")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	log.Configure("prod", cfg.Logging.Level)

	store, err := core.NewStore(cfg.Storage.Dir, sink.Build(cfg.Storage.Sink.RedisAddr))
	if err != nil {
		log.Fatal(map[string]any{"error": err.Error()}, "failed to open storage directory")
	}

	if *reset {
		if err := store.Reset(cfg.Storage.StateFile); err != nil {
			log.Fatal(map[string]any{"error": err.Error()}, "reset failed")
		}
		log.Info(map[string]any{"dir": cfg.Storage.Dir, "state_file": cfg.Storage.StateFile}, "reset completed")
		return
	}

	totalPlanned := int64(0)
	if cfg.Limits.MaxCandidates > 0 {
		totalPlanned = int64(cfg.Limits.MaxCandidates)
	}
	prog := core.NewProgress(totalPlanned)

	resume := core.NewResume(cfg.Storage.StateFile, cfg.Storage.Resume, prog)
	resume.Load()

	httpClient := core.NewHTTPClient(cfg.Limits.Concurrency, cfg.HTTPCheck.Timeout)
	prober := core.NewProber(httpClient, cfg.HTTPCheck)
	pipeline := core.NewPipeline(cfg, store, prog, resume, prober)

	reg := prometheus.NewRegistry()
	core.RegisterMetrics(reg)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	resumeDone := make(chan struct{})
	go func() {
		resume.RunSaver(ctx.Done(), resumeSaveInterval)
		close(resumeDone)
	}()

	pipelineDone := make(chan struct{})
	go func() {
		if err := pipeline.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error(map[string]any{"error": err.Error()}, "pipeline exited with error")
		}
		close(pipelineDone)
	}()

	if cliview.Enabled(*quiet) {
		viewDone := make(chan struct{})
		go cliview.Run(viewDone, prog)
		defer close(viewDone)
	}

	server := api.NewServer(store, prog, cfg.Generator.TLDs, reg)
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe(*addr)
	}()

	bindFailed := false
	select {
	case <-ctx.Done():
		log.Info(nil, "signal received, shutting down")
	case err := <-serverErr:
		if err != nil && err != http.ErrServerClosed {
			log.Error(map[string]any{"error": err.Error()}, "api server failed to bind")
			bindFailed = true
		}
		cancel()
	}

	<-pipelineDone
	<-resumeDone
	log.Info(nil, "shutdown complete")

	if bindFailed {
		os.Exit(1)
	}
}
