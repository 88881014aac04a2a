package core

import (
	"context"
	"net/http"
	"testing"
	"time"

	"domainsearch/internal/discovery/config"
)

func TestPipelineRunSinglePassFindsReachableDomains(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir, nil)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	prog := NewProgress(0)
	resume := NewResume(dir+"/state.json", false, prog)

	rt := &fakeRoundTripper{status: 200}
	client := &http.Client{Transport: rt}
	hc := config.HTTPCheckConfig{Method: "GET", AcceptStatusMin: 200, AcceptStatusMax: 299, BodyLimitBytes: 64}
	prober := NewProber(client, hc)
	prober.lookupHost = func(context.Context, string) ([]string, error) { return []string{"127.0.0.1"}, nil }

	cfg := &config.Config{
		Generator: config.GeneratorConfig{TLDs: []string{".io"}, MinLength: 1, MaxLength: 1, Alphabet: "ab"},
		Limits:    config.LimitsConfig{Concurrency: 2, RatePerSecond: 100, MaxCandidates: 2},
		Run:       config.RunConfig{Loop: false},
	}

	pl := NewPipeline(cfg, store, prog, resume, prober)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = pl.Run(ctx)

	_, chk, fnd, _ := prog.Snapshot()
	if chk != 2 {
		t.Fatalf("checked = %d, want 2", chk)
	}
	if fnd != 2 {
		t.Fatalf("found = %d, want 2", fnd)
	}

	all := store.ListAll()
	if len(all) != 2 {
		t.Fatalf("store has %d entries, want 2", len(all))
	}
}

func TestPipelineStopsOnContextCancellation(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir, nil)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	prog := NewProgress(0)
	resume := NewResume(dir+"/state.json", false, prog)

	rt := &fakeRoundTripper{status: 200}
	client := &http.Client{Transport: rt}
	hc := config.HTTPCheckConfig{Method: "GET", AcceptStatusMin: 200, AcceptStatusMax: 299, BodyLimitBytes: 64}
	prober := NewProber(client, hc)
	prober.lookupHost = func(context.Context, string) ([]string, error) { return []string{"127.0.0.1"}, nil }

	cfg := &config.Config{
		Generator: config.GeneratorConfig{TLDs: []string{".io"}, MinLength: 1, MaxLength: 2, Alphabet: "abcdefghij"},
		Limits:    config.LimitsConfig{Concurrency: 2, RatePerSecond: 5},
		Run:       config.RunConfig{Loop: true},
	}
	pl := NewPipeline(cfg, store, prog, resume, prober)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err = pl.Run(ctx)
	if err == nil {
		t.Fatalf("expected context deadline error")
	}
}
