package core

import (
	"context"
	"sort"
	"sync"
	"testing"
)

type fakeSink struct {
	mu   sync.Mutex
	msgs []string
}

func (f *fakeSink) Publish(_ context.Context, tld, domain string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, tld+":"+domain)
}

type erroringSink struct{ calls int }

func (e *erroringSink) Publish(context.Context, string, string) { e.calls++ }

func TestStoreAddAndList(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir, nil)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	s.Add(context.Background(), "foo.io")
	s.Add(context.Background(), "bar.io")
	s.Add(context.Background(), "baz.com")

	io := s.List("io")
	sort.Strings(io)
	if len(io) != 2 || io[0] != "bar.io" || io[1] != "foo.io" {
		t.Fatalf("List(io) = %v, want [bar.io foo.io]", io)
	}

	com := s.List("com")
	if len(com) != 1 || com[0] != "baz.com" {
		t.Fatalf("List(com) = %v, want [baz.com]", com)
	}

	if got := s.List("net"); got != nil {
		t.Fatalf("List(net) = %v, want nil", got)
	}
}

func TestStoreListAll(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir, nil)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	s.Add(context.Background(), "a.io")
	s.Add(context.Background(), "b.com")

	all := s.ListAll()
	if len(all) != 2 {
		t.Fatalf("ListAll() = %v, want 2 entries", all)
	}
}

func TestStoreForwardsToSinkAfterAppend(t *testing.T) {
	dir := t.TempDir()
	sk := &fakeSink{}
	s, err := NewStore(dir, sk)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	s.Add(context.Background(), "a.io")

	sk.mu.Lock()
	defer sk.mu.Unlock()
	if len(sk.msgs) != 1 || sk.msgs[0] != "io:a.io" {
		t.Fatalf("sink messages = %v, want [io:a.io]", sk.msgs)
	}
}

func TestStoreSinkFailureNeverBreaksListing(t *testing.T) {
	dir := t.TempDir()
	sk := &erroringSink{}
	s, err := NewStore(dir, sk)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	s.Add(context.Background(), "a.io")
	s.Add(context.Background(), "b.io")

	got := s.List("io")
	if len(got) != 2 {
		t.Fatalf("List(io) = %v, want 2 entries despite a failing sink", got)
	}
}

func TestStoreApproxBytesAndReset(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir, nil)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	s.Add(context.Background(), "a.io")
	if s.ApproxBytes() == 0 {
		t.Fatalf("expected non-zero approx bytes after an add")
	}

	if err := s.Reset(""); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if got := s.List("io"); got != nil {
		t.Fatalf("List(io) after reset = %v, want nil", got)
	}
}

func TestExtractTLD(t *testing.T) {
	cases := map[string]string{
		"foo.io":     "io",
		"a.b.co":     "co",
		"noTLD":      "",
		".io":        "",
		"foo.":       "",
	}
	for in, want := range cases {
		if got := extractTLD(in); got != want {
			t.Errorf("extractTLD(%q) = %q, want %q", in, got, want)
		}
	}
}
