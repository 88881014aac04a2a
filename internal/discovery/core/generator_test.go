package core

import (
	"context"
	"testing"

	"domainsearch/internal/discovery/config"
)

func TestGenerateCandidatesBasic(t *testing.T) {
	gen := config.GeneratorConfig{
		TLDs:      []string{".io"},
		MinLength: 1,
		MaxLength: 2,
		Alphabet:  "ab",
	}
	var got []string
	err := GenerateCandidates(context.Background(), gen, "", func(domain string) bool {
		got = append(got, domain)
		return true
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"a.io", "b.io", "aa.io", "ab.io", "ba.io", "bb.io"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestGenerateCandidatesResumeCursorSkipsThroughAndIncludingCursor(t *testing.T) {
	gen := config.GeneratorConfig{
		TLDs:      []string{".io"},
		MinLength: 1,
		MaxLength: 1,
		Alphabet:  "abc",
	}
	var got []string
	err := GenerateCandidates(context.Background(), gen, "b.io", func(domain string) bool {
		got = append(got, domain)
		return true
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"c.io"}
	if len(got) != 1 || got[0] != want[0] {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestGenerateCandidatesHyphenPolicy(t *testing.T) {
	gen := config.GeneratorConfig{
		TLDs:                 []string{".io"},
		MinLength:            3,
		MaxLength:            3,
		Alphabet:             "a-",
		AllowHyphen:          true,
		ForbidLeadingHyphen:  true,
		ForbidTrailingHyphen: true,
		ForbidDoubleHyphen:   true,
	}
	var got []string
	err := GenerateCandidates(context.Background(), gen, "", func(domain string) bool {
		got = append(got, domain)
		return true
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Of the length-3 labels over {a,-}, "aaa" has no hyphen and "a-a" has
	// one hyphen in the middle; every other label puts a '-' first, last,
	// or next to another '-', and is rejected.
	want := []string{"aaa.io", "a-a.io"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestGenerateCandidatesStopsEarly(t *testing.T) {
	gen := config.GeneratorConfig{
		TLDs:      []string{".io"},
		MinLength: 1,
		MaxLength: 2,
		Alphabet:  "ab",
	}
	var got []string
	err := GenerateCandidates(context.Background(), gen, "", func(domain string) bool {
		got = append(got, domain)
		return len(got) < 2
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %v, want 2 entries", got)
	}
}

func TestGenerateCandidatesDefaultAlphabetWhenEmpty(t *testing.T) {
	gen := config.GeneratorConfig{
		TLDs:      []string{".io"},
		MinLength: 1,
		MaxLength: 1,
	}
	var got []string
	err := GenerateCandidates(context.Background(), gen, "", func(domain string) bool {
		got = append(got, domain)
		return true
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// AllowHyphen is false, so the '-' rune of the default alphabet yields
	// no candidate.
	want := len(defaultAlphabet) - 1
	if len(got) != want {
		t.Fatalf("got %d candidates, want %d (one per default alphabet rune except '-')", len(got), want)
	}
}

func TestGenerateCandidatesContextCancellation(t *testing.T) {
	gen := config.GeneratorConfig{
		TLDs:      []string{".io"},
		MinLength: 1,
		MaxLength: 3,
		Alphabet:  "abcdefg",
	}
	ctx, cancel := context.WithCancel(context.Background())
	count := 0
	err := GenerateCandidates(ctx, gen, "", func(domain string) bool {
		count++
		if count == 3 {
			cancel()
		}
		return true
	})
	if err == nil {
		t.Fatalf("expected context cancellation error")
	}
}
