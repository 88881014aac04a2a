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
	"fmt"
	"strings"

	"domainsearch/internal/discovery/config"
)

const defaultAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789-"

// GenerateCandidates enumerates every label of lengths
// [gen.MinLength, gen.MaxLength] over gen.Alphabet, applies the hyphen
// policy, appends each configured TLD, and calls emit for every domain
// that sorts after resumeFrom (lexicographically, case-insensitively).
// emit returns false to stop the pass early (e.g. max_candidates reached
// or the context was cancelled); GenerateCandidates then returns nil.
//
// This is a direct port of the odometer-based enumeration in the original
// service's generate_candidates, generalized to take a callback that also
// reports the last emitted domain so callers can track a resume cursor
// without any package-level global state.
func GenerateCandidates(ctx context.Context, gen config.GeneratorConfig, resumeFrom string, emit func(domain string) bool) error {
	alphabet := gen.Alphabet
	if strings.TrimSpace(alphabet) == "" {
		alphabet = defaultAlphabet
	}
	chars := []rune(alphabet)
	if len(chars) == 0 {
		return fmt.Errorf("generator: empty alphabet")
	}
	allowed := make(map[rune]struct{}, len(chars))
	for _, c := range chars {
		allowed[c] = struct{}{}
	}

	resume := strings.ToLower(strings.TrimSpace(resumeFrom))
	started := resume == ""

	tlds := normalizeTLDs(gen.TLDs)

	for length := gen.MinLength; length <= gen.MaxLength; length++ {
		idx := make([]int, length)
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			label, valid := buildLabel(chars, allowed, idx, gen)
			if valid {
				for _, tld := range tlds {
					domain := label + tld
					dl := strings.ToLower(domain)
					if !started {
						if dl <= resume {
							if dl == resume {
								started = true
							}
							continue
						}
						started = true
					}
					if !emit(domain) {
						return nil
					}
				}
			}

			if !incrementOdometer(idx, len(chars)) {
				break
			}
		}
	}
	return nil
}

// buildLabel renders the label for the current odometer position and
// reports whether it satisfies the hyphen policy.
func buildLabel(chars []rune, allowed map[rune]struct{}, idx []int, gen config.GeneratorConfig) (string, bool) {
	n := len(idx)
	var b strings.Builder
	b.Grow(n)
	prevHyphen := false
	for i := 0; i < n; i++ {
		r := chars[idx[i]]
		if _, ok := allowed[r]; !ok {
			return "", false
		}
		if r == '-' {
			if !gen.AllowHyphen ||
				(gen.ForbidLeadingHyphen && i == 0) ||
				(gen.ForbidTrailingHyphen && i == n-1) ||
				(gen.ForbidDoubleHyphen && prevHyphen) {
				return "", false
			}
			prevHyphen = true
		} else {
			prevHyphen = false
		}
		b.WriteRune(r)
	}
	return b.String(), true
}

// incrementOdometer advances idx by one position in base radix,
// mirroring the carry loop in the original. It returns false when the
// odometer has overflowed past its final position (this length is done).
func incrementOdometer(idx []int, radix int) bool {
	carry := 1
	for i := len(idx) - 1; i >= 0 && carry > 0; i-- {
		idx[i] += carry
		if idx[i] >= radix {
			idx[i] = 0
			carry = 1
		} else {
			carry = 0
		}
	}
	return carry == 0
}

// normalizeTLDs trims, lowercases, and keeps only dot-prefixed TLDs,
// mirroring the per-TLD normalization inlined in the original generator.
func normalizeTLDs(tlds []string) []string {
	out := make([]string, 0, len(tlds))
	for _, t := range tlds {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || !strings.HasPrefix(t, ".") {
			continue
		}
		out = append(out, t)
	}
	return out
}
