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
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"domainsearch/internal/discovery/config"
	"domainsearch/internal/discovery/log"
)

// negDNSCacheSize and negDNSCacheTTL bound the prober's negative-DNS cache.
// Not exposed in HTTPCheckConfig: spec does not define a config key for it,
// and it is purely a latency optimization over the bounded re-probe tail a
// resumed run can produce (see SPEC_FULL.md §4.5).
const (
	negDNSCacheSize = 4096
	negDNSCacheTTL  = 5 * time.Second
)

// lookupFunc resolves a hostname to its addresses. Matches the signature
// of (*net.Resolver).LookupHost so the zero-value wiring is just the
// method value; tests substitute a fake to avoid real DNS traffic.
type lookupFunc func(ctx context.Context, host string) ([]string, error)

// Prober resolves and HTTP-checks candidates. A single Prober is shared by
// every worker goroutine in the pipeline; its HTTP client and negative-DNS
// cache are both safe for concurrent use.
type Prober struct {
	client     *http.Client
	lookupHost lookupFunc
	hc         config.HTTPCheckConfig
	method     string
	negCache   *lru.Cache[string, time.Time]
}

// NewHTTPClient builds the shared client used by every Prober, with an
// idle-connection pool sized to the configured concurrency — mirroring the
// original service's reqwest::Client::builder() tuning
// (pool_max_idle_per_host, tcp_keepalive, timeout).
func NewHTTPClient(concurrency int, timeout time.Duration) *http.Client {
	if concurrency < 1 {
		concurrency = 1
	}
	transport := &http.Transport{
		MaxIdleConns:        concurrency * 2,
		MaxIdleConnsPerHost: concurrency,
		IdleConnTimeout:     90 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}
	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
		// Probing only cares whether a status code in range comes back;
		// redirects are followed with the default policy (up to 10 hops).
	}
}

// NewProber creates a Prober using client for HTTP checks and hc for
// method/retry/scheme/status/body-limit policy. hc.Method is validated once
// here: if it is empty or not a usable HTTP method token, the prober falls
// back to GET, mirroring the original's Method::from_bytes(...).unwrap_or(Method::GET).
func NewProber(client *http.Client, hc config.HTTPCheckConfig) *Prober {
	cache, err := lru.New[string, time.Time](negDNSCacheSize)
	if err != nil {
		// Only fails on a non-positive size, which negDNSCacheSize never is.
		cache = nil
	}
	return &Prober{
		client:     client,
		lookupHost: net.DefaultResolver.LookupHost,
		hc:         hc,
		method:     resolveMethod(hc.Method),
		negCache:   cache,
	}
}

// resolveMethod validates a configured HTTP method token, falling back to
// GET when it is empty or not something net/http will send as-is.
func resolveMethod(configured string) string {
	method := strings.TrimSpace(configured)
	if method == "" {
		return http.MethodGet
	}
	if _, err := http.NewRequest(method, "http://example.invalid/", nil); err != nil {
		log.Warn(map[string]any{"method": configured}, "prober: unparseable http_check.method, falling back to GET")
		return http.MethodGet
	}
	return method
}

// Probe resolves domain and, if it resolves, issues an HTTP probe. It
// returns true only when a response in [AcceptStatusMin, AcceptStatusMax]
// was observed. All DNS and HTTP errors are swallowed and treated as
// false, per the error-handling policy in SPEC_FULL.md §7 — probing is
// never allowed to abort the pipeline.
func (p *Prober) Probe(ctx context.Context, domain string) bool {
	if !p.resolves(ctx, domain) {
		incDNSPrefilterRejected()
		return false
	}
	start := time.Now()
	ok := p.checkHTTP(ctx, domain)
	outcome := "miss"
	if ok {
		outcome = "hit"
	}
	observeProbeDuration(outcome, time.Since(start).Seconds())
	return ok
}

// resolves runs the DNS prefilter: domain must have at least one A/AAAA
// record. Negative answers are cached for a short TTL to absorb the
// bounded re-probe tail after a resumed run (Testable Property 11: a cache
// hit never turns into a `true` outcome — it only short-circuits the next
// DNS step, the HTTP step still decides success).
func (p *Prober) resolves(ctx context.Context, domain string) bool {
	if p.negCache != nil {
		if expiry, ok := p.negCache.Get(domain); ok {
			if time.Now().Before(expiry) {
				return false
			}
			p.negCache.Remove(domain)
		}
	}

	addrs, err := p.lookupHost(ctx, domain)
	if err != nil || len(addrs) == 0 {
		if p.negCache != nil {
			p.negCache.Add(domain, time.Now().Add(negDNSCacheTTL))
		}
		return false
	}
	return true
}

// checkHTTP tries each scheme, retrying up to hc.Retry additional times,
// and returns true on the first response whose status falls in range.
func (p *Prober) checkHTTP(ctx context.Context, domain string) bool {
	schemes := []string{"http", "https"}
	if p.hc.TryHTTPSFirst {
		schemes = []string{"https", "http"}
	}

	attempts := int(p.hc.Retry) + 1
	for attempt := 0; attempt < attempts; attempt++ {
		for _, scheme := range schemes {
			if p.probeOnce(ctx, scheme, p.method, domain) {
				return true
			}
		}
	}
	return false
}

func (p *Prober) probeOnce(ctx context.Context, scheme, method, domain string) bool {
	url := scheme + "://" + domain + "/"
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		log.Debug(map[string]any{"url": url, "error": err.Error()}, "prober: request failed")
		return false
	}
	defer resp.Body.Close()

	limit := p.hc.BodyLimitBytes
	if limit == 0 {
		limit = 1
	}
	_, _ = io.CopyN(io.Discard, resp.Body, int64(limit))

	if resp.StatusCode >= p.hc.AcceptStatusMin && resp.StatusCode <= p.hc.AcceptStatusMax {
		log.Debug(map[string]any{"url": url, "status": resp.StatusCode}, "prober: reachable")
		return true
	}
	return false
}
