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

// Package api implements the public-facing, read-only HTTP server for the
// domain discovery engine. It never mutates pipeline state; it only
// reports progress, results, and configured TLDs.
package api

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"domainsearch/internal/discovery/core"
	"domainsearch/internal/discovery/log"
)

// Server serves the read-only stats/results/TLDs API plus /metrics.
type Server struct {
	store *core.Store
	prog  *core.Progress
	tlds  []string
	reg   *prometheus.Registry
}

// NewServer creates a Server. tlds is the configured TLD list (used only
// by the /tlds/ route); reg is the Prometheus registry /metrics serves.
func NewServer(store *core.Store, prog *core.Progress, tlds []string, reg *prometheus.Registry) *Server {
	return &Server{store: store, prog: prog, tlds: tlds, reg: reg}
}

// RegisterRoutes mounts every route on mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/stats/", s.handleStats)
	mux.HandleFunc("/domain/", s.handleDomain)
	mux.HandleFunc("/tlds/", s.handleTLDs)
	mux.Handle("/metrics", promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{}))
}

// ListenAndServe starts the HTTP server on addr with the same conservative
// timeouts the teacher's api.Server uses.
func (s *Server) ListenAndServe(addr string) error {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.Info(map[string]any{"addr": addr}, "api listening")
	return httpServer.ListenAndServe()
}

type statsResponse struct {
	Elapsed            string  `json:"elapsed"`
	ETA                string  `json:"eta"`
	Found              int64   `json:"found"`
	Remaining          int64   `json:"remaining"`
	SpeedPerSec        float64 `json:"speed_per_sec"`
	EfficiencyPercent  float64 `json:"efficiency_percent"`
	Percent            float64 `json:"percent"`
	Generated          int64   `json:"generated"`
	Checked            int64   `json:"checked"`
	TotalPlanned       int64   `json:"total_planned"`
	DomainsMemoryBytes uint64  `json:"domains_memory_bytes"`
	DomainsMemoryHuman string  `json:"domains_memory_human"`
	GoMemAllocBytes    uint64  `json:"go_mem_alloc_bytes"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	enq, chk, fnd, elapsed := s.prog.Snapshot()
	elapsedSec := elapsed.Seconds()
	speed := 0.0
	if elapsedSec > 0 {
		speed = float64(chk) / elapsedSec
	}

	totalPlanned := s.prog.TotalPlanned()
	var remaining int64 = -1
	var eta time.Duration
	var percent float64
	if totalPlanned > 0 {
		if chk >= totalPlanned {
			remaining = 0
			percent = 100
		} else {
			remaining = totalPlanned - chk
			if speed > 0 {
				eta = time.Duration(float64(remaining) / speed * float64(time.Second))
			}
			percent = 100 * float64(chk) / float64(totalPlanned)
			if percent > 100 {
				percent = 100
			}
		}
	}

	efficiency := 0.0
	if chk > 0 {
		efficiency = float64(fnd) / float64(chk) * 100
	}

	etaStr := "-"
	if remaining >= 0 {
		etaStr = fmtDuration(eta)
	}

	domBytes := s.store.ApproxBytes()
	resp := statsResponse{
		Elapsed:            fmtDuration(elapsed),
		ETA:                etaStr,
		Found:              fnd,
		Remaining:          remaining,
		SpeedPerSec:        speed,
		EfficiencyPercent:  efficiency,
		Percent:            percent,
		Generated:          enq,
		Checked:            chk,
		TotalPlanned:       totalPlanned,
		DomainsMemoryBytes: domBytes,
		DomainsMemoryHuman: humanBytes(domBytes),
		// GoMemAllocBytes stays zero; it exists only for wire compatibility
		// with the original stats payload.
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleDomain serves /domain/<tld>.txt or /domain/<tld>.json, plus the
// __all__ sentinel for every stored domain across every TLD.
func (s *Server) handleDomain(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/domain/")
	if path == "" || strings.Contains(path, "/") {
		http.NotFound(w, r)
		return
	}
	dot := strings.LastIndexByte(path, '.')
	if dot <= 0 || dot == len(path)-1 {
		http.NotFound(w, r)
		return
	}
	tld := strings.ToLower(path[:dot])
	ext := strings.ToLower(path[dot+1:])

	var list []string
	if tld == "__all__" {
		list = s.store.ListAll()
	} else {
		list = s.store.List(tld)
	}

	switch ext {
	case "txt":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(strings.Join(list, "\n") + "\n"))
	case "json":
		writeJSON(w, http.StatusOK, list)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleTLDs(w http.ResponseWriter, r *http.Request) {
	uniq := make(map[string]struct{}, len(s.tlds))
	for _, t := range s.tlds {
		t = strings.ToLower(strings.TrimSpace(t))
		t = strings.TrimPrefix(t, ".")
		if t != "" {
			uniq[t] = struct{}{}
		}
	}
	out := make([]string, 0, len(uniq))
	for t := range uniq {
		out = append(out, t)
	}
	sort.Strings(out)
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// humanBytes renders n using the same binary (KiB/MiB/...) units as the
// original service's human_bytes.
func humanBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return itoa(n) + "B"
	}
	div := uint64(unit)
	exp := 0
	m := n / unit
	for m >= unit {
		div *= unit
		exp++
		m /= unit
	}
	suffixes := []string{"K", "M", "G", "T", "P", "E"}
	value := float64(n) / float64(div)
	return trimFloat1(value) + suffixes[exp] + "iB"
}

// fmtDuration renders d as "d HH:MM:SS", "H:MM:SS", or "MM:SS", matching
// the original service's fmt_duration.
func fmtDuration(d time.Duration) string {
	secs := int64(d.Seconds() + 0.5)
	h := secs / 3600
	m := (secs % 3600) / 60
	sec := secs % 60
	days := h / 24
	h %= 24
	if days > 0 {
		return itoa(uint64(days)) + "d " + pad2(h) + ":" + pad2(m) + ":" + pad2(sec)
	}
	if h > 0 {
		return itoa(uint64(h)) + ":" + pad2(m) + ":" + pad2(sec)
	}
	return pad2(m) + ":" + pad2(sec)
}

func itoa(n uint64) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

func pad2(n int64) string {
	if n < 0 {
		n = 0
	}
	if n < 10 {
		return "0" + itoa(uint64(n))
	}
	return itoa(uint64(n))
}

func trimFloat1(f float64) string {
	whole := int64(f)
	frac := int64((f-float64(whole))*10 + 0.5)
	if frac >= 10 {
		whole++
		frac = 0
	}
	return itoa(uint64(whole)) + "." + itoa(uint64(frac))
}
