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

// Package sink provides optional, best-effort external publishers for
// found domains. A Store always writes to disk first; a Sink is never the
// system of record, only a live mirror for downstream consumers.
package sink

import "context"

// Sink mirrors a found domain to an external system. Publish must never
// block the caller for long and must never panic; adapters are expected to
// log and drop on error.
type Sink interface {
	Publish(ctx context.Context, tld, domain string)
	Close() error
}

// noopSink is the default sink: it does nothing. Used when no external
// sink is configured.
type noopSink struct{}

// NewNoopSink returns a Sink that discards everything.
func NewNoopSink() Sink { return noopSink{} }

func (noopSink) Publish(context.Context, string, string) {}
func (noopSink) Close() error                            { return nil }

// Build selects a Sink adapter by address, generalizing the teacher's
// persistence.BuildPersister factory to this project's single adapter
// kind: an empty addr disables the sink, any non-empty addr is treated as
// a Redis address.
func Build(redisAddr string) Sink {
	if redisAddr == "" {
		return NewNoopSink()
	}
	return NewRedisSink(redisAddr)
}
