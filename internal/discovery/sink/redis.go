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

package sink

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"domainsearch/internal/discovery/log"
)

// RedisSink publishes each found domain to a Redis Pub/Sub channel named
// "domainsearch:<tld>". It is grounded in the teacher's Redis persistence
// adapter (internal/ratelimiter/persistence/redis.go), generalized from an
// idempotent commit script to a simple fire-and-forget PUBLISH, since a
// live mirror has no idempotency requirement the way a durable counter
// update does.
type RedisSink struct {
	client *redis.Client
}

// NewRedisSink creates a Redis client for addr and returns a Sink backed by
// it. No connection is made here; the client dials on its first command.
func NewRedisSink(addr string) Sink {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	return &RedisSink{client: client}
}

// Publish sends domain to the Pub/Sub channel for tld. Errors are logged
// and dropped: a sink outage must never slow or stop the discovery
// pipeline (SPEC_FULL.md §7).
func (r *RedisSink) Publish(ctx context.Context, tld, domain string) {
	channel := "domainsearch:" + tld
	if err := r.client.Publish(ctx, channel, domain).Err(); err != nil {
		log.Warn(map[string]any{"channel": channel, "domain": domain, "error": err.Error()}, "sink: publish failed")
	}
}

// Close releases the underlying connection pool.
func (r *RedisSink) Close() error {
	return r.client.Close()
}
