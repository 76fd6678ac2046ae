// Copyright The wcs-go Authors
// SPDX-License-Identifier: Apache-2.0

package wcs

import (
	"hash/fnv"

	"github.com/google/uuid"
)

// Tracker is a per-call identity: a trace id used for logging/debugging
// and surfaced in Error/response values, plus a trace hash used to pick
// a deterministic actor for all callbacks belonging to the call (spec
// §3, §5). A Tracker is created per call and lives until the call's
// callback returns.
type Tracker struct {
	TraceID   string
	TraceHash uint64
}

// NewTracker allocates a fresh Tracker with a random trace id.
func NewTracker() Tracker {
	id := uuid.NewString()
	return Tracker{
		TraceID:   id,
		TraceHash: traceHash(id),
	}
}

func traceHash(traceID string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(traceID))
	return h.Sum64()
}

// ActorIndex selects an actor slot from a pool of n actors, deterministic
// for the lifetime of the call (spec §4.4 "issue").
func (t Tracker) ActorIndex(n int) int {
	if n <= 0 {
		return 0
	}
	return int(t.TraceHash % uint64(n))
}
