// Copyright The wcs-go Authors
// SPDX-License-Identifier: Apache-2.0

// Package retry implements the error-classification and back-off rules
// of spec §4.3. It has no dependency on the rest of this module so that
// callers can plug in their own Policy without an import cycle; the
// client package adapts its Action/Error types to Classification at the
// call site.
package retry

import (
	"math/rand"
	"time"
)

// Classification carries just enough information for a Policy to decide
// whether to retry, without depending on this module's Action/Error
// types.
type Classification struct {
	// Temporary mirrors Error.Temporary(): the error is eligible for
	// retry consideration at all.
	Temporary bool
	// Depends mirrors Error.Depends(): retriability depends on the
	// idempotency of the action that produced the error.
	Depends bool
	// Idempotent mirrors Action.Idempotent().
	Idempotent bool
}

// Retriable applies spec §4.3's three-rule classification:
//  1. Non-temporary => not retriable.
//  2. Temporary and not "depends" => retriable.
//  3. Temporary and "depends" => retriable iff the action is idempotent.
func (c Classification) Retriable() bool {
	if !c.Temporary {
		return false
	}
	if c.Depends {
		return c.Idempotent
	}
	return true
}

// Policy is the capability described in spec §4.3: clone(), retries(),
// should_retry(action, error), next_pause(). Policies are per-call state
// (a fresh retry count and deadline), never shared across calls —
// Clone() is how a ClientOptions-level template becomes a call's own
// policy instance.
type Policy interface {
	// Clone returns a policy with a fresh retry count and, for
	// deadline-based policies, a fresh deadline computed from now.
	Clone() Policy
	// Retries returns the number of retries already taken by this
	// instance.
	Retries() int
	// ShouldRetry decides whether to retry given the classification of
	// the most recent failure. Implementations must also record the
	// attempt (incrementing the internal retry count) when they return
	// true.
	ShouldRetry(c Classification) bool
	// NextPause returns the back-off duration to wait before the next
	// attempt. Only meaningful immediately after ShouldRetry returned
	// true.
	NextPause() time.Duration
}

// jitter returns a uniform random duration in [lo, hi]. hi < lo is
// treated as hi == lo.
func jitter(r *rand.Rand, lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(r.Int63n(int64(hi-lo+1)))
}
