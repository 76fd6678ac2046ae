// Copyright The wcs-go Authors
// SPDX-License-Identifier: Apache-2.0

package retry

import (
	"math/rand"
	"time"
)

const (
	deadlineBaseStart = 1 * time.Millisecond
	deadlineBaseCap   = 400 * time.Millisecond
)

// Deadline retries until a wall-clock deadline passes, doubling its
// back-off base from 1ms up to a 400ms cap (spec §4.3).
type Deadline struct {
	window   time.Duration
	deadline time.Time
	base     time.Duration
	retries  int
	rnd      *rand.Rand

	now func() time.Time
}

// NewDeadline builds a template Deadline policy with the given retry
// window. Clone() must be called per-call to anchor the deadline to that
// call's start time.
func NewDeadline(window time.Duration) *Deadline {
	return NewDeadlineWithRand(window, rand.New(rand.NewSource(1)))
}

// NewDeadlineWithRand is like NewDeadline but lets the caller supply the
// jitter PRNG (spec §9 "Randomness": each clone keeps its own generator
// handle).
func NewDeadlineWithRand(window time.Duration, rnd *rand.Rand) *Deadline {
	return &Deadline{window: window, rnd: rnd, now: time.Now}
}

func (d *Deadline) Clone() Policy {
	now := d.now
	if now == nil {
		now = time.Now
	}
	rnd := d.rnd
	if rnd == nil {
		rnd = rand.New(rand.NewSource(now().UnixNano()))
	}
	return &Deadline{
		window:   d.window,
		deadline: now().Add(d.window),
		base:     deadlineBaseStart,
		rnd:      rnd,
		now:      now,
	}
}

func (d *Deadline) Retries() int { return d.retries }

func (d *Deadline) ShouldRetry(c Classification) bool {
	if !c.Retriable() {
		return false
	}
	now := d.now
	if now == nil {
		now = time.Now
	}
	if !now().Before(d.deadline) {
		return false
	}
	d.retries++
	return true
}

func (d *Deadline) NextPause() time.Duration {
	pause := jitter(d.rnd, d.base/2, d.base)
	if d.base < deadlineBaseCap {
		d.base *= 2
		if d.base > deadlineBaseCap {
			d.base = deadlineBaseCap
		}
	}
	return pause
}
