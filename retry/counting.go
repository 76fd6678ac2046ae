// Copyright The wcs-go Authors
// SPDX-License-Identifier: Apache-2.0

package retry

import (
	"math/rand"
	"time"
)

// Counting retries up to MaxRetries times, pausing a uniform random
// duration in [100µs, Interval] between attempts (spec §4.3).
type Counting struct {
	MaxRetries int
	Interval   time.Duration

	retries int
	rnd     *rand.Rand
}

// NewCounting builds a template Counting policy.
func NewCounting(maxRetries int, interval time.Duration) *Counting {
	return &Counting{MaxRetries: maxRetries, Interval: interval, rnd: rand.New(rand.NewSource(1))}
}

func (c *Counting) Clone() Policy {
	rnd := c.rnd
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Counting{MaxRetries: c.MaxRetries, Interval: c.Interval, rnd: rnd}
}

func (c *Counting) Retries() int { return c.retries }

func (c *Counting) ShouldRetry(cl Classification) bool {
	if !cl.Retriable() {
		return false
	}
	if c.retries >= c.MaxRetries {
		return false
	}
	c.retries++
	return true
}

func (c *Counting) NextPause() time.Duration {
	return jitter(c.rnd, 100*time.Microsecond, c.Interval)
}
